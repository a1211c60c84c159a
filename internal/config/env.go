package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overrides file settings with PORT, ALLOWED_ORIGINS, TLS_CERT,
// TLS_KEY, LOG_MODE, ROUND_SIZE and PASS_THRESHOLD when they are set.
func ApplyEnv(cfg *Config) {
	cfg.Server.Port = str("PORT", cfg.Server.Port)
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Server.AllowedOrigins = origins
	}
	cfg.Server.TLSCert = str("TLS_CERT", cfg.Server.TLSCert)
	cfg.Server.TLSKey = str("TLS_KEY", cfg.Server.TLSKey)
	cfg.LogMode = str("LOG_MODE", cfg.LogMode)
	cfg.Round.Size = integer("ROUND_SIZE", cfg.Round.Size)
	cfg.Round.PassThreshold = integer("PASS_THRESHOLD", cfg.Round.PassThreshold)
}

func str(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func integer(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
