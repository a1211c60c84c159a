package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"psp.com/kviz/backend/internal/catalog"
	"psp.com/kviz/backend/internal/config"
	"psp.com/kviz/backend/internal/logger"
)

const (
	roundTTL       = 24 * time.Hour
	requestsPerMin = 120
	defaultConfig  = "quiz.yaml"
	configEnv      = "QUIZ_CONFIG"
	preloadTimeout = 30 * time.Second
)

type server struct {
	cfg     config.Config
	catalog *catalog.Catalog
	rounds  *roundStore
	limiter *rateLimiter
	log     *logger.Logger
}

func newServer(cfg config.Config, log *logger.Logger) *server {
	return &server{
		cfg:     cfg,
		catalog: catalog.New(cfg, log),
		rounds:  newRoundStore(roundTTL),
		limiter: newRateLimiter(requestsPerMin, time.Minute),
		log:     log,
	}
}

func main() {
	configPath := flag.String("config", getenv(configEnv, defaultConfig), "path to the quiz config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config %s: %v\n", *configPath, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	s := newServer(cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), preloadTimeout)
	failures := s.catalog.Preload(ctx)
	cancel()
	for id, err := range failures {
		log.Warn("Question source unavailable", "source", id, "error", err)
	}
	log.Info("Question sources loaded", "sources", len(cfg.Sources)-len(failures), "failed", len(failures))

	addr := ":" + cfg.Server.Port
	if cfg.Server.TLSCert != "" && cfg.Server.TLSKey != "" {
		log.Info("backend listening (HTTPS)", "addr", addr)
		err = http.ListenAndServeTLS(addr, cfg.Server.TLSCert, cfg.Server.TLSKey, s.routes())
	} else {
		log.Info("backend listening (HTTP)", "addr", addr)
		err = http.ListenAndServe(addr, s.routes())
	}
	log.Fatal("server stopped", "error", err)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(securityHeaders)
	r.Use(s.rateLimit)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })

	r.Route("/api", func(r chi.Router) {
		r.Get("/modes", s.handleModes)
		r.Post("/rounds", s.handleCreateRound)
		r.Route("/rounds/{roundID}", func(r chi.Router) {
			r.Get("/", s.handleRound)
			r.Get("/questions/{index}", s.handleQuestion)
			r.Put("/questions/{index}/verdict", s.handleVerdict)
			r.Get("/result", s.handleResult)
			r.Get("/certificate", s.handleCertificate)
		})
		r.Get("/assets/{source}/{file}", s.handleAsset)
	})
	return r
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

func (s *server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}
		clientIP := r.RemoteAddr
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			clientIP = strings.TrimSpace(strings.Split(xff, ",")[0])
		}
		if !s.limiter.allow(clientIP, time.Now()) {
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
