package main

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplicitSeed(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want *int64
	}{
		{name: "omitted", args: nil, want: nil},
		{name: "zero", args: []string{"-seed", "0"}, want: ptr(0)},
		{name: "value", args: []string{"-seed=42"}, want: ptr(42)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("kvizcli", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			seed := fs.Int64("seed", 0, "")
			fs.Int("n", 0, "")
			require.NoError(t, fs.Parse(append([]string{"-n", "5"}, tt.args...)))

			assert.Equal(t, tt.want, explicitSeed(fs, *seed))
		})
	}
}

func ptr(v int64) *int64 { return &v }
