// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger returns a logger that writes through t.Log. LOG_LEVEL overrides
// the default debug level, e.g. LOG_LEVEL=warn go test ./...
func TestLogger(t testing.TB) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).
		Level(envLevel("LOG_LEVEL", zerolog.DebugLevel)).
		With().Timestamp().Logger()
}

func envLevel(name string, fallback zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(os.Getenv(name))
	if err != nil || level == zerolog.NoLevel {
		return fallback
	}
	return level
}
