package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fairyhunter13/ai-future-predictor/internal/config"
)

// SetupLogger returns the service logger writing JSON to stdout.
func SetupLogger(cfg config.Config) *slog.Logger { return NewLogger(os.Stdout, cfg) }

// NewLogger builds a JSON logger on w tagged with service, env and version.
// Commands that print results on stdout pass os.Stderr.
func NewLogger(w io.Writer, cfg config.Config) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel(cfg)})
	return slog.New(h).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
		slog.String("version", cfg.AppVersion),
	)
}

func logLevel(cfg config.Config) slog.Level {
	if s := strings.TrimSpace(cfg.LogLevel); s != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(s)); err == nil {
			return lvl
		}
	}
	if cfg.IsDev() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
