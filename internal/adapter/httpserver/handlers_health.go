package httpserver

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler reports liveness with the environment and version.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":      "healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
			"environment": s.Cfg.AppEnv,
			"version":     s.Cfg.AppVersion,
		})
	}
}

type readinessCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Details string `json:"details,omitempty"`
}

// ReadyzHandler probes the database and, when configured, Redis.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		probes := []struct {
			name  string
			check func(context.Context) error
		}{
			{"db", s.DBCheck},
			{"redis", s.RedisCheck},
		}
		checks := make([]readinessCheck, 0, len(probes))
		status := http.StatusOK
		for _, p := range probes {
			if p.check == nil {
				continue
			}
			c := readinessCheck{Name: p.name, OK: true}
			if err := p.check(ctx); err != nil {
				c.OK, c.Details = false, err.Error()
				status = http.StatusServiceUnavailable
			}
			checks = append(checks, c)
		}
		writeJSON(w, status, map[string]any{"checks": checks})
	}
}
