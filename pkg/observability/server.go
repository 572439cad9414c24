package observability

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// ShutdownTimeout bounds how long Serve waits for in-flight scrapes.
const ShutdownTimeout = 5 * time.Second

// Router serves /healthz and /metrics.
func Router(m *Metrics) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Get("/metrics", m.Handler().ServeHTTP)
	return r
}

// Serve listens on addr until ctx is canceled, then shuts down gracefully.
// Listen failures are returned before any request is served.
func Serve(ctx context.Context, addr string, m *Metrics, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, m, logger)
}

// ServeListener is Serve on an already bound listener.
func ServeListener(ctx context.Context, ln net.Listener, m *Metrics, logger *slog.Logger) error {
	srv := &http.Server{
		Handler:           Router(m),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics shutdown failed", "error", err)
		_ = srv.Close()
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
