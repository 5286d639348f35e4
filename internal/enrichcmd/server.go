package enrichcmd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// metricsServer exposes the run's metrics and a healthcheck while a batch runs.
type metricsServer struct {
	server *http.Server
	done   chan struct{}
}

// startMetricsServer listens on addr before returning so bind errors surface
// to the caller.
func startMetricsServer(addr string, metrics http.Handler) (*metricsServer, error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics)
	mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &metricsServer{
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		slog.Info("Metrics available", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "err", err)
		}
	}()
	return s, nil
}

// Stop gracefully shuts the server down and waits for it to exit.
func (s *metricsServer) Stop() {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Metrics server shutdown failed", "err", err)
	}
	<-s.done
}
