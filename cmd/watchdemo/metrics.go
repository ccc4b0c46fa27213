package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

func newMetricsRouter(gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

type metricsServer struct {
	srv    *http.Server
	done   chan struct{}
	logger *zap.Logger
}

// startMetricsServer listens on addr before returning so bind errors reach
// the caller.
func startMetricsServer(addr string, gatherer prometheus.Gatherer, logger *zap.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	s := &metricsServer{
		srv: &http.Server{
			Handler:           newMetricsRouter(gatherer),
			ReadHeaderTimeout: 5 * time.Second,
		},
		done:   make(chan struct{}),
		logger: logger,
	}
	go func() {
		defer close(s.done)
		logger.Info("metrics server started", zap.String("addr", ln.Addr().String()))
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	return s, nil
}

// Close shuts the server down and waits for its serve goroutine.
func (s *metricsServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	<-s.done
	s.logger.Info("metrics server stopped")
	return err
}
