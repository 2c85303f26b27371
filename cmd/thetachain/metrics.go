package main

import (
	"context"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/smallyu/go-theta-isogeny/internal/metrics"
)

const shutdownTimeout = time.Second * 5

type metricsServer struct {
	server  *http.Server
	done    chan error
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// serveMetrics exposes a fresh registry on addr under /metrics.
func serveMetrics(addr string, log zerolog.Logger) (*metricsServer, error) {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	registerBuildInfo(reg)

	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s := &metricsServer{
		server: &http.Server{
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		done:    make(chan error, 1),
		log:     log,
		metrics: m,
	}
	go func() {
		s.done <- s.server.Serve(l)
	}()
	log.Info().Str("addr", l.Addr().String()).Msg("Starting metrics server")
	return s, nil
}

// Close shuts the listener down.
func (s *metricsServer) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.server.Shutdown(ctx)
	if err := <-s.done; err != nil && err != http.ErrServerClosed {
		s.log.Error().Err(err).Msg("Metrics server quit with error")
		return
	}
	s.log.Info().Msg("Metrics server stopped")
}

func registerBuildInfo(reg prometheus.Registerer) {
	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build and version information",
		},
		[]string{"goversion", "revision", "version"},
	)
	reg.MustRegister(buildInfo)
	buildInfo.WithLabelValues(runtime.Version(), BuildTime, Version).Set(1)
}
