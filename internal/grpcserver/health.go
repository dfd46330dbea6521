// Package grpcserver exposes the standard gRPC health service for the POS
// backend, driven by periodic dependency checks.
package grpcserver

import (
	"context"
	"net"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-check service reported alongside the overall "" status.
const ServiceName = "syntra.pos"

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	checks   map[string]Check
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	failed map[string]string
}

func New(checks map[string]Check, interval time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}

	s := &Server{
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
		checks:   checks,
		interval: interval,
		logger:   logger.Named("grpc"),
		failed:   map[string]string{},
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Refresh runs every check once and publishes the result.
func (s *Server) Refresh(ctx context.Context) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := map[string]string{}
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := s.checks[name](checkCtx)
		cancel()
		if err != nil {
			failed[name] = err.Error()
		}
	}

	status := healthpb.HealthCheckResponse_SERVING
	if len(failed) > 0 {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.mu.Lock()
	changed := len(failed) != len(s.failed)
	for name := range failed {
		if _, ok := s.failed[name]; !ok {
			changed = true
		}
	}
	s.failed = failed
	s.mu.Unlock()

	if changed {
		if len(failed) > 0 {
			s.logger.Warn("dependency checks failing", zap.Any("failed", failed))
		} else {
			s.logger.Info("all dependency checks passing")
		}
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Failures returns the checks that failed on the last refresh.
func (s *Server) Failures() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.failed))
	for k, v := range s.failed {
		out[k] = v
	}
	return out
}

// Serve refreshes the health status every interval and serves on lis until
// ctx is cancelled or serving fails.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.Refresh(ctx)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Refresh(ctx)
			}
		}
	}()

	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	s.logger.Info("grpc health server listening", zap.String("addr", lis.Addr().String()))
	if err := s.grpc.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}
