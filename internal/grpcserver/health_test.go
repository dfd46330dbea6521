package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"syntra-pos/internal/gateway/clients"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T, checks map[string]Check) (*Server, *clients.HealthClient) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := New(checks, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	client, err := clients.NewHealthClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		cancel()
		<-done
	})
	return srv, client
}

func TestHealthServing(t *testing.T) {
	_, client := startServer(t, map[string]Check{
		"database": func(context.Context) error { return nil },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := client.Check(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status)
	assert.True(t, client.IsServing(ctx, ServiceName))

	_, err = client.Check(ctx, "unknown.service")
	assert.Error(t, err)
}

func TestHealthFollowsChecks(t *testing.T) {
	var down atomic.Bool
	down.Store(true)

	srv, client := startServer(t, map[string]Check{
		"database": func(context.Context) error {
			if down.Load() {
				return errors.New("connection refused")
			}
			return nil
		},
		"redis": func(context.Context) error { return nil },
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.False(t, client.IsServing(ctx, ServiceName))
	assert.Equal(t, map[string]string{"database": "connection refused"}, srv.Failures())

	down.Store(false)
	srv.Refresh(ctx)

	assert.True(t, client.IsServing(ctx, ServiceName))
	assert.Empty(t, srv.Failures())
}
