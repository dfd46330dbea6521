package clients

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient probes the standard gRPC health service of a running POS backend.
type HealthClient struct {
	client healthpb.HealthClient
	conn   *grpc.ClientConn
}

func NewHealthClient(target string, opts ...grpc.DialOption) (*HealthClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("health service connection failed: %w", err)
	}

	return &HealthClient{
		client: healthpb.NewHealthClient(conn),
		conn:   conn,
	}, nil
}

// Check returns the serving status of service; "" asks for the whole server.
func (c *HealthClient) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func (c *HealthClient) IsServing(ctx context.Context, service string) bool {
	status, err := c.Check(ctx, service)
	return err == nil && status == healthpb.HealthCheckResponse_SERVING
}

func (c *HealthClient) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
