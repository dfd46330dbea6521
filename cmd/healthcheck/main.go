// Command healthcheck exits non-zero unless the local POS backend reports
// SERVING over gRPC health. Intended as a container probe.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"syntra-pos/config"
	"syntra-pos/internal/gateway/clients"
	"syntra-pos/internal/grpcserver"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	addr := flag.String("addr", "localhost:"+cfg.GRPC.Port, "gRPC health endpoint")
	timeout := flag.Duration("timeout", 3*time.Second, "probe timeout")
	flag.Parse()

	client, err := clients.NewHealthClient(*addr)
	if err != nil {
		log.Fatalf("Failed to create health client: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	status, err := client.Check(ctx, grpcserver.ServiceName)
	if err != nil {
		log.Printf("health check failed: %v", err)
		os.Exit(1)
	}
	log.Printf("%s: %s", grpcserver.ServiceName, status)
	if status != healthpb.HealthCheckResponse_SERVING {
		os.Exit(1)
	}
}
