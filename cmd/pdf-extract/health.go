package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func newHealthCmd(a *app) *cobra.Command {
	var (
		addr    string
		service string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Query the gRPC health endpoint of a running pdf-extractord",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.GRPCHealthAddr
			}
			if addr == "" {
				return errors.New("no address: pass --addr or set GRPC_HEALTH_ADDR")
			}
			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return fmt.Errorf("dial %s: %w", addr, err)
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", addr, resp.GetStatus())
			if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
				return errors.New("not serving")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "host:port of the health service (default GRPC_HEALTH_ADDR)")
	cmd.Flags().StringVar(&service, "service", "", `service name; "" checks the whole server`)
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Second, "request timeout")
	return cmd
}
