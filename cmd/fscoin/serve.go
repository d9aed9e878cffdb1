package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xtding233/fscoin/internal/config"
	"github.com/xtding233/fscoin/internal/metrics"
	"github.com/xtding233/fscoin/internal/server"
)

const (
	shutdownTimeout = 10 * time.Second
	watchInterval   = 2 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "serve the HTTP API, metrics and a gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, true)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger.With("module", "server")

	srv := server.New(server.Deps{
		Generator: a.gen,
		Simulator: a.sim,
		IDs:       a.ids,
		Store:     a.store,
		Metrics:   metrics.New(),
		Logger:    logger,
		Limits: server.Limits{
			MaxQuantity: a.cfg.Server.MaxQuantity,
			MaxRuns:     a.cfg.Server.MaxRuns,
		},
	})
	httpSrv := &http.Server{
		Addr:              a.cfg.Server.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var (
		grpcSrv *grpc.Server
		hs      *health.Server
	)
	if a.cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", a.cfg.Server.GRPCAddr)
		if err != nil {
			return err
		}
		grpcSrv = grpc.NewServer()
		hs = health.NewServer()
		healthpb.RegisterHealthServer(grpcSrv, hs)
		hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error("grpc server stopped", "err", err)
			}
		}()
		logger.Info("grpc health listening", "addr", a.cfg.Server.GRPCAddr)
	}

	if len(cfgFiles) > 0 {
		w := config.NewWatcher(cfgFiles, watchInterval, func(path string) {
			reload(a, path)
		})
		go w.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if grpcSrv != nil {
			grpcSrv.Stop()
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if hs != nil {
		hs.Shutdown()
		grpcSrv.GracefulStop()
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// reload applies the parts of the config that can change at runtime.
func reload(a *app, path string) {
	cfg, err := loadConfig()
	if err != nil {
		a.logger.Error("config reload failed", "err", err, "path", path)
		return
	}
	if err := a.sim.SetParams(cfg.CoinParams()); err != nil {
		a.logger.Error("config reload rejected", "err", err, "path", path)
		return
	}
	a.logger.Info("config reloaded",
		"path", path,
		"max_trials", cfg.Coin.MaxTrials,
		"sample_max", cfg.Coin.SampleMax,
	)
}
