// Command signerd serves the remote BLS signing API: a raw byte-buffer
// Web3Signer-compatible core (httpserver) over TCP, an operational sidecar
// (opsserver) for health checks, and a Prometheus exposition endpoint
// (metrics), started and shut down together.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ruteri/tee-bls-signer/cmd/flags"
	"github.com/ruteri/tee-bls-signer/httpserver"
	"github.com/ruteri/tee-bls-signer/kms"
	"github.com/ruteri/tee-bls-signer/metrics"
	"github.com/ruteri/tee-bls-signer/opsserver"
)

const (
	defaultGracefulShutdown = 30 * time.Second
	defaultReadTimeout      = 60 * time.Second
	defaultWriteTimeout     = 30 * time.Second
)

func mustZap() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	return logger
}

func main() {
	app := &cli.App{
		Name:  "signerd",
		Usage: "serve a remote BLS signing API for Eth2 validator keys",
		Flags: flags.CommonFlags,
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	store := kms.NewStore(flags.ConfigureCapacity(cCtx))
	limits := flags.ConfigureLimits(cCtx)
	handler := httpserver.NewHandler(store, limits, logger)

	maxBuf := cCtx.Int(flags.MaxBufFlag.Name)
	listenAddr := cCtx.String(flags.ListenAddrFlag.Name)

	listener, err := newListener(listenAddr, maxBuf, handler, logger)
	if err != nil {
		logger.Error("failed to bind signing API listener", "err", err)
		return err
	}

	ops := opsserver.New(&opsserver.Config{
		ListenAddr:               cCtx.String(flags.OpsListenAddrFlag.Name),
		Log:                      logger,
		ZapLogger:                mustZap(),
		GracefulShutdownDuration: defaultGracefulShutdown,
		ReadTimeout:              defaultReadTimeout,
		WriteTimeout:             defaultWriteTimeout,
	}, store)

	metricsSrv := metrics.New(cCtx.String(flags.MetricsAddrFlag.Name))

	listener.RunInBackground()
	ops.RunInBackground()
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil {
			logger.Error("metrics server stopped", "err", err)
		}
	}()

	logger.Info("signerd is running",
		"listenAddress", listenAddr,
		"opsListenAddress", cCtx.String(flags.OpsListenAddrFlag.Name),
		"metricsAddress", cCtx.String(flags.MetricsAddrFlag.Name),
	)

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
	logger.Info("shutdown signal received")

	listener.Shutdown()
	ops.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulShutdown)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "err", err)
	}

	logger.Info("signerd shutdown complete")
	return nil
}
