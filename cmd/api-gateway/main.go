package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"github.com/auctionsight/auctionsight-backend/internal/market/repository/clickhouse"
	"github.com/auctionsight/auctionsight-backend/internal/metrics"
	"github.com/auctionsight/auctionsight-backend/internal/transport"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var config struct {
	Addr          string        `long:"addr" env:"AUCTIONSIGHT_API_GATEWAY_ADDR" description:"addr" default:":8001"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"AUCTIONSIGHT_API_GATEWAY_CLICKHOUSE_DSN" description:"clickhouse dsn" default:"clickhouse://127.0.0.1:9000/default"`
	Network       string        `long:"network" env:"AUCTIONSIGHT_API_GATEWAY_NETWORK" description:"network" default:"testnet"`
	RevealWindow  time.Duration `long:"reveal-window" env:"AUCTIONSIGHT_API_GATEWAY_REVEAL_WINDOW" description:"reveal window" default:"1h"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	if _, err := flags.ParseArgs(&config, os.Args); err != nil {
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	repository, err := clickhouse.NewRepository(config.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		logger.Fatal("Failed to create clickhouse repository", zap.Error(err))
	}
	defer func() {
		if closeErr := repository.Close(); closeErr != nil {
			logger.Error("Failed to close clickhouse repository", zap.Error(closeErr))
		}
	}()

	mux := http.NewServeMux()

	handler := transport.NewProductsHandler(repository, model.Network(config.Network), config.RevealWindow, logger)
	handler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              config.Addr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", config.Addr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Failed to listen and serve", zap.Error(err))
	}
}
