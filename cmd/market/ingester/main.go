package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auctionsight/auctionsight-backend/internal/market/ethereum"
	"github.com/auctionsight/auctionsight-backend/internal/market/model"
	"github.com/auctionsight/auctionsight-backend/internal/market/repository/clickhouse"
	"github.com/auctionsight/auctionsight-backend/internal/market/service/ingester"
	"github.com/auctionsight/auctionsight-backend/internal/metrics"
	rpcclient2 "github.com/auctionsight/auctionsight-backend/internal/pkg/ethereum/rpcclient"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type config struct {
	ClickhouseDSN   string        `long:"clickhouse-dsn" env:"AUCTIONSIGHT_INGESTER_CLICKHOUSE_DSN" description:"ClickHouse DSN"`
	Network         model.Network `long:"network" env:"AUCTIONSIGHT_INGESTER_NETWORK" description:"network name" required:"true"`
	RPCURL          string        `long:"rpc-url" env:"AUCTIONSIGHT_INGESTER_RPC_URL" description:"Ethereum node RPC URL" default:"http://127.0.0.1:8545"`
	ContractAddress string        `long:"contract-address" env:"AUCTIONSIGHT_INGESTER_CONTRACT_ADDRESS" description:"marketplace contract address" required:"true"`
	StartBlock      uint64        `long:"start-block" env:"AUCTIONSIGHT_INGESTER_START_BLOCK" description:"contract deployment block"`
	DialTimeout     time.Duration `long:"dial-timeout" env:"AUCTIONSIGHT_INGESTER_DIAL_TIMEOUT" description:"node dial timeout" default:"30s"`
	MetricsAddr     string        `long:"metrics-addr" env:"AUCTIONSIGHT_INGESTER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if cfg.ClickhouseDSN == "" {
		logger.Fatal("ClickHouse DSN is required")
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		logger.Fatal("contract address is not a valid hex address", zap.String("address", cfg.ContractAddress))
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("market sync ingester failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	startMetricsServer(ctx, cfg.MetricsAddr, logger)

	repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewClickhouseRepository())
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Error("failed to close clickhouse repository", zap.Error(closeErr))
		}
	}()

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	client, err := ethclient.DialContext(dialCtx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("dial ethereum node: %w", err)
	}
	defer client.Close()

	rpc := rpcclient2.NewObservedClient(client, metrics.NewRPCClient(cfg.Network))
	decoder, err := ethereum.NewDecoder(cfg.Network)
	if err != nil {
		return fmt.Errorf("init event decoder: %w", err)
	}
	source, err := ethereum.NewEventSource(rpc, decoder, common.HexToAddress(cfg.ContractAddress), logger.Named("eventSource"))
	if err != nil {
		return fmt.Errorf("init event source: %w", err)
	}

	// Wakes the loop early on new heads when the endpoint supports
	// subscriptions; an http endpoint falls back to interval polling.
	headSignal := ethereum.StartHeadSignal(ctx, headSubscriber(cfg.RPCURL, client), logger.Named("headSignal"))

	svc, err := ingester.NewSyncIngesterService(
		repo,
		source,
		metrics.NewSyncIngester(cfg.Network),
		cfg.Network,
		cfg.StartBlock,
		logger,
		headSignal,
	)
	if err != nil {
		return err
	}
	return svc.Run(ctx)
}

// headSubscriber returns the client only for endpoints that can carry a
// subscription. eth_subscribe over plain http fails on every reconnect, so
// those endpoints poll instead.
func headSubscriber(rpcURL string, client *ethclient.Client) ethereum.HeadSubscriber {
	if len(rpcURL) >= 2 && rpcURL[:2] == "ws" {
		return client
	}
	return nil
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
