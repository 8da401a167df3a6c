// cmd/txprep/env.go
package main

import (
	"fmt"
	"time"

	"github.com/rovshanmuradov/txprep/internal/blockchain/solbc"
	"github.com/rovshanmuradov/txprep/internal/blockhash"
	"github.com/rovshanmuradov/txprep/internal/config"
	"github.com/rovshanmuradov/txprep/internal/fee"
	"github.com/rovshanmuradov/txprep/internal/transaction"
	"github.com/rovshanmuradov/txprep/internal/utils/logger"
	"github.com/rovshanmuradov/txprep/internal/utils/metrics"
	"go.uber.org/zap"
	cli "gopkg.in/urfave/cli.v1"
)

const metricsNamespace = "txprep"

// base holds what every command needs.
type base struct {
	cfg    *config.Config
	logger *logger.Logger
}

func loadBase(ctx *cli.Context) (*base, error) {
	cfg, err := config.LoadConfig(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := logger.DefaultConfig()
	if cfg.LogFile != "" {
		logCfg.LogFile = cfg.LogFile
	}
	logCfg.Development = cfg.DebugLogging || ctx.GlobalBool(debugFlag.Name)

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return &base{cfg: cfg, logger: log}, nil
}

func (b *base) close() {
	_ = b.logger.Sync()
}

// env is the fully wired set of services.
type env struct {
	*base
	metrics  *metrics.Collector
	store    blockhash.StoreCloser
	client   *solbc.Client
	cache    *blockhash.Cache
	resolver *fee.Resolver
	preparer *transaction.Preparer
}

func newEnv(ctx *cli.Context) (*env, error) {
	b, err := loadBase(ctx)
	if err != nil {
		return nil, err
	}
	cfg := b.cfg

	store, err := blockhash.NewStore(cfg.Blockhash)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("failed to open blockhash store: %w", err)
	}

	collector := metrics.NewCollector(metricsNamespace)
	client := solbc.NewClient(cfg.RPCURL, b.logger.WithComponent("rpc"))

	cache := blockhash.NewCache(client, store, b.logger.WithComponent("blockhash"),
		blockhash.WithTTL(time.Duration(cfg.Blockhash.TTLMs)*time.Millisecond),
		blockhash.WithMetrics(collector))

	feeEndpoint := cfg.FeeAPIURL
	if feeEndpoint == "" {
		feeEndpoint = cfg.RPCURL
	}
	estimator := fee.NewHeliusEstimator(feeEndpoint, cfg.PriorityLevel, b.logger.WithComponent("fee"))
	resolver := fee.NewResolver(estimator, fee.NewFileSettings(cfg.FeeSettingsPath), b.logger.WithComponent("fee"),
		fee.WithResolverMetrics(collector))

	b.logger.Debug("Services wired",
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("fee_endpoint", feeEndpoint),
		zap.String("blockhash_store", cfg.Blockhash.Store))

	return &env{
		base:     b,
		metrics:  collector,
		store:    store,
		client:   client,
		cache:    cache,
		resolver: resolver,
		preparer: transaction.NewPreparer(resolver, cache, cfg.ComputeUnitLimit, b.logger.WithComponent("transaction")),
	}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("Failed to close blockhash store", zap.Error(err))
	}
	e.base.close()
}
