// Package fee turns a user fee strategy and a live estimate into the
// micro-lamports-per-compute-unit price attached to a transaction.
package fee

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/txprep/internal/utils/metrics"
	"go.uber.org/zap"
)

// Resolver applies the persisted strategy to an Estimator.
type Resolver struct {
	estimator Estimator
	settings  SettingsProvider
	logger    *zap.Logger
	metrics   *metrics.Collector
}

type ResolverOption func(*Resolver)

func WithResolverMetrics(m *metrics.Collector) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func NewResolver(estimator Estimator, settings SettingsProvider, logger *zap.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		estimator: estimator,
		settings:  settings,
		logger:    logger.Named("fee-resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Settings loads and decodes the persisted settings. Read and decode faults
// are logged and yield Default.
func (r *Resolver) Settings(ctx context.Context) Settings {
	if r.settings == nil {
		return Default{}
	}
	data, err := r.settings.LoadSettings(ctx)
	if err != nil {
		r.logger.Warn("Failed to load fee settings, using defaults", zap.Error(err))
		return Default{}
	}
	s, err := ParseSettings(data)
	switch {
	case errors.Is(err, ErrInvalidField):
		r.logger.Warn("Ignoring invalid fee settings fields",
			zap.String("strategy", s.Strategy()),
			zap.Error(err))
	case err != nil:
		r.logger.Warn("Ignoring fee settings", zap.Error(err))
	}
	return s
}

// Resolve computes the priority fee for tx using the persisted settings.
func (r *Resolver) Resolve(ctx context.Context, tx *solana.Transaction) (float64, error) {
	return r.ResolveWith(ctx, tx, r.Settings(ctx))
}

// ResolveWith computes the priority fee for tx under s. Custom returns its fee
// without a network call; every other strategy multiplies the live estimate.
func (r *Resolver) ResolveWith(ctx context.Context, tx *solana.Transaction, s Settings) (float64, error) {
	if s == nil {
		s = Default{}
	}

	multiplier := 1.0
	switch v := s.(type) {
	case Custom:
		r.metrics.RecordFeeResolution(v.Strategy(), v.Fee)
		return v.Fee, nil
	case Multiple:
		multiplier = v.Multiplier
	}

	start := time.Now()
	estimate, err := r.estimator.EstimatePriorityFee(ctx, tx)
	r.metrics.ObserveFeeEstimate(time.Since(start))
	if err != nil {
		return 0, err
	}

	fee := estimate * multiplier
	r.metrics.RecordFeeResolution(s.Strategy(), fee)
	r.logger.Debug("Priority fee resolved",
		zap.String("strategy", s.Strategy()),
		zap.Float64("estimate", estimate),
		zap.Float64("multiplier", multiplier),
		zap.Float64("fee", fee))
	return fee, nil
}
