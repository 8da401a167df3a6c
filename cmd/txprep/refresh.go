// cmd/txprep/refresh.go
package main

import (
	"context"
	"time"

	"github.com/rovshanmuradov/txprep/internal/blockchain"
	"go.uber.org/zap"
)

type blockhashGetter interface {
	Get(ctx context.Context) (blockchain.Blockhash, error)
}

// refreshLoop calls Get on every tick until ctx is done. A fresh entry is a
// cheap store hit, an expired one is refetched and written back for every
// process sharing the store.
func refreshLoop(ctx context.Context, cache blockhashGetter, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh := func() {
		bh, err := cache.Get(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("Blockhash refresh failed", zap.Error(err))
			}
			return
		}
		logger.Debug("Blockhash ready",
			zap.String("blockhash", bh.Hash.String()),
			zap.Uint64("last_valid_block_height", bh.LastValidBlockHeight))
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
