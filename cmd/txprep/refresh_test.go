package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/txprep/internal/blockchain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type countingGetter struct {
	calls atomic.Int32
	err   error
}

func (g *countingGetter) Get(context.Context) (blockchain.Blockhash, error) {
	g.calls.Add(1)
	return blockchain.Blockhash{Hash: solana.Hash{1}, LastValidBlockHeight: 10}, g.err
}

func TestRefreshLoopStopsOnCancel(t *testing.T) {
	g := &countingGetter{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		refreshLoop(ctx, g, 5*time.Millisecond, zap.NewNop())
		close(done)
	}()

	assert.Eventually(t, func() bool { return g.calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh loop did not stop")
	}
}

func TestRefreshLoopLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	g := &countingGetter{err: errors.New("rpc down")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go refreshLoop(ctx, g, 5*time.Millisecond, zap.New(core))

	assert.Eventually(t, func() bool {
		return logs.FilterMessage("Blockhash refresh failed").Len() >= 2
	}, time.Second, time.Millisecond)
}
