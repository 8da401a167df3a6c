// cmd/txprep/commands.go
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

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rovshanmuradov/txprep/internal/blockchain"
	"github.com/rovshanmuradov/txprep/internal/fee"
	"github.com/rovshanmuradov/txprep/internal/transaction"
	"github.com/rovshanmuradov/txprep/internal/wallet"
	"go.uber.org/zap"
	cli "gopkg.in/urfave/cli.v1"
)

const sampleTransferLamports = 1

func blockhashAction(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	bh, err := e.cache.Get(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("blockhash:               %s\n", bh.Hash)
	fmt.Printf("last valid block height: %d\n", bh.LastValidBlockHeight)
	return nil
}

func feeAction(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	w, err := wallet.Load(e.cfg.PrivateKey, e.cfg.KeypairPath)
	if err != nil {
		return err
	}

	end := e.logger.TrackPerformance("fee")
	defer end()

	// перевод самому себе: достаточно для оценки, не отправляется
	ix := system.NewTransferInstruction(sampleTransferLamports, w.PublicKey, w.PublicKey).Build()
	prepared, err := e.preparer.Prepare(context.Background(), w.PublicKey, ix)
	if err != nil {
		return err
	}
	printPrepared(prepared)
	return nil
}

func settingsAction(ctx *cli.Context) error {
	b, err := loadBase(ctx)
	if err != nil {
		return err
	}
	defer b.close()

	s, err := settingsFromFlags(
		ctx.String(optionFlag.Name),
		ctx.Float64(customFeeFlag.Name),
		ctx.Float64(multiplierFlag.Name),
		ctx.Float64(maxCapFlag.Name),
		ctx.String(capUnitFlag.Name),
	)
	if err != nil {
		return err
	}

	if err := fee.NewFileSettings(b.cfg.FeeSettingsPath).Save(s); err != nil {
		return err
	}
	b.logger.Info("Fee settings saved",
		zap.String("path", b.cfg.FeeSettingsPath),
		zap.String("strategy", s.Strategy()))
	return nil
}

func transferAction(ctx *cli.Context) error {
	to, err := solana.PublicKeyFromBase58(ctx.String(toFlag.Name))
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	amount := ctx.Uint64(lamportsFlag.Name)
	if amount == 0 {
		return errors.New("--lamports must be positive")
	}

	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	w, err := wallet.Load(e.cfg.PrivateKey, e.cfg.KeypairPath)
	if err != nil {
		return err
	}

	log := e.logger.WithOperation("transfer")
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ix := system.NewTransferInstruction(amount, w.PublicKey, to).Build()
	prepared, err := e.preparer.Prepare(runCtx, w.PublicKey, ix)
	if err != nil {
		return err
	}
	balance, err := e.client.GetBalance(runCtx, w.PublicKey, rpc.CommitmentConfirmed)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}
	if err := checkBalance(balance, amount, prepared); err != nil {
		return err
	}

	if err := w.SignTransaction(prepared.Transaction); err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := e.client.SendTransaction(runCtx, prepared.Transaction, blockchain.TransactionOptions{
		SkipPreflight: ctx.Bool(skipPreflightFlag.Name),
	})
	if err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}
	log.Info("Transaction sent",
		zap.String("signature", sig.String()),
		zap.Uint64("priority_fee", prepared.Priority.PriorityFee),
		zap.String("strategy", prepared.StrategyName))
	fmt.Println(sig.String())

	if ctx.Bool(noWaitFlag.Name) {
		return nil
	}
	if err := e.client.WaitForConfirmation(runCtx, sig); err != nil {
		return err
	}
	log.Info("Transaction confirmed", zap.String("signature", sig.String()))
	return nil
}

func serveAction(ctx *cli.Context) error {
	e, err := newEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *http.Server
	if addr := e.cfg.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(e.metrics.Registry(), promhttp.HandlerOpts{}))
		srv = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				e.logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		e.logger.Info("Metrics server started", zap.String("addr", addr))
	}

	interval := time.Duration(e.cfg.Blockhash.RefreshMs) * time.Millisecond
	e.logger.Info("Keeping blockhash warm",
		zap.Duration("interval", interval),
		zap.Duration("ttl", e.cache.TTL()),
		zap.String("store", e.cfg.Blockhash.Store))

	refreshLoop(runCtx, e.cache, interval, e.logger.WithComponent("refresher"))

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			e.logger.Warn("Metrics server shutdown failed", zap.Error(err))
		}
	}
	e.logger.Info("Shutting down")
	return nil
}

func printPrepared(p *transaction.Prepared) {
	fmt.Printf("strategy:        %s\n", p.StrategyName)
	fmt.Printf("resolved fee:    %.4f\n", p.ResolvedFee)
	fmt.Printf("unit price:      %d micro-lamports\n", p.Priority.PriorityFee)
	fmt.Printf("compute units:   %d\n", p.Priority.ComputeUnits)
	fmt.Printf("priority total:  %d lamports\n", p.Priority.TotalFeeLamports())
	fmt.Printf("capped:          %t\n", p.Capped)
	fmt.Printf("blockhash:       %s (valid until height %d)\n", p.Blockhash.Hash, p.Blockhash.LastValidBlockHeight)
}
