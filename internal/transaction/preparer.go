// Package transaction finalizes instructions into a transaction ready for
// signing: priority fee, compute budget and a fresh blockhash.
package transaction

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/txprep/internal/blockchain"
	"github.com/rovshanmuradov/txprep/internal/fee"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultComputeUnits is used when the preparer is given no limit.
const DefaultComputeUnits = 200_000

// BlockhashSource supplies a fresh blockhash, normally a *blockhash.Cache.
type BlockhashSource interface {
	Get(ctx context.Context) (blockchain.Blockhash, error)
}

// FeeResolver computes the priority fee for a draft transaction,
// normally a *fee.Resolver.
type FeeResolver interface {
	Settings(ctx context.Context) fee.Settings
	ResolveWith(ctx context.Context, tx *solana.Transaction, s fee.Settings) (float64, error)
}

// Prepared is an unsigned transaction together with the values chosen for it.
type Prepared struct {
	Transaction  *solana.Transaction
	Blockhash    blockchain.Blockhash
	Priority     PriorityConfig
	ResolvedFee  float64 // fee returned by the resolver before rounding and capping
	Capped       bool
	StrategyName string
}

type Preparer struct {
	fees         FeeResolver
	blockhashes  BlockhashSource
	computeUnits uint32
	logger       *zap.Logger
}

func NewPreparer(fees FeeResolver, blockhashes BlockhashSource, computeUnits uint32, logger *zap.Logger) *Preparer {
	if computeUnits == 0 {
		computeUnits = DefaultComputeUnits
	}
	return &Preparer{
		fees:         fees,
		blockhashes:  blockhashes,
		computeUnits: computeUnits,
		logger:       logger.Named("tx-preparer"),
	}
}

// Prepare resolves the priority fee and a blockhash concurrently, then builds
// the final transaction with compute budget instructions in front of
// instructions. Any fee or blockhash fault aborts preparation.
func (p *Preparer) Prepare(ctx context.Context, payer solana.PublicKey, instructions ...solana.Instruction) (*Prepared, error) {
	if len(instructions) == 0 {
		return nil, ErrNoInstructions
	}

	draft, err := solana.NewTransaction(instructions, solana.Hash{}, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to create draft transaction: %w", err)
	}

	settings := p.fees.Settings(ctx)

	var (
		resolved float64
		bh       blockchain.Blockhash
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resolved, err = p.fees.ResolveWith(gCtx, draft, settings)
		if err != nil {
			return fmt.Errorf("failed to resolve priority fee: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bh, err = p.blockhashes.Get(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if bh.IsZero() {
		return nil, ErrZeroBlockhash
	}

	price, capped := capPrice(microLamports(resolved), p.computeUnits, settings.MaxCap())
	if capped {
		p.logger.Info("Priority fee capped",
			zap.Float64("resolved", resolved),
			zap.Uint64("capped_price", price),
			zap.Uint64("cap_lamports", settings.MaxCap().Lamports()))
	}

	priority := PriorityConfig{ComputeUnits: p.computeUnits, PriorityFee: price}
	all := append(priority.Instructions(), instructions...)

	tx, err := solana.NewTransaction(all, bh.Hash, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	p.logger.Debug("Transaction prepared",
		zap.String("strategy", settings.Strategy()),
		zap.Uint64("micro_lamports", price),
		zap.Uint32("compute_units", p.computeUnits),
		zap.String("blockhash", bh.Hash.String()))

	return &Prepared{
		Transaction:  tx,
		Blockhash:    bh,
		Priority:     priority,
		ResolvedFee:  resolved,
		Capped:       capped,
		StrategyName: settings.Strategy(),
	}, nil
}
