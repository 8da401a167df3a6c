package transaction

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/rovshanmuradov/txprep/internal/blockchain"
	"github.com/rovshanmuradov/txprep/internal/blockhash"
	"github.com/rovshanmuradov/txprep/internal/fee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEstimator struct {
	estimate float64
	err      error
}

func (s stubEstimator) EstimatePriorityFee(context.Context, *solana.Transaction) (float64, error) {
	return s.estimate, s.err
}

type stubSource struct {
	bh  blockchain.Blockhash
	err error
}

func (s stubSource) LatestBlockhash(context.Context) (blockchain.Blockhash, error) {
	return s.bh, s.err
}

var computeBudgetProgram = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")

var testBlockhash = blockchain.Blockhash{Hash: solana.Hash{0xAB, 0xCD}, LastValidBlockHeight: 777}

func newTestPreparer(settings string, est stubEstimator, src stubSource, units uint32) *Preparer {
	resolver := fee.NewResolver(est, fee.StaticSettings(settings), zap.NewNop())
	cache := blockhash.NewCache(src, blockhash.NewMemoryStore(), zap.NewNop())
	return NewPreparer(resolver, cache, units, zap.NewNop())
}

func transferInstruction(from solana.PublicKey) solana.Instruction {
	return system.NewTransferInstruction(5_000, from, solana.NewWallet().PublicKey()).Build()
}

func TestPrepareAttachesComputeBudgetAndBlockhash(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	p := newTestPreparer(`{"option":"multiple","multiplier":2}`,
		stubEstimator{estimate: 500.2}, stubSource{bh: testBlockhash}, 300_000)

	prepared, err := p.Prepare(context.Background(), payer, transferInstruction(payer))
	require.NoError(t, err)

	assert.Equal(t, testBlockhash, prepared.Blockhash)
	assert.Equal(t, testBlockhash.Hash, prepared.Transaction.Message.RecentBlockhash)
	assert.Equal(t, 1000.4, prepared.ResolvedFee)
	assert.Equal(t, uint64(1001), prepared.Priority.PriorityFee)
	assert.Equal(t, uint32(300_000), prepared.Priority.ComputeUnits)
	assert.Equal(t, "multiple", prepared.StrategyName)
	assert.False(t, prepared.Capped)

	msg := prepared.Transaction.Message
	require.Len(t, msg.Instructions, 3)
	for i := 0; i < 2; i++ {
		assert.Equal(t, computeBudgetProgram, msg.AccountKeys[msg.Instructions[i].ProgramIDIndex])
	}
	assert.Equal(t, solana.SystemProgramID, msg.AccountKeys[msg.Instructions[2].ProgramIDIndex])

	assert.True(t, msg.AccountKeys[0].Equals(payer))
	assert.Empty(t, prepared.Transaction.Signatures)
}

func TestPrepareCustomFeeSkipsEstimator(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	p := newTestPreparer(`{"option":"custom","customFee":1234}`,
		stubEstimator{err: errors.New("must not be called")}, stubSource{bh: testBlockhash}, 0)

	prepared, err := p.Prepare(context.Background(), payer, transferInstruction(payer))
	require.NoError(t, err)
	assert.Equal(t, uint64(1234), prepared.Priority.PriorityFee)
	assert.Equal(t, uint32(DefaultComputeUnits), prepared.Priority.ComputeUnits)
}

func TestPrepareZeroFeeOmitsPriceInstruction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	p := newTestPreparer(``, stubEstimator{estimate: 0}, stubSource{bh: testBlockhash}, 100_000)

	prepared, err := p.Prepare(context.Background(), payer, transferInstruction(payer))
	require.NoError(t, err)
	assert.Zero(t, prepared.Priority.PriorityFee)
	assert.Len(t, prepared.Transaction.Message.Instructions, 2)
}

func TestPrepareCapsFee(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	// 1000 lamports over 200k units allows at most 5000 micro-lamports per unit
	p := newTestPreparer(`{"option":"dynamic","maxCapFee":1000,"maxCapFeeUnit":"lamports"}`,
		stubEstimator{estimate: 10_000}, stubSource{bh: testBlockhash}, 200_000)

	prepared, err := p.Prepare(context.Background(), payer, transferInstruction(payer))
	require.NoError(t, err)
	assert.True(t, prepared.Capped)
	assert.Equal(t, uint64(5_000), prepared.Priority.PriorityFee)
	assert.Equal(t, uint64(1_000), prepared.Priority.TotalFeeLamports())
}

func TestPrepareErrorsPropagate(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	feeErr := errors.New("fee api down")
	rpcErr := errors.New("rpc down")

	p := newTestPreparer(``, stubEstimator{err: feeErr}, stubSource{bh: testBlockhash}, 0)
	_, err := p.Prepare(context.Background(), payer, transferInstruction(payer))
	assert.ErrorIs(t, err, feeErr)

	p = newTestPreparer(``, stubEstimator{estimate: 1}, stubSource{err: rpcErr}, 0)
	_, err = p.Prepare(context.Background(), payer, transferInstruction(payer))
	assert.ErrorIs(t, err, rpcErr)

	_, err = p.Prepare(context.Background(), payer)
	assert.ErrorIs(t, err, ErrNoInstructions)

	p = newTestPreparer(``, stubEstimator{estimate: 1}, stubSource{bh: blockchain.Blockhash{LastValidBlockHeight: 5}}, 0)
	_, err = p.Prepare(context.Background(), payer, transferInstruction(payer))
	assert.ErrorIs(t, err, ErrZeroBlockhash)
}

func TestCapPrice(t *testing.T) {
	tests := []struct {
		name       string
		price      uint64
		units      uint32
		cap        fee.Cap
		want       uint64
		wantCapped bool
	}{
		{name: "no cap", price: 9_999, units: 200_000, want: 9_999},
		{name: "under cap", price: 100, units: 200_000, cap: fee.Cap{Amount: 0.001, Unit: fee.CapUnitSOL}, want: 100},
		{name: "sol cap", price: 10_000_000, units: 200_000, cap: fee.Cap{Amount: 0.001, Unit: fee.CapUnitSOL}, want: 5_000_000, wantCapped: true},
		{name: "cap above uint64 micro-lamports", price: 5_000_000_000, units: 200_000, cap: fee.Cap{Amount: 18_447, Unit: fee.CapUnitSOL}, want: 5_000_000_000},
		{name: "huge cap tiny units", price: math.MaxUint64, units: 1, cap: fee.Cap{Amount: 1e12, Unit: fee.CapUnitSOL}, want: math.MaxUint64},
		{name: "zero units", price: 10, units: 0, cap: fee.Cap{Amount: 1, Unit: fee.CapUnitLamports}, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, capped := capPrice(tt.price, tt.units, tt.cap)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCapped, capped)
		})
	}
}

func TestMicroLamports(t *testing.T) {
	assert.Equal(t, uint64(0), microLamports(-5))
	assert.Equal(t, uint64(0), microLamports(0))
	assert.Equal(t, uint64(1), microLamports(0.01))
	assert.Equal(t, uint64(750), microLamports(750))
}
