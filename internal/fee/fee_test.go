package fee

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/require"
)

type mockEstimator struct {
	mu       sync.Mutex
	estimate float64
	err      error
	calls    int
}

func (m *mockEstimator) EstimatePriorityFee(context.Context, *solana.Transaction) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.estimate, m.err
}

type failingProvider struct{ err error }

func (p failingProvider) LoadSettings(context.Context) ([]byte, error) {
	return nil, p.err
}

var errEstimate = errors.New("fee api unavailable")

func newTransferTx(t *testing.T) *solana.Transaction {
	t.Helper()
	return newTransferTxFrom(t, solana.NewWallet().PublicKey())
}

func newTransferTxFrom(t *testing.T, from solana.PublicKey) *solana.Transaction {
	t.Helper()
	to := solana.NewWallet().PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1_000, from, to).Build()},
		solana.Hash{9},
		solana.TransactionPayer(from),
	)
	require.NoError(t, err)
	return tx
}
