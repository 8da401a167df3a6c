package solbc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRPC answers JSON-RPC calls from a per-method queue of results; the last
// result of a method is repeated once its queue is drained.
type fakeRPC struct {
	mu      sync.Mutex
	results map[string][]string
	calls   map[string]int
}

func newFakeRPC(t *testing.T) (*fakeRPC, *httptest.Server) {
	t.Helper()
	f := &fakeRPC{results: map[string][]string{}, calls: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeRPC) on(method string, results ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[method] = append(f.results[method], results...)
}

func (f *fakeRPC) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeRPC) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	idx := f.calls[req.Method]
	f.calls[req.Method]++
	queue := f.results[req.Method]
	f.mu.Unlock()

	id := string(req.ID)
	if id == "" {
		id = "1"
	}
	w.Header().Set("Content-Type", "application/json")
	if len(queue) == 0 {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + id + `,"error":{"code":-32601,"message":"method not found"}}`))
		return
	}
	if idx >= len(queue) {
		idx = len(queue) - 1
	}
	_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + id + `,` + queue[idx] + `}`))
}

func statusResult(status string, txErr string) string {
	return `"result":{"context":{"slot":10},"value":[{"slot":10,"confirmations":null,"err":` + txErr +
		`,"confirmationStatus":"` + status + `"}]}`
}

func TestLatestBlockhash(t *testing.T) {
	hash := solana.Hash{7, 7, 7}
	f, srv := newFakeRPC(t)
	f.on("getLatestBlockhash",
		`"result":{"context":{"slot":42},"value":{"blockhash":"`+hash.String()+`","lastValidBlockHeight":3090}}`)

	c := NewClient(srv.URL, zap.NewNop())
	bh, err := c.LatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hash, bh.Hash)
	assert.Equal(t, uint64(3090), bh.LastValidBlockHeight)
}

func TestLatestBlockhashError(t *testing.T) {
	_, srv := newFakeRPC(t)

	_, err := NewClient(srv.URL, zap.NewNop()).LatestBlockhash(context.Background())
	assert.Error(t, err)
}

func TestGetBalance(t *testing.T) {
	f, srv := newFakeRPC(t)
	f.on("getBalance", `"result":{"context":{"slot":1},"value":2500000}`)

	got, err := NewClient(srv.URL, zap.NewNop()).
		GetBalance(context.Background(), solana.NewWallet().PublicKey(), rpc.CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000), got)
}

func TestWaitForConfirmation(t *testing.T) {
	f, srv := newFakeRPC(t)
	f.on("getSignatureStatuses",
		`"result":{"context":{"slot":10},"value":[null]}`,
		statusResult("processed", "null"),
		statusResult("confirmed", "null"),
	)

	c := NewClient(srv.URL, zap.NewNop(), WithConfirmation(5*time.Millisecond, 5*time.Second))
	err := c.WaitForConfirmation(context.Background(), solana.Signature{1})
	require.NoError(t, err)
	assert.Equal(t, 3, f.count("getSignatureStatuses"))
}

func TestWaitForConfirmationOnChainError(t *testing.T) {
	f, srv := newFakeRPC(t)
	f.on("getSignatureStatuses", statusResult("confirmed", `{"InstructionError":[0,{"Custom":1}]}`))

	c := NewClient(srv.URL, zap.NewNop(), WithConfirmation(5*time.Millisecond, 5*time.Second))
	err := c.WaitForConfirmation(context.Background(), solana.Signature{2})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransactionFailed)
	assert.Equal(t, 1, f.count("getSignatureStatuses"))
}

func TestWaitForConfirmationTimeout(t *testing.T) {
	f, srv := newFakeRPC(t)
	f.on("getSignatureStatuses", `"result":{"context":{"slot":10},"value":[null]}`)

	c := NewClient(srv.URL, zap.NewNop(), WithConfirmation(5*time.Millisecond, 50*time.Millisecond))
	err := c.WaitForConfirmation(context.Background(), solana.Signature{3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestWaitForConfirmationCancelled(t *testing.T) {
	f, srv := newFakeRPC(t)
	f.on("getSignatureStatuses", `"result":{"context":{"slot":10},"value":[null]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, zap.NewNop(), WithConfirmation(5*time.Millisecond, 5*time.Second))
	assert.Error(t, c.WaitForConfirmation(ctx, solana.Signature{4}))
}
