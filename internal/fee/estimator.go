package fee

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"
)

// Priority levels understood by getPriorityFeeEstimate.
const (
	PriorityMin       = "Min"
	PriorityLow       = "Low"
	PriorityMedium    = "Medium"
	PriorityHigh      = "High"
	PriorityVeryHigh  = "VeryHigh"
	PriorityUnsafeMax = "UnsafeMax"
)

const estimateMethod = "getPriorityFeeEstimate"

// Estimator returns a live priority fee estimate, in micro-lamports per
// compute unit, for a prepared transaction.
type Estimator interface {
	EstimatePriorityFee(ctx context.Context, tx *solana.Transaction) (float64, error)
}

// HeliusEstimator calls a getPriorityFeeEstimate JSON-RPC endpoint.
// There is no timeout or retry here; callers bound the call through ctx.
type HeliusEstimator struct {
	client        jsonrpc.RPCClient
	endpoint      string
	priorityLevel string
	logger        *zap.Logger
}

// NewHeliusEstimator creates an estimator. An empty priorityLevel requests the
// endpoint's recommended fee.
func NewHeliusEstimator(endpoint, priorityLevel string, logger *zap.Logger) *HeliusEstimator {
	return &HeliusEstimator{
		client:        jsonrpc.NewClient(endpoint),
		endpoint:      endpoint,
		priorityLevel: priorityLevel,
		logger:        logger.Named("fee-estimator"),
	}
}

type estimateOptions struct {
	PriorityLevel string `json:"priorityLevel,omitempty"`
	Recommended   bool   `json:"recommended,omitempty"`
}

type estimateParams struct {
	Transaction string          `json:"transaction"`
	Options     estimateOptions `json:"options"`
}

type estimateResult struct {
	PriorityFeeEstimate *float64 `json:"priorityFeeEstimate"`
}

func (e *HeliusEstimator) options() estimateOptions {
	if e.priorityLevel != "" {
		return estimateOptions{PriorityLevel: e.priorityLevel}
	}
	return estimateOptions{Recommended: true}
}

func (e *HeliusEstimator) EstimatePriorityFee(ctx context.Context, tx *solana.Transaction) (float64, error) {
	encoded, err := EncodeTransaction(tx)
	if err != nil {
		return 0, err
	}

	params := []interface{}{
		estimateParams{Transaction: encoded, Options: e.options()},
	}

	var out estimateResult
	if err := e.client.CallForInto(ctx, &out, estimateMethod, params); err != nil {
		e.logger.Debug("Priority fee estimate failed",
			zap.String("endpoint", e.endpoint),
			zap.Error(err))
		return 0, fmt.Errorf("failed to get priority fee estimate: %w", err)
	}
	if out.PriorityFeeEstimate == nil {
		return 0, fmt.Errorf("failed to get priority fee estimate: %w", ErrMissingEstimate)
	}
	return *out.PriorityFeeEstimate, nil
}

// EncodeTransaction serializes tx to base58 wire format. Missing signatures
// are sent as zeroed slots so unsigned transactions can be estimated.
func EncodeTransaction(tx *solana.Transaction) (string, error) {
	if tx == nil {
		return "", ErrNilTransaction
	}
	draft := *tx
	required := int(draft.Message.Header.NumRequiredSignatures)
	if len(draft.Signatures) != required {
		sigs := make([]solana.Signature, required)
		copy(sigs, draft.Signatures)
		draft.Signatures = sigs
	}
	data, err := draft.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base58.Encode(data), nil
}
