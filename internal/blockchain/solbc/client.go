// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/txprep/internal/blockchain"
	"go.uber.org/zap"
)

const (
	defaultPollInterval   = 500 * time.Millisecond
	defaultMaxPollDelay   = 2 * time.Second
	defaultConfirmTimeout = 60 * time.Second
)

var (
	ErrNotConfirmed      = errors.New("transaction not confirmed yet")
	ErrTransactionFailed = errors.New("transaction failed on chain")
	ErrEmptyResponse     = errors.New("empty RPC response")
)

// Client – тонкий адаптер для взаимодействия с блокчейном Solana через solana-go.
type Client struct {
	rpc            *rpc.Client
	commitment     rpc.CommitmentType
	pollInterval   time.Duration
	confirmTimeout time.Duration
	logger         *zap.Logger
}

type ClientOption func(*Client)

func WithCommitment(commitment rpc.CommitmentType) ClientOption {
	return func(c *Client) { c.commitment = commitment }
}

// WithConfirmation задаёт начальный интервал опроса и общий таймаут ожидания.
func WithConfirmation(pollInterval, timeout time.Duration) ClientOption {
	return func(c *Client) {
		if pollInterval > 0 {
			c.pollInterval = pollInterval
		}
		if timeout > 0 {
			c.confirmTimeout = timeout
		}
	}
}

// NewClient создаёт новый клиент, принимая RPC URL и логгер через dependency injection.
func NewClient(rpcURL string, logger *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		rpc:            rpc.New(rpcURL),
		commitment:     rpc.CommitmentFinalized,
		pollInterval:   defaultPollInterval,
		confirmTimeout: defaultConfirmTimeout,
		logger:         logger.Named("solbc-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestBlockhash получает последний blockhash и высоту, до которой он действителен.
func (c *Client) LatestBlockhash(ctx context.Context) (blockchain.Blockhash, error) {
	result, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		c.logger.Error("GetLatestBlockhash error", zap.Error(err))
		return blockchain.Blockhash{}, err
	}
	if result == nil || result.Value == nil {
		return blockchain.Blockhash{}, ErrEmptyResponse
	}
	return blockchain.Blockhash{
		Hash:                 result.Value.Blockhash,
		LastValidBlockHeight: result.Value.LastValidBlockHeight,
	}, nil
}

// SendTransaction отправляет подписанную транзакцию.
func (c *Client) SendTransaction(ctx context.Context, tx *solana.Transaction, opts blockchain.TransactionOptions) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       opts.SkipPreflight,
		PreflightCommitment: opts.PreflightCommitment,
	})
	if err != nil {
		c.logger.Error("SendTransaction error", zap.Error(err))
		return solana.Signature{}, err
	}
	return sig, nil
}

// GetBalance получает баланс аккаунта в лампортах.
func (c *Client) GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error) {
	result, err := c.rpc.GetBalance(ctx, pubkey, commitment)
	if err != nil {
		c.logger.Error("GetBalance error", zap.Error(err))
		return 0, err
	}
	return result.Value, nil
}

// WaitForConfirmation опрашивает статус подписи с экспоненциальной задержкой,
// пока транзакция не станет confirmed/finalized. Ошибка исполнения on-chain
// прекращает ожидание сразу.
func (c *Client) WaitForConfirmation(ctx context.Context, signature solana.Signature) error {
	operation := func() (struct{}, error) {
		statuses, err := c.rpc.GetSignatureStatuses(ctx, false, signature)
		if err != nil {
			return struct{}{}, err
		}
		if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
			return struct{}{}, ErrNotConfirmed
		}
		status := statuses.Value[0]
		if status.Err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err))
		}
		if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return struct{}{}, nil
		}
		return struct{}{}, ErrNotConfirmed
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.pollInterval
	policy.MaxInterval = defaultMaxPollDelay

	notify := func(err error, next time.Duration) {
		c.logger.Debug("Waiting for confirmation",
			zap.String("signature", signature.String()),
			zap.Duration("next_poll", next),
			zap.Error(err))
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(c.confirmTimeout),
		backoff.WithNotify(notify))
	if err != nil {
		return fmt.Errorf("confirmation of %s failed: %w", signature, err)
	}
	return nil
}

// Гарантируем, что Client реализует интерфейс blockchain.Client.
var _ blockchain.Client = (*Client)(nil)
