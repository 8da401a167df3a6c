// internal/blockchain/types.go
package blockchain

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Blockhash is a network freshness token together with the last block height
// at which a transaction carrying it is still accepted.
type Blockhash struct {
	Hash                 solana.Hash
	LastValidBlockHeight uint64
}

// IsZero reports whether the blockhash was never populated.
func (b Blockhash) IsZero() bool {
	return b.Hash == solana.Hash{}
}

// TransactionOptions определяет опции для отправки транзакций.
type TransactionOptions struct {
	SkipPreflight       bool
	PreflightCommitment rpc.CommitmentType
}

// Client определяет общий интерфейс для взаимодействия с блокчейном.
type Client interface {
	// Получить последний blockhash вместе с высотой истечения.
	LatestBlockhash(ctx context.Context) (Blockhash, error)
	// Отправить транзакцию с опциями.
	SendTransaction(ctx context.Context, tx *solana.Transaction, opts TransactionOptions) (solana.Signature, error)
	// Получить баланс аккаунта.
	GetBalance(ctx context.Context, pubkey solana.PublicKey, commitment rpc.CommitmentType) (uint64, error)
	// Ожидание подтверждения транзакции.
	WaitForConfirmation(ctx context.Context, signature solana.Signature) error
}
