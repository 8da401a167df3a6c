package blockhash

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rovshanmuradov/txprep/internal/blockchain"
)

// Entry is a cached blockhash together with its absolute expiry.
// It may be served only while now < ExpiresAt.
type Entry struct {
	Blockhash blockchain.Blockhash
	ExpiresAt int64 // unix milliseconds
}

// Valid reports whether the entry may still be served at the given instant.
func (e Entry) Valid(now time.Time) bool {
	return now.UnixMilli() < e.ExpiresAt
}

type blockhashJSON struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

type entryJSON struct {
	Blockhash blockhashJSON `json:"blockhash"`
	ExpiresAt int64         `json:"expiresAt"`
}

func encodeEntry(e Entry) ([]byte, error) {
	return json.Marshal(entryJSON{
		Blockhash: blockhashJSON{
			Blockhash:            e.Blockhash.Hash.String(),
			LastValidBlockHeight: e.Blockhash.LastValidBlockHeight,
		},
		ExpiresAt: e.ExpiresAt,
	})
}

func decodeEntry(data []byte) (Entry, error) {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Entry{}, fmt.Errorf("decode cache entry: %w", err)
	}
	hash, err := solana.HashFromBase58(raw.Blockhash.Blockhash)
	if err != nil {
		return Entry{}, fmt.Errorf("decode cached blockhash: %w", err)
	}
	return Entry{
		Blockhash: blockchain.Blockhash{
			Hash:                 hash,
			LastValidBlockHeight: raw.Blockhash.LastValidBlockHeight,
		},
		ExpiresAt: raw.ExpiresAt,
	}, nil
}
