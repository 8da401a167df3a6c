// cmd/txprep/balance.go
package main

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/txprep/internal/transaction"
)

// lamportsPerSignature is the base fee charged per required signature.
const lamportsPerSignature = 5000

var errInsufficientBalance = errors.New("insufficient balance")

// requiredLamports is what the payer spends at most: the transferred amount,
// the base fee and the priority fee at the full compute unit limit.
func requiredLamports(amount uint64, p *transaction.Prepared) uint64 {
	signatures := uint64(p.Transaction.Message.Header.NumRequiredSignatures)
	return amount + signatures*lamportsPerSignature + p.Priority.TotalFeeLamports()
}

func checkBalance(balance, amount uint64, p *transaction.Prepared) error {
	if need := requiredLamports(amount, p); balance < need {
		return fmt.Errorf("%w: have %d lamports, need %d", errInsufficientBalance, balance, need)
	}
	return nil
}
