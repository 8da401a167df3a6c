package transaction

import (
	"math"
	"math/bits"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/rovshanmuradov/txprep/internal/fee"
)

const microLamportsPerLamport = 1_000_000

// PriorityConfig describes the compute budget attached to a transaction.
type PriorityConfig struct {
	ComputeUnits uint32 // compute unit limit
	PriorityFee  uint64 // micro-lamports per compute unit
}

// TotalFeeLamports is the worst-case priority fee of the transaction.
func (c PriorityConfig) TotalFeeLamports() uint64 {
	return uint64(math.Ceil(float64(c.PriorityFee) * float64(c.ComputeUnits) / microLamportsPerLamport))
}

// Instructions builds SetComputeUnitLimit and, when a fee is set,
// SetComputeUnitPrice.
func (c PriorityConfig) Instructions() []solana.Instruction {
	var instructions []solana.Instruction
	if c.ComputeUnits > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitLimitInstruction(c.ComputeUnits).Build())
	}
	if c.PriorityFee > 0 {
		instructions = append(instructions, computebudget.NewSetComputeUnitPriceInstruction(c.PriorityFee).Build())
	}
	return instructions
}

// microLamports rounds a resolved fee up to a whole micro-lamport price.
func microLamports(resolved float64) uint64 {
	if resolved <= 0 || math.IsNaN(resolved) {
		return 0
	}
	if resolved >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(math.Ceil(resolved))
}

// capPrice lowers price so that price*units stays within the cap.
// A zero-valued cap leaves the price unchanged.
func capPrice(price uint64, units uint32, c fee.Cap) (uint64, bool) {
	if !c.IsSet() || units == 0 {
		return price, false
	}
	hi, lo := bits.Mul64(c.Lamports(), microLamportsPerLamport)
	if hi >= uint64(units) {
		// предел больше любой цены в uint64
		return price, false
	}
	maxPrice, _ := bits.Div64(hi, lo, uint64(units))
	if price > maxPrice {
		return maxPrice, true
	}
	return price, false
}
