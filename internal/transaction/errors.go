package transaction

import "errors"

var (
	ErrNoInstructions = errors.New("no instructions to prepare")
	ErrZeroBlockhash  = errors.New("blockhash source returned an empty blockhash")
)
