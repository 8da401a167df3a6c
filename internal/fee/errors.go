package fee

import "errors"

var (
	ErrNilTransaction  = errors.New("nil transaction")
	ErrMissingEstimate = errors.New("response has no priorityFeeEstimate")
	ErrInvalidField    = errors.New("invalid fee settings field")
)
