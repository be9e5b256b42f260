package billingsession

import "errors"

var (
	ErrSessionNotFound   = errors.New("billing_session_not_found")
	ErrInvalidBaseAmount = errors.New("invalid_base_amount")
	ErrInvalidTaxID      = errors.New("invalid_tax_id")
)
