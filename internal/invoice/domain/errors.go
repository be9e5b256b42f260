package domain

import "errors"

var (
	ErrInvalidID         = errors.New("invalid_invoice_id")
	ErrNotFound          = errors.New("invoice_not_found")
	ErrInvalidMemberName = errors.New("invalid_member_name")
	ErrInvalidStatus     = errors.New("invalid_invoice_status")
	ErrInvoiceVoided     = errors.New("invoice_voided")

	ErrSessionAlreadyInvoiced = errors.New("billing_session_already_invoiced")
	ErrSessionBoundElsewhere  = errors.New("billing_session_bound_to_other_invoice")
)
