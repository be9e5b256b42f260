package domain

import (
	"context"
	"io"
	"time"

	"github.com/smallbiznis/gymdesk/internal/tax/selection"
)

type Service interface {
	CreateFromSession(ctx context.Context, sessionID string, req CreateRequest) (*Response, error)
	UpdateFromSession(ctx context.Context, invoiceID, sessionID string) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Void(ctx context.Context, id string) (*Response, error)
	Selection(ctx context.Context, id string) (selection.Selection, error)
	RenderReceipt(ctx context.Context, id string) (io.Reader, error)
}

type CreateRequest struct {
	MemberName  string  `json:"member_name"`
	Description *string `json:"description"`
}

type ListRequest struct {
	Status     string
	MemberName string
	Limit      int
}

type TaxLineResponse struct {
	TaxID   string  `json:"tax_id"`
	TaxCode string  `json:"tax_code"`
	TaxName string  `json:"tax_name"`
	TaxMode string  `json:"tax_mode"`
	TaxRate float64 `json:"tax_rate"`
	Amount  string  `json:"amount"`
}

type Response struct {
	ID            string            `json:"id"`
	InvoiceNumber string            `json:"invoice_number"`
	MemberName    string            `json:"member_name"`
	Description   *string           `json:"description,omitempty"`
	Status        InvoiceStatus     `json:"status"`
	Currency      string            `json:"currency"`
	TaxMode       string            `json:"tax_mode"`
	TaxTypeLabel  string            `json:"tax_type_label"`
	BaseAmount    string            `json:"base_amount"`
	TaxAmount     string            `json:"tax_amount"`
	TotalAmount   string            `json:"total_amount"`
	TaxLines      []TaxLineResponse `json:"tax_lines"`
	IssuedAt      time.Time         `json:"issued_at"`
	VoidedAt      *time.Time        `json:"voided_at,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
