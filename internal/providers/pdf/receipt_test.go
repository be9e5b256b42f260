package pdf

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReceipt(t *testing.T) {
	p := New()
	r, err := p.GenerateReceipt(context.Background(), ReceiptData{
		GymName:       "Iron Temple",
		InvoiceNumber: "GYM-20260704-0001",
		IssueDate:     "2026-07-04",
		Status:        "ISSUED",
		MemberName:    "Asha",
		TaxTypeLabel:  "Tax Exclusive",
		TaxLines: []ReceiptTaxLine{
			{Name: "CGST", Rate: "9%", Mode: "exclusive", Amount: "INR 90.00"},
			{Name: "SGST", Rate: "9%", Mode: "exclusive", Amount: "INR 90.00"},
		},
		BaseAmount:  "INR 1000.00",
		TaxAmount:   "INR 180.00",
		TotalAmount: "INR 1180.00",
	})
	require.NoError(t, err)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.True(t, len(body) > 4)
	assert.Equal(t, "%PDF", string(body[:4]))
}

func TestGenerateReceipt_RequiresNumber(t *testing.T) {
	_, err := New().GenerateReceipt(context.Background(), ReceiptData{})
	assert.Error(t, err)
}
