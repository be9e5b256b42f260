package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceTaxLine captures one tax applied to an invoice, copied from the
// tax setting at the time the invoice was written.
type InvoiceTaxLine struct {
	ID        snowflake.ID    `gorm:"primaryKey"`
	InvoiceID snowflake.ID    `gorm:"not null;index"`
	TaxID     snowflake.ID    `gorm:"not null;index"`
	TaxCode   string          `gorm:"type:text;not null"`
	TaxName   string          `gorm:"type:text;not null"`
	TaxMode   string          `gorm:"type:text;not null"`
	TaxRate   float64         `gorm:"not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Position  int             `gorm:"not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName sets the database table name.
func (InvoiceTaxLine) TableName() string { return "invoice_tax_lines" }
