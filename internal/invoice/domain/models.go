// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "ISSUED"
	InvoiceStatusVoid   InvoiceStatus = "VOID"
)

// Invoice is a member bill with the tax result of the session it was
// written from. Amounts are stored rounded to the configured decimal places.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey"`
	InvoiceNumber string          `gorm:"type:text;not null;uniqueIndex:ux_invoices_number"`
	MemberName    string          `gorm:"type:text;not null;index"`
	Description   *string         `gorm:"type:text"`
	Status        InvoiceStatus   `gorm:"type:text;not null;index"`
	Currency      string          `gorm:"type:text;not null"`
	TaxMode       string          `gorm:"type:text;not null"`
	BaseAmount    decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	TaxAmount     decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	IssuedAt      time.Time       `gorm:"not null"`
	VoidedAt      *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`

	TaxLines []InvoiceTaxLine `gorm:"foreignKey:InvoiceID"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceSequence hands out monotonic invoice numbers per day.
type InvoiceSequence struct {
	Scope     string    `gorm:"primaryKey;type:varchar(32)"`
	Value     int64     `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName sets the database table name.
func (InvoiceSequence) TableName() string { return "invoice_sequences" }
