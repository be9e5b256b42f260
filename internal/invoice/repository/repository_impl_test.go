package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/gymdesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceTaxLine{},
		&invoicedomain.InvoiceSequence{},
	))
	return db
}

var issuedAt = time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)

func newInvoice(id int64, number, member string) *invoicedomain.Invoice {
	invoiceID := snowflake.ID(id)
	return &invoicedomain.Invoice{
		ID:            invoiceID,
		InvoiceNumber: number,
		MemberName:    member,
		Status:        invoicedomain.InvoiceStatusIssued,
		Currency:      "INR",
		TaxMode:       "exclusive",
		BaseAmount:    decimal.RequireFromString("1000.00"),
		TaxAmount:     decimal.RequireFromString("180.00"),
		TotalAmount:   decimal.RequireFromString("1180.00"),
		IssuedAt:      issuedAt,
		CreatedAt:     issuedAt,
		UpdatedAt:     issuedAt,
		TaxLines: []invoicedomain.InvoiceTaxLine{
			{ID: invoiceID*10 + 1, InvoiceID: invoiceID, TaxID: 101, TaxCode: "cgst", TaxName: "CGST", TaxMode: "exclusive", TaxRate: 9, Amount: decimal.RequireFromString("90.00"), Position: 0, CreatedAt: issuedAt},
			{ID: invoiceID*10 + 2, InvoiceID: invoiceID, TaxID: 102, TaxCode: "sgst", TaxName: "SGST", TaxMode: "exclusive", TaxRate: 9, Amount: decimal.RequireFromString("90.00"), Position: 1, CreatedAt: issuedAt},
		},
	}
}

func TestRepository_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	invoice := newInvoice(1, "GYM-20260501-0001", "Asha Rao")
	require.NoError(t, repo.Insert(ctx, invoice))
	assert.Len(t, invoice.TaxLines, 2)

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "GYM-20260501-0001", got.InvoiceNumber)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("1180")))
	require.Len(t, got.TaxLines, 2)
	assert.Equal(t, "CGST", got.TaxLines[0].TaxName)
	assert.Equal(t, "SGST", got.TaxLines[1].TaxName)

	missing, err := repo.FindByID(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_ReplaceResult(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	invoice := newInvoice(1, "GYM-20260501-0001", "Asha Rao")
	require.NoError(t, repo.Insert(ctx, invoice))

	invoice.TaxMode = "inclusive"
	invoice.TaxAmount = decimal.RequireFromString("47.62")
	invoice.TotalAmount = decimal.RequireFromString("1000.00")
	invoice.UpdatedAt = issuedAt.Add(time.Hour)
	invoice.TaxLines = []invoicedomain.InvoiceTaxLine{
		{ID: 99, InvoiceID: 1, TaxID: 201, TaxCode: "vat", TaxName: "VAT", TaxMode: "inclusive", TaxRate: 5, Amount: decimal.RequireFromString("47.62"), CreatedAt: issuedAt},
	}
	require.NoError(t, repo.ReplaceResult(ctx, invoice))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "inclusive", got.TaxMode)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("1000")))
	require.Len(t, got.TaxLines, 1)
	assert.Equal(t, "vat", got.TaxLines[0].TaxCode)
}

func TestRepository_ListAndVoid(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Insert(ctx, newInvoice(1, "GYM-20260501-0001", "Asha Rao")))
	require.NoError(t, repo.Insert(ctx, newInvoice(2, "GYM-20260501-0002", "Vikram Das")))
	require.NoError(t, repo.MarkVoid(ctx, 2, issuedAt.Add(time.Minute)))

	all, err := repo.List(ctx, invoicedomain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	voided, err := repo.List(ctx, invoicedomain.ListFilter{Status: invoicedomain.InvoiceStatusVoid})
	require.NoError(t, err)
	require.Len(t, voided, 1)
	assert.Equal(t, snowflake.ID(2), voided[0].ID)
	require.NotNil(t, voided[0].VoidedAt)

	byName, err := repo.List(ctx, invoicedomain.ListFilter{MemberName: "asha"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Asha Rao", byName[0].MemberName)
}

func TestRepository_NextSequence(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	for want := int64(1); want <= 3; want++ {
		got, err := repo.NextSequence(ctx, "20260501", issuedAt)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	other, err := repo.NextSequence(ctx, "20260502", issuedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}
