package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/smallbiznis/gymdesk/internal/invoice/domain"
	"github.com/smallbiznis/gymdesk/pkg/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct {
	db       *gorm.DB
	invoices repository.Repository[invoicedomain.Invoice]
	lines    repository.Repository[invoicedomain.InvoiceTaxLine]
}

func NewRepository(db *gorm.DB) invoicedomain.Repository {
	return &repo{
		db:       db,
		invoices: repository.ProvideStore[invoicedomain.Invoice](db),
		lines:    repository.ProvideStore[invoicedomain.InvoiceTaxLine](db),
	}
}

func (r *repo) Insert(ctx context.Context, invoice *invoicedomain.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := invoice.TaxLines
		invoice.TaxLines = nil
		defer func() { invoice.TaxLines = lines }()

		if err := r.invoices.WithTrx(tx).Create(ctx, invoice); err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		if err := r.lines.WithTrx(tx).BatchCreate(ctx, linePtrs(lines)); err != nil {
			return fmt.Errorf("insert invoice tax lines: %w", err)
		}
		return nil
	})
}

func (r *repo) ReplaceResult(ctx context.Context, invoice *invoicedomain.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := r.invoices.WithTrx(tx).Update(ctx, invoice.ID, map[string]any{
			"tax_mode":     invoice.TaxMode,
			"base_amount":  invoice.BaseAmount,
			"tax_amount":   invoice.TaxAmount,
			"total_amount": invoice.TotalAmount,
			"updated_at":   invoice.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		lines := r.lines.WithTrx(tx)
		if err := lines.Delete(ctx, &invoicedomain.InvoiceTaxLine{InvoiceID: invoice.ID}); err != nil {
			return fmt.Errorf("clear invoice tax lines: %w", err)
		}
		if err := lines.BatchCreate(ctx, linePtrs(invoice.TaxLines)); err != nil {
			return fmt.Errorf("insert invoice tax lines: %w", err)
		}
		return nil
	})
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*invoicedomain.Invoice, error) {
	invoice, err := r.invoices.FindOne(ctx, &invoicedomain.Invoice{ID: id})
	if err != nil || invoice == nil {
		return nil, err
	}

	lines, err := r.lines.Find(ctx,
		&invoicedomain.InvoiceTaxLine{InvoiceID: id},
		repository.OrderBy("position", false),
	)
	if err != nil {
		return nil, err
	}
	invoice.TaxLines = make([]invoicedomain.InvoiceTaxLine, 0, len(lines))
	for _, line := range lines {
		invoice.TaxLines = append(invoice.TaxLines, *line)
	}
	return invoice, nil
}

func (r *repo) List(ctx context.Context, filter invoicedomain.ListFilter) ([]invoicedomain.Invoice, error) {
	query := &invoicedomain.Invoice{Status: filter.Status}
	opts := []repository.QueryOption{
		repository.OrderBy("issued_at", true),
		repository.OrderBy("id", true),
		repository.Limit(filter.Limit),
	}
	if name := strings.TrimSpace(filter.MemberName); name != "" {
		opts = append(opts, repository.Where("LOWER(member_name) LIKE ?", "%"+strings.ToLower(name)+"%"))
	}

	items, err := r.invoices.Find(ctx, query, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *repo) MarkVoid(ctx context.Context, id snowflake.ID, at time.Time) error {
	return r.invoices.Update(ctx, id, map[string]any{
		"status":     invoicedomain.InvoiceStatusVoid,
		"voided_at":  at,
		"updated_at": at,
	})
}

func (r *repo) NextSequence(ctx context.Context, scope string, at time.Time) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := invoicedomain.InvoiceSequence{Scope: scope, Value: 0, UpdatedAt: at}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		err := tx.Model(&invoicedomain.InvoiceSequence{}).
			Where("scope = ?", scope).
			Updates(map[string]any{
				"value":      gorm.Expr("value + 1"),
				"updated_at": at,
			}).Error
		if err != nil {
			return err
		}
		var current invoicedomain.InvoiceSequence
		if err := tx.Where("scope = ?", scope).First(&current).Error; err != nil {
			return err
		}
		next = current.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return next, nil
}

func linePtrs(lines []invoicedomain.InvoiceTaxLine) []*invoicedomain.InvoiceTaxLine {
	out := make([]*invoicedomain.InvoiceTaxLine, 0, len(lines))
	for i := range lines {
		out = append(out, &lines[i])
	}
	return out
}
