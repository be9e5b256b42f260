package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type ListFilter struct {
	Status     InvoiceStatus
	MemberName string
	Limit      int
}

type Repository interface {
	// Insert stores an invoice together with its tax lines.
	Insert(ctx context.Context, invoice *Invoice) error
	// ReplaceResult overwrites the amounts and tax lines of an issued invoice.
	ReplaceResult(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]Invoice, error)
	MarkVoid(ctx context.Context, id snowflake.ID, at time.Time) error
	// NextSequence increments and returns the counter stored under scope.
	NextSequence(ctx context.Context, scope string, at time.Time) (int64, error)
}
