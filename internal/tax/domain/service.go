package domain

import (
	"context"
	"time"
)

// CatalogObserver is told when the tax catalog changed identity
// (a setting was added, edited, activated or deactivated).
type CatalogObserver interface {
	CatalogChanged(ctx context.Context)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Deactivate(ctx context.Context, id string) (*Response, error)
	Activate(ctx context.Context, id string) (*Response, error)
	Catalog(ctx context.Context) ([]TaxSetting, error)
	Subscribe(observer CatalogObserver)
}

type ListRequest struct {
	Name     string
	Code     string
	IsActive *bool
	TaxMode  TaxMode
	SortBy   string
	OrderBy  string
}

type CreateRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Rate        float64 `json:"rate"`
	IsInclusive bool    `json:"is_inclusive"`
	IsActive    *bool   `json:"is_active"`
	SortOrder   int     `json:"sort_order"`
	Description *string `json:"description"`
}

// UpdateRequest cannot change IsInclusive.
type UpdateRequest struct {
	ID          string   `json:"id"`
	Name        *string  `json:"name,omitempty"`
	Rate        *float64 `json:"rate,omitempty"`
	SortOrder   *int     `json:"sort_order,omitempty"`
	Description *string  `json:"description,omitempty"`
}

type Response struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Rate        float64   `json:"rate"`
	IsInclusive bool      `json:"is_inclusive"`
	TaxMode     TaxMode   `json:"tax_mode"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
