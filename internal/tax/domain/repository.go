package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, setting *TaxSetting) error
	FindByID(ctx context.Context, id snowflake.ID) (*TaxSetting, error)
	List(ctx context.Context, filter ListRequest) ([]TaxSetting, error)
	Update(ctx context.Context, setting *TaxSetting) error
	Count(ctx context.Context) (int64, error)
	// Catalog returns every tax setting, active or not, in catalog order.
	Catalog(ctx context.Context) ([]TaxSetting, error)
}
