package migration

import (
	"context"

	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/smallbiznis/gymdesk/internal/seed"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type params struct {
	fx.In

	Log     *zap.Logger
	DB      *gorm.DB
	Billing *config.BillingConfigHolder
	Repo    taxdomain.Repository
	Taxes   taxdomain.Service
}

var Module = fx.Module("migrations",
	fx.Invoke(func(p params) error {
		if err := RunMigrations(p.DB); err != nil {
			return err
		}
		return seed.EnsureDefaultTaxes(context.Background(), p.Log, p.Repo, p.Taxes, p.Billing.Get().DefaultTaxes)
	}),
)
