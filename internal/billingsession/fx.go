package billingsession

import (
	"context"

	"github.com/smallbiznis/gymdesk/internal/tax"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.session",
	fx.Provide(NewManager),
	fx.Provide(fx.Annotate(
		func(m *Manager) taxdomain.CatalogObserver { return m },
		fx.ResultTags(tax.CatalogObserverGroup),
	)),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, m *Manager) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			m.Flush()
			return nil
		},
	})
}
