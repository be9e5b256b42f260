package tax

import (
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"github.com/smallbiznis/gymdesk/internal/tax/repository"
	"github.com/smallbiznis/gymdesk/internal/tax/service"
	"go.uber.org/fx"
)

// CatalogObserverGroup is the fx value group collecting catalog observers.
const CatalogObserverGroup = `group:"tax.catalog_observers"`

var Module = fx.Module("tax.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
	fx.Invoke(subscribeObservers),
)

type observerParams struct {
	fx.In

	Service   taxdomain.Service
	Observers []taxdomain.CatalogObserver `group:"tax.catalog_observers"`
}

func subscribeObservers(p observerParams) {
	for _, observer := range p.Observers {
		p.Service.Subscribe(observer)
	}
}
