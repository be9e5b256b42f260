package seed

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/gymdesk/internal/clock"
	"github.com/smallbiznis/gymdesk/internal/config"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	taxrepo "github.com/smallbiznis/gymdesk/internal/tax/repository"
	taxservice "github.com/smallbiznis/gymdesk/internal/tax/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (taxdomain.Repository, taxdomain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&taxdomain.TaxSetting{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := taxrepo.NewRepository(db)
	svc := taxservice.NewService(taxservice.ServiceParam{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repo,
		Clock: clock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	return repo, svc
}

func TestEnsureDefaultTaxes_SeedsEmptyCatalog(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)
	defaults := config.DefaultBillingConfig().DefaultTaxes

	require.NoError(t, EnsureDefaultTaxes(ctx, zap.NewNop(), repo, svc, defaults))

	catalog, err := svc.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, len(defaults))
	assert.Equal(t, "GST", catalog[0].Name)
	assert.Equal(t, "VAT", catalog[3].Name)
	assert.True(t, catalog[3].IsInclusive)
	for _, tax := range catalog {
		assert.True(t, tax.IsActive, tax.Name)
	}
}

func TestEnsureDefaultTaxes_SkipsSeededCatalog(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)

	created, err := svc.Create(ctx, taxdomain.CreateRequest{Name: "Service Tax", Rate: 12})
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, EnsureDefaultTaxes(ctx, zap.NewNop(), repo, svc, config.DefaultBillingConfig().DefaultTaxes))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestEnsureDefaultTaxes_InvalidDefault(t *testing.T) {
	ctx := context.Background()
	repo, svc := setup(t)

	err := EnsureDefaultTaxes(ctx, zap.NewNop(), repo, svc, []config.DefaultTax{{Name: "Broken", Rate: -1}})
	assert.Error(t, err)
}
