package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
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
	require.NoError(t, db.AutoMigrate(&taxdomain.TaxSetting{}))
	return db
}

func newSetting(id int64, code string, rate float64, inclusive bool, sortOrder int) *taxdomain.TaxSetting {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &taxdomain.TaxSetting{
		ID:          snowflake.ID(id),
		Name:        code,
		Code:        code,
		Rate:        rate,
		IsInclusive: inclusive,
		IsActive:    true,
		SortOrder:   sortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newSetting(1, "gst", 18, false, 10)))

	got, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "gst", got.Code)
	assert.Equal(t, 18.0, got.Rate)
	assert.True(t, got.IsActive)

	missing, err := repo.FindByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newSetting(1, "gst", 18, false, 10)))
	err := repo.Create(ctx, newSetting(2, "gst", 12, false, 20))
	assert.ErrorIs(t, err, taxdomain.ErrDuplicateTaxCode)
}

func TestRepository_CatalogOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newSetting(3, "vat", 5, true, 40)))
	require.NoError(t, repo.Create(ctx, newSetting(2, "sgst", 9, false, 30)))
	require.NoError(t, repo.Create(ctx, newSetting(5, "cgst", 9, false, 20)))
	require.NoError(t, repo.Create(ctx, newSetting(4, "cess", 1, false, 20)))

	inactive := newSetting(1, "old", 15, false, 10)
	require.NoError(t, repo.Create(ctx, inactive))
	inactive.IsActive = false
	require.NoError(t, repo.Update(ctx, inactive))

	catalog, err := repo.Catalog(ctx)
	require.NoError(t, err)

	codes := make([]string, 0, len(catalog))
	for _, item := range catalog {
		codes = append(codes, item.Code)
	}
	assert.Equal(t, []string{"old", "cess", "cgst", "sgst", "vat"}, codes)
	assert.False(t, catalog[0].IsActive)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, newSetting(1, "gst", 18, false, 10)))
	require.NoError(t, repo.Create(ctx, newSetting(2, "vat", 5, true, 20)))
	off := newSetting(3, "cess", 1, true, 30)
	require.NoError(t, repo.Create(ctx, off))
	off.IsActive = false
	require.NoError(t, repo.Update(ctx, off))

	inclusive, err := repo.List(ctx, taxdomain.ListRequest{TaxMode: taxdomain.TaxModeInclusive})
	require.NoError(t, err)
	assert.Len(t, inclusive, 2)

	active := true
	activeInclusive, err := repo.List(ctx, taxdomain.ListRequest{TaxMode: taxdomain.TaxModeInclusive, IsActive: &active})
	require.NoError(t, err)
	require.Len(t, activeInclusive, 1)
	assert.Equal(t, "vat", activeInclusive[0].Code)

	byRate, err := repo.List(ctx, taxdomain.ListRequest{SortBy: "rate", OrderBy: "desc"})
	require.NoError(t, err)
	require.Len(t, byRate, 3)
	assert.Equal(t, "gst", byRate[0].Code)
	assert.Equal(t, "cess", byRate[2].Code)

	byCode, err := repo.List(ctx, taxdomain.ListRequest{Code: "vat"})
	require.NoError(t, err)
	assert.Len(t, byCode, 1)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "sort_order ASC, id ASC", orderClause("", ""))
	assert.Equal(t, "sort_order ASC, id ASC", orderClause("id; drop table", "desc"))
	assert.Equal(t, "rate DESC, id ASC", orderClause("RATE", "DESC"))
	assert.Equal(t, "name ASC, id ASC", orderClause("name", "sideways"))
}
