package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"github.com/smallbiznis/gymdesk/pkg/db"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) taxdomain.Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, setting *taxdomain.TaxSetting) error {
	err := r.db.WithContext(ctx).Create(setting).Error
	if db.IsDuplicateKeyErr(err) {
		return taxdomain.ErrDuplicateTaxCode
	}
	return err
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*taxdomain.TaxSetting, error) {
	var setting taxdomain.TaxSetting
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *repository) List(ctx context.Context, filter taxdomain.ListRequest) ([]taxdomain.TaxSetting, error) {
	var items []taxdomain.TaxSetting
	stmt := r.db.WithContext(ctx).Model(&taxdomain.TaxSetting{})

	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	if filter.Code != "" {
		stmt = stmt.Where("code = ?", filter.Code)
	}
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	switch filter.TaxMode {
	case taxdomain.TaxModeInclusive:
		stmt = stmt.Where("is_inclusive = ?", true)
	case taxdomain.TaxModeExclusive:
		stmt = stmt.Where("is_inclusive = ?", false)
	}

	stmt = stmt.Order(orderClause(filter.SortBy, filter.OrderBy))

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, setting *taxdomain.TaxSetting) error {
	err := r.db.WithContext(ctx).
		Model(&taxdomain.TaxSetting{}).
		Where("id = ?", setting.ID).
		Updates(map[string]any{
			"name":        setting.Name,
			"rate":        setting.Rate,
			"is_active":   setting.IsActive,
			"sort_order":  setting.SortOrder,
			"description": setting.Description,
			"updated_at":  setting.UpdatedAt,
		}).Error
	if db.IsDuplicateKeyErr(err) {
		return taxdomain.ErrDuplicateTaxCode
	}
	return err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&taxdomain.TaxSetting{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) Catalog(ctx context.Context) ([]taxdomain.TaxSetting, error) {
	var items []taxdomain.TaxSetting
	err := r.db.WithContext(ctx).
		Order("sort_order ASC").
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load tax catalog: %w", err)
	}
	return items, nil
}

var sortableColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"rate":       true,
	"sort_order": true,
}

func orderClause(sortBy, orderBy string) string {
	column := strings.ToLower(strings.TrimSpace(sortBy))
	if !sortableColumns[column] {
		return "sort_order ASC, id ASC"
	}
	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(orderBy), "desc") {
		direction = "DESC"
	}
	return column + " " + direction + ", id ASC"
}
