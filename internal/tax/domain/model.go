package domain

import (
	"math"
	"time"

	"github.com/bwmarrin/snowflake"
)

// TaxMode is the tax regime enforced by a selection.
type TaxMode string

const (
	TaxModeUnset     TaxMode = "unset"     // nothing selected
	TaxModeExclusive TaxMode = "exclusive" // base + tax
	TaxModeInclusive TaxMode = "inclusive" // base already includes tax
)

// ModeOf maps an inclusive flag onto its TaxMode.
func ModeOf(isInclusive bool) TaxMode {
	if isInclusive {
		return TaxModeInclusive
	}
	return TaxModeExclusive
}

// Label returns the display label used by billing screens.
func (m TaxMode) Label() string {
	switch m {
	case TaxModeInclusive:
		return "Tax Inclusive"
	case TaxModeExclusive:
		return "Tax Exclusive"
	default:
		return "No Tax Selected"
	}
}

// TaxSetting is a configured tax rule from the master settings.
// NOTE:
// - Rate is a percentage (18 means 18%), never a fraction
// - IsInclusive is fixed at creation; selections rely on it for mode exclusivity
// - Code is derived from the name unless given and is unique
type TaxSetting struct {
	ID snowflake.ID `gorm:"primaryKey" json:"id"`

	Name        string  `gorm:"type:text;not null" json:"name"`
	Code        string  `gorm:"type:text;not null;uniqueIndex:ux_tax_settings_code" json:"code"`
	Rate        float64 `gorm:"not null" json:"rate"`
	IsInclusive bool    `gorm:"column:is_inclusive;not null" json:"is_inclusive"`
	IsActive    bool    `gorm:"column:is_active;not null" json:"is_active"`
	SortOrder   int     `gorm:"column:sort_order;not null" json:"sort_order"`

	Description *string `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (TaxSetting) TableName() string { return "tax_settings" }

// Mode returns the regime this tax belongs to.
func (t TaxSetting) Mode() TaxMode { return ModeOf(t.IsInclusive) }

func (t *TaxSetting) Validate() error {
	if t.Name == "" {
		return ErrInvalidName
	}
	if t.Code == "" {
		return ErrInvalidTaxCode
	}
	if !validRate(t.Rate) {
		return ErrInvalidTaxRate
	}
	return nil
}

// validRate accepts any finite, non-negative percentage.
func validRate(rate float64) bool {
	// NaN fails every comparison.
	return rate >= 0 && !math.IsInf(rate, 1)
}
