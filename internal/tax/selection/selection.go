// Package selection implements tax selection for a billing session: which
// configured taxes may be applied together, and what they add up to.
//
// Selected taxes must all share one regime. Inclusive taxes are carved out of
// the quoted amount, exclusive taxes are added on top of it, and the two are
// never mixed on a single selection.
package selection

import (
	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
)

// Selection maps a tax setting id to its selected flag.
type Selection map[snowflake.ID]bool

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for id, selected := range s {
		out[id] = selected
	}
	return out
}

// SelectedIDs returns the ids flagged true, in no particular order.
func (s Selection) SelectedIDs() []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(s))
	for id, selected := range s {
		if selected {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasSelection reports whether any id is flagged true.
func (s Selection) HasSelection() bool {
	for _, selected := range s {
		if selected {
			return true
		}
	}
	return false
}

// Empty returns a selection holding every catalog id as unselected.
func Empty(allTaxes []taxdomain.TaxSetting) Selection {
	out := make(Selection, len(allTaxes))
	for _, tax := range allTaxes {
		out[tax.ID] = false
	}
	return out
}

// CurrentMode derives the tax mode of a selection against the catalog.
// Ids missing from the catalog are ignored.
func CurrentMode(selection Selection, allTaxes []taxdomain.TaxSetting) taxdomain.TaxMode {
	selected := selectedTaxes(selection, allTaxes)
	if len(selected) == 0 {
		return taxdomain.TaxModeUnset
	}
	return selected[0].Mode()
}

// selectedTaxes returns the active catalog entries flagged true, in catalog order.
func selectedTaxes(selection Selection, allTaxes []taxdomain.TaxSetting) []taxdomain.TaxSetting {
	return lo.Filter(allTaxes, func(tax taxdomain.TaxSetting, _ int) bool {
		return tax.IsActive && selection[tax.ID]
	})
}

func indexCatalog(allTaxes []taxdomain.TaxSetting) map[snowflake.ID]taxdomain.TaxSetting {
	return lo.KeyBy(allTaxes, func(tax taxdomain.TaxSetting) snowflake.ID {
		return tax.ID
	})
}
