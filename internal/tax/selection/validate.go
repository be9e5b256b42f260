package selection

import (
	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
)

// ValidateTaxSelection reports whether candidateID may be added to current.
// Unknown and inactive candidates are never valid. With nothing selected any
// active tax is valid; otherwise the candidate must share the regime of every
// tax already selected.
func ValidateTaxSelection(current Selection, candidateID snowflake.ID, allTaxes []taxdomain.TaxSetting) bool {
	candidate, ok := indexCatalog(allTaxes)[candidateID]
	if !ok || !candidate.IsActive {
		return false
	}

	for _, tax := range selectedTaxes(current, allTaxes) {
		if tax.IsInclusive != candidate.IsInclusive {
			return false
		}
	}
	return true
}

// validateBulk checks a full replacement selection. It returns
// ErrTaxNotSelectable when a selected id is unknown or inactive and
// ErrMixedTaxModes when selected ids disagree on their regime.
func validateBulk(incoming Selection, allTaxes []taxdomain.TaxSetting) error {
	index := indexCatalog(allTaxes)

	mode := taxdomain.TaxModeUnset
	for _, id := range incoming.SelectedIDs() {
		tax, ok := index[id]
		if !ok || !tax.IsActive {
			return ErrTaxNotSelectable
		}
		if mode == taxdomain.TaxModeUnset {
			mode = tax.Mode()
			continue
		}
		if tax.Mode() != mode {
			return ErrMixedTaxModes
		}
	}
	return nil
}
