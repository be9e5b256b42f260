package selection

import (
	"github.com/samber/lo"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
)

// FilterTaxesByType returns the active taxes eligible under mode, preserving
// catalog order. TaxModeUnset yields every active tax.
func FilterTaxesByType(allTaxes []taxdomain.TaxSetting, mode taxdomain.TaxMode) []taxdomain.TaxSetting {
	return lo.Filter(allTaxes, func(tax taxdomain.TaxSetting, _ int) bool {
		if !tax.IsActive {
			return false
		}
		return mode == taxdomain.TaxModeUnset || tax.Mode() == mode
	})
}
