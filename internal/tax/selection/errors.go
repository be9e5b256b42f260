package selection

import "errors"

var (
	ErrMixedTaxModes    = errors.New("mixed_tax_modes")
	ErrTaxNotSelectable = errors.New("tax_not_selectable")
)
