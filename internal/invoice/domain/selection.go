package domain

import "github.com/smallbiznis/gymdesk/internal/tax/selection"

// SelectionOf rebuilds the selection map persisted on an invoice.
func SelectionOf(invoice *Invoice) selection.Selection {
	out := make(selection.Selection, len(invoice.TaxLines))
	for _, line := range invoice.TaxLines {
		out[line.TaxID] = true
	}
	return out
}
