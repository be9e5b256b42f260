package billingsession

import (
	"time"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"github.com/smallbiznis/gymdesk/internal/tax/selection"
	"github.com/smallbiznis/gymdesk/pkg/money"
)

// TaxOption is a catalog entry as seen from one session.
type TaxOption struct {
	ID          snowflake.ID `json:"id"`
	Code        string       `json:"code"`
	Name        string       `json:"name"`
	Rate        float64      `json:"rate"`
	IsInclusive bool         `json:"is_inclusive"`
	IsActive    bool         `json:"is_active"`
	Selected    bool         `json:"selected"`
	Selectable  bool         `json:"selectable"`
}

// View is the client-facing state of a billing session.
type View struct {
	ID            string                      `json:"id"`
	InvoiceID     string                      `json:"invoice_id,omitempty"`
	Currency      string                      `json:"currency"`
	DecimalPlaces int32                       `json:"decimal_places"`
	BaseAmount    float64                     `json:"base_amount"`
	TaxMode       taxdomain.TaxMode           `json:"tax_mode"`
	TaxTypeLabel  string                      `json:"tax_type_label"`
	Taxes         []TaxOption                 `json:"taxes"`
	Available     []TaxOption                 `json:"available_taxes"`
	Result        selection.CalculationResult `json:"result"`
	Notice        string                      `json:"notice,omitempty"`
	OpenedAt      time.Time                   `json:"opened_at"`
	ExpiresAt     time.Time                   `json:"expires_at"`
}

// TaxByID returns the catalog entry backing a breakdown line.
func (v *View) TaxByID(id snowflake.ID) (TaxOption, bool) {
	for _, tax := range v.Taxes {
		if tax.ID == id {
			return tax, true
		}
	}
	return TaxOption{}, false
}

func buildView(s *session, state selection.State, places int32, expiresAt time.Time) *View {
	options := func(taxes []taxdomain.TaxSetting) []TaxOption {
		out := make([]TaxOption, 0, len(taxes))
		for _, tax := range taxes {
			selected := state.Selection[tax.ID]
			out = append(out, TaxOption{
				ID:          tax.ID,
				Code:        tax.Code,
				Name:        tax.Name,
				Rate:        tax.Rate,
				IsInclusive: tax.IsInclusive,
				IsActive:    tax.IsActive,
				Selected:    selected,
				Selectable:  selected || selection.ValidateTaxSelection(state.Selection, tax.ID, state.Catalog),
			})
		}
		return out
	}

	v := &View{
		ID:            s.id,
		Currency:      s.currency,
		DecimalPlaces: places,
		BaseAmount:    money.Round(state.BaseAmount, places),
		TaxMode:       state.TaxMode,
		TaxTypeLabel:  state.TaxMode.Label(),
		Taxes:         options(state.Catalog),
		Available:     options(state.FilteredCatalog),
		Result:        state.Result.Rounded(places),
		Notice:        s.notice(),
		OpenedAt:      s.openedAt,
		ExpiresAt:     expiresAt,
	}
	if invoiceID := s.invoice(); invoiceID != 0 {
		v.InvoiceID = invoiceID.String()
	}
	return v
}
