package selection

import (
	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"github.com/smallbiznis/gymdesk/pkg/money"
)

// BreakdownLine is the tax computed for one selected tax setting.
type BreakdownLine struct {
	TaxID       snowflake.ID `json:"tax_id"`
	Name        string       `json:"name"`
	Rate        float64      `json:"rate"`
	IsInclusive bool         `json:"is_inclusive"`
	Amount      float64      `json:"amount"`
}

// CalculationResult is the full tax breakdown for a base amount.
type CalculationResult struct {
	BaseAmount   float64           `json:"base_amount"`
	TaxAmount    float64           `json:"tax_amount"`
	TotalAmount  float64           `json:"total_amount"`
	TaxMode      taxdomain.TaxMode `json:"tax_mode"`
	TaxBreakdown []BreakdownLine   `json:"tax_breakdown"`
}

// CalculateTaxAmounts computes the tax owed on baseAmount for the selected
// taxes. Selected ids that are unknown or inactive are ignored. Breakdown
// lines follow catalog order.
//
// Exclusive taxes are charged on baseAmount and added to the total. Inclusive
// taxes are already part of baseAmount: the tax-free principal is
// baseAmount / (1 + sum(rates)/100), each tax is charged on that principal,
// and the total stays at baseAmount.
//
// baseAmount must be finite and non-negative; it is not clamped.
// Amounts are not rounded here, see CalculationResult.Rounded.
func CalculateTaxAmounts(baseAmount float64, selection Selection, allTaxes []taxdomain.TaxSetting) CalculationResult {
	result := CalculationResult{
		BaseAmount:   baseAmount,
		TotalAmount:  baseAmount,
		TaxMode:      taxdomain.TaxModeUnset,
		TaxBreakdown: []BreakdownLine{},
	}

	selected := selectedTaxes(selection, allTaxes)
	if len(selected) == 0 {
		return result
	}
	result.TaxMode = selected[0].Mode()

	// A consistent selection holds a single regime. Mixed input is still
	// handled per tax so the function stays total.
	inclusiveRate := lo.SumBy(selected, func(tax taxdomain.TaxSetting) float64 {
		if tax.IsInclusive {
			return tax.Rate
		}
		return 0
	})
	principal := baseAmount / (1 + inclusiveRate/100)

	for _, tax := range selected {
		line := BreakdownLine{
			TaxID:       tax.ID,
			Name:        tax.Name,
			Rate:        tax.Rate,
			IsInclusive: tax.IsInclusive,
		}
		if tax.IsInclusive {
			line.Amount = principal * tax.Rate / 100
		} else {
			line.Amount = baseAmount * tax.Rate / 100
			result.TotalAmount += line.Amount
		}
		result.TaxAmount += line.Amount
		result.TaxBreakdown = append(result.TaxBreakdown, line)
	}

	return result
}

// Rounded returns a copy with every amount rounded to places. TaxAmount is
// the sum of the rounded lines and TotalAmount is rebuilt from the rounded
// parts, so a stored breakdown always reconciles exactly.
func (r CalculationResult) Rounded(places int32) CalculationResult {
	out := CalculationResult{
		BaseAmount:   money.Round(r.BaseAmount, places),
		TaxMode:      r.TaxMode,
		TaxBreakdown: make([]BreakdownLine, 0, len(r.TaxBreakdown)),
	}

	base := money.Decimal(r.BaseAmount, places)
	taxTotal := money.Decimal(0, places)
	total := base
	for _, line := range r.TaxBreakdown {
		amount := money.Decimal(line.Amount, places)
		taxTotal = taxTotal.Add(amount)
		if !line.IsInclusive {
			total = total.Add(amount)
		}
		line.Amount, _ = amount.Float64()
		out.TaxBreakdown = append(out.TaxBreakdown, line)
	}

	out.TaxAmount, _ = taxTotal.Float64()
	out.TotalAmount, _ = total.Float64()
	return out
}

// Quote computes a one-off result for ids without holding any session.
// ids must name active taxes of one regime; duplicates are ignored.
func Quote(baseAmount float64, ids []snowflake.ID, allTaxes []taxdomain.TaxSetting) (CalculationResult, error) {
	incoming := make(Selection, len(ids))
	for _, id := range ids {
		incoming[id] = true
	}
	if err := validateBulk(incoming, allTaxes); err != nil {
		return CalculationResult{}, err
	}
	return CalculateTaxAmounts(baseAmount, incoming, allTaxes), nil
}
