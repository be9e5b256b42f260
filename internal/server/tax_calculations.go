package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gymdesk/internal/billingsession"
	"github.com/smallbiznis/gymdesk/internal/tax/selection"
	"github.com/smallbiznis/gymdesk/pkg/money"
)

type taxCalculationRequest struct {
	BaseAmount *float64 `json:"base_amount"`
	TaxIDs     []string `json:"tax_ids"`
}

type taxCalculationResponse struct {
	Currency     string                      `json:"currency"`
	TaxTypeLabel string                      `json:"tax_type_label"`
	Result       selection.CalculationResult `json:"result"`
}

// QuoteTaxCalculation prices a base amount against a set of taxes without
// opening a billing session.
func (s *Server) QuoteTaxCalculation(c *gin.Context) {
	var req taxCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.BaseAmount == nil || !money.IsValidAmount(*req.BaseAmount) {
		AbortWithError(c, billingsession.ErrInvalidBaseAmount)
		return
	}

	ids := make([]snowflake.ID, 0, len(req.TaxIDs))
	for _, raw := range req.TaxIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil {
			AbortWithError(c, billingsession.ErrInvalidTaxID)
			return
		}
		ids = append(ids, id)
	}

	catalog, err := s.taxSvc.Catalog(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := selection.Quote(*req.BaseAmount, ids, catalog)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cfg := s.billing.Get()
	c.JSON(http.StatusOK, gin.H{"data": taxCalculationResponse{
		Currency:     cfg.Currency,
		TaxTypeLabel: result.TaxMode.Label(),
		Result:       result.Rounded(cfg.DecimalPlaces),
	}})
}
