package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
)

type createTaxSettingRequest struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Rate        *float64 `json:"rate"`
	IsInclusive bool     `json:"is_inclusive"`
	IsActive    *bool    `json:"is_active"`
	SortOrder   int      `json:"sort_order"`
	Description *string  `json:"description"`
}

type updateTaxSettingRequest struct {
	Name        *string  `json:"name,omitempty"`
	Rate        *float64 `json:"rate,omitempty"`
	SortOrder   *int     `json:"sort_order,omitempty"`
	Description *string  `json:"description,omitempty"`
	IsInclusive *bool    `json:"is_inclusive,omitempty"`
}

func (s *Server) CreateTaxSetting(c *gin.Context) {
	var req createTaxSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Rate == nil {
		AbortWithError(c, newValidationError("rate", "required", "rate is required"))
		return
	}

	resp, err := s.taxSvc.Create(c.Request.Context(), taxdomain.CreateRequest{
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Rate:        *req.Rate,
		IsInclusive: req.IsInclusive,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
		Description: trimOptionalString(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTaxSettings(c *gin.Context) {
	var query struct {
		Name     string `form:"name"`
		Code     string `form:"code"`
		IsActive string `form:"is_active"`
		TaxMode  string `form:"tax_mode"`
		SortBy   string `form:"sort_by"`
		OrderBy  string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	isActive, err := parseOptionalBool(query.IsActive)
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}

	resp, err := s.taxSvc.List(c.Request.Context(), taxdomain.ListRequest{
		Name:     strings.TrimSpace(query.Name),
		Code:     strings.TrimSpace(query.Code),
		IsActive: isActive,
		TaxMode:  taxdomain.TaxMode(strings.TrimSpace(query.TaxMode)),
		SortBy:   strings.TrimSpace(query.SortBy),
		OrderBy:  strings.TrimSpace(query.OrderBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTaxSetting(c *gin.Context) {
	resp, err := s.taxSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateTaxSetting(c *gin.Context) {
	var req updateTaxSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.IsInclusive != nil {
		AbortWithError(c, newValidationError("is_inclusive", "immutable", "is_inclusive cannot be changed"))
		return
	}

	resp, err := s.taxSvc.Update(c.Request.Context(), taxdomain.UpdateRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Name:        trimOptionalString(req.Name),
		Rate:        req.Rate,
		SortOrder:   req.SortOrder,
		Description: trimOptionalString(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ActivateTaxSetting(c *gin.Context) {
	resp, err := s.taxSvc.Activate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateTaxSetting(c *gin.Context) {
	resp, err := s.taxSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
