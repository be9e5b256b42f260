package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/gymdesk/internal/billingsession"
	invoicedomain "github.com/smallbiznis/gymdesk/internal/invoice/domain"
)

type toggleTaxRequest struct {
	TaxID string `json:"tax_id"`
}

type setSelectionRequest struct {
	Selection map[string]bool `json:"selection"`
}

type setBaseAmountRequest struct {
	BaseAmount *float64 `json:"base_amount"`
}

func (s *Server) OpenBillingSession(c *gin.Context) {
	var req billingsession.OpenRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}

	view, err := s.sessions.Open(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) GetBillingSession(c *gin.Context) {
	view, err := s.sessions.Get(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

// ToggleBillingSessionTax answers 200 even when the toggle is refused; the
// accepted flag carries the outcome.
func (s *Server) ToggleBillingSessionTax(c *gin.Context) {
	var req toggleTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessions.Toggle(c.Request.Context(), c.Param("session_id"), req.TaxID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ClearBillingSession(c *gin.Context) {
	view, err := s.sessions.Clear(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) SetBillingSessionSelection(c *gin.Context) {
	var req setSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	view, err := s.sessions.SetSelection(c.Request.Context(), c.Param("session_id"), req.Selection)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) SetBillingSessionBaseAmount(c *gin.Context) {
	var req setBaseAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.BaseAmount == nil {
		AbortWithError(c, billingsession.ErrInvalidBaseAmount)
		return
	}

	view, err := s.sessions.SetBaseAmount(c.Request.Context(), c.Param("session_id"), *req.BaseAmount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": view})
}

func (s *Server) CloseBillingSession(c *gin.Context) {
	if err := s.sessions.Close(c.Request.Context(), c.Param("session_id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CreateInvoiceFromSession(c *gin.Context) {
	var req invoicedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invoiceSvc.CreateFromSession(c.Request.Context(), c.Param("session_id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
