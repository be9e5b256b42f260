package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/gymdesk/internal/invoice/domain"
)

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		Status     string `form:"status"`
		MemberName string `form:"member_name"`
		Limit      string `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	limit, err := parseOptionalInt(query.Limit)
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListRequest{
		Status:     strings.TrimSpace(query.Status),
		MemberName: strings.TrimSpace(query.MemberName),
		Limit:      limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	item, err := s.invoiceSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) VoidInvoice(c *gin.Context) {
	item, err := s.invoiceSvc.Void(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

// GetInvoiceSelection returns the tax selection stored on an invoice, keyed
// the same way PUT /billing-sessions/:session_id/selection accepts it.
func (s *Server) GetInvoiceSelection(c *gin.Context) {
	stored, err := s.invoiceSvc.Selection(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out := make(map[string]bool, len(stored))
	for id, selected := range stored {
		out[id.String()] = selected
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"selection": out}})
}

func (s *Server) UpdateInvoiceFromSession(c *gin.Context) {
	item, err := s.invoiceSvc.UpdateFromSession(c.Request.Context(), c.Param("id"), c.Param("session_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DownloadInvoiceReceipt(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	item, err := s.invoiceSvc.Get(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	out, err := s.invoiceSvc.RenderReceipt(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	body, err := io.ReadAll(out)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, item.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", body)
}
