package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/gymdesk/internal/billingsession"
	"github.com/smallbiznis/gymdesk/internal/clock"
	"github.com/smallbiznis/gymdesk/internal/config"
	invoicedomain "github.com/smallbiznis/gymdesk/internal/invoice/domain"
	invoiceformat "github.com/smallbiznis/gymdesk/internal/invoice/format"
	"github.com/smallbiznis/gymdesk/internal/observability/metrics"
	"github.com/smallbiznis/gymdesk/internal/providers/pdf"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"github.com/smallbiznis/gymdesk/internal/tax/selection"
	"github.com/smallbiznis/gymdesk/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     invoicedomain.Repository
	Sessions *billingsession.Manager
	Billing  *config.BillingConfigHolder
	Clock    clock.Clock
	PDF      pdf.Provider
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	repo     invoicedomain.Repository
	sessions *billingsession.Manager
	billing  *config.BillingConfigHolder
	clock    clock.Clock
	pdf      pdf.Provider
	metrics  *metrics.Metrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		log:      p.Log.Named("invoice.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		sessions: p.Sessions,
		billing:  p.Billing,
		clock:    p.Clock,
		pdf:      p.PDF,
		metrics:  p.Metrics,
	}
}

func (s *Service) CreateFromSession(ctx context.Context, sessionID string, req invoicedomain.CreateRequest) (*invoicedomain.Response, error) {
	memberName := strings.TrimSpace(req.MemberName)
	if memberName == "" {
		return nil, invoicedomain.ErrInvalidMemberName
	}

	release, err := s.sessions.BeginSave(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	view, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if view.InvoiceID != "" {
		return nil, invoicedomain.ErrSessionAlreadyInvoiced
	}

	cfg := s.billing.Get()
	now := s.clock.Now().UTC()

	seq, err := s.repo.NextSequence(ctx, invoiceformat.SequenceScope(cfg.InvoiceNumberTemplate, now), now)
	if err != nil {
		return nil, err
	}
	number, err := invoiceformat.FormatInvoiceNumber(cfg.InvoiceNumberTemplate, now, seq)
	if err != nil {
		return nil, err
	}

	invoice := &invoicedomain.Invoice{
		ID:            s.genID.Generate(),
		InvoiceNumber: number,
		MemberName:    memberName,
		Description:   normalizeDescription(req.Description),
		Status:        invoicedomain.InvoiceStatusIssued,
		Currency:      view.Currency,
		IssuedAt:      now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.applyResult(invoice, view, now)

	if err := s.repo.Insert(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.sessions.AttachInvoice(ctx, view.ID, invoice.ID); err != nil {
		s.log.Warn("invoice stored but session expired before binding",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("session_id", view.ID),
		)
	}

	s.metrics.RecordInvoiceIssued(ctx, invoice.TaxMode, "create")
	s.log.Info("invoice issued",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("tax_mode", invoice.TaxMode),
		zap.String("total_amount", invoice.TotalAmount.String()),
	)

	resp := s.toResponse(invoice)
	return &resp, nil
}

func (s *Service) UpdateFromSession(ctx context.Context, invoiceID, sessionID string) (*invoicedomain.Response, error) {
	invoice, err := s.find(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == invoicedomain.InvoiceStatusVoid {
		return nil, invoicedomain.ErrInvoiceVoided
	}

	release, err := s.sessions.BeginSave(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	view, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if view.InvoiceID != "" && view.InvoiceID != invoice.ID.String() {
		return nil, invoicedomain.ErrSessionBoundElsewhere
	}

	now := s.clock.Now().UTC()
	s.applyResult(invoice, view, now)
	invoice.UpdatedAt = now

	if err := s.repo.ReplaceResult(ctx, invoice); err != nil {
		return nil, err
	}
	if err := s.sessions.AttachInvoice(ctx, view.ID, invoice.ID); err != nil {
		s.log.Warn("invoice updated but session expired before binding",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("session_id", view.ID),
		)
	}

	s.metrics.RecordInvoiceIssued(ctx, invoice.TaxMode, "update")
	s.log.Info("invoice tax result updated",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("tax_mode", invoice.TaxMode),
		zap.String("total_amount", invoice.TotalAmount.String()),
	)

	resp := s.toResponse(invoice)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*invoicedomain.Response, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(invoice)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListRequest) ([]invoicedomain.Response, error) {
	filter := invoicedomain.ListFilter{
		MemberName: strings.TrimSpace(req.MemberName),
		Limit:      req.Limit,
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status := invoicedomain.InvoiceStatus(strings.ToUpper(raw))
		switch status {
		case invoicedomain.InvoiceStatusIssued, invoicedomain.InvoiceStatusVoid:
			filter.Status = status
		default:
			return nil, invoicedomain.ErrInvalidStatus
		}
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]invoicedomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

// Void marks an invoice void. Voiding twice is a no-op.
func (s *Service) Void(ctx context.Context, id string) (*invoicedomain.Response, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status != invoicedomain.InvoiceStatusVoid {
		now := s.clock.Now().UTC()
		if err := s.repo.MarkVoid(ctx, invoice.ID, now); err != nil {
			return nil, err
		}
		invoice.Status = invoicedomain.InvoiceStatusVoid
		invoice.VoidedAt = &now
		invoice.UpdatedAt = now

		s.metrics.RecordInvoiceVoided(ctx)
		s.log.Info("invoice voided", zap.String("invoice_id", invoice.ID.String()))
	}

	resp := s.toResponse(invoice)
	return &resp, nil
}

func (s *Service) Selection(ctx context.Context, id string) (selection.Selection, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return invoicedomain.SelectionOf(invoice), nil
}

func (s *Service) RenderReceipt(ctx context.Context, id string) (io.Reader, error) {
	invoice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	cfg := s.billing.Get()
	data := pdf.ReceiptData{
		GymName:       cfg.GymName,
		InvoiceNumber: invoice.InvoiceNumber,
		IssueDate:     invoice.IssuedAt.Format("2006-01-02"),
		Status:        string(invoice.Status),
		MemberName:    invoice.MemberName,
		TaxTypeLabel:  taxdomain.TaxMode(invoice.TaxMode).Label(),
		BaseAmount:    s.formatAmount(invoice.BaseAmount, invoice.Currency),
		TaxAmount:     s.formatAmount(invoice.TaxAmount, invoice.Currency),
		TotalAmount:   s.formatAmount(invoice.TotalAmount, invoice.Currency),
	}
	if invoice.Description != nil {
		data.Description = *invoice.Description
	}
	for _, line := range invoice.TaxLines {
		data.TaxLines = append(data.TaxLines, pdf.ReceiptTaxLine{
			Name:   line.TaxName,
			Rate:   fmt.Sprintf("%s%%", decimal.NewFromFloat(line.TaxRate).String()),
			Mode:   line.TaxMode,
			Amount: s.formatAmount(line.Amount, invoice.Currency),
		})
	}

	out, err := s.pdf.GenerateReceipt(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", invoice.InvoiceNumber, err)
	}
	s.metrics.RecordReceiptRendered(ctx)
	return out, nil
}

func (s *Service) find(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || invoiceID == 0 {
		return nil, invoicedomain.ErrInvalidID
	}
	invoice, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrNotFound
	}
	return invoice, nil
}

// applyResult copies the rounded session result onto invoice.
func (s *Service) applyResult(invoice *invoicedomain.Invoice, view *billingsession.View, now time.Time) {
	places := view.DecimalPlaces
	result := view.Result

	invoice.TaxMode = string(result.TaxMode)
	invoice.BaseAmount = money.Decimal(result.BaseAmount, places)
	invoice.TaxAmount = money.Decimal(result.TaxAmount, places)
	invoice.TotalAmount = money.Decimal(result.TotalAmount, places)

	invoice.TaxLines = make([]invoicedomain.InvoiceTaxLine, 0, len(result.TaxBreakdown))
	for i, line := range result.TaxBreakdown {
		code := ""
		if tax, ok := view.TaxByID(line.TaxID); ok {
			code = tax.Code
		}
		invoice.TaxLines = append(invoice.TaxLines, invoicedomain.InvoiceTaxLine{
			ID:        s.genID.Generate(),
			InvoiceID: invoice.ID,
			TaxID:     line.TaxID,
			TaxCode:   code,
			TaxName:   line.Name,
			TaxMode:   string(taxdomain.ModeOf(line.IsInclusive)),
			TaxRate:   line.Rate,
			Amount:    money.Decimal(line.Amount, places),
			Position:  i,
			CreatedAt: now,
		})
	}
}

func (s *Service) toResponse(invoice *invoicedomain.Invoice) invoicedomain.Response {
	lines := make([]invoicedomain.TaxLineResponse, 0, len(invoice.TaxLines))
	for _, line := range invoice.TaxLines {
		lines = append(lines, invoicedomain.TaxLineResponse{
			TaxID:   line.TaxID.String(),
			TaxCode: line.TaxCode,
			TaxName: line.TaxName,
			TaxMode: line.TaxMode,
			TaxRate: line.TaxRate,
			Amount:  s.formatAmount(line.Amount, ""),
		})
	}

	return invoicedomain.Response{
		ID:            invoice.ID.String(),
		InvoiceNumber: invoice.InvoiceNumber,
		MemberName:    invoice.MemberName,
		Description:   invoice.Description,
		Status:        invoice.Status,
		Currency:      invoice.Currency,
		TaxMode:       invoice.TaxMode,
		TaxTypeLabel:  taxdomain.TaxMode(invoice.TaxMode).Label(),
		BaseAmount:    s.formatAmount(invoice.BaseAmount, ""),
		TaxAmount:     s.formatAmount(invoice.TaxAmount, ""),
		TotalAmount:   s.formatAmount(invoice.TotalAmount, ""),
		TaxLines:      lines,
		IssuedAt:      invoice.IssuedAt,
		VoidedAt:      invoice.VoidedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}

func (s *Service) formatAmount(amount decimal.Decimal, currency string) string {
	return money.FormatDecimal(amount, s.billing.Get().DecimalPlaces, currency)
}

func normalizeDescription(value *string) *string {
	if value == nil {
		return nil
	}
	description := strings.TrimSpace(*value)
	if description == "" {
		return nil
	}
	return &description
}
