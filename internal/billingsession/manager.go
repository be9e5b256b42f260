// Package billingsession keeps the tax selection of every invoice being
// edited. Each session owns one selection controller and expires after the
// configured idle time.
package billingsession

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"github.com/smallbiznis/gymdesk/internal/clock"
	"github.com/smallbiznis/gymdesk/internal/config"
	invoicedomain "github.com/smallbiznis/gymdesk/internal/invoice/domain"
	obslogger "github.com/smallbiznis/gymdesk/internal/observability/logger"
	"github.com/smallbiznis/gymdesk/internal/observability/metrics"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"github.com/smallbiznis/gymdesk/internal/tax/selection"
	"github.com/smallbiznis/gymdesk/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NoticeSelectionReset tells the client that a stored selection could not be
// restored against the current catalog.
const NoticeSelectionReset = "selection_reset"

type ManagerParams struct {
	fx.In

	Log      *zap.Logger
	Taxes    taxdomain.Service
	Invoices invoicedomain.Repository
	Billing  *config.BillingConfigHolder
	Clock    clock.Clock
	Metrics  *metrics.TaxMetrics `optional:"true"`
}

type Manager struct {
	log      *zap.Logger
	taxes    taxdomain.Service
	invoices invoicedomain.Repository
	billing  *config.BillingConfigHolder
	clock    clock.Clock
	metrics  *metrics.TaxMetrics

	// catalogMu keeps Open from registering a session built on a catalog
	// that CatalogChanged has already replaced.
	catalogMu sync.RWMutex
	sessions  *cache.Cache
}

type OpenRequest struct {
	// BaseAmount defaults to the invoice base amount, or zero for a new bill.
	BaseAmount *float64 `json:"base_amount"`
	InvoiceID  string   `json:"invoice_id"`
}

// ToggleResult reports whether a toggle was applied.
type ToggleResult struct {
	Accepted bool  `json:"accepted"`
	Session  *View `json:"session"`
}

func NewManager(p ManagerParams) *Manager {
	cfg := p.Billing.Get()
	m := &Manager{
		log:      p.Log.Named("billing.session"),
		taxes:    p.Taxes,
		invoices: p.Invoices,
		billing:  p.Billing,
		clock:    p.Clock,
		metrics:  p.Metrics,
		sessions: cache.New(cfg.SessionTTL, cfg.SessionCleanupInterval),
	}
	m.sessions.OnEvicted(func(id string, _ interface{}) {
		m.log.Debug("billing session closed", zap.String("session_id", id))
		m.reportActive()
	})
	return m
}

func (m *Manager) Open(ctx context.Context, req OpenRequest) (*View, error) {
	var invoice *invoicedomain.Invoice
	if raw := strings.TrimSpace(req.InvoiceID); raw != "" {
		invoiceID, err := snowflake.ParseString(raw)
		if err != nil || invoiceID == 0 {
			return nil, invoicedomain.ErrInvalidID
		}
		invoice, err = m.invoices.FindByID(ctx, invoiceID)
		if err != nil {
			return nil, err
		}
		if invoice == nil {
			return nil, invoicedomain.ErrNotFound
		}
		if invoice.Status == invoicedomain.InvoiceStatusVoid {
			return nil, invoicedomain.ErrInvoiceVoided
		}
	}

	baseAmount := 0.0
	switch {
	case req.BaseAmount != nil:
		baseAmount = *req.BaseAmount
	case invoice != nil:
		baseAmount, _ = invoice.BaseAmount.Float64()
	}
	if !money.IsValidAmount(baseAmount) {
		return nil, ErrInvalidBaseAmount
	}

	m.catalogMu.RLock()
	defer m.catalogMu.RUnlock()

	catalog, err := m.taxes.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	cfg := m.billing.Get()
	s := &session{
		id:       ulid.Make().String(),
		currency: cfg.Currency,
		openedAt: m.clock.Now().UTC(),
	}
	log := obslogger.WithSession(m.log, s.id)
	s.controller = selection.NewController(log, baseAmount,
		selection.WithRecorder(m.recorder()),
		selection.WithObserver(func(result selection.CalculationResult) {
			log.Debug("tax result updated",
				zap.String("tax_mode", string(result.TaxMode)),
				zap.Float64("tax_amount", result.TaxAmount),
				zap.Float64("total_amount", result.TotalAmount),
			)
		}),
	)
	s.controller.Initialize(catalog)

	if invoice != nil {
		s.bind(invoice.ID)
		if err := s.controller.SetSelection(invoicedomain.SelectionOf(invoice)); err != nil {
			log.Warn("stored invoice selection not restored",
				zap.String("invoice_id", invoice.ID.String()),
				zap.Error(err),
			)
			s.setNotice(NoticeSelectionReset)
		}
	}

	m.sessions.Set(s.id, s, cfg.SessionTTL)
	m.reportActive()

	log.Info("billing session opened",
		zap.Bool("existing_invoice", invoice != nil),
		zap.Int("catalog_size", len(catalog)),
	)
	return m.view(s), nil
}

func (m *Manager) Get(ctx context.Context, id string) (*View, error) {
	s, err := m.touch(id)
	if err != nil {
		return nil, err
	}
	return m.view(s), nil
}

// Toggle flips one tax. A refused toggle is not an error; the result says so.
func (m *Manager) Toggle(ctx context.Context, id, taxID string) (*ToggleResult, error) {
	s, err := m.touch(id)
	if err != nil {
		return nil, err
	}
	parsed, err := snowflake.ParseString(strings.TrimSpace(taxID))
	if err != nil {
		return nil, ErrInvalidTaxID
	}

	accepted := s.controller.Toggle(parsed)
	return &ToggleResult{Accepted: accepted, Session: m.view(s)}, nil
}

func (m *Manager) Clear(ctx context.Context, id string) (*View, error) {
	s, err := m.touch(id)
	if err != nil {
		return nil, err
	}
	s.controller.ClearAll()
	return m.view(s), nil
}

// SetSelection replaces the selection in bulk. Keys are tax setting ids.
func (m *Manager) SetSelection(ctx context.Context, id string, raw map[string]bool) (*View, error) {
	s, err := m.touch(id)
	if err != nil {
		return nil, err
	}

	incoming := make(selection.Selection, len(raw))
	for key, selected := range raw {
		taxID, err := snowflake.ParseString(strings.TrimSpace(key))
		if err != nil {
			return nil, ErrInvalidTaxID
		}
		incoming[taxID] = selected
	}

	if err := s.controller.SetSelection(incoming); err != nil {
		return nil, err
	}
	return m.view(s), nil
}

func (m *Manager) SetBaseAmount(ctx context.Context, id string, amount float64) (*View, error) {
	if !money.IsValidAmount(amount) {
		return nil, ErrInvalidBaseAmount
	}
	s, err := m.touch(id)
	if err != nil {
		return nil, err
	}
	s.controller.SetBaseAmount(amount)
	return m.view(s), nil
}

// AttachInvoice binds the session to the invoice it was saved as.
func (m *Manager) AttachInvoice(ctx context.Context, id string, invoiceID snowflake.ID) error {
	s, err := m.touch(id)
	if err != nil {
		return err
	}
	s.bind(invoiceID)
	return nil
}

// BeginSave blocks until no other invoice write is in flight for the session
// and returns the function releasing it.
func (m *Manager) BeginSave(ctx context.Context, id string) (func(), error) {
	s, err := m.touch(id)
	if err != nil {
		return nil, err
	}
	s.saving.Lock()
	return s.saving.Unlock, nil
}

func (m *Manager) Close(ctx context.Context, id string) error {
	if _, ok := m.sessions.Get(id); !ok {
		return ErrSessionNotFound
	}
	m.sessions.Delete(id)
	return nil
}

// CatalogChanged re-initializes every open session with the new catalog.
// Selections are reset, as the catalog they were made against is gone.
func (m *Manager) CatalogChanged(ctx context.Context) {
	m.catalogMu.Lock()
	defer m.catalogMu.Unlock()

	items := m.sessions.Items()
	if len(items) == 0 {
		return
	}

	catalog, err := m.taxes.Catalog(ctx)
	if err != nil {
		m.log.Error("reload tax catalog for open sessions", zap.Error(err))
		return
	}

	open := lo.FilterMap(lo.Values(items), func(item cache.Item, _ int) (*session, bool) {
		s, ok := item.Object.(*session)
		return s, ok
	})
	for _, s := range open {
		hadSelection := s.controller.Selection().HasSelection()
		s.controller.Initialize(catalog)
		if hadSelection {
			s.setNotice(NoticeSelectionReset)
		}
	}

	m.log.Info("open billing sessions re-initialized",
		zap.Int("sessions", len(open)),
		zap.Int("catalog_size", len(catalog)),
	)
}

// Count returns the number of sessions not yet expired.
func (m *Manager) Count() int {
	return len(m.sessions.Items())
}

// Flush drops every open session.
func (m *Manager) Flush() {
	m.sessions.Flush()
	m.reportActive()
}

func (m *Manager) touch(id string) (*session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrSessionNotFound
	}
	item, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s, ok := item.(*session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Replace fails when a concurrent Close removed the session.
	if err := m.sessions.Replace(id, s, m.billing.Get().SessionTTL); err != nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) view(s *session) *View {
	expiresAt := time.Time{}
	if _, exp, ok := m.sessions.GetWithExpiration(s.id); ok {
		expiresAt = exp.UTC()
	}
	return buildView(s, s.controller.Snapshot(), m.billing.Get().DecimalPlaces, expiresAt)
}

func (m *Manager) recorder() selection.Recorder {
	if m.metrics == nil {
		return nil
	}
	return m.metrics
}

func (m *Manager) reportActive() {
	m.metrics.SetActiveSessions(m.Count())
}

// IsSelectionError reports whether err is a rejected bulk selection.
func IsSelectionError(err error) bool {
	return errors.Is(err, selection.ErrMixedTaxModes) || errors.Is(err, selection.ErrTaxNotSelectable)
}
