package selection

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"go.uber.org/zap"
)

// Observer receives the recomputed result after every accepted mutation.
type Observer func(result CalculationResult)

// Recorder receives controller outcomes for instrumentation.
type Recorder interface {
	RecordToggle(accepted bool)
	RecordSelectionRejected(reason string)
	RecordCalculation(mode taxdomain.TaxMode)
}

type noopRecorder struct{}

func (noopRecorder) RecordToggle(bool)                   {}
func (noopRecorder) RecordSelectionRejected(string)      {}
func (noopRecorder) RecordCalculation(taxdomain.TaxMode) {}

// State is a consistent snapshot of a controller.
type State struct {
	BaseAmount      float64                `json:"base_amount"`
	Catalog         []taxdomain.TaxSetting `json:"catalog"`
	Selection       Selection              `json:"selection"`
	TaxMode         taxdomain.TaxMode      `json:"tax_mode"`
	FilteredCatalog []taxdomain.TaxSetting `json:"filtered_catalog"`
	Result          CalculationResult      `json:"result"`
}

// Controller owns the selection of one billing session.
//
// The selection, the derived mode, the filtered catalog and the result form
// one unit guarded by mu. Every mutation recomputes all derived fields before
// releasing the lock and stamps the result with a revision. Observers run
// afterwards under notifyMu, in revision order; a result older than one
// already delivered is dropped. Observers may read the controller but must
// not mutate it.
type Controller struct {
	log      *zap.Logger
	recorder Recorder

	mu         sync.Mutex
	catalog    []taxdomain.TaxSetting
	selection  Selection
	mode       taxdomain.TaxMode
	filtered   []taxdomain.TaxSetting
	baseAmount float64
	result     CalculationResult
	revision   uint64
	observers  []Observer

	notifyMu  sync.Mutex
	delivered uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder sets the instrumentation sink.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// NewController builds a controller with an empty catalog.
// baseAmount must be finite and non-negative.
func NewController(log *zap.Logger, baseAmount float64, opts ...Option) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		log:        log.Named("tax.selection"),
		recorder:   noopRecorder{},
		selection:  Selection{},
		mode:       taxdomain.TaxModeUnset,
		baseAmount: baseAmount,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.recompute()
	return c
}

// Observe registers an observer for future results.
func (c *Controller) Observe(o Observer) {
	if o == nil {
		return
	}
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// Initialize replaces the catalog and resets every tax to unselected.
func (c *Controller) Initialize(allTaxes []taxdomain.TaxSetting) {
	c.mu.Lock()
	c.catalog = append([]taxdomain.TaxSetting(nil), allTaxes...)
	c.selection = Empty(c.catalog)
	c.commitLocked()
}

// Toggle flips the selected flag of taxID. Deselecting always succeeds.
// Selecting is refused, leaving state untouched, when the validator rejects
// the tax; the return value reports whether the toggle was applied.
func (c *Controller) Toggle(taxID snowflake.ID) bool {
	c.mu.Lock()

	if c.selection[taxID] {
		c.selection[taxID] = false
		c.recorder.RecordToggle(true)
		c.commitLocked()
		return true
	}

	if !ValidateTaxSelection(c.selection, taxID, c.catalog) {
		mode := c.mode
		c.mu.Unlock()
		c.recorder.RecordToggle(false)
		c.log.Debug("tax toggle refused",
			zap.String("tax_id", taxID.String()),
			zap.String("tax_mode", string(mode)),
		)
		return false
	}

	c.selection[taxID] = true
	c.recorder.RecordToggle(true)
	c.commitLocked()
	return true
}

// ClearAll unselects every tax.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	c.selection = Empty(c.catalog)
	c.commitLocked()
}

// SetSelection replaces the selection in bulk, typically when reopening a
// stored invoice. Ids flagged true must be active catalog entries sharing one
// regime; otherwise the call is rejected, state is left unchanged and
// ErrTaxNotSelectable or ErrMixedTaxModes is returned. A selection without
// any true entry clears the selection.
func (c *Controller) SetSelection(incoming Selection) error {
	c.mu.Lock()

	if err := validateBulk(incoming, c.catalog); err != nil {
		c.mu.Unlock()
		c.recorder.RecordSelectionRejected(err.Error())
		c.log.Warn("tax selection rejected",
			zap.Error(err),
			zap.Int("selected", len(incoming.SelectedIDs())),
		)
		return err
	}

	next := Empty(c.catalog)
	for _, id := range incoming.SelectedIDs() {
		next[id] = true
	}
	c.selection = next
	c.commitLocked()
	return nil
}

// SetBaseAmount replaces the amount taxes are computed against.
// amount must be finite and non-negative; it is not clamped.
func (c *Controller) SetBaseAmount(amount float64) {
	c.mu.Lock()
	c.baseAmount = amount
	c.commitLocked()
}

// IsTaxSelectable reports whether toggling taxID would be accepted.
func (c *Controller) IsTaxSelectable(taxID snowflake.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection[taxID] {
		return true
	}
	return ValidateTaxSelection(c.selection, taxID, c.catalog)
}

// TaxTypeLabel returns the display label of the current mode.
func (c *Controller) TaxTypeLabel() string {
	return c.Mode().Label()
}

// Mode returns the current tax mode.
func (c *Controller) Mode() taxdomain.TaxMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Result returns the current calculation result.
func (c *Controller) Result() CalculationResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneResult(c.result)
}

// Selection returns a copy of the selection map.
func (c *Controller) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Clone()
}

// FilteredCatalog returns the taxes currently eligible for selection.
func (c *Controller) FilteredCatalog() []taxdomain.TaxSetting {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]taxdomain.TaxSetting{}, c.filtered...)
}

// Catalog returns the catalog the controller was initialized with.
func (c *Controller) Catalog() []taxdomain.TaxSetting {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]taxdomain.TaxSetting(nil), c.catalog...)
}

// Snapshot returns every piece of state taken under one lock.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// commitLocked recomputes derived state, releases the lock and then notifies
// observers. Callers must hold mu.
func (c *Controller) commitLocked() {
	c.recompute()
	c.revision++
	revision := c.revision
	result := cloneResult(c.result)
	observers := append([]Observer(nil), c.observers...)
	mode := c.mode
	c.mu.Unlock()

	c.recorder.RecordCalculation(mode)
	c.notify(revision, result, observers)
}

func (c *Controller) notify(revision uint64, result CalculationResult, observers []Observer) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if revision <= c.delivered {
		return
	}
	c.delivered = revision
	for _, observer := range observers {
		observer(cloneResult(result))
	}
}

// recompute derives mode, filtered catalog and result, in that order.
func (c *Controller) recompute() {
	c.mode = CurrentMode(c.selection, c.catalog)
	c.filtered = FilterTaxesByType(c.catalog, c.mode)
	c.result = CalculateTaxAmounts(c.baseAmount, c.selection, c.catalog)
}

func (c *Controller) snapshotLocked() State {
	return State{
		BaseAmount:      c.baseAmount,
		Catalog:         append([]taxdomain.TaxSetting{}, c.catalog...),
		Selection:       c.selection.Clone(),
		TaxMode:         c.mode,
		FilteredCatalog: append([]taxdomain.TaxSetting{}, c.filtered...),
		Result:          cloneResult(c.result),
	}
}

func cloneResult(r CalculationResult) CalculationResult {
	r.TaxBreakdown = append([]BreakdownLine{}, r.TaxBreakdown...)
	return r
}
