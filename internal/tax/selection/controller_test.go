package selection

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRecorder struct {
	mu           sync.Mutex
	accepted     int
	refused      int
	rejected     []string
	calculations int
}

func (r *countingRecorder) RecordToggle(accepted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if accepted {
		r.accepted++
		return
	}
	r.refused++
}

func (r *countingRecorder) RecordSelectionRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, reason)
}

func (r *countingRecorder) RecordCalculation(taxdomain.TaxMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calculations++
}

func newTestController(t *testing.T, base float64) *Controller {
	t.Helper()
	c := NewController(zap.NewNop(), base)
	c.Initialize(testCatalog())
	return c
}

func TestController_InitializeResetsState(t *testing.T) {
	c := newTestController(t, 500)
	require.True(t, c.Toggle(gstID))

	c.Initialize(testCatalog())

	state := c.Snapshot()
	assert.Equal(t, taxdomain.TaxModeUnset, state.TaxMode)
	assert.Len(t, state.Selection, len(testCatalog()))
	assert.False(t, state.Selection.HasSelection())
	assert.Len(t, state.FilteredCatalog, 5)
	assert.Equal(t, 500.0, state.Result.TotalAmount)
}

func TestController_ToggleTransitions(t *testing.T) {
	c := newTestController(t, 1000)

	require.True(t, c.Toggle(gstID))
	assert.Equal(t, taxdomain.TaxModeExclusive, c.Mode())
	assert.Equal(t, "Tax Exclusive", c.TaxTypeLabel())
	assert.Equal(t, 1180.0, c.Result().TotalAmount)

	require.True(t, c.Toggle(cgstID))
	assert.Equal(t, taxdomain.TaxModeExclusive, c.Mode())
	assert.InDelta(t, 1270.0, c.Result().TotalAmount, 1e-9)

	require.True(t, c.Toggle(gstID))
	require.True(t, c.Toggle(cgstID))
	assert.Equal(t, taxdomain.TaxModeUnset, c.Mode())
	assert.Equal(t, "No Tax Selected", c.TaxTypeLabel())
	assert.Equal(t, 1000.0, c.Result().TotalAmount)

	require.True(t, c.Toggle(vatID))
	assert.Equal(t, taxdomain.TaxModeInclusive, c.Mode())
	assert.Equal(t, "Tax Inclusive", c.TaxTypeLabel())
	assert.Equal(t, 1000.0, c.Result().TotalAmount)
}

func TestController_CrossModeToggleIsRefused(t *testing.T) {
	rec := &countingRecorder{}
	c := NewController(zap.NewNop(), 1000, WithRecorder(rec))
	c.Initialize(testCatalog())
	require.True(t, c.Toggle(gstID))

	notified := 0
	c.Observe(func(CalculationResult) { notified++ })
	before := c.Snapshot()

	accepted := c.Toggle(vatID)

	assert.False(t, accepted)
	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, 0, notified)
	assert.Equal(t, 1, rec.refused)
	assert.False(t, c.IsTaxSelectable(vatID))
	assert.True(t, c.IsTaxSelectable(gstID))
	assert.True(t, c.IsTaxSelectable(sgstID))
}

func TestController_ToggleUnknownAndInactive(t *testing.T) {
	c := newTestController(t, 10)
	assert.False(t, c.Toggle(999))
	assert.False(t, c.Toggle(oldID))
	assert.False(t, c.Selection().HasSelection())
}

func TestController_DoubleToggleRestoresSelection(t *testing.T) {
	c := newTestController(t, 250)
	require.True(t, c.Toggle(cgstID))
	before := c.Snapshot()

	require.True(t, c.Toggle(sgstID))
	require.True(t, c.Toggle(sgstID))

	assert.Equal(t, before, c.Snapshot())
}

func TestController_ClearAll(t *testing.T) {
	c := newTestController(t, 1180)
	require.True(t, c.Toggle(vatID))
	require.True(t, c.Toggle(cessID))

	c.ClearAll()

	state := c.Snapshot()
	assert.Equal(t, taxdomain.TaxModeUnset, state.TaxMode)
	assert.False(t, state.Selection.HasSelection())
	assert.Len(t, state.FilteredCatalog, 5)
	assert.Equal(t, 0.0, state.Result.TaxAmount)
	assert.Equal(t, 1180.0, state.Result.TotalAmount)
}

func TestController_SetSelection(t *testing.T) {
	c := newTestController(t, 1000)

	require.NoError(t, c.SetSelection(Selection{cgstID: true, sgstID: true, vatID: false}))

	state := c.Snapshot()
	assert.Equal(t, taxdomain.TaxModeExclusive, state.TaxMode)
	assert.True(t, state.Selection[cgstID])
	assert.True(t, state.Selection[sgstID])
	assert.InDelta(t, 180.0, state.Result.TaxAmount, 1e-9)
	assert.Len(t, state.Selection, len(testCatalog()))
}

func TestController_SetSelectionRejectsMixedModes(t *testing.T) {
	rec := &countingRecorder{}
	c := NewController(zap.NewNop(), 1000, WithRecorder(rec))
	c.Initialize(testCatalog())
	require.True(t, c.Toggle(vatID))
	before := c.Snapshot()

	err := c.SetSelection(Selection{gstID: true, cessID: true})

	assert.ErrorIs(t, err, ErrMixedTaxModes)
	assert.Equal(t, before, c.Snapshot())
	assert.Equal(t, []string{"mixed_tax_modes"}, rec.rejected)
}

func TestController_SetSelectionRejectsInactive(t *testing.T) {
	c := newTestController(t, 1000)
	err := c.SetSelection(Selection{oldID: true})
	assert.ErrorIs(t, err, ErrTaxNotSelectable)
	assert.False(t, c.Selection().HasSelection())
}

func TestController_SetSelectionWithoutTrueEntriesClears(t *testing.T) {
	c := newTestController(t, 1000)
	require.True(t, c.Toggle(gstID))

	require.NoError(t, c.SetSelection(Selection{gstID: false}))

	assert.Equal(t, taxdomain.TaxModeUnset, c.Mode())
	assert.False(t, c.Selection().HasSelection())
}

func TestController_SetBaseAmountRecomputes(t *testing.T) {
	c := newTestController(t, 1000)
	require.True(t, c.Toggle(gstID))

	var got []CalculationResult
	c.Observe(func(r CalculationResult) { got = append(got, r) })

	c.SetBaseAmount(2000)

	require.Len(t, got, 1)
	assert.Equal(t, 2000.0, got[0].BaseAmount)
	assert.Equal(t, 360.0, got[0].TaxAmount)
	assert.Equal(t, 2360.0, got[0].TotalAmount)
}

func TestController_ObserverSeesConsistentResult(t *testing.T) {
	c := NewController(zap.NewNop(), 100)
	var results []CalculationResult
	c.Observe(func(r CalculationResult) {
		results = append(results, r)
		// Observers may read back without deadlocking.
		assert.Equal(t, r, c.Result())
	})
	c.Initialize(testCatalog())
	require.True(t, c.Toggle(cgstID))
	require.True(t, c.Toggle(sgstID))

	require.Len(t, results, 3)
	last := results[2]
	sum := 0.0
	for _, line := range last.TaxBreakdown {
		sum += line.Amount
	}
	assert.InDelta(t, last.TaxAmount, sum, 1e-9)
	assert.InDelta(t, last.BaseAmount+last.TaxAmount, last.TotalAmount, 1e-9)
}

func TestController_RandomTogglesKeepInvariants(t *testing.T) {
	catalog := testCatalog()
	index := indexCatalog(catalog)
	candidates := []snowflake.ID{gstID, vatID, cgstID, sgstID, cessID, oldID, 999}

	rng := rand.New(rand.NewSource(42))
	c := newTestController(t, 1000)

	for i := 0; i < 2000; i++ {
		id := candidates[rng.Intn(len(candidates))]
		before := c.Selection()
		accepted := c.Toggle(id)

		state := c.Snapshot()
		if !accepted {
			assert.Equal(t, before, state.Selection)
		}

		modes := map[taxdomain.TaxMode]struct{}{}
		for _, selected := range state.Selection.SelectedIDs() {
			tax, ok := index[selected]
			require.True(t, ok)
			require.True(t, tax.IsActive)
			modes[tax.Mode()] = struct{}{}
		}
		require.LessOrEqual(t, len(modes), 1, "selection mixes tax modes")

		if len(modes) == 0 {
			assert.Equal(t, taxdomain.TaxModeUnset, state.TaxMode)
			assert.Equal(t, FilterTaxesByType(catalog, taxdomain.TaxModeUnset), state.FilteredCatalog)
			continue
		}
		for _, tax := range state.FilteredCatalog {
			assert.Equal(t, state.TaxMode, tax.Mode())
		}
	}
}

func TestController_ConcurrentMutations(t *testing.T) {
	c := newTestController(t, 1000)
	catalog := testCatalog()
	index := indexCatalog(catalog)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				switch rng.Intn(4) {
				case 0:
					c.ClearAll()
				case 1:
					c.SetBaseAmount(float64(rng.Intn(5000)))
				default:
					c.Toggle(catalog[rng.Intn(len(catalog))].ID)
				}
			}
		}(int64(w))
	}
	wg.Wait()

	state := c.Snapshot()
	modes := map[bool]struct{}{}
	for _, id := range state.Selection.SelectedIDs() {
		modes[index[id].IsInclusive] = struct{}{}
	}
	assert.LessOrEqual(t, len(modes), 1)
	assert.Equal(t, CalculateTaxAmounts(state.BaseAmount, state.Selection, catalog), state.Result)
}

// stallingRecorder parks the first calculation it sees after arm is called.
type stallingRecorder struct {
	noopRecorder
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func newStallingRecorder() *stallingRecorder {
	return &stallingRecorder{entered: make(chan struct{}), release: make(chan struct{})}
}

func (r *stallingRecorder) RecordCalculation(taxdomain.TaxMode) {
	if r.armed.CompareAndSwap(true, false) {
		close(r.entered)
		<-r.release
	}
}

func TestController_ObserversNeverEndOnStaleResult(t *testing.T) {
	rec := newStallingRecorder()
	c := NewController(zap.NewNop(), 1000, WithRecorder(rec))
	c.Initialize(testCatalog())

	var mu sync.Mutex
	var last CalculationResult
	c.Observe(func(r CalculationResult) {
		mu.Lock()
		last = r
		mu.Unlock()
	})

	rec.armed.Store(true)
	done := make(chan bool)
	go func() { done <- c.Toggle(cgstID) }()
	<-rec.entered

	// The first toggle has committed but not yet notified.
	require.True(t, c.Toggle(sgstID))
	close(rec.release)
	require.True(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 180.0, last.TaxAmount)
	assert.Len(t, last.TaxBreakdown, 2)
	assert.Equal(t, c.Result(), last)
}

func TestController_ConcurrentObserverSeesFinalResult(t *testing.T) {
	c := newTestController(t, 1000)

	var mu sync.Mutex
	var last CalculationResult
	c.Observe(func(r CalculationResult) {
		mu.Lock()
		last = r
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				if rng.Intn(3) == 0 {
					c.SetBaseAmount(float64(rng.Intn(5000)))
					continue
				}
				c.Toggle([]snowflake.ID{gstID, cgstID, sgstID, vatID}[rng.Intn(4)])
			}
		}(int64(w))
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, c.Result(), last)
}
