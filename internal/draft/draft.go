package draft

import (
	"math"
	"strconv"
	"strings"

	"koi_orders/internal/api"
	"koi_orders/internal/store"

	"github.com/shopspring/decimal"
)

// Draft holds the not-yet-submitted quantity map. Every mutation is written
// through to the store immediately, matching the autosave behavior of the
// ordering screen; the map itself is only a cache of what the user will
// eventually submit.
type Draft struct {
	store *store.Store
	qty   store.QtyMap
}

func New(st *store.Store) *Draft {
	return &Draft{
		store: st,
		qty:   st.LoadDraftQty(),
	}
}

// Get returns the draft quantity for an item key, zero when unset.
func (d *Draft) Get(key string) float64 {
	return d.qty[key]
}

func (d *Draft) Inc(key string) {
	d.set(key, NormalizeQty(d.qty[key]+1))
}

// Dec subtracts one, clamped at zero.
func (d *Draft) Dec(key string) {
	next := d.qty[key] - 1
	if next < 0 {
		next = 0
	}
	d.set(key, NormalizeQty(next))
}

// SetFromInput applies a free-form quantity edit. Non-numeric or negative
// input is discarded without error and the prior value stays; accepted
// values are rounded to two decimals.
func (d *Draft) SetFromInput(key, input string) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return false
	}
	d.set(key, NormalizeQty(n))
	return true
}

// Replace overwrites the whole draft; the path back from editing an
// existing order.
func (d *Draft) Replace(qty store.QtyMap) {
	if qty == nil {
		qty = store.QtyMap{}
	}
	d.qty = qty
	d.store.SaveDraftQty(d.qty)
}

// Reset clears the local draft only; any server-side order is untouched.
func (d *Draft) Reset() {
	d.qty = store.QtyMap{}
	d.store.ClearDraftQty()
}

// Lines packages every catalog item in catalog order, zero quantities
// included, so the order can be reopened for editing with full context.
func (d *Draft) Lines(items []api.Item) []api.OrderLine {
	lines := make([]api.OrderLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, api.OrderLine{ItemKey: item.Key, Qty: d.Get(item.Key)})
	}
	return lines
}

func (d *Draft) set(key string, v float64) {
	d.qty[key] = v
	d.store.SaveDraftQty(d.qty)
}

// NormalizeQty rounds to two decimal places, half away from zero.
func NormalizeQty(n float64) float64 {
	f, _ := decimal.NewFromFloat(n).Round(2).Float64()
	return f
}
