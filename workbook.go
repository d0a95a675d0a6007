package assetbook

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/etnz/assetbook/date"
)

// Bucket classifies a holding into one of the three aggregate rows of a
// daily snapshot.
type Bucket int

const (
	BucketCash Bucket = iota
	BucketGold
	BucketStocks
)

// BucketOf returns the aggregate bucket a symbol belongs to.
func BucketOf(symbol string) Bucket {
	switch strings.ToUpper(symbol) {
	case "CASH", "USD", "USDT":
		return BucketCash
	case "XAU", "GOLD":
		return BucketGold
	default:
		return BucketStocks
	}
}

// Holding is one portfolio position. Quantity is in units of the asset
// (dollars for the cash row, grams for the gold row), Price is the last
// known unit price in USD.
type Holding struct {
	Symbol   string
	Name     string
	Quantity Quantity
	Price    Money
}

// MarketValue returns quantity times unit price.
func (h Holding) MarketValue() Money { return h.Price.Mul(h.Quantity) }

// DailySnapshot is one calendar date's aggregate state.
type DailySnapshot struct {
	On     date.Date
	Cash   Money
	Gold   Money
	Stocks Money
	Total  Money
	NAV    float64
	Note   string
}

// ChartPoint is the time-series projection of a snapshot: its date and
// total value. It is regenerated from the daily history, never persisted.
type ChartPoint struct {
	Date  date.Date
	Value Money
}

// checkTolerance is the maximum accepted drift between the sum of the
// aggregate rows and the recorded total, in USD.
const checkTolerance = 0.05

// Workbook is the durable store: the current holdings and the daily
// snapshot history, kept sorted ascending by date with unique dates.
type Workbook struct {
	holdings []Holding
	daily    []DailySnapshot
}

func NewWorkbook() *Workbook { return &Workbook{} }

// Holdings iterates over the positions in workbook order.
func (w *Workbook) Holdings() iter.Seq[Holding] {
	return func(yield func(Holding) bool) {
		for _, h := range w.holdings {
			if !yield(h) {
				return
			}
		}
	}
}

// Holding returns the position for symbol.
func (w *Workbook) Holding(symbol string) (Holding, bool) {
	for _, h := range w.holdings {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return Holding{}, false
}

// Has reports whether the workbook holds the given symbol.
func (w *Workbook) Has(symbol string) bool {
	_, ok := w.Holding(symbol)
	return ok
}

// Symbols returns the held symbols in workbook order.
func (w *Workbook) Symbols() []string {
	symbols := make([]string, 0, len(w.holdings))
	for _, h := range w.holdings {
		symbols = append(symbols, h.Symbol)
	}
	return symbols
}

// AddHolding appends a position, replacing any existing position with the
// same symbol.
func (w *Workbook) AddHolding(h Holding) {
	for i := range w.holdings {
		if w.holdings[i].Symbol == h.Symbol {
			w.holdings[i] = h
			return
		}
	}
	w.holdings = append(w.holdings, h)
}

// SetPrice refreshes the last known unit price for symbol.
func (w *Workbook) SetPrice(symbol string, price Money) bool {
	for i := range w.holdings {
		if w.holdings[i].Symbol == symbol {
			w.holdings[i].Price = price
			return true
		}
	}
	return false
}

// Daily iterates over the snapshot history in chronological order.
func (w *Workbook) Daily() iter.Seq[DailySnapshot] {
	return func(yield func(DailySnapshot) bool) {
		for _, s := range w.daily {
			if !yield(s) {
				return
			}
		}
	}
}

// Days returns the number of snapshots in the history.
func (w *Workbook) Days() int { return len(w.daily) }

// First returns the oldest snapshot.
func (w *Workbook) First() (DailySnapshot, bool) {
	if len(w.daily) == 0 {
		return DailySnapshot{}, false
	}
	return w.daily[0], true
}

// Latest returns the most recent snapshot.
func (w *Workbook) Latest() (DailySnapshot, bool) {
	if len(w.daily) == 0 {
		return DailySnapshot{}, false
	}
	return w.daily[len(w.daily)-1], true
}

// DailyOn returns the snapshot recorded exactly on that day.
func (w *Workbook) DailyOn(on date.Date) (DailySnapshot, bool) {
	i, found := w.search(on)
	if !found {
		return DailySnapshot{}, false
	}
	return w.daily[i], true
}

// DailyAsOf returns the snapshot on that day, or the most recent one before it.
func (w *Workbook) DailyAsOf(on date.Date) (DailySnapshot, bool) {
	i, found := w.search(on)
	if found {
		return w.daily[i], true
	}
	if i == 0 {
		return DailySnapshot{}, false // no snapshot on or before that day
	}
	return w.daily[i-1], true
}

// search runs a binary search over the sorted daily history.
func (w *Workbook) search(on date.Date) (int, bool) {
	return slices.BinarySearchFunc(w.daily, on, func(s DailySnapshot, t date.Date) int {
		if s.On.After(t) {
			return 1
		}
		if s.On.Before(t) {
			return -1
		}
		return 0
	})
}

// UpsertDaily records a snapshot. An existing snapshot on the same date is
// replaced in place; otherwise the snapshot is inserted and the history
// re-sorted ascending. Re-running a day is therefore idempotent and never
// creates duplicate or out-of-order rows.
func (w *Workbook) UpsertDaily(s DailySnapshot) {
	if i, found := w.search(s.On); found {
		w.daily[i] = s
		return
	}
	w.daily = append(w.daily, s)
	sort.SliceStable(w.daily, func(i, j int) bool { return w.daily[i].On.Before(w.daily[j].On) })
}

// Baseline returns the fixed NAV baseline unit, established once at the
// first historical record: first.total / first.nav. NAV(t) is total(t)
// divided by this unit. Without any history there is nothing to anchor the
// index to, which is a structural error.
func (w *Workbook) Baseline() (float64, error) {
	first, ok := w.First()
	if !ok {
		return 0, fmt.Errorf("workbook has no daily history to establish the NAV baseline")
	}
	if first.NAV <= 0 {
		return 0, fmt.Errorf("first daily snapshot (%s) has nav %v, want > 0", first.On, first.NAV)
	}
	return first.Total.AsFloat() / first.NAV, nil
}

// Chart projects the daily history into chart points, wholesale.
func (w *Workbook) Chart() []ChartPoint {
	points := make([]ChartPoint, 0, len(w.daily))
	for _, s := range w.daily {
		points = append(points, ChartPoint{Date: s.On, Value: s.Total})
	}
	return points
}

// Weights returns each held symbol's share of the total market value,
// in [0,1]. An empty portfolio returns an empty map.
func (w *Workbook) Weights() map[string]float64 {
	total := 0.0
	values := make(map[string]float64, len(w.holdings))
	for _, h := range w.holdings {
		v := h.MarketValue().AsFloat()
		values[h.Symbol] = v
		total += v
	}
	if total == 0 {
		return map[string]float64{}
	}
	weights := make(map[string]float64, len(values))
	for sym, v := range values {
		weights[sym] = v / total
	}
	return weights
}

// Check validates the integrity of the daily history: dates strictly
// increasing with no duplicates, the aggregate rows summing to the total
// within tolerance, and a positive NAV on every row.
func (w *Workbook) Check() error {
	for i, s := range w.daily {
		if i > 0 && !w.daily[i-1].On.Before(s.On) {
			return fmt.Errorf("daily history out of order at %s: duplicate or earlier than %s", s.On, w.daily[i-1].On)
		}
		sum := s.Cash.Add(s.Gold).Add(s.Stocks)
		drift := sum.Sub(s.Total).AsFloat()
		if drift < 0 {
			drift = -drift
		}
		if drift > checkTolerance {
			return fmt.Errorf("daily %s: cash+gold+stocks = %s does not match total %s", s.On, sum, s.Total)
		}
		if s.NAV <= 0 {
			return fmt.Errorf("daily %s: nav %v, want > 0", s.On, s.NAV)
		}
	}
	for _, h := range w.holdings {
		if h.Quantity.IsNegative() {
			return fmt.Errorf("holding %s: negative quantity %s", h.Symbol, h.Quantity)
		}
	}
	return nil
}
