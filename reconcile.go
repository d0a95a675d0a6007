package assetbook

import (
	"fmt"
	"math"

	"github.com/etnz/assetbook/date"
)

// Notes recorded on daily rows by the reconciler.
const (
	noteSync  = "broker-sync" // the run's target day, valued from fresh or last-known prices
	noteCarry = "carry"       // a gap day filled with the previous day's values
)

// Performance holds the percentage change of the total balance against
// prior snapshots. A nil delta means no snapshot existed at or before the
// offset, which is reported as unavailable rather than zero.
type Performance struct {
	OneDay    *Percent
	SevenDay  *Percent
	ThirtyDay *Percent
}

// Reconcile values every holding with the freshly fetched prices, falling
// back to the last known price for any symbol the fetch missed, aggregates
// the buckets into the day's snapshot and upserts it into the history.
//
// The quotes mapping may be partial or empty: a transient fetch gap is
// never zero-filled, it only produces a warning. Calendar days between the
// last recorded snapshot and the target day are filled with carry rows so
// the chart series has no holes.
//
// Reconcile is idempotent: re-running the same target date with the same
// inputs replaces the day's row with identical values.
func (w *Workbook) Reconcile(quotes map[string]Money, on date.Date) (DailySnapshot, []string, error) {
	baseline, err := w.Baseline()
	if err != nil {
		return DailySnapshot{}, nil, err
	}

	var warnings []string
	var missing []string
	for _, h := range w.holdings {
		if q, ok := quotes[h.Symbol]; ok {
			w.SetPrice(h.Symbol, q)
			continue
		}
		if BucketOf(h.Symbol) != BucketCash {
			missing = append(missing, h.Symbol)
		}
	}
	switch {
	case len(missing) > 0 && len(quotes) == 0:
		warnings = append(warnings, "no prices fetched; valuing every position at its last known price")
	default:
		for _, sym := range missing {
			warnings = append(warnings, fmt.Sprintf("%s: no fresh price; using last known price", sym))
		}
	}

	var cash, gold, stocks Money
	for _, h := range w.holdings {
		v := h.MarketValue()
		switch BucketOf(h.Symbol) {
		case BucketCash:
			cash = cash.Add(v)
		case BucketGold:
			gold = gold.Add(v)
		default:
			stocks = stocks.Add(v)
		}
	}
	total := cash.Add(gold).Add(stocks)
	if !total.IsPositive() {
		return DailySnapshot{}, warnings, fmt.Errorf("holdings value to %s on %s; refusing to record an empty snapshot", total, on)
	}

	// Fill gap days with carry rows before recording the target day.
	if last, ok := w.Latest(); ok && last.On.Before(on) {
		for d := last.On.Add(1); d.Before(on); d = d.Add(1) {
			carry := last
			carry.On = d
			carry.Note = noteCarry
			w.UpsertDaily(carry)
		}
	}

	snapshot := DailySnapshot{
		On:     on,
		Cash:   cash,
		Gold:   gold,
		Stocks: stocks,
		Total:  total,
		NAV:    round2(total.AsFloat() / baseline),
		Note:   noteSync,
	}
	w.UpsertDaily(snapshot)
	return snapshot, warnings, nil
}

// Performance computes the 1d/7d/30d deltas of the total balance on the
// given day against the nearest snapshot at or before each offset.
func (w *Workbook) Performance(on date.Date) Performance {
	return Performance{
		OneDay:    w.delta(on, 1),
		SevenDay:  w.delta(on, 7),
		ThirtyDay: w.delta(on, 30),
	}
}

func (w *Workbook) delta(on date.Date, days int) *Percent {
	current, ok := w.DailyOn(on)
	if !ok {
		return nil
	}
	prior, ok := w.DailyAsOf(on.Add(-days))
	if !ok || !prior.On.Before(on) {
		return nil
	}
	base := prior.Total.AsFloat()
	if base == 0 {
		return nil
	}
	p := Percent(100 * (current.Total.AsFloat() - base) / base)
	return &p
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
