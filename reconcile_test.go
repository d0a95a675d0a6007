package assetbook

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/etnz/assetbook/date"
)

func TestReconcile(t *testing.T) {
	book := testBook(t)
	on := date.New(2026, time.February, 23)

	snapshot, warnings, err := book.Reconcile(testQuotesDay1(), on)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("Reconcile() warnings = %v, want none", warnings)
	}

	testCases := []struct {
		name string
		got  Money
		want Money
	}{
		{"cash", snapshot.Cash, USD(571.73)},
		{"gold", snapshot.Gold, USD(1410.13)},
		{"stocks", snapshot.Stocks, USD(3220.98)},
		{"total", snapshot.Total, USD(5202.84)},
	}
	for _, tc := range testCases {
		if !tc.got.Equal(tc.want) {
			t.Errorf("Reconcile() %s = %s, want %s", tc.name, tc.got, tc.want)
		}
	}
	if snapshot.NAV != 1.25 {
		t.Errorf("Reconcile() nav = %v, want 1.25", snapshot.NAV)
	}
	if snapshot.Note != "broker-sync" {
		t.Errorf("Reconcile() note = %q, want %q", snapshot.Note, "broker-sync")
	}

	// The fresh prices are written back to the holdings.
	h, _ := book.Holding("SPY")
	if !h.Price.Equal(USD(644.196)) {
		t.Errorf("holding price after reconcile = %s, want the fetched quote", h.Price)
	}
}

func TestReconcile_carryFillsGapDays(t *testing.T) {
	book := testBook(t)
	on := date.New(2026, time.February, 23)

	if _, _, err := book.Reconcile(testQuotesDay1(), on); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	// Baseline on the 20th, target on the 23rd: the 21st and 22nd are
	// carry copies of the baseline row.
	if book.Days() != 4 {
		t.Fatalf("Days() = %d, want 4 (baseline, two carries, target)", book.Days())
	}
	for _, d := range []int{21, 22} {
		s, ok := book.DailyOn(date.New(2026, time.February, d))
		if !ok {
			t.Fatalf("no snapshot on 2026-02-%02d", d)
		}
		if s.Note != "carry" {
			t.Errorf("snapshot on 2026-02-%02d note = %q, want %q", d, s.Note, "carry")
		}
		if !s.Total.Equal(USD(4175)) {
			t.Errorf("carry total on 2026-02-%02d = %s, want the previous day's total", d, s.Total)
		}
	}
}

func TestReconcile_secondDay(t *testing.T) {
	book := pricedBook(t)

	snapshot, warnings, err := book.Reconcile(testQuotesDay2(), date.New(2026, time.February, 24))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("Reconcile() warnings = %v, want none", warnings)
	}
	if !snapshot.Gold.Equal(USD(837.97)) || !snapshot.Stocks.Equal(USD(3783.70)) {
		t.Errorf("Reconcile() gold = %s, stocks = %s; want $837.97 and $3,783.70", snapshot.Gold, snapshot.Stocks)
	}
	if !snapshot.Total.Equal(USD(5193.40)) {
		t.Errorf("Reconcile() total = %s, want $5,193.40", snapshot.Total)
	}
	if snapshot.NAV != 1.24 {
		t.Errorf("Reconcile() nav = %v, want 1.24", snapshot.NAV)
	}
	// Consecutive days leave no gap to fill.
	if book.Days() != 5 {
		t.Errorf("Days() = %d, want 5", book.Days())
	}
}

func TestReconcile_idempotent(t *testing.T) {
	on := date.New(2026, time.February, 23)

	book := testBook(t)
	if _, _, err := book.Reconcile(testQuotesDay1(), on); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	var first bytes.Buffer
	if err := EncodeWorkbook(&first, book); err != nil {
		t.Fatalf("EncodeWorkbook() error = %v", err)
	}

	// Re-running the same day with the same quotes must change nothing.
	if _, _, err := book.Reconcile(testQuotesDay1(), on); err != nil {
		t.Fatalf("Reconcile() rerun error = %v", err)
	}
	var second bytes.Buffer
	if err := EncodeWorkbook(&second, book); err != nil {
		t.Fatalf("EncodeWorkbook() error = %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("re-running the same day changed the workbook:\n--- first\n%s--- second\n%s", first.String(), second.String())
	}
}

func TestReconcile_missingQuoteFallsBack(t *testing.T) {
	book := testBook(t)

	// Only gold gets a fresh price; SPY keeps its stored one.
	quotes := map[string]Money{"XAU": USD(141.013)}
	snapshot, warnings, err := book.Reconcile(quotes, date.New(2026, time.February, 23))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "SPY") {
		t.Fatalf("Reconcile() warnings = %v, want one about SPY", warnings)
	}
	if !snapshot.Stocks.Equal(USD(2403.27)) {
		t.Errorf("Reconcile() stocks = %s, want the last known valuation $2,403.27", snapshot.Stocks)
	}
	if !snapshot.Gold.Equal(USD(1410.13)) {
		t.Errorf("Reconcile() gold = %s, want the fresh valuation $1,410.13", snapshot.Gold)
	}
}

func TestReconcile_emptyQuotes(t *testing.T) {
	book := testBook(t)

	snapshot, warnings, err := book.Reconcile(map[string]Money{}, date.New(2026, time.February, 23))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "no prices fetched") {
		t.Fatalf("Reconcile() warnings = %v, want the single no-prices warning", warnings)
	}
	// Everything valued at stored prices: the baseline total again.
	if !snapshot.Total.Equal(USD(4175)) {
		t.Errorf("Reconcile() total = %s, want $4,175.00", snapshot.Total)
	}
}

func TestReconcile_noHistory(t *testing.T) {
	book := NewWorkbook()
	book.AddHolding(Holding{Symbol: "SPY", Quantity: Q(5), Price: USD(480)})

	if _, _, err := book.Reconcile(testQuotesDay1(), date.New(2026, time.February, 23)); err == nil {
		t.Fatalf("Reconcile() wants an error without a baseline row")
	}
}

func TestPerformance(t *testing.T) {
	book := NewWorkbook()
	day := func(d date.Date, total float64) DailySnapshot {
		return DailySnapshot{On: d, Cash: USD(total), Total: USD(total), NAV: 1}
	}
	on := date.New(2026, time.February, 23)
	book.UpsertDaily(day(on.Add(-30), 5000))
	book.UpsertDaily(day(on.Add(-7), 5100))
	book.UpsertDaily(day(on.Add(-1), 5150))
	book.UpsertDaily(day(on, 5202.84))

	perf := book.Performance(on)
	testCases := []struct {
		name string
		got  *Percent
		want string
	}{
		{"1d", perf.OneDay, "+1.03%"},
		{"7d", perf.SevenDay, "+2.02%"},
		{"30d", perf.ThirtyDay, "+4.06%"},
	}
	for _, tc := range testCases {
		if tc.got == nil {
			t.Fatalf("Performance() %s = nil, want %s", tc.name, tc.want)
		}
		if got := formatDelta(tc.got); got != tc.want {
			t.Errorf("Performance() %s = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestPerformance_unavailable(t *testing.T) {
	book := testBook(t)
	on := date.New(2026, time.February, 23)
	if _, _, err := book.Reconcile(testQuotesDay1(), on); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	perf := book.Performance(on)
	// The baseline row sits 3 days back: the 1d delta resolves against a
	// carry of it, the 30d delta finds nothing at all.
	if perf.OneDay == nil {
		t.Errorf("Performance() 1d = nil, want a delta against the carry row")
	}
	if perf.ThirtyDay != nil {
		t.Errorf("Performance() 30d = %v, want unavailable", *perf.ThirtyDay)
	}
	if got := formatDelta(perf.ThirtyDay); got != "n/a" {
		t.Errorf("formatDelta(nil) = %q, want %q", got, "n/a")
	}

	// No snapshot on the target day at all: every delta is unavailable.
	empty := testBook(t).Performance(date.New(2026, time.March, 15))
	if empty.OneDay != nil || empty.SevenDay != nil || empty.ThirtyDay != nil {
		t.Errorf("Performance() without a snapshot on the day = %+v, want all nil", empty)
	}
}
