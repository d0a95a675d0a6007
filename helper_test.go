package assetbook

import (
	"testing"
	"time"

	"github.com/etnz/assetbook/date"
)

// testClock is the fixed instant the deterministic tests run at.
var testClock = time.Date(2026, time.February, 23, 15, 0, 0, 0, time.UTC)

// testBook returns a workbook with the three buckets populated and a
// baseline daily row anchoring the NAV index at 1.00 on 2026-02-20.
// At the day-one quotes (see testQuotesDay1) it values to
// cash 571.73, gold 1410.13, stocks 3220.98, total 5202.84, nav 1.25.
func testBook(t *testing.T) *Workbook {
	t.Helper()
	book := NewWorkbook()
	book.AddHolding(Holding{Symbol: "CASH", Name: "US Dollar", Quantity: Q(571.73), Price: USD(1)})
	book.AddHolding(Holding{Symbol: "XAU", Name: "Gold (grams)", Quantity: Q(10), Price: USD(120)})
	book.AddHolding(Holding{Symbol: "SPY", Name: "SPDR S&P 500 ETF", Quantity: Q(5), Price: USD(480.654)})
	book.UpsertDaily(DailySnapshot{
		On:     date.New(2026, time.February, 20),
		Cash:   USD(571.73),
		Gold:   USD(1200),
		Stocks: USD(2403.27),
		Total:  USD(4175),
		NAV:    1.00,
		Note:   "baseline",
	})
	return book
}

// testQuotesDay1 prices the book to the 2026-02-23 snapshot.
func testQuotesDay1() map[string]Money {
	return map[string]Money{
		"XAU": USD(141.013),
		"SPY": USD(644.196),
	}
}

// testQuotesDay2 prices the book to the 2026-02-24 snapshot:
// cash 571.73, gold 837.97, stocks 3783.70, total 5193.40, nav 1.24.
func testQuotesDay2() map[string]Money {
	return map[string]Money{
		"XAU": USD(83.797),
		"SPY": USD(756.74),
	}
}

// pricedBook is testBook reconciled through the day-one quotes.
func pricedBook(t *testing.T) *Workbook {
	t.Helper()
	book := testBook(t)
	if _, _, err := book.Reconcile(testQuotesDay1(), date.New(2026, time.February, 23)); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	return book
}

// testNews returns a small headline mix: two about the held SPY position,
// one macro, one about a symbol not in the portfolio.
func testNews() []NewsItem {
	return []NewsItem{
		{Symbol: "SPY", Title: "SPY notches another record close", Publisher: "Reuters", Published: testClock.Add(-2 * time.Hour), URL: "https://example.com/spy-record"},
		{Symbol: "SPY", Title: "Equity funds see steady inflows", Publisher: "Some Blog", Published: testClock.Add(-30 * time.Hour), URL: "https://example.com/inflows"},
		{Symbol: Macro, Title: "Fed holds rates steady", Publisher: "Bloomberg", Published: testClock.Add(-4 * time.Hour), URL: "https://example.com/fed"},
		{Symbol: "TSLA", Title: "Carmaker teases new model", Publisher: "Some Blog", Published: testClock.Add(-8 * time.Hour), URL: "https://example.com/car"},
	}
}
