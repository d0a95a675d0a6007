package assetbook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Asset bucket labels as the dashboard displays them.
const (
	labelCash   = "Cash USD"
	labelGold   = "Gold USD"
	labelStocks = "US Stocks"
)

// AssetRow is one aggregate line of the dashboard's asset table.
type AssetRow struct {
	Label string
	Value Money
}

func (a AssetRow) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("label", a.Label)
	w.Append("value", a.Value.Amount())
	return w.MarshalJSON()
}

func (c ChartPoint) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", c.Date)
	w.Append("value", c.Value.Amount())
	return w.MarshalJSON()
}

// holdingView renders a holding for the payload.
type holdingView struct {
	Holding
}

func (h holdingView) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", h.Symbol)
	w.Append("name", h.Name)
	w.Append("quantity", h.Quantity)
	w.Append("price", h.Price.Decimal())
	w.Append("market_value", h.MarketValue().Amount())
	return w.MarshalJSON()
}

// formatDelta renders a performance delta for the payload: always signed,
// or "n/a" when no prior snapshot was available.
func formatDelta(p *Percent) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", float64(*p))
}

func (p Performance) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("1d", formatDelta(p.OneDay))
	w.Append("7d", formatDelta(p.SevenDay))
	w.Append("30d", formatDelta(p.ThirtyDay))
	return w.MarshalJSON()
}

// Payload is the root artifact published for the dashboard. It is a
// derived, disposable cache: safe to delete and rebuild from the workbook
// plus a fresh fetch.
type Payload struct {
	Assets       []AssetRow
	Chart        []ChartPoint
	TotalBalance Money
	LastUpdated  string
	Performance  Performance
	Holdings     []Holding
	Briefing     AdvisorBriefing
	DailyNews    []NewsItem
	Insights     []string
	Diagnostics  *Diagnostics
}

// MarshalJSON renders the payload with the stable field order the
// dashboard relies on.
func (p *Payload) MarshalJSON() ([]byte, error) {
	holdings := make([]holdingView, 0, len(p.Holdings))
	for _, h := range p.Holdings {
		holdings = append(holdings, holdingView{h})
	}
	news := p.DailyNews
	if news == nil {
		news = []NewsItem{}
	}
	insights := p.Insights
	if insights == nil {
		insights = []string{}
	}
	diags := p.Diagnostics
	if diags == nil {
		diags = &Diagnostics{}
	}

	var w jsonObjectWriter
	w.Append("assets", p.Assets)
	w.Append("chart_data", p.Chart)
	w.Append("total_balance", p.TotalBalance.Amount())
	w.Append("last_updated", p.LastUpdated)
	w.Append("performance", p.Performance)
	w.Append("holdings", holdings)
	w.Append("advisor_briefing", p.Briefing)
	w.Append("daily_news", news)
	w.Append("insights", insights)
	w.Append("diagnostics", diags)
	return w.MarshalJSON()
}

// Assemble merges the reconciled snapshot, the chart history, the approved
// briefing and the collected news into the final payload. The payload's
// last_updated combines the run's target date with the wall clock time, so
// a historical simulation is stamped on its simulated day.
func Assemble(book *Workbook, snapshot DailySnapshot, perf Performance, approved Approved, news []NewsItem, diags *Diagnostics, now time.Time) *Payload {
	holdings := make([]Holding, 0)
	for h := range book.Holdings() {
		holdings = append(holdings, h)
	}

	clock := now.UTC()
	stamp := snapshot.On.At(clock.Hour(), clock.Minute(), clock.Second())

	return &Payload{
		Assets: []AssetRow{
			{Label: labelCash, Value: snapshot.Cash},
			{Label: labelGold, Value: snapshot.Gold},
			{Label: labelStocks, Value: snapshot.Stocks},
		},
		Chart:        book.Chart(),
		TotalBalance: snapshot.Total,
		LastUpdated:  stamp.Format("2006-01-02 15:04:05"),
		Performance:  perf,
		Holdings:     holdings,
		Briefing:     approved.Briefing,
		DailyNews:    news,
		Insights:     BuildInsights(perf, book),
		Diagnostics:  diags,
	}
}

// BuildInsights derives short deterministic observations from the deltas
// and the portfolio composition. Never empty: the dashboard always has
// something to show.
func BuildInsights(perf Performance, book *Workbook) []string {
	var insights []string

	if perf.OneDay != nil {
		insights = append(insights, fmt.Sprintf("Total balance moved %+.2f%% over the last day.", float64(*perf.OneDay)))
	}
	if perf.ThirtyDay != nil {
		trend := "up"
		if *perf.ThirtyDay < 0 {
			trend = "down"
		}
		insights = append(insights, fmt.Sprintf("30-day trend: %s %+.2f%%.", trend, float64(*perf.ThirtyDay)))
	}
	if top, weight, ok := largestPosition(book); ok {
		insights = append(insights, fmt.Sprintf("Largest position %s at %.1f%% of the portfolio.", top, weight*100))
	}
	if len(insights) == 0 {
		insights = append(insights, "First day of tracking; performance history will build up over the coming runs.")
	}
	return insights
}

// largestPosition returns the symbol with the biggest portfolio weight,
// ties broken alphabetically.
func largestPosition(book *Workbook) (string, float64, bool) {
	weights := book.Weights()
	symbols := make([]string, 0, len(weights))
	for sym := range weights {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	best, bestWeight := "", -1.0
	for _, sym := range symbols {
		if weights[sym] > bestWeight {
			best, bestWeight = sym, weights[sym]
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, bestWeight, true
}

// WritePayload publishes the payload to path atomically: marshal, write to
// a temporary file in the destination directory, then rename over the
// target. A concurrent reader never observes a partial document.
func WritePayload(path string, p *Payload) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal payload: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create payload directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".payload-*.json")
	if err != nil {
		return fmt.Errorf("could not create temporary payload file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not write payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not close temporary payload file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not replace payload file %q: %w", path, err)
	}
	return nil
}
