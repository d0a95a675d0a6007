package assetbook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/etnz/assetbook/date"
)

// assemblePayload runs the book through reconcile, rank and the fallback
// briefing, and assembles the payload the way the pipeline does.
func assemblePayload(t *testing.T, now time.Time) *Payload {
	t.Helper()
	book := testBook(t)
	on := date.New(2026, time.February, 23)
	snapshot, _, err := book.Reconcile(testQuotesDay1(), on)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	ranked := NewRanker().Rank(testNews(), book.Weights(), now)
	approved := ValidateOrFallback(nil, book, ranked, now)
	news := append(append([]NewsItem{}, ranked.Portfolio...), ranked.Macro...)
	diags := &Diagnostics{}
	diags.Add("fetch", StepSuccess, "2 quotes, 4 headlines")
	return Assemble(book, snapshot, book.Performance(on), approved, news, diags, now)
}

func TestPayload_fieldOrder(t *testing.T) {
	payload := assemblePayload(t, testClock)
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	// The dashboard parses positionally in places, so the key order is part
	// of the contract.
	keys := []string{
		`"assets"`, `"chart_data"`, `"total_balance"`, `"last_updated"`,
		`"performance"`, `"holdings"`, `"advisor_briefing"`, `"daily_news"`,
		`"insights"`, `"diagnostics"`,
	}
	last := -1
	for _, key := range keys {
		i := strings.Index(string(data), key)
		if i < 0 {
			t.Fatalf("payload is missing %s:\n%s", key, data)
		}
		if i < last {
			t.Errorf("payload key %s out of order", key)
		}
		last = i
	}
}

func TestPayload_content(t *testing.T) {
	payload := assemblePayload(t, testClock)
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if got := doc["total_balance"]; got != 5202.84 {
		t.Errorf("total_balance = %v, want 5202.84", got)
	}
	assets, _ := doc["assets"].([]any)
	if len(assets) != 3 {
		t.Fatalf("assets = %v, want 3 rows", doc["assets"])
	}
	labels := []string{"Cash USD", "Gold USD", "US Stocks"}
	values := []float64{571.73, 1410.13, 3220.98}
	for i, raw := range assets {
		row := raw.(map[string]any)
		if row["label"] != labels[i] || row["value"] != values[i] {
			t.Errorf("assets[%d] = %v, want %s %.2f", i, row, labels[i], values[i])
		}
	}
	chart, _ := doc["chart_data"].([]any)
	if len(chart) != 4 {
		t.Errorf("chart_data = %d points, want the full history", len(chart))
	}
	if got := doc["last_updated"]; got != "2026-02-23 15:00:00" {
		t.Errorf("last_updated = %v, want %q", got, "2026-02-23 15:00:00")
	}
}

func TestPayload_simulatedDayStamp(t *testing.T) {
	// Running a historical day from a later wall clock stamps the payload
	// on the simulated day, keeping the wall clock time.
	now := time.Date(2026, time.February, 24, 9, 30, 45, 0, time.UTC)
	payload := assemblePayload(t, now)
	if payload.LastUpdated != "2026-02-23 09:30:45" {
		t.Errorf("LastUpdated = %q, want %q", payload.LastUpdated, "2026-02-23 09:30:45")
	}
}

func TestPayload_emptyListsNeverNull(t *testing.T) {
	payload := &Payload{Briefing: RuleBased(NewWorkbook(), Ranked{}, testClock)}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, key := range []string{`"daily_news":[]`, `"insights":[]`, `"steps":[]`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("payload should render empty lists, not null; missing %s in:\n%s", key, data)
		}
	}
}

func TestNewsItem_MarshalJSON(t *testing.T) {
	item := NewsItem{
		Symbol:    "SPY",
		Title:     "Record close",
		Publisher: "Reuters",
		Published: time.Date(2026, time.February, 23, 14, 30, 59, 0, time.UTC),
		URL:       "https://example.com/a",
	}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"symbol":"SPY","title":"Record close","publisher":"Reuters","published":"2026-02-23 14:30","url":"https://example.com/a"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s\nwant      %s", data, want)
	}

	item.Summary = "A short summary."
	data, _ = json.Marshal(item)
	if !strings.Contains(string(data), `"summary":"A short summary."`) {
		t.Errorf("Marshal() with summary = %s, want the summary field", data)
	}
}

func TestBuildInsights(t *testing.T) {
	t.Run("fresh tracking", func(t *testing.T) {
		got := BuildInsights(Performance{}, NewWorkbook())
		if len(got) != 1 || !strings.Contains(got[0], "First day of tracking") {
			t.Errorf("BuildInsights() = %v, want the first-day placeholder", got)
		}
	})

	t.Run("with history", func(t *testing.T) {
		up, down := Percent(1.03), Percent(-2.5)
		book := pricedBook(t)
		got := BuildInsights(Performance{OneDay: &up, ThirtyDay: &down}, book)
		if len(got) != 3 {
			t.Fatalf("BuildInsights() = %v, want 3 insights", got)
		}
		if got[0] != "Total balance moved +1.03% over the last day." {
			t.Errorf("insight[0] = %q", got[0])
		}
		if got[1] != "30-day trend: down -2.50%." {
			t.Errorf("insight[1] = %q", got[1])
		}
		if got[2] != "Largest position SPY at 61.9% of the portfolio." {
			t.Errorf("insight[2] = %q", got[2])
		}
	})
}

func TestWritePayload(t *testing.T) {
	payload := assemblePayload(t, testClock)
	path := filepath.Join(t.TempDir(), "site", "payload.json")

	if err := WritePayload(path, payload); err != nil {
		t.Fatalf("WritePayload() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading the published payload: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Errorf("payload file should end with a newline")
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("published payload is not valid JSON: %v", err)
	}

	// No temporary file left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("publish directory holds %d entries, want just the payload", len(entries))
	}
}
