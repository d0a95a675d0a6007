package assetbook

import (
	"strings"
	"time"
)

// Macro is the sentinel symbol for market-wide headlines that are not tied
// to a held position.
const Macro = "MACRO"

// NewsItem is one headline collected during a run. Items are ephemeral:
// they live in memory and in the published payload, never in the workbook.
type NewsItem struct {
	Symbol    string    // held symbol, or Macro
	Title     string
	Publisher string
	Published time.Time // normalized to UTC
	URL       string
	Summary   string
}

// IsMacro reports whether the item is a market-wide headline.
func (n NewsItem) IsMacro() bool { return n.Symbol == Macro }

// Age returns how old the item is relative to now.
func (n NewsItem) Age(now time.Time) time.Duration { return now.Sub(n.Published) }

// MarshalJSON renders the item with a stable field order and the published
// timestamp in the payload's "2006-01-02 15:04" form.
func (n NewsItem) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", n.Symbol)
	w.Append("title", n.Title)
	w.Append("publisher", n.Publisher)
	w.Append("published", n.Published.UTC().Format("2006-01-02 15:04"))
	w.Append("url", n.URL)
	w.Optional("summary", n.Summary)
	return w.MarshalJSON()
}

// Dedupe removes duplicate headlines collected from overlapping sources,
// keeping the first occurrence. Two items are duplicates when they share a
// URL, or when they share a symbol and a case-insensitive title.
func Dedupe(items []NewsItem) []NewsItem {
	seenURL := make(map[string]bool, len(items))
	seenTitle := make(map[string]bool, len(items))
	out := make([]NewsItem, 0, len(items))
	for _, it := range items {
		if it.URL != "" && seenURL[it.URL] {
			continue
		}
		key := it.Symbol + "\x00" + strings.ToLower(strings.TrimSpace(it.Title))
		if seenTitle[key] {
			continue
		}
		if it.URL != "" {
			seenURL[it.URL] = true
		}
		seenTitle[key] = true
		out = append(out, it)
	}
	return out
}
