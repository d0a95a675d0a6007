package renderer

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/etnz/assetbook"
	md "github.com/nao1215/markdown"
)

// BriefingMarkdown renders an approved briefing for the terminal.
func BriefingMarkdown(a assetbook.Approved) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	b := a.Briefing
	doc.H1("Advisor Briefing")
	if a.Degraded {
		doc.PlainText(fmt.Sprintf("Degraded to the %s briefing: %s.", b.Source, a.Reason))
	}

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
		},
		Header: []string{
			md.Bold("Verdict"),
			md.Bold(b.Verdict),
		},
		Rows: [][]string{
			{"Generated", b.GeneratedAt},
			{"Source", b.Source},
		},
	})

	doc.PlainText(md.Bold(b.Headline))
	doc.PlainText(b.MacroSummary)

	doc.H2("Suggestions")
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
		},
		Header: []string{"Asset", "Action", "Rationale"},
	}
	for _, s := range b.Suggestions {
		table.Rows = append(table.Rows, []string{s.Asset, s.Action, s.Rationale})
	}
	doc.Table(table)

	if len(b.Risks) > 0 {
		doc.H2("Risks")
		doc.BulletList(b.Risks...)
	}
	if len(b.NewsContext) > 0 {
		doc.H2("News Context")
		doc.BulletList(b.NewsContext...)
	}
	if len(b.GlobalContext) > 0 {
		doc.H2("Global Context")
		doc.BulletList(b.GlobalContext...)
	}

	doc.PlainText(b.Disclaimer)
	return doc.String()
}

// NewsMarkdown renders the day's ranked headlines: the per-asset
// shortlists grouped by symbol, then the market-wide items.
func NewsMarkdown(r assetbook.Ranked) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Daily News")
	portfolio := assetShortlists(r)
	if len(portfolio) == 0 && len(r.Macro) == 0 {
		doc.PlainText("No headlines collected today.")
		return doc.String()
	}

	if len(portfolio) > 0 {
		doc.H2("Portfolio")
		doc.Table(newsTable(portfolio))
	}
	if len(r.Macro) > 0 {
		doc.H2("Market")
		doc.Table(newsTable(r.Macro))
	}
	return doc.String()
}

// assetShortlists flattens the per-asset shortlists in symbol order, so
// headlines about the same holding sit together. A Ranked built without
// shortlists falls back to the flat portfolio list.
func assetShortlists(r assetbook.Ranked) []assetbook.NewsItem {
	if len(r.PerAsset) == 0 {
		return r.Portfolio
	}
	symbols := make([]string, 0, len(r.PerAsset))
	for sym := range r.PerAsset {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	var items []assetbook.NewsItem
	for _, sym := range symbols {
		items = append(items, r.PerAsset[sym]...)
	}
	return items
}

func newsTable(items []assetbook.NewsItem) md.TableSet {
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
			md.AlignLeft,
		},
		Header: []string{"Symbol", "Published", "Publisher", "Title"},
	}
	for _, item := range items {
		table.Rows = append(table.Rows, []string{
			item.Symbol,
			item.Published.UTC().Format("2006-01-02 15:04"),
			item.Publisher,
			item.Title,
		})
	}
	return table
}
