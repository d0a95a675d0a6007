package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/assetbook"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the workbook state on the snapshot's day.
func SummaryMarkdown(book *assetbook.Workbook, snapshot assetbook.DailySnapshot, perf assetbook.Performance) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Portfolio on %s", snapshot.On))

	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
		},
		Header: []string{
			md.Bold("Total Balance"),
			md.Bold(snapshot.Total.String()),
		},
		Rows: [][]string{
			{"Cash", snapshot.Cash.String()},
			{"Gold", snapshot.Gold.String()},
			{"US Stocks", snapshot.Stocks.String()},
			{"NAV", fmt.Sprintf("%.2f", snapshot.NAV)},
		},
	})

	doc.H2("Performance")
	doc.Table(md.TableSet{
		Header: []string{"Period", "Return"},
		Rows: [][]string{
			{"1 day", formatDelta(perf.OneDay)},
			{"7 days", formatDelta(perf.SevenDay)},
			{"30 days", formatDelta(perf.ThirtyDay)},
		},
	})

	doc.H2("Holdings")
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Symbol", "Name", "Quantity", "Price", "Value"},
	}
	for h := range book.Holdings() {
		table.Rows = append(table.Rows, []string{
			h.Symbol,
			h.Name,
			h.Quantity.String(),
			h.Price.String(),
			h.MarketValue().String(),
		})
	}
	doc.Table(table)

	return doc.String()
}

// HistoryMarkdown renders the full daily history as a table.
func HistoryMarkdown(book *assetbook.Workbook) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Daily History")
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Date", "Cash", "Gold", "Stocks", "Total", "NAV", "Note"},
		Rows:   [][]string{},
	}
	for s := range book.Daily() {
		table.Rows = append(table.Rows, []string{
			s.On.String(),
			s.Cash.String(),
			s.Gold.String(),
			s.Stocks.String(),
			s.Total.String(),
			fmt.Sprintf("%.2f", s.NAV),
			s.Note,
		})
	}
	doc.Table(table)

	return doc.String()
}

func formatDelta(p *assetbook.Percent) string {
	if p == nil {
		return "n/a"
	}
	return p.SignedString()
}
