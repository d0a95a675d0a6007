package assetbook

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// MarketSource is the provider side of the fetcher: one current price and
// recent headlines per symbol. Implementations live in their own package
// (see yahoo) and must honor the context deadline.
type MarketSource interface {
	Quote(ctx context.Context, symbol string) (Money, error)
	Headlines(ctx context.Context, symbol string, limit int) ([]NewsItem, error)
}

// macroSymbols are the index proxies whose headlines feed the macro list.
var macroSymbols = []string{"^GSPC", "SPY", "QQQ"}

// gramsPerTroyOunce converts the gold spot quote to the workbook's
// per-gram price.
const gramsPerTroyOunce = 31.1034768

// goldETF tracks one tenth of a troy ounce per share; its quote is how the
// gold holding gets valued.
const goldETF = "GLD"

// goldNewsSymbol is the futures ticker used when collecting gold headlines.
const goldNewsSymbol = "GC=F"

// Fetcher batches per-symbol market lookups with per-symbol isolation:
// one symbol's failure never aborts the batch, the symbol is simply absent
// from the result mapping so the reconciler can fall back to its last
// known price.
type Fetcher struct {
	src MarketSource

	// Timeout bounds each symbol's lookups.
	Timeout time.Duration
	// Workers bounds the number of concurrent lookups.
	Workers int
	// HeadlinesPerSymbol caps the raw headlines collected per symbol.
	HeadlinesPerSymbol int
}

// NewFetcher returns a fetcher over src with the default bounds.
func NewFetcher(src MarketSource) *Fetcher {
	return &Fetcher{src: src, Timeout: 10 * time.Second, Workers: 4, HeadlinesPerSymbol: 4}
}

type fetchTask struct {
	symbol string // as held in the workbook, or an index proxy
	macro  bool   // headlines only, tagged Macro
}

type fetchResult struct {
	price *Money
	news  []NewsItem
	err   error
}

// Fetch looks up current prices and headlines for the given held symbols,
// plus market-wide headlines for the index proxies. It returns the partial
// price mapping, the collected headlines in deterministic order, and the
// per-symbol failures joined into one error that callers treat as a
// warning, never as a reason to abort.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string) (map[string]Money, []NewsItem, error) {
	tasks := make([]fetchTask, 0, len(symbols)+len(macroSymbols))
	for _, sym := range symbols {
		if BucketOf(sym) == BucketCash {
			continue // cash needs no quote
		}
		tasks = append(tasks, fetchTask{symbol: sym})
	}
	for _, sym := range macroSymbols {
		tasks = append(tasks, fetchTask{symbol: sym, macro: true})
	}

	// Each worker writes only its own task slots, so the slice needs no lock,
	// and assembling from it keeps the collection order deterministic.
	results := make([]fetchResult, len(tasks))
	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := f.Workers
	if workers < 1 {
		workers = 1
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = f.fetchOne(ctx, tasks[i])
			}
		}()
	}
	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	prices := make(map[string]Money)
	var news []NewsItem
	var errs error
	for i, res := range results {
		if res.price != nil {
			prices[tasks[i].symbol] = *res.price
		}
		news = append(news, res.news...)
		if res.err != nil {
			log.Printf("warning, %v", res.err)
			errs = errors.Join(errs, res.err)
		}
	}
	return prices, news, errs
}

// fetchOne looks up one symbol's price and headlines, bounded by the
// fetcher's timeout. Price and headlines fail independently.
func (f *Fetcher) fetchOne(ctx context.Context, t fetchTask) fetchResult {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	var res fetchResult

	if !t.macro {
		price, err := f.quote(ctx, t.symbol)
		if err != nil {
			res.err = errors.Join(res.err, fmt.Errorf("no price for %s: %w", t.symbol, err))
		} else {
			res.price = &price
		}
	}

	tag, query := t.symbol, providerSymbol(t.symbol)
	if t.macro {
		tag = Macro
	}
	items, err := f.src.Headlines(ctx, query, f.HeadlinesPerSymbol)
	if err != nil {
		res.err = errors.Join(res.err, fmt.Errorf("no headlines for %s: %w", t.symbol, err))
		return res
	}
	for _, it := range items {
		it.Symbol = tag
		res.news = append(res.news, it)
	}
	return res
}

// quote fetches the current price for a held symbol. The gold position is
// denominated in grams, so its price derives from the gold ETF quote:
// ten times the share price is the troy ounce spot, divided down to grams.
func (f *Fetcher) quote(ctx context.Context, symbol string) (Money, error) {
	if BucketOf(symbol) == BucketGold {
		etf, err := f.src.Quote(ctx, goldETF)
		if err != nil {
			return Money{}, err
		}
		return etf.Mul(Q(10)).Div(Q(gramsPerTroyOunce)), nil
	}
	return f.src.Quote(ctx, providerSymbol(symbol))
}

// providerSymbol maps a workbook symbol to the provider's ticker.
func providerSymbol(symbol string) string {
	if BucketOf(symbol) == BucketGold {
		return goldNewsSymbol
	}
	return strings.TrimSuffix(symbol, ".US")
}
