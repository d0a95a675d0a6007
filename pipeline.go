package assetbook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/assetbook/date"
)

// RunConfig gathers everything a daily run needs. Only Book is mandatory:
// a nil Source skips fetching and values positions at their stored prices,
// a nil Generator skips the language model and goes straight to the
// rule-based briefing.
type RunConfig struct {
	Book      *Workbook
	Source    MarketSource
	Generator Generator
	Ranker    *Ranker
	On        date.Date // target day; zero value means today
	Now       time.Time // clock; zero value means time.Now
	Targets   []string  // payload destinations
}

// RunResult is what a completed daily run produced.
type RunResult struct {
	Snapshot DailySnapshot
	Ranked   Ranked
	Approved Approved
	Payload  *Payload
	Diags    *Diagnostics
	Warnings []string
}

// Run executes one daily cycle: fetch market data, reconcile the workbook,
// rank the collected news, produce an approved briefing and publish the
// payload. Degraded stages are recorded in the diagnostics and the run
// carries on; only structural failures (an unreadable workbook, an
// impossible snapshot, an unwritable payload) abort with an error.
func Run(ctx context.Context, cfg RunConfig) (*RunResult, error) {
	if cfg.Book == nil {
		return nil, fmt.Errorf("run needs a workbook")
	}
	on := cfg.On
	if on.IsZero() {
		on = date.Today()
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	ranker := cfg.Ranker
	if ranker == nil {
		ranker = NewRanker()
	}

	diags := &Diagnostics{}
	result := &RunResult{Diags: diags}

	// Fetch. Losing the market is a degradation, not a failure: the
	// reconciler falls back to last known prices.
	quotes := map[string]Money{}
	var news []NewsItem
	done := diags.Track("fetch")
	if cfg.Source == nil {
		done(StepDegraded, "no market source; valuing positions at stored prices")
	} else {
		fetcher := NewFetcher(cfg.Source)
		var err error
		quotes, news, err = fetcher.Fetch(ctx, cfg.Book.Symbols())
		switch {
		case err != nil:
			done(StepDegraded, err.Error())
		default:
			done(StepSuccess, fmt.Sprintf("%d quotes, %d headlines", len(quotes), len(news)))
		}
	}

	// Reconcile. This is the one stage whose failure poisons everything
	// downstream, so it aborts the run.
	done = diags.Track("reconcile")
	snapshot, warnings, err := cfg.Book.Reconcile(quotes, on)
	if err != nil {
		done(StepFailed, err.Error())
		return nil, fmt.Errorf("reconcile failed: %w", err)
	}
	result.Snapshot = snapshot
	result.Warnings = warnings
	if len(warnings) > 0 {
		done(StepDegraded, strings.Join(warnings, "; "))
	} else {
		done(StepSuccess, fmt.Sprintf("total %s, nav %.2f", snapshot.Total, snapshot.NAV))
	}

	// Rank is pure and cannot fail.
	done = diags.Track("rank")
	ranked := ranker.Rank(news, cfg.Book.Weights(), now)
	result.Ranked = ranked
	done(StepSuccess, fmt.Sprintf("%d portfolio, %d macro headlines kept", len(ranked.Portfolio), len(ranked.Macro)))

	// Briefing. The guardrail guarantees an approved briefing whatever the
	// generator does, so this stage degrades at worst.
	done = diags.Track("briefing")
	var candidate *AdvisorBriefing
	if cfg.Generator != nil {
		candidate, err = cfg.Generator.Generate(ctx, BriefingRequest{
			Holdings:    cfg.Book.holdings,
			Snapshot:    snapshot,
			Performance: cfg.Book.Performance(on),
			Ranked:      ranked,
		})
		if err != nil {
			candidate = nil
			diags.Add("generator", StepDegraded, err.Error())
		}
	}
	approved := ValidateOrFallback(candidate, cfg.Book, ranked, now)
	result.Approved = approved
	if approved.Degraded {
		done(StepDegraded, approved.Reason)
	} else {
		done(StepSuccess, "source "+approved.Briefing.Source)
	}

	// Assemble and publish.
	done = diags.Track("payload")
	daily := append(append([]NewsItem{}, ranked.Portfolio...), ranked.Macro...)
	payload := Assemble(cfg.Book, snapshot, cfg.Book.Performance(on), approved, daily, diags, now)
	result.Payload = payload
	for _, target := range cfg.Targets {
		if err := WritePayload(target, payload); err != nil {
			done(StepFailed, err.Error())
			return nil, fmt.Errorf("publish failed: %w", err)
		}
	}
	done(StepSuccess, fmt.Sprintf("%d target(s)", len(cfg.Targets)))

	return result, nil
}
