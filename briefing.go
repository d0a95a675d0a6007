package assetbook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Briefing source values.
const (
	SourceLLM       = "llm"
	SourceRuleBased = "rule-based"
)

// Verdict values.
const (
	VerdictBullish = "BULLISH"
	VerdictBearish = "BEARISH"
	VerdictNeutral = "NEUTRAL"
)

// Suggestion action values.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)

// Disclaimer is attached to every briefing, whatever produced it.
const Disclaimer = "Automated briefing for personal tracking only. Not financial advice."

// generatedAtFormat is the timestamp form of the generated_at field.
const generatedAtFormat = time.RFC3339

// Suggestion is one per-asset recommendation inside a briefing.
type Suggestion struct {
	Asset     string `json:"asset"`
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
}

// AdvisorBriefing is the narrative enrichment attached to a payload.
// Every field must always be present with a value of the correct type,
// whichever generation path produced it; Validate enforces that.
type AdvisorBriefing struct {
	GeneratedAt   string       `json:"generated_at"`
	Source        string       `json:"source"`
	Headline      string       `json:"headline"`
	MacroSummary  string       `json:"macro_summary"`
	Verdict       string       `json:"verdict"`
	Suggestions   []Suggestion `json:"suggestions"`
	Risks         []string     `json:"risks"`
	NewsContext   []string     `json:"news_context"`
	GlobalContext []string     `json:"global_context"`
	Disclaimer    string       `json:"disclaimer"`
}

// BriefingRequest carries everything the narrative generator may ground
// itself on. Nothing outside this struct is allowed into the briefing.
type BriefingRequest struct {
	Holdings    []Holding
	Snapshot    DailySnapshot
	Performance Performance
	Ranked      Ranked
}

// Generator produces a candidate briefing from the supplied context.
// Implementations must honor the context deadline; any failure is returned
// as an error for the guardrail to resolve, never panicked.
type Generator interface {
	Generate(ctx context.Context, req BriefingRequest) (*AdvisorBriefing, error)
}

// Validate checks the briefing against the schema: every field present
// with the correct type, enums within range, suggestions non-empty and
// fully filled in. It returns all violations joined together.
func (b *AdvisorBriefing) Validate() error {
	var errs error

	if b.GeneratedAt == "" {
		errs = errors.Join(errs, fmt.Errorf("generated_at is empty"))
	} else if _, err := time.Parse(generatedAtFormat, b.GeneratedAt); err != nil {
		errs = errors.Join(errs, fmt.Errorf("generated_at %q is not a valid timestamp: %w", b.GeneratedAt, err))
	}
	if b.Source != SourceLLM && b.Source != SourceRuleBased {
		errs = errors.Join(errs, fmt.Errorf("source %q, want %q or %q", b.Source, SourceLLM, SourceRuleBased))
	}
	if strings.TrimSpace(b.Headline) == "" {
		errs = errors.Join(errs, fmt.Errorf("headline is empty"))
	}
	if strings.TrimSpace(b.MacroSummary) == "" {
		errs = errors.Join(errs, fmt.Errorf("macro_summary is empty"))
	}
	switch b.Verdict {
	case VerdictBullish, VerdictBearish, VerdictNeutral:
	default:
		errs = errors.Join(errs, fmt.Errorf("verdict %q, want one of BULLISH, BEARISH, NEUTRAL", b.Verdict))
	}
	if len(b.Suggestions) == 0 {
		errs = errors.Join(errs, fmt.Errorf("suggestions is empty"))
	}
	for i, s := range b.Suggestions {
		if strings.TrimSpace(s.Asset) == "" {
			errs = errors.Join(errs, fmt.Errorf("suggestions[%d].asset is empty", i))
		}
		switch s.Action {
		case ActionBuy, ActionSell, ActionHold:
		default:
			errs = errors.Join(errs, fmt.Errorf("suggestions[%d].action %q, want one of BUY, SELL, HOLD", i, s.Action))
		}
		if strings.TrimSpace(s.Rationale) == "" {
			errs = errors.Join(errs, fmt.Errorf("suggestions[%d].rationale is empty", i))
		}
	}
	if b.Risks == nil {
		errs = errors.Join(errs, fmt.Errorf("risks is missing"))
	}
	if b.NewsContext == nil {
		errs = errors.Join(errs, fmt.Errorf("news_context is missing"))
	}
	if b.GlobalContext == nil {
		errs = errors.Join(errs, fmt.Errorf("global_context is missing"))
	}
	if strings.TrimSpace(b.Disclaimer) == "" {
		errs = errors.Join(errs, fmt.Errorf("disclaimer is empty"))
	}
	return errs
}

// Approved is the guardrail outcome: a briefing guaranteed to pass
// Validate, plus whether the deterministic fallback produced it and why.
type Approved struct {
	Briefing AdvisorBriefing
	Degraded bool
	Reason   string
}

// ValidateOrFallback resolves a candidate briefing into an approved one.
// It never fails: a missing candidate, a schema violation or a suggestion
// about an asset the portfolio does not hold all resolve to the rule-based
// briefing built from the workbook and the ranked news alone.
func ValidateOrFallback(candidate *AdvisorBriefing, book *Workbook, ranked Ranked, now time.Time) Approved {
	if candidate == nil {
		return Approved{Briefing: RuleBased(book, ranked, now), Degraded: true, Reason: "no candidate briefing"}
	}
	if err := candidate.Validate(); err != nil {
		return Approved{Briefing: RuleBased(book, ranked, now), Degraded: true, Reason: fmt.Sprintf("schema violation: %v", err)}
	}

	// Content check: drop suggestions about assets that are not held.
	approved := *candidate
	kept := make([]Suggestion, 0, len(approved.Suggestions))
	var dropped []string
	for _, s := range approved.Suggestions {
		if book.Has(s.Asset) {
			kept = append(kept, s)
		} else {
			dropped = append(dropped, s.Asset)
		}
	}
	if len(kept) == 0 {
		reason := fmt.Sprintf("all suggestions reference assets not held: %s", strings.Join(dropped, ", "))
		return Approved{Briefing: RuleBased(book, ranked, now), Degraded: true, Reason: reason}
	}
	approved.Suggestions = kept
	return Approved{Briefing: approved}
}

// Token lists steering the rule-based verdict.
var (
	bearishTokens = []string{"selloff", "recession", "inflation", "downgrade", "risk", "war", "volatility"}
	bullishTokens = []string{"growth", "upgrade", "rally", "expansion", "breakthrough", "recovery"}
)

// RuleBased deterministically builds a briefing from the workbook and the
// ranked news alone. It is a pure function of its inputs, including the
// clock value: identical inputs yield byte-identical output.
func RuleBased(book *Workbook, ranked Ranked, now time.Time) AdvisorBriefing {
	headlines := append(append([]NewsItem{}, ranked.Portfolio...), ranked.Macro...)

	var bearish, bullish int
	var riskTitles []string
	for _, item := range headlines {
		title := strings.ToLower(item.Title)
		hit := false
		for _, tok := range bearishTokens {
			if strings.Contains(title, tok) {
				bearish++
				hit = true
			}
		}
		for _, tok := range bullishTokens {
			if strings.Contains(title, tok) {
				bullish++
			}
		}
		if hit && len(riskTitles) < 3 {
			riskTitles = append(riskTitles, item.Title)
		}
	}

	verdict := VerdictNeutral
	headline := "No clear market direction; holding steady"
	switch {
	case bearish > bullish:
		verdict = VerdictBearish
		headline = "Defensive posture as risk headlines dominate"
	case bullish > bearish:
		verdict = VerdictBullish
		headline = "Tailwinds build for the portfolio's core holdings"
	}

	macroSummary := "No market-wide headlines collected today."
	if len(ranked.Macro) > 0 {
		macroSummary = "Macro focus: " + ranked.Macro[0].Title
	}

	briefing := AdvisorBriefing{
		GeneratedAt:   now.UTC().Format(generatedAtFormat),
		Source:        SourceRuleBased,
		Headline:      headline,
		MacroSummary:  macroSummary,
		Verdict:       verdict,
		Suggestions:   holdSuggestions(book),
		Risks:         nonNil(riskTitles),
		NewsContext:   Titles(ranked.Portfolio, 3),
		GlobalContext: Titles(ranked.Macro, 3),
		Disclaimer:    Disclaimer,
	}
	return briefing
}

// holdSuggestions builds HOLD entries for the top three holdings by market
// value, ties broken by symbol so the order never wobbles.
func holdSuggestions(book *Workbook) []Suggestion {
	holdings := make([]Holding, 0)
	for h := range book.Holdings() {
		holdings = append(holdings, h)
	}
	sort.Slice(holdings, func(i, j int) bool {
		vi, vj := holdings[i].MarketValue(), holdings[j].MarketValue()
		if !vi.Equal(vj) {
			return vi.GreaterThan(vj)
		}
		return holdings[i].Symbol < holdings[j].Symbol
	})

	weights := book.Weights()
	suggestions := make([]Suggestion, 0, 3)
	for _, h := range holdings {
		if len(suggestions) == 3 {
			break
		}
		suggestions = append(suggestions, Suggestion{
			Asset:     h.Symbol,
			Action:    ActionHold,
			Rationale: fmt.Sprintf("%s is %.1f%% of the portfolio; no actionable signal in today's headlines.", h.Symbol, weights[h.Symbol]*100),
		})
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, Suggestion{
			Asset:     "CASH",
			Action:    ActionHold,
			Rationale: "No positions held; nothing to rebalance.",
		})
	}
	return suggestions
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
