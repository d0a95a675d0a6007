package assetbook

import (
	"math"
	"sort"
	"strings"
	"time"
)

// ScoringWeights is the tunable coefficient set for news relevance.
// The zero value is useless; start from DefaultScoring and adjust.
type ScoringWeights struct {
	// HeldBase is the base score for a headline about a held symbol,
	// raised by HeldWeight per unit of portfolio weight.
	HeldBase   float64
	HeldWeight float64
	// MacroBase scores market-wide headlines, OtherBase everything else.
	MacroBase float64
	OtherBase float64
	// MentionBase rewards a title that names the symbol outright,
	// raised by MentionWeight per unit of portfolio weight.
	MentionBase   float64
	MentionWeight float64
	// TrustBonus rewards trusted publishers.
	TrustBonus float64
	// Freshness is the maximum recency bonus, decaying linearly to zero
	// at FreshnessHorizon.
	Freshness        float64
	FreshnessHorizon time.Duration
	// Cap is a hard ceiling on any score.
	Cap float64
}

// DefaultScoring returns the tuning the pipeline has been running with.
func DefaultScoring() ScoringWeights {
	return ScoringWeights{
		HeldBase:         0.55,
		HeldWeight:       0.40,
		MacroBase:        0.35,
		OtherBase:        0.10,
		MentionBase:      0.15,
		MentionWeight:    0.10,
		TrustBonus:       0.05,
		Freshness:        0.30,
		FreshnessHorizon: 168 * time.Hour,
		Cap:              0.999,
	}
}

// trustedPublishers get a small score bonus: their headlines have proven
// less prone to clickbait phrasing that derails the briefing verdict.
var trustedPublishers = map[string]bool{
	"REUTERS":       true,
	"BLOOMBERG":     true,
	"WSJ":           true,
	"CNBC":          true,
	"YAHOO FINANCE": true,
}

// Score computes the relevance of one headline against the portfolio
// weights, at a given instant. Deterministic: same inputs, same score.
func (sw ScoringWeights) Score(item NewsItem, weights map[string]float64, now time.Time) float64 {
	var score float64

	portfolioWeight, held := weights[item.Symbol]
	switch {
	case item.IsMacro():
		score = sw.MacroBase
	case held:
		score = sw.HeldBase + math.Min(portfolioWeight, 1)*sw.HeldWeight
	default:
		score = sw.OtherBase
	}

	if held && strings.Contains(strings.ToUpper(item.Title), strings.ToUpper(item.Symbol)) {
		score += sw.MentionBase + portfolioWeight*sw.MentionWeight
	}

	if trustedPublishers[strings.ToUpper(strings.TrimSpace(item.Publisher))] {
		score += sw.TrustBonus
	}

	ageHours := math.Max(item.Age(now).Hours(), 0)
	horizon := sw.FreshnessHorizon.Hours()
	if horizon > 0 {
		score += math.Max(0, 1-math.Min(ageHours/horizon, 1)) * sw.Freshness
	}

	if score > sw.Cap {
		score = sw.Cap
	}
	return math.Round(score*10000) / 10000
}

// Ranked is the ranker's output: per-asset shortlists for the briefing,
// the flattened portfolio list and the macro list for the payload.
type Ranked struct {
	PerAsset  map[string][]NewsItem
	Portfolio []NewsItem
	Macro     []NewsItem
}

// Ranker orders headlines by relevance and truncates them to fixed caps.
type Ranker struct {
	Weights     ScoringWeights
	PerAssetMax int // shortlist per held symbol, for the briefing context
	MacroMax    int // market-wide items kept in the payload
	FlatMax     int // portfolio items kept in the payload
}

// NewRanker returns a ranker with the default tuning and caps.
func NewRanker() *Ranker {
	return &Ranker{Weights: DefaultScoring(), PerAssetMax: 2, MacroMax: 6, FlatMax: 8}
}

type scoredNews struct {
	NewsItem
	score float64
	index int // original collection order, the final tie-break
}

// Rank deduplicates, scores and orders the collected headlines.
// Ordering is fully deterministic: score descending, then published
// timestamp descending, then original collection order. The rule-based
// briefing depends on that reproducibility.
func (r *Ranker) Rank(items []NewsItem, weights map[string]float64, now time.Time) Ranked {
	items = Dedupe(items)

	scored := make([]scoredNews, 0, len(items))
	for i, it := range items {
		scored = append(scored, scoredNews{NewsItem: it, score: r.Weights.Score(it, weights, now), index: i})
	}
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.Published.Equal(b.Published) {
			return a.Published.After(b.Published)
		}
		return a.index < b.index
	})

	ranked := Ranked{PerAsset: make(map[string][]NewsItem)}
	for _, s := range scored {
		if s.IsMacro() {
			if len(ranked.Macro) < r.MacroMax {
				ranked.Macro = append(ranked.Macro, s.NewsItem)
			}
			continue
		}
		if _, held := weights[s.Symbol]; !held {
			continue // not in the portfolio, not worth surfacing
		}
		if len(ranked.PerAsset[s.Symbol]) < r.PerAssetMax {
			ranked.PerAsset[s.Symbol] = append(ranked.PerAsset[s.Symbol], s.NewsItem)
		}
		if len(ranked.Portfolio) < r.FlatMax {
			ranked.Portfolio = append(ranked.Portfolio, s.NewsItem)
		}
	}
	return ranked
}

// Titles returns the titles of the given items, capped at n.
func Titles(items []NewsItem, n int) []string {
	titles := make([]string, 0, n)
	for _, it := range items {
		if len(titles) == n {
			break
		}
		titles = append(titles, it.Title)
	}
	return titles
}
