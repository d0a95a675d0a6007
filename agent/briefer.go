// Package agent produces the daily advisor briefing with Gemini.
//
// The model is constrained to a JSON response schema and instructed to
// ground itself in the headlines it is given, nothing else. Whatever
// comes back is still a candidate: the caller runs it through the
// guardrail before it reaches the payload.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/assetbook"
	"github.com/etnz/assetbook/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// One retry on a transient failure, then give up and let the guardrail
// fall back to the rule-based briefing.
const maxAttempts = 2

const retryDelay = 2 * time.Second

const systemInstruction = `
You are a cautious financial analyst writing a short daily briefing for a
personal portfolio tracker.

Ground every statement in the portfolio summary and the headlines provided
in the request. Never invent facts, prices, events or news. If the headlines
are thin, say so rather than speculate.

Suggestions may only reference assets held in the portfolio. Be conservative:
HOLD is the right action unless a headline gives a concrete reason otherwise.
Keep the headline under 120 characters and every list entry to one sentence.
`

// Briefer generates advisor briefings from a Gemini model.
// It implements assetbook.Generator.
type Briefer struct {
	client *genai.Client
}

// New wraps a Gemini client into a Briefer.
func New(client *genai.Client) *Briefer {
	return &Briefer{client: client}
}

// briefingSchema constrains the model's output to the briefing document.
// The enum'd and required fields here mirror what the guardrail checks, so
// a schema-compliant response has a good chance of passing validation.
var briefingSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"generated_at": {
			Type:        genai.TypeString,
			Description: "Generation timestamp, RFC 3339, UTC.",
		},
		"headline": {
			Type:        genai.TypeString,
			Description: "One line capturing the day, under 120 characters.",
		},
		"macro_summary": {
			Type:        genai.TypeString,
			Description: "Two or three sentences on the market-wide picture.",
		},
		"verdict": {
			Type: genai.TypeString,
			Enum: []string{"BULLISH", "BEARISH", "NEUTRAL"},
		},
		"suggestions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"asset": {
						Type:        genai.TypeString,
						Description: "A symbol held in the portfolio.",
					},
					"action": {
						Type: genai.TypeString,
						Enum: []string{"BUY", "SELL", "HOLD"},
					},
					"rationale": {
						Type:        genai.TypeString,
						Description: "One sentence grounded in today's headlines.",
					},
				},
				Required: []string{"asset", "action", "rationale"},
			},
		},
		"risks": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"news_context": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"global_context": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"generated_at", "headline", "macro_summary", "verdict", "suggestions", "risks", "news_context", "global_context"},
}

// Generate asks the model for a briefing candidate. A nil error does not
// mean the briefing is usable, only that the model answered with a parsable
// document; validation belongs to the guardrail.
func (b *Briefer) Generate(ctx context.Context, req assetbook.BriefingRequest) (*assetbook.AdvisorBriefing, error) {
	prompt := buildPrompt(req)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       genai.Ptr(float32(0.2)),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    briefingSchema,
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		resp, err := b.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
		if err != nil {
			lastErr = fmt.Errorf("gemini generate content failed: %w", err)
			continue
		}
		text := strings.TrimSpace(resp.Text())
		if text == "" {
			lastErr = fmt.Errorf("empty response from %s", model)
			continue
		}

		var briefing assetbook.AdvisorBriefing
		if err := json.Unmarshal([]byte(text), &briefing); err != nil {
			lastErr = fmt.Errorf("response is not a briefing document: %w", err)
			continue
		}
		// The model fills the narrative; provenance fields are ours.
		briefing.Source = assetbook.SourceLLM
		briefing.Disclaimer = assetbook.Disclaimer
		if briefing.GeneratedAt == "" {
			briefing.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
		}
		return &briefing, nil
	}
	return nil, lastErr
}

// buildPrompt lays out the grounding material as markdown, the same
// rendition a human would read in the terminal.
func buildPrompt(req assetbook.BriefingRequest) string {
	book := assetbook.NewWorkbook()
	for _, h := range req.Holdings {
		book.AddHolding(h)
	}

	var sb strings.Builder
	sb.WriteString(renderer.SummaryMarkdown(book, req.Snapshot, req.Performance))
	sb.WriteString("\n")
	sb.WriteString(renderer.NewsMarkdown(req.Ranked))
	sb.WriteString("\nWrite today's briefing from the material above.\n")
	return sb.String()
}
