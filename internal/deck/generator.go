package deck

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"salespilot/internal/llm"
	"salespilot/internal/logging"
	"salespilot/internal/rag"
	"salespilot/internal/reconcile"
)

const (
	// ragQuery drives passage retrieval for deck generation.
	ragQuery = "strategic overview contract commitments roadmap delivery status risks value proposition"

	ragDocLimit     = 12
	ragContextLimit = 6000
)

var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

// Generator produces pitch deck content for a customer.
type Generator struct {
	client    llm.Client
	retriever *rag.Engine
}

// NewGenerator builds a deck generator. The retriever may be nil, in
// which case slides are generated without retrieved context.
func NewGenerator(client llm.Client, retriever *rag.Engine) *Generator {
	return &Generator{client: client, retriever: retriever}
}

// GenerateContent asks the LLM for a full slide set. Any failure along
// the way, from transport errors to malformed JSON, degrades to the
// fixed fallback deck rather than surfacing an error.
func (g *Generator) GenerateContent(ctx context.Context, stats Stats, report reconcile.RiskReport) Content {
	ragContext := g.retrieveContext(ctx, stats.Customer)
	prompt := buildDeckPrompt(stats, report, ragContext)

	if g.client == nil {
		return FallbackContent(stats.Customer, report.Counts)
	}

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		logging.Deck("generation failed for %s, using fallback: %v", stats.Customer, err)
		return FallbackContent(stats.Customer, report.Counts)
	}

	content, err := ParseContent(raw)
	if err != nil {
		logging.Deck("unusable slide output for %s, using fallback: %v", stats.Customer, err)
		return FallbackContent(stats.Customer, report.Counts)
	}
	return content
}

func (g *Generator) retrieveContext(ctx context.Context, customer string) string {
	if g.retriever == nil {
		return ""
	}
	docs, err := g.retriever.Query(ctx, ragQuery, customer, ragDocLimit)
	if err != nil {
		logging.Deck("context retrieval failed for %s: %v", customer, err)
		return ""
	}
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Text)
	}
	joined := strings.Join(parts, "\n\n")
	if len(joined) > ragContextLimit {
		joined = joined[:ragContextLimit]
	}
	return joined
}

func buildDeckPrompt(stats Stats, report reconcile.RiskReport, ragContext string) string {
	var b strings.Builder
	b.WriteString(`You are a professional sales strategist generating a 7-slide pitch deck in strict JSON format.

Respond with ONLY a valid JSON object. No explanations, no markdown, no code fences, no extra text.

Use exactly these keys:
{
`)
	for i := 1; i <= SlideCount; i++ {
		fmt.Fprintf(&b, "  %q: \"string\",\n", fmt.Sprintf("slide%d_title", i))
		suffix := ","
		if i == SlideCount {
			suffix = ""
		}
		fmt.Fprintf(&b, "  %q: \"string (use \\n for line breaks)\"%s\n", fmt.Sprintf("slide%d_content", i), suffix)
	}
	b.WriteString(`}

Content guidelines:
- Be confident, positive, and sales-focused
- Highlight progress and partnership
- Acknowledge risks professionally with mitigation
- End with clear next steps

Key data:
`)
	b.WriteString(stats.Summary())
	fmt.Fprintf(&b, `

Risk summary:
High risk items: %d
Medium risk items: %d
Low risk items: %d

Relevant context:
%s

Generate the JSON now:`,
		report.Counts[reconcile.RiskHigh],
		report.Counts[reconcile.RiskMedium],
		report.Counts[reconcile.RiskLow],
		ragContext)
	return b.String()
}

// ParseContent extracts a validated slide set from raw model output,
// tolerating code fences and surrounding prose.
func ParseContent(raw string) (Content, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("empty model output")
	}

	for _, marker := range []string{"```json", "```", "`"} {
		text = strings.ReplaceAll(text, marker, "")
	}
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "{") {
		block := jsonBlockPattern.FindString(text)
		if block == "" {
			return nil, fmt.Errorf("no JSON object in model output")
		}
		text = block
	}

	var content Content
	if err := json.Unmarshal([]byte(text), &content); err != nil {
		return nil, fmt.Errorf("decoding slide JSON: %w", err)
	}
	if err := content.Validate(); err != nil {
		return nil, err
	}
	return content, nil
}

// FallbackContent returns the fixed slide set used when generation
// fails or produces unusable output.
func FallbackContent(customer string, counts map[reconcile.RiskLevel]int) Content {
	return Content{
		"slide1_title":   fmt.Sprintf("Strategic Partnership Review - %s", customer),
		"slide1_content": "Strong, long-term collaboration delivering measurable business value",
		"slide2_title":   "Contract Commitments Overview",
		"slide2_content": "All key features clearly defined and actively tracked",
		"slide3_title":   "Value Already Delivered",
		"slide3_content": `Multiple critical features live in production\nSignificant business outcomes achieved`,
		"slide4_title":   "Active Roadmap & Momentum",
		"slide4_content": `Strong pipeline of planned enhancements\nClear delivery timeline established`,
		"slide5_title":   "Risk Management",
		"slide5_content": fmt.Sprintf(`High risks: %d\nMedium risks: %d\nProactive mitigation plans in place`, counts[reconcile.RiskHigh], counts[reconcile.RiskMedium]),
		"slide6_title":   "Business Impact & ROI",
		"slide6_content": `Realized value through delivered capabilities\nStrong foundation for continued growth`,
		"slide7_title":   "Next Steps",
		"slide7_content": `• Schedule executive review meeting\n• Align on Q2 priorities\n• Continue close partnership`,
	}
}
