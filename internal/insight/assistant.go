package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"salespilot/internal/llm"
	"salespilot/internal/logging"
	"salespilot/internal/rag"
	"salespilot/internal/reconcile"
	"salespilot/internal/store"
)

// systemPrompt steers the assistant toward business-friendly answers
// grounded strictly in the provided account data.
const systemPrompt = `You are a friendly, confident Sales Assistant that helps sales professionals prepare for and lead better customer conversations.

Your role:
- Explain things clearly and simply
- Use business-friendly, non-technical language
- Focus on customer impact, value, and practical talking points
- Help sales teams speak with confidence and clarity

CRITICAL RULE (never break):
If an answer cannot be clearly supported by the available customer contract or release information,
reply exactly:
"Not found in provided contract or release data."

How to respond:
- Adapt your response style based on the question
- Use short paragraphs for explanations
- Use bullet points only when listing items, risks, or gaps
- Avoid repetition when listing similar items; summarize common themes instead
- Do NOT mention databases, models, context, logic, or computations
- Sound natural, human, and sales-friendly

Answer using only the available customer information.`

// Assistant answers account questions by combining retrieved passages
// with the reconciled delivery context.
type Assistant struct {
	store      *store.Store
	retriever  *rag.Engine
	client     llm.Client
	retrievalK int
}

// NewAssistant creates a chat assistant. retrievalK caps the number of
// retrieved passages per question.
func NewAssistant(s *store.Store, retriever *rag.Engine, client llm.Client, retrievalK int) *Assistant {
	if retrievalK <= 0 {
		retrievalK = 10
	}
	return &Assistant{store: s, retriever: retriever, client: client, retrievalK: retrievalK}
}

// NewSession creates and persists a new chat session, returning its id.
func (a *Assistant) NewSession(customer, title string) (string, error) {
	id := uuid.NewString()
	if err := a.store.CreateChatSession(id, customer, title); err != nil {
		return "", err
	}
	return id, nil
}

// Ask answers one question about a customer's account. The answer is
// grounded in retrieved passages plus the reconciled delivery context.
// LLM failures never propagate: the caller receives deterministic
// fallback content built from the risk report instead.
//
// When sessionID is non-empty the question and answer are persisted to
// that session's history.
func (a *Assistant) Ask(ctx context.Context, customer, question, sessionID string) (string, error) {
	timer := logging.StartTimer(logging.CategoryChat, "Ask")
	defer timer.Stop()

	contracts, err := a.store.LoadContracts(customer)
	if err != nil {
		return "", fmt.Errorf("failed to load contracts: %w", err)
	}
	releases, err := a.store.LoadReleases(customer)
	if err != nil {
		return "", fmt.Errorf("failed to load releases: %w", err)
	}

	report := reconcile.ClassifyAndAggregate(reconcile.Reconcile(contracts, releases))
	accountContext := BuildContext(contracts, releases, report)

	var ragContext string
	if a.retriever != nil {
		docs, err := a.retriever.Query(ctx, question, customer, a.retrievalK)
		if err != nil {
			logging.Get(logging.CategoryChat).Warn("retrieval failed, continuing without passages: %v", err)
		} else {
			texts := make([]string, 0, len(docs))
			for _, doc := range docs {
				texts = append(texts, doc.Text)
			}
			ragContext = strings.Join(texts, "\n\n")
		}
	}

	prompt := buildPrompt(customer, question, ragContext, accountContext)

	answer, err := a.client.CompleteWithSystem(ctx, systemPrompt, prompt)
	if err != nil {
		logging.Get(logging.CategoryChat).Error("LLM call failed: %v", err)
		answer = FallbackAnswer(customer, report)
	}

	if sessionID != "" {
		if err := a.store.AppendChatMessage(sessionID, "user", question); err != nil {
			return "", fmt.Errorf("failed to persist question: %w", err)
		}
		if err := a.store.AppendChatMessage(sessionID, "assistant", answer); err != nil {
			return "", fmt.Errorf("failed to persist answer: %w", err)
		}
	}
	return answer, nil
}

func buildPrompt(customer, question, ragContext, accountContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer: %s\n\n", customer)
	if ragContext != "" {
		fmt.Fprintf(&b, "RELEVANT PASSAGES:\n%s\n\n", ragContext)
	}
	fmt.Fprintf(&b, "ACCOUNT DATA:\n%s\n\n", accountContext)
	fmt.Fprintf(&b, "QUESTION: %s", question)
	return b.String()
}

// FallbackAnswer is the deterministic reply used when the LLM is
// unavailable. It surfaces the risk counts so the conversation still
// carries the account's key numbers.
func FallbackAnswer(customer string, report reconcile.RiskReport) string {
	return fmt.Sprintf(`The assistant is temporarily unavailable, so here is the computed account status for %s:

- High risk items: %d
- Medium risk items: %d
- Low risk items: %d
- Fully delivered features: %d

Please retry for a narrative answer.`,
		customer,
		report.Count(reconcile.RiskHigh),
		report.Count(reconcile.RiskMedium),
		report.Count(reconcile.RiskLow),
		report.Count(reconcile.RiskNone),
	)
}
