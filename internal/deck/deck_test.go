package deck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"salespilot/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contract(id string) reconcile.ContractFeature {
	return reconcile.ContractFeature{CustomerName: "Acme", FeatureID: id, FeatureName: id, Priority: "Low"}
}

func release(id, status string) reconcile.ReleaseEvent {
	return reconcile.ReleaseEvent{CustomerName: "Acme", FeatureID: id, Status: status}
}

func TestBuildStatsCountsUniqueFeatures(t *testing.T) {
	contracts := []reconcile.ContractFeature{
		contract("F1"), contract("F2"), contract("F3"), contract("F4"),
		contract("F1"), // duplicate id counts once
	}
	releases := []reconcile.ReleaseEvent{
		release("F1", "Released"),
		release("F1", "Done"), // same feature, still one delivered
		release("F2", "Live"),
		release("F3", "Planned"),
	}

	stats := BuildStats("Acme", contracts, releases)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Delivered)
	assert.Equal(t, 1, stats.Planned)
	assert.Equal(t, 1, stats.Missing)
}

func TestBuildStatsEmptyInputs(t *testing.T) {
	stats := BuildStats("Acme", nil, nil)
	assert.Equal(t, Stats{Customer: "Acme"}, stats)

	stats = BuildStats("Acme", nil, []reconcile.ReleaseEvent{release("F1", "Released")})
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 1, stats.Delivered)
}

func slideJSON() string {
	var b strings.Builder
	b.WriteString("{")
	for i := 1; i <= SlideCount; i++ {
		fmt.Fprintf(&b, "%q: %q, %q: %q",
			fmt.Sprintf("slide%d_title", i), fmt.Sprintf("Title %d", i),
			fmt.Sprintf("slide%d_content", i), fmt.Sprintf("Point A\\nPoint B %d", i))
		if i < SlideCount {
			b.WriteString(", ")
		}
	}
	b.WriteString("}")
	return b.String()
}

func TestParseContentPlainJSON(t *testing.T) {
	content, err := ParseContent(slideJSON())
	require.NoError(t, err)
	assert.Equal(t, "Title 3", content.Title(3))
	assert.Equal(t, "Point A\nPoint B 3", content.Body(3))
}

func TestParseContentStripsCodeFences(t *testing.T) {
	raw := "```json\n" + slideJSON() + "\n```"
	content, err := ParseContent(raw)
	require.NoError(t, err)
	assert.NoError(t, content.Validate())
}

func TestParseContentExtractsEmbeddedObject(t *testing.T) {
	raw := "Here is your deck:\n" + slideJSON() + "\nHope that helps!"
	content, err := ParseContent(raw)
	require.NoError(t, err)
	assert.Equal(t, "Title 1", content.Title(1))
}

func TestParseContentRejectsIncomplete(t *testing.T) {
	_, err := ParseContent(`{"slide1_title": "Only one"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slide1_content")

	_, err = ParseContent("no json here at all")
	require.Error(t, err)

	_, err = ParseContent("")
	require.Error(t, err)
}

func TestFallbackContentCarriesRiskCounts(t *testing.T) {
	counts := map[reconcile.RiskLevel]int{reconcile.RiskHigh: 2, reconcile.RiskMedium: 5}
	content := FallbackContent("Acme", counts)
	require.NoError(t, content.Validate())
	assert.Contains(t, content["slide1_title"], "Acme")
	assert.Contains(t, content.Body(5), "High risks: 2")
	assert.Contains(t, content.Body(5), "Medium risks: 5")
}

// fakeLLM satisfies llm.Client for generator tests.
type fakeLLM struct {
	response string
	err      error
	prompt   string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.response, f.err
}

func (f *fakeLLM) CompleteWithSystem(ctx context.Context, _, user string) (string, error) {
	return f.Complete(ctx, user)
}

func TestGenerateContentUsesModelOutput(t *testing.T) {
	client := &fakeLLM{response: slideJSON()}
	gen := NewGenerator(client, nil)

	stats := Stats{Customer: "Acme", Total: 3, Delivered: 1, Planned: 1, Missing: 1}
	report := reconcile.ClassifyAndAggregate(nil)

	content := gen.GenerateContent(context.Background(), stats, report)
	assert.Equal(t, "Title 1", content.Title(1))

	assert.Contains(t, client.prompt, "Total committed features: 3")
	assert.Contains(t, client.prompt, "strict JSON format")
	assert.Contains(t, client.prompt, "High risk items: 0")
}

func TestGenerateContentFallsBack(t *testing.T) {
	for name, client := range map[string]*fakeLLM{
		"transport error": {err: fmt.Errorf("boom")},
		"garbage output":  {response: "I cannot produce JSON today."},
	} {
		t.Run(name, func(t *testing.T) {
			gen := NewGenerator(client, nil)
			content := gen.GenerateContent(context.Background(), Stats{Customer: "Acme"}, reconcile.ClassifyAndAggregate(nil))
			require.NoError(t, content.Validate())
			assert.Equal(t, "Strategic Partnership Review - Acme", content["slide1_title"])
		})
	}
}

func TestMarkdownRendererWritesDeck(t *testing.T) {
	dir := t.TempDir()
	r := NewMarkdownRenderer(dir)
	r.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }

	content := FallbackContent("Acme Corp", map[reconcile.RiskLevel]int{})
	path, err := r.Render(content, "Acme Corp")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Acme Corp_Pitch_Deck_20260314_093000.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# Acme Corp Strategic Review")
	assert.Contains(t, text, "Prepared March 14, 2026")
	assert.Contains(t, text, "## Next Steps")
	assert.Contains(t, text, "• Schedule executive review meeting")
}

func TestMarkdownRendererSanitizesFilename(t *testing.T) {
	r := NewMarkdownRenderer(t.TempDir())
	content := FallbackContent("Evil/../Customer?", map[reconcile.RiskLevel]int{})
	path, err := r.Render(content, "Evil/../Customer?")
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "EvilCustomer_Pitch_Deck_")
}

func TestMarkdownRendererRejectsIncompleteContent(t *testing.T) {
	r := NewMarkdownRenderer(t.TempDir())
	_, err := r.Render(Content{"slide1_title": "x"}, "Acme")
	require.Error(t, err)
}
