// Package deck generates customer pitch deck content from account data.
//
// Slide copy comes from the configured LLM as a strict JSON object; when
// the model is unreachable or returns something unusable the generator
// falls back to a fixed, presentable slide set so a deck is always
// produced.
package deck

import (
	"fmt"
	"strings"

	"salespilot/internal/reconcile"
)

// SlideCount is the number of content slides in a generated deck.
const SlideCount = 7

// Content holds the generated slide copy keyed as slideN_title and
// slideN_content for N in 1..SlideCount.
type Content map[string]string

// RequiredKeys returns every key a complete deck must carry.
func RequiredKeys() []string {
	keys := make([]string, 0, SlideCount*2)
	for i := 1; i <= SlideCount; i++ {
		keys = append(keys, fmt.Sprintf("slide%d_title", i), fmt.Sprintf("slide%d_content", i))
	}
	return keys
}

// Validate reports whether the content carries all required slide keys.
func (c Content) Validate() error {
	var missing []string
	for _, key := range RequiredKeys() {
		if _, ok := c[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("deck content missing keys: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Title returns the title for a 1-based slide number.
func (c Content) Title(n int) string {
	if t, ok := c[fmt.Sprintf("slide%d_title", n)]; ok {
		return t
	}
	return fmt.Sprintf("Slide %d", n)
}

// Body returns the body text for a 1-based slide number with escaped
// newlines expanded.
func (c Content) Body(n int) string {
	raw := c[fmt.Sprintf("slide%d_content", n)]
	return strings.ReplaceAll(raw, `\n`, "\n")
}

// Stats summarizes delivery progress against contracted features.
type Stats struct {
	Customer  string
	Total     int
	Delivered int
	Planned   int
	Missing   int
}

// deliveredStatuses are release statuses counted as delivered for deck
// stats. Broader than the reconciliation synonym set on purpose: deck
// numbers follow the reporting convention, not the risk one.
var deliveredStatuses = map[string]bool{
	"released":  true,
	"done":      true,
	"completed": true,
	"live":      true,
}

// BuildStats computes deck delivery stats over unique feature ids.
func BuildStats(customer string, contracts []reconcile.ContractFeature, releases []reconcile.ReleaseEvent) Stats {
	stats := Stats{Customer: customer}

	seen := make(map[string]bool)
	for _, c := range contracts {
		if c.FeatureID == "" || seen[c.FeatureID] {
			continue
		}
		seen[c.FeatureID] = true
		stats.Total++
	}

	delivered := make(map[string]bool)
	planned := make(map[string]bool)
	for _, r := range releases {
		if r.FeatureID == "" {
			continue
		}
		status := strings.ToLower(strings.TrimSpace(r.Status))
		switch {
		case deliveredStatuses[status]:
			delivered[r.FeatureID] = true
		case status == "planned":
			planned[r.FeatureID] = true
		}
	}

	stats.Delivered = len(delivered)
	stats.Planned = len(planned)
	stats.Missing = stats.Total - stats.Delivered - stats.Planned
	return stats
}

// Summary renders the stats block fed to the slide generator.
func (s Stats) Summary() string {
	return fmt.Sprintf(`Customer: %s
Total committed features: %d
Delivered: %d
Planned / In progress: %d
Not yet addressed: %d`, s.Customer, s.Total, s.Delivered, s.Planned, s.Missing)
}
