// Package reconcile merges a customer's contracted feature list with its
// accumulated release history and resolves every feature to a single
// delivery status. It is the deterministic heart of the dashboard: all
// risk scoring, chat context, and deck numbers derive from its output.
//
// Every function in this package is pure and total. Malformed input
// (empty tables, blank identifiers, null-ish status text) degrades to
// defined defaults and never produces an error.
package reconcile

import "strings"

// Status is the resolved delivery state of a contracted feature.
type Status string

const (
	StatusReleased Status = "Released"
	StatusPlanned  Status = "Planned"
	StatusMissing  Status = "Missing"
)

// ContractFeature is one row of a customer's contract table. FeatureID is
// the natural key; the remaining columns are optional and empty when the
// source file omitted them.
type ContractFeature struct {
	CustomerName string
	FeatureID    string
	FeatureName  string
	Description  string
	Priority     string
}

// ReleaseEvent is one row of the accumulated release history. Status is
// free text straight from the upload; it is normalized only for
// comparison, never rewritten.
type ReleaseEvent struct {
	CustomerName string
	FeatureID    string
	FeatureName  string
	Status       string
}

// ReconciledFeature is the derived per-feature view: contract columns
// plus the resolved status. RiskLevel and RiskReason are attached by
// ClassifyAndAggregate.
type ReconciledFeature struct {
	FeatureID   string
	FeatureName string
	Description string
	Priority    string
	Status      Status
	RiskLevel   RiskLevel
	RiskReason  string
}

// releasedSynonyms is the literal set of status strings that count as a
// confirmed delivery. Kept as-is from the production heuristic; do not
// widen it without revisiting the precedence tests.
var releasedSynonyms = map[string]bool{
	"released":  true,
	"done":      true,
	"completed": true,
	"yes":       true,
	"true":      true,
}

// statusPrecedence orders resolution outcomes. When a feature has
// contradictory release rows the highest-precedence outcome wins,
// regardless of row order or count: any confirmed delivery outranks any
// number of "still planned" signals.
var statusPrecedence = map[Status]int{
	StatusMissing:  0,
	StatusPlanned:  1,
	StatusReleased: 2,
}

// classifyReleaseStatus maps one normalized status string to its
// resolution outcome. Unrecognized text resolves to Missing; there is no
// explicit "unknown" bucket.
func classifyReleaseStatus(norm string) Status {
	switch {
	case releasedSynonyms[norm]:
		return StatusReleased
	case norm == "planned":
		return StatusPlanned
	default:
		return StatusMissing
	}
}

// Reconcile merges one customer's contract rows with its release history
// and returns exactly one ReconciledFeature per distinct contract
// feature, in the contracts' first-seen order.
//
// Contract rows are de-duplicated by FeatureID with the first occurrence
// winning. Every feature defaults to Missing; release rows then promote
// it to Planned or Released under the precedence above. Release rows
// whose status is blank or the literal "nan", rows without a feature id,
// and rows referencing features absent from the contract are all ignored.
//
// An empty or id-less contract table yields an empty (non-nil) result.
// The inputs are never mutated.
func Reconcile(contracts []ContractFeature, releases []ReleaseEvent) []ReconciledFeature {
	out := make([]ReconciledFeature, 0, len(contracts))
	if len(contracts) == 0 {
		return out
	}

	seen := make(map[string]bool, len(contracts))
	for _, c := range contracts {
		if c.FeatureID == "" || seen[c.FeatureID] {
			continue
		}
		seen[c.FeatureID] = true
		out = append(out, ReconciledFeature{
			FeatureID:   c.FeatureID,
			FeatureName: c.FeatureName,
			Description: c.Description,
			Priority:    c.Priority,
			Status:      StatusMissing,
		})
	}

	resolved := make(map[string]Status, len(releases))
	for _, r := range releases {
		if r.FeatureID == "" || !seen[r.FeatureID] {
			continue
		}
		norm := strings.ToLower(strings.TrimSpace(r.Status))
		if norm == "" || norm == "nan" {
			continue
		}
		outcome := classifyReleaseStatus(norm)
		if cur, ok := resolved[r.FeatureID]; !ok || statusPrecedence[outcome] > statusPrecedence[cur] {
			resolved[r.FeatureID] = outcome
		}
	}

	for i := range out {
		if st, ok := resolved[out[i].FeatureID]; ok {
			out[i].Status = st
		}
	}
	return out
}
