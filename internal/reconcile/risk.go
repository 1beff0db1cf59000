package reconcile

import "strings"

// RiskLevel is the coarse exposure ranking assigned to each feature.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
	RiskNone   RiskLevel = "NONE"
)

// Levels lists all risk levels in severity order. Aggregate maps always
// carry an entry for each, so consumers can range over this slice
// without nil checks.
var Levels = []RiskLevel{RiskHigh, RiskMedium, RiskLow, RiskNone}

// Fixed risk reasons, one per decision-table row.
const (
	ReasonHighMissing = "High-priority feature not yet released – escalation required"
	ReasonHighPlanned = "High-priority feature on roadmap but not live"
	ReasonMissing     = "Feature missing from current releases"
	ReasonPlanned     = "Feature scheduled for future release"
	ReasonReleased    = "Feature fully released and available"
)

// ClassifyRisk maps one feature's priority and resolved status to a risk
// level with its fixed reason text. Priority is compared case-insensitive
// and trimmed; only "high" is distinguished. Status accepts the legacy
// synonym "Not Released" as an alias for Missing. First matching rule
// wins; anything unmatched (notably Released) carries no risk.
func ClassifyRisk(priority, status string) (RiskLevel, string) {
	high := strings.ToLower(strings.TrimSpace(priority)) == "high"
	missing := status == string(StatusMissing) || status == "Not Released"

	switch {
	case high && missing:
		return RiskHigh, ReasonHighMissing
	case high && status == string(StatusPlanned):
		return RiskMedium, ReasonHighPlanned
	case missing:
		return RiskMedium, ReasonMissing
	case status == string(StatusPlanned):
		return RiskLow, ReasonPlanned
	default:
		return RiskNone, ReasonReleased
	}
}

// RiskDetail is the classification outcome for a single feature.
type RiskDetail struct {
	Level  RiskLevel
	Reason string
}

// RiskReport is the aggregated account view: per-level counts, the
// enriched feature table, and a per-feature lookup.
type RiskReport struct {
	Counts  map[RiskLevel]int
	Table   []ReconciledFeature
	Details map[string]RiskDetail
}

// ClassifyAndAggregate classifies every reconciled feature and counts
// the results. The counts map always contains all four levels, zeroed
// when absent. The input slice is not modified; the returned table is an
// enriched copy with RiskLevel and RiskReason attached.
func ClassifyAndAggregate(rows []ReconciledFeature) RiskReport {
	report := RiskReport{
		Counts:  make(map[RiskLevel]int, len(Levels)),
		Table:   make([]ReconciledFeature, 0, len(rows)),
		Details: make(map[string]RiskDetail, len(rows)),
	}
	for _, level := range Levels {
		report.Counts[level] = 0
	}

	for _, row := range rows {
		level, reason := ClassifyRisk(row.Priority, string(row.Status))
		row.RiskLevel = level
		row.RiskReason = reason
		report.Counts[level]++
		report.Table = append(report.Table, row)
		report.Details[row.FeatureID] = RiskDetail{Level: level, Reason: reason}
	}
	return report
}

// FilterByLevel returns the enriched rows carrying the given risk level,
// preserving table order.
func (r RiskReport) FilterByLevel(level RiskLevel) []ReconciledFeature {
	out := make([]ReconciledFeature, 0, len(r.Table))
	for _, row := range r.Table {
		if row.RiskLevel == level {
			out = append(out, row)
		}
	}
	return out
}

// Count returns the number of features at the given level.
func (r RiskReport) Count(level RiskLevel) int {
	return r.Counts[level]
}
