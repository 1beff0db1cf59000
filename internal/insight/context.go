// Package insight turns the reconciled account view into
// sales-friendly prose: the chat context fed to the LLM, the
// deterministic executive summary, and the assistant that answers
// questions grounded in retrieved passages.
package insight

import (
	"fmt"
	"strings"

	"salespilot/internal/reconcile"
)

// BuildContext renders the account data as explicit natural-language
// bullet lines. This context is the single source of truth the chat
// assistant answers from; it spells out delivery state so the model
// cannot misread the table.
func BuildContext(contracts []reconcile.ContractFeature, releases []reconcile.ReleaseEvent, report reconcile.RiskReport) string {
	var lines []string

	if len(contracts) > 0 {
		lines = append(lines, "CUSTOMER CONTRACT COMMITMENTS:")
		for _, row := range contracts {
			lines = append(lines, fmt.Sprintf(
				"- Feature %s (%s) is committed in the contract with %s priority.",
				row.FeatureID, row.FeatureName, row.Priority,
			))
		}
	}

	if len(releases) > 0 {
		lines = append(lines, "", "PRODUCT RELEASE INFORMATION:")
		for _, row := range releases {
			lines = append(lines, fmt.Sprintf(
				"- Feature %s (%s) has a release status of '%s'.",
				row.FeatureID, row.FeatureName, row.Status,
			))
		}
	}

	if len(report.Table) > 0 {
		lines = append(lines, "", "CURRENT DELIVERY STATUS AND RISK ASSESSMENT:")
		for _, row := range report.Table {
			switch row.Status {
			case reconcile.StatusReleased:
				lines = append(lines, fmt.Sprintf(
					"- Feature %s (%s) HAS BEEN DELIVERED and is currently available to the customer.",
					row.FeatureID, row.FeatureName,
				))
			case reconcile.StatusPlanned:
				lines = append(lines, fmt.Sprintf(
					"- Feature %s (%s) is NOT YET DELIVERED but is planned for a future release. Priority: %s. Risk Level: %s.",
					row.FeatureID, row.FeatureName, row.Priority, row.RiskLevel,
				))
			default: // Missing
				lines = append(lines, fmt.Sprintf(
					"- Feature %s (%s) has NOT BEEN DELIVERED yet. It is a %s-priority commitment. Risk Level: %s. %s",
					row.FeatureID, row.FeatureName, row.Priority, row.RiskLevel, row.RiskReason,
				))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// ExecutiveSummary renders the fixed account-health summary shown on
// the dashboard. It is fully deterministic; no LLM involved.
func ExecutiveSummary(customer string, contracts []reconcile.ContractFeature, releases []reconcile.ReleaseEvent, report reconcile.RiskReport) string {
	deliveredPct := 0
	highRisk := 0
	mediumRisk := 0

	if len(contracts) > 0 && len(releases) > 0 {
		total := len(report.Table)
		released := 0
		planned := 0
		for _, row := range report.Table {
			switch row.Status {
			case reconcile.StatusReleased:
				released++
			case reconcile.StatusPlanned:
				planned++
			}
		}
		if total > 0 {
			deliveredPct = (released + planned) * 100 / total
		}
		highRisk = report.Count(reconcile.RiskHigh)
		mediumRisk = report.Count(reconcile.RiskMedium)
	}

	summary := fmt.Sprintf(`**This quarter:**
• **%d%%** of committed features delivered or in progress

**Risk Status:**
• High risk: **%d**
• Medium risk: **%d**

**Account Outlook:**
• Well positioned for renewal
• Upsell opportunity identified

**Recommended Sales Actions:**
1. Reinforce delivered value
2. Position roadmap for upsell
3. Maintain proactive risk communication`, deliveredPct, highRisk, mediumRisk)

	return summary
}
