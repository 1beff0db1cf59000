package main

import (
	"fmt"
	"strings"

	"salespilot/internal/insight"
	"salespilot/internal/reconcile"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	riskFilter  string
	showSummary bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [customer]",
	Short: "Show the reconciled feature table with risk levels",
	Args:  cobra.ExactArgs(1),
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&riskFilter, "risk", "", "Only show one risk level (HIGH, MEDIUM, LOW, NONE)")
	dashboardCmd.Flags().BoolVar(&showSummary, "summary", false, "Include the executive summary")
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	riskStyles = map[reconcile.RiskLevel]lipgloss.Style{
		reconcile.RiskHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		reconcile.RiskMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		reconcile.RiskLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		reconcile.RiskNone:   lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
	}
)

func runDashboard(cmd *cobra.Command, args []string) error {
	customer := args[0]

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	contracts, releases, report, err := a.loadAccount(customer)
	if err != nil {
		return err
	}
	if len(contracts) == 0 {
		fmt.Printf("No contract data for %s. Upload one with: salespilot ingest contract <file.csv>\n", customer)
		return nil
	}

	rows := report.Table
	if riskFilter != "" {
		level := reconcile.RiskLevel(strings.ToUpper(strings.TrimSpace(riskFilter)))
		if _, ok := report.Counts[level]; !ok {
			return fmt.Errorf("unknown risk level %q (use HIGH, MEDIUM, LOW, or NONE)", riskFilter)
		}
		rows = report.FilterByLevel(level)
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%s - %d committed features", customer, len(report.Table))))
	fmt.Println(renderCounts(report))
	fmt.Println()
	fmt.Print(renderTable(rows))

	if showSummary {
		summary := insight.ExecutiveSummary(customer, contracts, releases, report)
		rendered, err := renderMarkdown(summary)
		if err != nil {
			// Plain markdown still reads fine.
			rendered = summary
		}
		fmt.Println(rendered)
	}
	return nil
}

func renderCounts(report reconcile.RiskReport) string {
	parts := make([]string, 0, len(reconcile.Levels))
	for _, level := range reconcile.Levels {
		parts = append(parts, riskStyles[level].Render(fmt.Sprintf("%s %d", level, report.Counts[level])))
	}
	return strings.Join(parts, mutedStyle.Render(" | "))
}

func renderTable(rows []reconcile.ReconciledFeature) string {
	if len(rows) == 0 {
		return mutedStyle.Render("No features at this risk level.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("%-10s %-28s %-10s %-10s %-8s", "ID", "FEATURE", "PRIORITY", "STATUS", "RISK")))
	for _, row := range rows {
		name := truncate(row.FeatureName, 28)
		line := fmt.Sprintf("%-10s %-28s %-10s %-10s %-8s", row.FeatureID, name, row.Priority, row.Status, row.RiskLevel)
		b.WriteString(riskStyles[row.RiskLevel].Render(line))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("           " + row.RiskReason))
		b.WriteString("\n")
	}
	return b.String()
}

// truncate shortens s to at most max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}
