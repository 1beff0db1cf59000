package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"salespilot/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupTestConfig(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()

	dir := t.TempDir()
	cfg = config.DefaultConfig()
	cfg.Storage.DataDir = dir
	cfg.Storage.DatabasePath = filepath.Join(dir, "sales.db")
	cfg.Logging.Dir = filepath.Join(dir, "logs")
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

const testContractCSV = `customer_name,feature_id,feature_name,description,priority
Acme,F1,Fraud Detection,Real-time scoring,High
`

const testReleaseCSV = `customer_name,feature_id,feature_name,status
Acme,F1,Fraud Detection,Planned
`

func TestIngestAndDashboard(t *testing.T) {
	setupTestConfig(t)

	if err := runIngestFile(writeCSV(t, "c.csv", testContractCSV), "contract"); err != nil {
		t.Fatalf("ingest contract failed: %v", err)
	}
	if err := runIngestFile(writeCSV(t, "r.csv", testReleaseCSV), "release"); err != nil {
		t.Fatalf("ingest release failed: %v", err)
	}

	cmd := &cobra.Command{}
	riskFilter = ""
	showSummary = true
	defer func() { showSummary = false }()

	if err := runDashboard(cmd, []string{"Acme"}); err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
}

func TestDashboardRejectsBadRiskFilter(t *testing.T) {
	setupTestConfig(t)

	if err := runIngestFile(writeCSV(t, "c.csv", testContractCSV), "contract"); err != nil {
		t.Fatalf("ingest contract failed: %v", err)
	}

	riskFilter = "CRITICAL"
	defer func() { riskFilter = "" }()

	err := runDashboard(&cobra.Command{}, []string{"Acme"})
	if err == nil || !strings.Contains(err.Error(), "unknown risk level") {
		t.Fatalf("expected risk level error, got %v", err)
	}
}

func TestDashboardUnknownCustomer(t *testing.T) {
	setupTestConfig(t)

	// No data yet: the command reports instead of failing.
	if err := runDashboard(&cobra.Command{}, []string{"Nobody"}); err != nil {
		t.Fatalf("dashboard on empty data failed: %v", err)
	}
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	if got := truncate("short", 28); got != "short" {
		t.Errorf("short string changed: %q", got)
	}

	long := strings.Repeat("ü", 40)
	got := truncate(long, 28)
	if !utf8.ValidString(got) {
		t.Errorf("truncated string is not valid UTF-8: %q", got)
	}
	if want := strings.Repeat("ü", 25) + "..."; got != want {
		t.Errorf("truncate = %q, want %q", got, want)
	}

	if got := truncate(strings.Repeat("x", 28), 28); got != strings.Repeat("x", 28) {
		t.Errorf("exact-length string changed: %q", got)
	}
}

func TestDeckFallsBackWithoutLLM(t *testing.T) {
	setupTestConfig(t)
	cfg.LLM.APIKey = ""
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	if err := runIngestFile(writeCSV(t, "c.csv", testContractCSV), "contract"); err != nil {
		t.Fatalf("ingest contract failed: %v", err)
	}

	if err := runDeck(&cobra.Command{}, []string{"Acme"}); err != nil {
		t.Fatalf("deck failed: %v", err)
	}

	entries, err := os.ReadDir(cfg.Storage.DataDir)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "Pitch_Deck") {
			found = true
		}
	}
	if !found {
		t.Error("no deck artifact written")
	}
}
