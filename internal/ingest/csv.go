// Package ingest loads contract and release CSV files into storage and
// the retrieval index, with hash-based duplicate detection and an
// optional directory watcher.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"salespilot/internal/reconcile"
)

var contractColumns = []string{"customer_name", "feature_id", "feature_name", "description", "priority"}
var releaseColumns = []string{"customer_name", "feature_id", "feature_name", "status"}

// headerIndex maps required column names to positions, rejecting files
// that lack any of them. Extra columns are ignored.
func headerIndex(header, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ParseContracts reads contract rows from CSV data.
func ParseContracts(r io.Reader) ([]reconcile.ContractFeature, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty contract file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading contract header: %w", err)
	}
	idx, err := headerIndex(header, contractColumns)
	if err != nil {
		return nil, err
	}

	var rows []reconcile.ContractFeature
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading contract row: %w", err)
		}
		row := reconcile.ContractFeature{
			CustomerName: field(record, idx, "customer_name"),
			FeatureID:    field(record, idx, "feature_id"),
			FeatureName:  field(record, idx, "feature_name"),
			Description:  field(record, idx, "description"),
			Priority:     field(record, idx, "priority"),
		}
		if row.CustomerName == "" && row.FeatureID == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ParseReleases reads release rows from CSV data.
func ParseReleases(r io.Reader) ([]reconcile.ReleaseEvent, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty release file")
	}
	if err != nil {
		return nil, fmt.Errorf("reading release header: %w", err)
	}
	idx, err := headerIndex(header, releaseColumns)
	if err != nil {
		return nil, err
	}

	var rows []reconcile.ReleaseEvent
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading release row: %w", err)
		}
		row := reconcile.ReleaseEvent{
			CustomerName: field(record, idx, "customer_name"),
			FeatureID:    field(record, idx, "feature_id"),
			FeatureName:  field(record, idx, "feature_name"),
			Status:       field(record, idx, "status"),
		}
		if row.CustomerName == "" && row.FeatureID == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// customersOf returns the distinct customer names in file order.
func customersOf[T any](rows []T, name func(T) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range rows {
		n := name(row)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
