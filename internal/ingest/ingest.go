package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"salespilot/internal/logging"
	"salespilot/internal/rag"
	"salespilot/internal/reconcile"
	"salespilot/internal/store"
	"salespilot/internal/textutil"
)

// ErrDuplicateUpload marks a file whose content was already processed.
var ErrDuplicateUpload = fmt.Errorf("file already uploaded")

// Result summarizes one processed file.
type Result struct {
	FileName  string
	FileHash  string
	Kind      string
	Customers []string
	RowCount  int
}

// Ingestor loads parsed CSV rows into the store and retrieval index.
type Ingestor struct {
	store     *store.Store
	retriever *rag.Engine
	chunkSize int
}

// NewIngestor builds an ingestor. retriever may be nil to skip indexing.
func NewIngestor(s *store.Store, retriever *rag.Engine, chunkSize int) *Ingestor {
	if chunkSize <= 0 {
		chunkSize = textutil.DefaultChunkSize
	}
	return &Ingestor{store: s, retriever: retriever, chunkSize: chunkSize}
}

// FileHash returns the sha256 hex digest of a file's content.
func FileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// IngestContractFile processes one contract CSV. A customer's previous
// contract rows are replaced, not appended: re-uploading a corrected
// contract supersedes the old one. Files already seen by content hash
// return ErrDuplicateUpload.
func (ing *Ingestor) IngestContractFile(ctx context.Context, path string) (*Result, error) {
	hash, err := FileHash(path)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}
	if dup, err := ing.store.HasUpload(hash); err != nil {
		return nil, err
	} else if dup {
		return nil, ErrDuplicateUpload
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ParseContracts(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	customers := customersOf(rows, func(r reconcile.ContractFeature) string { return r.CustomerName })
	for _, customer := range customers {
		var subset []reconcile.ContractFeature
		for _, row := range rows {
			if row.CustomerName == customer {
				subset = append(subset, row)
			}
		}
		if err := ing.store.ReplaceContract(customer, subset); err != nil {
			return nil, fmt.Errorf("storing contract for %s: %w", customer, err)
		}
	}

	for _, row := range rows {
		text := textutil.Normalize(fmt.Sprintf("Contract: %s — %s (Priority: %s)", row.FeatureName, row.Description, row.Priority))
		if err := ing.index(ctx, text, "contract", row.CustomerName, row.FeatureID); err != nil {
			logging.Ingest("indexing contract row %s failed: %v", row.FeatureID, err)
		}
	}

	result := &Result{
		FileName:  filepath.Base(path),
		FileHash:  hash,
		Kind:      "contract",
		Customers: customers,
		RowCount:  len(rows),
	}
	return result, ing.recordUpload(result)
}

// IngestReleaseFile processes one release CSV. Release rows accumulate:
// every upload appends events, preserving the full release history.
func (ing *Ingestor) IngestReleaseFile(ctx context.Context, path string) (*Result, error) {
	hash, err := FileHash(path)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}
	if dup, err := ing.store.HasUpload(hash); err != nil {
		return nil, err
	} else if dup {
		return nil, ErrDuplicateUpload
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ParseReleases(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	customers := customersOf(rows, func(r reconcile.ReleaseEvent) string { return r.CustomerName })
	for _, customer := range customers {
		var subset []reconcile.ReleaseEvent
		for _, row := range rows {
			if row.CustomerName == customer {
				subset = append(subset, row)
			}
		}
		if err := ing.store.StoreReleases(customer, subset); err != nil {
			return nil, fmt.Errorf("storing releases for %s: %w", customer, err)
		}
	}

	for _, row := range rows {
		text := textutil.Normalize(fmt.Sprintf("Release: %s — Status: %s", row.FeatureName, row.Status))
		if err := ing.index(ctx, text, "release", row.CustomerName, row.FeatureID); err != nil {
			logging.Ingest("indexing release row %s failed: %v", row.FeatureID, err)
		}
	}

	result := &Result{
		FileName:  filepath.Base(path),
		FileHash:  hash,
		Kind:      "release",
		Customers: customers,
		RowCount:  len(rows),
	}
	return result, ing.recordUpload(result)
}

func (ing *Ingestor) index(ctx context.Context, text, kind, customer, featureID string) error {
	if ing.retriever == nil || text == "" {
		return nil
	}
	for _, chunk := range textutil.Chunk(text, ing.chunkSize) {
		err := ing.retriever.Ingest(ctx, chunk, map[string]interface{}{
			"type":          kind,
			"customer_name": customer,
			"feature_id":    featureID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (ing *Ingestor) recordUpload(res *Result) error {
	customer := ""
	if len(res.Customers) > 0 {
		customer = res.Customers[0]
	}
	return ing.store.RecordUpload(store.UploadRecord{
		FileHash:     res.FileHash,
		FileName:     res.FileName,
		Kind:         res.Kind,
		CustomerName: customer,
		RowCount:     res.RowCount,
		UploadedAt:   time.Now(),
	})
}
