package store

import (
	"testing"

	"salespilot/internal/reconcile"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := newTestStore(t)

	if s.DB() == nil {
		t.Fatal("DB returned nil")
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}

	requiredTables := []string{"customers", "contracts", "releases", "users", "uploads", "chat_sessions", "vectors", "decks"}
	for _, table := range requiredTables {
		if _, ok := stats[table]; !ok {
			t.Errorf("Stats missing table: %s", table)
		}
	}
}

func TestContractRoundTrip(t *testing.T) {
	s := newTestStore(t)

	row := reconcile.ContractFeature{
		CustomerName: "Acme",
		FeatureID:    "F1",
		FeatureName:  "Fraud Detection",
		Description:  "Real-time fraud scoring",
		Priority:     "High",
	}
	if err := s.StoreContract(row); err != nil {
		t.Fatalf("StoreContract: %v", err)
	}

	loaded, err := s.LoadContracts("Acme")
	if err != nil {
		t.Fatalf("LoadContracts: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 contract row, got %d", len(loaded))
	}
	if loaded[0] != row {
		t.Errorf("round trip mismatch: got %+v want %+v", loaded[0], row)
	}

	customers, err := s.ListCustomers()
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(customers) != 1 || customers[0] != "Acme" {
		t.Errorf("expected [Acme], got %v", customers)
	}
}

func TestStoreContractRequiresCustomer(t *testing.T) {
	s := newTestStore(t)

	if err := s.StoreContract(reconcile.ContractFeature{FeatureID: "F1"}); err == nil {
		t.Error("expected error for missing customer_name")
	}
}

func TestReplaceContractSupersedes(t *testing.T) {
	s := newTestStore(t)

	first := []reconcile.ContractFeature{
		{FeatureID: "F1", Priority: "High"},
		{FeatureID: "F2"},
	}
	if err := s.ReplaceContract("Acme", first); err != nil {
		t.Fatalf("ReplaceContract: %v", err)
	}

	second := []reconcile.ContractFeature{{FeatureID: "F9"}}
	if err := s.ReplaceContract("Acme", second); err != nil {
		t.Fatalf("ReplaceContract (second): %v", err)
	}

	loaded, err := s.LoadContracts("Acme")
	if err != nil {
		t.Fatalf("LoadContracts: %v", err)
	}
	if len(loaded) != 1 || loaded[0].FeatureID != "F9" {
		t.Errorf("contract not replaced: %+v", loaded)
	}
}

func TestReleaseHistoryAccumulates(t *testing.T) {
	s := newTestStore(t)

	// Same feature, contradictory statuses, duplicated on purpose.
	for _, status := range []string{"Planned", "Planned", "Released"} {
		err := s.StoreRelease(reconcile.ReleaseEvent{
			CustomerName: "Acme", FeatureID: "F1", Status: status,
		})
		if err != nil {
			t.Fatalf("StoreRelease: %v", err)
		}
	}

	loaded, err := s.LoadReleases("Acme")
	if err != nil {
		t.Fatalf("LoadReleases: %v", err)
	}
	if len(loaded) != 3 {
		t.Fatalf("expected 3 release rows, got %d", len(loaded))
	}
	if loaded[0].Status != "Planned" || loaded[2].Status != "Released" {
		t.Errorf("insertion order not preserved: %+v", loaded)
	}
}

func TestStoreReleasesBatch(t *testing.T) {
	s := newTestStore(t)

	batch := []reconcile.ReleaseEvent{
		{FeatureID: "F1", Status: "Released"},
		{FeatureID: "F2", Status: "Planned"},
	}
	if err := s.StoreReleases("Acme", batch); err != nil {
		t.Fatalf("StoreReleases: %v", err)
	}

	loaded, err := s.LoadReleases("Acme")
	if err != nil {
		t.Fatalf("LoadReleases: %v", err)
	}
	if len(loaded) != 2 {
		t.Errorf("expected 2 rows, got %d", len(loaded))
	}
}

func TestLoadUnknownCustomerIsEmpty(t *testing.T) {
	s := newTestStore(t)

	contracts, err := s.LoadContracts("Nobody")
	if err != nil {
		t.Fatalf("LoadContracts: %v", err)
	}
	if len(contracts) != 0 {
		t.Errorf("expected empty contracts, got %v", contracts)
	}

	releases, err := s.LoadReleases("Nobody")
	if err != nil {
		t.Fatalf("LoadReleases: %v", err)
	}
	if len(releases) != 0 {
		t.Errorf("expected empty releases, got %v", releases)
	}
}

func TestResetCustomer(t *testing.T) {
	s := newTestStore(t)

	if err := s.StoreContract(reconcile.ContractFeature{CustomerName: "Acme", FeatureID: "F1"}); err != nil {
		t.Fatalf("StoreContract: %v", err)
	}
	if err := s.StoreRelease(reconcile.ReleaseEvent{CustomerName: "Acme", FeatureID: "F1", Status: "Planned"}); err != nil {
		t.Fatalf("StoreRelease: %v", err)
	}
	if err := s.UpsertVector(VectorEntry{ID: "v1", Customer: "Acme", Content: "chunk"}); err != nil {
		t.Fatalf("UpsertVector: %v", err)
	}
	if err := s.CreateChatSession("cs1", "Acme", "intro call"); err != nil {
		t.Fatalf("CreateChatSession: %v", err)
	}
	if err := s.AppendChatMessage("cs1", "user", "hello"); err != nil {
		t.Fatalf("AppendChatMessage: %v", err)
	}

	if err := s.ResetCustomer("Acme"); err != nil {
		t.Fatalf("ResetCustomer: %v", err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	for _, table := range []string{"customers", "contracts", "releases", "vectors", "chat_sessions", "chat_messages"} {
		if stats[table] != 0 {
			t.Errorf("table %s not emptied: %d rows", table, stats[table])
		}
	}
}

func TestUploadDedupe(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.HasUpload("abc123")
	if err != nil {
		t.Fatalf("HasUpload: %v", err)
	}
	if ok {
		t.Error("unexpected upload hit")
	}

	rec := UploadRecord{FileHash: "abc123", FileName: "contract.csv", Kind: "contract", CustomerName: "Acme", RowCount: 4}
	if err := s.RecordUpload(rec); err != nil {
		t.Fatalf("RecordUpload: %v", err)
	}

	ok, err = s.HasUpload("abc123")
	if err != nil {
		t.Fatalf("HasUpload: %v", err)
	}
	if !ok {
		t.Error("upload not found after RecordUpload")
	}

	uploads, err := s.ListUploads("Acme")
	if err != nil {
		t.Fatalf("ListUploads: %v", err)
	}
	if len(uploads) != 1 || uploads[0].RowCount != 4 {
		t.Errorf("unexpected uploads: %+v", uploads)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)

	if err := s.CreateUser("sam", "hash1"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser("sam", "hash2"); err == nil {
		t.Error("expected duplicate username error")
	}

	hash, err := s.LookupUserHash("sam")
	if err != nil {
		t.Fatalf("LookupUserHash: %v", err)
	}
	if hash != "hash1" {
		t.Errorf("expected hash1, got %s", hash)
	}

	hash, err = s.LookupUserHash("nobody")
	if err != nil {
		t.Fatalf("LookupUserHash (missing): %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash for missing user, got %s", hash)
	}
}

func TestChatSessions(t *testing.T) {
	s := newTestStore(t)

	if err := s.CreateChatSession("cs1", "Acme", "renewal prep"); err != nil {
		t.Fatalf("CreateChatSession: %v", err)
	}
	if err := s.AppendChatMessage("cs1", "user", "what is at risk?"); err != nil {
		t.Fatalf("AppendChatMessage: %v", err)
	}
	if err := s.AppendChatMessage("cs1", "assistant", "two features"); err != nil {
		t.Fatalf("AppendChatMessage: %v", err)
	}

	msgs, err := s.LoadChatMessages("cs1")
	if err != nil {
		t.Fatalf("LoadChatMessages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != "user" || msgs[1].Role != "assistant" {
		t.Errorf("unexpected messages: %+v", msgs)
	}

	sessions, err := s.ListChatSessions("Acme")
	if err != nil {
		t.Fatalf("ListChatSessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Title != "renewal prep" {
		t.Errorf("unexpected sessions: %+v", sessions)
	}
}

func TestDeckRecords(t *testing.T) {
	s := newTestStore(t)

	path, err := s.LatestDeckPath("Acme")
	if err != nil {
		t.Fatalf("LatestDeckPath: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %s", path)
	}

	if err := s.RecordDeck("d1", "Acme", "/tmp/a.md"); err != nil {
		t.Fatalf("RecordDeck: %v", err)
	}
	if err := s.RecordDeck("d2", "Acme", "/tmp/b.md"); err != nil {
		t.Fatalf("RecordDeck: %v", err)
	}

	path, err = s.LatestDeckPath("Acme")
	if err != nil {
		t.Fatalf("LatestDeckPath: %v", err)
	}
	if path != "/tmp/b.md" {
		t.Errorf("expected /tmp/b.md, got %s", path)
	}
}
