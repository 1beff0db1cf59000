package main

import (
	"fmt"

	"salespilot/internal/embedding"
	"salespilot/internal/llm"
	"salespilot/internal/rag"
	"salespilot/internal/reconcile"
	"salespilot/internal/store"

	"go.uber.org/zap"
)

// app bundles the collaborators most commands need. The LLM client is
// built separately because read-only commands must work without a key.
type app struct {
	store     *store.Store
	retriever *rag.Engine
}

func openApp() (*app, error) {
	s, err := store.New(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	embedder, err := embedding.NewEngine(cfg.Embedding)
	if err != nil {
		logger.Warn("embedding engine unavailable, falling back to keyword retrieval", zap.Error(err))
		embedder = nil
	}

	return &app{
		store:     s,
		retriever: rag.NewEngine(s, embedder),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("closing store", zap.Error(err))
	}
}

// newLLMClient builds the configured chat client, required by ask,
// chat, and deck.
func newLLMClient() (llm.Client, error) {
	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("LLM client unavailable (set OPENAI_API_KEY or GEMINI_API_KEY): %w", err)
	}
	return client, nil
}

// loadAccount pulls a customer's stored rows and classifies them.
func (a *app) loadAccount(customer string) ([]reconcile.ContractFeature, []reconcile.ReleaseEvent, reconcile.RiskReport, error) {
	contracts, err := a.store.LoadContracts(customer)
	if err != nil {
		return nil, nil, reconcile.RiskReport{}, err
	}
	releases, err := a.store.LoadReleases(customer)
	if err != nil {
		return nil, nil, reconcile.RiskReport{}, err
	}
	report := reconcile.ClassifyAndAggregate(reconcile.Reconcile(contracts, releases))
	return contracts, releases, report, nil
}
