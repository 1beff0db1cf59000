package main

import (
	"context"
	"fmt"

	"salespilot/internal/deck"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var deckOutputDir string

var deckCmd = &cobra.Command{
	Use:   "deck [customer]",
	Short: "Generate a customer pitch deck",
	Long: `Generates a 7-slide pitch deck for a customer from their contract,
release, and risk data. Slide copy comes from the configured LLM; when
the model is unavailable a fixed fallback deck is written instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeck,
}

func init() {
	deckCmd.Flags().StringVarP(&deckOutputDir, "output", "o", "", "Output directory (default: data dir)")
}

func runDeck(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("no contract data for %s", customer)
	}

	// Deck generation degrades to fallback content without a client.
	client, err := newLLMClient()
	if err != nil {
		fmt.Println(mutedStyle.Render("No LLM configured; writing the standard deck."))
		client = nil
	}

	gen := deck.NewGenerator(client, a.retriever)
	stats := deck.BuildStats(customer, contracts, releases)
	content := gen.GenerateContent(context.Background(), stats, report)

	outDir := deckOutputDir
	if outDir == "" {
		outDir = cfg.Storage.DataDir
	}
	renderer := deck.NewMarkdownRenderer(outDir)
	path, err := renderer.Render(content, customer)
	if err != nil {
		return err
	}
	if err := a.store.RecordDeck(uuid.NewString(), customer, path); err != nil {
		return err
	}

	fmt.Printf("Deck written to %s\n", path)
	return nil
}
