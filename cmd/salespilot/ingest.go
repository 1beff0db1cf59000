package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"salespilot/internal/ingest"

	"github.com/spf13/cobra"
)

var drainExisting bool

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load contract and release CSV files",
}

var ingestContractCmd = &cobra.Command{
	Use:   "contract [file.csv]",
	Short: "Load a contract CSV (replaces the customer's previous contract)",
	Long: `Loads a contract CSV with columns:
  customer_name, feature_id, feature_name, description, priority

A customer's existing contract rows are replaced. Files whose content
was already uploaded are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngestFile(args[0], "contract")
	},
}

var ingestReleaseCmd = &cobra.Command{
	Use:   "release [file.csv]",
	Short: "Load a release CSV (appends to release history)",
	Long: `Loads a release CSV with columns:
  customer_name, feature_id, feature_name, status`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngestFile(args[0], "release")
	},
}

var ingestWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a drop directory and ingest CSVs as they arrive",
	Long: `Watches <dir>/contracts and <dir>/releases for new CSV files and
ingests them automatically. Defaults to the configured data directory.
Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngestWatch,
}

func init() {
	ingestWatchCmd.Flags().BoolVar(&drainExisting, "drain", false, "Ingest files already present before watching")
	ingestCmd.AddCommand(ingestContractCmd)
	ingestCmd.AddCommand(ingestReleaseCmd)
	ingestCmd.AddCommand(ingestWatchCmd)
}

func runIngestFile(path, kind string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	ing := ingest.NewIngestor(a.store, a.retriever, cfg.Storage.ChunkSize)
	ctx := context.Background()

	var res *ingest.Result
	if kind == "contract" {
		res, err = ing.IngestContractFile(ctx, path)
	} else {
		res, err = ing.IngestReleaseFile(ctx, path)
	}
	if errors.Is(err, ingest.ErrDuplicateUpload) {
		fmt.Printf("Skipped %s: identical content was already uploaded.\n", path)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %s: %d rows for %s.\n", res.FileName, res.RowCount, strings.Join(res.Customers, ", "))
	return nil
}

func runIngestWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	dropDir := cfg.Storage.DataDir
	if len(args) == 1 {
		dropDir = args[0]
	}

	ing := ingest.NewIngestor(a.store, a.retriever, cfg.Storage.ChunkSize)
	watcher, err := ingest.NewWatcher(dropDir, ing)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if drainExisting {
		if err := watcher.DrainExisting(ctx); err != nil {
			return err
		}
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Watching %s/contracts and %s/releases. Ctrl+C to stop.\n", dropDir, dropDir)

	<-sigCh
	watcher.Stop()

	stats := watcher.Stats()
	fmt.Printf("Done: %d ingested, %d duplicates, %d errors.\n", stats.FilesIngested, stats.Duplicates, stats.Errors)
	return nil
}
