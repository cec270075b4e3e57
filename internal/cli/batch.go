package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkrasnov/docureel/internal/packaging"
	"github.com/dkrasnov/docureel/internal/pipeline"
	"github.com/dkrasnov/docureel/internal/worker"
)

var (
	batchTimeout time.Duration
	batchWorkers int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <topics-file>",
	Short: "Research multiple topics from a file",
	Long: `Batch reads topics from a file (one per line, #-comments and blank
lines skipped) and researches them concurrently. Each topic's evidence
is written and stored independently; one failed topic never aborts the
rest.

Example:
  docureel batch topics.txt --workers 2`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 4*time.Hour, "overall batch timeout")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent topics (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	workers := cfg.Concurrency.BatchWorkers
	if batchWorkers > 0 {
		workers = batchWorkers
	}

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p.Orchestrator, workers)
	results, err := processor.ProcessFile(ctx, args[0])
	if err != nil {
		return err
	}

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Topic, result.Err)
			continue
		}

		dir := filepath.Join(cfg.Output.Dir, packaging.TopicSlug(result.Topic))
		if err := packaging.WritePackage(dir, result.Bundle, nil, nil); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Topic, err)
			continue
		}
		id, err := saveRun(ctx, cfg, result.Bundle)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", result.Topic, err)
			continue
		}
		fmt.Printf("OK   %s: %d items, run %s\n", result.Topic, len(result.Bundle.Items), id)
	}

	fmt.Printf("\n%d/%d topics succeeded\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d topic(s) failed", failed)
	}
	return nil
}
