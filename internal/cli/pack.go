package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkrasnov/docureel/internal/packaging"
	"github.com/dkrasnov/docureel/internal/pipeline"
)

var packageTimeout time.Duration

// packageCmd represents the package command
var packageCmd = &cobra.Command{
	Use:   "package <run-id>",
	Short: "Produce upload-ready metadata for a scripted run",
	Long: `Package takes a run whose script has been generated and produces the
upload metadata: candidate titles, a chaptered description with the
source bibliography, and SEO tags. All artifacts are written to the
run's output directory.

Example:
  docureel package 2f1f0c3a-...`,
	Args: cobra.ExactArgs(1),
	RunE: runPackage,
}

func init() {
	rootCmd.AddCommand(packageCmd)
	packageCmd.Flags().DurationVar(&packageTimeout, "timeout", 5*time.Minute, "packaging timeout")
}

func runPackage(cmd *cobra.Command, args []string) error {
	runID := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), packageTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	s, err := openRunStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	bundle, err := s.LoadBundle(ctx, runID)
	if err != nil {
		return err
	}
	script, err := s.LoadScript(ctx, runID)
	if err != nil {
		return fmt.Errorf("run has no script yet, generate one first: %w", err)
	}

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	meta, err := p.Package(ctx, script)
	if err != nil {
		return err
	}

	dir := filepath.Join(cfg.Output.Dir, packaging.TopicSlug(bundle.Topic))
	if err := packaging.WritePackage(dir, bundle, script, meta); err != nil {
		return err
	}
	fmt.Printf("Package written to %s\n", dir)
	fmt.Printf("Suggested title: %s\n", meta.Titles[0])
	return nil
}
