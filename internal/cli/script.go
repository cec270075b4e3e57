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

var scriptTimeout time.Duration

// scriptCmd represents the script command
var scriptCmd = &cobra.Command{
	Use:   "script <run-id>",
	Short: "Generate a documentary script from a stored research run",
	Long: `Script loads the evidence bundle of a previous research run and
generates a narrated documentary script. Every segment cites the
evidence items it uses, so the narration never outruns the research.

Example:
  docureel script 2f1f0c3a-...`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	scriptCmd.Flags().DurationVar(&scriptTimeout, "timeout", 10*time.Minute, "script generation timeout")
}

func runScript(cmd *cobra.Command, args []string) error {
	runID := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
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

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	script, err := p.Script(ctx, bundle)
	if err != nil {
		return err
	}
	if err := s.SaveScript(ctx, runID, script); err != nil {
		return err
	}

	dir := filepath.Join(cfg.Output.Dir, packaging.TopicSlug(bundle.Topic))
	if err := packaging.WritePackage(dir, nil, script, nil); err != nil {
		return err
	}
	fmt.Printf("Script %q with %d segments written to %s\n",
		script.Title, len(script.Segments), filepath.Join(dir, "script.json"))
	return nil
}
