package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkrasnov/docureel/internal/llm"
	"github.com/dkrasnov/docureel/internal/model"
	"github.com/dkrasnov/docureel/internal/packaging"
	"github.com/dkrasnov/docureel/internal/pipeline"
	"github.com/dkrasnov/docureel/internal/research"
	"github.com/dkrasnov/docureel/internal/store"
)

var (
	researchTimeout time.Duration
	allowUnlisted   bool
	noCache         bool
	noSave          bool
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Research a topic and build its evidence bundle",
	Long: `Research plans angled search queries for a topic, collects pages from
credible sources, extracts atomic factual claims and merges them into a
deduplicated evidence bundle.

Example:
  docureel research "history of nuclear fusion"
  docureel research "semiconductor supply chain" --allow-unlisted`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().DurationVar(&researchTimeout, "timeout", 30*time.Minute, "overall research timeout")
	researchCmd.Flags().BoolVar(&allowUnlisted, "allow-unlisted", false, "tag unclassified sources as trusted instead of dropping them")
	researchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable page cache (force fresh fetches)")
	researchCmd.Flags().BoolVar(&noSave, "no-save", false, "skip the run database, only write files")
}

func runResearch(cmd *cobra.Command, args []string) error {
	topic := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), researchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if allowUnlisted {
		cfg.Research.AllowUnlisted = true
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	logger := newLogger(cfg)

	p, err := pipeline.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	bundle, err := p.Research(ctx, topic)
	if err != nil {
		return describeResearchFailure(err)
	}

	dir := filepath.Join(cfg.Output.Dir, packaging.TopicSlug(topic))
	if err := packaging.WritePackage(dir, bundle, nil, nil); err != nil {
		return err
	}
	fmt.Printf("Collected %d evidence items (%d claims rejected)\n", len(bundle.Items), bundle.RejectedClaimsCount)
	fmt.Printf("Evidence written to %s\n", filepath.Join(dir, "evidence.json"))

	if !noSave {
		id, err := saveRun(ctx, cfg, bundle)
		if err != nil {
			return err
		}
		fmt.Printf("Run saved as %s\n", id)
	}
	return nil
}

// describeResearchFailure maps the two hard research failures to
// actionable messages.
func describeResearchFailure(err error) error {
	switch {
	case errors.Is(err, llm.ErrSaturated):
		return fmt.Errorf("model API saturated after retries, try again later: %w", err)
	case errors.Is(err, research.ErrNoEvidence):
		return fmt.Errorf("no evidence found, try a broader topic: %w", err)
	default:
		return err
	}
}

// openRunStore opens the run database at the configured path.
func openRunStore(cfg *model.Config) (*store.Store, error) {
	path := cfg.Store.Path
	if path == "" {
		var err error
		path, err = store.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(path)
}

func saveRun(ctx context.Context, cfg *model.Config, bundle *model.EvidenceBundle) (string, error) {
	s, err := openRunStore(cfg)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := s.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: closing run database: %v\n", err)
		}
	}()
	return s.SaveBundle(ctx, bundle)
}
