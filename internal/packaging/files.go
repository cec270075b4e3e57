package packaging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dkrasnov/docureel/internal/model"
)

// WritePackage lays the run's artifacts out in dir: the evidence
// bundle, the script, the metadata and a ready-to-paste description.
// Nil artifacts are skipped so a research-only run still packages.
func WritePackage(dir string, bundle *model.EvidenceBundle, script *model.FullScript, meta *model.VideoMetadata) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if bundle != nil {
		if err := writeJSON(filepath.Join(dir, "evidence.json"), bundle); err != nil {
			return err
		}
	}
	if script != nil {
		if err := writeJSON(filepath.Join(dir, "script.json"), script); err != nil {
			return err
		}
	}
	if meta != nil {
		if err := writeJSON(filepath.Join(dir, "metadata.json"), meta); err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, "description.txt"), []byte(meta.Description), 0o644); err != nil {
			return fmt.Errorf("write description.txt: %w", err)
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// TopicSlug converts a topic into a filesystem-friendly directory name.
func TopicSlug(topic string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(topic)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
