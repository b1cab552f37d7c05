package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
)

// Artifact directory names, one per classification.
const (
	dirAvailable   = "available"
	dirTaken       = "not_available_email"
	dirUnavailable = "ea_not_available"
)

// Recorder writes one JSON document per checked address into a directory
// tree grouped by classification. A nil Recorder, or one with an empty root
// directory, records nothing.
type Recorder struct {
	// dir is the artifact tree root.
	dir string
}

// NewRecorder creates a Recorder rooted at dir. An empty dir disables it.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir}
}

// Enabled reports whether Record will write anything.
func (r *Recorder) Enabled() bool {
	return r != nil && r.dir != ""
}

// Record writes the check result into the directory matching its
// classification. The file name combines the sanitized address with the
// check timestamp, so re-checks of the same address never overwrite each
// other.
func (r *Recorder) Record(res domain.CheckResult) error {
	if !r.Enabled() {
		return nil
	}

	dir := filepath.Join(r.dir, classificationDir(res.Classification))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode check result: %w", err)
	}

	name := fmt.Sprintf("%s_%d.json", SafeName(res.Email), res.CheckedAt.Unix())
	if err := os.WriteFile(filepath.Join(dir, name), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("could not write artifact: %w", err)
	}

	return nil
}

// classificationDir maps a classification to its artifact directory.
// Anything unrecognized lands with the unavailable results rather than
// getting lost.
func classificationDir(c domain.Classification) string {
	switch c {
	case domain.ClassificationAvailable:
		return dirAvailable
	case domain.ClassificationTaken:
		return dirTaken
	default:
		return dirUnavailable
	}
}

// SafeName turns an email address into a filesystem-safe file name stem.
// The address is lowercased, "@" becomes "_at_", "." becomes "_dot_", and
// every other character outside [a-z0-9_] becomes "_".
func SafeName(email string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(email) {
		switch {
		case r == '@':
			b.WriteString("_at_")
		case r == '.':
			b.WriteString("_dot_")
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return b.String()
}
