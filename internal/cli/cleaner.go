package cli

import (
	"bufio"
	"os"
	"strings"

	lyterrors "github.com/lytical/app/internal/errors"
)

// Cleaner handles cleaning up generated files
type Cleaner struct{}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean removes the generated module list named by the manifest and
// returns its path, or "" when there was nothing to remove. Files that do
// not start with the generated header are left alone.
func (c *Cleaner) Clean(cfg Config) (string, error) {
	m, err := loadManifest(cfg)
	if err != nil {
		return "", err
	}

	out := m.OutputPath()
	generated, err := isGenerated(out)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", lyterrors.WrapFileSystemError("read", out, err)
	}
	if !generated {
		return "", lyterrors.New(lyterrors.GenerationErrorCode, out+" was not generated by lyt gen").
			WithSuggestion("check [project] output in the manifest")
	}

	if err := os.Remove(out); err != nil {
		return "", lyterrors.WrapFileSystemError("remove", out, err)
	}
	return out, nil
}

func isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return strings.TrimSpace(line) == GeneratedHeader, nil
}
