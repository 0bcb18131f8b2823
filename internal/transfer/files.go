package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
)

// ErrNotJSONFile is returned by ReadImport for anything but a .json file.
var ErrNotJSONFile = errors.New("only .json files can be imported")

// WriteExport writes c into dir under FileName and returns the path.
func WriteExport(dir string, c model.Checklist, now time.Time) (string, error) {
	b, err := Export(c)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	name := strings.NewReplacer("/", "-", string(os.PathSeparator), "-").Replace(FileName(c.Title, now))
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, append(b, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return p, nil
}

// ReadImport reads one file chosen for import.
func ReadImport(path string) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return nil, fmt.Errorf("%s: %w", path, ErrNotJSONFile)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return b, nil
}
