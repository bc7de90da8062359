// Package samples embeds example scenario files.
package samples

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tessro/chimera/internal/scenario"
)

//go:embed files/*.yaml
var samplesFS embed.FS

// ErrUnknownSample is returned when no embedded scenario has the given name.
var ErrUnknownSample = errors.New("unknown sample")

const ext = ".yaml"

// Names returns the sample names in sorted order.
func Names() []string {
	entries, err := fs.ReadDir(samplesFS, "files")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ext) {
			names = append(names, strings.TrimSuffix(e.Name(), ext))
		}
	}
	sort.Strings(names)
	return names
}

// Read returns the raw YAML of a sample.
func Read(name string) ([]byte, error) {
	data, err := samplesFS.ReadFile(path.Join("files", name+ext))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSample, name)
	}
	return data, nil
}

// Load parses a sample into a scenario.
func Load(name string) (*scenario.Scenario, error) {
	data, err := Read(name)
	if err != nil {
		return nil, err
	}
	sc, err := scenario.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", name, err)
	}
	return sc, nil
}

// Install writes every sample into dir, replacing files with the same name.
func Install(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create samples dir: %w", err)
	}

	var written []string
	for _, name := range Names() {
		content, err := Read(name)
		if err != nil {
			return written, err
		}
		destPath := filepath.Join(dir, name+ext)
		if err := os.WriteFile(destPath, content, 0644); err != nil {
			return written, fmt.Errorf("write file %s: %w", destPath, err)
		}
		written = append(written, destPath)
	}
	return written, nil
}
