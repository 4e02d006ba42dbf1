package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

func dirOf(path string) string {
	dir := filepath.Dir(path)
	if dir == "" {
		return "."
	}
	return dir
}

// WriteFiles stores the generated files under dir and returns their paths.
func WriteFiles(dir string, res Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	var written []string
	for _, f := range []struct {
		name string
		data []byte
	}{
		{res.ModuleFile, res.Module},
		{res.DeclarationsFile, res.Declarations},
	} {
		if f.name == "" {
			continue
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
