// Package models discovers GGUF model files on disk. It is the headless
// counterpart of a desktop file picker: clients list a directory and
// feed a chosen path back into the launch configuration.
package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coremaven/llama.cpp-GUI/internal/common/fsutil"
	"github.com/coremaven/llama.cpp-GUI/pkg/types"
)

// ResolveDir expands a leading '~' and makes dir absolute.
func ResolveDir(dir string) (string, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("abs path: %w", err)
	}
	return abs, nil
}

// DefaultDir derives a scan directory from the active configuration:
// the directory holding the configured model, or "" when no model is
// set yet.
func DefaultDir(cfg types.ServerConfig) string {
	if cfg.ModelPath == "" {
		return ""
	}
	return filepath.Dir(cfg.ModelPath)
}

// Scan lists the GGUF files directly under dir, matched by extension,
// case-insensitively. Subdirectories are not descended into. Entries
// come back sorted by name, which ReadDir guarantees.
func Scan(dir string) ([]types.ModelFile, error) {
	abs, err := ResolveDir(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var files []types.ModelFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		mf := types.ModelFile{Name: name, Path: filepath.Join(abs, name)}
		if info, err := e.Info(); err == nil {
			mf.SizeBytes = info.Size()
			mf.ModifiedAt = info.ModTime().UTC().Format(time.RFC3339)
		}
		files = append(files, mf)
	}
	return files, nil
}
