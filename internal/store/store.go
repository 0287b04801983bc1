// Package store persists the schema registry and per-table row documents as
// JSON files.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorruptData is returned when a persisted document exists but cannot be parsed.
var ErrCorruptData = errors.New("corrupt data")

const (
	// DefaultMetaFile is the schema document name within the root.
	DefaultMetaFile = "db_meta.json"
	// DefaultDataDir is the directory holding row documents within the root.
	DefaultDataDir = "data"
)

// Store reads and writes the documents of one database root.
// It holds no open files or locks between calls.
type Store struct {
	Root     string
	metaPath string // Derived: Root/<metaFile>
	dataDir  string // Derived: Root/<dataDir>
}

// New creates a Store rooted at root. Empty metaFile or dataDir fall back to
// the defaults; absolute values are used as-is.
func New(root, metaFile, dataDir string) *Store {
	if metaFile == "" {
		metaFile = DefaultMetaFile
	}
	if dataDir == "" {
		dataDir = DefaultDataDir
	}
	return &Store{
		Root:     root,
		metaPath: resolve(root, metaFile),
		dataDir:  resolve(root, dataDir),
	}
}

func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// RegistryPath returns the path to the schema document.
func (s *Store) RegistryPath() string {
	return s.metaPath
}

// DataDir returns the directory containing row documents.
func (s *Store) DataDir() string {
	return s.dataDir
}

// RowsPath returns the path to a table's row document.
func (s *Store) RowsPath(name string) string {
	return filepath.Join(s.dataDir, name+".json")
}

// writeFileAtomic writes data to path via a temp file in the same directory
// and a rename, so readers never observe a half-written document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on error
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}
