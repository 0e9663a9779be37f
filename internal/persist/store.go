package persist

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store reads and writes encoded snapshots by path. The engine treats
// paths as opaque keys; only the store decides what they address.
type Store interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// FileStore keeps snapshots on the local filesystem. Writes go through
// a temp file and rename, so a crash mid-save leaves the previous
// snapshot intact instead of a torn file.
type FileStore struct{}

func (FileStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (FileStore) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scene dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace scene: %w", err)
	}
	return nil
}
