package trace

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes the canonical encoding of t to path, replacing any
// previous file atomically, and returns the hash of the bytes written.
// Missing parent directories are created.
func WriteFile(path string, t BuildTrace) (string, error) {
	if path == "" {
		return "", fmt.Errorf("trace path is empty")
	}
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("encode trace: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create trace dir: %w", err)
	}
	if err := writeFileAtomic(path, b, 0o644); err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	_ = tmp.Sync() // best-effort durability
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
