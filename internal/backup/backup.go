// Package backup snapshots a vault directory before risky operations.
package backup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Snapshot copies the vault tree into a timestamped sibling directory
// (or under destDir when given) and returns the created path. Symlinks
// and other irregular files are skipped.
func Snapshot(vaultPath, destDir string) (string, error) {
	src, err := filepath.Abs(vaultPath)
	if err != nil {
		return "", fmt.Errorf("backup: resolve vault: %w", err)
	}
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("backup: stat vault: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("backup: vault is not a directory: %s", src)
	}

	if destDir == "" {
		destDir = filepath.Dir(src)
	}
	destDir, err = filepath.Abs(destDir)
	if err != nil {
		return "", fmt.Errorf("backup: resolve destination: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	dest := filepath.Join(destDir, filepath.Base(src)+"-backup-"+stamp)
	if strings.HasPrefix(dest, src+string(os.PathSeparator)) {
		return "", fmt.Errorf("backup: destination %s is inside the vault", dest)
	}
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("backup: destination already exists: %s", dest)
	}

	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return copyFile(p, target)
	})
	if err != nil {
		return "", fmt.Errorf("backup: copy tree: %w", err)
	}
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
