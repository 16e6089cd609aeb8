// Package storage defines the vault file-system abstraction.
package storage

import (
	"io/fs"
	"time"
)

// FileInfo is the lightweight listing entry for a vault file.
type FileInfo struct {
	Path       string    `json:"path"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Provider is the interface for vault file operations. All paths are
// relative to the vault root.
type Provider interface {
	// List returns metadata for every .md file under dir.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}
