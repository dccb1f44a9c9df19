// Package storage defines the workspace file-system abstraction.
package storage

import "time"

// FileMetadata is a lightweight representation returned by list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for workspace file operations. Artifact
// files are never removed through this interface: deletion is a
// soft-delete marker written into the file itself, so history stays
// intact.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to the
	// workspace root).
	List(dir string) ([]FileMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the
	// workspace root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the workspace
	// root).
	Write(path string, content []byte) error
}
