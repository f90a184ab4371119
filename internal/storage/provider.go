// Package storage reads resource documents from the catalog directory.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DocExt is the extension of resource documents.
const DocExt = ".md"

// Meta describes one resource document on disk.
type Meta struct {
	Path      string // relative to the catalog root, slash separated
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the read side of the catalog directory.
type Provider interface {
	// List returns metadata for every resource document under dir.
	List(dir string) ([]Meta, error)
	// Read returns the raw bytes of the document at path.
	Read(path string) ([]byte, error)
}

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Writer is a Provider that can also create documents.
type Writer interface {
	Provider
	Write(path string, content []byte) error
}

var _ Writer = (*FS)(nil)
