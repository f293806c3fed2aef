// Package storage defines the file-system abstraction the document engine
// reads and writes through.
package storage

// Provider is the interface for document file operations. Paths are relative
// to the provider's root directory.
type Provider interface {
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Abs resolves path to an absolute file-system path.
	Abs(path string) (string, error)
}
