// Package storage defines the document directory abstraction.
package storage

// Provider is the interface for document file operations. Names are bare
// file names inside the root directory; only files carrying the configured
// extension are documents.
type Provider interface {
	// Root returns the absolute directory path.
	Root() string
	// IsDocument reports whether name carries the document extension.
	IsDocument(name string) bool
	// List returns document names in directory-listing order.
	List() ([]string, error)
	// Read returns the raw bytes of the named document.
	Read(name string) ([]byte, error)
	// Write atomically replaces the named document's contents.
	Write(name string, content []byte) error
}
