package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/mdxmend/internal/apperr"
)

// DefaultExtension is the document extension used when none is configured.
const DefaultExtension = ".mdx"

// FS implements Provider backed by a single local directory. Subdirectories
// are not descended into.
type FS struct {
	root string // absolute path to the document directory
	ext  string
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root, ext string) (*FS, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, ext: ext}, nil
}

// Root returns the absolute directory path.
func (f *FS) Root() string { return f.root }

// Extension returns the document extension, including the leading dot.
func (f *FS) Extension() string { return f.ext }

// IsDocument reports whether name ends with the document extension.
func (f *FS) IsDocument(name string) bool {
	return strings.HasSuffix(name, f.ext)
}

// docPath resolves a document name against the root. Anything that is not a
// bare file name carrying the extension is rejected, so nothing outside the
// document set can be opened for writing.
func (f *FS) docPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("storage: invalid document name %q", name)
	}
	if !f.IsDocument(name) {
		return "", fmt.Errorf("storage: %s: %w", name, apperr.ErrNotDocument)
	}
	return filepath.Join(f.root, name), nil
}

// List returns the names of all regular files carrying the extension, in the
// order the directory enumeration yields them.
func (f *FS) List() ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !f.IsDocument(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// Read returns the raw bytes of a document.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.docPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename. The original
// file mode is carried over when the document already exists. When the
// document is a symlink, the link target is replaced and the link itself is
// kept. The temp file lives next to the final file, so its directory must
// be writable, not just the file.
func (f *FS) Write(name string, content []byte) error {
	abs, err := f.docPath(name)
	if err != nil {
		return err
	}
	if info, lerr := os.Lstat(abs); lerr == nil && info.Mode()&os.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return fmt.Errorf("storage: resolve %s: %w", name, err)
		}
		abs = target
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(abs); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), ".mdxmend-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
