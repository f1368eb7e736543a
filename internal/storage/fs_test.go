package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/mdxmend/internal/apperr"
)

func tempDocs(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir, ".mdx")
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempDocs(t)
	content := []byte("---\ntitle: \"Hello\"\n---\nWorld\n")
	if err := s.Write("post.mdx", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("post.mdx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWritePreservesMode(t *testing.T) {
	s := tempDocs(t)
	p := filepath.Join(s.Root(), "ro.mdx")
	if err := os.WriteFile(p, []byte("a"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := s.Write("ro.mdx", []byte("b")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestList_FiltersExtensionAndSkipsDirs(t *testing.T) {
	s := tempDocs(t)
	_ = os.WriteFile(filepath.Join(s.Root(), "a.mdx"), []byte("a"), 0o644)
	_ = os.WriteFile(filepath.Join(s.Root(), "b.mdx"), []byte("b"), 0o644)
	_ = os.WriteFile(filepath.Join(s.Root(), "readme.md"), []byte("not mdx"), 0o644)
	_ = os.Mkdir(filepath.Join(s.Root(), "nested.mdx"), 0o755)
	_ = os.MkdirAll(filepath.Join(s.Root(), "sub"), 0o755)
	_ = os.WriteFile(filepath.Join(s.Root(), "sub", "c.mdx"), []byte("c"), 0o644)

	names, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("names = %v, want 2 entries", names)
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["a.mdx"] || !seen["b.mdx"] {
		t.Errorf("names = %v, want a.mdx and b.mdx", names)
	}
}

func TestWriteRejectsNonDocuments(t *testing.T) {
	s := tempDocs(t)
	p := filepath.Join(s.Root(), "notes.txt")
	_ = os.WriteFile(p, []byte("keep"), 0o644)

	err := s.Write("notes.txt", []byte("clobber"))
	if !errors.Is(err, apperr.ErrNotDocument) {
		t.Fatalf("err = %v, want ErrNotDocument", err)
	}
	got, _ := os.ReadFile(p)
	if string(got) != "keep" {
		t.Errorf("non-document modified: %q", got)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempDocs(t)

	cases := []string{
		"../outside.mdx",
		"sub/inner.mdx",
		"/etc/passwd.mdx",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempDocs(t)
	_ = s.Write("atomic.mdx", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("atomic.mdx", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.mdx")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".mdxmend-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_DefaultExtension(t *testing.T) {
	s, err := NewFS(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Extension() != DefaultExtension {
		t.Errorf("ext = %q, want %q", s.Extension(), DefaultExtension)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"), ".mdx")
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "mdxmend-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name(), ".mdx")
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestWriteThroughSymlinkKeepsLink(t *testing.T) {
	s := tempDocs(t)
	shared := t.TempDir()
	target := filepath.Join(shared, "real.mdx")
	if err := os.WriteFile(target, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(s.Root(), "post.mdx")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}

	if err := s.Write("post.mdx", []byte("new")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("symlink was replaced by a regular file")
	}
	got, _ := os.ReadFile(target)
	if string(got) != "new" {
		t.Errorf("target = %q, want new", got)
	}
	entries, _ := os.ReadDir(shared)
	if len(entries) != 1 {
		t.Errorf("temp files left next to the target: %d entries", len(entries))
	}
}

func TestWriteDanglingSymlinkFails(t *testing.T) {
	s := tempDocs(t)
	if err := os.Symlink(filepath.Join(s.Root(), "gone"), filepath.Join(s.Root(), "post.mdx")); err != nil {
		t.Skipf("symlink unsupported: %v", err)
	}
	if err := s.Write("post.mdx", []byte("x")); err == nil {
		t.Error("write through a dangling symlink should fail")
	}
}
