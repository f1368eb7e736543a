package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/starford/mdxmend/internal/models"
)

func TestPlainProgressLines(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)
	p.Processed("a.mdx")
	p.FixedSyntax("b.mdx")
	p.DocumentError("c.mdx", errors.New("boom"))

	want := "Processed: a.mdx\nFixed syntax in: b.mdx\nError processing c.mdx: boom\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestFindingsSummary(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)
	p.Findings([]models.Finding{
		{Document: "a.mdx", Message: "Line 1: missing space before link"},
		{Document: "a.mdx", Message: "Line 2: missing space before link"},
		{Document: "b.mdx", Message: "Line 1: leading space inside tag"},
	})
	out := buf.String()
	if !strings.Contains(out, "a.mdx: Line 1: missing space before link") {
		t.Errorf("missing finding line: %q", out)
	}
	if !strings.Contains(out, "Found 3 issue(s) in 2 document(s).") {
		t.Errorf("missing summary: %q", out)
	}
}

func TestFindingsEmpty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Findings(nil)
	if !strings.Contains(buf.String(), "No issues found.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{" yes \n", true},
		{"y", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
		{"", false},
	}
	for _, c := range cases {
		p := New(&bytes.Buffer{}, false)
		if got := p.Confirm(strings.NewReader(c.input), "Fix?"); got != c.want {
			t.Errorf("Confirm(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestForWriterNonTTYIsPlain(t *testing.T) {
	var buf bytes.Buffer
	ForWriter(&buf).Processed("x.mdx")
	if buf.String() != "Processed: x.mdx\n" {
		t.Errorf("output = %q", buf.String())
	}
}
