// Package frontmatter reads the front-matter block of a document so repaired
// titles can be recorded alongside run outcomes.
package frontmatter

import (
	"bytes"
	"strings"

	"github.com/adrg/frontmatter"
)

// Meta holds the front-matter fields mdxmend cares about.
type Meta struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

// Result is the outcome of parsing one document.
type Result struct {
	Meta  Meta
	Body  string
	Valid bool // false when a front-matter block was present but did not parse
}

// Parse splits data into front matter and body. A document without front
// matter yields an empty Meta and the whole content as body. Front matter
// that fails to parse is reported through Valid rather than as an error.
func Parse(data []byte) Result {
	var meta Meta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return Result{Body: string(data)}
	}
	return Result{Meta: meta, Body: string(body), Valid: true}
}

// Title returns the front-matter title if present, otherwise the first H1
// heading of the body, otherwise the empty string.
func Title(data []byte) string {
	res := Parse(data)
	if t := strings.TrimSpace(res.Meta.Title); t != "" {
		return t
	}
	for _, line := range strings.Split(res.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
