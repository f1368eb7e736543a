// Package syntaxfix corrects spacing and nesting defects around markup
// links and inline tags.
package syntaxfix

import (
	"strings"

	"github.com/starford/mdxmend/internal/rules"
)

const previewLen = 40

// Warning is an unclosed tag found by Unclosed.
type Warning struct {
	Tag     string
	Preview string
}

// Fix applies every rewriting rule, in order, to the whole content.
func Fix(content string) string {
	for _, r := range rules.Rewriting() {
		content = r.Apply(content)
	}
	return content
}

// Unclosed reports tag-opened spans that lack a closing tag. It never
// alters content.
func Unclosed(content string) []Warning {
	matches := rules.Unclosed().FindAll(content)
	if len(matches) == 0 {
		return nil
	}
	runes := []rune(content)
	out := make([]Warning, 0, len(matches))
	for _, m := range matches {
		end := min(m.Index+previewLen, len(runes))
		preview := strings.NewReplacer("\r", " ", "\n", " ").Replace(string(runes[m.Index:end]))
		out = append(out, Warning{Tag: m.Groups[1], Preview: preview})
	}
	return out
}
