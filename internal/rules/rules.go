// Package rules declares the defect shapes mdxmend knows about. Each shape is
// one Rule: a detection pattern, an optional rewrite, and a description. The
// syntax fixer applies the rewriting rules in declared order and the
// validator scans every rule in the same order, so the two never disagree.
//
// Patterns use regexp2 because tag pairs are matched with backreferences
// (`</\1>`) and the unclosed-tag shape needs lookaround, neither of which
// the standard library engine supports.
package rules

import (
	"github.com/dlclark/regexp2"
)

// Kind identifies a defect shape.
type Kind string

const (
	KindTaggedLinkSpacing   Kind = "missing_space_tagged_link"
	KindLinkSpacing         Kind = "missing_space_link"
	KindTagLeadingSpace     Kind = "tag_leading_space"
	KindLinkTagLeadingSpace Kind = "link_tag_leading_space"
	KindUnclosedTag         Kind = "unclosed_tag"
)

// Rule is one defect shape.
type Rule struct {
	Kind        Kind
	Description string
	Pattern     *regexp2.Regexp
	// Replacement uses $1-style group references. Empty means the rule is
	// detection only.
	Replacement string
}

// Rewrites reports whether the rule carries a rewrite.
func (r Rule) Rewrites() bool {
	return r.Replacement != ""
}

// Apply rewrites every occurrence of the pattern in content. Content is
// returned unchanged for detection-only rules.
func (r Rule) Apply(content string) string {
	if !r.Rewrites() {
		return content
	}
	out, err := r.Pattern.Replace(content, r.Replacement, -1, -1)
	if err != nil {
		// Only a match timeout can fail here, and none is configured.
		return content
	}
	return out
}

// Match is one occurrence of a rule's pattern. Index and Length count
// runes, not bytes.
type Match struct {
	Index  int
	Length int
	Text   string
	Groups []string
}

// FindAll returns every non-overlapping occurrence of the pattern.
func (r Rule) FindAll(content string) []Match {
	var out []Match
	m, err := r.Pattern.FindStringMatch(content)
	for err == nil && m != nil {
		groups := m.Groups()
		g := make([]string, 0, len(groups))
		for _, grp := range groups {
			g = append(g, grp.String())
		}
		out = append(out, Match{
			Index:  m.Index,
			Length: m.Length,
			Text:   m.String(),
			Groups: g,
		})
		m, err = r.Pattern.FindNextMatch(m)
	}
	return out
}

// fieldLine matches a front-matter line of the form `key: "value"`.
var fieldLine = regexp2.MustCompile(`^\s*[\w\-_]+\s*:\s*".*?"\s*$`, regexp2.None)

// IsFieldLine reports whether line is shaped like a `key: "value"` field.
// line must not contain a trailing newline.
func IsFieldLine(line string) bool {
	ok, err := fieldLine.MatchString(line)
	return err == nil && ok
}

var table = []Rule{
	{
		Kind:        KindTaggedLinkSpacing,
		Description: "missing space before tagged link",
		Pattern:     regexp2.MustCompile(`(\w+)\[<(\w+)>(.*?)</\2>\]\(([^)]+)\)`, regexp2.None),
		Replacement: `$1 [<$2>$3</$2>]($4)`,
	},
	{
		Kind:        KindLinkSpacing,
		Description: "missing space before link",
		Pattern:     regexp2.MustCompile(`(\w+)\[([^<\]][^\]]*)\]\(([^)]+)\)`, regexp2.None),
		Replacement: `$1 [$2]($3)`,
	},
	{
		Kind:        KindTagLeadingSpace,
		Description: "leading space inside tag",
		Pattern:     regexp2.MustCompile(`<(\w+)> ([^\s<][^<]*?)</\1>`, regexp2.None),
		Replacement: `<$1>$2</$1>`,
	},
	{
		Kind:        KindLinkTagLeadingSpace,
		Description: "leading space inside tagged link text",
		Pattern:     regexp2.MustCompile(`\[<(\w+)> ([^\s<][^<]*?)</\1>\]\(([^)]+)\)`, regexp2.None),
		Replacement: `[<$1>$2</$1>]($3)`,
	},
	{
		// The lookahead requires the rest of the line to end in a closing
		// tag or the line end, and the negative lookahead forbids exactly
		// the same thing, so this pattern never matches. It is kept as
		// written; see TestUnclosedPatternNeverMatches.
		Kind:        KindUnclosedTag,
		Description: "unclosed tag",
		Pattern:     regexp2.MustCompile(`<(\w+)>(?=[^<\n]*(?:</\1>|$))(?![^<\n]*(?:</\1>|$))`, regexp2.Multiline),
	},
}

// All returns the rules in application order.
func All() []Rule {
	out := make([]Rule, len(table))
	copy(out, table)
	return out
}

// Rewriting returns only the rules that carry a rewrite, in order.
func Rewriting() []Rule {
	var out []Rule
	for _, r := range table {
		if r.Rewrites() {
			out = append(out, r)
		}
	}
	return out
}

// Unclosed returns the unclosed-tag detection rule.
func Unclosed() Rule {
	return table[len(table)-1]
}
