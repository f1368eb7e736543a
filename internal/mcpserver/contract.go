package mcpserver

import (
	"fmt"
	"strings"

	"github.com/starford/mdxmend/internal/rules"
)

const contractPreface = `# mdxmend Repair Contract

mdxmend repairs two defect classes in the documents of one flat directory.

## Front-matter titles

A ` + "`title:`" + ` value broken across several physical lines is joined back onto one
line. Each continuation line is trimmed and appended with a single space.
Joining stops at the first blank line, the first ` + "`key: \"value\"`" + ` field line, or
the closing ` + "`---`" + ` fence. The fence stop is deliberate: a title never absorbs the
closing delimiter or the body after it. A title followed directly by a field line, or one
that absorbs nothing, is left byte for byte as is, including its indentation.

## Inline markup
`

// RulesContract describes every defect shape, generated from the rule
// table so the text never drifts from what the passes do.
func RulesContract() string {
	var b strings.Builder
	b.WriteString(contractPreface)
	b.WriteString("\nShapes are checked in this order; rewrites apply to the previous result.\n\n")
	for i, r := range rules.All() {
		action := "rewritten"
		if !r.Rewrites() {
			action = "reported only, never rewritten"
		}
		fmt.Fprintf(&b, "%d. **%s** (`%s`, %s)\n", i+1, r.Description, r.Kind, action)
		fmt.Fprintf(&b, "   - pattern: `%s`\n", r.Pattern.String())
		if r.Rewrites() {
			fmt.Fprintf(&b, "   - replacement: `%s`\n", r.Replacement)
		}
	}
	b.WriteString("\nContent that matches no shape passes through untouched.\n")
	return b.String()
}
