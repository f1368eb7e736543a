// Package titlejoin repairs front-matter titles whose value was broken
// across several physical lines.
package titlejoin

import (
	"strings"

	"github.com/starford/mdxmend/internal/rules"
)

const titlePrefix = "title:"

// fence is the front-matter delimiter. A title continuation never swallows it.
const fence = "---"

// Join returns lines with every multi-line title collapsed onto one line.
//
// A line whose trimmed text starts with "title:" begins a continuation
// unless the following line is itself a `key: "value"` field (or there is
// no following line). Continuation fragments are trimmed and appended with
// a single space; consumption stops at the first blank, field-shaped or
// fence line. Consumed lines are not emitted. All other lines are copied
// through untouched.
//
// The fence stop is stricter than a plain blank-or-field rule: a title
// directly followed by the closing "---" keeps the fence and the body on
// their own lines instead of absorbing them. A title line that absorbs
// nothing is copied byte for byte, surrounding whitespace included.
//
// Lines must not carry their "\n" terminator; a trailing "\r" is tolerated
// and re-applied to a joined line.
func Join(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(strings.TrimSpace(line), titlePrefix) {
			out = append(out, line)
			continue
		}
		next := i + 1
		if next >= len(lines) || rules.IsFieldLine(lines[next]) {
			out = append(out, line)
			continue
		}

		end := next
		for end < len(lines) && continues(lines[end]) {
			end++
		}
		if end == next {
			out = append(out, line)
			continue
		}

		var b strings.Builder
		b.WriteString(strings.TrimSpace(line))
		for _, frag := range lines[next:end] {
			b.WriteByte(' ')
			b.WriteString(strings.TrimSpace(frag))
		}
		if strings.HasSuffix(lines[end-1], "\r") {
			b.WriteByte('\r')
		}
		out = append(out, b.String())
		i = end - 1
	}
	return out
}

// continues reports whether line is a title continuation fragment.
func continues(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && trimmed != fence && !rules.IsFieldLine(line)
}

// JoinContent applies Join to a whole document. Line terminators outside
// joined titles, including a missing final newline, are preserved.
func JoinContent(content string) string {
	return strings.Join(Join(strings.Split(content, "\n")), "\n")
}
