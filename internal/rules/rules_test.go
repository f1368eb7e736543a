package rules

import "testing"

func TestIsFieldLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{`title: "Hello"`, true},
		{`  date: "2024-01-01"  `, true},
		{`cover-image: "a.png"`, true},
		{`some_key:"x"`, true},
		{`world"`, false},
		{`title: Hello`, false},
		{`tags: ["a", "b"]`, false},
		{``, false},
		{`---`, false},
	}
	for _, c := range cases {
		if got := IsFieldLine(c.line); got != c.want {
			t.Errorf("IsFieldLine(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestAll_DeclaredOrder(t *testing.T) {
	want := []Kind{
		KindTaggedLinkSpacing,
		KindLinkSpacing,
		KindTagLeadingSpace,
		KindLinkTagLeadingSpace,
		KindUnclosedTag,
	}
	got := All()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.Kind != want[i] {
			t.Errorf("rule %d = %s, want %s", i, r.Kind, want[i])
		}
		if r.Description == "" {
			t.Errorf("rule %s has no description", r.Kind)
		}
	}
	if len(Rewriting()) != 4 {
		t.Errorf("rewriting rules = %d, want 4", len(Rewriting()))
	}
	if Unclosed().Rewrites() {
		t.Error("unclosed-tag rule must be detection only")
	}
}

func TestApply_EachRule(t *testing.T) {
	cases := []struct {
		kind Kind
		in   string
		want string
	}{
		{KindTaggedLinkSpacing, "seeMore[<u>click here</u>](http://x)", "seeMore [<u>click here</u>](http://x)"},
		{KindLinkSpacing, "word[text](url)", "word [text](url)"},
		{KindLinkSpacing, "a[b](c) and d[e](f)", "a [b](c) and d [e](f)"},
		{KindLinkSpacing, "see[<u>x</u>](y)", "see[<u>x</u>](y)"},
		{KindTagLeadingSpace, "<u> padded</u>", "<u>padded</u>"},
		{KindTagLeadingSpace, "<u> mismatched</b>", "<u> mismatched</b>"},
		{KindLinkTagLeadingSpace, "[<b> bold</b>](u)", "[<b>bold</b>](u)"},
	}
	for _, c := range cases {
		r := byKind(t, c.kind)
		if got := r.Apply(c.in); got != c.want {
			t.Errorf("%s.Apply(%q) = %q, want %q", c.kind, c.in, got, c.want)
		}
	}
}

func TestApply_UnicodeWordCharacters(t *testing.T) {
	r := byKind(t, KindLinkSpacing)
	got := r.Apply("详见[文档](https://example.com)")
	if got != "详见 [文档](https://example.com)" {
		t.Errorf("got %q", got)
	}
}

func TestFindAll_RuneOffsets(t *testing.T) {
	r := byKind(t, KindLinkSpacing)
	ms := r.FindAll("中文 word[text](url)")
	if len(ms) != 1 {
		t.Fatalf("matches = %d, want 1", len(ms))
	}
	if ms[0].Index != 3 {
		t.Errorf("index = %d, want 3 (runes)", ms[0].Index)
	}
	if ms[0].Text != "word[text](url)" {
		t.Errorf("text = %q", ms[0].Text)
	}
	if ms[0].Groups[1] != "word" {
		t.Errorf("group 1 = %q", ms[0].Groups[1])
	}
}

// The unclosed-tag pattern asserts and negates the same lookahead, so it
// cannot match anything. This pins that behaviour so a change to the
// pattern is a deliberate decision.
func TestUnclosedPatternNeverMatches(t *testing.T) {
	inputs := []string{
		"<u>never closed",
		"<b>open on this line\nclosed later</b>",
		"<i>closed</i>",
		"text <span>dangling",
		"",
	}
	r := Unclosed()
	for _, in := range inputs {
		if ms := r.FindAll(in); len(ms) != 0 {
			t.Errorf("FindAll(%q) = %v, want none", in, ms)
		}
	}
}

func byKind(t *testing.T, k Kind) Rule {
	t.Helper()
	for _, r := range All() {
		if r.Kind == k {
			return r
		}
	}
	t.Fatalf("no rule %s", k)
	return Rule{}
}
