package titlejoin

import (
	"reflect"
	"testing"
)

func TestJoin_TwoLineTitle(t *testing.T) {
	got := Join([]string{`title: "Hello`, `world"`})
	want := []string{`title: "Hello world"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJoin_SingleLineTitleUnchanged(t *testing.T) {
	cases := [][]string{
		{`title: "Hello"`},
		{`title: "Hello"`, `date: "2024-01-01"`},
		{`  title: "Indented"`, `author: "me"`},
	}
	for _, in := range cases {
		got := Join(in)
		if !reflect.DeepEqual(got, in) {
			t.Errorf("Join(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestJoin_StopsAtFieldLine(t *testing.T) {
	in := []string{
		`---`,
		`title: "A long`,
		`   title split`,
		`over three lines"`,
		`date: "2024-05-01"`,
		`---`,
		`body`,
	}
	want := []string{
		`---`,
		`title: "A long title split over three lines"`,
		`date: "2024-05-01"`,
		`---`,
		`body`,
	}
	if got := Join(in); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJoin_StopsAtBlankLine(t *testing.T) {
	in := []string{`title: "Part one`, `part two"`, ``, `text after`}
	want := []string{`title: "Part one part two"`, ``, `text after`}
	if got := Join(in); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJoin_DoesNotSwallowFence(t *testing.T) {
	in := []string{`---`, `title: "Closed"`, `---`, `# Heading`}
	if got := Join(in); !reflect.DeepEqual(got, in) {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestJoinContent_FenceStopsContinuation(t *testing.T) {
	in := "---\ntitle: \"Hello\"\n---\nbody line\n\ntext"
	if got := JoinContent(in); got != in {
		t.Errorf("got %q, want unchanged", got)
	}

	in = "---\ntitle: \"Hello\nworld\"\n---\nbody\n"
	want := "---\ntitle: \"Hello world\"\n---\nbody\n"
	if got := JoinContent(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJoin_UnconsumedTitleKeepsWhitespace(t *testing.T) {
	in := []string{`  title: "x"  `, ``, `body`}
	if got := Join(in); !reflect.DeepEqual(got, in) {
		t.Errorf("got %q, want byte-identical %q", got, in)
	}
}

func TestJoin_BlankLinesPassThrough(t *testing.T) {
	in := []string{``, `intro`, ``, ``, `outro`}
	if got := Join(in); !reflect.DeepEqual(got, in) {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestJoin_CRLF(t *testing.T) {
	got := JoinContent("title: \"Hello\r\nworld\"\r\ndate: \"x\"\r\n")
	want := "title: \"Hello world\"\r\ndate: \"x\"\r\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJoinContent_PreservesTrailingNewline(t *testing.T) {
	cases := map[string]string{
		"title: \"Hello\nworld\"\n": "title: \"Hello world\"\n",
		"title: \"Hello\nworld\"":   "title: \"Hello world\"",
		"no title here\n":           "no title here\n",
		"":                          "",
	}
	for in, want := range cases {
		if got := JoinContent(in); got != want {
			t.Errorf("JoinContent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestJoinContent_Idempotent(t *testing.T) {
	inputs := []string{
		"---\ntitle: \"Hello\nworld\"\ndate: \"2024\"\n---\nbody\n",
		"---\ntitle: Plain\ntags:\n  - a\n  - b\n---\n",
		"title: \"x\n\ny\"\n",
	}
	for _, in := range inputs {
		once := JoinContent(in)
		twice := JoinContent(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\nonce  %q\ntwice %q", in, once, twice)
		}
	}
}
