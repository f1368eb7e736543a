// Package console renders the human-readable progress lines mdxmend prints
// while it works. Output is styled with lipgloss when the writer is a
// terminal and plain otherwise.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/starford/mdxmend/internal/checksum"
	"github.com/starford/mdxmend/internal/models"
)

type styles struct {
	ok      lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	doc     lipgloss.Style
	dim     lipgloss.Style
	heading lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{ok: plain, warn: plain, err: plain, doc: plain, dim: plain, heading: plain}
	}
	return styles{
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),           // Green
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),           // Yellow
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true), // Red
		doc:     lipgloss.NewStyle().Foreground(lipgloss.Color("14")),           // Cyan
		dim:     lipgloss.NewStyle().Faint(true),
		heading: lipgloss.NewStyle().Bold(true),
	}
}

// Printer writes progress and findings to an io.Writer.
type Printer struct {
	w  io.Writer
	st styles
}

// New creates a Printer. Colours are used only when color is true.
func New(w io.Writer, color bool) *Printer {
	return &Printer{w: w, st: newStyles(color)}
}

// ForWriter creates a Printer that colours its output only when w is a
// terminal.
func ForWriter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return New(w, color)
}

// Discard returns a Printer that drops everything.
func Discard() *Printer {
	return New(io.Discard, false)
}

func (p *Printer) println(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}

// Processed reports a document handled by the title pass.
func (p *Printer) Processed(name string) {
	p.println(p.st.ok.Render("Processed: ") + p.st.doc.Render(name))
}

// FixedSyntax reports a document rewritten by the syntax pass.
func (p *Printer) FixedSyntax(name string) {
	p.println(p.st.ok.Render("Fixed syntax in: ") + p.st.doc.Render(name))
}

// WouldChange reports a change a dry run did not write.
func (p *Printer) WouldChange(pass, name string) {
	p.println(p.st.dim.Render("Would "+pass+": ") + p.st.doc.Render(name))
}

// Unclosed warns about a tag without a closing partner.
func (p *Printer) Unclosed(name, tag, preview string) {
	p.println(p.st.warn.Render(fmt.Sprintf("Warning: unclosed <%s> tag in %s: ", tag, name)) + preview)
}

// DocumentError reports a per-document failure.
func (p *Printer) DocumentError(name string, err error) {
	p.println(p.st.err.Render(fmt.Sprintf("Error processing %s: %v", name, err)))
}

// Declined reports that the operator turned down the repair.
func (p *Printer) Declined() {
	p.println(p.st.dim.Render("No changes made."))
}

// Findings prints every finding followed by a count line.
func (p *Printer) Findings(findings []models.Finding) {
	if len(findings) == 0 {
		p.println(p.st.ok.Render("No issues found."))
		return
	}
	for _, f := range findings {
		p.println(p.st.doc.Render(f.Document) + ": " + f.Message)
	}
	p.println(p.st.heading.Render(fmt.Sprintf("Found %d issue(s) in %d document(s).", len(findings), countDocuments(findings))))
}

// Run prints the summary line for a finished repair run.
func (p *Printer) Run(r models.Run) {
	verb := "Applied"
	if r.DryRun {
		verb = "Would apply"
	}
	line := fmt.Sprintf("%s %d change(s), %d failed.", verb, r.Changed, r.Failed)
	p.println(p.st.heading.Render(line))
}

// Runs prints a ledger listing, newest first.
func (p *Printer) Runs(runs []models.Run) {
	if len(runs) == 0 {
		p.println(p.st.dim.Render("No runs recorded."))
		return
	}
	for _, r := range runs {
		mode := ""
		if r.DryRun {
			mode = " (dry run)"
		}
		p.println(fmt.Sprintf("#%d  %s  %s  findings=%d changed=%d failed=%d%s",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Dir, r.Findings, r.Changed, r.Failed, mode))
	}
}

// Outcomes prints the per-document outcomes of one run.
func (p *Printer) Outcomes(outcomes []models.Outcome) {
	for _, o := range outcomes {
		line := fmt.Sprintf("  %-8s %-10s %s", o.Pass, o.Action, o.Document)
		if o.Changed() {
			line += p.st.dim.Render(fmt.Sprintf("  %s -> %s", checksum.Abbrev(o.ChecksumBefore), checksum.Abbrev(o.ChecksumAfter)))
		}
		if o.Error != "" {
			line += "  " + p.st.err.Render(o.Error)
		}
		p.println(line)
	}
}

// Confirm prints question and reads one line from in. Only "y" or "yes"
// (any case) counts as agreement; anything else, including EOF, declines.
func (p *Printer) Confirm(in io.Reader, question string) bool {
	_, _ = fmt.Fprint(p.w, p.st.heading.Render(question)+" (y/N): ")
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		p.println("")
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func countDocuments(findings []models.Finding) int {
	seen := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		seen[f.Document] = struct{}{}
	}
	return len(seen)
}
