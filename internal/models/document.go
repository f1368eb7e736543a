// Package models defines the domain types for mdxmend.
package models

import "time"

// Pass names used in outcomes and the run ledger.
const (
	PassTitles = "titles"
	PassSyntax = "syntax"
	PassSingle = "document"
)

// Action describes what a pass did to a single document.
type Action string

const (
	ActionJoined    Action = "joined"
	ActionFixed     Action = "fixed"
	ActionRewritten Action = "rewritten"
	ActionUnchanged Action = "unchanged"
	ActionFailed    Action = "failed"
)

// Finding is a single defect reported by the validator. Message is the
// human-readable rendering; the other fields carry the same data for
// JSON consumers.
type Finding struct {
	Document string `json:"document"`
	Kind     string `json:"kind"`
	Line     int    `json:"line,omitempty"`
	Context  string `json:"context,omitempty"`
	Message  string `json:"message"`
}

// Outcome records the result of one pass over one document.
type Outcome struct {
	Pass           string `json:"pass"`
	Document       string `json:"document"`
	Action         Action `json:"action"`
	ChecksumBefore string `json:"checksum_before,omitempty"`
	ChecksumAfter  string `json:"checksum_after,omitempty"`
	Title          string `json:"title,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Changed reports whether the pass altered the document contents.
func (o Outcome) Changed() bool {
	return o.Action == ActionJoined || o.Action == ActionFixed
}

// Run is one repair invocation over a directory.
type Run struct {
	ID         int64     `json:"id"`
	Dir        string    `json:"dir"`
	DryRun     bool      `json:"dry_run"`
	Findings   int       `json:"findings"`
	Changed    int       `json:"changed"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes,omitempty"`
}

// Tally recomputes the Changed and Failed counters from Outcomes.
func (r *Run) Tally() {
	r.Changed, r.Failed = 0, 0
	for _, o := range r.Outcomes {
		switch {
		case o.Changed():
			r.Changed++
		case o.Action == ActionFailed:
			r.Failed++
		}
	}
}
