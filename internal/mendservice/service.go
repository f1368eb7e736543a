// Package mendservice coordinates the validator, the repair passes and the
// run ledger for every front end (CLI, HTTP, MCP, watcher).
package mendservice

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/mdxmend/internal/apperr"
	"github.com/starford/mdxmend/internal/checksum"
	"github.com/starford/mdxmend/internal/console"
	"github.com/starford/mdxmend/internal/frontmatter"
	"github.com/starford/mdxmend/internal/ledger"
	"github.com/starford/mdxmend/internal/models"
	"github.com/starford/mdxmend/internal/storage"
	"github.com/starford/mdxmend/internal/syntaxfix"
	"github.com/starford/mdxmend/internal/titlejoin"
	"github.com/starford/mdxmend/internal/validator"
)

// RepairOptions selects which passes a repair runs.
type RepairOptions struct {
	DryRun     bool
	SkipTitles bool
	SkipSyntax bool
	// Findings is the validator count that led to this repair; it is only
	// recorded in the ledger.
	Findings int
}

// Service coordinates storage, passes and the ledger.
//
// Repairs are serialized: the HTTP API, the MCP server and the watcher may
// share one Service, and every pass must see the directory alone.
type Service struct {
	mu     sync.Mutex
	store  storage.Provider
	ledger ledger.Recorder
	out    *console.Printer
	logger *slog.Logger
}

// New creates a service. rec may be nil when the ledger is disabled; out
// may be nil to discard console output.
func New(store storage.Provider, rec ledger.Recorder, out *console.Printer, logger *slog.Logger) *Service {
	if out == nil {
		out = console.Discard()
	}
	return &Service{store: store, ledger: rec, out: out, logger: logger}
}

// Dir returns the directory the service operates on.
func (s *Service) Dir() string {
	return s.store.Root()
}

// IsDocument reports whether name is one of the documents the service manages.
func (s *Service) IsDocument(name string) bool {
	return s.store.IsDocument(name)
}

// Check runs the validator over the whole directory.
func (s *Service) Check(_ context.Context) ([]models.Finding, error) {
	return validator.New(s.store, s.logger).Run()
}

// CheckDocument runs the validator over a single document.
func (s *Service) CheckDocument(_ context.Context, name string) ([]models.Finding, error) {
	if !s.store.IsDocument(name) {
		return nil, fmt.Errorf("mendservice: %s: %w", name, apperr.ErrNotDocument)
	}
	return validator.New(s.store, s.logger).Document(name), nil
}

// Repair runs the title pass and then the syntax pass over the directory
// and records the run in the ledger when one is configured.
func (s *Service) Repair(ctx context.Context, opts RepairOptions) (*models.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := &models.Run{
		Dir:       s.store.Root(),
		DryRun:    opts.DryRun,
		Findings:  opts.Findings,
		StartedAt: time.Now(),
	}

	if !opts.SkipTitles {
		outcomes, err := titlejoin.NewJoiner(s.store, s.out, s.logger, opts.DryRun).Run()
		if err != nil {
			return nil, err
		}
		for i := range outcomes {
			s.annotateTitle(&outcomes[i])
		}
		run.Outcomes = append(run.Outcomes, outcomes...)
	}
	if !opts.SkipSyntax {
		outcomes, err := syntaxfix.NewFixer(s.store, s.out, s.logger, opts.DryRun).Run()
		if err != nil {
			return nil, err
		}
		run.Outcomes = append(run.Outcomes, outcomes...)
	}

	run.FinishedAt = time.Now()
	run.Tally()
	s.record(ctx, run)

	s.logger.Info("repair finished",
		slog.String("dir", run.Dir),
		slog.Bool("dry_run", run.DryRun),
		slog.Int("changed", run.Changed),
		slog.Int("failed", run.Failed))
	return run, nil
}

// annotateTitle fills in the front-matter title the document has after the
// title pass. In a dry run the join is recomputed rather than read back.
func (s *Service) annotateTitle(o *models.Outcome) {
	if o.Action == models.ActionFailed {
		return
	}
	data, err := s.store.Read(o.Document)
	if err != nil {
		return
	}
	o.Title = s.titleOf(o.Document, []byte(titlejoin.JoinContent(string(data))))
}

// titleOf returns the title of repaired content and warns when its front
// matter still does not parse, since the recorded title then comes from the
// first heading or is empty.
func (s *Service) titleOf(name string, data []byte) string {
	if !frontmatter.Parse(data).Valid {
		s.logger.Warn("mendservice: front matter does not parse", slog.String("document", name))
	}
	return frontmatter.Title(data)
}

// RepairDocument applies both passes to one document in memory and writes
// the result only when it differs. Unlike the directory title pass it never
// rewrites an unchanged file, so a watcher reacting to its own writes
// settles after one round.
func (s *Service) RepairDocument(_ context.Context, name string) (models.Outcome, error) {
	o := models.Outcome{Pass: models.PassSingle, Document: name}
	if !s.store.IsDocument(name) {
		return o, fmt.Errorf("mendservice: %s: %w", name, apperr.ErrNotDocument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Read(name)
	if err != nil {
		o.Action, o.Error = models.ActionFailed, err.Error()
		return o, err
	}
	o.ChecksumBefore = checksum.Sum(data)

	fixed := FixText(string(data))
	o.ChecksumAfter = checksum.Sum([]byte(fixed))
	o.Title = s.titleOf(name, []byte(fixed))
	if o.ChecksumAfter == o.ChecksumBefore {
		o.Action = models.ActionUnchanged
		return o, nil
	}

	if err := s.store.Write(name, []byte(fixed)); err != nil {
		o.Action, o.Error = models.ActionFailed, err.Error()
		return o, err
	}
	o.Action = models.ActionFixed
	s.out.FixedSyntax(name)
	return o, nil
}

// FixText applies the title join and then the syntax fixes to content.
func FixText(content string) string {
	return syntaxfix.Fix(titlejoin.JoinContent(content))
}

// Runs lists recent runs from the ledger.
func (s *Service) Runs(ctx context.Context, limit int) ([]models.Run, error) {
	if s.ledger == nil {
		return nil, apperr.ErrLedgerDisabled
	}
	return s.ledger.ListRuns(ctx, limit)
}

// GetRun returns one recorded run with its outcomes.
func (s *Service) GetRun(ctx context.Context, id int64) (*models.Run, error) {
	if s.ledger == nil {
		return nil, apperr.ErrLedgerDisabled
	}
	return s.ledger.GetRun(ctx, id)
}

// DocumentHistory returns recorded outcomes for one document.
func (s *Service) DocumentHistory(ctx context.Context, name string, limit int) ([]models.Outcome, error) {
	if s.ledger == nil {
		return nil, apperr.ErrLedgerDisabled
	}
	return s.ledger.DocumentHistory(ctx, name, limit)
}

func (s *Service) record(ctx context.Context, run *models.Run) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.RecordRun(ctx, run); err != nil {
		s.logger.Warn("ledger: record run failed", slog.String("error", err.Error()))
	}
}
