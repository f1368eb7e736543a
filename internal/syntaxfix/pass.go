package syntaxfix

import (
	"fmt"
	"log/slog"

	"github.com/starford/mdxmend/internal/checksum"
	"github.com/starford/mdxmend/internal/console"
	"github.com/starford/mdxmend/internal/models"
	"github.com/starford/mdxmend/internal/storage"
)

// Fixer runs the syntax pass over every document in a store.
type Fixer struct {
	store  storage.Provider
	out    *console.Printer
	logger *slog.Logger
	dryRun bool
}

// NewFixer creates a syntax pass. With dryRun set nothing is written.
func NewFixer(store storage.Provider, out *console.Printer, logger *slog.Logger, dryRun bool) *Fixer {
	return &Fixer{store: store, out: out, logger: logger, dryRun: dryRun}
}

// Run processes every document once, writing only documents whose content
// changed.
func (f *Fixer) Run() ([]models.Outcome, error) {
	names, err := f.store.List()
	if err != nil {
		return nil, fmt.Errorf("syntaxfix: %w", err)
	}
	outcomes := make([]models.Outcome, 0, len(names))
	for _, name := range names {
		outcomes = append(outcomes, f.process(name))
	}
	return outcomes, nil
}

func (f *Fixer) process(name string) models.Outcome {
	o := models.Outcome{Pass: models.PassSyntax, Document: name}

	data, err := f.store.Read(name)
	if err != nil {
		return f.fail(o, err)
	}
	original := string(data)
	o.ChecksumBefore = checksum.Sum(data)

	for _, w := range Unclosed(original) {
		f.out.Unclosed(name, w.Tag, w.Preview)
		f.logger.Warn("syntaxfix: unclosed tag",
			slog.String("document", name),
			slog.String("tag", w.Tag),
			slog.String("preview", w.Preview))
	}

	fixed := Fix(original)
	if fixed == original {
		o.Action = models.ActionUnchanged
		o.ChecksumAfter = o.ChecksumBefore
		return o
	}
	o.Action = models.ActionFixed
	o.ChecksumAfter = checksum.Sum([]byte(fixed))

	if f.dryRun {
		f.out.WouldChange("fix syntax in", name)
		return o
	}
	if err := f.store.Write(name, []byte(fixed)); err != nil {
		return f.fail(o, err)
	}
	f.out.FixedSyntax(name)
	f.logger.Debug("syntaxfix: fixed", slog.String("document", name))
	return o
}

func (f *Fixer) fail(o models.Outcome, err error) models.Outcome {
	o.Action = models.ActionFailed
	o.Error = err.Error()
	f.out.DocumentError(o.Document, err)
	f.logger.Warn("syntaxfix: document failed", slog.String("document", o.Document), slog.String("error", err.Error()))
	return o
}
