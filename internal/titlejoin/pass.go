package titlejoin

import (
	"fmt"
	"log/slog"

	"github.com/starford/mdxmend/internal/checksum"
	"github.com/starford/mdxmend/internal/console"
	"github.com/starford/mdxmend/internal/models"
	"github.com/starford/mdxmend/internal/storage"
)

// Joiner runs the title pass over every document in a store.
type Joiner struct {
	store  storage.Provider
	out    *console.Printer
	logger *slog.Logger
	dryRun bool
}

// NewJoiner creates a title pass. With dryRun set nothing is written.
func NewJoiner(store storage.Provider, out *console.Printer, logger *slog.Logger, dryRun bool) *Joiner {
	return &Joiner{store: store, out: out, logger: logger, dryRun: dryRun}
}

// Run processes every document once. Each document is rewritten in full
// whether or not a title was joined. A failing document is reported and
// skipped; the returned error covers only listing the directory.
func (j *Joiner) Run() ([]models.Outcome, error) {
	names, err := j.store.List()
	if err != nil {
		return nil, fmt.Errorf("titlejoin: %w", err)
	}
	outcomes := make([]models.Outcome, 0, len(names))
	for _, name := range names {
		outcomes = append(outcomes, j.process(name))
	}
	return outcomes, nil
}

func (j *Joiner) process(name string) models.Outcome {
	o := models.Outcome{Pass: models.PassTitles, Document: name}

	data, err := j.store.Read(name)
	if err != nil {
		return j.fail(o, err)
	}
	o.ChecksumBefore = checksum.Sum(data)

	joined := []byte(JoinContent(string(data)))
	o.ChecksumAfter = checksum.Sum(joined)

	o.Action = models.ActionRewritten
	if o.ChecksumAfter != o.ChecksumBefore {
		o.Action = models.ActionJoined
	}

	if j.dryRun {
		if o.Action == models.ActionJoined {
			j.out.WouldChange("join titles in", name)
		}
		return o
	}

	if err := j.store.Write(name, joined); err != nil {
		return j.fail(o, err)
	}
	j.out.Processed(name)
	j.logger.Debug("titlejoin: processed", slog.String("document", name), slog.String("action", string(o.Action)))
	return o
}

func (j *Joiner) fail(o models.Outcome, err error) models.Outcome {
	o.Action = models.ActionFailed
	o.Error = err.Error()
	j.out.DocumentError(o.Document, err)
	j.logger.Warn("titlejoin: document failed", slog.String("document", o.Document), slog.String("error", err.Error()))
	return o
}
