package ledger

import (
	"context"

	"github.com/starford/mdxmend/internal/models"
)

// Recorder defines the ledger operations the rest of the program uses.
// Consumers depend on this interface rather than the concrete *DB.
type Recorder interface {
	RecordRun(ctx context.Context, run *models.Run) error
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
	GetRun(ctx context.Context, id int64) (*models.Run, error)
	DocumentHistory(ctx context.Context, document string, limit int) ([]models.Outcome, error)
	Close() error
}

// Verify *DB satisfies Recorder at compile time.
var _ Recorder = (*DB)(nil)
