package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/mdxmend/internal/apperr"
	"github.com/starford/mdxmend/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(dir string) *models.Run {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := &models.Run{
		Dir:        dir,
		Findings:   3,
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Outcomes: []models.Outcome{
			{Pass: models.PassTitles, Document: "a.mdx", Action: models.ActionJoined, ChecksumBefore: "x", ChecksumAfter: "y", Title: "Hello world"},
			{Pass: models.PassTitles, Document: "b.mdx", Action: models.ActionFailed, Error: "permission denied"},
			{Pass: models.PassSyntax, Document: "a.mdx", Action: models.ActionFixed, ChecksumBefore: "y", ChecksumAfter: "z"},
		},
	}
	r.Tally()
	return r
}

func TestRecordAndGetRun(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	run := sampleRun("/docs")
	if err := db.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("run ID not set")
	}

	got, err := db.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Dir != "/docs" || got.Findings != 3 || got.Changed != 2 || got.Failed != 1 {
		t.Errorf("run = %+v", got)
	}
	if !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, run.StartedAt)
	}
	if len(got.Outcomes) != 3 {
		t.Fatalf("outcomes = %d, want 3", len(got.Outcomes))
	}
	if got.Outcomes[0].Title != "Hello world" || got.Outcomes[2].Pass != models.PassSyntax {
		t.Errorf("outcomes out of order or incomplete: %+v", got.Outcomes)
	}
	if got.Outcomes[1].Error != "permission denied" {
		t.Errorf("error = %q", got.Outcomes[1].Error)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetRun(context.Background(), 42)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListRuns_NewestFirstWithLimit(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		r := sampleRun("/docs")
		r.DryRun = i == 2
		if err := db.RecordRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Errorf("not newest first: %d, %d", runs[0].ID, runs[1].ID)
	}
	if !runs[0].DryRun {
		t.Error("dry_run flag lost")
	}
	if len(runs[0].Outcomes) != 0 {
		t.Error("list should not load outcomes")
	}
}

func TestDocumentHistory(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.RecordRun(ctx, sampleRun("/docs"))
	_ = db.RecordRun(ctx, sampleRun("/docs"))

	hist, err := db.DocumentHistory(ctx, "a.mdx", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 4 {
		t.Fatalf("history = %d, want 4", len(hist))
	}
	if hist[0].Pass != models.PassSyntax {
		t.Errorf("newest entry pass = %s, want syntax", hist[0].Pass)
	}
}
