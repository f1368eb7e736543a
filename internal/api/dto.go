package api

import "github.com/starford/mdxmend/internal/models"

// RepairRequest is the optional request body for POST /api/repair.
type RepairRequest struct {
	DryRun     bool `json:"dry_run" example:"true"`
	SkipTitles bool `json:"skip_titles"`
	SkipSyntax bool `json:"skip_syntax"`
}

// FixRequest is the request body for POST /api/fix.
type FixRequest struct {
	Content string `json:"content" example:"see[docs](http://x)" validate:"required"`
}

// FixResponse carries repaired text.
type FixResponse struct {
	Content string `json:"content" validate:"required"`
	Changed bool   `json:"changed"`
}

// FindingsResponse wraps validator findings.
type FindingsResponse struct {
	Findings  []models.Finding `json:"findings" validate:"required"`
	Total     int              `json:"total" example:"3"`
	Documents int              `json:"documents" example:"2"`
}

// RunListResponse wraps recorded runs.
type RunListResponse struct {
	Runs []models.Run `json:"runs" validate:"required"`
}

// HistoryResponse wraps the recorded outcomes of one document.
type HistoryResponse struct {
	Document string           `json:"document" example:"post.mdx"`
	Outcomes []models.Outcome `json:"outcomes" validate:"required"`
}

func newFindingsResponse(findings []models.Finding) FindingsResponse {
	if findings == nil {
		findings = []models.Finding{}
	}
	docs := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		docs[f.Document] = struct{}{}
	}
	return FindingsResponse{Findings: findings, Total: len(findings), Documents: len(docs)}
}
