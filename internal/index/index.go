package index

import (
	"context"

	"github.com/starford/sunc/internal/models"
	"github.com/starford/sunc/internal/parser"
)

// ResultIndex is the result store as seen by services and transports.
type ResultIndex interface {
	PutEvaluation(key string, e models.Evaluation) error
	LookupEvaluation(key string) (*models.Evaluation, error)
	GetEvaluation(id string) (*models.Evaluation, error)
	ListEvaluations(limit, offset int) ([]models.Evaluation, int, error)
	ClearEvaluations() (int64, error)

	UpsertWorksheet(w WorksheetRow, entries []models.Entry) error
	DeleteWorksheet(path string) error
	GetWorksheet(path string) (*WorksheetRow, []models.Entry, error)
	ListWorksheets() ([]WorksheetRow, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ ResultIndex = (*DB)(nil)

// Evaluator computes the entries of a parsed worksheet.
type Evaluator interface {
	EvaluateWorksheet(ctx context.Context, ws *parser.Worksheet) ([]models.Entry, error)
}
