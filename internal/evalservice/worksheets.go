package evalservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/sunc/internal/apperr"
	"github.com/starford/sunc/internal/checksum"
	"github.com/starford/sunc/internal/index"
	"github.com/starford/sunc/internal/models"
	"github.com/starford/sunc/internal/parser"
)

// ListWorksheets returns every stored worksheet without its entries.
func (s *Service) ListWorksheets(_ context.Context) ([]models.Worksheet, error) {
	rows, err := s.db.ListWorksheets()
	if err != nil {
		return nil, err
	}
	out := make([]models.Worksheet, len(rows))
	for i, r := range rows {
		out[i] = worksheetFromRow(r)
	}
	return out, nil
}

// GetWorksheet returns the stored evaluation of a worksheet together with
// its current file content. A worksheet on disk that the index has not
// seen yet is evaluated first.
func (s *Service) GetWorksheet(ctx context.Context, path string) (*models.Worksheet, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	row, entries, err := s.db.GetWorksheet(path)
	if errors.Is(err, apperr.ErrNotFound) {
		// Parse and evaluation failures are stored with the row.
		_ = s.IndexFile(ctx, path, data)
		row, entries, err = s.db.GetWorksheet(path)
	}
	if err != nil {
		return nil, err
	}
	w := worksheetFromRow(*row)
	w.Content = string(data)
	w.Matrix = matrixFromEntries(len(row.Basis), entries)
	for _, e := range entries {
		if e.Kind == models.EntryExpression {
			w.Expressions = append(w.Expressions, e)
		}
	}
	w.Expressions = nonNilSlice(w.Expressions)
	return &w, nil
}

// CreateWorksheet stores a new worksheet and evaluates it. Content that does
// not parse is rejected before anything is written.
func (s *Service) CreateWorksheet(ctx context.Context, path string, content []byte) (*models.Worksheet, error) {
	if _, err := parser.ParseWorksheet(content); err != nil {
		return nil, err
	}
	if _, err := s.store.Read(path); err == nil {
		return nil, fmt.Errorf("worksheet %s: %w", path, apperr.ErrAlreadyExists)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(ctx, path, content); err != nil {
		return nil, err
	}
	return s.GetWorksheet(ctx, path)
}

// UpdateWorksheet replaces a worksheet. A non-empty ifMatch must equal the
// checksum of the current content.
func (s *Service) UpdateWorksheet(ctx context.Context, path string, content []byte, ifMatch string) (*models.Worksheet, error) {
	if _, err := parser.ParseWorksheet(content); err != nil {
		return nil, err
	}
	existing, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, fmt.Errorf("worksheet %s changed: %w", path, apperr.ErrConflict)
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(ctx, path, content); err != nil {
		return nil, err
	}
	return s.GetWorksheet(ctx, path)
}

// DeleteWorksheet removes a worksheet from the workspace and the index.
func (s *Service) DeleteWorksheet(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteWorksheet(path)
}

// MoveWorksheet renames a worksheet, carrying its results along.
func (s *Service) MoveWorksheet(ctx context.Context, from, to string) (*models.Worksheet, error) {
	if err := s.store.Move(from, to); err != nil {
		return nil, err
	}
	if err := s.db.DeleteWorksheet(from); err != nil {
		return nil, err
	}
	data, err := s.store.Read(to)
	if err != nil {
		return nil, err
	}
	if err := s.IndexFile(ctx, to, data); err != nil {
		return nil, err
	}
	return s.GetWorksheet(ctx, to)
}

// IndexFile evaluates a worksheet and stores the outcome.
func (s *Service) IndexFile(ctx context.Context, path string, data []byte) error {
	return index.IndexFile(ctx, s.db, s, path, data)
}

func worksheetFromRow(r index.WorksheetRow) models.Worksheet {
	return models.Worksheet{
		Path:          r.Path,
		Title:         r.Title,
		LeadingColour: r.LeadingColour,
		Checksum:      r.Checksum,
		Error:         r.Error,
		Basis:         nonNilSlice(r.Basis),
		Matrix:        [][]models.Entry{},
		Expressions:   []models.Entry{},
		UpdatedAt:     r.UpdatedAt,
	}
}

func matrixFromEntries(n int, entries []models.Entry) [][]models.Entry {
	m := make([][]models.Entry, 0, n)
	for _, e := range entries {
		if e.Kind != models.EntryMatrix || e.Row >= n || e.Col >= n {
			continue
		}
		for len(m) <= e.Row {
			m = append(m, make([]models.Entry, n))
		}
		m[e.Row][e.Col] = e
	}
	return m
}
