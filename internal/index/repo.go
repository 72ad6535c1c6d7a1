package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/sunc/internal/apperr"
	"github.com/starford/sunc/internal/models"
)

// WorksheetRow represents a row in the worksheets table.
type WorksheetRow struct {
	Path          string
	Title         string
	LeadingColour bool
	Checksum      string
	Basis         []string
	Error         string
	UpdatedAt     time.Time
}

const evaluationColumns = `id, operation, expression, mode, result, result_tr, terms,
	value_re, value_im, lc_re, lc_im, large_n_re, large_n_im, warning, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(s scanner) (*models.Evaluation, error) {
	var (
		e     models.Evaluation
		mode  string
		terms string
	)
	err := s.Scan(&e.ID, &e.Operation, &e.Expression, &mode, &e.Result, &e.ResultTR, &terms,
		&e.Value.Re, &e.Value.Im, &e.ValueLC.Re, &e.ValueLC.Im, &e.ValueLargeN.Re, &e.ValueLargeN.Im,
		&e.Warning, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Mode = models.Mode(mode)
	if err := json.Unmarshal([]byte(terms), &e.Terms); err != nil {
		return nil, fmt.Errorf("index: decode terms of %s: %w", e.ID, err)
	}
	return &e, nil
}

// PutEvaluation stores e under its memo key. A concurrent insert of the same
// key keeps the first row.
func (db *DB) PutEvaluation(key string, e models.Evaluation) error {
	terms, err := json.Marshal(nonNil(e.Terms))
	if err != nil {
		return fmt.Errorf("index: encode terms: %w", err)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err = db.conn.Exec(`
		INSERT INTO evaluations (key, `+evaluationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`, key, e.ID, e.Operation, e.Expression, string(e.Mode), e.Result, e.ResultTR, string(terms),
		e.Value.Re, e.Value.Im, e.ValueLC.Re, e.ValueLC.Im, e.ValueLargeN.Re, e.ValueLargeN.Im,
		e.Warning, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("index: put evaluation: %w", err)
	}
	return nil
}

// LookupEvaluation returns the evaluation memoised under key.
func (db *DB) LookupEvaluation(key string) (*models.Evaluation, error) {
	row := db.conn.QueryRow(`SELECT `+evaluationColumns+` FROM evaluations WHERE key = ?`, key)
	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: lookup evaluation: %w", err)
	}
	return e, nil
}

// GetEvaluation returns the evaluation with the given id.
func (db *DB) GetEvaluation(id string) (*models.Evaluation, error) {
	row := db.conn.QueryRow(`SELECT `+evaluationColumns+` FROM evaluations WHERE id = ?`, id)
	e, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("index: get evaluation: %w", err)
	}
	return e, nil
}

// ListEvaluations returns a page of evaluations, newest first, and the total count.
func (db *DB) ListEvaluations(limit, offset int) ([]models.Evaluation, int, error) {
	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM evaluations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count evaluations: %w", err)
	}
	rows, err := db.conn.Query(`SELECT `+evaluationColumns+` FROM evaluations
		ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list evaluations: %w", err)
	}
	defer rows.Close()

	var out []models.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

// ClearEvaluations empties the memo and reports how many rows went.
func (db *DB) ClearEvaluations() (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM evaluations`)
	if err != nil {
		return 0, fmt.Errorf("index: clear evaluations: %w", err)
	}
	return res.RowsAffected()
}

// UpsertWorksheet replaces a worksheet and all of its entries in one transaction.
func (db *DB) UpsertWorksheet(w WorksheetRow, entries []models.Entry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	basis, err := json.Marshal(nonNil(w.Basis))
	if err != nil {
		return fmt.Errorf("index: encode basis: %w", err)
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO worksheets (path, title, leading_colour, checksum, basis, error, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title          = excluded.title,
			leading_colour = excluded.leading_colour,
			checksum       = excluded.checksum,
			basis          = excluded.basis,
			error          = excluded.error,
			updated_at     = excluded.updated_at
	`, w.Path, w.Title, w.LeadingColour, w.Checksum, string(basis), w.Error, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert worksheet: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM worksheet_entries WHERE path = ?`, w.Path); err != nil {
		return fmt.Errorf("index: clear entries: %w", err)
	}
	if len(entries) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO worksheet_entries
				(path, kind, name, row_idx, col_idx, expression, result, value_re, value_im, warning)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare entry insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.Exec(w.Path, e.Kind, e.Name, e.Row, e.Col, e.Expression, e.Result,
				e.Value.Re, e.Value.Im, e.Warning); err != nil {
				return fmt.Errorf("index: insert entry %s: %w", e.Name, err)
			}
		}
	}

	return tx.Commit()
}

// DeleteWorksheet removes a worksheet; its entries go with it.
func (db *DB) DeleteWorksheet(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM worksheet_entries WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete entries: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM worksheets WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete worksheet: %w", err)
	}
	return tx.Commit()
}

const worksheetColumns = `path, title, leading_colour, checksum, basis, error, updated_at`

func scanWorksheet(s scanner) (*WorksheetRow, error) {
	var (
		w     WorksheetRow
		basis string
	)
	if err := s.Scan(&w.Path, &w.Title, &w.LeadingColour, &w.Checksum, &basis, &w.Error, &w.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(basis), &w.Basis); err != nil {
		return nil, fmt.Errorf("index: decode basis of %s: %w", w.Path, err)
	}
	return &w, nil
}

// GetWorksheet returns a worksheet row and its entries, matrix elements
// first in row-major order, then expressions in insertion order.
func (db *DB) GetWorksheet(path string) (*WorksheetRow, []models.Entry, error) {
	w, err := scanWorksheet(db.conn.QueryRow(`SELECT `+worksheetColumns+` FROM worksheets WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("worksheet %s: %w", path, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("index: get worksheet: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT kind, name, row_idx, col_idx, expression, result, value_re, value_im, warning
		FROM worksheet_entries WHERE path = ?
		ORDER BY kind = 'expression', row_idx, col_idx, rowid`, path)
	if err != nil {
		return nil, nil, fmt.Errorf("index: entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.Kind, &e.Name, &e.Row, &e.Col, &e.Expression, &e.Result,
			&e.Value.Re, &e.Value.Im, &e.Warning); err != nil {
			return nil, nil, err
		}
		entries = append(entries, e)
	}
	return w, entries, rows.Err()
}

// ListWorksheets returns every stored worksheet ordered by path.
func (db *DB) ListWorksheets() ([]WorksheetRow, error) {
	rows, err := db.conn.Query(`SELECT ` + worksheetColumns + ` FROM worksheets ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: list worksheets: %w", err)
	}
	defer rows.Close()

	var out []WorksheetRow
	for rows.Next() {
		w, err := scanWorksheet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

// GetChecksum returns the stored checksum of a worksheet, or "" if it is
// not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM worksheets WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums maps every indexed worksheet path to its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM worksheets`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
