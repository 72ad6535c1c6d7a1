package evalservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/sunc/internal/apperr"
	"github.com/starford/sunc/internal/colour"
	"github.com/starford/sunc/internal/models"
	"github.com/starford/sunc/internal/parser"
)

// ColourMatrix computes C_ij = <b_i|b_j> over basis.
func (s *Service) ColourMatrix(ctx context.Context, basis []string, mode models.Mode) (*models.Matrix, error) {
	mode, err := s.resolveMode(mode)
	if err != nil {
		return nil, err
	}
	if len(basis) == 0 {
		return nil, fmt.Errorf("empty basis: %w", apperr.ErrParse)
	}
	vecs := make([]colour.Amplitude, len(basis))
	canonical := make([]string, len(basis))
	for i, b := range basis {
		a, err := parser.ParseAmplitude(b)
		if err != nil {
			return nil, fmt.Errorf("basis[%d]: %w", i, err)
		}
		vecs[i] = a
		canonical[i] = a.String()
	}
	entries, err := s.matrix(ctx, vecs, mode.LeadingColour())
	if err != nil {
		return nil, err
	}
	return &models.Matrix{Basis: canonical, Mode: mode, Entries: entries}, nil
}

// matrix fills the upper triangle concurrently, at most maxParallel products
// at a time, and mirrors it: C_ji is the complex conjugate of C_ij.
func (s *Service) matrix(ctx context.Context, vecs []colour.Amplitude, lc bool) ([][]models.Entry, error) {
	n := len(vecs)
	sums := make([][]colour.Sum, n)
	warnings := make([][]string, n)
	for i := range sums {
		sums[i] = make([]colour.Sum, n)
		warnings[i] = make([]string, n)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i := range n {
		for j := i; j < n; j++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := vecs[i].ScalarProduct(vecs[j], lc)
				if err != nil {
					if !errors.Is(err, apperr.ErrNonReducible) {
						return fmt.Errorf("C[%d,%d]: %w", i, j, err)
					}
					warnings[i][j] = err.Error()
				}
				sums[i][j] = res
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([][]models.Entry, n)
	for i := range n {
		out[i] = make([]models.Entry, n)
		for j := range n {
			res, warning := sums[i][j], warnings[i][j]
			if j < i {
				res, warning = sums[j][i].Conj(), warnings[j][i]
			}
			out[i][j] = s.entry(models.EntryMatrix, fmt.Sprintf("C[%d,%d]", i, j), res)
			out[i][j].Row, out[i][j].Col = i, j
			out[i][j].Expression = fmt.Sprintf("<b%d|b%d>", i, j)
			out[i][j].Warning = warning
		}
	}
	s.logger.Debug("colour matrix computed",
		slog.Int("dimension", n),
		slog.Bool("leading_colour", lc),
		slog.Duration("elapsed", time.Since(start)))
	return out, nil
}

func (s *Service) entry(kind, name string, res colour.Sum) models.Entry {
	return models.Entry{
		Kind:   kind,
		Name:   name,
		Result: res.String(),
		Value:  models.NewComplex(s.numeric(res).full),
	}
}

// EvaluateWorksheet computes the colour matrix of the worksheet basis and
// every named expression, in the worksheet's mode.
func (s *Service) EvaluateWorksheet(ctx context.Context, ws *parser.Worksheet) ([]models.Entry, error) {
	matrix, err := s.matrix(ctx, ws.Vectors, ws.LeadingColour)
	if err != nil {
		return nil, err
	}
	var out []models.Entry
	for _, row := range matrix {
		out = append(out, row...)
	}

	mode := models.ModeFull
	if ws.LeadingColour {
		mode = models.ModeLC
	}
	for i, e := range ws.Expressions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a := e.Amplitude
		warning := ""
		if err := evaluate(&a, mode); err != nil {
			if !errors.Is(err, apperr.ErrNonReducible) {
				return nil, fmt.Errorf("expression %q: %w", e.Name, err)
			}
			warning = err.Error()
		}
		entry := s.entry(models.EntryExpression, e.Name, a.Result())
		entry.Row = i
		entry.Expression = e.Expr
		entry.Warning = warning
		out = append(out, entry)
	}
	return out, nil
}
