// Package evalservice evaluates colour expressions on behalf of the HTTP,
// MCP and command-line front ends, memoising results in the index.
package evalservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/starford/sunc/internal/apperr"
	"github.com/starford/sunc/internal/checksum"
	"github.com/starford/sunc/internal/colour"
	"github.com/starford/sunc/internal/index"
	"github.com/starford/sunc/internal/models"
	"github.com/starford/sunc/internal/parser"
	"github.com/starford/sunc/internal/storage"
)

// Operations recorded on evaluations.
const (
	OpEvaluate      = "evaluate"
	OpScalarProduct = "scalar_product"
	OpMultiply      = "multiply"
)

// Publisher is told about every evaluation that was not served from the memo.
type Publisher interface {
	PublishEvaluation(e models.Evaluation)
}

// Service coordinates parsing, evaluation, storage and the result index.
type Service struct {
	store       storage.Provider
	db          *index.DB
	tr          float64
	mode        models.Mode
	maxParallel int
	logger      *slog.Logger
	pub         Publisher
}

var _ index.Evaluator = (*Service)(nil)

// New creates a service over store and db.
func New(store storage.Provider, db *index.DB, opts ...Option) *Service {
	s := &Service{
		store:       store,
		db:          db,
		tr:          0.5,
		mode:        models.ModeFull,
		maxParallel: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxParallel < 1 {
		s.maxParallel = 1
	}
	return s
}

// ConjugateResult pairs an amplitude with its hermitian conjugate.
type ConjugateResult struct {
	Expression string `json:"expression"`
	Conjugate  string `json:"conjugate"`
}

// Evaluate parses expr, reduces every term and sums the prefactors.
// Repeated requests for the same canonical expression and mode are served
// from the memo with Cached set.
func (s *Service) Evaluate(ctx context.Context, expr string, mode models.Mode) (*models.Evaluation, error) {
	mode, err := s.resolveMode(mode)
	if err != nil {
		return nil, err
	}
	a, err := parser.ParseAmplitude(expr)
	if err != nil {
		return nil, err
	}
	canonical := a.String()
	return s.memoise(ctx, OpEvaluate, mode, canonical, func() (colour.Sum, []string, error) {
		err := evaluate(&a, mode)
		return a.Result(), termStrings(a), err
	}, canonical)
}

// ScalarProduct computes <lhs|rhs>, the full contraction of the hermitian
// conjugate of lhs with rhs.
func (s *Service) ScalarProduct(ctx context.Context, lhs, rhs string, mode models.Mode) (*models.Evaluation, error) {
	mode, err := s.resolveMode(mode)
	if err != nil {
		return nil, err
	}
	a, err := parser.ParseAmplitude(lhs)
	if err != nil {
		return nil, fmt.Errorf("lhs: %w", err)
	}
	b, err := parser.ParseAmplitude(rhs)
	if err != nil {
		return nil, fmt.Errorf("rhs: %w", err)
	}
	display := "<" + a.String() + "|" + b.String() + ">"
	return s.memoise(ctx, OpScalarProduct, mode, display, func() (colour.Sum, []string, error) {
		res, err := a.ScalarProduct(b, mode.LeadingColour())
		return res, nil, err
	}, a.String(), b.String())
}

// Multiply evaluates the product lhs·rhs. Contracted indices of rhs are
// renumbered above those of lhs; free indices shared by both contract.
func (s *Service) Multiply(ctx context.Context, lhs, rhs string, mode models.Mode) (*models.Evaluation, error) {
	mode, err := s.resolveMode(mode)
	if err != nil {
		return nil, err
	}
	a, err := parser.ParseAmplitude(lhs)
	if err != nil {
		return nil, fmt.Errorf("lhs: %w", err)
	}
	b, err := parser.ParseAmplitude(rhs)
	if err != nil {
		return nil, fmt.Errorf("rhs: %w", err)
	}
	p := a.Mul(b)
	display := p.String()
	return s.memoise(ctx, OpMultiply, mode, display, func() (colour.Sum, []string, error) {
		err := evaluate(&p, mode)
		return p.Result(), termStrings(p), err
	}, a.String(), b.String())
}

// Conjugate returns the hermitian conjugate of expr.
func (s *Service) Conjugate(_ context.Context, expr string) (*ConjugateResult, error) {
	a, err := parser.ParseAmplitude(expr)
	if err != nil {
		return nil, err
	}
	return &ConjugateResult{Expression: a.String(), Conjugate: a.HConj().String()}, nil
}

// GetEvaluation returns a stored evaluation by id.
func (s *Service) GetEvaluation(_ context.Context, id string) (*models.Evaluation, error) {
	return s.db.GetEvaluation(id)
}

// ListEvaluations returns a page of stored evaluations, newest first.
func (s *Service) ListEvaluations(_ context.Context, limit, offset int) ([]models.Evaluation, int, error) {
	items, total, err := s.db.ListEvaluations(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return nonNilSlice(items), total, nil
}

// ClearEvaluations empties the memo.
func (s *Service) ClearEvaluations(_ context.Context) (int64, error) {
	n, err := s.db.ClearEvaluations()
	if err != nil {
		return 0, err
	}
	s.logger.Info("evaluation memo cleared", slog.Int64("rows", n))
	return n, nil
}

// memoise looks key up in the memo and otherwise runs compute, records the
// outcome and publishes it. A non-reducible outcome is kept with a warning.
func (s *Service) memoise(ctx context.Context, op string, mode models.Mode, display string,
	compute func() (colour.Sum, []string, error), operands ...string) (*models.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := s.key(op, mode, operands...)
	if hit, err := s.db.LookupEvaluation(key); err == nil {
		hit.Cached = true
		return hit, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	start := time.Now()
	res, terms, err := compute()
	warning := ""
	if err != nil {
		if !errors.Is(err, apperr.ErrNonReducible) {
			return nil, err
		}
		warning = err.Error()
	}

	e := s.record(op, mode, display, res)
	e.Terms = nonNilSlice(terms)
	e.Warning = warning
	if err := s.db.PutEvaluation(key, e); err != nil {
		return nil, err
	}
	// A concurrent request may have stored the same key first.
	stored, err := s.db.LookupEvaluation(key)
	if err != nil {
		return nil, err
	}
	if stored.ID != e.ID {
		stored.Cached = true
		return stored, nil
	}
	s.logger.Info("evaluated",
		slog.String("id", e.ID),
		slog.String("operation", op),
		slog.String("mode", string(mode)),
		slog.String("result", e.Result),
		slog.Duration("elapsed", time.Since(start)))
	if s.pub != nil {
		s.pub.PublishEvaluation(e)
	}
	return &e, nil
}

// record converts a result sum into a stored evaluation.
func (s *Service) record(op string, mode models.Mode, display string, res colour.Sum) models.Evaluation {
	n := s.numeric(res)
	return models.Evaluation{
		ID:          uuid.NewString(),
		Operation:   op,
		Expression:  display,
		Mode:        mode,
		Result:      res.String(),
		ResultTR:    n.text,
		Value:       models.NewComplex(n.full),
		ValueLC:     models.NewComplex(n.lc),
		ValueLargeN: models.NewComplex(n.largeN),
		CreatedAt:   time.Now().UTC(),
	}
}

type numericValues struct {
	text             string
	full, lc, largeN complex128
}

// numeric evaluates res at NC = 3 with TR set to the configured value. CF
// and CA follow from TR, including under inverse powers.
func (s *Service) numeric(res colour.Sum) numericValues {
	return numericValues{
		text:   res.Expand().ReplaceTR(s.tr).String(),
		full:   res.ValueTR(s.tr),
		lc:     res.LeadingNC().ValueTR(s.tr),
		largeN: res.ReplaceCA().ReplaceCFLargeN().ValueTR(s.tr),
	}
}

// key depends on TR because ResultTR and the values do.
func (s *Service) key(op string, mode models.Mode, operands ...string) string {
	parts := append([]string{strconv.FormatFloat(s.tr, 'g', -1, 64)}, operands...)
	return checksum.Key(op+"/"+string(mode), parts...)
}

func (s *Service) resolveMode(m models.Mode) (models.Mode, error) {
	if m == "" {
		return s.mode, nil
	}
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q: %w", m, apperr.ErrParse)
	}
	return m, nil
}

func evaluate(a *colour.Amplitude, mode models.Mode) error {
	if mode.LeadingColour() {
		return a.EvaluateLC()
	}
	return a.Evaluate()
}

func termStrings(a colour.Amplitude) []string {
	terms := a.Terms()
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.String()
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
