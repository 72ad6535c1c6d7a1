package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/sunc/internal/evalservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *evalservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *evalservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Evaluate handles POST /api/evaluate.
//
//	@Summary		Reduce a colour expression to a sum of monomials
//	@Tags			algebra
//	@Accept			json
//	@Produce		json
//	@Param			body	body		EvaluateRequest	true	"Expression"
//	@Success		200		{object}	models.Evaluation
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/evaluate [post]
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ev, err := h.svc.Evaluate(r.Context(), req.Expression, req.Mode)
	if err != nil {
		writeError(w, r, "evaluate", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// ScalarProduct handles POST /api/scalar-product.
//
//	@Summary		Compute <lhs|rhs>
//	@Tags			algebra
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PairRequest	true	"Amplitudes"
//	@Success		200		{object}	models.Evaluation
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scalar-product [post]
func (h *Handler) ScalarProduct(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ev, err := h.svc.ScalarProduct(r.Context(), req.LHS, req.RHS, req.Mode)
	if err != nil {
		writeError(w, r, "scalar product", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// Multiply handles POST /api/multiply.
//
//	@Summary		Evaluate the product of two amplitudes
//	@Tags			algebra
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PairRequest	true	"Amplitudes"
//	@Success		200		{object}	models.Evaluation
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/multiply [post]
func (h *Handler) Multiply(w http.ResponseWriter, r *http.Request) {
	var req PairRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ev, err := h.svc.Multiply(r.Context(), req.LHS, req.RHS, req.Mode)
	if err != nil {
		writeError(w, r, "multiply", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// Conjugate handles POST /api/conjugate.
//
//	@Summary		Hermitian conjugate of an amplitude
//	@Tags			algebra
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ConjugateRequest	true	"Expression"
//	@Success		200		{object}	evalservice.ConjugateResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/conjugate [post]
func (h *Handler) Conjugate(w http.ResponseWriter, r *http.Request) {
	var req ConjugateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Conjugate(r.Context(), req.Expression)
	if err != nil {
		writeError(w, r, "conjugate", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Matrix handles POST /api/matrix.
//
//	@Summary		Colour matrix of a basis
//	@Tags			algebra
//	@Accept			json
//	@Produce		json
//	@Param			body	body		MatrixRequest	true	"Basis vectors"
//	@Success		200		{object}	models.Matrix
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/matrix [post]
func (h *Handler) Matrix(w http.ResponseWriter, r *http.Request) {
	var req MatrixRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.ColourMatrix(r.Context(), req.Basis, req.Mode)
	if err != nil {
		writeError(w, r, "colour matrix", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// ListEvaluations handles GET /api/evaluations.
//
//	@Summary		List memoised evaluations, newest first
//	@Tags			evaluations
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	EvaluationListResponse
//	@Security		BearerAuth
//	@Router			/evaluations [get]
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListEvaluations(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "list evaluations", err)
		return
	}
	writeJSON(w, http.StatusOK, EvaluationListResponse{Evaluations: items, Total: total})
}

// GetEvaluation handles GET /api/evaluations/{id}.
//
//	@Summary		Get a memoised evaluation
//	@Tags			evaluations
//	@Produce		json
//	@Param			id	path		string	true	"Evaluation ID"
//	@Success		200	{object}	models.Evaluation
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/evaluations/{id} [get]
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.GetEvaluation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get evaluation", err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// ClearEvaluations handles DELETE /api/evaluations.
//
//	@Summary		Empty the evaluation memo
//	@Tags			evaluations
//	@Produce		json
//	@Success		200	{object}	ClearResponse
//	@Security		BearerAuth
//	@Router			/evaluations [delete]
func (h *Handler) ClearEvaluations(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearEvaluations(r.Context())
	if err != nil {
		writeError(w, r, "clear evaluations", err)
		return
	}
	writeJSON(w, http.StatusOK, ClearResponse{Removed: n})
}

// worksheetPath extracts the worksheet path from the URL (everything after
// /api/worksheets/). Encoded slashes such as processes%2Fgg.yaml are decoded.
func worksheetPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}
