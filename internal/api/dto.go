package api

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sunc/internal/models"
)

var worksheetPathRe = regexp.MustCompile(`(?i)^[^/].*\.ya?ml$`)

func modeRule() validation.Rule {
	return validation.In(models.ModeFull, models.ModeLC).Error("must be full or lc")
}

// EvaluateRequest is the body of POST /evaluate.
type EvaluateRequest struct {
	Expression string      `json:"expression" example:"t[1,2,3] t[1,3,2]" validate:"required"`
	Mode       models.Mode `json:"mode,omitempty" example:"full" enums:"full,lc"`
}

// Validate checks the request.
func (r EvaluateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Expression, validation.Required, validation.Length(1, 64<<10)),
		validation.Field(&r.Mode, modeRule()),
	)
}

// PairRequest is the body of POST /scalar-product and POST /multiply.
type PairRequest struct {
	LHS  string      `json:"lhs" example:"f[1,2,5] f[5,3,4]" validate:"required"`
	RHS  string      `json:"rhs" example:"f[1,3,5] f[5,2,4]" validate:"required"`
	Mode models.Mode `json:"mode,omitempty" example:"full" enums:"full,lc"`
}

// Validate checks the request.
func (r PairRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.LHS, validation.Required),
		validation.Field(&r.RHS, validation.Required),
		validation.Field(&r.Mode, modeRule()),
	)
}

// ConjugateRequest is the body of POST /conjugate.
type ConjugateRequest struct {
	Expression string `json:"expression" example:"(0,1)*f[1,2,3]" validate:"required"`
}

// Validate checks the request.
func (r ConjugateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Expression, validation.Required),
	)
}

// MatrixRequest is the body of POST /matrix.
type MatrixRequest struct {
	Basis []string    `json:"basis" validate:"required"`
	Mode  models.Mode `json:"mode,omitempty" example:"full" enums:"full,lc"`
}

// Validate checks the request.
func (r MatrixRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Basis, validation.Required, validation.Length(1, 64), validation.Each(validation.Required)),
		validation.Field(&r.Mode, modeRule()),
	)
}

// CreateWorksheetRequest is the body of POST /worksheets.
type CreateWorksheetRequest struct {
	Path    string `json:"path" example:"gg.yaml" validate:"required"`
	Content string `json:"content" example:"basis:\n  - f[1,2,5] f[5,3,4]\n" validate:"required"`
}

// Validate checks the request.
func (r CreateWorksheetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Path, validation.Required, validation.Match(worksheetPathRe).Error("must be a relative .yaml path")),
		validation.Field(&r.Content, validation.Required),
	)
}

// UpdateWorksheetRequest is the body of PUT /worksheets/{path}.
type UpdateWorksheetRequest struct {
	Content string `json:"content" validate:"required"`
}

// Validate checks the request.
func (r UpdateWorksheetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required),
	)
}

// MoveWorksheetRequest is the body of POST /worksheets/move.
type MoveWorksheetRequest struct {
	From string `json:"from" example:"gg.yaml" validate:"required"`
	To   string `json:"to" example:"processes/gg.yaml" validate:"required"`
}

// Validate checks the request.
func (r MoveWorksheetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required),
		validation.Field(&r.To, validation.Required, validation.Match(worksheetPathRe).Error("must be a relative .yaml path")),
	)
}

// EvaluationListResponse wraps a page of evaluations.
type EvaluationListResponse struct {
	Evaluations []models.Evaluation `json:"evaluations" validate:"required"`
	Total       int                 `json:"total" example:"42" validate:"required"`
}

// WorksheetListResponse wraps the stored worksheets.
type WorksheetListResponse struct {
	Worksheets []models.Worksheet `json:"worksheets" validate:"required"`
}

// ClearResponse reports how many memo rows were removed.
type ClearResponse struct {
	Removed int64 `json:"removed" example:"12"`
}
