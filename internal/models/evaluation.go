package models

import (
	"math"
	"strconv"
	"time"
)

// Mode selects full or leading-colour evaluation.
type Mode string

const (
	ModeFull Mode = "full"
	ModeLC   Mode = "lc"
)

// LeadingColour reports whether m projects onto the leading power of NC.
func (m Mode) LeadingColour() bool { return m == ModeLC }

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return m == ModeFull || m == ModeLC }

// Complex is a JSON-friendly complex number.
type Complex struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

// NewComplex converts z, mapping negative zero to zero.
func NewComplex(z complex128) Complex {
	return Complex{Re: real(z) + 0, Im: imag(z) + 0}
}

// Complex128 returns c as a complex128.
func (c Complex) Complex128() complex128 { return complex(c.Re, c.Im) }

// Near reports whether c and o agree to tol in both components.
func (c Complex) Near(o Complex, tol float64) bool {
	return math.Abs(c.Re-o.Re) <= tol && math.Abs(c.Im-o.Im) <= tol
}

// String formats c as "4", "-36i" or "1.5+2i".
func (c Complex) String() string {
	re := strconv.FormatFloat(c.Re, 'g', 12, 64)
	im := strconv.FormatFloat(c.Im, 'g', 12, 64)
	switch {
	case c.Im == 0:
		return re
	case c.Re == 0:
		return im + "i"
	case c.Im > 0:
		return re + "+" + im + "i"
	default:
		return re + im + "i"
	}
}

// Evaluation is a memoised evaluation result.
//
// Result is the symbolic prefactor sum, ResultTR the same with the
// configured TR substituted. Terms lists the fully reduced terms; free
// indices survive there as deltas.
type Evaluation struct {
	ID          string    `json:"id"`
	Operation   string    `json:"operation"`
	Expression  string    `json:"expression"`
	Mode        Mode      `json:"mode"`
	Result      string    `json:"result"`
	ResultTR    string    `json:"result_tr"`
	Terms       []string  `json:"terms"`
	Value       Complex   `json:"value"`
	ValueLC     Complex   `json:"value_lc"`
	ValueLargeN Complex   `json:"value_large_n"`
	Warning     string    `json:"warning,omitempty"`
	Cached      bool      `json:"cached"`
	CreatedAt   time.Time `json:"created_at"`
}

// Matrix is a colour matrix C_ij = <b_i|b_j> over a basis.
type Matrix struct {
	Basis   []string  `json:"basis"`
	Mode    Mode      `json:"mode"`
	Entries [][]Entry `json:"entries"`
}
