// Package colour implements SU(N) colour algebra: monomials and polynomials in
// the group invariants NC, TR, CF and CA, the tensor primitives δ, t, f and d,
// products of those primitives (terms) and sums of terms (amplitudes).
//
// Symbolic results keep NC, TR, CF and CA abstract. Numeric evaluation uses
// the QCD values below.
package colour

import (
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"

	"github.com/starford/sunc/internal/apperr"
)

// Numeric values of the group invariants.
const (
	NC = 3.0
	TR = 0.5
	CF = TR * (NC*NC - 1) / NC
	CA = 2 * TR * NC
)

// zeroTol is the magnitude below which a coefficient counts as zero.
const zeroTol = 1e-12

// Factor is the monomial Coeff · NC^PowNC · TR^PowTR · CF^PowCF · CA^PowCA.
// The zero value is the canonical zero monomial.
type Factor struct {
	Coeff complex128
	PowNC int
	PowTR int
	PowCF int
	PowCA int
}

// NewFactor returns the monomial c·NC^nc·TR^tr·CF^cf·CA^ca, normalised so
// that a zero coefficient carries no exponents.
func NewFactor(c complex128, nc, tr, cf, ca int) Factor {
	f := Factor{Coeff: c, PowNC: nc, PowTR: tr, PowCF: cf, PowCA: ca}
	f.normalise()
	return f
}

// One returns the unit monomial.
func One() Factor { return Factor{Coeff: 1} }

// Scalar returns the monomial z with all exponents zero.
func Scalar(z complex128) Factor { return NewFactor(z, 0, 0, 0, 0) }

func (f *Factor) normalise() {
	if isZero(f.Coeff) {
		*f = Factor{}
		return
	}
	re, im := real(f.Coeff), imag(f.Coeff)
	if math.Abs(re) < zeroTol {
		re = 0
	}
	if math.Abs(im) < zeroTol {
		im = 0
	}
	f.Coeff = complex(re, im)
}

func isZero(z complex128) bool { return cmplx.Abs(z) < zeroTol }

// IsZero reports whether f is the zero monomial.
func (f Factor) IsZero() bool { return isZero(f.Coeff) }

// Like reports whether f and g share the same exponent tuple.
func (f Factor) Like(g Factor) bool {
	return f.PowNC == g.PowNC && f.PowTR == g.PowTR && f.PowCF == g.PowCF && f.PowCA == g.PowCA
}

// Mul returns f·g.
func (f Factor) Mul(g Factor) Factor {
	return NewFactor(f.Coeff*g.Coeff,
		f.PowNC+g.PowNC, f.PowTR+g.PowTR, f.PowCF+g.PowCF, f.PowCA+g.PowCA)
}

// MulComplex returns z·f.
func (f Factor) MulComplex(z complex128) Factor {
	return NewFactor(f.Coeff*z, f.PowNC, f.PowTR, f.PowCF, f.PowCA)
}

// Div returns f/g. Exponents are subtracted; no further simplification happens.
func (f Factor) Div(g Factor) (Factor, error) {
	if g.IsZero() {
		return Factor{}, fmt.Errorf("colour: divide %s by zero monomial: %w", f, apperr.ErrDivisionByZero)
	}
	return NewFactor(f.Coeff/g.Coeff,
		f.PowNC-g.PowNC, f.PowTR-g.PowTR, f.PowCF-g.PowCF, f.PowCA-g.PowCA), nil
}

// Conj returns the complex conjugate. NC, TR, CF and CA are real.
func (f Factor) Conj() Factor {
	f.Coeff = cmplx.Conj(f.Coeff)
	return f
}

// ReplaceCA substitutes CA = 2·TR·NC.
func (f Factor) ReplaceCA() Factor {
	d := f.PowCA
	if d == 0 {
		return f
	}
	return NewFactor(f.Coeff*complex(math.Pow(2, float64(d)), 0), f.PowNC+d, f.PowTR+d, f.PowCF, 0)
}

// ReplaceCF substitutes CF = TR·(NC² − 1)/NC = TR·NC − TR/NC and returns the
// binomial expansion as a Sum.
func (f Factor) ReplaceCF() Sum {
	c := f.PowCF
	if c <= 0 {
		// Inverse powers of CF do not expand into a polynomial.
		return NewSum(f)
	}
	base := NewFactor(f.Coeff, f.PowNC, f.PowTR, 0, f.PowCA)
	lead := NewFactor(1, 1, 1, 0, 0)
	sub := NewFactor(-1, -1, 1, 0, 0)
	out := NewSum(base)
	for i := 0; i < c; i++ {
		out = out.Mul(NewSum(lead, sub))
	}
	return out
}

// ReplaceCFLargeN substitutes CF = TR·NC, dropping the 1/NC piece.
func (f Factor) ReplaceCFLargeN() Factor {
	c := f.PowCF
	if c == 0 {
		return f
	}
	return NewFactor(f.Coeff, f.PowNC+c, f.PowTR+c, 0, f.PowCA)
}

// ReplaceTR folds TR^b into the coefficient using the numeric value tr.
func (f Factor) ReplaceTR(tr float64) Factor {
	b := f.PowTR
	if b == 0 {
		return f
	}
	return NewFactor(f.Coeff*complex(math.Pow(tr, float64(b)), 0), f.PowNC, 0, f.PowCF, f.PowCA)
}

// OrderNC returns the power of NC carried by the leading piece of f once CF
// and CA are expanded; each contributes one net power of NC.
func (f Factor) OrderNC() int {
	return f.PowNC + f.PowCF + f.PowCA
}

// Value evaluates f at NC=3, TR=1/2, CF=4/3, CA=3.
func (f Factor) Value() complex128 {
	v := math.Pow(NC, float64(f.PowNC)) *
		math.Pow(TR, float64(f.PowTR)) *
		math.Pow(CF, float64(f.PowCF)) *
		math.Pow(CA, float64(f.PowCA))
	return f.Coeff * complex(v, 0)
}

// ValueTR evaluates f at NC=3 with TR=tr, so CF and CA take the values that
// follow from tr. Negative powers of CF are covered.
func (f Factor) ValueTR(tr float64) complex128 {
	cf := tr * (NC*NC - 1) / NC
	ca := 2 * tr * NC
	v := math.Pow(NC, float64(f.PowNC)) *
		math.Pow(tr, float64(f.PowTR)) *
		math.Pow(cf, float64(f.PowCF)) *
		math.Pow(ca, float64(f.PowCA))
	return f.Coeff * complex(v, 0)
}

// ValueLC evaluates the leading-colour piece of f.
func (f Factor) ValueLC() complex128 {
	return f.ReplaceCA().ReplaceCFLargeN().Value()
}

// ValueLargeN evaluates f after the large-N replacement CF → TR·NC.
func (f Factor) ValueLargeN() complex128 {
	return f.ReplaceCFLargeN().Value()
}

// String renders f as coefficient*NC^a*TR^b*CF^c*CA^d, omitting zero powers.
func (f Factor) String() string {
	atoms := f.atoms()
	if atoms == "" {
		return formatCoeff(f.Coeff)
	}
	switch f.Coeff {
	case 1:
		return atoms
	case -1:
		return "-" + atoms
	}
	return formatCoeff(f.Coeff) + "*" + atoms
}

func (f Factor) atoms() string {
	var parts []string
	for _, a := range []struct {
		name string
		pow  int
	}{{"NC", f.PowNC}, {"TR", f.PowTR}, {"CF", f.PowCF}, {"CA", f.PowCA}} {
		switch a.pow {
		case 0:
		case 1:
			parts = append(parts, a.name)
		default:
			parts = append(parts, a.name+"^"+strconv.Itoa(a.pow))
		}
	}
	return strings.Join(parts, "*")
}

func formatCoeff(z complex128) string {
	if imag(z) == 0 {
		return strconv.FormatFloat(real(z), 'g', -1, 64)
	}
	return "(" + strconv.FormatFloat(real(z), 'g', -1, 64) + "," + strconv.FormatFloat(imag(z), 'g', -1, 64) + ")"
}
