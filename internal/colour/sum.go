package colour

import (
	"fmt"
	"math"
	"strings"

	"github.com/starford/sunc/internal/apperr"
)

// Sum is an ordered sum of monomials. Every operation returns it in canonical
// form: like monomials are merged in first-seen order and zero entries are
// dropped. The empty Sum is zero.
type Sum struct {
	terms []Factor
}

// NewSum returns the canonical sum of fs.
func NewSum(fs ...Factor) Sum {
	var s Sum
	for _, f := range fs {
		s.addInPlace(f)
	}
	return s
}

// Factors returns a copy of the monomials of s.
func (s Sum) Factors() []Factor {
	out := make([]Factor, len(s.terms))
	copy(out, s.terms)
	return out
}

// Len returns the number of monomials in s.
func (s Sum) Len() int { return len(s.terms) }

// IsZero reports whether s has no monomials.
func (s Sum) IsZero() bool { return len(s.terms) == 0 }

// Clear resets s to zero.
func (s *Sum) Clear() { s.terms = nil }

func (s *Sum) addInPlace(f Factor) {
	if f.IsZero() {
		return
	}
	for i := range s.terms {
		if s.terms[i].Like(f) {
			merged := s.terms[i]
			merged.Coeff += f.Coeff
			merged.normalise()
			if merged.IsZero() {
				s.terms = append(s.terms[:i], s.terms[i+1:]...)
			} else {
				s.terms[i] = merged
			}
			return
		}
	}
	s.terms = append(s.terms, f)
}

// AddFactor returns s + f.
func (s Sum) AddFactor(f Factor) Sum {
	out := s.clone()
	out.addInPlace(f)
	return out
}

// Add returns s + o.
func (s Sum) Add(o Sum) Sum {
	out := s.clone()
	for _, f := range o.terms {
		out.addInPlace(f)
	}
	return out
}

// Mul returns s·o expanded distributively.
func (s Sum) Mul(o Sum) Sum {
	var out Sum
	for _, a := range s.terms {
		for _, b := range o.terms {
			out.addInPlace(a.Mul(b))
		}
	}
	return out
}

// MulFactor returns s·f.
func (s Sum) MulFactor(f Factor) Sum {
	return s.Mul(NewSum(f))
}

// MulComplex returns z·s.
func (s Sum) MulComplex(z complex128) Sum {
	return s.MulFactor(Scalar(z))
}

// DivFactor returns s/f term by term.
func (s Sum) DivFactor(f Factor) (Sum, error) {
	if f.IsZero() {
		return Sum{}, fmt.Errorf("colour: divide %s by zero monomial: %w", s, apperr.ErrDivisionByZero)
	}
	var out Sum
	for _, a := range s.terms {
		q, err := a.Div(f)
		if err != nil {
			return Sum{}, err
		}
		out.addInPlace(q)
	}
	return out, nil
}

// Conj returns the complex conjugate of s.
func (s Sum) Conj() Sum {
	return s.mapFactor(Factor.Conj)
}

// ReplaceCA substitutes CA = 2·TR·NC in every monomial.
func (s Sum) ReplaceCA() Sum {
	return s.mapFactor(Factor.ReplaceCA)
}

// ReplaceCF substitutes CF = TR·(NC² − 1)/NC in every monomial.
func (s Sum) ReplaceCF() Sum {
	var out Sum
	for _, f := range s.terms {
		out = out.Add(f.ReplaceCF())
	}
	return out
}

// ReplaceCFLargeN substitutes CF = TR·NC in every monomial.
func (s Sum) ReplaceCFLargeN() Sum {
	return s.mapFactor(Factor.ReplaceCFLargeN)
}

// ReplaceTR folds the numeric value tr of TR into every coefficient.
func (s Sum) ReplaceTR(tr float64) Sum {
	return s.mapFactor(func(f Factor) Factor { return f.ReplaceTR(tr) })
}

// Expand rewrites s as a polynomial in NC and TR only. Two sums describe the
// same quantity exactly when their expansions are Equal.
func (s Sum) Expand() Sum {
	return s.ReplaceCA().ReplaceCF()
}

// LeadingNC expands CA and the leading piece of CF, then keeps the monomials
// carrying the highest power of NC in their original order.
func (s Sum) LeadingNC() Sum {
	exp := s.ReplaceCA().ReplaceCFLargeN()
	if exp.IsZero() {
		return exp
	}
	top := math.MinInt
	for _, f := range exp.terms {
		top = max(top, f.OrderNC())
	}
	var out Sum
	for _, f := range exp.terms {
		if f.OrderNC() == top {
			out.addInPlace(f)
		}
	}
	return out
}

// Equal reports whether s and o hold the same monomials, irrespective of order.
func (s Sum) Equal(o Sum) bool {
	if len(s.terms) != len(o.terms) {
		return false
	}
	for _, f := range s.terms {
		found := false
		for _, g := range o.terms {
			if f.Like(g) && isZero(f.Coeff-g.Coeff) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Value evaluates s at NC=3, TR=1/2, CF=4/3, CA=3.
func (s Sum) Value() complex128 {
	var v complex128
	for _, f := range s.terms {
		v += f.Value()
	}
	return v
}

// ValueTR evaluates s at NC=3 with TR=tr.
func (s Sum) ValueTR(tr float64) complex128 {
	var v complex128
	for _, f := range s.terms {
		v += f.ValueTR(tr)
	}
	return v
}

// ValueLC evaluates the leading-colour projection of s.
func (s Sum) ValueLC() complex128 {
	return s.LeadingNC().Value()
}

// ValueLargeN evaluates s after CF → TR·NC.
func (s Sum) ValueLargeN() complex128 {
	var v complex128
	for _, f := range s.terms {
		v += f.ValueLargeN()
	}
	return v
}

// String renders s in entry order, e.g. "NC^2*TR - TR".
func (s Sum) String() string {
	if len(s.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, f := range s.terms {
		str := f.String()
		neg := imag(f.Coeff) == 0 && real(f.Coeff) < 0
		switch {
		case i == 0:
			b.WriteString(str)
		case neg:
			b.WriteString(" - ")
			b.WriteString(f.MulComplex(-1).String())
		default:
			b.WriteString(" + ")
			b.WriteString(str)
		}
	}
	return b.String()
}

func (s Sum) clone() Sum {
	return Sum{terms: s.Factors()}
}

func (s Sum) mapFactor(fn func(Factor) Factor) Sum {
	var out Sum
	for _, f := range s.terms {
		out.addInPlace(fn(f))
	}
	return out
}
