package colour

import (
	"errors"
	"strings"
)

// Amplitude is an ordered sum of terms together with the prefactor sum
// accumulated by the last evaluation.
type Amplitude struct {
	terms  []Term
	result Sum
}

// NewAmplitude returns the sum of ts.
func NewAmplitude(ts ...Term) Amplitude {
	a := Amplitude{}
	for _, t := range ts {
		a.Add(t)
	}
	return a
}

// Add appends t.
func (a *Amplitude) Add(t Term) {
	a.terms = append(a.terms, t.Clone())
}

// Terms returns copies of the terms of a.
func (a Amplitude) Terms() []Term {
	out := make([]Term, len(a.terms))
	for i, t := range a.terms {
		out[i] = t.Clone()
	}
	return out
}

// Len returns the number of terms.
func (a Amplitude) Len() int { return len(a.terms) }

// Result returns the sum accumulated by Evaluate or EvaluateLC.
func (a Amplitude) Result() Sum { return a.result }

// Clear removes all terms and the result.
func (a *Amplitude) Clear() {
	a.terms = nil
	a.result = Sum{}
}

func (a Amplitude) clone() Amplitude {
	return Amplitude{terms: a.Terms(), result: a.result.clone()}
}

// HConj returns the hermitian conjugate: every term conjugated, in reverse order.
func (a Amplitude) HConj() Amplitude {
	out := Amplitude{}
	for i := len(a.terms) - 1; i >= 0; i-- {
		out.terms = append(out.terms, a.terms[i].HConj())
	}
	return out
}

// Scale returns z·a.
func (a Amplitude) Scale(z complex128) Amplitude {
	out := Amplitude{}
	for _, t := range a.terms {
		c := t.Clone()
		c.cnum = c.cnum.MulComplex(z)
		out.terms = append(out.terms, c)
	}
	return out
}

// Multiply replaces a by the pairwise products of its terms with those of b.
// Indices are taken as they are; see ShiftToInternal.
func (a *Amplitude) Multiply(b Amplitude) {
	var out []Term
	for _, x := range a.terms {
		for _, y := range b.terms {
			c := x.Clone()
			c.PushTerm(y.Clone())
			out = append(out, c)
		}
	}
	a.terms = out
	a.result = Sum{}
}

// Mul returns a·b after moving the contracted indices of b above every index
// of a. Free indices of b are kept so that shared external legs contract.
func (a Amplitude) Mul(b Amplitude) Amplitude {
	out := a.clone()
	out.Multiply(b.ShiftToInternal(a.maxIndex() + 1))
	return out
}

// ShiftToInternal returns a copy of a with every contracted index raised by by.
func (a Amplitude) ShiftToInternal(by int) Amplitude {
	out := a.clone()
	for i := range out.terms {
		out.terms[i].shiftInds(by, false)
	}
	return out
}

func (a Amplitude) maxIndex() int {
	m := -1
	for _, t := range a.terms {
		m = max(m, t.maxIndex())
	}
	return m
}

// Simplify applies the term-preserving identities to every term.
func (a *Amplitude) Simplify() {
	for i := range a.terms {
		a.terms[i].Simplify()
	}
}

// Evaluate reduces every term, splitting terms where an identity produces a
// sum, and accumulates the prefactors into Result. Index misuse is reported
// before anything changes. Terms that cannot be fully contracted still
// contribute their partial prefactor; the returned error then wraps
// apperr.ErrNonReducible.
func (a *Amplitude) Evaluate() error {
	return a.evaluate(false)
}

// EvaluateLC is Evaluate followed by the leading-colour projection of Result.
func (a *Amplitude) EvaluateLC() error {
	return a.evaluate(true)
}

func (a *Amplitude) evaluate(toLC bool) error {
	for _, t := range a.terms {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	var (
		reduced []Term
		res     Sum
		errs    []error
	)
	for _, t := range a.terms {
		for _, r := range t.Reduce() {
			s, err := r.Result()
			if err != nil {
				errs = append(errs, err)
			}
			res = res.Add(s)
			reduced = append(reduced, r)
		}
	}
	if toLC {
		res = res.LeadingNC()
	}
	a.terms = reduced
	a.result = res
	return errors.Join(errs...)
}

// ScalarProduct returns <a|b>, the fully contracted product of the hermitian
// conjugate of a with b, at leading colour when toLC is set.
func (a Amplitude) ScalarProduct(b Amplitude, toLC bool) (Sum, error) {
	prod := a.HConj().Mul(b)
	var err error
	if toLC {
		err = prod.EvaluateLC()
	} else {
		err = prod.Evaluate()
	}
	return prod.Result(), err
}

// String renders a in the tensor grammar. A term whose prefactor is a single
// negative real monomial is written after " - ".
func (a Amplitude) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range a.terms {
		if i > 0 {
			if t.negative() {
				b.WriteString(" - ")
				t = t.Clone()
				t.cnum = t.cnum.MulComplex(-1)
			} else {
				b.WriteString(" + ")
			}
		}
		b.WriteString(t.String())
	}
	return b.String()
}
