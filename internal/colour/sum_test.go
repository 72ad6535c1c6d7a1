package colour

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/starford/sunc/internal/apperr"
)

func assertCanonical(t *testing.T, s Sum) {
	t.Helper()
	fs := s.Factors()
	for i, f := range fs {
		if f.IsZero() {
			t.Errorf("entry %d of %v is zero", i, s)
		}
		for j := i + 1; j < len(fs); j++ {
			if f.Like(fs[j]) {
				t.Errorf("entries %d and %d of %v share exponents", i, j, s)
			}
		}
	}
}

func randomSum(r *rand.Rand) Sum {
	var s Sum
	for range r.IntN(4) + 1 {
		s = s.AddFactor(NewFactor(complex(float64(r.IntN(7)-3), float64(r.IntN(3)-1)),
			r.IntN(5)-2, r.IntN(3), r.IntN(3), r.IntN(3)))
	}
	return s
}

func TestSum_Collapse(t *testing.T) {
	tr := NewFactor(1, 0, 1, 0, 0)
	s := NewSum(tr, tr, tr.MulComplex(-2), NewFactor(1, 0, 0, 0, 1))
	if s.Len() != 1 || s.String() != "CA" {
		t.Errorf("collapse = %v, want CA", s)
	}
	if z := NewSum(tr).Add(NewSum(tr.MulComplex(-1))); !z.IsZero() || z.String() != "0" {
		t.Errorf("TR - TR = %v, want 0", z)
	}
}

func TestSum_AlgebraProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 50; i++ {
		a, b, c := randomSum(r), randomSum(r), randomSum(r)

		for _, s := range []Sum{a.Add(b), a.Mul(b), a.Mul(b).Add(c), a.Conj()} {
			assertCanonical(t, s)
		}
		if !a.Add(b).Equal(b.Add(a)) {
			t.Fatalf("addition not commutative: %v, %v", a, b)
		}
		if !a.Add(b).Add(c).Equal(a.Add(b.Add(c))) {
			t.Fatalf("addition not associative: %v, %v, %v", a, b, c)
		}
		if !a.Mul(b).Equal(b.Mul(a)) {
			t.Fatalf("multiplication not commutative: %v, %v", a, b)
		}
		if !a.Mul(b).Mul(c).Equal(a.Mul(b.Mul(c))) {
			t.Fatalf("multiplication not associative: %v, %v, %v", a, b, c)
		}
		if !a.Mul(b.Add(c)).Equal(a.Mul(b).Add(a.Mul(c))) {
			t.Fatalf("multiplication not distributive: %v, %v, %v", a, b, c)
		}
		if !a.Conj().Conj().Equal(a) {
			t.Fatalf("conj not an involution: %v", a)
		}
	}
}

func TestSum_FactorAssociativity(t *testing.T) {
	a := NewFactor(2, 1, 0, 1, 0)
	b := NewFactor(-1i, -2, 1, 0, 0)
	c := NewFactor(0.5, 0, 0, 0, 3)
	if a.Mul(b).Mul(c) != a.Mul(b.Mul(c)) {
		t.Error("monomial product not associative")
	}
	if a.Mul(b) != b.Mul(a) {
		t.Error("monomial product not commutative")
	}
}

func TestSum_LeadingNC(t *testing.T) {
	s := NewSum(NewFactor(1, 2, 1, 0, 0), NewFactor(-1, 0, 1, 0, 0), NewFactor(1, 0, 0, 1, 0))
	got := s.LeadingNC()
	if !got.Equal(NewSum(NewFactor(1, 2, 1, 0, 0))) {
		t.Errorf("leading NC of %v = %v, want NC^2*TR", s, got)
	}

	tie := NewSum(NewFactor(1, 2, 0, 0, 0), NewFactor(1, 1, 0, 0, 1))
	got = tie.LeadingNC()
	fs := got.Factors()
	if len(fs) != 2 || fs[0] != NewFactor(1, 2, 0, 0, 0) || fs[1] != NewFactor(2, 2, 1, 0, 0) {
		t.Errorf("leading NC of %v = %v, want NC^2 + 2*NC^2*TR in input order", tie, got)
	}
}

func TestSum_LeadingNCAfterCancellation(t *testing.T) {
	// CF*NC - TR*NC^2 cancels at leading order and leaves -TR.
	s := NewSum(NewFactor(1, 1, 0, 1, 0), NewFactor(-1, 2, 1, 0, 0))
	got := s.Expand().LeadingNC()
	if !got.Equal(NewSum(NewFactor(-1, 0, 1, 0, 0))) {
		t.Errorf("leading NC = %v, want -TR", got)
	}
}

func TestSum_DivFactor(t *testing.T) {
	s := NewSum(NewFactor(2, 2, 1, 0, 0), NewFactor(-2, 0, 1, 0, 0))
	q, err := s.DivFactor(NewFactor(2, 0, 1, 0, 0))
	if err != nil {
		t.Fatalf("DivFactor: %v", err)
	}
	if !q.Equal(NewSum(NewFactor(1, 2, 0, 0, 0), NewFactor(-1, 0, 0, 0, 0))) {
		t.Errorf("quotient = %v", q)
	}
	if _, err := s.DivFactor(Factor{}); !errors.Is(err, apperr.ErrDivisionByZero) {
		t.Errorf("err = %v, want ErrDivisionByZero", err)
	}
}

func TestSum_ValuesAndString(t *testing.T) {
	s := NewSum(NewFactor(1, 2, 1, 0, 0), NewFactor(-1, 0, 1, 0, 0))
	if got := s.String(); got != "NC^2*TR - TR" {
		t.Errorf("String = %q", got)
	}
	approx(t, "value", s.Value(), 4)
	approx(t, "LC value", s.ValueLC(), 4.5)

	cf := NewSum(NewFactor(1, 1, 0, 1, 0))
	approx(t, "CF*NC large N", cf.ValueLargeN(), 4.5)
	if got := cf.ReplaceCF().ReplaceTR(0.5); !got.Equal(NewSum(NewFactor(0.5, 2, 0, 0, 0), NewFactor(-0.5, 0, 0, 0, 0))) {
		t.Errorf("CF*NC with TR=1/2 = %v", got)
	}
}

func TestSum_Clear(t *testing.T) {
	s := NewSum(One())
	s.Clear()
	if !s.IsZero() {
		t.Errorf("cleared sum = %v", s)
	}
}
