package colour

import (
	"errors"
	"slices"
	"testing"

	"github.com/starford/sunc/internal/apperr"
)

func assertResult(t *testing.T, tm Term, want Sum) {
	t.Helper()
	got, err := tm.Result()
	if err != nil {
		t.Fatalf("Result(%s): %v", tm, err)
	}
	if !got.Expand().Equal(want.Expand()) {
		t.Errorf("Result = %v, want %v", got, want)
	}
}

func assertTensors(t *testing.T, tm Term, want ...Tensor) {
	t.Helper()
	if got := tm.Tensors(); !slices.Equal(got, want) {
		t.Errorf("tensors = %v, want %v", got, want)
	}
}

func TestTerm_FundamentalCasimir(t *testing.T) {
	tm := NewTerm(Fundamental{1, 2, 3}, Fundamental{1, 3, 2})
	assertResult(t, tm, NewSum(NewFactor(1, 1, 0, 1, 0)))
}

func TestTerm_OpenCasimirLeavesDelta(t *testing.T) {
	tm := NewTerm(Fundamental{1, 2, 3}, Fundamental{1, 3, 4})
	tm.Simplify()
	assertTensors(t, tm, Delta{I: 2, J: 4})
	if !tm.Prefactor().Equal(NewSum(NewFactor(1, 0, 0, 1, 0))) {
		t.Errorf("prefactor = %v, want CF", tm.Prefactor())
	}
}

func TestTerm_AdjointCasimir(t *testing.T) {
	assertResult(t, NewTerm(Antisymmetric{1, 2, 3}, Antisymmetric{1, 2, 3}),
		NewSum(NewFactor(1, 2, 0, 0, 1), NewFactor(-1, 0, 0, 0, 1)))

	open := NewTerm(Antisymmetric{1, 2, 3}, Antisymmetric{1, 2, 4})
	open.Simplify()
	assertTensors(t, open, Delta{I: 3, J: 4, Adj: true})
	if !open.Prefactor().Equal(NewSum(NewFactor(1, 0, 0, 0, 1))) {
		t.Errorf("prefactor = %v, want CA", open.Prefactor())
	}
	approx(t, "CA", open.Prefactor().Value(), 3)
}

func TestTerm_StructurePairSign(t *testing.T) {
	// f^{abc} f^{bac} = -CA (NC^2-1)
	assertResult(t, NewTerm(Antisymmetric{1, 2, 3}, Antisymmetric{2, 1, 3}),
		NewSum(NewFactor(-1, 2, 0, 0, 1), NewFactor(1, 0, 0, 0, 1)))
}

func TestTerm_SymmetricPair(t *testing.T) {
	tm := NewTerm(Symmetric{1, 2, 3}, Symmetric{1, 2, 3})
	want := NewSum(NewFactor(2, 3, 1, 0, 0), NewFactor(-10, 1, 1, 0, 0), NewFactor(8, -1, 1, 0, 0))
	assertResult(t, tm, want)
	approx(t, "d.d", want.Value(), 40.0/3)
}

func TestTerm_MixedPairVanishes(t *testing.T) {
	tm := NewTerm(Antisymmetric{1, 2, 3}, Symmetric{1, 2, 3})
	got, err := tm.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if !got.IsZero() || !tm.IsZero() {
		t.Errorf("f.d = %v, want 0", got)
	}
}

func TestTerm_ZeroDetection(t *testing.T) {
	for _, tm := range []Term{
		NewTerm(Antisymmetric{1, 1, 2}),
		NewTerm(Symmetric{1, 2, 2}),
		NewTerm(Fundamental{1, 2, 2}),
	} {
		if tm.Simplify(); !tm.IsZero() {
			t.Errorf("%s did not vanish", tm)
		}
	}
}

func TestTerm_DeltaEvaluation(t *testing.T) {
	assertResult(t, NewTerm(Delta{I: 1, J: 1}), NewSum(NewFactor(1, 1, 0, 0, 0)))
	assertResult(t, NewTerm(Delta{I: 1, J: 1, Adj: true}),
		NewSum(NewFactor(1, 2, 0, 0, 0), NewFactor(-1, 0, 0, 0, 0)))

	chain := NewTerm(Delta{I: 1, J: 2}, Delta{I: 2, J: 3})
	chain.Simplify()
	assertTensors(t, chain, Delta{I: 1, J: 3})
}

func TestTerm_TraceOfTwo(t *testing.T) {
	tm := NewTerm(Fundamental{1, 2, 3}, Fundamental{4, 3, 2},
		Fundamental{1, 5, 6}, Fundamental{4, 6, 5})
	assertResult(t, tm, NewSum(NewFactor(1, 2, 2, 0, 0), NewFactor(-1, 0, 2, 0, 0)))
}

func TestTerm_TraceOfFourAlternating(t *testing.T) {
	// Tr(t^a t^b t^a t^b) = -TR CF
	tm := NewTerm(Fundamental{1, 10, 11}, Fundamental{2, 11, 12},
		Fundamental{1, 12, 13}, Fundamental{2, 13, 10})
	assertResult(t, tm, NewSum(NewFactor(-1, 0, 1, 1, 0)))
}

func TestTerm_StructureChain(t *testing.T) {
	f := NewTerm(Antisymmetric{1, 2, 3}, Fundamental{2, 4, 5}, Fundamental{3, 5, 6})
	f.Simplify()
	assertTensors(t, f, Fundamental{1, 4, 6})
	if !f.Prefactor().Equal(NewSum(NewFactor(0.5i, 0, 0, 0, 1))) {
		t.Errorf("f t t prefactor = %v, want i CA/2", f.Prefactor())
	}

	d := NewTerm(Symmetric{1, 2, 3}, Fundamental{2, 4, 5}, Fundamental{3, 5, 6})
	d.Simplify()
	assertTensors(t, d, Fundamental{1, 4, 6})
	if !d.Prefactor().Equal(NewSum(NewFactor(1, 1, 1, 0, 0), NewFactor(-4, -1, 1, 0, 0))) {
		t.Errorf("d t t prefactor = %v", d.Prefactor())
	}
}

func TestTerm_SimplifyDoesNotFierz(t *testing.T) {
	tm := NewTerm(Fundamental{1, 2, 3}, Fundamental{1, 4, 5})
	tm.Simplify()
	assertTensors(t, tm, Fundamental{1, 2, 3}, Fundamental{1, 4, 5})

	_, err := tm.Result()
	if !errors.Is(err, apperr.ErrNonReducible) {
		t.Errorf("err = %v, want ErrNonReducible", err)
	}
}

func TestTerm_ReduceFierz(t *testing.T) {
	parts := NewTerm(Fundamental{1, 2, 3}, Fundamental{1, 4, 5}).Reduce()
	if len(parts) != 2 {
		t.Fatalf("got %d terms, want 2: %v", len(parts), parts)
	}
	assertTensors(t, parts[0], Delta{I: 2, J: 5}, Delta{I: 4, J: 3})
	if !parts[0].Prefactor().Equal(NewSum(NewFactor(1, 0, 1, 0, 0))) {
		t.Errorf("cross prefactor = %v, want TR", parts[0].Prefactor())
	}
	assertTensors(t, parts[1], Delta{I: 2, J: 3}, Delta{I: 4, J: 5})
	if !parts[1].Prefactor().Equal(NewSum(NewFactor(-1, -1, 1, 0, 0))) {
		t.Errorf("direct prefactor = %v, want -TR/NC", parts[1].Prefactor())
	}
}

func TestTerm_SimplifyIdempotent(t *testing.T) {
	tm := NewTerm(Antisymmetric{1, 2, 7}, Fundamental{7, 3, 4}, Fundamental{5, 4, 6},
		Fundamental{5, 6, 8}, Delta{I: 8, J: 9})
	tm.Simplify()
	first := tm.String()
	tm.Simplify()
	if got := tm.String(); got != first {
		t.Errorf("second Simplify changed %q to %q", first, got)
	}
}

func TestTerm_Validate(t *testing.T) {
	good := NewTerm(Fundamental{1, 2, 3}, Fundamental{1, 3, 4})
	if err := good.Validate(); err != nil {
		t.Errorf("Validate(%s) = %v", good, err)
	}

	mixed := NewTerm(Fundamental{1, 2, 3}, Fundamental{2, 3, 4})
	if err := mixed.Validate(); !errors.Is(err, apperr.ErrIndexMisuse) {
		t.Errorf("mixed representation err = %v, want ErrIndexMisuse", err)
	}

	thrice := NewTerm(Fundamental{1, 2, 3}, Fundamental{1, 3, 4}, Fundamental{1, 4, 5})
	if err := thrice.Validate(); !errors.Is(err, apperr.ErrIndexMisuse) {
		t.Errorf("triple occurrence err = %v, want ErrIndexMisuse", err)
	}
}

func TestTerm_MulKeepsIndexSpacesDisjoint(t *testing.T) {
	lhs := NewTerm(Fundamental{1, 2, 3})
	rhs := NewTerm(Fundamental{7, 3, 8}, Fundamental{7, 8, 2})
	got := lhs.Mul(rhs)
	assertTensors(t, got, Fundamental{1, 2, 3}, Fundamental{11, 7, 12}, Fundamental{11, 12, 6})
	if err := got.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestTerm_MulFreeIndexMeetsDummy(t *testing.T) {
	lhs := NewTerm(Fundamental{1, 2, 3}, Fundamental{1, 3, 4})
	rhs := NewTerm(Fundamental{5, 3, 6})
	got := lhs.Mul(rhs)
	assertTensors(t, got, Fundamental{1, 2, 3}, Fundamental{1, 3, 4}, Fundamental{10, 8, 11})
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.String() != "t[1,2,3]*t[1,3,4]*t[10,8,11]" {
		t.Errorf("product = %q", got)
	}
}

func TestTerm_HConj(t *testing.T) {
	tm := NewTerm(Antisymmetric{1, 2, 3})
	tm.SetPrefactor(NewFactor(1i, 0, 0, 0, 0))
	h := tm.HConj()
	assertTensors(t, h, Antisymmetric{3, 2, 1})
	if !h.Prefactor().Equal(NewSum(NewFactor(1i, 0, 0, 0, 0))) {
		t.Errorf("prefactor = %v, want i", h.Prefactor())
	}

	g := NewTerm(Fundamental{1, 2, 3}, Fundamental{4, 3, 5})
	assertTensors(t, g.HConj(), Fundamental{4, 5, 3}, Fundamental{1, 3, 2})
}

func TestTerm_HConjInvolution(t *testing.T) {
	tm := NewTerm(Delta{I: 9, J: 10}, Fundamental{1, 2, 3}, Fundamental{4, 3, 5},
		Antisymmetric{1, 4, 6}, Antisymmetric{6, 7, 8}, Symmetric{7, 8, 11})
	tm.SetPrefactorSum(NewSum(NewFactor(complex(2, -1), 1, 0, 0, 0), NewFactor(0.5i, 0, 1, 1, 0)))
	if got := tm.HConj().HConj().String(); got != tm.String() {
		t.Errorf("hconj twice = %q, want %q", got, tm.String())
	}
}

func TestTerm_String(t *testing.T) {
	tm := NewTerm(Antisymmetric{1, 2, 3}, Antisymmetric{1, 2, 4})
	tm.Simplify()
	if got := tm.String(); got != "CA*K[3,4]" {
		t.Errorf("String = %q", got)
	}
	if got := NewTerm().String(); got != "1" {
		t.Errorf("empty term = %q", got)
	}
	sum := NewTerm(Fundamental{1, 2, 3})
	sum.SetPrefactorSum(NewSum(NewFactor(1, 1, 0, 0, 0), NewFactor(-1, 0, 1, 0, 0)))
	if got := sum.String(); got != "(NC - TR)*t[1,2,3]" {
		t.Errorf("String = %q", got)
	}
	var zero Term
	if got := zero.String(); got != "0" {
		t.Errorf("zero term = %q", got)
	}
}
