package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/sunc/internal/apperr"
	"github.com/starford/sunc/internal/colour"
)

func TestParseFactor(t *testing.T) {
	cases := []struct {
		in   string
		want colour.Factor
	}{
		{"(0,1)*NC^2*TR", colour.NewFactor(1i, 2, 1, 0, 0)},
		{"-0.5*NC^-1*TR", colour.NewFactor(-0.5, -1, 1, 0, 0)},
		{"NC**3 * CA", colour.NewFactor(1, 3, 0, 0, 1)},
		{"2 CF CF", colour.NewFactor(2, 0, 0, 2, 0)},
		{"3", colour.NewFactor(3, 0, 0, 0, 0)},
		{"1e-3*TR", colour.NewFactor(0.001, 0, 1, 0, 0)},
		{"- CA ^ 2", colour.NewFactor(-1, 0, 0, 0, 2)},
	}
	for _, c := range cases {
		got, err := ParseFactor(c.in)
		if err != nil {
			t.Errorf("ParseFactor(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseFactor(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseFactor_Errors(t *testing.T) {
	for _, in := range []string{"", "XY", "NC^", "NC^x", "t[1,2,3]", "(1,2"} {
		if _, err := ParseFactor(in); !errors.Is(err, apperr.ErrParse) {
			t.Errorf("ParseFactor(%q) err = %v, want ErrParse", in, err)
		}
	}
}

func TestParseFactor_RoundTrip(t *testing.T) {
	for _, f := range []colour.Factor{
		colour.NewFactor(-0.5, -1, 1, 0, 0),
		colour.NewFactor(complex(0.25, -3), 2, 0, 1, 1),
		colour.NewFactor(1, 0, 0, 0, 3),
		colour.NewFactor(-1, 1, 0, 0, 0),
		colour.NewFactor(7, 0, 0, 0, 0),
	} {
		got, err := ParseFactor(f.String())
		if err != nil {
			t.Errorf("ParseFactor(%q): %v", f, err)
			continue
		}
		if got != f {
			t.Errorf("round trip of %q = %v", f, got)
		}
	}
}

func TestParseSum(t *testing.T) {
	got, err := ParseSum("NC^2*TR - TR + 2*CF - 1e-3*NC")
	if err != nil {
		t.Fatalf("ParseSum: %v", err)
	}
	want := colour.NewSum(
		colour.NewFactor(1, 2, 1, 0, 0),
		colour.NewFactor(-1, 0, 1, 0, 0),
		colour.NewFactor(2, 0, 0, 1, 0),
		colour.NewFactor(-0.001, 1, 0, 0, 0),
	)
	if !got.Equal(want) {
		t.Errorf("ParseSum = %v, want %v", got, want)
	}

	collapsed, err := ParseSum("TR + TR - 2 TR")
	if err != nil {
		t.Fatalf("ParseSum: %v", err)
	}
	if !collapsed.IsZero() {
		t.Errorf("TR + TR - 2 TR = %v, want 0", collapsed)
	}

	s := colour.NewSum(colour.NewFactor(1, 2, 1, 0, 0), colour.NewFactor(-1, -1, 1, 0, 0))
	back, err := ParseSum(s.String())
	if err != nil || !back.Equal(s) {
		t.Errorf("round trip of %q = %v, %v", s, back, err)
	}
}

func TestParseTensor(t *testing.T) {
	cases := []struct {
		in   string
		want colour.Tensor
	}{
		{"k[1,2]", colour.Delta{I: 1, J: 2}},
		{"K[3, 4]", colour.Delta{I: 3, J: 4, Adj: true}},
		{"t[1,2,3]", colour.Fundamental{I: 1, A: 2, B: 3}},
		{"f[1,2,3]", colour.Antisymmetric{I: 1, J: 2, K: 3}},
		{"d[4,5,6]", colour.Symmetric{I: 4, J: 5, K: 6}},
	}
	for _, c := range cases {
		got, err := ParseTensor(c.in)
		if err != nil {
			t.Errorf("ParseTensor(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseTensor(%q) = %v, want %v", c.in, got, c.want)
		}
	}
	for _, in := range []string{"t[1,2]", "k[1,2,3]", "x[1,2]", "f[1,2,a]", "t[-1,2,3]"} {
		if _, err := ParseTensor(in); !errors.Is(err, apperr.ErrParse) {
			t.Errorf("ParseTensor(%q) err = %v, want ErrParse", in, err)
		}
	}
}

func TestParseTerm(t *testing.T) {
	a, err := ParseTerm("t[1,2,3] t[1,3,2]")
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	b, err := ParseTerm("t[1,2,3]*t[1,3,2]")
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	if a.String() != b.String() || a.String() != "t[1,2,3]*t[1,3,2]" {
		t.Errorf("separators disagree: %q vs %q", a, b)
	}

	c, err := ParseTerm("-(0,1)*CA*f[1,2,3]")
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	if !c.Prefactor().Equal(colour.NewSum(colour.NewFactor(-1i, 0, 0, 0, 1))) {
		t.Errorf("prefactor = %v", c.Prefactor())
	}

	for _, in := range []string{"(NC - TR)*t[1,2,3]", "-NC^-1*TR*k[2,3]*k[4,5]", "CA*K[3,4]", "1"} {
		tm, err := ParseTerm(in)
		if err != nil {
			t.Errorf("ParseTerm(%q): %v", in, err)
			continue
		}
		if tm.String() != in {
			t.Errorf("round trip of %q = %q", in, tm)
		}
	}
}

func TestParseTerm_Errors(t *testing.T) {
	if _, err := ParseTerm("t[1,2,3]*t[2,3,4]"); !errors.Is(err, apperr.ErrIndexMisuse) {
		t.Errorf("mixed index err = %v, want ErrIndexMisuse", err)
	}
	for _, in := range []string{"t[1,2,3", "t[1,2,3]*q", "", "t[1,2,3]]"} {
		if _, err := ParseTerm(in); !errors.Is(err, apperr.ErrParse) {
			t.Errorf("ParseTerm(%q) err = %v, want ErrParse", in, err)
		}
	}
}

func TestParseAmplitude(t *testing.T) {
	a, err := ParseAmplitude("f[1,2,5]*f[5,3,4] + f[2,3,5]*f[5,1,4] - f[1,3,5]*f[5,2,4]")
	if err != nil {
		t.Fatalf("ParseAmplitude: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("got %d terms, want 3", a.Len())
	}
	last := a.Terms()[2]
	if !last.Prefactor().Equal(colour.NewSum(colour.NewFactor(-1, 0, 0, 0, 0))) {
		t.Errorf("third prefactor = %v, want -1", last.Prefactor())
	}
}

func TestParseAmplitude_EvaluatedRoundTrip(t *testing.T) {
	a, err := ParseAmplitude("t[1,2,3] t[1,4,5] + (0,0.5)*f[6,7,8]*f[6,7,9]")
	if err != nil {
		t.Fatalf("ParseAmplitude: %v", err)
	}
	if err := a.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	b, err := ParseAmplitude(a.String())
	if err != nil {
		t.Fatalf("ParseAmplitude(%q): %v", a, err)
	}
	if b.String() != a.String() {
		t.Errorf("round trip = %q, want %q", b, a)
	}
}

func TestParseAmplitude_Errors(t *testing.T) {
	for _, in := range []string{"", "t[1,2,3] +", "t[1,2,3] + x[1]"} {
		if _, err := ParseAmplitude(in); !errors.Is(err, apperr.ErrParse) {
			t.Errorf("ParseAmplitude(%q) err = %v, want ErrParse", in, err)
		}
	}
}

func TestParseTerm_DanglingStar(t *testing.T) {
	for _, in := range []string{"NC*", "*t[1,2,3]", "NC * * TR", "t[1,2,3]* ", "CA*t[1,2,3]*"} {
		if _, err := ParseTerm(in); !errors.Is(err, apperr.ErrParse) {
			t.Errorf("ParseTerm(%q) err = %v, want ErrParse", in, err)
		}
	}
	if _, err := ParseAmplitude("NC*"); !errors.Is(err, apperr.ErrParse) {
		t.Errorf("ParseAmplitude(%q) err = %v, want ErrParse", "NC*", err)
	}
	if _, err := ParseTerm("NC * TR*t[1,2,3]"); err != nil {
		t.Errorf("spaced product: %v", err)
	}
}

func TestParseTerm_PowerOfSum(t *testing.T) {
	_, err := ParseTerm("(NC+TR)^2*t[1,2,3]")
	if !errors.Is(err, apperr.ErrParse) {
		t.Fatalf("err = %v, want ErrParse", err)
	}
	if !strings.Contains(err.Error(), "powers of parenthesised sums") {
		t.Errorf("err = %v", err)
	}
}
