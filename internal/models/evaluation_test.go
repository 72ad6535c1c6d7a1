package models

import (
	"math"
	"testing"
)

func TestNewComplex_NegativeZero(t *testing.T) {
	c := NewComplex(complex(math.Copysign(0, -1), math.Copysign(0, -1)))
	if math.Signbit(c.Re) || math.Signbit(c.Im) {
		t.Errorf("NewComplex kept a negative zero: %+v", c)
	}
}

func TestComplex_String(t *testing.T) {
	cases := []struct {
		in   Complex
		want string
	}{
		{Complex{}, "0"},
		{Complex{Re: 4}, "4"},
		{Complex{Im: -36}, "-36i"},
		{Complex{Re: 1.5, Im: 2}, "1.5+2i"},
		{Complex{Re: -0.25, Im: -1}, "-0.25-1i"},
		{NewComplex(complex(4.0/3, 0)), "1.33333333333"},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("%+v.String() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMode(t *testing.T) {
	if !ModeLC.LeadingColour() || ModeFull.LeadingColour() {
		t.Error("LeadingColour mismatch")
	}
	if Mode("nlo").Valid() || !ModeFull.Valid() {
		t.Error("Valid mismatch")
	}
}
