package colour

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/sunc/internal/apperr"
)

// Term is a product of Kronecker deltas, generators and structure constants
// times a polynomial prefactor. An index occurring once is free; an index
// occurring twice is contracted.
//
// Push and PushTerm do not check indices. Use Validate, or build terms through
// the parser, to reject ill-formed products.
type Term struct {
	cnum   Sum
	deltas []Delta
	gens   []Fundamental
	fs     []Antisymmetric
	ds     []Symmetric

	// fi is the first index not used by any factor; fresh dummies are taken from here.
	fi int
}

// NewTerm returns the product of ts with unit prefactor.
func NewTerm(ts ...Tensor) Term {
	t := Term{cnum: NewSum(One())}
	for _, x := range ts {
		t.Push(x)
	}
	return t
}

// Push multiplies t by x.
func (t *Term) Push(x Tensor) {
	switch v := x.(type) {
	case Delta:
		t.deltas = append(t.deltas, v)
	case Fundamental:
		t.gens = append(t.gens, v)
	case Antisymmetric:
		t.fs = append(t.fs, v)
	case Symmetric:
		t.ds = append(t.ds, v)
	}
	for _, idx := range x.Indices() {
		t.fi = max(t.fi, idx+1)
	}
}

// PushTerm multiplies t by o as is, without renaming any index.
func (t *Term) PushTerm(o Term) {
	t.deltas = append(t.deltas, o.deltas...)
	t.gens = append(t.gens, o.gens...)
	t.fs = append(t.fs, o.fs...)
	t.ds = append(t.ds, o.ds...)
	t.cnum = t.cnum.Mul(o.cnum)
	t.fi = max(t.fi, o.fi)
}

// SetPrefactor replaces the prefactor by c.
func (t *Term) SetPrefactor(c Factor) { t.cnum = NewSum(c) }

// SetPrefactorSum replaces the prefactor by s.
func (t *Term) SetPrefactorSum(s Sum) { t.cnum = s }

// Prefactor returns the polynomial prefactor.
func (t Term) Prefactor() Sum { return t.cnum }

// IsZero reports whether the prefactor vanishes.
func (t Term) IsZero() bool { return t.cnum.IsZero() }

// Tensors returns the factors of t: deltas, generators, f's and d's in order.
func (t Term) Tensors() []Tensor {
	out := make([]Tensor, 0, len(t.deltas)+len(t.gens)+len(t.fs)+len(t.ds))
	for _, k := range t.deltas {
		out = append(out, k)
	}
	for _, g := range t.gens {
		out = append(out, g)
	}
	for _, f := range t.fs {
		out = append(out, f)
	}
	for _, d := range t.ds {
		out = append(out, d)
	}
	return out
}

// Clone returns a deep copy of t.
func (t Term) Clone() Term {
	return Term{
		cnum:   t.cnum.clone(),
		deltas: slices.Clone(t.deltas),
		gens:   slices.Clone(t.gens),
		fs:     slices.Clone(t.fs),
		ds:     slices.Clone(t.ds),
		fi:     t.fi,
	}
}

// Clear resets t to the zero term.
func (t *Term) Clear() { *t = Term{} }

// Mul returns t·o with every index of o moved above every index of t, so the
// two index spaces are disjoint and nothing contracts across the product.
func (t Term) Mul(o Term) Term {
	out := t.Clone()
	rhs := o.Clone()
	rhs.shiftInds(t.maxIndex()+1, true)
	out.PushTerm(rhs)
	return out
}

// HConj returns the hermitian conjugate of t. Generators swap their
// fundamental indices and are listed in reverse; every f is listed in reverse
// with its slots reversed, which costs one sign per f.
func (t Term) HConj() Term {
	out := Term{
		cnum:   t.cnum.Conj(),
		deltas: slices.Clone(t.deltas),
		ds:     slices.Clone(t.ds),
		fi:     t.fi,
	}
	for i := len(t.gens) - 1; i >= 0; i-- {
		g := t.gens[i]
		out.gens = append(out.gens, Fundamental{I: g.I, A: g.B, B: g.A})
	}
	for i := len(t.fs) - 1; i >= 0; i-- {
		f := t.fs[i]
		out.fs = append(out.fs, Antisymmetric{I: f.K, J: f.J, K: f.I})
		out.cnum = out.cnum.MulComplex(-1)
	}
	return out
}

// Validate reports index misuse: an index used both as adjoint and as
// fundamental, or an index occurring more than twice.
func (t Term) Validate() error {
	adjoint := make(map[int]bool)
	count := make(map[int]int)
	visit := func(idx int, adj bool) error {
		if prev, seen := adjoint[idx]; seen && prev != adj {
			return fmt.Errorf("colour: index %d used as adjoint and fundamental: %w", idx, apperr.ErrIndexMisuse)
		}
		adjoint[idx] = adj
		count[idx]++
		if count[idx] > 2 {
			return fmt.Errorf("colour: index %d occurs %d times: %w", idx, count[idx], apperr.ErrIndexMisuse)
		}
		return nil
	}
	var err error
	t.eachSlot(func(idx int, adj bool) {
		if err == nil {
			err = visit(idx, adj)
		}
	})
	return err
}

// eachSlot calls fn for every index slot with its representation.
func (t Term) eachSlot(fn func(idx int, adj bool)) {
	for _, k := range t.deltas {
		fn(k.I, k.Adj)
		fn(k.J, k.Adj)
	}
	for _, g := range t.gens {
		fn(g.I, true)
		fn(g.A, false)
		fn(g.B, false)
	}
	for _, f := range t.fs {
		fn(f.I, true)
		fn(f.J, true)
		fn(f.K, true)
	}
	for _, d := range t.ds {
		fn(d.I, true)
		fn(d.J, true)
		fn(d.K, true)
	}
}

// mapSlots rewrites every index slot through fn.
func (t *Term) mapSlots(fn func(idx int) int) {
	for i, k := range t.deltas {
		t.deltas[i] = Delta{I: fn(k.I), J: fn(k.J), Adj: k.Adj}
	}
	for i, g := range t.gens {
		t.gens[i] = Fundamental{I: fn(g.I), A: fn(g.A), B: fn(g.B)}
	}
	for i, f := range t.fs {
		t.fs[i] = Antisymmetric{I: fn(f.I), J: fn(f.J), K: fn(f.K)}
	}
	for i, d := range t.ds {
		t.ds[i] = Symmetric{I: fn(d.I), J: fn(d.J), K: fn(d.K)}
	}
}

func (t Term) counts() map[int]int {
	out := make(map[int]int)
	t.eachSlot(func(idx int, _ bool) { out[idx]++ })
	return out
}

// maxIndex returns the largest index in use, or -1 for a bare prefactor.
func (t Term) maxIndex() int {
	m := -1
	t.eachSlot(func(idx int, _ bool) { m = max(m, idx) })
	return m
}

// shiftInds adds by to every contracted index, or to every index when all is set.
func (t *Term) shiftInds(by int, all bool) {
	cnt := t.counts()
	t.mapSlots(func(idx int) int {
		if all || cnt[idx] > 1 {
			return idx + by
		}
		return idx
	})
	t.fi = t.maxIndex() + 1
}

// rename replaces every occurrence of from by to.
func (t *Term) rename(from, to int) {
	t.mapSlots(func(idx int) int {
		if idx == from {
			return to
		}
		return idx
	})
}

// alloc returns a fresh index.
func (t *Term) alloc() int {
	t.fi = max(t.fi, t.maxIndex()+1)
	idx := t.fi
	t.fi++
	return idx
}

// negative reports whether the prefactor is one monomial with a negative real
// coefficient.
func (t Term) negative() bool {
	if t.cnum.Len() != 1 {
		return false
	}
	c := t.cnum.terms[0].Coeff
	return imag(c) == 0 && real(c) < 0
}

// String renders t in the tensor grammar, e.g. "CA*K[3,4]".
func (t Term) String() string {
	if t.cnum.IsZero() {
		return "0"
	}
	var parts []string
	switch {
	case t.cnum.Len() > 1:
		parts = append(parts, "("+t.cnum.String()+")")
	case t.cnum.terms[0] != One():
		parts = append(parts, t.cnum.String())
	}
	for _, x := range t.Tensors() {
		parts = append(parts, x.String())
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, "*")
}
