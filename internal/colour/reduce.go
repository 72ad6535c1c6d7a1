package colour

import (
	"fmt"
	"slices"

	"github.com/starford/sunc/internal/apperr"
)

// Coefficients picked up by the SU(N) identities. With Tr(t^a t^b) = TR δ^{ab},
// [t^a,t^b] = i f^{abc} t^c and {t^a,t^b} = (2TR/NC) δ^{ab} + d^{abc} t^c.
var (
	dimFundamental = NewSum(NewFactor(1, 1, 0, 0, 0))                             // δ_{ii} = NC
	dimAdjoint     = NewSum(NewFactor(1, 2, 0, 0, 0), NewFactor(-1, 0, 0, 0, 0))  // δ^{aa} = NC² − 1
	casimirF       = NewSum(NewFactor(1, 0, 0, 1, 0))                             // t^a t^a = CF
	sandwich       = NewSum(NewFactor(-1, -1, 1, 0, 0))                           // t^a t^b t^a = −TR/NC t^b
	traceTwo       = NewSum(NewFactor(1, 0, 1, 0, 0))                             // Tr(t^a t^b) = TR δ^{ab}
	casimirA       = NewSum(NewFactor(1, 0, 0, 0, 1))                             // f^{acd} f^{bcd} = CA δ^{ab}
	fTT            = NewSum(NewFactor(0.5i, 0, 0, 0, 1))                          // f^{abc} t^b t^c = i CA/2 t^a
	dTT            = NewSum(NewFactor(1, 1, 1, 0, 0), NewFactor(-4, -1, 1, 0, 0)) // d^{abc} t^b t^c = TR(NC²−4)/NC t^a
	dd             = NewSum(NewFactor(2, 1, 1, 0, 0), NewFactor(-8, -1, 1, 0, 0)) // d^{acd} d^{bcd} = 2TR(NC²−4)/NC δ^{ab}
)

// Simplify contracts indices with identities that keep t a single product:
// zero detection, δ evaluation, t^a t^a, t^a t^b t^a, Tr(t^a t^b),
// f·t·t, d·t·t and f/d pairs sharing two or more indices. Splitting
// identities such as Fierz are left to Reduce. Simplify is idempotent.
func (t *Term) Simplify() {
	for {
		if t.replaceZero() {
			return
		}
		t.evaluateDeltas()
		if t.replaceZero() {
			return
		}
		if !t.replaceAdjoint() {
			return
		}
	}
}

// Reduce contracts every internal index of t, splitting it into several
// products where an identity requires a sum. Vanishing products are dropped.
func (t Term) Reduce() []Term {
	work := []Term{t.Clone()}
	var done []Term
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		cur.Simplify()
		if cur.IsZero() {
			continue
		}
		parts, ok := cur.split()
		if !ok {
			done = append(done, cur)
			continue
		}
		slices.Reverse(parts)
		work = append(work, parts...)
	}
	return done
}

// Result simplifies t and returns its prefactor. If contracted adjoint
// indices survive, the partial prefactor is returned with an error wrapping
// apperr.ErrNonReducible.
func (t *Term) Result() (Sum, error) {
	t.Simplify()
	if left := t.contractedAdjoint(); len(left) > 0 {
		return t.cnum, fmt.Errorf("colour: adjoint indices %v left in %s: %w", left, t, apperr.ErrNonReducible)
	}
	return t.cnum, nil
}

func (t Term) contractedAdjoint() []int {
	cnt := t.counts()
	var out []int
	t.eachSlot(func(idx int, adj bool) {
		if adj && cnt[idx] > 1 && !slices.Contains(out, idx) {
			out = append(out, idx)
		}
	})
	slices.Sort(out)
	return out
}

func (t *Term) zero() {
	*t = Term{fi: t.fi}
}

// replaceZero clears t and reports true when t vanishes: a zero prefactor,
// an f or d with a repeated index, or a traced generator.
func (t *Term) replaceZero() bool {
	vanishes := t.cnum.IsZero()
	for _, f := range t.fs {
		vanishes = vanishes || f.I == f.J || f.J == f.K || f.I == f.K
	}
	for _, d := range t.ds {
		vanishes = vanishes || d.I == d.J || d.J == d.K || d.I == d.K
	}
	for _, g := range t.gens {
		vanishes = vanishes || g.A == g.B
	}
	if vanishes {
		t.zero()
	}
	return vanishes
}

// evaluateDeltas removes every delta with a contracted index by renaming the
// other occurrence, and traces deltas of the form δ_{ii}. Deltas between two
// free indices stay.
func (t *Term) evaluateDeltas() {
	for changed := true; changed; {
		changed = false
		for n, k := range t.deltas {
			if k.I == k.J {
				t.deltas = without(t.deltas, n)
				if k.Adj {
					t.cnum = t.cnum.Mul(dimAdjoint)
				} else {
					t.cnum = t.cnum.Mul(dimFundamental)
				}
				changed = true
				break
			}
			cnt := t.counts()
			var from, to int
			switch {
			case cnt[k.I] > 1:
				from, to = k.I, k.J
			case cnt[k.J] > 1:
				from, to = k.J, k.I
			default:
				continue
			}
			t.deltas = without(t.deltas, n)
			t.rename(from, to)
			changed = true
			break
		}
	}
}

// replaceAdjoint applies one term-preserving identity and reports whether it did.
func (t *Term) replaceAdjoint() bool {
	return t.replaceStructurePair() ||
		t.replaceGeneratorChain() ||
		t.replaceStructureChain()
}

// replaceStructurePair contracts two structure constants sharing at least two
// indices: f·f → CA δ, d·d → 2TR(NC²−4)/NC δ, f·d → 0.
func (t *Term) replaceStructurePair() bool {
	type triple struct {
		i, j, k int
		sym     bool
	}
	var all []triple
	for _, f := range t.fs {
		all = append(all, triple{f.I, f.J, f.K, false})
	}
	for _, d := range t.ds {
		all = append(all, triple{d.I, d.J, d.K, true})
	}
	for p := 0; p < len(all); p++ {
		for q := p + 1; q < len(all); q++ {
			x, y := all[p], all[q]
			var shared []int
			for _, v := range []int{x.i, x.j, x.k} {
				if v == y.i || v == y.j || v == y.k {
					shared = append(shared, v)
				}
			}
			if len(shared) < 2 {
				continue
			}
			rx, sx, okx := arrange(x.i, x.j, x.k, shared[0], shared[1])
			ry, sy, oky := arrange(y.i, y.j, y.k, shared[0], shared[1])
			if !okx || !oky {
				continue
			}
			switch {
			case x.sym != y.sym:
				t.zero()
				return true
			case x.sym:
				t.cnum = t.cnum.Mul(dd)
			default:
				t.cnum = t.cnum.Mul(casimirA).MulComplex(complex(float64(sx*sy), 0))
			}
			// all lists f's first, then d's.
			nf := len(t.fs)
			var dropF, dropD []int
			for _, n := range []int{p, q} {
				if n < nf {
					dropF = append(dropF, n)
				} else {
					dropD = append(dropD, n-nf)
				}
			}
			t.fs = without(t.fs, dropF...)
			t.ds = without(t.ds, dropD...)
			t.deltas = append(t.deltas, Delta{I: rx, J: ry, Adj: true})
			return true
		}
	}
	return false
}

// replaceGeneratorChain applies t^a t^a = CF, t^a t^b t^a = −TR/NC t^b and
// Tr(t^a t^b) = TR δ^{ab} to generators adjacent along a fundamental line.
func (t *Term) replaceGeneratorChain() bool {
	for p := range t.gens {
		for q := range t.gens {
			if p == q {
				continue
			}
			x, y := t.gens[p], t.gens[q]
			switch {
			case x.I == y.I && x.B == y.A:
				t.gens = without(t.gens, p, q)
				t.deltas = append(t.deltas, Delta{I: x.A, J: y.B})
				t.cnum = t.cnum.Mul(casimirF)
				return true
			case x.I == y.I:
				for r, z := range t.gens {
					if r == p || r == q || x.B != z.A || z.B != y.A {
						continue
					}
					t.gens = without(t.gens, p, q, r)
					t.gens = append(t.gens, Fundamental{I: z.I, A: x.A, B: y.B})
					t.cnum = t.cnum.Mul(sandwich)
					return true
				}
			case x.B == y.A && y.B == x.A:
				t.gens = without(t.gens, p, q)
				t.deltas = append(t.deltas, Delta{I: x.I, J: y.I, Adj: true})
				t.cnum = t.cnum.Mul(traceTwo)
				return true
			}
		}
	}
	return false
}

// replaceStructureChain applies f^{abc} t^b t^c = i CA/2 t^a and
// d^{abc} t^b t^c = TR(NC²−4)/NC t^a for adjacent generators.
func (t *Term) replaceStructureChain() bool {
	for p := range t.gens {
		for q := range t.gens {
			x, y := t.gens[p], t.gens[q]
			if p == q || x.B != y.A {
				continue
			}
			for n, f := range t.fs {
				rest, sign, ok := arrange(f.I, f.J, f.K, x.I, y.I)
				if !ok {
					continue
				}
				t.fs = without(t.fs, n)
				t.gens = without(t.gens, p, q)
				t.gens = append(t.gens, Fundamental{I: rest, A: x.A, B: y.B})
				t.cnum = t.cnum.Mul(fTT).MulComplex(complex(float64(sign), 0))
				return true
			}
			for n, d := range t.ds {
				rest, _, ok := arrange(d.I, d.J, d.K, x.I, y.I)
				if !ok {
					continue
				}
				t.ds = without(t.ds, n)
				t.gens = without(t.gens, p, q)
				t.gens = append(t.gens, Fundamental{I: rest, A: x.A, B: y.B})
				t.cnum = t.cnum.Mul(dTT)
				return true
			}
		}
	}
	return false
}

// split applies one identity that turns t into a sum of products. It reports
// false when t carries no contracted adjoint index any identity could remove.
// t must be simplified.
func (t Term) split() ([]Term, bool) {
	cnt := t.counts()
	// f^{abc} t^c = −i [t^a, t^b]
	for n, f := range t.fs {
		for m, g := range t.gens {
			a, b, ok := rotateLast(f.I, f.J, f.K, g.I)
			if !ok {
				continue
			}
			base := t.Clone()
			base.fs = without(base.fs, n)
			base.gens = without(base.gens, m)
			k := base.alloc()
			ab := base.Clone()
			ab.gens = append(ab.gens, Fundamental{I: a, A: g.A, B: k}, Fundamental{I: b, A: k, B: g.B})
			ab.cnum = ab.cnum.MulComplex(-1i)
			ba := base.Clone()
			ba.gens = append(ba.gens, Fundamental{I: b, A: g.A, B: k}, Fundamental{I: a, A: k, B: g.B})
			ba.cnum = ba.cnum.MulComplex(1i)
			return []Term{ab, ba}, true
		}
	}
	// d^{abc} t^c = {t^a, t^b} − (2TR/NC) δ^{ab}
	for n, d := range t.ds {
		for m, g := range t.gens {
			a, b, ok := rotateLast(d.I, d.J, d.K, g.I)
			if !ok {
				continue
			}
			base := t.Clone()
			base.ds = without(base.ds, n)
			base.gens = without(base.gens, m)
			k := base.alloc()
			ab := base.Clone()
			ab.gens = append(ab.gens, Fundamental{I: a, A: g.A, B: k}, Fundamental{I: b, A: k, B: g.B})
			ba := base.Clone()
			ba.gens = append(ba.gens, Fundamental{I: b, A: g.A, B: k}, Fundamental{I: a, A: k, B: g.B})
			tr := base.Clone()
			tr.deltas = append(tr.deltas, Delta{I: a, J: b, Adj: true}, Delta{I: g.A, J: g.B})
			tr.cnum = tr.cnum.MulFactor(NewFactor(-2, -1, 1, 0, 0))
			return []Term{ab, ba, tr}, true
		}
	}
	// Fierz: t^a_{ij} t^a_{kl} = TR (δ_{il} δ_{kj} − δ_{ij} δ_{kl}/NC)
	for p := range t.gens {
		for q := p + 1; q < len(t.gens); q++ {
			x, y := t.gens[p], t.gens[q]
			if x.I != y.I {
				continue
			}
			base := t.Clone()
			base.gens = without(base.gens, p, q)
			cross := base.Clone()
			cross.deltas = append(cross.deltas, Delta{I: x.A, J: y.B}, Delta{I: y.A, J: x.B})
			cross.cnum = cross.cnum.MulFactor(NewFactor(1, 0, 1, 0, 0))
			direct := base.Clone()
			direct.deltas = append(direct.deltas, Delta{I: x.A, J: x.B}, Delta{I: y.A, J: y.B})
			direct.cnum = direct.cnum.MulFactor(NewFactor(-1, -1, 1, 0, 0))
			return []Term{cross, direct}, true
		}
	}
	// f^{abc} = −(i/TR) Tr([t^a, t^b] t^c), d^{abc} = (1/TR) Tr({t^a, t^b} t^c)
	contracted := func(i, j, k int) bool { return cnt[i] > 1 || cnt[j] > 1 || cnt[k] > 1 }
	for n, f := range t.fs {
		if !contracted(f.I, f.J, f.K) {
			continue
		}
		base := t.Clone()
		base.fs = without(base.fs, n)
		return traceExpansion(base, f.I, f.J, f.K, NewFactor(-1i, 0, -1, 0, 0), NewFactor(1i, 0, -1, 0, 0)), true
	}
	for n, d := range t.ds {
		if !contracted(d.I, d.J, d.K) {
			continue
		}
		base := t.Clone()
		base.ds = without(base.ds, n)
		return traceExpansion(base, d.I, d.J, d.K, NewFactor(1, 0, -1, 0, 0), NewFactor(1, 0, -1, 0, 0)), true
	}
	return nil, false
}

// traceExpansion returns cab·Tr(t^a t^b t^c) and cba·Tr(t^b t^a t^c) times base.
func traceExpansion(base Term, a, b, c int, cab, cba Factor) []Term {
	u, v, w := base.alloc(), base.alloc(), base.alloc()
	abc := base.Clone()
	abc.gens = append(abc.gens,
		Fundamental{I: a, A: u, B: v}, Fundamental{I: b, A: v, B: w}, Fundamental{I: c, A: w, B: u})
	abc.cnum = abc.cnum.MulFactor(cab)
	bac := base.Clone()
	bac.gens = append(bac.gens,
		Fundamental{I: b, A: u, B: v}, Fundamental{I: a, A: v, B: w}, Fundamental{I: c, A: w, B: u})
	bac.cnum = bac.cnum.MulFactor(cba)
	return []Term{abc, bac}
}

// rotateLast cyclically rotates (i, j, k) so that c comes last and returns the
// first two slots. Cyclic rotations keep the sign of f.
func rotateLast(i, j, k, c int) (a, b int, ok bool) {
	switch c {
	case k:
		return i, j, true
	case j:
		return k, i, true
	case i:
		return j, k, true
	}
	return 0, 0, false
}

// without returns a copy of s lacking the elements at the given positions.
func without[T any](s []T, drop ...int) []T {
	out := make([]T, 0, len(s))
	for i, v := range s {
		if !slices.Contains(drop, i) {
			out = append(out, v)
		}
	}
	return out
}
