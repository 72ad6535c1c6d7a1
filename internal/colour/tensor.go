package colour

import "fmt"

// Kind tags the closed set of tensor primitives.
type Kind uint8

const (
	KindDelta Kind = iota
	KindFundamental
	KindAntisymmetric
	KindSymmetric
)

func (k Kind) String() string {
	switch k {
	case KindDelta:
		return "delta"
	case KindFundamental:
		return "fundamental"
	case KindAntisymmetric:
		return "antisymmetric"
	case KindSymmetric:
		return "symmetric"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Tensor is one of Delta, Fundamental, Antisymmetric or Symmetric.
type Tensor interface {
	Kind() Kind
	// Indices returns the slots in order.
	Indices() []int
	// Contains reports whether idx occupies any slot.
	Contains(idx int) bool
	String() string
	isTensor()
}

// Delta is the Kronecker delta δ_{I J}, adjoint when Adj is set.
type Delta struct {
	I, J int
	Adj  bool
}

func (Delta) Kind() Kind              { return KindDelta }
func (k Delta) Indices() []int        { return []int{k.I, k.J} }
func (k Delta) Contains(idx int) bool { return k.I == idx || k.J == idx }
func (Delta) isTensor()               {}

func (k Delta) String() string {
	if k.Adj {
		return fmt.Sprintf("K[%d,%d]", k.I, k.J)
	}
	return fmt.Sprintf("k[%d,%d]", k.I, k.J)
}

// Fundamental is the generator element (t^I)_{A B}.
type Fundamental struct {
	I, A, B int
}

func (Fundamental) Kind() Kind              { return KindFundamental }
func (t Fundamental) Indices() []int        { return []int{t.I, t.A, t.B} }
func (t Fundamental) Contains(idx int) bool { return t.I == idx || t.A == idx || t.B == idx }
func (t Fundamental) String() string        { return fmt.Sprintf("t[%d,%d,%d]", t.I, t.A, t.B) }
func (Fundamental) isTensor()               {}

// Antisymmetric is the structure constant f^{I J K}.
type Antisymmetric struct {
	I, J, K int
}

func (Antisymmetric) Kind() Kind              { return KindAntisymmetric }
func (f Antisymmetric) Indices() []int        { return []int{f.I, f.J, f.K} }
func (f Antisymmetric) Contains(idx int) bool { return f.I == idx || f.J == idx || f.K == idx }
func (f Antisymmetric) String() string        { return fmt.Sprintf("f[%d,%d,%d]", f.I, f.J, f.K) }
func (Antisymmetric) isTensor()               {}

// Symmetric is the structure constant d^{I J K}.
type Symmetric struct {
	I, J, K int
}

func (Symmetric) Kind() Kind              { return KindSymmetric }
func (d Symmetric) Indices() []int        { return []int{d.I, d.J, d.K} }
func (d Symmetric) Contains(idx int) bool { return d.I == idx || d.J == idx || d.K == idx }
func (d Symmetric) String() string        { return fmt.Sprintf("d[%d,%d,%d]", d.I, d.J, d.K) }
func (Symmetric) isTensor()               {}

// arrange reorders the triple (i, j, k) so that it starts with a and b and
// returns the remaining index together with the permutation sign. ok is false
// when a or b is not among the slots or a == b.
func arrange(i, j, k, a, b int) (rest, sign int, ok bool) {
	if a == b {
		return 0, 0, false
	}
	idx := [3]int{i, j, k}
	pa, pb := -1, -1
	for p, v := range idx {
		if v == a && pa < 0 {
			pa = p
		} else if v == b && pb < 0 {
			pb = p
		}
	}
	if pa < 0 || pb < 0 {
		return 0, 0, false
	}
	pr := 3 - pa - pb
	// (pa, pb, pr) is an even permutation of (0, 1, 2) when it is a cyclic shift.
	if (pb-pa+3)%3 == 1 {
		sign = 1
	} else {
		sign = -1
	}
	return idx[pr], sign, true
}
