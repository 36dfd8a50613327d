package bulletproofs

import (
	"math/big"

	"github.com/pkg/errors"
)

// scalarExp iterates the powers 1, x, x², ... of x.
type scalarExp struct {
	f    field
	x    *big.Int
	next *big.Int
}

func newScalarExp(f field, x *big.Int) *scalarExp {
	return &scalarExp{f: f, x: x, next: big.NewInt(1)}
}

func (s *scalarExp) Next() *big.Int {
	cur := s.next
	s.next = s.f.mul(s.next, s.x)
	return cur
}

// vecPoly1 is the vector polynomial As + Bs·x.
type vecPoly1 struct {
	As []*big.Int
	Bs []*big.Int
}

func zeroVecPoly1(n int) *vecPoly1 {
	return &vecPoly1{As: make([]*big.Int, n), Bs: make([]*big.Int, n)}
}

func (v *vecPoly1) innerProduct(f field, rhs *vecPoly1) *poly2 {
	t0 := innerProduct(f, v.As, rhs.As)
	t2 := innerProduct(f, v.Bs, rhs.Bs)
	l := addVec(f, v.As, v.Bs)
	r := addVec(f, rhs.As, rhs.Bs)
	t1 := f.sub(f.sub(innerProduct(f, l, r), t0), t2)
	return &poly2{A: t0, B: t1, C: t2}
}

func (v *vecPoly1) eval(f field, x *big.Int) []*big.Int {
	out := make([]*big.Int, len(v.As))
	for i := range v.As {
		out[i] = f.add(v.As[i], f.mul(v.Bs[i], x))
	}
	return out
}

// poly2 is A + B·x + C·x².
type poly2 struct {
	A, B, C *big.Int
}

func (p *poly2) eval(f field, x *big.Int) *big.Int {
	return f.add(p.A, f.mul(x, f.add(p.B, f.mul(x, p.C))))
}

func scalarExpVartime(f field, x *big.Int, n uint64) *big.Int {
	return new(big.Int).Exp(x, new(big.Int).SetUint64(n), f.n)
}

// sumOfPowers returns 1 + x + ... + x^(n-1).
func sumOfPowers(f field, x *big.Int, n int) *big.Int {
	sum, exp := big.NewInt(0), newScalarExp(f, x)
	for i := 0; i < n; i++ {
		sum = f.add(sum, exp.Next())
	}
	return sum
}

func innerProduct(f field, a, b []*big.Int) *big.Int {
	if len(a) != len(b) {
		panic(errors.Errorf("innerProduct lengths of vectors do not match %d, %d", len(a), len(b)))
	}
	sum := big.NewInt(0)
	for i := range a {
		sum = f.add(sum, f.mul(a[i], b[i]))
	}
	return sum
}

func addVec(f field, a, b []*big.Int) []*big.Int {
	if len(a) != len(b) {
		panic(errors.Errorf("addVec lengths of vectors do not match %d, %d", len(a), len(b)))
	}
	out := make([]*big.Int, len(a))
	for i := range a {
		out[i] = f.add(a[i], b[i])
	}
	return out
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

func nextPowerOfTwo(v int) int {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}

// resizeToPow2 pads values and blindings to a power-of-two party count by
// repeating the last entry.
func resizeToPow2(values []uint64, blindings []*big.Int) ([]uint64, []*big.Int) {
	values = append([]uint64(nil), values...)
	blindings = append([]*big.Int(nil), blindings...)
	l := nextPowerOfTwo(len(values))
	for i := len(values); i < l; i++ {
		values = append(values, values[i-1])
		blindings = append(blindings, new(big.Int).Set(blindings[i-1]))
	}
	return values, blindings
}

func checkBitsize(n int) error {
	switch n {
	case 8, 16, 32, 64:
		return nil
	}
	return errors.Errorf("InvalidBitsize n: %d", n)
}
