package bulletproofs

import (
	"math/big"

	"github.com/MixinNetwork/boomerang-go/curve"
)

type weierstrass struct {
	c *curve.Curve
}

type wpoint struct {
	p *curve.Point
}

// Weierstrass returns c as a Group with B = G and B̃ = H. Uniform bytes are
// mapped by try-and-increment.
func Weierstrass(c *curve.Curve) Group {
	return &weierstrass{c: c}
}

func (w *weierstrass) Name() string                  { return w.c.Name() }
func (w *weierstrass) Order() *big.Int               { return w.c.Order() }
func (w *weierstrass) Identity() Point               { return wpoint{w.c.Identity()} }
func (w *weierstrass) Base() Point                   { return wpoint{w.c.G()} }
func (w *weierstrass) Blinding() Point               { return wpoint{w.c.H()} }
func (w *weierstrass) PointSize() int                { return w.c.PointSize() }
func (w *weierstrass) ScalarSize() int               { return w.c.ScalarSize() }
func (w *weierstrass) ScalarBytes(k *big.Int) []byte { return w.c.ScalarBytes(k) }

func (w *weierstrass) FromUniformBytes(buf []byte) Point {
	return wpoint{w.c.HashToPoint(buf)}
}

func (w *weierstrass) MultiScalarMult(ks []*big.Int, ps []Point) Point {
	cps := make([]*curve.Point, len(ps))
	for i, p := range ps {
		cps[i] = p.(wpoint).p
	}
	return wpoint{w.c.MultiScalarMult(ks, cps)}
}

func (w *weierstrass) DecodePoint(buf []byte) (Point, error) {
	p, err := w.c.DecodePoint(buf)
	if err != nil {
		return nil, err
	}
	return wpoint{p}, nil
}

func (w *weierstrass) DecodeScalar(buf []byte) (*big.Int, error) {
	return w.c.DecodeScalar(buf)
}

func (p wpoint) Add(q Point) Point    { return wpoint{p.p.Add(q.(wpoint).p)} }
func (p wpoint) Sub(q Point) Point    { return wpoint{p.p.Sub(q.(wpoint).p)} }
func (p wpoint) Neg() Point           { return wpoint{p.p.Neg()} }
func (p wpoint) Mul(k *big.Int) Point { return wpoint{p.p.Mul(k)} }
func (p wpoint) Equal(q Point) bool   { return p.p.Equal(q.(wpoint).p) }
func (p wpoint) IsIdentity() bool     { return p.p.IsIdentity() }
func (p wpoint) Bytes() []byte        { return p.p.Bytes() }
