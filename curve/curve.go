// Package curve implements short Weierstrass curves y² = x³ + ax + b over
// prime fields, with the T/O curve pairs used by the credential protocols.
package curve

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
)

// Curve is a prime order short Weierstrass curve. All curves handled here
// have cofactor one.
type Curve struct {
	name string

	p *big.Int // base field prime
	a *big.Int
	b *big.Int
	n *big.Int // group order

	g *Point
	h *Point

	byteLen int
}

// Params are the defining constants of a curve. H may be nil, in which case
// the second generator is derived from HLabel by try-and-increment.
type Params struct {
	Name   string
	P      *big.Int
	A      *big.Int
	B      *big.Int
	N      *big.Int
	Gx, Gy *big.Int
	Hx, Hy *big.Int
	HLabel string
}

// New builds a curve from its constants. It panics when a generator is not on
// the curve, since that can only come from a wrong constant.
func New(params *Params) *Curve {
	c := &Curve{
		name:    params.Name,
		p:       new(big.Int).Set(params.P),
		a:       new(big.Int).Mod(params.A, params.P),
		b:       new(big.Int).Mod(params.B, params.P),
		n:       new(big.Int).Set(params.N),
		byteLen: (params.P.BitLen() + 7) / 8,
	}

	g, err := c.NewPoint(params.Gx, params.Gy)
	if err != nil {
		panic(fmt.Errorf("curve %s: generator G: %v", c.name, err))
	}
	c.g = g

	if params.Hx != nil {
		h, err := c.NewPoint(params.Hx, params.Hy)
		if err != nil {
			panic(fmt.Errorf("curve %s: generator H: %v", c.name, err))
		}
		c.h = h
	} else {
		c.h = c.HashToPoint([]byte(params.HLabel))
	}
	return c
}

func (c *Curve) Name() string { return c.name }

// Field returns the base field prime.
func (c *Curve) Field() *big.Int { return c.p }

// Order returns the prime order of the group.
func (c *Curve) Order() *big.Int { return c.n }

// G returns the standard generator.
func (c *Curve) G() *Point { return c.g }

// H returns the second generator, whose discrete log relative to G is unknown.
func (c *Curve) H() *Point { return c.h }

// ScalarSize is the length of an encoded scalar.
func (c *Curve) ScalarSize() int { return (c.n.BitLen() + 7) / 8 }

// PointSize is the length of a compressed point.
func (c *Curve) PointSize() int { return 1 + c.byteLen }

func (c *Curve) String() string { return c.name }

// IsOnCurve reports whether (x, y) satisfies the curve equation with both
// coordinates reduced.
func (c *Curve) IsOnCurve(x, y *big.Int) bool {
	if x.Sign() < 0 || x.Cmp(c.p) >= 0 || y.Sign() < 0 || y.Cmp(c.p) >= 0 {
		return false
	}
	lhs := new(big.Int).Mul(y, y)
	lhs.Mod(lhs, c.p)
	return lhs.Cmp(c.rhs(x)) == 0
}

// rhs evaluates x³ + ax + b.
func (c *Curve) rhs(x *big.Int) *big.Int {
	r := new(big.Int).Mul(x, x)
	r.Mul(r, x)
	ax := new(big.Int).Mul(c.a, x)
	r.Add(r, ax)
	r.Add(r, c.b)
	return r.Mod(r, c.p)
}

// NewPoint validates an affine point.
func (c *Curve) NewPoint(x, y *big.Int) (*Point, error) {
	if !c.IsOnCurve(x, y) {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "point is not on %s", c.name)
	}
	return &Point{curve: c, x: new(big.Int).Set(x), y: new(big.Int).Set(y)}, nil
}

// Identity returns the point at infinity.
func (c *Curve) Identity() *Point {
	return &Point{curve: c, inf: true}
}

// ScalarBaseMult returns k·G.
func (c *Curve) ScalarBaseMult(k *big.Int) *Point {
	return c.g.Mul(k)
}

// Commit returns m·G + r·H.
func (c *Curve) Commit(m, r *big.Int) *Point {
	return c.MultiScalarMult([]*big.Int{m, r}, []*Point{c.g, c.h})
}

// MultiScalarMult returns Σ ks[i]·ps[i]. It panics on length mismatch.
func (c *Curve) MultiScalarMult(ks []*big.Int, ps []*Point) *Point {
	if len(ks) != len(ps) {
		panic(fmt.Errorf("curve %s: %d scalars for %d points", c.name, len(ks), len(ps)))
	}
	reduced := make([]*big.Int, len(ks))
	bits := 0
	for i, k := range ks {
		c.check(ps[i])
		reduced[i] = c.reduce(k)
		if l := reduced[i].BitLen(); l > bits {
			bits = l
		}
	}
	jps := make([]*jacobian, len(ps))
	for i, p := range ps {
		jps[i] = c.toJacobian(p)
	}

	acc := c.jacobianIdentity()
	for i := bits - 1; i >= 0; i-- {
		acc = c.double(acc)
		for j, k := range reduced {
			if k.Bit(i) == 1 {
				acc = c.add(acc, jps[j])
			}
		}
	}
	return c.toAffine(acc)
}

func (c *Curve) check(p *Point) {
	if p.curve != c {
		panic(fmt.Errorf("curve: point on %s used with %s", p.curve.name, c.name))
	}
}

func (c *Curve) reduce(k *big.Int) *big.Int {
	if k.Sign() >= 0 && k.Cmp(c.n) < 0 {
		return k
	}
	return new(big.Int).Mod(k, c.n)
}
