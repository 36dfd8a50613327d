package curve

import (
	"math/big"
)

// Point is an affine point on a Curve. Points are immutable: every operation
// returns a fresh value. Mixing points of different curves panics.
type Point struct {
	curve *Curve
	x, y  *big.Int
	inf   bool
}

func (p *Point) Curve() *Curve { return p.curve }

// X returns a copy of the affine x coordinate, nil for the identity.
func (p *Point) X() *big.Int {
	if p.inf {
		return nil
	}
	return new(big.Int).Set(p.x)
}

// Y returns a copy of the affine y coordinate, nil for the identity.
func (p *Point) Y() *big.Int {
	if p.inf {
		return nil
	}
	return new(big.Int).Set(p.y)
}

func (p *Point) IsIdentity() bool { return p.inf }

func (p *Point) Equal(q *Point) bool {
	p.curve.check(q)
	if p.inf || q.inf {
		return p.inf == q.inf
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

func (p *Point) Add(q *Point) *Point {
	c := p.curve
	c.check(q)
	return c.toAffine(c.add(c.toJacobian(p), c.toJacobian(q)))
}

func (p *Point) Sub(q *Point) *Point {
	return p.Add(q.Neg())
}

func (p *Point) Neg() *Point {
	if p.inf {
		return p
	}
	y := new(big.Int).Sub(p.curve.p, p.y)
	y.Mod(y, p.curve.p)
	return &Point{curve: p.curve, x: p.x, y: y}
}

// Mul returns k·p. k is reduced modulo the group order, so negative scalars
// are accepted.
func (p *Point) Mul(k *big.Int) *Point {
	c := p.curve
	k = c.reduce(k)
	jp := c.toJacobian(p)
	acc := c.jacobianIdentity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		acc = c.double(acc)
		if k.Bit(i) == 1 {
			acc = c.add(acc, jp)
		}
	}
	return c.toAffine(acc)
}

func (p *Point) String() string {
	if p.inf {
		return p.curve.name + "(O)"
	}
	return p.curve.name + "(" + p.x.String() + ", " + p.y.String() + ")"
}

// jacobian holds (X, Y, Z) with x = X/Z², y = Y/Z³. Z = 0 is the identity.
type jacobian struct {
	x, y, z *big.Int
}

func (c *Curve) jacobianIdentity() *jacobian {
	return &jacobian{x: big.NewInt(1), y: big.NewInt(1), z: new(big.Int)}
}

func (c *Curve) toJacobian(p *Point) *jacobian {
	if p.inf {
		return c.jacobianIdentity()
	}
	return &jacobian{x: new(big.Int).Set(p.x), y: new(big.Int).Set(p.y), z: big.NewInt(1)}
}

func (c *Curve) toAffine(j *jacobian) *Point {
	if j.z.Sign() == 0 {
		return c.Identity()
	}
	zinv := new(big.Int).ModInverse(j.z, c.p)
	zinv2 := new(big.Int).Mul(zinv, zinv)
	zinv2.Mod(zinv2, c.p)
	x := new(big.Int).Mul(j.x, zinv2)
	x.Mod(x, c.p)
	zinv2.Mul(zinv2, zinv)
	y := new(big.Int).Mul(j.y, zinv2)
	y.Mod(y, c.p)
	return &Point{curve: c, x: x, y: y}
}

// double uses dbl-2007-bl, which holds for any a.
func (c *Curve) double(j *jacobian) *jacobian {
	if j.z.Sign() == 0 || j.y.Sign() == 0 {
		return c.jacobianIdentity()
	}
	p := c.p
	xx := mulMod(j.x, j.x, p)
	yy := mulMod(j.y, j.y, p)
	yyyy := mulMod(yy, yy, p)
	zz := mulMod(j.z, j.z, p)

	s := new(big.Int).Add(j.x, yy)
	s.Mul(s, s)
	s.Sub(s, xx)
	s.Sub(s, yyyy)
	s.Lsh(s, 1)
	s.Mod(s, p)

	m := new(big.Int).Mul(xx, big.NewInt(3))
	if c.a.Sign() != 0 {
		azz := mulMod(zz, zz, p)
		azz.Mul(azz, c.a)
		m.Add(m, azz)
	}
	m.Mod(m, p)

	x3 := new(big.Int).Mul(m, m)
	x3.Sub(x3, new(big.Int).Lsh(s, 1))
	x3.Mod(x3, p)

	y3 := new(big.Int).Sub(s, x3)
	y3.Mul(y3, m)
	y3.Sub(y3, new(big.Int).Lsh(yyyy, 3))
	y3.Mod(y3, p)

	z3 := new(big.Int).Add(j.y, j.z)
	z3.Mul(z3, z3)
	z3.Sub(z3, yy)
	z3.Sub(z3, zz)
	z3.Mod(z3, p)

	return &jacobian{x: x3, y: y3, z: z3}
}

// add uses add-2007-bl and falls back to doubling for equal inputs.
func (c *Curve) add(j1, j2 *jacobian) *jacobian {
	if j1.z.Sign() == 0 {
		return j2
	}
	if j2.z.Sign() == 0 {
		return j1
	}
	p := c.p
	z1z1 := mulMod(j1.z, j1.z, p)
	z2z2 := mulMod(j2.z, j2.z, p)
	u1 := mulMod(j1.x, z2z2, p)
	u2 := mulMod(j2.x, z1z1, p)
	s1 := mulMod(j1.y, mulMod(j2.z, z2z2, p), p)
	s2 := mulMod(j2.y, mulMod(j1.z, z1z1, p), p)

	h := new(big.Int).Sub(u2, u1)
	h.Mod(h, p)
	r := new(big.Int).Sub(s2, s1)
	r.Lsh(r, 1)
	r.Mod(r, p)

	if h.Sign() == 0 {
		if r.Sign() == 0 {
			return c.double(j1)
		}
		return c.jacobianIdentity()
	}

	i := new(big.Int).Lsh(h, 1)
	i.Mul(i, i)
	i.Mod(i, p)
	jj := mulMod(h, i, p)
	v := mulMod(u1, i, p)

	x3 := new(big.Int).Mul(r, r)
	x3.Sub(x3, jj)
	x3.Sub(x3, new(big.Int).Lsh(v, 1))
	x3.Mod(x3, p)

	y3 := new(big.Int).Sub(v, x3)
	y3.Mul(y3, r)
	s1j := new(big.Int).Mul(s1, jj)
	s1j.Lsh(s1j, 1)
	y3.Sub(y3, s1j)
	y3.Mod(y3, p)

	z3 := new(big.Int).Add(j1.z, j2.z)
	z3.Mul(z3, z3)
	z3.Sub(z3, z1z1)
	z3.Sub(z3, z2z2)
	z3.Mul(z3, h)
	z3.Mod(z3, p)

	return &jacobian{x: x3, y: y3, z: z3}
}

func mulMod(a, b, m *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, m)
}
