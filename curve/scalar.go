package curve

import (
	"fmt"
	"io"
	"math/big"
)

// RandomScalar samples a uniform scalar in [0, n) from rng. It panics when
// rng fails, because no caller can recover from a broken entropy source.
func (c *Curve) RandomScalar(rng io.Reader) *big.Int {
	buf := make([]byte, c.ScalarSize()+16)
	if _, err := io.ReadFull(rng, buf); err != nil {
		panic(fmt.Errorf("curve %s: random scalar: %v", c.name, err))
	}
	k := new(big.Int).SetBytes(buf)
	return k.Mod(k, c.n)
}

// RandomNonZeroScalar samples a uniform scalar in [1, n).
func (c *Curve) RandomNonZeroScalar(rng io.Reader) *big.Int {
	for {
		k := c.RandomScalar(rng)
		if k.Sign() != 0 {
			return k
		}
	}
}

// Scalar arithmetic modulo the group order. Results are always reduced.

func (c *Curve) ScalarAdd(a, b *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, c.n)
}

func (c *Curve) ScalarSub(a, b *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, c.n)
}

func (c *Curve) ScalarMul(a, b *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, c.n)
}

func (c *Curve) ScalarNeg(a *big.Int) *big.Int {
	r := new(big.Int).Neg(a)
	return r.Mod(r, c.n)
}

// ScalarInv returns a⁻¹ mod n, or nil when a ≡ 0.
func (c *Curve) ScalarInv(a *big.Int) *big.Int {
	return new(big.Int).ModInverse(new(big.Int).Mod(a, c.n), c.n)
}

// ScalarFromBytesWide interprets buf as a little-endian integer reduced mod n,
// the convention of merlin challenges.
func (c *Curve) ScalarFromBytesWide(buf []byte) *big.Int {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}
	k := new(big.Int).SetBytes(be)
	return k.Mod(k, c.n)
}
