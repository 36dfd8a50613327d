// Package pedersen implements Pedersen commitments on the T curve of a curve
// pair and the Σ-protocols proved over them.
package pedersen

import (
	"io"
	"math/big"

	"github.com/MixinNetwork/boomerang-go/curve"
)

// Commitment is C = m·G + r·H. Rand is known only to the committer and is
// nil on commitments received from a peer.
type Commitment struct {
	Point *curve.Point
	Rand  *big.Int
}

// New commits to m under fresh randomness.
func New(c *curve.Curve, m *big.Int, rng io.Reader) *Commitment {
	return NewWithRand(c, m, c.RandomScalar(rng))
}

// NewWithRand commits to m under r.
func NewWithRand(c *curve.Curve, m, r *big.Int) *Commitment {
	return &Commitment{Point: c.Commit(m, r), Rand: new(big.Int).Mod(r, c.Order())}
}

// FromPoint wraps a public commitment.
func FromPoint(p *curve.Point) *Commitment {
	return &Commitment{Point: p}
}

func (cm *Commitment) curve() *curve.Curve { return cm.Point.Curve() }

// Add returns the commitment to the sum of both values.
func (cm *Commitment) Add(o *Commitment) *Commitment {
	sum := &Commitment{Point: cm.Point.Add(o.Point)}
	if cm.Rand != nil && o.Rand != nil {
		sum.Rand = cm.curve().ScalarAdd(cm.Rand, o.Rand)
	}
	return sum
}

// Sub returns the commitment to the difference of both values.
func (cm *Commitment) Sub(o *Commitment) *Commitment {
	diff := &Commitment{Point: cm.Point.Sub(o.Point)}
	if cm.Rand != nil && o.Rand != nil {
		diff.Rand = cm.curve().ScalarSub(cm.Rand, o.Rand)
	}
	return diff
}

// Public drops the randomness.
func (cm *Commitment) Public() *Commitment {
	return &Commitment{Point: cm.Point}
}

func (cm *Commitment) Bytes() []byte { return cm.Point.Bytes() }

// MultiGenerators returns the slot generators G_0..G_{k-1} of multi-commitments.
func MultiGenerators(c *curve.Curve, k int) []*curve.Point {
	return c.Generators(k)
}

// NewMulti commits to vals as Σ vals[i]·G_i + r·H and returns the generators used.
func NewMulti(c *curve.Curve, vals []*big.Int, rng io.Reader) (*Commitment, []*curve.Point) {
	gens := MultiGenerators(c, len(vals))
	return NewMultiWithGens(c, gens, vals, c.RandomScalar(rng)), gens
}

// NewMultiWithGens commits to vals over gens with randomness r.
func NewMultiWithGens(c *curve.Curve, gens []*curve.Point, vals []*big.Int, r *big.Int) *Commitment {
	ks := append(append([]*big.Int{}, vals...), r)
	ps := append(append([]*curve.Point{}, gens...), c.H())
	return &Commitment{Point: c.MultiScalarMult(ks, ps), Rand: new(big.Int).Mod(r, c.Order())}
}
