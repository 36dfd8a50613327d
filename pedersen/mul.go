package pedersen

import (
	"io"
	"math/big"

	"github.com/gtank/merlin"

	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// MulProof proves that C3 commits to the product of the values in C1 and C2.
type MulProof struct {
	Alpha, Beta, Delta *curve.Point
	Z1, Z2, Z3, Z4, Z5 *big.Int
}

type MulIntermediate struct {
	Alpha, Beta, Delta *curve.Point

	b1, b2, b3, b4, b5 *big.Int
}

func mulTranscript(t *merlin.Transcript, c1, c2, c3, alpha, beta, delta *curve.Point) {
	transcript.DomainSep(t, transcript.MulProof)
	transcript.AppendPoint(t, "C1", c1)
	transcript.AppendPoint(t, "C2", c2)
	transcript.AppendPoint(t, "C3", c3)
	transcript.AppendPoint(t, "alpha", alpha)
	transcript.AppendPoint(t, "beta", beta)
	transcript.AppendPoint(t, "delta", delta)
}

func NewMulIntermediate(t *merlin.Transcript, rng io.Reader, c1, c2, c3 *Commitment) *MulIntermediate {
	c := c1.curve()
	mi := &MulIntermediate{
		b1: c.RandomScalar(rng),
		b2: c.RandomScalar(rng),
		b3: c.RandomScalar(rng),
		b4: c.RandomScalar(rng),
		b5: c.RandomScalar(rng),
	}
	mi.Alpha = c.Commit(mi.b1, mi.b2)
	mi.Beta = c.Commit(mi.b3, mi.b4)
	mi.Delta = c.MultiScalarMult([]*big.Int{mi.b3, mi.b5}, []*curve.Point{c1.Point, c.H()})
	mulTranscript(t, c1.Point, c2.Point, c3.Point, mi.Alpha, mi.Beta, mi.Delta)
	return mi
}

// Prove answers chal for x in c1, y in c2 and x·y in c3.
func (mi *MulIntermediate) Prove(x, y *big.Int, c1, c2, c3 *Commitment, chal *big.Int) *MulProof {
	c := c1.curve()
	z5 := c.ScalarSub(c3.Rand, c.ScalarMul(c1.Rand, y))
	return &MulProof{
		Alpha: mi.Alpha,
		Beta:  mi.Beta,
		Delta: mi.Delta,
		Z1:    c.ScalarAdd(mi.b1, c.ScalarMul(chal, x)),
		Z2:    c.ScalarAdd(mi.b2, c.ScalarMul(chal, c1.Rand)),
		Z3:    c.ScalarAdd(mi.b3, c.ScalarMul(chal, y)),
		Z4:    c.ScalarAdd(mi.b4, c.ScalarMul(chal, c2.Rand)),
		Z5:    c.ScalarAdd(mi.b5, c.ScalarMul(chal, z5)),
	}
}

func ProveMul(t *merlin.Transcript, rng io.Reader, x, y *big.Int, c1, c2, c3 *Commitment) *MulProof {
	mi := NewMulIntermediate(t, rng, c1, c2, c3)
	return mi.Prove(x, y, c1, c2, c3, transcript.ChallengeScalar(t, "c", c1.curve()))
}

func (p *MulProof) AddToTranscript(t *merlin.Transcript, c1, c2, c3 *curve.Point) {
	mulTranscript(t, c1, c2, c3, p.Alpha, p.Beta, p.Delta)
}

func (p *MulProof) Verify(t *merlin.Transcript, c1, c2, c3 *curve.Point) bool {
	p.AddToTranscript(t, c1, c2, c3)
	return p.VerifyWithChallenge(c1, c2, c3, transcript.ChallengeScalar(t, "c", c1.Curve()))
}

func (p *MulProof) VerifyWithChallenge(c1, c2, c3 *curve.Point, chal *big.Int) bool {
	c := c1.Curve()
	first := p.Alpha.Add(c1.Mul(chal)).Equal(c.Commit(p.Z1, p.Z2))
	second := p.Beta.Add(c2.Mul(chal)).Equal(c.Commit(p.Z3, p.Z4))
	third := p.Delta.Add(c3.Mul(chal)).Equal(c.MultiScalarMult([]*big.Int{p.Z3, p.Z5}, []*curve.Point{c1, c.H()}))
	return first && second && third
}

func (p *MulProof) encode(e *curve.Encoder, c *curve.Curve) {
	e.WritePoints(p.Alpha, p.Beta, p.Delta)
	e.WriteScalars(c, p.Z1, p.Z2, p.Z3, p.Z4, p.Z5)
}

func decodeMulProof(d *curve.Decoder, c *curve.Curve) *MulProof {
	p := &MulProof{Alpha: d.ReadPoint(c), Beta: d.ReadPoint(c), Delta: d.ReadPoint(c)}
	p.Z1, p.Z2, p.Z3, p.Z4, p.Z5 = d.ReadScalar(c), d.ReadScalar(c), d.ReadScalar(c), d.ReadScalar(c), d.ReadScalar(c)
	return p
}

func (p *MulProof) Bytes() []byte {
	e := curve.NewEncoder(p.SerializedSize())
	p.encode(e, p.Alpha.Curve())
	return e.Bytes()
}

func (p *MulProof) SerializedSize() int {
	c := p.Alpha.Curve()
	return 3*c.PointSize() + 5*c.ScalarSize()
}

func DecodeMulProof(c *curve.Curve, buf []byte) (*MulProof, error) {
	d := curve.NewDecoder(buf)
	p := decodeMulProof(d, c)
	return p, d.Finish()
}
