package pedersen

import (
	"io"
	"math/big"

	"github.com/gtank/merlin"

	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// EqualityProof proves that two commitments hide the same value.
type EqualityProof struct {
	Alpha *curve.Point
	Z     *big.Int
}

type EqualityIntermediate struct {
	Alpha *curve.Point
	r     *big.Int
}

func equalityTranscript(t *merlin.Transcript, c1, c2, alpha *curve.Point) {
	transcript.DomainSep(t, transcript.EqualityProof)
	transcript.AppendPoint(t, "C1", c1)
	transcript.AppendPoint(t, "C2", c2)
	transcript.AppendPoint(t, "alpha", alpha)
}

func NewEqualityIntermediate(t *merlin.Transcript, rng io.Reader, c1, c2 *Commitment) *EqualityIntermediate {
	c := c1.curve()
	ei := &EqualityIntermediate{r: c.RandomScalar(rng)}
	ei.Alpha = c.H().Mul(ei.r)
	equalityTranscript(t, c1.Point, c2.Point, ei.Alpha)
	return ei
}

// Prove answers chal with z = chal·(r1 - r2) + r.
func (ei *EqualityIntermediate) Prove(c1, c2 *Commitment, chal *big.Int) *EqualityProof {
	c := c1.curve()
	z := c.ScalarMul(chal, c.ScalarSub(c1.Rand, c2.Rand))
	return &EqualityProof{Alpha: ei.Alpha, Z: c.ScalarAdd(z, ei.r)}
}

func ProveEquality(t *merlin.Transcript, rng io.Reader, c1, c2 *Commitment) *EqualityProof {
	ei := NewEqualityIntermediate(t, rng, c1, c2)
	return ei.Prove(c1, c2, transcript.ChallengeScalar(t, "c", c1.curve()))
}

func (p *EqualityProof) AddToTranscript(t *merlin.Transcript, c1, c2 *curve.Point) {
	equalityTranscript(t, c1, c2, p.Alpha)
}

func (p *EqualityProof) Verify(t *merlin.Transcript, c1, c2 *curve.Point) bool {
	p.AddToTranscript(t, c1, c2)
	return p.VerifyWithChallenge(c1, c2, transcript.ChallengeScalar(t, "c", c1.Curve()))
}

// VerifyWithChallenge checks z·H == chal·(C1 - C2) + α.
func (p *EqualityProof) VerifyWithChallenge(c1, c2 *curve.Point, chal *big.Int) bool {
	lhs := c1.Curve().H().Mul(p.Z)
	rhs := c1.Sub(c2).Mul(chal).Add(p.Alpha)
	return lhs.Equal(rhs)
}

func (p *EqualityProof) encode(e *curve.Encoder, c *curve.Curve) {
	e.WritePoint(p.Alpha).WriteScalar(c, p.Z)
}

func decodeEqualityProof(d *curve.Decoder, c *curve.Curve) *EqualityProof {
	return &EqualityProof{Alpha: d.ReadPoint(c), Z: d.ReadScalar(c)}
}

func (p *EqualityProof) Bytes() []byte {
	e := curve.NewEncoder(p.SerializedSize())
	p.encode(e, p.Alpha.Curve())
	return e.Bytes()
}

func (p *EqualityProof) SerializedSize() int {
	c := p.Alpha.Curve()
	return c.PointSize() + c.ScalarSize()
}

func DecodeEqualityProof(c *curve.Curve, buf []byte) (*EqualityProof, error) {
	d := curve.NewDecoder(buf)
	p := decodeEqualityProof(d, c)
	return p, d.Finish()
}
