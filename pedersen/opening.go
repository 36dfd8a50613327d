package pedersen

import (
	"io"
	"math/big"

	"github.com/gtank/merlin"

	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// OpeningProof proves knowledge of x, r with C = x·G + r·H.
type OpeningProof struct {
	Alpha  *curve.Point
	Z1, Z2 *big.Int
}

// OpeningIntermediate holds the prover's first move.
type OpeningIntermediate struct {
	Alpha  *curve.Point
	t1, t2 *big.Int
}

func openingTranscript(t *merlin.Transcript, c1, alpha *curve.Point) {
	transcript.DomainSep(t, transcript.OpeningProof)
	transcript.AppendPoint(t, "C1", c1)
	transcript.AppendPoint(t, "alpha", alpha)
}

// NewOpeningIntermediate samples the first move for c1 and absorbs it into t.
func NewOpeningIntermediate(t *merlin.Transcript, rng io.Reader, c1 *Commitment) *OpeningIntermediate {
	c := c1.curve()
	oi := &OpeningIntermediate{t1: c.RandomScalar(rng), t2: c.RandomScalar(rng)}
	oi.Alpha = c.Commit(oi.t1, oi.t2)
	openingTranscript(t, c1.Point, oi.Alpha)
	return oi
}

// Prove answers chal for the opening (x, c1.Rand).
func (oi *OpeningIntermediate) Prove(x *big.Int, c1 *Commitment, chal *big.Int) *OpeningProof {
	c := c1.curve()
	return &OpeningProof{
		Alpha: oi.Alpha,
		Z1:    c.ScalarAdd(c.ScalarMul(x, chal), oi.t1),
		Z2:    c.ScalarAdd(c.ScalarMul(c1.Rand, chal), oi.t2),
	}
}

// ProveOpening runs the whole Fiat-Shamir opening proof.
func ProveOpening(t *merlin.Transcript, rng io.Reader, x *big.Int, c1 *Commitment) *OpeningProof {
	oi := NewOpeningIntermediate(t, rng, c1)
	return oi.Prove(x, c1, transcript.ChallengeScalar(t, "c", c1.curve()))
}

func (p *OpeningProof) AddToTranscript(t *merlin.Transcript, c1 *curve.Point) {
	openingTranscript(t, c1, p.Alpha)
}

func (p *OpeningProof) Verify(t *merlin.Transcript, c1 *curve.Point) bool {
	p.AddToTranscript(t, c1)
	return p.VerifyWithChallenge(c1, transcript.ChallengeScalar(t, "c", c1.Curve()))
}

// VerifyWithChallenge checks z1·G + z2·H == chal·C + α.
func (p *OpeningProof) VerifyWithChallenge(c1 *curve.Point, chal *big.Int) bool {
	c := c1.Curve()
	lhs := c.Commit(p.Z1, p.Z2)
	rhs := c1.Mul(chal).Add(p.Alpha)
	return lhs.Equal(rhs)
}

func (p *OpeningProof) encode(e *curve.Encoder, c *curve.Curve) {
	e.WritePoint(p.Alpha).WriteScalars(c, p.Z1, p.Z2)
}

func decodeOpeningProof(d *curve.Decoder, c *curve.Curve) *OpeningProof {
	return &OpeningProof{Alpha: d.ReadPoint(c), Z1: d.ReadScalar(c), Z2: d.ReadScalar(c)}
}

func (p *OpeningProof) Bytes() []byte {
	c := p.Alpha.Curve()
	e := curve.NewEncoder(p.SerializedSize())
	p.encode(e, c)
	return e.Bytes()
}

func (p *OpeningProof) SerializedSize() int {
	c := p.Alpha.Curve()
	return c.PointSize() + 2*c.ScalarSize()
}

func DecodeOpeningProof(c *curve.Curve, buf []byte) (*OpeningProof, error) {
	d := curve.NewDecoder(buf)
	p := decodeOpeningProof(d, c)
	return p, d.Finish()
}
