package pedersen

import (
	"io"
	"math/big"

	"github.com/gtank/merlin"
	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// ZeroOneProof proves that a commitment opens to 0 or 1 (Groth-Kohlweiss).
type ZeroOneProof struct {
	CA, CB    *curve.Point
	F, ZA, ZB *big.Int
}

type ZeroOneIntermediate struct {
	CA, CB *curve.Point

	a, s, t *big.Int
}

func zeroOneTranscript(t *merlin.Transcript, cm, ca, cb *curve.Point) {
	transcript.DomainSep(t, transcript.ZeroOneProof)
	transcript.AppendPoint(t, "C", cm)
	transcript.AppendPoint(t, "ca", ca)
	transcript.AppendPoint(t, "cb", cb)
}

func isBit(m *big.Int) bool {
	return m != nil && (m.Sign() == 0 || m.Cmp(big.NewInt(1)) == 0)
}

func NewZeroOneIntermediate(t *merlin.Transcript, rng io.Reader, m *big.Int, cm *Commitment) (*ZeroOneIntermediate, error) {
	if !isBit(m) {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "%v is not a bit", m)
	}
	c := cm.curve()
	zi := &ZeroOneIntermediate{
		a: c.RandomScalar(rng),
		s: c.RandomScalar(rng),
		t: c.RandomScalar(rng),
	}
	zi.CA = c.Commit(zi.a, zi.s)
	zi.CB = c.Commit(c.ScalarMul(zi.a, m), zi.t)
	zeroOneTranscript(t, cm.Point, zi.CA, zi.CB)
	return zi, nil
}

// Prove answers chal for the bit m in cm.
func (zi *ZeroOneIntermediate) Prove(m *big.Int, cm *Commitment, chal *big.Int) *ZeroOneProof {
	c := cm.curve()
	f := c.ScalarAdd(c.ScalarMul(m, chal), zi.a)
	return &ZeroOneProof{
		CA: zi.CA,
		CB: zi.CB,
		F:  f,
		ZA: c.ScalarAdd(c.ScalarMul(cm.Rand, chal), zi.s),
		ZB: c.ScalarAdd(c.ScalarMul(cm.Rand, c.ScalarSub(chal, f)), zi.t),
	}
}

func ProveZeroOne(t *merlin.Transcript, rng io.Reader, m *big.Int, cm *Commitment) (*ZeroOneProof, error) {
	zi, err := NewZeroOneIntermediate(t, rng, m, cm)
	if err != nil {
		return nil, err
	}
	return zi.Prove(m, cm, transcript.ChallengeScalar(t, "c", cm.curve())), nil
}

func (p *ZeroOneProof) AddToTranscript(t *merlin.Transcript, cm *curve.Point) {
	zeroOneTranscript(t, cm, p.CA, p.CB)
}

func (p *ZeroOneProof) Verify(t *merlin.Transcript, cm *curve.Point) bool {
	p.AddToTranscript(t, cm)
	return p.VerifyWithChallenge(cm, transcript.ChallengeScalar(t, "c", cm.Curve()))
}

// VerifyWithChallenge checks ca + c·C = f·G + za·H and cb + (c-f)·C = zb·H.
func (p *ZeroOneProof) VerifyWithChallenge(cm *curve.Point, chal *big.Int) bool {
	c := cm.Curve()
	first := p.CA.Add(cm.Mul(chal)).Equal(c.Commit(p.F, p.ZA))
	second := p.CB.Add(cm.Mul(c.ScalarSub(chal, p.F))).Equal(c.H().Mul(p.ZB))
	return first && second
}

func (p *ZeroOneProof) Bytes() []byte {
	c := p.CA.Curve()
	e := curve.NewEncoder(p.SerializedSize())
	e.WritePoints(p.CA, p.CB)
	e.WriteScalars(c, p.F, p.ZA, p.ZB)
	return e.Bytes()
}

func (p *ZeroOneProof) SerializedSize() int {
	c := p.CA.Curve()
	return 2*c.PointSize() + 3*c.ScalarSize()
}

func DecodeZeroOneProof(c *curve.Curve, buf []byte) (*ZeroOneProof, error) {
	d := curve.NewDecoder(buf)
	p := &ZeroOneProof{CA: d.ReadPoint(c), CB: d.ReadPoint(c)}
	p.F, p.ZA, p.ZB = d.ReadScalar(c), d.ReadScalar(c), d.ReadScalar(c)
	return p, d.Finish()
}
