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

// ZKAttestScalarMulProof is one repetition of the ZKAttest scalar
// multiplication proof of S = λ·P. The first challenge bit c0 selects what
// is opened. When c0 is +1 the point addition (α-λ)·P + S = α·P is answered
// with the second bit c1, otherwise only its first move is sent.
type ZKAttestScalarMulProof struct {
	C1     *curve.Point // λ on O
	C2, C3 *curve.Point // S
	C4, C5 *curve.Point // (α-λ)·P
	A1     *curve.Point // α on O
	A2, A3 *curve.Point // α·P

	Z1, Z2 *big.Int // O scalars
	Z3, Z4 *big.Int // T scalars

	// Exactly one of PA and PAFirst is set.
	PA      *ZKAttestPointAddProof
	PAFirst *ZKAttestPointAddFirstMove
}

type ZKAttestScalarMulIntermediate struct {
	c1     *curve.Point
	r1     *big.Int
	c2, c3 *Commitment
	alpha  *big.Int
	a1     *curve.Point
	beta1  *big.Int
	a2, a3 *Commitment
	c4, c5 *Commitment

	pai *ZKAttestPointAddIntermediate
}

var zkAttestScalarMulLabels = [8]string{"C1", "C2", "C3", "C4", "C5", "A1", "A2", "A3"}

func zkAttestScalarMulTranscript(t *merlin.Transcript, ps [8]*curve.Point) {
	transcript.DomainSep(t, transcript.ZKAttestScalarMul)
	for i, p := range ps {
		transcript.AppendPoint(t, zkAttestScalarMulLabels[i], p)
	}
}

// NewZKAttestScalarMulIntermediate builds the first move of one repetition
// proving s = λ·p.
func NewZKAttestScalarMulIntermediate(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, s *curve.Point, lambda *big.Int, p *curve.Point) (*ZKAttestScalarMulIntermediate, error) {
	if err := checkScalarMulStatement(pr, s, lambda, p); err != nil {
		return nil, err
	}
	o, tc := pr.O, pr.T
	zi := &ZKAttestScalarMulIntermediate{r1: o.RandomScalar(rng)}
	zi.c1 = o.Commit(lambda, zi.r1)
	zi.c2 = New(tc, pr.FromOBToSF(s.X()), rng)
	zi.c3 = New(tc, pr.FromOBToSF(s.Y()), rng)

	zi.alpha = pickAlpha(o, rng, lambda)
	gamma := p.Mul(zi.alpha)
	zi.beta1 = o.RandomScalar(rng)
	zi.a1 = o.Commit(zi.alpha, zi.beta1)
	zi.a2 = New(tc, pr.FromOBToSF(gamma.X()), rng)
	zi.a3 = New(tc, pr.FromOBToSF(gamma.Y()), rng)

	amlp := p.Mul(o.ScalarSub(zi.alpha, lambda))
	zi.c4 = New(tc, pr.FromOBToSF(amlp.X()), rng)
	zi.c5 = New(tc, pr.FromOBToSF(amlp.Y()), rng)

	zkAttestScalarMulTranscript(t, [8]*curve.Point{zi.c1, zi.c2.Point, zi.c3.Point, zi.c4.Point, zi.c5.Point, zi.a1, zi.a2.Point, zi.a3.Point})

	cs := CoordinateCommitments{zi.c4, zi.c5, zi.c2, zi.c3, zi.a2, zi.a3}
	pai, err := NewZKAttestPointAddIntermediateWithCommitments(t, rng, pr, amlp, s, gamma, cs)
	if err != nil {
		return nil, err
	}
	zi.pai = pai
	return zi, nil
}

func (zi *ZKAttestScalarMulIntermediate) addToTranscript(t *merlin.Transcript) {
	zkAttestScalarMulTranscript(t, [8]*curve.Point{zi.c1, zi.c2.Point, zi.c3.Point, zi.c4.Point, zi.c5.Point, zi.a1, zi.a2.Point, zi.a3.Point})
	zi.pai.FirstMove().AddToTranscript(t, zi.pai.comms.Points())
}

// Prove answers the pair of single-bit challenges.
func (zi *ZKAttestScalarMulIntermediate) Prove(pr *curve.Pair, s *curve.Point, lambda *big.Int, p *curve.Point, c0, c1 *big.Int) (*ZKAttestScalarMulProof, error) {
	if !isSingleBit(pr, c0) || !isSingleBit(pr, c1) {
		return nil, errors.Wrap(boomerang.ErrInvalidChallenge, "zkattest scalar multiplication needs ±1 challenges")
	}
	o := pr.O
	proof := &ZKAttestScalarMulProof{
		C1: zi.c1, C2: zi.c2.Point, C3: zi.c3.Point, C4: zi.c4.Point, C5: zi.c5.Point,
		A1: zi.a1, A2: zi.a2.Point, A3: zi.a3.Point,
	}
	if pr.IsCP1(c0) {
		gamma := p.Mul(zi.alpha)
		amlp := p.Mul(o.ScalarSub(zi.alpha, lambda))
		proof.PA = zi.pai.Prove(pr, amlp, s, gamma, c1)
		proof.Z1, proof.Z2 = o.ScalarSub(zi.alpha, lambda), o.ScalarSub(zi.beta1, zi.r1)
		proof.Z3, proof.Z4 = zi.c4.Rand, zi.c5.Rand
	} else {
		proof.PAFirst = zi.pai.FirstMove()
		proof.Z1, proof.Z2 = zi.alpha, zi.beta1
		proof.Z3, proof.Z4 = zi.a2.Rand, zi.a3.Rand
	}
	return proof, nil
}

func isSingleBit(pr *curve.Pair, c *big.Int) bool {
	return pr.IsCP1(c) || pr.IsCM1(c)
}

// twoBitChallenge reads c0 and c1 from the two low bits of the last byte.
func twoBitChallenge(t *merlin.Transcript, pr *curve.Pair) (*big.Int, *big.Int) {
	buf := transcript.ChallengeBytes(t, "c", transcript.ChallengeSize)
	last := buf[len(buf)-1]
	return pr.SingleBitChallenge(last & 1), pr.SingleBitChallenge((last & 2) >> 1)
}

func ProveZKAttestScalarMul(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, s *curve.Point, lambda *big.Int, p *curve.Point) (*ZKAttestScalarMulProof, error) {
	zi, err := NewZKAttestScalarMulIntermediate(t, rng, pr, s, lambda, p)
	if err != nil {
		return nil, err
	}
	c0, c1 := twoBitChallenge(t, pr)
	return zi.Prove(pr, s, lambda, p, c0, c1)
}

func (p *ZKAttestScalarMulProof) coordinates() [6]*curve.Point {
	return [6]*curve.Point{p.C4, p.C5, p.C2, p.C3, p.A2, p.A3}
}

func (p *ZKAttestScalarMulProof) firstMove() *ZKAttestPointAddFirstMove {
	if p.PA != nil {
		return p.PA.FirstMove()
	}
	return p.PAFirst
}

func (p *ZKAttestScalarMulProof) AddToTranscript(t *merlin.Transcript) {
	zkAttestScalarMulTranscript(t, [8]*curve.Point{p.C1, p.C2, p.C3, p.C4, p.C5, p.A1, p.A2, p.A3})
	p.firstMove().AddToTranscript(t, p.coordinates())
}

func (p *ZKAttestScalarMulProof) wellFormed() bool {
	return (p.PA == nil) != (p.PAFirst == nil)
}

func (p *ZKAttestScalarMulProof) Verify(t *merlin.Transcript, pr *curve.Pair, base *curve.Point) bool {
	if !p.wellFormed() {
		return false
	}
	p.AddToTranscript(t)
	c0, c1 := twoBitChallenge(t, pr)
	return p.VerifyWithChallenge(pr, base, c0, c1)
}

// VerifyWithChallenge checks the opening selected by c0 and, when c0 is +1,
// the point addition answered with c1.
func (p *ZKAttestScalarMulProof) VerifyWithChallenge(pr *curve.Pair, base *curve.Point, c0, c1 *big.Int) bool {
	if !p.wellFormed() || !isSingleBit(pr, c0) || !isSingleBit(pr, c1) {
		return false
	}
	o, tc := pr.O, pr.T
	z1p := base.Mul(p.Z1)
	if z1p.IsIdentity() {
		return false
	}
	zx, zy := pr.FromOBToSF(z1p.X()), pr.FromOBToSF(z1p.Y())
	a1c := o.Commit(p.Z1, p.Z2)

	if pr.IsCP1(c0) {
		if p.PA == nil {
			return false
		}
		return p.A1.Equal(a1c.Add(p.C1)) &&
			p.C4.Equal(tc.Commit(zx, p.Z3)) &&
			p.C5.Equal(tc.Commit(zy, p.Z4)) &&
			p.PA.VerifyWithChallenge(pr, p.coordinates(), c1)
	}
	if p.PAFirst == nil {
		return false
	}
	return p.A1.Equal(a1c) &&
		p.A2.Equal(tc.Commit(zx, p.Z3)) &&
		p.A3.Equal(tc.Commit(zy, p.Z4))
}

func (p *ZKAttestScalarMulProof) encode(e *curve.Encoder, pr *curve.Pair) {
	e.WritePoints(p.C1, p.C2, p.C3, p.C4, p.C5, p.A1, p.A2, p.A3)
	e.WriteScalars(pr.O, p.Z1, p.Z2)
	e.WriteScalars(pr.T, p.Z3, p.Z4)
	if p.PA != nil {
		e.WriteByte(1)
		p.PA.encode(e, pr.T)
	} else {
		e.WriteByte(0)
		p.PAFirst.encode(e)
	}
}

func decodeZKAttestScalarMulProof(d *curve.Decoder, pr *curve.Pair) *ZKAttestScalarMulProof {
	o, tc := pr.O, pr.T
	p := &ZKAttestScalarMulProof{C1: d.ReadPoint(o)}
	p.C2, p.C3, p.C4, p.C5 = d.ReadPoint(tc), d.ReadPoint(tc), d.ReadPoint(tc), d.ReadPoint(tc)
	p.A1 = d.ReadPoint(o)
	p.A2, p.A3 = d.ReadPoint(tc), d.ReadPoint(tc)
	p.Z1, p.Z2 = d.ReadScalar(o), d.ReadScalar(o)
	p.Z3, p.Z4 = d.ReadScalar(tc), d.ReadScalar(tc)
	flag, _ := d.ReadByte()
	switch flag {
	case 1:
		p.PA = decodeZKAttestPointAddProof(d, tc, false)
	case 0:
		p.PAFirst = decodeZKAttestPointAddFirstMove(d, tc)
	default:
		if d.Err() == nil {
			d.Fail(errors.Wrap(boomerang.ErrMalformedInput, "zkattest scalar multiplication flag"))
		}
	}
	return p
}

func (p *ZKAttestScalarMulProof) SerializedSize() int {
	o, tc := p.C1.Curve(), p.C2.Curve()
	n := 2*o.PointSize() + 6*tc.PointSize() + 2*o.ScalarSize() + 2*tc.ScalarSize() + 1
	if p.PA != nil {
		return n + p.PA.SerializedSize()
	}
	return n + p.PAFirst.SerializedSize()
}

func (p *ZKAttestScalarMulProof) Bytes(pr *curve.Pair) []byte {
	e := curve.NewEncoder(p.SerializedSize())
	p.encode(e, pr)
	return e.Bytes()
}

func DecodeZKAttestScalarMulProof(pr *curve.Pair, buf []byte) (*ZKAttestScalarMulProof, error) {
	d := curve.NewDecoder(buf)
	p := decodeZKAttestScalarMulProof(d, pr)
	return p, d.Finish()
}
