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

// ScalarMulProof is one repetition of Construction 4.1 of CDLS: it shows
// that the committed S equals λ·P for a public P on O and λ committed on O.
// Each repetition has soundness error 1/2.
type ScalarMulProof struct {
	C1     *curve.Point // λ on O
	C2, C3 *curve.Point // S
	C4     *curve.Point // α on O
	C5, C6 *curve.Point // α·P
	C7, C8 *curve.Point // (α-λ)·P

	Z1, Z2 *big.Int // O scalars
	Z3, Z4 *big.Int // T scalars

	EAP *PointAddProof
}

type ScalarMulIntermediate struct {
	c1     *curve.Point
	r1     *big.Int
	alpha  *big.Int
	c2, c3 *Commitment
	c4     *curve.Point
	r4     *big.Int
	c5, c6 *Commitment
	c7, c8 *Commitment

	eapi *PointAddIntermediate
}

func scalarMulTranscript(t *merlin.Transcript, cs [8]*curve.Point) {
	transcript.DomainSep(t, transcript.ScalarMulProof)
	for i, c := range cs {
		transcript.AppendPoint(t, scalarMulLabels[i], c)
	}
}

var scalarMulLabels = [8]string{"C1", "C2", "C3", "C4", "C5", "C6", "C7", "C8"}

// pickAlpha samples α ∉ {0, λ, 2λ} so that none of the points in the
// addition S + (α-λ)·P = α·P is the identity or a doubling.
func pickAlpha(o *curve.Curve, rng io.Reader, lambda *big.Int) *big.Int {
	lambda2 := o.ScalarAdd(lambda, lambda)
	for {
		alpha := o.RandomScalar(rng)
		if alpha.Sign() != 0 && alpha.Cmp(lambda) != 0 && alpha.Cmp(lambda2) != 0 {
			return alpha
		}
	}
}

func checkScalarMulStatement(pr *curve.Pair, s *curve.Point, lambda *big.Int, p *curve.Point) error {
	o := pr.O
	if new(big.Int).Mod(lambda, o.Order()).Sign() == 0 || p.IsIdentity() {
		return errors.Wrap(boomerang.ErrProtocolMisuse, "scalar multiplication by zero or of the identity")
	}
	if !p.Mul(lambda).Equal(s) {
		return errors.Wrap(boomerang.ErrProtocolMisuse, "S is not λ·P")
	}
	return nil
}

// NewScalarMulIntermediate builds the first move of one repetition proving
// s = λ·p.
func NewScalarMulIntermediate(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, s *curve.Point, lambda *big.Int, p *curve.Point) (*ScalarMulIntermediate, error) {
	if err := checkScalarMulStatement(pr, s, lambda, p); err != nil {
		return nil, err
	}
	o, tc := pr.O, pr.T
	si := &ScalarMulIntermediate{r1: o.RandomScalar(rng)}
	si.c1 = o.Commit(lambda, si.r1)
	si.alpha = pickAlpha(o, rng, lambda)

	ap := p.Mul(si.alpha)
	amlp := p.Mul(o.ScalarSub(si.alpha, lambda))

	si.c2 = New(tc, pr.FromOBToSF(s.X()), rng)
	si.c3 = New(tc, pr.FromOBToSF(s.Y()), rng)
	si.r4 = o.RandomScalar(rng)
	si.c4 = o.Commit(si.alpha, si.r4)
	si.c5 = New(tc, pr.FromOBToSF(ap.X()), rng)
	si.c6 = New(tc, pr.FromOBToSF(ap.Y()), rng)
	si.c7 = New(tc, pr.FromOBToSF(amlp.X()), rng)
	si.c8 = New(tc, pr.FromOBToSF(amlp.Y()), rng)

	scalarMulTranscript(t, [8]*curve.Point{si.c1, si.c2.Point, si.c3.Point, si.c4, si.c5.Point, si.c6.Point, si.c7.Point, si.c8.Point})

	cs := CoordinateCommitments{si.c2, si.c3, si.c7, si.c8, si.c5, si.c6}
	eapi, err := NewPointAddIntermediateWithCommitments(t, rng, pr, s, amlp, ap, cs)
	if err != nil {
		return nil, err
	}
	si.eapi = eapi
	return si, nil
}

func (si *ScalarMulIntermediate) addToTranscript(t *merlin.Transcript) {
	scalarMulTranscript(t, [8]*curve.Point{si.c1, si.c2.Point, si.c3.Point, si.c4, si.c5.Point, si.c6.Point, si.c7.Point, si.c8.Point})
	si.eapi.addToTranscript(t)
}

// Prove answers a single-bit challenge. -1 opens α·P, +1 opens (α-λ)·P.
func (si *ScalarMulIntermediate) Prove(pr *curve.Pair, s *curve.Point, lambda *big.Int, p *curve.Point, chal *big.Int) (*ScalarMulProof, error) {
	o := pr.O
	ap := p.Mul(si.alpha)
	amlp := p.Mul(o.ScalarSub(si.alpha, lambda))

	proof := &ScalarMulProof{
		C1: si.c1, C2: si.c2.Point, C3: si.c3.Point, C4: si.c4,
		C5: si.c5.Point, C6: si.c6.Point, C7: si.c7.Point, C8: si.c8.Point,
	}
	switch {
	case pr.IsCM1(chal):
		proof.Z1, proof.Z2 = si.alpha, si.r4
		proof.Z3, proof.Z4 = si.c5.Rand, si.c6.Rand
	case pr.IsCP1(chal):
		proof.Z1, proof.Z2 = o.ScalarSub(si.alpha, lambda), o.ScalarSub(si.r4, si.r1)
		proof.Z3, proof.Z4 = si.c7.Rand, si.c8.Rand
	default:
		return nil, errors.Wrap(boomerang.ErrInvalidChallenge, "scalar multiplication needs a ±1 challenge")
	}
	proof.EAP = si.eapi.Prove(pr, s, amlp, ap, chal)
	return proof, nil
}

// ProveScalarMul runs a single repetition with the lowest bit of the last
// challenge byte selecting the branch.
func ProveScalarMul(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, s *curve.Point, lambda *big.Int, p *curve.Point) (*ScalarMulProof, error) {
	si, err := NewScalarMulIntermediate(t, rng, pr, s, lambda, p)
	if err != nil {
		return nil, err
	}
	return si.Prove(pr, s, lambda, p, singleBitChallenge(t, pr))
}

func singleBitChallenge(t *merlin.Transcript, pr *curve.Pair) *big.Int {
	buf := transcript.ChallengeBytes(t, "c", transcript.ChallengeSize)
	return pr.SingleBitChallenge(buf[len(buf)-1] & 1)
}

func (p *ScalarMulProof) points() [8]*curve.Point {
	return [8]*curve.Point{p.C1, p.C2, p.C3, p.C4, p.C5, p.C6, p.C7, p.C8}
}

func (p *ScalarMulProof) coordinates() [6]*curve.Point {
	return [6]*curve.Point{p.C2, p.C3, p.C7, p.C8, p.C5, p.C6}
}

func (p *ScalarMulProof) AddToTranscript(t *merlin.Transcript) {
	scalarMulTranscript(t, p.points())
	p.EAP.AddToTranscript(t, p.coordinates())
}

func (p *ScalarMulProof) Verify(t *merlin.Transcript, pr *curve.Pair, base *curve.Point) bool {
	p.AddToTranscript(t)
	return p.VerifyWithChallenge(pr, base, singleBitChallenge(t, pr))
}

// VerifyWithChallenge checks the opened branch and the point addition proof.
func (p *ScalarMulProof) VerifyWithChallenge(pr *curve.Pair, base *curve.Point, chal *big.Int) bool {
	o, tc := pr.O, pr.T
	z1p := base.Mul(p.Z1)
	if z1p.IsIdentity() {
		return false
	}
	zx, zy := pr.FromOBToSF(z1p.X()), pr.FromOBToSF(z1p.Y())

	var worked bool
	switch {
	case pr.IsCM1(chal):
		worked = p.C4.Equal(o.Commit(p.Z1, p.Z2)) &&
			p.C5.Equal(tc.Commit(zx, p.Z3)) &&
			p.C6.Equal(tc.Commit(zy, p.Z4))
	case pr.IsCP1(chal):
		worked = p.C4.Sub(p.C1).Equal(o.Commit(p.Z1, p.Z2)) &&
			p.C7.Equal(tc.Commit(zx, p.Z3)) &&
			p.C8.Equal(tc.Commit(zy, p.Z4))
	default:
		return false
	}
	return worked && p.EAP.VerifyWithChallenge(pr, p.coordinates(), chal)
}

func (p *ScalarMulProof) encode(e *curve.Encoder, pr *curve.Pair) {
	e.WritePoints(p.C1, p.C2, p.C3, p.C4, p.C5, p.C6, p.C7, p.C8)
	e.WriteScalars(pr.O, p.Z1, p.Z2)
	e.WriteScalars(pr.T, p.Z3, p.Z4)
	p.EAP.encode(e, pr.T)
}

func decodeScalarMulProof(d *curve.Decoder, pr *curve.Pair) *ScalarMulProof {
	o, tc := pr.O, pr.T
	p := &ScalarMulProof{C1: d.ReadPoint(o), C2: d.ReadPoint(tc), C3: d.ReadPoint(tc), C4: d.ReadPoint(o)}
	p.C5, p.C6, p.C7, p.C8 = d.ReadPoint(tc), d.ReadPoint(tc), d.ReadPoint(tc), d.ReadPoint(tc)
	p.Z1, p.Z2 = d.ReadScalar(o), d.ReadScalar(o)
	p.Z3, p.Z4 = d.ReadScalar(tc), d.ReadScalar(tc)
	p.EAP = decodePointAddProof(d, tc, false)
	return p
}

func (p *ScalarMulProof) SerializedSize() int {
	o, tc := p.C1.Curve(), p.C2.Curve()
	return 2*o.PointSize() + 6*tc.PointSize() + 2*o.ScalarSize() + 2*tc.ScalarSize() + p.EAP.SerializedSize()
}

func (p *ScalarMulProof) Bytes(pr *curve.Pair) []byte {
	e := curve.NewEncoder(p.SerializedSize())
	p.encode(e, pr)
	return e.Bytes()
}

func DecodeScalarMulProof(pr *curve.Pair, buf []byte) (*ScalarMulProof, error) {
	d := curve.NewDecoder(buf)
	p := decodeScalarMulProof(d, pr)
	return p, d.Finish()
}
