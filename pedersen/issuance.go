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

// PKSlot is the slot of a multi-commitment holding the user secret key.
const PKSlot = 2

// IssuanceProofMulti proves knowledge of every opening of a multi-commitment
// C = Σ m_i·G_i + r·H. When a public key is bound, it additionally shows
// that slot PKSlot holds x with pk = x·G.
type IssuanceProofMulti struct {
	Alpha  *curve.Point
	Alpha2 *curve.Point // nil unless a public key is bound
	Z      *big.Int
	Zs     []*big.Int
}

type IssuanceIntermediate struct {
	Alpha  *curve.Point
	Alpha2 *curve.Point

	t  *big.Int
	ts []*big.Int
}

func issuanceTranscript(t *merlin.Transcript, c1 *curve.Point, id *big.Int, pk, alpha, alpha2 *curve.Point) {
	transcript.DomainSep(t, transcript.IssuanceProof)
	transcript.AppendPoint(t, "C1", c1)
	if id != nil {
		transcript.AppendScalar(t, "id0", c1.Curve(), id)
	}
	transcript.AppendPoint(t, "alpha", alpha)
	if pk != nil {
		transcript.AppendPoint(t, "pk", pk)
		transcript.AppendPoint(t, "alpha 2", alpha2)
	}
}

// NewIssuanceIntermediate samples the first move over gens. A non-nil pk
// binds slot PKSlot to it.
func NewIssuanceIntermediate(t *merlin.Transcript, rng io.Reader, c1 *Commitment, gens []*curve.Point, pk *curve.Point) (*IssuanceIntermediate, error) {
	return newIssuanceIntermediate(t, rng, c1, gens, nil, pk)
}

// id, when set, is the public value of slot 0. Its nonce is zero so the
// response for slot 0 is fixed by the challenge.
func newIssuanceIntermediate(t *merlin.Transcript, rng io.Reader, c1 *Commitment, gens []*curve.Point, id *big.Int, pk *curve.Point) (*IssuanceIntermediate, error) {
	c := c1.curve()
	if pk != nil && len(gens) <= PKSlot {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "binding a public key needs more than %d slots", PKSlot)
	}
	ii := &IssuanceIntermediate{t: c.RandomScalar(rng), ts: make([]*big.Int, len(gens))}
	for i := range ii.ts {
		ii.ts[i] = c.RandomScalar(rng)
	}
	if id != nil {
		if len(gens) == 0 {
			return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "disclosing slot 0 of an empty commitment")
		}
		ii.ts[0] = big.NewInt(0)
	}
	ks := append(append([]*big.Int{}, ii.ts...), ii.t)
	ps := append(append([]*curve.Point{}, gens...), c.H())
	ii.Alpha = c.MultiScalarMult(ks, ps)
	if pk != nil {
		ii.Alpha2 = c.ScalarBaseMult(ii.ts[PKSlot])
	}
	issuanceTranscript(t, c1.Point, id, pk, ii.Alpha, ii.Alpha2)
	return ii, nil
}

// Prove answers chal for the opening (vals, c1.Rand).
func (ii *IssuanceIntermediate) Prove(vals []*big.Int, c1 *Commitment, chal *big.Int) (*IssuanceProofMulti, error) {
	if len(vals) != len(ii.ts) {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "%d values for %d generators", len(vals), len(ii.ts))
	}
	c := c1.curve()
	p := &IssuanceProofMulti{
		Alpha:  ii.Alpha,
		Alpha2: ii.Alpha2,
		Z:      c.ScalarAdd(ii.t, c.ScalarMul(chal, c1.Rand)),
		Zs:     make([]*big.Int, len(vals)),
	}
	for i, m := range vals {
		p.Zs[i] = c.ScalarAdd(ii.ts[i], c.ScalarMul(chal, m))
	}
	return p, nil
}

// ProveIssuance runs the whole Fiat-Shamir proof. pk may be nil.
func ProveIssuance(t *merlin.Transcript, rng io.Reader, vals []*big.Int, c1 *Commitment, gens []*curve.Point, pk *curve.Point) (*IssuanceProofMulti, error) {
	if len(vals) != len(gens) {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "%d values for %d generators", len(vals), len(gens))
	}
	ii, err := NewIssuanceIntermediate(t, rng, c1, gens, pk)
	if err != nil {
		return nil, err
	}
	return ii.Prove(vals, c1, transcript.ChallengeScalar(t, "c", c1.curve()))
}

// ProveIssuanceWithID is ProveIssuance with vals[0] made public: the
// verifier learns that slot 0 of c1 holds exactly that value.
func ProveIssuanceWithID(t *merlin.Transcript, rng io.Reader, vals []*big.Int, c1 *Commitment, gens []*curve.Point, pk *curve.Point) (*IssuanceProofMulti, error) {
	if len(vals) != len(gens) || len(vals) == 0 {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "%d values for %d generators", len(vals), len(gens))
	}
	ii, err := newIssuanceIntermediate(t, rng, c1, gens, vals[0], pk)
	if err != nil {
		return nil, err
	}
	return ii.Prove(vals, c1, transcript.ChallengeScalar(t, "c", c1.curve()))
}

func (p *IssuanceProofMulti) AddToTranscript(t *merlin.Transcript, c1, pk *curve.Point) {
	issuanceTranscript(t, c1, nil, pk, p.Alpha, p.Alpha2)
}

// Verify checks the proof for c1 over gens. pk must be nil exactly when the
// prover bound no key.
func (p *IssuanceProofMulti) Verify(t *merlin.Transcript, c1 *curve.Point, gens []*curve.Point, pk *curve.Point) bool {
	if (pk == nil) != (p.Alpha2 == nil) {
		return false
	}
	p.AddToTranscript(t, c1, pk)
	return p.VerifyWithChallenge(c1, gens, pk, transcript.ChallengeScalar(t, "c", c1.Curve()))
}

// VerifyWithID checks a proof from ProveIssuanceWithID for slot 0 = id.
func (p *IssuanceProofMulti) VerifyWithID(t *merlin.Transcript, c1 *curve.Point, gens []*curve.Point, id *big.Int, pk *curve.Point) bool {
	if (pk == nil) != (p.Alpha2 == nil) || id == nil || len(p.Zs) == 0 || len(p.Zs) != len(gens) {
		return false
	}
	c := c1.Curve()
	issuanceTranscript(t, c1, id, pk, p.Alpha, p.Alpha2)
	chal := transcript.ChallengeScalar(t, "c", c)
	if p.Zs[0].Cmp(c.ScalarMul(chal, id)) != 0 {
		return false
	}
	return p.VerifyWithChallenge(c1, gens, pk, chal)
}

func (p *IssuanceProofMulti) VerifyWithChallenge(c1 *curve.Point, gens []*curve.Point, pk *curve.Point, chal *big.Int) bool {
	if len(p.Zs) != len(gens) {
		return false
	}
	c := c1.Curve()
	ks := append(append([]*big.Int{}, p.Zs...), p.Z)
	ps := append(append([]*curve.Point{}, gens...), c.H())
	if !c.MultiScalarMult(ks, ps).Equal(c1.Mul(chal).Add(p.Alpha)) {
		return false
	}
	if pk == nil {
		return true
	}
	if p.Alpha2 == nil || len(gens) <= PKSlot {
		return false
	}
	return c.ScalarBaseMult(p.Zs[PKSlot]).Equal(pk.Mul(chal).Add(p.Alpha2))
}

func (p *IssuanceProofMulti) encode(e *curve.Encoder, c *curve.Curve) {
	e.WritePoint(p.Alpha)
	if p.Alpha2 != nil {
		e.WriteByte(1)
		e.WritePoint(p.Alpha2)
	} else {
		e.WriteByte(0)
	}
	e.WriteScalar(c, p.Z)
	e.WriteUint32(uint32(len(p.Zs)))
	e.WriteScalars(c, p.Zs...)
}

func decodeIssuanceProofMulti(d *curve.Decoder, c *curve.Curve) *IssuanceProofMulti {
	p := &IssuanceProofMulti{Alpha: d.ReadPoint(c)}
	switch flag, _ := d.ReadByte(); flag {
	case 1:
		p.Alpha2 = d.ReadPoint(c)
	case 0:
	default:
		d.Fail(errors.Wrap(boomerang.ErrMalformedInput, "issuance proof flag"))
	}
	p.Z = d.ReadScalar(c)
	n := int(d.ReadUint32())
	if n > d.Remaining()/c.ScalarSize() {
		d.Fail(errors.Wrapf(boomerang.ErrMalformedInput, "%d responses exceed the buffer", n))
		return p
	}
	p.Zs = d.ReadScalars(c, n)
	return p
}

func (p *IssuanceProofMulti) SerializedSize() int {
	c := p.Alpha.Curve()
	n := c.PointSize() + 1 + c.ScalarSize() + 4 + len(p.Zs)*c.ScalarSize()
	if p.Alpha2 != nil {
		n += c.PointSize()
	}
	return n
}

func (p *IssuanceProofMulti) Bytes() []byte {
	e := curve.NewEncoder(p.SerializedSize())
	p.encode(e, p.Alpha.Curve())
	return e.Bytes()
}

func DecodeIssuanceProofMulti(c *curve.Curve, buf []byte) (*IssuanceProofMulti, error) {
	d := curve.NewDecoder(buf)
	p := decodeIssuanceProofMulti(d, c)
	return p, d.Finish()
}

// EncodeTo and DecodeIssuanceProofMultiFrom let enclosing messages embed
// the proof.
func (p *IssuanceProofMulti) EncodeTo(e *curve.Encoder) { p.encode(e, p.Alpha.Curve()) }

func DecodeIssuanceProofMultiFrom(d *curve.Decoder, c *curve.Curve) *IssuanceProofMulti {
	return decodeIssuanceProofMulti(d, c)
}
