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

// CoordinateCommitments are commitments on T to a.x, a.y, b.x, b.y, t.x, t.y
// for points a, b, t on O.
type CoordinateCommitments [6]*Commitment

// CommitCoordinates commits to the coordinates of a, b and t.
func CommitCoordinates(pr *curve.Pair, rng io.Reader, a, b, t *curve.Point) CoordinateCommitments {
	var cs CoordinateCommitments
	for i, p := range []*curve.Point{a, b, t} {
		cs[2*i] = New(pr.T, pr.FromOBToSF(p.X()), rng)
		cs[2*i+1] = New(pr.T, pr.FromOBToSF(p.Y()), rng)
	}
	return cs
}

// Points returns the public parts.
func (cs CoordinateCommitments) Points() [6]*curve.Point {
	var ps [6]*curve.Point
	for i, c := range cs {
		ps[i] = c.Point
	}
	return ps
}

// addWitness holds the T scalar values of the coordinates of t = a + b.
type addWitness struct {
	ax, ay, bx, by, tx, ty *big.Int
}

func newAddWitness(pr *curve.Pair, a, b, t *curve.Point) (*addWitness, error) {
	if a.IsIdentity() || b.IsIdentity() || t.IsIdentity() {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "point addition with the identity")
	}
	if a.X().Cmp(b.X()) == 0 {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "point addition with equal x coordinates")
	}
	return &addWitness{
		ax: pr.FromOBToSF(a.X()), ay: pr.FromOBToSF(a.Y()),
		bx: pr.FromOBToSF(b.X()), by: pr.FromOBToSF(b.Y()),
		tx: pr.FromOBToSF(t.X()), ty: pr.FromOBToSF(t.Y()),
	}, nil
}

// PointAddProof proves t = a + b on O given commitments to the coordinates
// of the three points, following Theorem 4 of CDLS: with τ the slope,
// (b.x - a.x)·τ = b.y - a.y, τ² = a.x + b.x + t.x and
// τ·(a.x - t.x) = a.y + t.y.
type PointAddProof struct {
	// Coordinate commitments. Nil when an enclosing proof owns them.
	Comms *[6]*curve.Point

	C7            *curve.Point
	MP1, MP2, MP3 *MulProof
	OP            *OpeningProof
}

type PointAddIntermediate struct {
	comms  CoordinateCommitments
	stored bool

	c7               *Commitment
	mpi1, mpi2, mpi3 *MulIntermediate
	opi              *OpeningIntermediate
}

func pointAddHeader(t *merlin.Transcript, cs [6]*curve.Point, c7 *curve.Point) {
	transcript.DomainSep(t, transcript.PointAddProof)
	for i, c := range cs {
		transcript.AppendPoint(t, coordLabels[i], c)
	}
	transcript.AppendPoint(t, "C7", c7)
}

var coordLabels = [6]string{"C1", "C2", "C3", "C4", "C5", "C6"}

// pointAddRelations derives the commitments each sub-proof is about.
func pointAddRelations(cs [6]*Commitment) (z1, z2, z4, z5, z6 *Commitment) {
	z1 = cs[2].Sub(cs[0])
	z2 = cs[3].Sub(cs[1])
	z4 = cs[0].Add(cs[2]).Add(cs[4])
	z5 = cs[0].Sub(cs[4])
	z6 = cs[1].Add(cs[5])
	return
}

func publicComms(ps [6]*curve.Point) [6]*Commitment {
	var cs [6]*Commitment
	for i, p := range ps {
		cs[i] = FromPoint(p)
	}
	return cs
}

// NewPointAddIntermediate commits to the coordinates of a, b, t and builds
// the first move.
func NewPointAddIntermediate(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, a, b, tp *curve.Point) (*PointAddIntermediate, error) {
	cs := CommitCoordinates(pr, rng, a, b, tp)
	return newPointAddIntermediate(t, rng, pr, a, b, tp, cs, true)
}

// NewPointAddIntermediateWithCommitments builds the first move over
// commitments owned by the caller.
func NewPointAddIntermediateWithCommitments(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, a, b, tp *curve.Point, cs CoordinateCommitments) (*PointAddIntermediate, error) {
	return newPointAddIntermediate(t, rng, pr, a, b, tp, cs, false)
}

func newPointAddIntermediate(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, a, b, tp *curve.Point, cs CoordinateCommitments, stored bool) (*PointAddIntermediate, error) {
	w, err := newAddWitness(pr, a, b, tp)
	if err != nil {
		return nil, err
	}
	c := pr.T
	tau := c.ScalarMul(c.ScalarSub(w.by, w.ay), c.ScalarInv(c.ScalarSub(w.bx, w.ax)))
	pi := &PointAddIntermediate{comms: cs, stored: stored, c7: New(c, tau, rng)}

	pointAddHeader(t, cs.Points(), pi.c7.Point)
	z1, z2, z4, z5, z6 := pointAddRelations(cs)
	pi.mpi1 = NewMulIntermediate(t, rng, z1, pi.c7, z2)
	pi.mpi2 = NewMulIntermediate(t, rng, pi.c7, pi.c7, z4)
	pi.mpi3 = NewMulIntermediate(t, rng, pi.c7, z5, z6)
	pi.opi = NewOpeningIntermediate(t, rng, cs[1])
	return pi, nil
}

// Commitments returns the coordinate commitments with their randomness.
func (pi *PointAddIntermediate) Commitments() CoordinateCommitments { return pi.comms }

// addToTranscript replays the first move into t.
func (pi *PointAddIntermediate) addToTranscript(t *merlin.Transcript) {
	cs := pi.comms.Points()
	pointAddHeader(t, cs, pi.c7.Point)
	z1, z2, z4, z5, z6 := pointAddRelations(publicComms(cs))
	c7 := pi.c7.Point
	mulTranscript(t, z1.Point, c7, z2.Point, pi.mpi1.Alpha, pi.mpi1.Beta, pi.mpi1.Delta)
	mulTranscript(t, c7, c7, z4.Point, pi.mpi2.Alpha, pi.mpi2.Beta, pi.mpi2.Delta)
	mulTranscript(t, c7, z5.Point, z6.Point, pi.mpi3.Alpha, pi.mpi3.Beta, pi.mpi3.Delta)
	openingTranscript(t, cs[1], pi.opi.Alpha)
}

// Prove answers chal. The witnesses are recomputed from a, b and tp.
func (pi *PointAddIntermediate) Prove(pr *curve.Pair, a, b, tp *curve.Point, chal *big.Int) *PointAddProof {
	w, err := newAddWitness(pr, a, b, tp)
	if err != nil {
		panic(err)
	}
	c := pr.T
	tau := c.ScalarMul(c.ScalarSub(w.by, w.ay), c.ScalarInv(c.ScalarSub(w.bx, w.ax)))
	cs := pi.comms
	z1, z2, z4, z5, z6 := pointAddRelations(cs)

	p := &PointAddProof{
		C7:  pi.c7.Point,
		MP1: pi.mpi1.Prove(c.ScalarSub(w.bx, w.ax), tau, z1, pi.c7, z2, chal),
		MP2: pi.mpi2.Prove(tau, tau, pi.c7, pi.c7, z4, chal),
		MP3: pi.mpi3.Prove(tau, c.ScalarSub(w.ax, w.tx), pi.c7, z5, z6, chal),
		OP:  pi.opi.Prove(w.ay, cs[1], chal),
	}
	if pi.stored {
		ps := cs.Points()
		p.Comms = &ps
	}
	return p
}

// ProvePointAdd proves tp = a + b with fresh coordinate commitments and a
// full scalar challenge.
func ProvePointAdd(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, a, b, tp *curve.Point) (*PointAddProof, error) {
	pi, err := NewPointAddIntermediate(t, rng, pr, a, b, tp)
	if err != nil {
		return nil, err
	}
	return pi.Prove(pr, a, b, tp, transcript.ChallengeScalar(t, "c", pr.T)), nil
}

// AddToTranscript absorbs the proof over the coordinate commitments cs.
func (p *PointAddProof) AddToTranscript(t *merlin.Transcript, cs [6]*curve.Point) {
	pointAddHeader(t, cs, p.C7)
	z1, z2, z4, z5, z6 := pointAddRelations(publicComms(cs))
	p.MP1.AddToTranscript(t, z1.Point, p.C7, z2.Point)
	p.MP2.AddToTranscript(t, p.C7, p.C7, z4.Point)
	p.MP3.AddToTranscript(t, p.C7, z5.Point, z6.Point)
	p.OP.AddToTranscript(t, cs[1])
}

// Verify checks a standalone proof carrying its own commitments.
func (p *PointAddProof) Verify(t *merlin.Transcript, pr *curve.Pair) bool {
	if p.Comms == nil {
		return false
	}
	p.AddToTranscript(t, *p.Comms)
	return p.VerifyWithChallenge(pr, *p.Comms, transcript.ChallengeScalar(t, "c", pr.T))
}

// VerifyWithChallenge checks every sub-proof against chal.
func (p *PointAddProof) VerifyWithChallenge(pr *curve.Pair, cs [6]*curve.Point, chal *big.Int) bool {
	z1, z2, z4, z5, z6 := pointAddRelations(publicComms(cs))
	first := p.MP1.VerifyWithChallenge(z1.Point, p.C7, z2.Point, chal)
	second := p.MP2.VerifyWithChallenge(p.C7, p.C7, z4.Point, chal)
	third := p.MP3.VerifyWithChallenge(p.C7, z5.Point, z6.Point, chal)
	fourth := p.OP.VerifyWithChallenge(cs[1], chal)
	return first && second && third && fourth
}

func (p *PointAddProof) encode(e *curve.Encoder, c *curve.Curve) {
	if p.Comms != nil {
		e.WritePoints(p.Comms[:]...)
	}
	e.WritePoint(p.C7)
	p.MP1.encode(e, c)
	p.MP2.encode(e, c)
	p.MP3.encode(e, c)
	p.OP.encode(e, c)
}

func decodePointAddProof(d *curve.Decoder, c *curve.Curve, stored bool) *PointAddProof {
	p := &PointAddProof{}
	if stored {
		var ps [6]*curve.Point
		copy(ps[:], d.ReadPoints(c, 6))
		p.Comms = &ps
	}
	p.C7 = d.ReadPoint(c)
	p.MP1 = decodeMulProof(d, c)
	p.MP2 = decodeMulProof(d, c)
	p.MP3 = decodeMulProof(d, c)
	p.OP = decodeOpeningProof(d, c)
	return p
}

func (p *PointAddProof) SerializedSize() int {
	c := p.C7.Curve()
	n := c.PointSize() + 3*p.MP1.SerializedSize() + p.OP.SerializedSize()
	if p.Comms != nil {
		n += 6 * c.PointSize()
	}
	return n
}

func (p *PointAddProof) Bytes() []byte {
	e := curve.NewEncoder(p.SerializedSize())
	p.encode(e, p.C7.Curve())
	return e.Bytes()
}

// DecodePointAddProof parses a standalone proof, commitments included.
func DecodePointAddProof(pr *curve.Pair, buf []byte) (*PointAddProof, error) {
	d := curve.NewDecoder(buf)
	p := decodePointAddProof(d, pr.T, true)
	return p, d.Finish()
}
