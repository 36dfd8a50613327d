package pedersen

import (
	"io"
	"math/big"

	"github.com/gtank/merlin"

	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// ZKAttestPointAddProof proves t = a + b the way ZKAttest does: it commits
// to 1/(b.x - a.x), the slope λ, λ² and λ·(a.x - t.x), ties them together
// with four multiplication proofs and closes with two equality proofs.
type ZKAttestPointAddProof struct {
	// Coordinate commitments. Nil when an enclosing proof owns them.
	Comms *[6]*curve.Point

	C8, C10, C11, C13  *curve.Point
	MP1, MP2, MP3, MP4 *MulProof
	E1, E2             *EqualityProof
}

// ZKAttestPointAddFirstMove is the public part of the prover's first move.
// It is what a verifier absorbs when the proof itself is never answered.
type ZKAttestPointAddFirstMove struct {
	C8, C10, C11, C13 *curve.Point
	Mul               [4][3]*curve.Point
	Eq                [2]*curve.Point
}

type ZKAttestPointAddIntermediate struct {
	comms  CoordinateCommitments
	stored bool

	c8, c10, c11, c13      *Commitment
	mpi1, mpi2, mpi3, mpi4 *MulIntermediate
	ei1, ei2               *EqualityIntermediate
}

// zkAttestRelations holds the commitments derived from the coordinates.
type zkAttestRelations struct {
	one, c7, c9, c12, c14, c15 *Commitment
}

func newZKAttestRelations(c *curve.Curve, cs [6]*Commitment) *zkAttestRelations {
	return &zkAttestRelations{
		one: &Commitment{Point: c.G(), Rand: new(big.Int)},
		c7:  cs[2].Sub(cs[0]),
		c9:  cs[3].Sub(cs[1]),
		c12: cs[0].Sub(cs[4]),
		c14: cs[4].Add(cs[0]).Add(cs[2]),
		c15: cs[5].Add(cs[1]),
	}
}

func zkAttestHeader(t *merlin.Transcript, cs [6]*curve.Point) {
	transcript.DomainSep(t, transcript.ZKAttestPointAdd)
	for i, c := range cs {
		transcript.AppendPoint(t, coordLabels[i], c)
	}
}

type zkAttestWitness struct {
	z1, z2, z3, z4, z5, z6, z7 *big.Int
}

func newZKAttestWitness(pr *curve.Pair, a, b, tp *curve.Point) (*zkAttestWitness, error) {
	w, err := newAddWitness(pr, a, b, tp)
	if err != nil {
		return nil, err
	}
	c := pr.T
	zw := &zkAttestWitness{z1: c.ScalarSub(w.bx, w.ax), z3: c.ScalarSub(w.by, w.ay), z6: c.ScalarSub(w.ax, w.tx)}
	zw.z2 = c.ScalarInv(zw.z1)
	zw.z4 = c.ScalarMul(zw.z3, zw.z2)
	zw.z5 = c.ScalarMul(zw.z4, zw.z4)
	zw.z7 = c.ScalarMul(zw.z4, zw.z6)
	return zw, nil
}

// NewZKAttestPointAddIntermediate commits to the coordinates of a, b, tp
// and builds the first move.
func NewZKAttestPointAddIntermediate(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, a, b, tp *curve.Point) (*ZKAttestPointAddIntermediate, error) {
	return newZKAttestPointAddIntermediate(t, rng, pr, a, b, tp, CommitCoordinates(pr, rng, a, b, tp), true)
}

// NewZKAttestPointAddIntermediateWithCommitments builds the first move over
// commitments owned by the caller.
func NewZKAttestPointAddIntermediateWithCommitments(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, a, b, tp *curve.Point, cs CoordinateCommitments) (*ZKAttestPointAddIntermediate, error) {
	return newZKAttestPointAddIntermediate(t, rng, pr, a, b, tp, cs, false)
}

func newZKAttestPointAddIntermediate(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, a, b, tp *curve.Point, cs CoordinateCommitments, stored bool) (*ZKAttestPointAddIntermediate, error) {
	w, err := newZKAttestWitness(pr, a, b, tp)
	if err != nil {
		return nil, err
	}
	c := pr.T
	pi := &ZKAttestPointAddIntermediate{
		comms:  cs,
		stored: stored,
		c8:     New(c, w.z2, rng),
		c10:    New(c, w.z4, rng),
		c11:    New(c, w.z5, rng),
		c13:    New(c, w.z7, rng),
	}
	rel := newZKAttestRelations(c, cs)

	zkAttestHeader(t, cs.Points())
	pi.mpi1 = NewMulIntermediate(t, rng, rel.c7, pi.c8, rel.one)
	pi.mpi2 = NewMulIntermediate(t, rng, rel.c9, pi.c8, pi.c10)
	pi.mpi3 = NewMulIntermediate(t, rng, pi.c10, pi.c10, pi.c11)
	pi.mpi4 = NewMulIntermediate(t, rng, pi.c10, rel.c12, pi.c13)
	pi.ei1 = NewEqualityIntermediate(t, rng, rel.c14, pi.c11)
	pi.ei2 = NewEqualityIntermediate(t, rng, pi.c13, rel.c15)
	return pi, nil
}

func (pi *ZKAttestPointAddIntermediate) Commitments() CoordinateCommitments { return pi.comms }

// FirstMove returns the public values the verifier absorbs.
func (pi *ZKAttestPointAddIntermediate) FirstMove() *ZKAttestPointAddFirstMove {
	fm := &ZKAttestPointAddFirstMove{C8: pi.c8.Point, C10: pi.c10.Point, C11: pi.c11.Point, C13: pi.c13.Point}
	for i, mi := range []*MulIntermediate{pi.mpi1, pi.mpi2, pi.mpi3, pi.mpi4} {
		fm.Mul[i] = [3]*curve.Point{mi.Alpha, mi.Beta, mi.Delta}
	}
	fm.Eq = [2]*curve.Point{pi.ei1.Alpha, pi.ei2.Alpha}
	return fm
}

// Prove answers chal for every sub-proof.
func (pi *ZKAttestPointAddIntermediate) Prove(pr *curve.Pair, a, b, tp *curve.Point, chal *big.Int) *ZKAttestPointAddProof {
	w, err := newZKAttestWitness(pr, a, b, tp)
	if err != nil {
		panic(err)
	}
	rel := newZKAttestRelations(pr.T, pi.comms)
	p := &ZKAttestPointAddProof{
		C8:  pi.c8.Point,
		C10: pi.c10.Point,
		C11: pi.c11.Point,
		C13: pi.c13.Point,
		MP1: pi.mpi1.Prove(w.z1, w.z2, rel.c7, pi.c8, rel.one, chal),
		MP2: pi.mpi2.Prove(w.z3, w.z2, rel.c9, pi.c8, pi.c10, chal),
		MP3: pi.mpi3.Prove(w.z4, w.z4, pi.c10, pi.c10, pi.c11, chal),
		MP4: pi.mpi4.Prove(w.z4, w.z6, pi.c10, rel.c12, pi.c13, chal),
		E1:  pi.ei1.Prove(rel.c14, pi.c11, chal),
		E2:  pi.ei2.Prove(pi.c13, rel.c15, chal),
	}
	if pi.stored {
		ps := pi.comms.Points()
		p.Comms = &ps
	}
	return p
}

// AddToTranscript absorbs the first move over the coordinate commitments cs.
func (fm *ZKAttestPointAddFirstMove) AddToTranscript(t *merlin.Transcript, cs [6]*curve.Point) {
	rel := newZKAttestRelations(fm.C8.Curve(), publicComms(cs))
	zkAttestHeader(t, cs)
	mulTranscript(t, rel.c7.Point, fm.C8, rel.one.Point, fm.Mul[0][0], fm.Mul[0][1], fm.Mul[0][2])
	mulTranscript(t, rel.c9.Point, fm.C8, fm.C10, fm.Mul[1][0], fm.Mul[1][1], fm.Mul[1][2])
	mulTranscript(t, fm.C10, fm.C10, fm.C11, fm.Mul[2][0], fm.Mul[2][1], fm.Mul[2][2])
	mulTranscript(t, fm.C10, rel.c12.Point, fm.C13, fm.Mul[3][0], fm.Mul[3][1], fm.Mul[3][2])
	equalityTranscript(t, rel.c14.Point, fm.C11, fm.Eq[0])
	equalityTranscript(t, fm.C13, rel.c15.Point, fm.Eq[1])
}

func (fm *ZKAttestPointAddFirstMove) encode(e *curve.Encoder) {
	e.WritePoints(fm.C8, fm.C10, fm.C11, fm.C13)
	for _, m := range fm.Mul {
		e.WritePoints(m[:]...)
	}
	e.WritePoints(fm.Eq[:]...)
}

func decodeZKAttestPointAddFirstMove(d *curve.Decoder, c *curve.Curve) *ZKAttestPointAddFirstMove {
	fm := &ZKAttestPointAddFirstMove{C8: d.ReadPoint(c), C10: d.ReadPoint(c), C11: d.ReadPoint(c), C13: d.ReadPoint(c)}
	for i := range fm.Mul {
		copy(fm.Mul[i][:], d.ReadPoints(c, 3))
	}
	copy(fm.Eq[:], d.ReadPoints(c, 2))
	return fm
}

func (fm *ZKAttestPointAddFirstMove) SerializedSize() int {
	return 18 * fm.C8.Curve().PointSize()
}

// FirstMove extracts the first move of an answered proof.
func (p *ZKAttestPointAddProof) FirstMove() *ZKAttestPointAddFirstMove {
	fm := &ZKAttestPointAddFirstMove{C8: p.C8, C10: p.C10, C11: p.C11, C13: p.C13}
	for i, mp := range []*MulProof{p.MP1, p.MP2, p.MP3, p.MP4} {
		fm.Mul[i] = [3]*curve.Point{mp.Alpha, mp.Beta, mp.Delta}
	}
	fm.Eq = [2]*curve.Point{p.E1.Alpha, p.E2.Alpha}
	return fm
}

func (p *ZKAttestPointAddProof) AddToTranscript(t *merlin.Transcript, cs [6]*curve.Point) {
	p.FirstMove().AddToTranscript(t, cs)
}

// VerifyWithChallenge checks every sub-proof against chal.
func (p *ZKAttestPointAddProof) VerifyWithChallenge(pr *curve.Pair, cs [6]*curve.Point, chal *big.Int) bool {
	rel := newZKAttestRelations(pr.T, publicComms(cs))
	first := p.MP1.VerifyWithChallenge(rel.c7.Point, p.C8, rel.one.Point, chal)
	second := p.MP2.VerifyWithChallenge(rel.c9.Point, p.C8, p.C10, chal)
	third := p.MP3.VerifyWithChallenge(p.C10, p.C10, p.C11, chal)
	fourth := p.MP4.VerifyWithChallenge(p.C10, rel.c12.Point, p.C13, chal)
	fifth := p.E1.VerifyWithChallenge(rel.c14.Point, p.C11, chal)
	sixth := p.E2.VerifyWithChallenge(p.C13, rel.c15.Point, chal)
	return first && second && third && fourth && fifth && sixth
}

// ProveZKAttestPointAdd produces a standalone proof in which every
// sub-proof draws its own challenge from t in turn.
func ProveZKAttestPointAdd(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, a, b, tp *curve.Point) (*ZKAttestPointAddProof, error) {
	w, err := newZKAttestWitness(pr, a, b, tp)
	if err != nil {
		return nil, err
	}
	c := pr.T
	cs := CommitCoordinates(pr, rng, a, b, tp)
	zkAttestHeader(t, cs.Points())

	rel := newZKAttestRelations(c, cs)
	c8 := New(c, w.z2, rng)
	mp1 := ProveMul(t, rng, w.z1, w.z2, rel.c7, c8, rel.one)
	c10 := New(c, w.z4, rng)
	mp2 := ProveMul(t, rng, w.z3, w.z2, rel.c9, c8, c10)
	c11 := New(c, w.z5, rng)
	mp3 := ProveMul(t, rng, w.z4, w.z4, c10, c10, c11)
	c13 := New(c, w.z7, rng)
	mp4 := ProveMul(t, rng, w.z4, w.z6, c10, rel.c12, c13)
	e1 := ProveEquality(t, rng, rel.c14, c11)
	e2 := ProveEquality(t, rng, c13, rel.c15)

	ps := cs.Points()
	return &ZKAttestPointAddProof{
		Comms: &ps,
		C8:    c8.Point,
		C10:   c10.Point,
		C11:   c11.Point,
		C13:   c13.Point,
		MP1:   mp1,
		MP2:   mp2,
		MP3:   mp3,
		MP4:   mp4,
		E1:    e1,
		E2:    e2,
	}, nil
}

// Verify checks a standalone proof made by ProveZKAttestPointAdd.
func (p *ZKAttestPointAddProof) Verify(t *merlin.Transcript, pr *curve.Pair) bool {
	if p.Comms == nil {
		return false
	}
	cs := *p.Comms
	zkAttestHeader(t, cs)
	rel := newZKAttestRelations(pr.T, publicComms(cs))
	first := p.MP1.Verify(t, rel.c7.Point, p.C8, rel.one.Point)
	second := p.MP2.Verify(t, rel.c9.Point, p.C8, p.C10)
	third := p.MP3.Verify(t, p.C10, p.C10, p.C11)
	fourth := p.MP4.Verify(t, p.C10, rel.c12.Point, p.C13)
	fifth := p.E1.Verify(t, rel.c14.Point, p.C11)
	sixth := p.E2.Verify(t, p.C13, rel.c15.Point)
	return first && second && third && fourth && fifth && sixth
}

func (p *ZKAttestPointAddProof) encode(e *curve.Encoder, c *curve.Curve) {
	if p.Comms != nil {
		e.WritePoints(p.Comms[:]...)
	}
	e.WritePoints(p.C8, p.C10, p.C11, p.C13)
	for _, mp := range []*MulProof{p.MP1, p.MP2, p.MP3, p.MP4} {
		mp.encode(e, c)
	}
	p.E1.encode(e, c)
	p.E2.encode(e, c)
}

func decodeZKAttestPointAddProof(d *curve.Decoder, c *curve.Curve, stored bool) *ZKAttestPointAddProof {
	p := &ZKAttestPointAddProof{}
	if stored {
		var ps [6]*curve.Point
		copy(ps[:], d.ReadPoints(c, 6))
		p.Comms = &ps
	}
	p.C8, p.C10, p.C11, p.C13 = d.ReadPoint(c), d.ReadPoint(c), d.ReadPoint(c), d.ReadPoint(c)
	p.MP1 = decodeMulProof(d, c)
	p.MP2 = decodeMulProof(d, c)
	p.MP3 = decodeMulProof(d, c)
	p.MP4 = decodeMulProof(d, c)
	p.E1 = decodeEqualityProof(d, c)
	p.E2 = decodeEqualityProof(d, c)
	return p
}

func (p *ZKAttestPointAddProof) SerializedSize() int {
	c := p.C8.Curve()
	n := 4*c.PointSize() + 4*p.MP1.SerializedSize() + 2*p.E1.SerializedSize()
	if p.Comms != nil {
		n += 6 * c.PointSize()
	}
	return n
}

func (p *ZKAttestPointAddProof) Bytes() []byte {
	e := curve.NewEncoder(p.SerializedSize())
	p.encode(e, p.C8.Curve())
	return e.Bytes()
}

func DecodeZKAttestPointAddProof(pr *curve.Pair, buf []byte) (*ZKAttestPointAddProof, error) {
	d := curve.NewDecoder(buf)
	p := decodeZKAttestPointAddProof(d, pr.T, true)
	return p, d.Finish()
}
