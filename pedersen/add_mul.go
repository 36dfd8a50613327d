package pedersen

import (
	"io"
	"math/big"

	"github.com/gtank/merlin"

	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// AddMulProof proves that for x in C1, y in C2 and z in C3, C4 commits to
// x·y and C5 commits to x·y + z.
type AddMulProof struct {
	T1, T2, T3, T4, T5             *curve.Point
	Z1, Z2, Z3, Z4, Z5, Z6, Z7, Z8 *big.Int
}

type AddMulIntermediate struct {
	T1, T2, T3, T4, T5 *curve.Point

	b1, b2, b3, b4, b5, b6, b7, b8 *big.Int
}

func addMulTranscript(t *merlin.Transcript, cs, ts []*curve.Point) {
	transcript.DomainSep(t, transcript.AddMulProof)
	for i, label := range []string{"C1", "C2", "C3", "C4", "C5"} {
		transcript.AppendPoint(t, label, cs[i])
	}
	for i, label := range []string{"t1", "t2", "t3", "t4", "t5"} {
		transcript.AppendPoint(t, label, ts[i])
	}
}

func NewAddMulIntermediate(t *merlin.Transcript, rng io.Reader, c1, c2, c3, c4, c5 *Commitment) *AddMulIntermediate {
	c := c1.curve()
	bs := make([]*big.Int, 8)
	for i := range bs {
		bs[i] = c.RandomScalar(rng)
	}
	ai := &AddMulIntermediate{
		b1: bs[0], b2: bs[1], b3: bs[2], b4: bs[3],
		b5: bs[4], b6: bs[5], b7: bs[6], b8: bs[7],
	}
	ai.T1 = c.Commit(ai.b1, ai.b2)
	ai.T2 = c.Commit(ai.b3, ai.b4)
	ai.T3 = c.Commit(ai.b5, ai.b6)
	ai.T4 = c.MultiScalarMult([]*big.Int{ai.b3, ai.b7}, []*curve.Point{c1.Point, c.H()})
	ai.T5 = c.H().Mul(ai.b8)
	addMulTranscript(t,
		[]*curve.Point{c1.Point, c2.Point, c3.Point, c4.Point, c5.Point},
		[]*curve.Point{ai.T1, ai.T2, ai.T3, ai.T4, ai.T5})
	return ai
}

// Prove answers chal. The last response opens C5 - C3 - C4 as a commitment to zero.
func (ai *AddMulIntermediate) Prove(x, y, z *big.Int, c1, c2, c3, c4, c5 *Commitment, chal *big.Int) *AddMulProof {
	c := c1.curve()
	resp := func(b, w *big.Int) *big.Int { return c.ScalarAdd(b, c.ScalarMul(chal, w)) }
	r7 := c.ScalarSub(c4.Rand, c.ScalarMul(c1.Rand, y))
	r8 := c.ScalarSub(c5.Rand, c.ScalarAdd(c3.Rand, c4.Rand))
	return &AddMulProof{
		T1: ai.T1, T2: ai.T2, T3: ai.T3, T4: ai.T4, T5: ai.T5,
		Z1: resp(ai.b1, x),
		Z2: resp(ai.b2, c1.Rand),
		Z3: resp(ai.b3, y),
		Z4: resp(ai.b4, c2.Rand),
		Z5: resp(ai.b5, z),
		Z6: resp(ai.b6, c3.Rand),
		Z7: resp(ai.b7, r7),
		Z8: resp(ai.b8, r8),
	}
}

func ProveAddMul(t *merlin.Transcript, rng io.Reader, x, y, z *big.Int, c1, c2, c3, c4, c5 *Commitment) *AddMulProof {
	ai := NewAddMulIntermediate(t, rng, c1, c2, c3, c4, c5)
	return ai.Prove(x, y, z, c1, c2, c3, c4, c5, transcript.ChallengeScalar(t, "c", c1.curve()))
}

func (p *AddMulProof) AddToTranscript(t *merlin.Transcript, c1, c2, c3, c4, c5 *curve.Point) {
	addMulTranscript(t,
		[]*curve.Point{c1, c2, c3, c4, c5},
		[]*curve.Point{p.T1, p.T2, p.T3, p.T4, p.T5})
}

func (p *AddMulProof) Verify(t *merlin.Transcript, c1, c2, c3, c4, c5 *curve.Point) bool {
	p.AddToTranscript(t, c1, c2, c3, c4, c5)
	return p.VerifyWithChallenge(c1, c2, c3, c4, c5, transcript.ChallengeScalar(t, "c", c1.Curve()))
}

func (p *AddMulProof) VerifyWithChallenge(c1, c2, c3, c4, c5 *curve.Point, chal *big.Int) bool {
	c := c1.Curve()
	zero := c5.Sub(c3).Sub(c4)
	ok := p.T1.Add(c1.Mul(chal)).Equal(c.Commit(p.Z1, p.Z2))
	ok = p.T2.Add(c2.Mul(chal)).Equal(c.Commit(p.Z3, p.Z4)) && ok
	ok = p.T3.Add(c3.Mul(chal)).Equal(c.Commit(p.Z5, p.Z6)) && ok
	ok = p.T4.Add(c4.Mul(chal)).Equal(c.MultiScalarMult([]*big.Int{p.Z3, p.Z7}, []*curve.Point{c1, c.H()})) && ok
	ok = p.T5.Add(zero.Mul(chal)).Equal(c.H().Mul(p.Z8)) && ok
	return ok
}

func (p *AddMulProof) Bytes() []byte {
	c := p.T1.Curve()
	e := curve.NewEncoder(p.SerializedSize())
	e.WritePoints(p.T1, p.T2, p.T3, p.T4, p.T5)
	e.WriteScalars(c, p.Z1, p.Z2, p.Z3, p.Z4, p.Z5, p.Z6, p.Z7, p.Z8)
	return e.Bytes()
}

func (p *AddMulProof) SerializedSize() int {
	c := p.T1.Curve()
	return 5*c.PointSize() + 8*c.ScalarSize()
}

func DecodeAddMulProof(c *curve.Curve, buf []byte) (*AddMulProof, error) {
	d := curve.NewDecoder(buf)
	ps := d.ReadPoints(c, 5)
	zs := d.ReadScalars(c, 8)
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return &AddMulProof{
		T1: ps[0], T2: ps[1], T3: ps[2], T4: ps[3], T5: ps[4],
		Z1: zs[0], Z2: zs[1], Z3: zs[2], Z4: zs[3], Z5: zs[4], Z6: zs[5], Z7: zs[6], Z8: zs[7],
	}, nil
}
