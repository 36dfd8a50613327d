package bulletproofs

import (
	"io"
	"math/big"
	"math/bits"

	"github.com/gtank/merlin"
	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// LinearProof shows that C = <a, G> + r·B + <a, b>·F for a public vector b
// without revealing a or r.
type LinearProof struct {
	LVec []Point
	RVec []Point
	S    Point
	A    *big.Int
	R    *big.Int
}

func linearProofTranscript(t *merlin.Transcript, c Point, bVec []*big.Int, gVec []Point, f, b Point, g Group) {
	transcript.LinearProofDomainSep(t, uint64(len(bVec)))
	appendPoint(t, "C", c)
	for _, bi := range bVec {
		appendScalar(t, "b_i", g, bi)
	}
	for _, gi := range gVec {
		appendPoint(t, "G_i", gi)
	}
	appendPoint(t, "F", f)
	appendPoint(t, "B", b)
}

// CreateLinearProof proves the opening (a, r) of C. The input slices are
// not modified.
func CreateLinearProof(t *merlin.Transcript, g Group, rng io.Reader, c Point, r *big.Int, aVec, bVec []*big.Int, gVec []Point, f, b Point) (*LinearProof, error) {
	n := len(bVec)
	if len(gVec) != n {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "InvalidGeneratorsLength %d, %d", len(gVec), n)
	}
	if len(aVec) != n || !isPowerOfTwo(n) {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "InvalidInputLength %d, %d", len(aVec), n)
	}
	linearProofTranscript(t, c, bVec, gVec, f, b, g)

	fd := fieldOf(g)
	a := append([]*big.Int(nil), aVec...)
	bs := append([]*big.Int(nil), bVec...)
	gs := append([]Point(nil), gVec...)
	proof := &LinearProof{}
	for n > 1 {
		n /= 2
		aL, aR := a[:n], a[n:]
		bL, bR := bs[:n], bs[n:]
		gL, gR := gs[:n], gs[n:]

		cL := innerProduct(fd, aL, bR)
		cR := innerProduct(fd, aR, bL)
		sj, tj := fd.random(rng), fd.random(rng)

		l := g.MultiScalarMult(append(append([]*big.Int(nil), aL...), sj, cL), append(append([]Point(nil), gR...), b, f))
		rr := g.MultiScalarMult(append(append([]*big.Int(nil), aR...), tj, cR), append(append([]Point(nil), gL...), b, f))
		proof.LVec = append(proof.LVec, l)
		proof.RVec = append(proof.RVec, rr)
		appendPoint(t, "L", l)
		appendPoint(t, "R", rr)

		x := challengeScalar(t, "x_j", g)
		xInv := fd.inv(x)
		for i := 0; i < n; i++ {
			aL[i] = fd.add(aL[i], fd.mul(xInv, aR[i]))
			bL[i] = fd.add(bL[i], fd.mul(x, bR[i]))
			gL[i] = gL[i].Add(gR[i].Mul(x))
		}
		a, bs, gs = aL, bL, gL
		r = fd.add(r, fd.add(fd.mul(x, sj), fd.mul(xInv, tj)))
	}

	sStar, tStar := fd.random(rng), fd.random(rng)
	proof.S = g.MultiScalarMult([]*big.Int{tStar, fd.mul(sStar, bs[0]), sStar}, []Point{b, f, gs[0]})
	appendPoint(t, "S", proof.S)
	xStar := challengeScalar(t, "x_star", g)
	proof.A = fd.add(sStar, fd.mul(xStar, a[0]))
	proof.R = fd.add(tStar, fd.mul(xStar, r))
	return proof, nil
}

// verificationScalars replays the rounds and returns the challenges, their
// inverses and the folded b.
func (p *LinearProof) verificationScalars(t *merlin.Transcript, g Group, bVec []*big.Int) ([]*big.Int, []*big.Int, *big.Int, error) {
	n := len(bVec)
	lgN := len(p.LVec)
	if lgN >= 32 || len(p.RVec) != lgN || n != 1<<uint(lgN) {
		return nil, nil, nil, errors.Wrapf(boomerang.ErrVerificationFailed, "linear proof has %d rounds for %d", lgN, n)
	}
	f := fieldOf(g)
	bs := append([]*big.Int(nil), bVec...)
	xs := make([]*big.Int, lgN)
	xInvs := make([]*big.Int, lgN)
	for j := range p.LVec {
		if p.LVec[j].IsIdentity() || p.RVec[j].IsIdentity() {
			return nil, nil, nil, errors.Wrap(boomerang.ErrMalformedInput, "identity in linear proof")
		}
		appendPoint(t, "L", p.LVec[j])
		appendPoint(t, "R", p.RVec[j])
		xs[j] = challengeScalar(t, "x_j", g)
		xInvs[j] = f.inv(xs[j])
		n /= 2
		for i := 0; i < n; i++ {
			bs[i] = f.add(bs[i], f.mul(xs[j], bs[n+i]))
		}
		bs = bs[:n]
	}
	return xs, xInvs, bs[0], nil
}

func subsetProduct(f field, n int, xs []*big.Int) []*big.Int {
	lgN := len(xs)
	s := make([]*big.Int, n)
	s[0] = big.NewInt(1)
	for i := 1; i < n; i++ {
		lgI := 31 - bits.LeadingZeros32(uint32(i))
		k := 1 << uint(lgI)
		s[i] = f.mul(s[i-k], xs[lgN-1-lgI])
	}
	return s
}

// Verify checks S == r·B + a·b0·F - x*·(C + Σ x_j·L_j + x_j⁻¹·R_j) + a·<s, G>.
func (p *LinearProof) Verify(t *merlin.Transcript, g Group, c Point, gVec []Point, f, b Point, bVec []*big.Int) bool {
	if len(gVec) != len(bVec) || p.S == nil || p.S.IsIdentity() {
		return false
	}
	linearProofTranscript(t, c, bVec, gVec, f, b, g)
	xs, xInvs, b0, err := p.verificationScalars(t, g, bVec)
	if err != nil {
		logger.Debugw("linear proof rejected", "error", err)
		return false
	}
	appendPoint(t, "S", p.S)
	fd := fieldOf(g)
	xStar := challengeScalar(t, "x_star", g)
	negX := fd.neg(xStar)

	ks := []*big.Int{p.R, fd.mul(p.A, b0), negX}
	ps := []Point{b, f, c}
	for j := range xs {
		ks = append(ks, fd.mul(negX, xs[j]), fd.mul(negX, xInvs[j]))
		ps = append(ps, p.LVec[j], p.RVec[j])
	}
	for i, si := range subsetProduct(fd, len(gVec), xs) {
		ks = append(ks, fd.mul(p.A, si))
		ps = append(ps, gVec[i])
	}
	return g.MultiScalarMult(ks, ps).Equal(p.S)
}

func (p *LinearProof) SerializedSize(g Group) int {
	return (2*len(p.LVec)+1)*g.PointSize() + 2*g.ScalarSize()
}

// Bytes writes L_0, R_0, ..., S, a, r.
func (p *LinearProof) Bytes(g Group) []byte {
	buf := make([]byte, 0, p.SerializedSize(g))
	for i := range p.LVec {
		buf = append(buf, p.LVec[i].Bytes()...)
		buf = append(buf, p.RVec[i].Bytes()...)
	}
	buf = append(buf, p.S.Bytes()...)
	buf = append(buf, g.ScalarBytes(p.A)...)
	return append(buf, g.ScalarBytes(p.R)...)
}

func DecodeLinearProof(g Group, buf []byte) (*LinearProof, error) {
	ps, ss := g.PointSize(), g.ScalarSize()
	rest := len(buf) - ps - 2*ss
	if rest < 0 || rest%(2*ps) != 0 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "linear proof length %d", len(buf))
	}
	rounds := rest / (2 * ps)
	if rounds >= 32 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "linear proof has %d rounds", rounds)
	}
	p := &LinearProof{LVec: make([]Point, rounds), RVec: make([]Point, rounds)}
	var err error
	for i := 0; i < rounds; i++ {
		off := 2 * i * ps
		if p.LVec[i], err = g.DecodePoint(buf[off : off+ps]); err != nil {
			return nil, err
		}
		if p.RVec[i], err = g.DecodePoint(buf[off+ps : off+2*ps]); err != nil {
			return nil, err
		}
	}
	if p.S, err = g.DecodePoint(buf[rest : rest+ps]); err != nil {
		return nil, err
	}
	if p.A, err = g.DecodeScalar(buf[rest+ps : rest+ps+ss]); err != nil {
		return nil, err
	}
	if p.R, err = g.DecodeScalar(buf[rest+ps+ss:]); err != nil {
		return nil, err
	}
	return p, nil
}
