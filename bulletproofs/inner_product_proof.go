package bulletproofs

import (
	"math/big"
	"math/bits"

	"github.com/gtank/merlin"
	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

type InnerProductProof struct {
	LVec []Point
	RVec []Point
	A, B *big.Int
}

func ones(n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = big.NewInt(1)
	}
	return out
}

// CreateInnerProductProof proves <a, b> = c for
// P = <a, G∘gFactors> + <b, H∘hFactors> + c·Q. The factors are folded in
// during the first round.
func CreateInnerProductProof(t *merlin.Transcript, g Group, q Point, gFactors, hFactors []*big.Int, gVec, hVec []Point, aVec, bVec []*big.Int) *InnerProductProof {
	n := len(gVec)
	if len(hVec) != n || len(aVec) != n || len(bVec) != n || len(gFactors) != n || len(hFactors) != n {
		panic(errors.Errorf("Invalid input vectors %d, %d, %d, %d, %d, %d", len(gVec), len(hVec), len(aVec), len(bVec), len(gFactors), len(hFactors)))
	}
	if !isPowerOfTwo(n) {
		panic(errors.Errorf("CreateInnerProductProof Invalid n %d", n))
	}
	transcript.InnerProductDomainSep(t, uint64(n))

	f := fieldOf(g)
	a, b := aVec, bVec
	gs, hs := gVec, hVec
	gf, hf := gFactors, hFactors
	proof := &InnerProductProof{}
	for n > 1 {
		n /= 2
		aL, aR := a[:n], a[n:]
		bL, bR := b[:n], b[n:]
		gL, gR := gs[:n], gs[n:]
		hL, hR := hs[:n], hs[n:]

		cL := innerProduct(f, aL, bR)
		cR := innerProduct(f, aR, bL)

		ksL := make([]*big.Int, 0, 2*n+1)
		ksR := make([]*big.Int, 0, 2*n+1)
		for i := 0; i < n; i++ {
			ksL = append(ksL, f.mul(aL[i], gf[n+i]))
			ksR = append(ksR, f.mul(aR[i], gf[i]))
		}
		for i := 0; i < n; i++ {
			ksL = append(ksL, f.mul(bR[i], hf[i]))
			ksR = append(ksR, f.mul(bL[i], hf[n+i]))
		}
		ksL = append(ksL, cL)
		ksR = append(ksR, cR)
		psL := append(append(append(make([]Point, 0, 2*n+1), gR...), hL...), q)
		psR := append(append(append(make([]Point, 0, 2*n+1), gL...), hR...), q)
		l := g.MultiScalarMult(ksL, psL)
		r := g.MultiScalarMult(ksR, psR)

		proof.LVec = append(proof.LVec, l)
		proof.RVec = append(proof.RVec, r)
		appendPoint(t, "L", l)
		appendPoint(t, "R", r)

		u := challengeScalar(t, "u", g)
		uInv := f.inv(u)

		na, nb := make([]*big.Int, n), make([]*big.Int, n)
		ng, nh := make([]Point, n), make([]Point, n)
		for i := 0; i < n; i++ {
			na[i] = f.add(f.mul(aL[i], u), f.mul(uInv, aR[i]))
			nb[i] = f.add(f.mul(bL[i], uInv), f.mul(u, bR[i]))
			ng[i] = g.MultiScalarMult([]*big.Int{f.mul(uInv, gf[i]), f.mul(u, gf[n+i])}, []Point{gL[i], gR[i]})
			nh[i] = g.MultiScalarMult([]*big.Int{f.mul(u, hf[i]), f.mul(uInv, hf[n+i])}, []Point{hL[i], hR[i]})
		}
		a, b, gs, hs = na, nb, ng, nh
		gf, hf = ones(n), ones(n)
	}
	proof.A, proof.B = a[0], b[0]
	return proof
}

// verificationScalars replays the transcript and returns u_j², u_j⁻² and
// the folded generator coefficients s_i.
func (p *InnerProductProof) verificationScalars(t *merlin.Transcript, g Group, n int) ([]*big.Int, []*big.Int, []*big.Int, error) {
	lgN := len(p.LVec)
	if lgN >= 32 || len(p.RVec) != lgN || n != 1<<uint(lgN) {
		return nil, nil, nil, errors.Wrapf(boomerang.ErrVerificationFailed, "inner product proof has %d rounds for n %d", lgN, n)
	}
	transcript.InnerProductDomainSep(t, uint64(n))

	f := fieldOf(g)
	uSq := make([]*big.Int, lgN)
	uInvSq := make([]*big.Int, lgN)
	allInv := big.NewInt(1)
	for j := range p.LVec {
		if p.LVec[j].IsIdentity() || p.RVec[j].IsIdentity() {
			return nil, nil, nil, errors.Wrap(boomerang.ErrMalformedInput, "identity in inner product proof")
		}
		appendPoint(t, "L", p.LVec[j])
		appendPoint(t, "R", p.RVec[j])
		u := challengeScalar(t, "u", g)
		uInv := f.inv(u)
		allInv = f.mul(allInv, uInv)
		uSq[j] = f.mul(u, u)
		uInvSq[j] = f.mul(uInv, uInv)
	}

	s := make([]*big.Int, n)
	s[0] = allInv
	for i := 1; i < n; i++ {
		lgI := 31 - bits.LeadingZeros32(uint32(i))
		k := 1 << uint(lgI)
		s[i] = f.mul(s[i-k], uSq[lgN-1-lgI])
	}
	return uSq, uInvSq, s, nil
}

// Verify checks the proof against P = <a, G∘gFactors> + <b, H∘hFactors> + <a,b>·Q.
func (p *InnerProductProof) Verify(t *merlin.Transcript, g Group, n int, gFactors, hFactors []*big.Int, pt, q Point, gVec, hVec []Point) bool {
	if len(gFactors) != n || len(hFactors) != n || len(gVec) != n || len(hVec) != n {
		return false
	}
	uSq, uInvSq, s, err := p.verificationScalars(t, g, n)
	if err != nil {
		return false
	}
	f := fieldOf(g)
	ks := make([]*big.Int, 0, 2*n+1+2*len(uSq))
	ps := make([]Point, 0, cap(ks))
	for i := 0; i < n; i++ {
		ks = append(ks, f.mul(f.mul(p.A, s[i]), gFactors[i]))
		ps = append(ps, gVec[i])
	}
	for i := 0; i < n; i++ {
		ks = append(ks, f.mul(f.mul(p.B, s[n-1-i]), hFactors[i]))
		ps = append(ps, hVec[i])
	}
	ks = append(ks, f.mul(p.A, p.B))
	ps = append(ps, q)
	for j := range uSq {
		ks = append(ks, f.neg(uSq[j]), f.neg(uInvSq[j]))
		ps = append(ps, p.LVec[j], p.RVec[j])
	}
	return g.MultiScalarMult(ks, ps).Equal(pt)
}

func (p *InnerProductProof) SerializedSize(g Group) int {
	return 2*len(p.LVec)*g.PointSize() + 2*g.ScalarSize()
}

// Bytes writes L_0, R_0, ..., L_k, R_k, a, b.
func (p *InnerProductProof) Bytes(g Group) []byte {
	buf := make([]byte, 0, p.SerializedSize(g))
	for i := range p.LVec {
		buf = append(buf, p.LVec[i].Bytes()...)
		buf = append(buf, p.RVec[i].Bytes()...)
	}
	buf = append(buf, g.ScalarBytes(p.A)...)
	buf = append(buf, g.ScalarBytes(p.B)...)
	return buf
}

func DecodeInnerProductProof(g Group, buf []byte) (*InnerProductProof, error) {
	ps, ss := g.PointSize(), g.ScalarSize()
	rest := len(buf) - 2*ss
	if rest < 0 || rest%(2*ps) != 0 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "inner product proof length %d", len(buf))
	}
	rounds := rest / (2 * ps)
	if rounds >= 32 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "inner product proof has %d rounds", rounds)
	}
	p := &InnerProductProof{LVec: make([]Point, rounds), RVec: make([]Point, rounds)}
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
	if p.A, err = g.DecodeScalar(buf[rest : rest+ss]); err != nil {
		return nil, err
	}
	if p.B, err = g.DecodeScalar(buf[rest+ss:]); err != nil {
		return nil, err
	}
	return p, nil
}
