package bulletproofs

import (
	"io"
	"math/big"

	"github.com/gtank/merlin"
	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/logging"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

var logger = logging.MustGetLogger("bulletproofs")

// RangeProof shows that each committed value lies in [0, 2^n).
type RangeProof struct {
	A, S       Point
	T1, T2     Point
	TX         *big.Int
	TXBlinding *big.Int
	EBlinding  *big.Int
	IPPProof   *InnerProductProof
}

// ProveMultiple runs the dealer and len(values) parties locally. The number
// of values must be a power of two.
func ProveMultiple(bg *BulletproofGens, pg *PedersenGens, t *merlin.Transcript, values []uint64, blindings []*big.Int, n int, rng io.Reader) (*RangeProof, []Point, error) {
	if len(values) != len(blindings) {
		return nil, nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "ProveMultiple WrongNumBlindingFactors %d, %d", len(values), len(blindings))
	}
	dealer1, err := NewDealer(bg, pg, t, n, len(values))
	if err != nil {
		return nil, nil, err
	}

	partiesA := make([]*PartyAwaitingBitChallenge, len(values))
	bitCommitments := make([]*BitCommitment, len(values))
	commitments := make([]Point, len(values))
	for j := range values {
		party, err := NewParty(bg, pg, values[j], blindings[j], n)
		if err != nil {
			return nil, nil, err
		}
		partiesA[j], bitCommitments[j], err = party.AssignPosition(j, rng)
		if err != nil {
			return nil, nil, err
		}
		commitments[j] = bitCommitments[j].VJ
	}

	dealer2, bitChallenge, err := dealer1.ReceiveBitCommitments(bitCommitments)
	if err != nil {
		return nil, nil, err
	}
	partiesB := make([]*PartyAwaitingPolyChallenge, len(partiesA))
	polyCommitments := make([]*PolyCommitment, len(partiesA))
	for j := range partiesA {
		partiesB[j], polyCommitments[j] = partiesA[j].ApplyChallenge(bitChallenge)
	}

	dealer3, polyChallenge, err := dealer2.ReceivePolyCommitments(polyCommitments)
	if err != nil {
		return nil, nil, err
	}
	shares := make([]*ProofShare, len(partiesB))
	for j := range partiesB {
		if shares[j], err = partiesB[j].ApplyChallenge(polyChallenge); err != nil {
			return nil, nil, err
		}
	}
	proof, err := dealer3.AssembleShares(shares)
	if err != nil {
		return nil, nil, err
	}
	return proof, commitments, nil
}

func ProveSingle(bg *BulletproofGens, pg *PedersenGens, t *merlin.Transcript, value uint64, blinding *big.Int, n int, rng io.Reader) (*RangeProof, Point, error) {
	proof, commitments, err := ProveMultiple(bg, pg, t, []uint64{value}, []*big.Int{blinding}, n, rng)
	if err != nil {
		return nil, nil, err
	}
	return proof, commitments[0], nil
}

// GenerateRangeProofs pads values to a power of two by repeating the last
// one and proves them all in 64 bits.
func GenerateRangeProofs(bg *BulletproofGens, pg *PedersenGens, t *merlin.Transcript, values []uint64, blindings []*big.Int, rng io.Reader) (*RangeProof, []Point, error) {
	if len(values) == 0 || len(values) != len(blindings) {
		return nil, nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "GenerateRangeProofs %d values, %d blindings", len(values), len(blindings))
	}
	values, blindings = resizeToPow2(values, blindings)
	return ProveMultiple(bg, pg, t, values, blindings, 64, rng)
}

// delta is (z - z²)·<1, y^(nm)> - Σ_j z^(j+3)·<1, 2^n>.
func delta(f field, n, m int, y, z *big.Int) *big.Int {
	sumY := sumOfPowers(f, y, n*m)
	sum2 := f.sub(new(big.Int).Lsh(big.NewInt(1), uint(n)), big.NewInt(1))
	zz := f.mul(z, z)
	sumZ := f.mul(f.mul(zz, z), sumOfPowers(f, z, m))
	return f.sub(f.mul(f.sub(z, zz), sumY), f.mul(sumZ, sum2))
}

// Verify checks an aggregated proof for commitments of n-bit values.
func (p *RangeProof) Verify(bg *BulletproofGens, pg *PedersenGens, t *merlin.Transcript, commitments []Point, n int) bool {
	ok, err := p.verify(bg, pg, t, commitments, n)
	if err != nil {
		logger.Debugw("range proof rejected", "error", err)
	}
	return ok
}

func (p *RangeProof) VerifySingle(bg *BulletproofGens, pg *PedersenGens, t *merlin.Transcript, commitment Point, n int) bool {
	return p.Verify(bg, pg, t, []Point{commitment}, n)
}

func (p *RangeProof) verify(bg *BulletproofGens, pg *PedersenGens, t *merlin.Transcript, commitments []Point, n int) (bool, error) {
	m := len(commitments)
	if err := checkBitsize(n); err != nil {
		return false, err
	}
	if !isPowerOfTwo(m) || bg.GensCapacity < n || bg.PartyCapacity < m {
		return false, errors.Errorf("cannot verify %d values of %d bits with %dx%d generators", m, n, bg.PartyCapacity, bg.GensCapacity)
	}
	for _, pt := range []Point{p.A, p.S, p.T1, p.T2} {
		if pt.IsIdentity() {
			return false, errors.New("identity in range proof")
		}
	}
	g := bg.Group
	f := fieldOf(g)

	transcript.RangeProofDomainSep(t, uint64(n), uint64(m))
	for _, v := range commitments {
		appendPoint(t, "V", v)
	}
	appendPoint(t, "A", p.A)
	appendPoint(t, "S", p.S)
	y := challengeScalar(t, "y", g)
	z := challengeScalar(t, "z", g)
	appendPoint(t, "T_1", p.T1)
	appendPoint(t, "T_2", p.T2)
	x := challengeScalar(t, "x", g)
	appendScalar(t, "t_x", g, p.TX)
	appendScalar(t, "t_x_blinding", g, p.TXBlinding)
	appendScalar(t, "e_blinding", g, p.EBlinding)
	w := challengeScalar(t, "w", g)

	nm := n * m
	uSq, uInvSq, s, err := p.IPPProof.verificationScalars(t, g, nm)
	if err != nil {
		return false, err
	}

	// t(x) = z²·Σ z^j·v_j + δ(y, z) + x·t1 + x²·t2, in committed form
	zz := f.mul(z, z)
	ks := []*big.Int{f.sub(p.TX, delta(f, n, m, y, z)), p.TXBlinding, f.neg(x), f.neg(f.mul(x, x))}
	ps := []Point{pg.B, pg.BBlinding, p.T1, p.T2}
	expZ := newScalarExp(f, z)
	for _, v := range commitments {
		ks = append(ks, f.neg(f.mul(zz, expZ.Next())))
		ps = append(ps, v)
	}
	if !g.MultiScalarMult(ks, ps).IsIdentity() {
		return false, errors.New("polynomial commitment check failed")
	}

	// A + x·S - e_blinding·B̃ + w·(t_x - a·b)·B + <g, G> + <h, H> + Σ u²L + u⁻²R = 0
	a, b := p.IPPProof.A, p.IPPProof.B
	ks = []*big.Int{big.NewInt(1), x, f.neg(p.EBlinding), f.mul(w, f.sub(p.TX, f.mul(a, b)))}
	ps = []Point{p.A, p.S, pg.BBlinding, pg.B}
	minusZ := f.neg(z)
	for i, gen := range bg.G(n, m) {
		ks = append(ks, f.sub(minusZ, f.mul(a, s[i])))
		ps = append(ps, gen)
	}
	expYInv := newScalarExp(f, f.inv(y))
	expZ = newScalarExp(f, z)
	var zj *big.Int
	two := big.NewInt(2)
	for i, gen := range bg.H(n, m) {
		if i%n == 0 {
			zj = expZ.Next()
		}
		z2 := f.mul(zj, new(big.Int).Exp(two, big.NewInt(int64(i%n)), f.n))
		h := f.add(z, f.mul(expYInv.Next(), f.sub(f.mul(zz, z2), f.mul(b, s[nm-1-i]))))
		ks = append(ks, h)
		ps = append(ps, gen)
	}
	for j := range uSq {
		ks = append(ks, uSq[j], uInvSq[j])
		ps = append(ps, p.IPPProof.LVec[j], p.IPPProof.RVec[j])
	}
	if !g.MultiScalarMult(ks, ps).IsIdentity() {
		return false, errors.New("inner product check failed")
	}
	return true, nil
}

func (p *RangeProof) Bytes(g Group) []byte {
	buf := make([]byte, 0, 4*g.PointSize()+3*g.ScalarSize()+p.IPPProof.SerializedSize(g))
	for _, pt := range []Point{p.A, p.S, p.T1, p.T2} {
		buf = append(buf, pt.Bytes()...)
	}
	for _, k := range []*big.Int{p.TX, p.TXBlinding, p.EBlinding} {
		buf = append(buf, g.ScalarBytes(k)...)
	}
	return append(buf, p.IPPProof.Bytes(g)...)
}

func DecodeRangeProof(g Group, buf []byte) (*RangeProof, error) {
	ps, ss := g.PointSize(), g.ScalarSize()
	if len(buf) < 4*ps+3*ss {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "range proof length %d", len(buf))
	}
	pts := make([]Point, 4)
	var err error
	for i := range pts {
		if pts[i], err = g.DecodePoint(buf[i*ps : (i+1)*ps]); err != nil {
			return nil, err
		}
	}
	ks := make([]*big.Int, 3)
	for i := range ks {
		off := 4*ps + i*ss
		if ks[i], err = g.DecodeScalar(buf[off : off+ss]); err != nil {
			return nil, err
		}
	}
	ipp, err := DecodeInnerProductProof(g, buf[4*ps+3*ss:])
	if err != nil {
		return nil, err
	}
	return &RangeProof{
		A: pts[0], S: pts[1], T1: pts[2], T2: pts[3],
		TX: ks[0], TXBlinding: ks[1], EBlinding: ks[2],
		IPPProof: ipp,
	}, nil
}
