package bulletproofs

import (
	"math/big"

	"github.com/gtank/merlin"
	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// DealerAwaitingBitCommitments collects the parties' bit commitments for an
// aggregated proof of M values of N bits each.
type DealerAwaitingBitCommitments struct {
	BPGens     *BulletproofGens
	PCGens     *PedersenGens
	Transcript *merlin.Transcript
	N, M       int
}

func NewDealer(bg *BulletproofGens, pg *PedersenGens, t *merlin.Transcript, n, m int) (*DealerAwaitingBitCommitments, error) {
	if err := checkBitsize(n); err != nil {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, err.Error())
	}
	if !isPowerOfTwo(m) {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "NewDealer InvalidAggregation m: %d", m)
	}
	if bg.GensCapacity < n {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "NewDealer InvalidGeneratorsLength GensCapacity %d, n %d", bg.GensCapacity, n)
	}
	if bg.PartyCapacity < m {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "NewDealer InvalidGeneratorsLength PartyCapacity %d, m %d", bg.PartyCapacity, m)
	}
	transcript.RangeProofDomainSep(t, uint64(n), uint64(m))
	return &DealerAwaitingBitCommitments{BPGens: bg, PCGens: pg, Transcript: t, N: n, M: m}, nil
}

type DealerAwaitingPolyCommitments struct {
	N, M           int
	Transcript     *merlin.Transcript
	BPGens         *BulletproofGens
	PCGens         *PedersenGens
	BitChallenge   *BitChallenge
	BitCommitments []*BitCommitment
	A              Point
	S              Point
}

func (d *DealerAwaitingBitCommitments) ReceiveBitCommitments(commitments []*BitCommitment) (*DealerAwaitingPolyCommitments, *BitChallenge, error) {
	if d.M != len(commitments) {
		return nil, nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "ReceiveBitCommitments WrongNumBitCommitments %d %d", d.M, len(commitments))
	}
	g := d.BPGens.Group
	a, s := g.Identity(), g.Identity()
	for _, bc := range commitments {
		appendPoint(d.Transcript, "V", bc.VJ)
		a = a.Add(bc.AJ)
		s = s.Add(bc.SJ)
	}
	appendPoint(d.Transcript, "A", a)
	appendPoint(d.Transcript, "S", s)

	challenge := &BitChallenge{
		Y: challengeScalar(d.Transcript, "y", g),
		Z: challengeScalar(d.Transcript, "z", g),
	}
	return &DealerAwaitingPolyCommitments{
		N:              d.N,
		M:              d.M,
		Transcript:     d.Transcript,
		BPGens:         d.BPGens,
		PCGens:         d.PCGens,
		BitChallenge:   challenge,
		BitCommitments: commitments,
		A:              a,
		S:              s,
	}, challenge, nil
}

type DealerAwaitingProofShares struct {
	N, M            int
	Transcript      *merlin.Transcript
	BPGens          *BulletproofGens
	PCGens          *PedersenGens
	BitChallenge    *BitChallenge
	BitCommitments  []*BitCommitment
	A               Point
	S               Point
	PolyChallenge   *PolyChallenge
	PolyCommitments []*PolyCommitment
	T1, T2          Point
}

func (p *DealerAwaitingPolyCommitments) ReceivePolyCommitments(commitments []*PolyCommitment) (*DealerAwaitingProofShares, *PolyChallenge, error) {
	if p.M != len(commitments) {
		return nil, nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "ReceivePolyCommitments WrongNumPolyCommitments %d %d", p.M, len(commitments))
	}
	g := p.BPGens.Group
	t1, t2 := g.Identity(), g.Identity()
	for _, pc := range commitments {
		t1 = t1.Add(pc.T1j)
		t2 = t2.Add(pc.T2j)
	}
	appendPoint(p.Transcript, "T_1", t1)
	appendPoint(p.Transcript, "T_2", t2)

	challenge := &PolyChallenge{X: challengeScalar(p.Transcript, "x", g)}
	return &DealerAwaitingProofShares{
		N:               p.N,
		M:               p.M,
		Transcript:      p.Transcript,
		BPGens:          p.BPGens,
		PCGens:          p.PCGens,
		BitChallenge:    p.BitChallenge,
		BitCommitments:  p.BitCommitments,
		A:               p.A,
		S:               p.S,
		PolyChallenge:   challenge,
		PolyCommitments: commitments,
		T1:              t1,
		T2:              t2,
	}, challenge, nil
}

func (ps *ProofShare) checkSize(n int, bg *BulletproofGens, j int) error {
	if len(ps.LVec) != n {
		return errors.Errorf("checkSize error 0: %d, %d", len(ps.LVec), n)
	}
	if len(ps.RVec) != n {
		return errors.Errorf("checkSize error 1 %d, %d", len(ps.RVec), n)
	}
	if n > bg.GensCapacity {
		return errors.Errorf("checkSize error 2 %d, %d", n, bg.GensCapacity)
	}
	if j >= bg.PartyCapacity {
		return errors.Errorf("checkSize error 3 %d, %d", j, bg.PartyCapacity)
	}
	return nil
}

// AssembleShares combines the proof shares into the aggregated proof.
func (d *DealerAwaitingProofShares) AssembleShares(shares []*ProofShare) (*RangeProof, error) {
	if d.M != len(shares) {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "AssembleShares WrongNumProofShares %d %d", d.M, len(shares))
	}
	var bad []int
	for i, s := range shares {
		if err := s.checkSize(d.N, d.BPGens, i); err != nil {
			bad = append(bad, i)
		}
	}
	if len(bad) > 0 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "MalformedProofShares bad shares %v", bad)
	}

	g := d.BPGens.Group
	f := fieldOf(g)
	tx, txBlinding, eBlinding := big.NewInt(0), big.NewInt(0), big.NewInt(0)
	var lVec, rVec []*big.Int
	for _, s := range shares {
		tx = f.add(tx, s.TX)
		txBlinding = f.add(txBlinding, s.TXBlinding)
		eBlinding = f.add(eBlinding, s.EBlinding)
		lVec = append(lVec, s.LVec...)
		rVec = append(rVec, s.RVec...)
	}
	appendScalar(d.Transcript, "t_x", g, tx)
	appendScalar(d.Transcript, "t_x_blinding", g, txBlinding)
	appendScalar(d.Transcript, "e_blinding", g, eBlinding)

	w := challengeScalar(d.Transcript, "w", g)
	q := d.PCGens.B.Mul(w)

	nm := d.N * d.M
	gFactors := make([]*big.Int, nm)
	hFactors := make([]*big.Int, nm)
	expYInv := newScalarExp(f, f.inv(d.BitChallenge.Y))
	for i := 0; i < nm; i++ {
		gFactors[i] = big.NewInt(1)
		hFactors[i] = expYInv.Next()
	}
	ipp := CreateInnerProductProof(d.Transcript, g, q, gFactors, hFactors, d.BPGens.G(d.N, d.M), d.BPGens.H(d.N, d.M), lVec, rVec)

	return &RangeProof{
		A:          d.A,
		S:          d.S,
		T1:         d.T1,
		T2:         d.T2,
		TX:         tx,
		TXBlinding: txBlinding,
		EBlinding:  eBlinding,
		IPPProof:   ipp,
	}, nil
}
