package bulletproofs

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
)

type PartyAwaitingPosition struct {
	BPGens    *BulletproofGens
	PCGens    *PedersenGens
	N         int
	Value     uint64
	VBlinding *big.Int
	V         Point
}

func NewParty(bg *BulletproofGens, pg *PedersenGens, value uint64, blinding *big.Int, n int) (*PartyAwaitingPosition, error) {
	if err := checkBitsize(n); err != nil {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, err.Error())
	}
	if bg.GensCapacity < n {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "NewParty InvalidGeneratorsLength %d, %d", bg.GensCapacity, n)
	}
	if n < 64 && value>>uint(n) != 0 {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "value %d does not fit in %d bits", value, n)
	}
	g := bg.Group
	return &PartyAwaitingPosition{
		BPGens:    bg,
		PCGens:    pg,
		N:         n,
		Value:     value,
		VBlinding: blinding,
		V:         pg.Commit(g, fieldOf(g).fromUint64(value), blinding),
	}, nil
}

type PartyAwaitingBitChallenge struct {
	N         int
	V         uint64
	VBlinding *big.Int
	J         int
	Group     Group
	PCGens    *PedersenGens
	ABlinding *big.Int
	SBlinding *big.Int
	SL        []*big.Int
	SR        []*big.Int
	rng       io.Reader
}

// AssignPosition commits to the bits of the value as party j.
func (p *PartyAwaitingPosition) AssignPosition(j int, rng io.Reader) (*PartyAwaitingBitChallenge, *BitCommitment, error) {
	if p.BPGens.PartyCapacity <= j {
		return nil, nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "AssignPosition InvalidGeneratorsLength %d, %d", p.BPGens.PartyCapacity, j)
	}
	g := p.BPGens.Group
	f := fieldOf(g)
	share := p.BPGens.Share(j)
	gs, hs := share.G(p.N), share.H(p.N)

	// bit 1 adds G_i, bit 0 adds -H_i
	aBlinding := f.random(rng)
	a := p.PCGens.BBlinding.Mul(aBlinding)
	for i := range gs {
		if (p.Value>>uint(i))&1 == 1 {
			a = a.Add(gs[i])
		} else {
			a = a.Sub(hs[i])
		}
	}

	sBlinding := f.random(rng)
	sL := make([]*big.Int, p.N)
	sR := make([]*big.Int, p.N)
	for i := 0; i < p.N; i++ {
		sL[i] = f.random(rng)
		sR[i] = f.random(rng)
	}

	// S = <s_L, G> + <s_R, H> + s_blinding·B̃
	ks := append(append([]*big.Int{sBlinding}, sL...), sR...)
	ps := append(append([]Point{p.PCGens.BBlinding}, gs...), hs...)
	s := g.MultiScalarMult(ks, ps)

	next := &PartyAwaitingBitChallenge{
		N:         p.N,
		V:         p.Value,
		VBlinding: p.VBlinding,
		J:         j,
		Group:     g,
		PCGens:    p.PCGens,
		ABlinding: aBlinding,
		SBlinding: sBlinding,
		SL:        sL,
		SR:        sR,
		rng:       rng,
	}
	return next, &BitCommitment{VJ: p.V, AJ: a, SJ: s}, nil
}

func (p *PartyAwaitingBitChallenge) ApplyChallenge(vc *BitChallenge) (*PartyAwaitingPolyChallenge, *PolyCommitment) {
	f := fieldOf(p.Group)
	offsetY := scalarExpVartime(f, vc.Y, uint64(p.J*p.N))
	offsetZ := scalarExpVartime(f, vc.Z, uint64(p.J))
	offsetZZ := f.mul(f.mul(vc.Z, vc.Z), offsetZ)

	lPoly := zeroVecPoly1(p.N)
	rPoly := zeroVecPoly1(p.N)
	expY := offsetY
	exp2 := big.NewInt(1)
	for i := 0; i < p.N; i++ {
		aL := f.fromUint64((p.V >> uint(i)) & 1)
		aR := f.sub(aL, big.NewInt(1))

		lPoly.As[i] = f.sub(aL, vc.Z)
		lPoly.Bs[i] = p.SL[i]
		rPoly.As[i] = f.add(f.mul(expY, f.add(aR, vc.Z)), f.mul(offsetZZ, exp2))
		rPoly.Bs[i] = f.mul(expY, p.SR[i])

		expY = f.mul(expY, vc.Y)
		exp2 = f.add(exp2, exp2)
	}
	tPoly := lPoly.innerProduct(f, rPoly)

	t1Blinding := f.random(p.rng)
	t2Blinding := f.random(p.rng)
	pc := &PolyCommitment{
		T1j: p.PCGens.Commit(p.Group, tPoly.B, t1Blinding),
		T2j: p.PCGens.Commit(p.Group, tPoly.C, t2Blinding),
	}
	return &PartyAwaitingPolyChallenge{
		Group:      p.Group,
		OffsetZZ:   offsetZZ,
		LPoly:      lPoly,
		RPoly:      rPoly,
		TPoly:      tPoly,
		VBlinding:  p.VBlinding,
		ABlinding:  p.ABlinding,
		SBlinding:  p.SBlinding,
		T1Blinding: t1Blinding,
		T2Blinding: t2Blinding,
	}, pc
}

type PartyAwaitingPolyChallenge struct {
	Group      Group
	OffsetZZ   *big.Int
	LPoly      *vecPoly1
	RPoly      *vecPoly1
	TPoly      *poly2
	VBlinding  *big.Int
	ABlinding  *big.Int
	SBlinding  *big.Int
	T1Blinding *big.Int
	T2Blinding *big.Int
}

func (p *PartyAwaitingPolyChallenge) ApplyChallenge(pc *PolyChallenge) (*ProofShare, error) {
	if pc.X.Sign() == 0 {
		return nil, errors.Wrap(boomerang.ErrInvalidChallenge, "MaliciousDealer")
	}
	f := fieldOf(p.Group)
	tBlinding := &poly2{A: f.mul(p.OffsetZZ, p.VBlinding), B: p.T1Blinding, C: p.T2Blinding}
	return &ProofShare{
		TX:         p.TPoly.eval(f, pc.X),
		TXBlinding: tBlinding.eval(f, pc.X),
		EBlinding:  f.add(p.ABlinding, f.mul(p.SBlinding, pc.X)),
		LVec:       p.LPoly.eval(f, pc.X),
		RVec:       p.RPoly.eval(f, pc.X),
	}, nil
}
