package acl

import (
	"io"
	"math/big"
	"sort"

	"github.com/gtank/merlin"
	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// SigProof shows that a signature was issued over a commitment whose
// attributes at Positions equal Values, without revealing γ or the rest.
//
// With ζ = γ·Z, ζ1 = γ·(rnd·G + Σ m_i·G_i + r·H) and D the disclosed
// positions, the holder proves knowledge of γ, a = γ·rnd, w_j = γ·m_j for
// j ∉ D and s = γ·r such that
//
//	ζ   = γ·Z
//	B_γ = γ·G
//	ζ1  = γ·Σ_{i∈D} m_i·G_i + a·G + Σ_{j∉D} w_j·G_j + s·H
type SigProof struct {
	BGamma     *curve.Point
	T1, T2, T3 *curve.Point

	ZGamma *big.Int
	ZRnd   *big.Int
	ZR     *big.Int
	ZW     []*big.Int

	Positions []int
	Values    []*big.Int
}

func disclosedPoint(c *curve.Curve, gens []*curve.Point, positions []int, values []*big.Int) *curve.Point {
	ps := make([]*curve.Point, len(positions))
	for i, pos := range positions {
		ps[i] = gens[pos]
	}
	return c.MultiScalarMult(values, ps)
}

// hidden returns the slots not in positions, in increasing order.
func hidden(n int, positions []int) []int {
	seen := make(map[int]bool, len(positions))
	for _, p := range positions {
		seen[p] = true
	}
	var rest []int
	for i := 0; i < n; i++ {
		if !seen[i] {
			rest = append(rest, i)
		}
	}
	return rest
}

func checkPositions(n int, positions []int) error {
	if !sort.IntsAreSorted(positions) {
		return errors.Wrap(boomerang.ErrProtocolMisuse, "disclosed positions are not sorted")
	}
	for i, p := range positions {
		if p < 0 || p >= n || (i > 0 && positions[i-1] == p) {
			return errors.Wrapf(boomerang.ErrProtocolMisuse, "bad disclosed position %d", p)
		}
	}
	return nil
}

func sigProofTranscript(c *curve.Curve, sig *Signature, p *SigProof) *merlin.Transcript {
	t := transcript.New("Chall ACLZK")
	transcript.DomainSep(t, transcript.ACLChallengeZK)
	transcript.AppendPoint(t, "c1", p.T1)
	transcript.AppendPoint(t, "c2", p.T2)
	transcript.AppendPoint(t, "c3", p.T3)
	transcript.AppendPoint(t, "zeta", sig.Zeta)
	transcript.AppendPoint(t, "zeta1", sig.Zeta1)
	transcript.AppendPoint(t, "b_gamma", p.BGamma)
	for i, pos := range p.Positions {
		transcript.AppendUint64(t, "position", uint64(pos))
		transcript.AppendScalar(t, "value", c, p.Values[i])
	}
	return t
}

// ProveDisclosure proves sig was issued over Σ vals[i]·G_i + r·H, revealing
// vals at positions. sig must be the holder's own signature.
func ProveDisclosure(c *curve.Curve, rng io.Reader, pk *PublicKey, sig *Signature, vals []*big.Int, gens []*curve.Point, r *big.Int, positions []int) (*SigProof, error) {
	if sig.gamma == nil {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "signature carries no opening")
	}
	if len(vals) != len(gens) {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "%d values for %d generators", len(vals), len(gens))
	}
	if err := checkPositions(len(gens), positions); err != nil {
		return nil, err
	}

	p := &SigProof{
		BGamma:    c.ScalarBaseMult(sig.gamma),
		Positions: append([]int(nil), positions...),
		Values:    make([]*big.Int, len(positions)),
	}
	for i, pos := range positions {
		p.Values[i] = new(big.Int).Set(vals[pos])
	}
	rest := hidden(len(gens), positions)
	pd := disclosedPoint(c, gens, positions, p.Values)

	kg, ka, ks := c.RandomScalar(rng), c.RandomScalar(rng), c.RandomScalar(rng)
	kw := make([]*big.Int, len(rest))
	ks3 := []*big.Int{kg, ka, ks}
	ps3 := []*curve.Point{pd, c.G(), c.H()}
	for i, j := range rest {
		kw[i] = c.RandomScalar(rng)
		ks3 = append(ks3, kw[i])
		ps3 = append(ps3, gens[j])
	}
	p.T1 = pk.TagKey.Mul(kg)
	p.T2 = c.ScalarBaseMult(kg)
	p.T3 = c.MultiScalarMult(ks3, ps3)

	ch := transcript.ChallengeScalar(sigProofTranscript(c, sig, p), "challzk", c)
	p.ZGamma = c.ScalarAdd(kg, c.ScalarMul(ch, sig.gamma))
	p.ZRnd = c.ScalarAdd(ka, c.ScalarMul(ch, c.ScalarMul(sig.gamma, sig.rnd)))
	p.ZR = c.ScalarAdd(ks, c.ScalarMul(ch, c.ScalarMul(sig.gamma, r)))
	p.ZW = make([]*big.Int, len(rest))
	for i, j := range rest {
		p.ZW[i] = c.ScalarAdd(kw[i], c.ScalarMul(ch, c.ScalarMul(sig.gamma, vals[j])))
	}
	return p, nil
}

// Verify checks the proof against sig and the slot generators.
func (p *SigProof) Verify(c *curve.Curve, pk *PublicKey, sig *Signature, gens []*curve.Point) bool {
	if len(p.Positions) != len(p.Values) || checkPositions(len(gens), p.Positions) != nil {
		return false
	}
	rest := hidden(len(gens), p.Positions)
	if len(p.ZW) != len(rest) || p.BGamma.IsIdentity() {
		return false
	}
	ch := transcript.ChallengeScalar(sigProofTranscript(c, sig, p), "challzk", c)

	if !pk.TagKey.Mul(p.ZGamma).Equal(p.T1.Add(sig.Zeta.Mul(ch))) {
		return false
	}
	if !c.ScalarBaseMult(p.ZGamma).Equal(p.T2.Add(p.BGamma.Mul(ch))) {
		return false
	}
	pd := disclosedPoint(c, gens, p.Positions, p.Values)
	ks := []*big.Int{p.ZGamma, p.ZRnd, p.ZR}
	ps := []*curve.Point{pd, c.G(), c.H()}
	for i, j := range rest {
		ks = append(ks, p.ZW[i])
		ps = append(ps, gens[j])
	}
	return c.MultiScalarMult(ks, ps).Equal(p.T3.Add(sig.Zeta1.Mul(ch)))
}
