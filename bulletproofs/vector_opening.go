package bulletproofs

import (
	"io"
	"math/big"

	"github.com/gtank/merlin"
	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// VectorOpeningProof shows knowledge of a and s with D = <a, G> + s·B and
// nothing else, so D carries no component along any other base.
type VectorOpeningProof struct {
	Alpha Point
	Zs    []*big.Int
	Z     *big.Int
}

func vectorOpeningTranscript(t *merlin.Transcript, d Point, gVec []Point, b, alpha Point) {
	transcript.DomainSep(t, transcript.VectorOpeningProof)
	transcript.AppendUint64(t, "n", uint64(len(gVec)))
	appendPoint(t, "D", d)
	for _, gi := range gVec {
		appendPoint(t, "G_i", gi)
	}
	appendPoint(t, "B", b)
	appendPoint(t, "alpha", alpha)
}

func CreateVectorOpeningProof(t *merlin.Transcript, g Group, rng io.Reader, d Point, s *big.Int, aVec []*big.Int, gVec []Point, b Point) (*VectorOpeningProof, error) {
	if len(aVec) != len(gVec) {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "%d values for %d generators", len(aVec), len(gVec))
	}
	fd := fieldOf(g)
	ks := make([]*big.Int, len(aVec)+1)
	for i := range ks {
		ks[i] = fd.random(rng)
	}
	ps := append(append([]Point(nil), gVec...), b)
	p := &VectorOpeningProof{Alpha: g.MultiScalarMult(ks, ps)}

	vectorOpeningTranscript(t, d, gVec, b, p.Alpha)
	e := challengeScalar(t, "e", g)
	p.Zs = make([]*big.Int, len(aVec))
	for i, a := range aVec {
		p.Zs[i] = fd.add(ks[i], fd.mul(e, a))
	}
	p.Z = fd.add(ks[len(aVec)], fd.mul(e, s))
	return p, nil
}

func (p *VectorOpeningProof) Verify(t *merlin.Transcript, g Group, d Point, gVec []Point, b Point) bool {
	if len(p.Zs) != len(gVec) || p.Alpha == nil || p.Z == nil {
		return false
	}
	vectorOpeningTranscript(t, d, gVec, b, p.Alpha)
	e := challengeScalar(t, "e", g)

	ks := append(append([]*big.Int(nil), p.Zs...), p.Z, fieldOf(g).neg(e))
	ps := append(append([]Point(nil), gVec...), b, d)
	return g.MultiScalarMult(ks, ps).Equal(p.Alpha)
}

// Bytes writes alpha, z and z_0..z_{n-1}.
func (p *VectorOpeningProof) Bytes(g Group) []byte {
	buf := make([]byte, 0, g.PointSize()+(len(p.Zs)+1)*g.ScalarSize())
	buf = append(buf, p.Alpha.Bytes()...)
	buf = append(buf, g.ScalarBytes(p.Z)...)
	for _, z := range p.Zs {
		buf = append(buf, g.ScalarBytes(z)...)
	}
	return buf
}

func DecodeVectorOpeningProof(g Group, buf []byte) (*VectorOpeningProof, error) {
	ps, ss := g.PointSize(), g.ScalarSize()
	rest := len(buf) - ps - ss
	if rest < 0 || rest%ss != 0 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "vector opening proof length %d", len(buf))
	}
	p := &VectorOpeningProof{Zs: make([]*big.Int, rest/ss)}
	var err error
	if p.Alpha, err = g.DecodePoint(buf[:ps]); err != nil {
		return nil, err
	}
	if p.Z, err = g.DecodeScalar(buf[ps : ps+ss]); err != nil {
		return nil, err
	}
	for i := range p.Zs {
		off := ps + ss + i*ss
		if p.Zs[i], err = g.DecodeScalar(buf[off : off+ss]); err != nil {
			return nil, err
		}
	}
	return p, nil
}
