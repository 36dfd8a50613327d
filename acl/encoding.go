package acl

import (
	"math/big"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/curve"
)

func (pk *PublicKey) EncodeTo(e *curve.Encoder) {
	e.WritePoints(pk.VerifyingKey, pk.TagKey)
}

func DecodePublicKeyFrom(d *curve.Decoder, c *curve.Curve) *PublicKey {
	return &PublicKey{VerifyingKey: d.ReadPoint(c), TagKey: d.ReadPoint(c)}
}

// EncodeTo writes the public part only. The signer state never leaves the
// signer.
func (sc *SigComm) EncodeTo(e *curve.Encoder) {
	e.WritePoints(sc.A, sc.A1, sc.A2)
	e.WriteScalar(sc.A.Curve(), sc.Rand)
}

func DecodeSigCommFrom(d *curve.Decoder, c *curve.Curve) *SigComm {
	sc := &SigComm{A: d.ReadPoint(c), A1: d.ReadPoint(c), A2: d.ReadPoint(c)}
	sc.Rand = d.ReadScalar(c)
	return sc
}

func (r *SigResp) EncodeTo(e *curve.Encoder, c *curve.Curve) {
	e.WriteScalars(c, r.C, r.C1, r.R, r.R1, r.R2)
}

func DecodeSigRespFrom(d *curve.Decoder, c *curve.Curve) *SigResp {
	ks := d.ReadScalars(c, 5)
	return &SigResp{C: ks[0], C1: ks[1], R: ks[2], R1: ks[3], R2: ks[4]}
}

// EncodeTo writes the public signature; the holder opening is dropped.
func (s *Signature) EncodeTo(e *curve.Encoder) {
	c := s.Zeta.Curve()
	e.WritePoints(s.Zeta, s.Zeta1)
	e.WriteScalars(c, s.Rho, s.Omega, s.Rho1, s.Rho2, s.Mu, s.Omega1)
}

func (s *Signature) Bytes() []byte {
	c := s.Zeta.Curve()
	e := curve.NewEncoder(2*c.PointSize() + 6*c.ScalarSize())
	s.EncodeTo(e)
	return e.Bytes()
}

func DecodeSignatureFrom(d *curve.Decoder, c *curve.Curve) *Signature {
	s := &Signature{Zeta: d.ReadPoint(c), Zeta1: d.ReadPoint(c)}
	ks := d.ReadScalars(c, 6)
	s.Rho, s.Omega, s.Rho1, s.Rho2, s.Mu, s.Omega1 = ks[0], ks[1], ks[2], ks[3], ks[4], ks[5]
	return s
}

func DecodeSignature(c *curve.Curve, buf []byte) (*Signature, error) {
	d := curve.NewDecoder(buf)
	s := DecodeSignatureFrom(d, c)
	return s, d.Finish()
}

func (p *SigProof) Bytes() []byte {
	c := p.BGamma.Curve()
	e := curve.NewEncoder(4*c.PointSize() + (3+len(p.ZW)+len(p.Values))*c.ScalarSize() + 8 + 4*len(p.Positions))
	e.WritePoints(p.BGamma, p.T1, p.T2, p.T3)
	e.WriteScalars(c, p.ZGamma, p.ZRnd, p.ZR)
	e.WriteUint32(uint32(len(p.ZW)))
	e.WriteScalars(c, p.ZW...)
	e.WriteUint32(uint32(len(p.Positions)))
	for i, pos := range p.Positions {
		e.WriteUint32(uint32(pos))
		e.WriteScalar(c, p.Values[i])
	}
	return e.Bytes()
}

func DecodeSigProof(c *curve.Curve, buf []byte) (*SigProof, error) {
	d := curve.NewDecoder(buf)
	p := &SigProof{BGamma: d.ReadPoint(c), T1: d.ReadPoint(c), T2: d.ReadPoint(c), T3: d.ReadPoint(c)}
	p.ZGamma, p.ZRnd, p.ZR = d.ReadScalar(c), d.ReadScalar(c), d.ReadScalar(c)

	n := int(d.ReadUint32())
	if n > d.Remaining()/c.ScalarSize() {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%d responses exceed the buffer", n)
	}
	p.ZW = d.ReadScalars(c, n)

	m := int(d.ReadUint32())
	if m > d.Remaining()/(4+c.ScalarSize()) {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%d disclosed values exceed the buffer", m)
	}
	p.Positions = make([]int, m)
	p.Values = make([]*big.Int, m)
	for i := range p.Positions {
		p.Positions[i] = int(d.ReadUint32())
		p.Values[i] = d.ReadScalar(c)
	}
	return p, d.Finish()
}
