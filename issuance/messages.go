package issuance

import (
	"math/big"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/pedersen"
)

// M1 opens issuance: the user commitment, its opening proof bound to PK,
// the slot generators and the user's half of the serial.
type M1 struct {
	C1    *curve.Point
	Proof *pedersen.IssuanceProofMulti
	PK    *curve.Point
	Gens  []*curve.Point
	ID0   *big.Int
}

// M2 is the issuer's commitment share, serial share and ACL first move.
type M2 struct {
	Cs   *curve.Point
	ID1  *big.Int
	Comm *acl.SigComm
	Key  *acl.PublicKey
}

// M3 carries the blinded ACL challenge.
type M3 struct {
	E *big.Int
}

// M4 carries the ACL response.
type M4 struct {
	Resp *acl.SigResp
}

func (m *M1) Bytes() []byte {
	c := m.C1.Curve()
	e := curve.NewEncoder((3+len(m.Gens))*c.PointSize() + c.ScalarSize() + 4 + m.Proof.SerializedSize())
	e.WritePoints(m.C1, m.PK)
	e.WriteScalar(c, m.ID0)
	e.WriteUint32(uint32(len(m.Gens)))
	e.WritePoints(m.Gens...)
	m.Proof.EncodeTo(e)
	return e.Bytes()
}

func DecodeM1(c *curve.Curve, buf []byte) (*M1, error) {
	d := curve.NewDecoder(buf)
	m := &M1{C1: d.ReadPoint(c), PK: d.ReadPoint(c), ID0: d.ReadScalar(c)}
	n := int(d.ReadUint32())
	if n > d.Remaining()/c.PointSize() {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%d generators exceed the buffer", n)
	}
	m.Gens = d.ReadPoints(c, n)
	m.Proof = pedersen.DecodeIssuanceProofMultiFrom(d, c)
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *M2) Bytes() []byte {
	c := m.Cs.Curve()
	e := curve.NewEncoder(6*c.PointSize() + 2*c.ScalarSize())
	e.WritePoint(m.Cs)
	e.WriteScalar(c, m.ID1)
	m.Comm.EncodeTo(e)
	m.Key.EncodeTo(e)
	return e.Bytes()
}

func DecodeM2(c *curve.Curve, buf []byte) (*M2, error) {
	d := curve.NewDecoder(buf)
	m := &M2{Cs: d.ReadPoint(c), ID1: d.ReadScalar(c)}
	m.Comm = acl.DecodeSigCommFrom(d, c)
	m.Key = acl.DecodePublicKeyFrom(d, c)
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *M3) Bytes(c *curve.Curve) []byte {
	return c.ScalarBytes(m.E)
}

func DecodeM3(c *curve.Curve, buf []byte) (*M3, error) {
	e, err := c.DecodeScalar(buf)
	if err != nil {
		return nil, err
	}
	return &M3{E: e}, nil
}

func (m *M4) Bytes(c *curve.Curve) []byte {
	e := curve.NewEncoder(5 * c.ScalarSize())
	m.Resp.EncodeTo(e, c)
	return e.Bytes()
}

func DecodeM4(c *curve.Curve, buf []byte) (*M4, error) {
	d := curve.NewDecoder(buf)
	m := &M4{Resp: acl.DecodeSigRespFrom(d, c)}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return m, nil
}
