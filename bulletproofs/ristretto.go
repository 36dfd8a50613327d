package bulletproofs

import (
	"math/big"

	"github.com/bwesterb/go-ristretto"
	"github.com/dchest/blake2b"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"

	boomerang "github.com/MixinNetwork/boomerang-go"
)

const hashToPointDomainTag = "boomerang_ristretto_hash_to_point"

var ristrettoOrder, _ = new(big.Int).SetString("7237005577332262213973186563042994240857116359379907606001950938285454250989", 10)

type ristretto255 struct{}

type rpoint struct {
	p ristretto.Point
}

// Ristretto255 returns the ristretto group with B the basepoint and B̃
// derived from SHA3-512 of its encoding.
func Ristretto255() Group { return ristretto255{} }

func (ristretto255) Name() string    { return "ristretto255" }
func (ristretto255) Order() *big.Int { return ristrettoOrder }
func (ristretto255) PointSize() int  { return 32 }
func (ristretto255) ScalarSize() int { return 32 }

func (ristretto255) Identity() Point {
	var r rpoint
	r.p.SetZero()
	return &r
}

func (ristretto255) Base() Point {
	var r rpoint
	r.p.SetBase()
	return &r
}

func (g ristretto255) Blinding() Point {
	h := sha3.Sum512(g.Base().Bytes())
	return g.FromUniformBytes(h[:])
}

// FromUniformBytes adds the Elligator images of both 32-byte halves.
func (ristretto255) FromUniformBytes(buf []byte) Point {
	var h1, h2 [32]byte
	copy(h1[:], buf[:32])
	copy(h2[:], buf[32:64])
	var r, r1, r2 rpoint
	r.p.Add(r1.p.SetElligator(&h1), r2.p.SetElligator(&h2))
	return &r
}

// HashToPoint maps data to a ristretto point through BLAKE2b-512.
func HashToPoint(data []byte) Point {
	h := blake2b.New512()
	h.Write([]byte(hashToPointDomainTag))
	h.Write(data)
	return ristretto255{}.FromUniformBytes(h.Sum(nil))
}

func (g ristretto255) MultiScalarMult(ks []*big.Int, ps []Point) Point {
	if len(ks) != len(ps) {
		panic(errors.Errorf("MultiScalarMult lengths do not match %d, %d", len(ks), len(ps)))
	}
	var acc rpoint
	acc.p.SetZero()
	for i := range ks {
		var t ristretto.Point
		t.ScalarMult(&ps[i].(*rpoint).p, toRistrettoScalar(ks[i]))
		acc.p.Add(&acc.p, &t)
	}
	return &acc
}

func (ristretto255) DecodePoint(buf []byte) (Point, error) {
	if len(buf) != 32 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "ristretto255: point length %d", len(buf))
	}
	var b [32]byte
	copy(b[:], buf)
	var r rpoint
	if !r.p.SetBytes(&b) {
		return nil, errors.Wrap(boomerang.ErrMalformedInput, "ristretto255: invalid point encoding")
	}
	if r.IsIdentity() {
		return nil, errors.Wrap(boomerang.ErrMalformedInput, "ristretto255: identity")
	}
	return &r, nil
}

// ScalarBytes is the 32-byte little-endian encoding of k mod ℓ.
func (ristretto255) ScalarBytes(k *big.Int) []byte {
	be := make([]byte, 32)
	new(big.Int).Mod(k, ristrettoOrder).FillBytes(be)
	for i, j := 0, 31; i < j; i, j = i+1, j-1 {
		be[i], be[j] = be[j], be[i]
	}
	return be
}

func (ristretto255) DecodeScalar(buf []byte) (*big.Int, error) {
	if len(buf) != 32 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "ristretto255: scalar length %d", len(buf))
	}
	be := make([]byte, 32)
	for i, b := range buf {
		be[31-i] = b
	}
	k := new(big.Int).SetBytes(be)
	if k.Cmp(ristrettoOrder) >= 0 {
		return nil, errors.Wrap(boomerang.ErrMalformedInput, "ristretto255: non-canonical scalar")
	}
	return k, nil
}

func toRistrettoScalar(k *big.Int) *ristretto.Scalar {
	var buf [32]byte
	copy(buf[:], ristretto255{}.ScalarBytes(k))
	var s ristretto.Scalar
	return s.SetBytes(&buf)
}

func (p *rpoint) Add(q Point) Point {
	var r rpoint
	r.p.Add(&p.p, &q.(*rpoint).p)
	return &r
}

func (p *rpoint) Sub(q Point) Point {
	var r rpoint
	r.p.Sub(&p.p, &q.(*rpoint).p)
	return &r
}

func (p *rpoint) Neg() Point {
	var r rpoint
	r.p.Neg(&p.p)
	return &r
}

func (p *rpoint) Mul(k *big.Int) Point {
	var r rpoint
	r.p.ScalarMult(&p.p, toRistrettoScalar(k))
	return &r
}

func (p *rpoint) Equal(q Point) bool { return p.p.Equals(&q.(*rpoint).p) }

func (p *rpoint) IsIdentity() bool {
	var zero ristretto.Point
	zero.SetZero()
	return p.p.Equals(&zero)
}

func (p *rpoint) Bytes() []byte { return p.p.Bytes() }
