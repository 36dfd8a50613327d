// Package bulletproofs implements aggregated range proofs in the
// dealer/party form, the inner-product argument and the linear proof over
// any prime-order Group.
package bulletproofs

import (
	"io"
	"math/big"

	"github.com/gtank/merlin"

	"github.com/MixinNetwork/boomerang-go/transcript"
)

// Point is an element of a Group. Points of different groups never mix.
type Point interface {
	Add(q Point) Point
	Sub(q Point) Point
	Neg() Point
	Mul(k *big.Int) Point
	Equal(q Point) bool
	IsIdentity() bool
	Bytes() []byte
}

// Group is a prime-order group with two independent Pedersen bases.
type Group interface {
	Name() string
	Order() *big.Int
	Identity() Point
	// Base is the value base B, Blinding the blinding base B̃.
	Base() Point
	Blinding() Point
	// FromUniformBytes maps 64 uniform bytes to a point.
	FromUniformBytes(buf []byte) Point
	MultiScalarMult(ks []*big.Int, ps []Point) Point
	PointSize() int
	DecodePoint(buf []byte) (Point, error)
	ScalarSize() int
	ScalarBytes(k *big.Int) []byte
	DecodeScalar(buf []byte) (*big.Int, error)
}

// field is arithmetic modulo a group order.
type field struct{ n *big.Int }

func fieldOf(g Group) field { return field{n: g.Order()} }

func (f field) reduce(k *big.Int) *big.Int { return new(big.Int).Mod(k, f.n) }

func (f field) add(a, b *big.Int) *big.Int {
	return f.reduce(new(big.Int).Add(a, b))
}

func (f field) sub(a, b *big.Int) *big.Int {
	return f.reduce(new(big.Int).Sub(a, b))
}

func (f field) mul(a, b *big.Int) *big.Int {
	return f.reduce(new(big.Int).Mul(a, b))
}

func (f field) neg(a *big.Int) *big.Int {
	return f.reduce(new(big.Int).Neg(a))
}

func (f field) inv(a *big.Int) *big.Int {
	return new(big.Int).ModInverse(a, f.n)
}

func (f field) fromUint64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}

// fromBytesWide reduces a little-endian byte string.
func (f field) fromBytesWide(buf []byte) *big.Int {
	be := make([]byte, len(buf))
	for i, b := range buf {
		be[len(buf)-1-i] = b
	}
	return f.reduce(new(big.Int).SetBytes(be))
}

func (f field) random(rng io.Reader) *big.Int {
	var buf [64]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		panic(err)
	}
	return f.fromBytesWide(buf[:])
}

func appendPoint(t *merlin.Transcript, label string, p Point) {
	transcript.AppendMessage(t, label, p.Bytes())
}

func appendScalar(t *merlin.Transcript, label string, g Group, k *big.Int) {
	transcript.AppendMessage(t, label, g.ScalarBytes(k))
}

func challengeScalar(t *merlin.Transcript, label string, g Group) *big.Int {
	return fieldOf(g).fromBytesWide(transcript.ChallengeBytes(t, label, transcript.ChallengeSize))
}
