package bulletproofs

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/internal/drbg"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

func testInnerProductProof(t *testing.T, g Group, n int) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(uint64(n))
	f := fieldOf(g)

	bg := NewBulletproofGens(g, n, 1)
	gs, hs := bg.Share(0).G(n), bg.Share(0).H(n)
	q := NewGeneratorsChain(g, []byte("test point")).Next()

	a := make([]*big.Int, n)
	b := make([]*big.Int, n)
	for i := range a {
		a[i], b[i] = f.random(rng), f.random(rng)
	}
	c := innerProduct(f, a, b)

	yInv := f.random(rng)
	gFactors := ones(n)
	hFactors := make([]*big.Int, n)
	exp := newScalarExp(f, yInv)
	for i := range hFactors {
		hFactors[i] = exp.Next()
	}

	// P = <a, G> + <b', H> + <a, b>·Q with b' = b∘y^-i
	ks := append([]*big.Int(nil), a...)
	ps := append([]Point(nil), gs...)
	for i := range b {
		ks = append(ks, f.mul(b[i], hFactors[i]))
		ps = append(ps, hs[i])
	}
	p := g.MultiScalarMult(append(ks, c), append(ps, q))

	proof := CreateInnerProductProof(transcript.New("innerproducttest"), g, q, gFactors, hFactors, gs, hs, a, b)
	assert.True(proof.Verify(transcript.New("innerproducttest"), g, n, gFactors, hFactors, p, q, gs, hs))

	buf := proof.Bytes(g)
	assert.Len(buf, proof.SerializedSize(g))
	decoded, err := DecodeInnerProductProof(g, buf)
	require.Nil(err)
	assert.True(decoded.Verify(transcript.New("innerproducttest"), g, n, gFactors, hFactors, p, q, gs, hs))

	assert.False(proof.Verify(transcript.New("other"), g, n, gFactors, hFactors, p, q, gs, hs))
	assert.False(proof.Verify(transcript.New("innerproducttest"), g, n, gFactors, hFactors, p.Add(q), q, gs, hs))
}

func TestInnerProductProof(t *testing.T) {
	for _, n := range []int{1, 2, 4, 32} {
		testInnerProductProof(t, Ristretto255(), n)
	}
	testInnerProductProof(t, Weierstrass(curve.Secp256k1()), 16)
}

func TestDecodeInnerProductProofLength(t *testing.T) {
	assert := assert.New(t)
	g := Ristretto255()

	_, err := DecodeInnerProductProof(g, make([]byte, 63))
	assert.NotNil(err)
	_, err = DecodeInnerProductProof(g, make([]byte, 64+32))
	assert.NotNil(err)
}
