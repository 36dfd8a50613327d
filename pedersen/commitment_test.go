package pedersen

import (
	"math/big"
	"testing"

	"github.com/gtank/merlin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/internal/drbg"
)

func testTranscript() *merlin.Transcript {
	return merlin.NewTranscript("test")
}

func TestCommitmentHomomorphism(t *testing.T) {
	assert := assert.New(t)
	rng := drbg.NewFromUint64(0)
	c := curve.T256()

	a := New(c, big.NewInt(3), rng)
	b := New(c, big.NewInt(4), rng)
	sum := a.Add(b)
	assert.True(sum.Point.Equal(c.Commit(big.NewInt(7), sum.Rand)))
	diff := b.Sub(a)
	assert.True(diff.Point.Equal(c.Commit(big.NewInt(1), diff.Rand)))

	pub := a.Public()
	assert.Nil(pub.Rand)
	assert.Nil(pub.Add(b).Rand)
	assert.Equal(a.Bytes(), pub.Bytes())
}

func TestMultiCommitment(t *testing.T) {
	assert := assert.New(t)
	rng := drbg.NewFromUint64(1)
	c := curve.T256()

	vals := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4)}
	cm, gens := NewMulti(c, vals, rng)
	assert.Len(gens, 4)

	expected := c.H().Mul(cm.Rand)
	for i, v := range vals {
		expected = expected.Add(gens[i].Mul(v))
	}
	assert.True(expected.Equal(cm.Point))
	assert.True(NewMultiWithGens(c, gens, vals, cm.Rand).Point.Equal(cm.Point))
}

func TestOpeningProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(2)
	c := curve.T256()

	cm := NewWithRand(c, big.NewInt(7), big.NewInt(11))
	proof := ProveOpening(testTranscript(), rng, big.NewInt(7), cm)
	assert.True(proof.Verify(testTranscript(), cm.Point))

	decoded, err := DecodeOpeningProof(c, proof.Bytes())
	require.Nil(err)
	assert.True(decoded.Verify(testTranscript(), cm.Point))

	bad := ProveOpening(testTranscript(), rng, big.NewInt(8), cm)
	assert.False(bad.Verify(testTranscript(), cm.Point))

	other := merlin.NewTranscript("other")
	assert.False(proof.Verify(other, cm.Point))
}

func TestEqualityProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(3)
	c := curve.T256()

	a := New(c, big.NewInt(42), rng)
	b := New(c, big.NewInt(42), rng)
	proof := ProveEquality(testTranscript(), rng, a, b)
	assert.True(proof.Verify(testTranscript(), a.Point, b.Point))

	decoded, err := DecodeEqualityProof(c, proof.Bytes())
	require.Nil(err)
	assert.True(decoded.Verify(testTranscript(), a.Point, b.Point))

	d := New(c, big.NewInt(43), rng)
	bad := ProveEquality(testTranscript(), rng, a, d)
	assert.False(bad.Verify(testTranscript(), a.Point, d.Point))
}

func TestMulProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(4)
	c := curve.Secq256k1()

	x, y := c.RandomScalar(rng), c.RandomScalar(rng)
	c1, c2 := New(c, x, rng), New(c, y, rng)
	c3 := New(c, c.ScalarMul(x, y), rng)
	proof := ProveMul(testTranscript(), rng, x, y, c1, c2, c3)
	assert.True(proof.Verify(testTranscript(), c1.Point, c2.Point, c3.Point))

	buf := proof.Bytes()
	assert.Len(buf, proof.SerializedSize())
	decoded, err := DecodeMulProof(c, buf)
	require.Nil(err)
	assert.True(decoded.Verify(testTranscript(), c1.Point, c2.Point, c3.Point))

	_, err = DecodeMulProof(c, buf[:len(buf)-1])
	assert.NotNil(err)

	c4 := New(c, c.ScalarAdd(c.ScalarMul(x, y), big.NewInt(1)), rng)
	bad := ProveMul(testTranscript(), rng, x, y, c1, c2, c4)
	assert.False(bad.Verify(testTranscript(), c1.Point, c2.Point, c4.Point))
}
