package bulletproofs

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/internal/drbg"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

func testAggregatedRangeProof(t *testing.T, g Group, n, m int) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(uint64(n*100 + m))
	f := fieldOf(g)

	bg := NewBulletproofGens(g, n, m)
	pg := NewPedersenGens(g)
	values := make([]uint64, m)
	blindings := make([]*big.Int, m)
	for j := range values {
		values[j] = uint64(j*37+5) & (1<<uint(n) - 1)
		blindings[j] = f.random(rng)
	}
	values[m-1] = 1<<uint(n) - 1

	proof, commitments, err := ProveMultiple(bg, pg, transcript.New("AggregatedRangeProofTest"), values, blindings, n, rng)
	require.Nil(err)
	require.Len(commitments, m)
	for j := range commitments {
		assert.True(commitments[j].Equal(pg.Commit(g, new(big.Int).SetUint64(values[j]), blindings[j])))
	}
	assert.True(proof.Verify(bg, pg, transcript.New("AggregatedRangeProofTest"), commitments, n))

	decoded, err := DecodeRangeProof(g, proof.Bytes(g))
	require.Nil(err)
	assert.True(decoded.Verify(bg, pg, transcript.New("AggregatedRangeProofTest"), commitments, n))

	assert.False(proof.Verify(bg, pg, transcript.New("other"), commitments, n))
	shifted := append([]Point(nil), commitments...)
	shifted[0] = shifted[0].Add(pg.B)
	assert.False(proof.Verify(bg, pg, transcript.New("AggregatedRangeProofTest"), shifted, n))
	if m > 1 {
		swapped := append([]Point(nil), commitments...)
		swapped[0], swapped[1] = swapped[1], swapped[0]
		assert.False(proof.Verify(bg, pg, transcript.New("AggregatedRangeProofTest"), swapped, n))
	}
}

func TestAggregatedRangeProofRistretto(t *testing.T) {
	for _, m := range []int{1, 2, 4} {
		testAggregatedRangeProof(t, Ristretto255(), 32, m)
	}
	testAggregatedRangeProof(t, Ristretto255(), 8, 2)
	testAggregatedRangeProof(t, Ristretto255(), 64, 1)
}

func TestAggregatedRangeProofWeierstrass(t *testing.T) {
	g := Weierstrass(curve.T256())
	testAggregatedRangeProof(t, g, 16, 1)
	testAggregatedRangeProof(t, g, 16, 2)
	if testing.Short() {
		t.Skip("skipping four-party proof in short mode")
	}
	testAggregatedRangeProof(t, g, 16, 4)
}

func TestRangeProofSingle(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	g := Ristretto255()
	rng := drbg.NewFromUint64(11)
	bg := NewBulletproofGens(g, 64, 1)
	pg := NewPedersenGens(g)

	blinding := fieldOf(g).random(rng)
	proof, v, err := ProveSingle(bg, pg, transcript.New("rangeproof"), 100, blinding, 64, rng)
	require.Nil(err)
	assert.True(proof.VerifySingle(bg, pg, transcript.New("rangeproof"), v, 64))

	// the same proof does not carry over to v + 2^64·B
	twoTo64 := new(big.Int).Lsh(big.NewInt(1), 64)
	assert.False(proof.VerifySingle(bg, pg, transcript.New("rangeproof"), v.Add(pg.B.Mul(twoTo64)), 64))
	assert.False(proof.VerifySingle(bg, pg, transcript.New("rangeproof"), v, 32))
}

func TestRangeProofMisuse(t *testing.T) {
	assert := assert.New(t)
	g := Ristretto255()
	rng := drbg.NewFromUint64(12)
	bg := NewBulletproofGens(g, 8, 2)
	pg := NewPedersenGens(g)
	blinding := fieldOf(g).random(rng)

	_, _, err := ProveSingle(bg, pg, transcript.New("rangeproof"), 256, blinding, 8, rng)
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))

	_, _, err = ProveSingle(bg, pg, transcript.New("rangeproof"), 1, blinding, 12, rng)
	assert.NotNil(err)

	_, _, err = ProveSingle(bg, pg, transcript.New("rangeproof"), 1, blinding, 16, rng)
	assert.NotNil(err)

	_, _, err = ProveMultiple(bg, pg, transcript.New("rangeproof"), []uint64{1, 2, 3}, []*big.Int{blinding, blinding, blinding}, 8, rng)
	assert.NotNil(err)

	_, _, err = ProveMultiple(bg, pg, transcript.New("rangeproof"), []uint64{1, 2}, []*big.Int{blinding}, 8, rng)
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))
}

func TestGenerateRangeProofs(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	g := Ristretto255()
	rng := drbg.NewFromUint64(13)
	f := fieldOf(g)

	values := []uint64{1, 3, 4}
	blindings := make([]*big.Int, len(values))
	for i, v := range values {
		blindings[i] = f.fromUint64(v)
	}
	bg := NewBulletproofGens(g, 64, 4)
	pg := NewPedersenGens(g)
	proof, commitments, err := GenerateRangeProofs(bg, pg, transcript.New("mc_bulletproof_transcript"), values, blindings, rng)
	require.Nil(err)
	assert.Len(commitments, 4)
	assert.Len(values, 3)
	assert.True(commitments[3].Equal(commitments[2]))
	assert.True(proof.Verify(bg, pg, transcript.New("mc_bulletproof_transcript"), commitments, 64))
}

func TestDecodeRangeProofRejects(t *testing.T) {
	assert := assert.New(t)
	g := Ristretto255()

	_, err := DecodeRangeProof(g, make([]byte, 10))
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))

	// all-zero bytes decode to the identity, which is refused
	_, err = DecodeRangeProof(g, make([]byte, 4*32+3*32+2*32))
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))
}
