package pedersen

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/internal/drbg"
)

func TestIssuanceProofMulti(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(40)
	c := curve.T256()

	vals := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4)}
	cm, gens := NewMulti(c, vals, rng)

	proof, err := ProveIssuance(testTranscript(), rng, vals, cm, gens, nil)
	require.Nil(err)
	assert.Nil(proof.Alpha2)
	assert.True(proof.Verify(testTranscript(), cm.Point, gens, nil))

	decoded, err := DecodeIssuanceProofMulti(c, proof.Bytes())
	require.Nil(err)
	assert.True(decoded.Verify(testTranscript(), cm.Point, gens, nil))

	short, err := ProveIssuance(testTranscript(), rng, vals[:3], cm, gens[:3], nil)
	require.Nil(err)
	assert.False(short.Verify(testTranscript(), cm.Point, gens, nil))
	assert.False(short.Verify(testTranscript(), cm.Point, gens[:3], nil))

	_, err = ProveIssuance(testTranscript(), rng, vals[:3], cm, gens, nil)
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))

	wrong := append([]*big.Int{big.NewInt(9)}, vals[1:]...)
	bad, err := ProveIssuance(testTranscript(), rng, wrong, cm, gens, nil)
	require.Nil(err)
	assert.False(bad.Verify(testTranscript(), cm.Point, gens, nil))
}

func TestIssuanceProofBindsKey(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(41)
	c := curve.T256()

	x := c.RandomNonZeroScalar(rng)
	pk := c.ScalarBaseMult(x)
	vals := []*big.Int{c.RandomScalar(rng), big.NewInt(0), x, c.RandomScalar(rng)}
	cm, gens := NewMulti(c, vals, rng)

	proof, err := ProveIssuance(testTranscript(), rng, vals, cm, gens, pk)
	require.Nil(err)
	assert.NotNil(proof.Alpha2)
	assert.True(proof.Verify(testTranscript(), cm.Point, gens, pk))
	assert.False(proof.Verify(testTranscript(), cm.Point, gens, nil))
	assert.False(proof.Verify(testTranscript(), cm.Point, gens, c.ScalarBaseMult(big.NewInt(5))))

	decoded, err := DecodeIssuanceProofMulti(c, proof.Bytes())
	require.Nil(err)
	assert.True(decoded.Verify(testTranscript(), cm.Point, gens, pk))

	other := c.ScalarBaseMult(c.RandomNonZeroScalar(rng))
	bad, err := ProveIssuance(testTranscript(), rng, vals, cm, gens, other)
	require.Nil(err)
	assert.False(bad.Verify(testTranscript(), cm.Point, gens, other))

	_, err = ProveIssuance(testTranscript(), rng, vals[:2], cm, gens[:2], pk)
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))

	_, err = DecodeIssuanceProofMulti(c, proof.Bytes()[:10])
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))
}

func TestIssuanceProofDisclosesID(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(42)
	c := curve.T256()

	x := c.RandomNonZeroScalar(rng)
	pk := c.ScalarBaseMult(x)
	id := c.RandomScalar(rng)
	vals := []*big.Int{id, big.NewInt(0), x, c.RandomScalar(rng)}
	cm, gens := NewMulti(c, vals, rng)

	proof, err := ProveIssuanceWithID(testTranscript(), rng, vals, cm, gens, pk)
	require.Nil(err)
	assert.True(proof.VerifyWithID(testTranscript(), cm.Point, gens, id, pk))
	assert.False(proof.VerifyWithID(testTranscript(), cm.Point, gens, big.NewInt(12345), pk))
	assert.False(proof.VerifyWithID(testTranscript(), cm.Point, gens, id, nil))
	assert.False(proof.Verify(testTranscript(), cm.Point, gens, pk))

	decoded, err := DecodeIssuanceProofMulti(c, proof.Bytes())
	require.Nil(err)
	assert.True(decoded.VerifyWithID(testTranscript(), cm.Point, gens, id, pk))

	// Claiming another id for the same commitment does not verify.
	claimed := append([]*big.Int{big.NewInt(12345)}, vals[1:]...)
	forged, err := ProveIssuanceWithID(testTranscript(), rng, claimed, cm, gens, pk)
	require.Nil(err)
	assert.False(forged.VerifyWithID(testTranscript(), cm.Point, gens, big.NewInt(12345), pk))

	plain, err := ProveIssuance(testTranscript(), rng, vals, cm, gens, pk)
	require.Nil(err)
	assert.False(plain.VerifyWithID(testTranscript(), cm.Point, gens, id, pk))

	_, err = ProveIssuanceWithID(testTranscript(), rng, nil, cm, nil, nil)
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))
}
