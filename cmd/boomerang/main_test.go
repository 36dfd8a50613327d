package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/internal/drbg"
)

func TestSelfTest(t *testing.T) {
	assert := assert.New(t)
	rng := drbg.NewFromUint64(1)

	assert.Nil(selfIssue(curve.T256Pair(), rng))
	assert.Nil(selfRewards(rng))
}

func TestPublicKeyHex(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	pr := curve.Secq256k1Pair()

	kp := acl.GenerateKeyPair(pr.T, drbg.NewFromUint64(2))
	pk, err := decodePublicKey(pr, encodePublicKey(kp.Public()))
	require.Nil(err)
	assert.True(pk.VerifyingKey.Equal(kp.VerifyingKey))

	_, err = decodePublicKey(pr, "zz")
	assert.NotNil(err)
	_, err = decodePublicKey(pr, encodePublicKey(kp.Public())+"00")
	assert.NotNil(err)
}
