package issuance

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/internal/drbg"
	"github.com/MixinNetwork/boomerang-go/pedersen"
)

func TestIssuance(t *testing.T) {
	for _, pr := range []*curve.Pair{curve.T256Pair(), curve.Secq256k1Pair(), curve.T384Pair(), curve.T256k1Pair(), curve.TSecp256k1Pair()} {
		t.Run(pr.Name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)
			c := pr.T
			rng := drbg.NewFromUint64(1)

			kp := acl.GenerateKeyPair(c, rng)
			user := GenerateUKeyPair(c, rng)

			ic, err := GenerateM1(pr, user, rng)
			require.Nil(err)
			m1, err := DecodeM1(c, ic.M1.Bytes())
			require.Nil(err)

			is, err := GenerateM2(pr, rng, m1, kp)
			require.Nil(err)
			m2, err := DecodeM2(c, is.M2.Bytes())
			require.Nil(err)

			m3, err := ic.GenerateM3(rng, m2)
			require.Nil(err)
			m3, err = DecodeM3(c, m3.Bytes(c))
			require.Nil(err)

			m4, err := is.GenerateM4(m3, kp)
			require.Nil(err)
			m4, err = DecodeM4(c, m4.Bytes(c))
			require.Nil(err)

			st, err := ic.PopulateState(m4, kp.Public())
			require.Nil(err)
			require.Len(st.Commits, 1)
			require.Len(st.Sigs, 1)

			assert.Equal(0, st.ID.Cmp(c.ScalarAdd(ic.M1.ID0, is.M2.ID1)))
			assert.True(st.Commits[0].Point.Equal(is.C))
			assert.True(st.Sigs[0].Verify(c, kp.Public(), Message))
			assert.True(st.Verify(c, kp.Public()))
			assert.Equal(0, st.Tokens[0].V.Sign())

			other := acl.GenerateKeyPair(c, rng)
			assert.False(st.Verify(c, other.Public()))
		})
	}
}

func TestIssuanceSeeds(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	pr := curve.T256Pair()
	c := pr.T

	seeds := uint64(64)
	if testing.Short() {
		seeds = 4
	}
	for seed := uint64(0); seed < seeds; seed++ {
		rng := drbg.NewFromUint64(seed)
		kp := acl.GenerateKeyPair(c, rng)
		ic, err := GenerateM1(pr, GenerateUKeyPair(c, rng), rng)
		require.Nil(err)
		is, err := GenerateM2(pr, rng, ic.M1, kp)
		require.Nil(err)
		m3, err := ic.GenerateM3(rng, is.M2)
		require.Nil(err)
		m4, err := is.GenerateM4(m3, kp)
		require.Nil(err)
		st, err := ic.PopulateState(m4, kp.Public())
		require.Nil(err, "seed %d", seed)
		assert.Len(st.Commits, 1)
		assert.Len(st.Sigs, 1)
		assert.Equal(0, st.ID.Cmp(c.ScalarAdd(ic.M1.ID0, is.M2.ID1)), "seed %d", seed)
	}
}

func TestIssuanceOutOfOrder(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	pr := curve.T256Pair()
	c := pr.T
	rng := drbg.NewFromUint64(2)

	kp := acl.GenerateKeyPair(c, rng)
	ic, err := GenerateM1(pr, GenerateUKeyPair(c, rng), rng)
	require.Nil(err)

	_, err = ic.PopulateState(&M4{}, kp.Public())
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))

	is, err := GenerateM2(pr, rng, ic.M1, kp)
	require.Nil(err)
	m3, err := ic.GenerateM3(rng, is.M2)
	require.Nil(err)
	_, err = ic.GenerateM3(rng, is.M2)
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))

	m4, err := is.GenerateM4(m3, kp)
	require.Nil(err)
	_, err = is.GenerateM4(m3, kp)
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))

	other := acl.GenerateKeyPair(c, rng)
	_, err = ic.PopulateState(m4, other.Public())
	assert.True(errors.Is(err, boomerang.ErrVerificationFailed))

	_, err = ic.PopulateState(m4, kp.Public())
	require.Nil(err)
	_, err = ic.PopulateState(m4, kp.Public())
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))
}

func TestRejectedMessages(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	pr := curve.T256Pair()
	c := pr.T
	rng := drbg.NewFromUint64(3)

	kp := acl.GenerateKeyPair(c, rng)
	ic, err := GenerateM1(pr, GenerateUKeyPair(c, rng), rng)
	require.Nil(err)

	forged := *ic.M1
	forged.PK = GenerateUKeyPair(c, rng).PK
	_, err = GenerateM2(pr, rng, &forged, kp)
	assert.True(errors.Is(err, boomerang.ErrVerificationFailed))

	forged = *ic.M1
	forged.Gens = pedersen.MultiGenerators(c, Slots+1)
	_, err = GenerateM2(pr, rng, &forged, kp)
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))

	forged = *ic.M1
	forged.ID0 = big.NewInt(12345)
	_, err = GenerateM2(pr, rng, &forged, kp)
	assert.True(errors.Is(err, boomerang.ErrVerificationFailed))

	is, err := GenerateM2(pr, rng, ic.M1, kp)
	require.Nil(err)
	m2 := *is.M2
	m2.ID1 = c.ScalarAdd(m2.ID1, big.NewInt(1))
	_, err = ic.GenerateM3(rng, &m2)
	assert.True(errors.Is(err, boomerang.ErrVerificationFailed))

	buf := ic.M1.Bytes()
	_, err = DecodeM1(c, buf[:len(buf)-1])
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))
	_, err = DecodeM1(c, append(buf, 0))
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))

	buf = is.M2.Bytes()
	copy(buf, make([]byte, c.PointSize()))
	_, err = DecodeM2(c, buf)
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))
}

func TestM1SerialShareIsBound(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	pr := curve.T256Pair()
	c := pr.T
	rng := drbg.NewFromUint64(5)

	kp := acl.GenerateKeyPair(c, rng)
	alice, err := GenerateM1(pr, GenerateUKeyPair(c, rng), rng)
	require.Nil(err)
	bob, err := GenerateM1(pr, GenerateUKeyPair(c, rng), rng)
	require.Nil(err)

	// Bob cannot claim Alice's serial share.
	stolen := *bob.M1
	stolen.ID0 = alice.M1.ID0
	_, err = GenerateM2(pr, rng, &stolen, kp)
	assert.True(errors.Is(err, boomerang.ErrVerificationFailed))

	decoded, err := DecodeM1(c, stolen.Bytes())
	require.Nil(err)
	assert.True(errors.Is(CheckM1(pr, decoded), boomerang.ErrVerificationFailed))

	outOfRange := *bob.M1
	outOfRange.ID0 = new(big.Int).Add(bob.M1.ID0, c.Order())
	assert.True(errors.Is(CheckM1(pr, &outOfRange), boomerang.ErrMalformedInput))

	// The serial the issuer records is the one inside the token.
	is, err := GenerateM2(pr, rng, bob.M1, kp)
	require.Nil(err)
	m3, err := bob.GenerateM3(rng, is.M2)
	require.Nil(err)
	m4, err := is.GenerateM4(m3, kp)
	require.Nil(err)
	st, err := bob.PopulateState(m4, kp.Public())
	require.Nil(err)
	assert.Equal(0, st.ID.Cmp(c.ScalarAdd(is.ID0, is.M2.ID1)))
	assert.Equal(0, st.Tokens[0].ID.Cmp(st.ID))
}

func TestM1ForeignCurve(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	pr := curve.T256Pair()
	rng := drbg.NewFromUint64(6)

	ic, err := GenerateM1(pr, GenerateUKeyPair(pr.T, rng), rng)
	require.Nil(err)

	foreign := *ic.M1
	foreign.Gens = pedersen.MultiGenerators(curve.Secq256k1(), Slots)
	assert.NotPanics(func() {
		err = CheckM1(pr, &foreign)
	})
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))

	foreign = *ic.M1
	foreign.Gens = append([]*curve.Point{nil}, ic.M1.Gens[1:]...)
	assert.NotPanics(func() {
		err = CheckM1(pr, &foreign)
	})
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))

	foreign = *ic.M1
	foreign.ID0 = nil
	assert.True(errors.Is(CheckM1(pr, &foreign), boomerang.ErrMalformedInput))
}

func TestUKeyPair(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	c := curve.T256()

	k := GenerateUKeyPair(c, drbg.NewFromUint64(4))
	decoded, err := DecodeUKeyPair(c, k.SecretBytes())
	require.Nil(err)
	assert.True(k.PK.Equal(decoded.PK))

	_, err = UKeyPairFromSecret(c, c.Order())
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))
}
