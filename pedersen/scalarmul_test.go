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
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// smallPair keeps the curves of pr but runs fewer repetitions.
func smallPair(pr *curve.Pair, reps int) *curve.Pair {
	cp := *pr
	cp.SecParam = reps
	return &cp
}

func multiples(o *curve.Curve, ks ...int64) []*curve.Point {
	ps := make([]*curve.Point, len(ks))
	for i, k := range ks {
		ps[i] = o.ScalarBaseMult(big.NewInt(k))
	}
	return ps
}

func TestPointAddProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(10)

	pairs := []*curve.Pair{curve.Secq256k1Pair(), curve.T256Pair(), curve.T384Pair(), curve.T256k1Pair(), curve.TSecp256k1Pair()}
	for _, pr := range pairs {
		ps := multiples(pr.O, 2, 3, 5)
		proof, err := ProvePointAdd(transcript.New("test"), rng, pr, ps[0], ps[1], ps[2])
		require.Nil(err)
		assert.True(proof.Verify(transcript.New("test"), pr))

		buf := proof.Bytes()
		assert.Len(buf, proof.SerializedSize())
		decoded, err := DecodePointAddProof(pr, buf)
		require.Nil(err)
		assert.True(decoded.Verify(transcript.New("test"), pr))

		wrong := multiples(pr.O, 6)[0]
		bad, err := ProvePointAdd(transcript.New("test"), rng, pr, ps[0], ps[1], wrong)
		require.Nil(err)
		assert.False(bad.Verify(transcript.New("test"), pr))

		_, err = ProvePointAdd(transcript.New("test"), rng, pr, ps[0], ps[0], ps[2])
		assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))
	}
}

func TestPointAddWithChallenge(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(11)
	pr := curve.Secq256k1Pair()

	ps := multiples(pr.O, 7, 9, 16)
	cs := CommitCoordinates(pr, rng, ps[0], ps[1], ps[2])
	for _, chal := range []*big.Int{pr.CM1(), pr.CP1(), big.NewInt(12345)} {
		pi, err := NewPointAddIntermediateWithCommitments(transcript.New("test"), rng, pr, ps[0], ps[1], ps[2], cs)
		require.Nil(err)
		proof := pi.Prove(pr, ps[0], ps[1], ps[2], chal)
		assert.Nil(proof.Comms)
		assert.True(proof.VerifyWithChallenge(pr, cs.Points(), chal))
		assert.False(proof.VerifyWithChallenge(pr, cs.Points(), big.NewInt(2)))
	}
}

func TestZKAttestPointAddProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(12)

	for _, pr := range []*curve.Pair{curve.Secq256k1Pair(), curve.T256Pair()} {
		ps := multiples(pr.O, 2, 3, 5)
		proof, err := ProveZKAttestPointAdd(transcript.New("test"), rng, pr, ps[0], ps[1], ps[2])
		require.Nil(err)
		assert.True(proof.Verify(transcript.New("test"), pr))

		decoded, err := DecodeZKAttestPointAddProof(pr, proof.Bytes())
		require.Nil(err)
		assert.True(decoded.Verify(transcript.New("test"), pr))

		bad, err := ProveZKAttestPointAdd(transcript.New("test"), rng, pr, ps[0], ps[1], multiples(pr.O, 4)[0])
		require.Nil(err)
		assert.False(bad.Verify(transcript.New("test"), pr))
	}

	pr := curve.Secq256k1Pair()
	ps := multiples(pr.O, 11, 13, 24)
	pi, err := NewZKAttestPointAddIntermediate(transcript.New("test"), rng, pr, ps[0], ps[1], ps[2])
	require.Nil(err)
	proof := pi.Prove(pr, ps[0], ps[1], ps[2], pr.CM1())
	assert.True(proof.VerifyWithChallenge(pr, *proof.Comms, pr.CM1()))
	assert.False(proof.VerifyWithChallenge(pr, *proof.Comms, pr.CP1()))
	assert.Len(proof.FirstMove().Mul, 4)
}

func TestScalarMulProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(20)
	pr := curve.Secq256k1Pair()

	lambda := big.NewInt(2)
	p := pr.O.G()
	s := p.Mul(lambda)
	for _, chal := range []*big.Int{pr.CM1(), pr.CP1()} {
		si, err := NewScalarMulIntermediate(transcript.New("test"), rng, pr, s, lambda, p)
		require.Nil(err)
		proof, err := si.Prove(pr, s, lambda, p, chal)
		require.Nil(err)
		assert.True(proof.VerifyWithChallenge(pr, p, chal))

		decoded, err := DecodeScalarMulProof(pr, proof.Bytes(pr))
		require.Nil(err)
		assert.True(decoded.VerifyWithChallenge(pr, p, chal))
		assert.False(decoded.VerifyWithChallenge(pr, p.Mul(big.NewInt(3)), chal))
	}

	si, err := NewScalarMulIntermediate(transcript.New("test"), rng, pr, s, lambda, p)
	require.Nil(err)
	_, err = si.Prove(pr, s, lambda, p, big.NewInt(5))
	assert.True(errors.Is(err, boomerang.ErrInvalidChallenge))

	proof, err := ProveScalarMul(transcript.New("test"), rng, pr, s, lambda, p)
	require.Nil(err)
	assert.True(proof.Verify(transcript.New("test"), pr, p))

	_, err = ProveScalarMul(transcript.New("test"), rng, pr, p.Mul(big.NewInt(3)), lambda, p)
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))
}

func TestZKAttestScalarMulProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(21)
	pr := curve.Secq256k1Pair()

	lambda := pr.O.RandomNonZeroScalar(rng)
	p := pr.O.G()
	s := p.Mul(lambda)
	for _, c0 := range []*big.Int{pr.CM1(), pr.CP1()} {
		for _, c1 := range []*big.Int{pr.CM1(), pr.CP1()} {
			zi, err := NewZKAttestScalarMulIntermediate(transcript.New("test"), rng, pr, s, lambda, p)
			require.Nil(err)
			proof, err := zi.Prove(pr, s, lambda, p, c0, c1)
			require.Nil(err)
			assert.Equal(pr.IsCP1(c0), proof.PA != nil)
			assert.True(proof.VerifyWithChallenge(pr, p, c0, c1))

			decoded, err := DecodeZKAttestScalarMulProof(pr, proof.Bytes(pr))
			require.Nil(err)
			assert.True(decoded.VerifyWithChallenge(pr, p, c0, c1))
			assert.False(decoded.VerifyWithChallenge(pr, p.Mul(big.NewInt(2)), c0, c1))
		}
	}

	proof, err := ProveZKAttestScalarMul(transcript.New("test"), rng, pr, s, lambda, p)
	require.Nil(err)
	assert.True(proof.Verify(transcript.New("test"), pr, p))
}

func TestFSScalarMulProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	pr := smallPair(curve.Secq256k1Pair(), 40)
	lambda := big.NewInt(2)
	p := pr.O.G()
	s := p.Mul(lambda)

	proof, err := ProveFSScalarMul(transcript.New("test"), drbg.NewFromUint64(30), pr, s, lambda, p)
	require.Nil(err)
	assert.Len(proof.Proofs, 40)
	valid, err := proof.Verify(transcript.New("test"), pr, p)
	require.Nil(err)
	assert.True(valid)

	again, err := ProveFSScalarMul(transcript.New("test"), drbg.NewFromUint64(30), pr, s, lambda, p)
	require.Nil(err)
	assert.Equal(proof.Bytes(pr), again.Bytes(pr))

	buf := proof.Bytes(pr)
	assert.Len(buf, proof.SerializedSize())
	decoded, err := DecodeFSScalarMulProof(pr, buf)
	require.Nil(err)
	valid, err = decoded.Verify(transcript.New("test"), pr, p)
	require.Nil(err)
	assert.True(valid)

	decoded.Proofs[37].Z1 = pr.O.ScalarAdd(decoded.Proofs[37].Z1, big.NewInt(1))
	valid, err = decoded.Verify(transcript.New("test"), pr, p)
	require.Nil(err)
	assert.False(valid)

	short := &FSScalarMulProof{Proofs: proof.Proofs[:39]}
	_, err = short.Verify(transcript.New("test"), pr, p)
	assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))

	_, err = DecodeFSScalarMulProof(smallPair(pr, 41), buf)
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))
}

func TestFSScalarMulFullSecParam(t *testing.T) {
	if testing.Short() {
		t.Skip("128 repetitions")
	}
	assert := assert.New(t)
	require := require.New(t)

	pr := curve.Secq256k1Pair()
	lambda := big.NewInt(2)
	p := pr.O.G()
	s := p.Mul(lambda)

	proof, err := ProveFSScalarMul(transcript.New("test"), drbg.NewFromUint64(31), pr, s, lambda, p)
	require.Nil(err)
	assert.Len(proof.Proofs, curve.DefaultSecParam)
	valid, err := proof.Verify(transcript.New("test"), pr, p)
	require.Nil(err)
	assert.True(valid)
}

func TestFSZKAttestScalarMulProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	pr := smallPair(curve.T256Pair(), 24)
	rng := drbg.NewFromUint64(32)
	lambda := pr.O.RandomNonZeroScalar(rng)
	p := pr.O.G()
	s := p.Mul(lambda)

	proof, err := ProveFSZKAttestScalarMul(transcript.New("test"), rng, pr, s, lambda, p)
	require.Nil(err)
	valid, err := proof.Verify(transcript.New("test"), pr, p)
	require.Nil(err)
	assert.True(valid)

	buf := proof.Bytes(pr)
	assert.Len(buf, proof.SerializedSize())
	decoded, err := DecodeFSZKAttestScalarMulProof(pr, buf)
	require.Nil(err)
	valid, err = decoded.Verify(transcript.New("test"), pr, p)
	require.Nil(err)
	assert.True(valid)

	valid, err = decoded.Verify(transcript.New("other"), pr, p)
	require.Nil(err)
	assert.False(valid)
}

func TestChallengeBitOrder(t *testing.T) {
	assert := assert.New(t)

	buf := []byte{0x05, 0x80}
	assert.Equal(byte(1), bitAt(buf, 0))
	assert.Equal(byte(0), bitAt(buf, 1))
	assert.Equal(byte(1), bitAt(buf, 2))
	assert.Equal(byte(0), bitAt(buf, 8))
	assert.Equal(byte(1), bitAt(buf, 15))
}
