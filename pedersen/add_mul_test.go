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

func TestAddMulProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	rng := drbg.NewFromUint64(22)

	for _, c := range []*curve.Curve{curve.T256(), curve.T256k1()} {
		x, y, z := c.RandomScalar(rng), c.RandomScalar(rng), c.RandomScalar(rng)
		xy := c.ScalarMul(x, y)
		c1, c2, c3 := New(c, x, rng), New(c, y, rng), New(c, z, rng)
		c4, c5 := New(c, xy, rng), New(c, c.ScalarAdd(xy, z), rng)

		proof := ProveAddMul(testTranscript(), rng, x, y, z, c1, c2, c3, c4, c5)
		assert.True(proof.Verify(testTranscript(), c1.Point, c2.Point, c3.Point, c4.Point, c5.Point), c.Name())
		assert.False(proof.Verify(testTranscript(), c1.Point, c2.Point, c3.Point, c4.Point, c5.Point.Add(c.G())))
		assert.False(proof.Verify(testTranscript(), c1.Point, c2.Point, c3.Point, c5.Point, c4.Point))

		buf := proof.Bytes()
		assert.Len(buf, proof.SerializedSize())
		decoded, err := DecodeAddMulProof(c, buf)
		require.Nil(err)
		assert.True(decoded.Verify(testTranscript(), c1.Point, c2.Point, c3.Point, c4.Point, c5.Point))
		_, err = DecodeAddMulProof(c, buf[:len(buf)-1])
		assert.True(errors.Is(err, boomerang.ErrMalformedInput))

		// C5 holding x·y + z + 1 is rejected even with a valid product.
		c6 := New(c, c.ScalarAdd(c.ScalarAdd(xy, z), big.NewInt(1)), rng)
		bad := ProveAddMul(testTranscript(), rng, x, y, z, c1, c2, c3, c4, c6)
		assert.False(bad.Verify(testTranscript(), c1.Point, c2.Point, c3.Point, c4.Point, c6.Point))

		// A wrong product is rejected even when C5 is consistent with it.
		w := c.ScalarAdd(xy, big.NewInt(1))
		c7, c8 := New(c, w, rng), New(c, c.ScalarAdd(w, z), rng)
		bad = ProveAddMul(testTranscript(), rng, x, y, z, c1, c2, c3, c7, c8)
		assert.False(bad.Verify(testTranscript(), c1.Point, c2.Point, c3.Point, c7.Point, c8.Point))
	}
}
