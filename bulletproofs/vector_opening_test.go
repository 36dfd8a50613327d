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

func TestVectorOpeningProof(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	for _, g := range []Group{Ristretto255(), Weierstrass(curve.P256())} {
		rng := drbg.NewFromUint64(7)
		f := fieldOf(g)
		pg := NewPedersenGens(g)
		gs := NewBulletproofGens(g, 4, 1).Share(0).G(4)

		a := []*big.Int{f.random(rng), big.NewInt(0), f.random(rng), big.NewInt(3)}
		s := f.random(rng)
		d := g.MultiScalarMult(append(append([]*big.Int(nil), a...), s), append(append([]Point(nil), gs...), pg.BBlinding))

		proof, err := CreateVectorOpeningProof(transcript.New("opening"), g, rng, d, s, a, gs, pg.BBlinding)
		require.Nil(err)
		assert.True(proof.Verify(transcript.New("opening"), g, d, gs, pg.BBlinding))
		assert.False(proof.Verify(transcript.New("other"), g, d, gs, pg.BBlinding))
		assert.False(proof.Verify(transcript.New("opening"), g, d, gs[:3], pg.BBlinding))

		decoded, err := DecodeVectorOpeningProof(g, proof.Bytes(g))
		require.Nil(err)
		assert.True(decoded.Verify(transcript.New("opening"), g, d, gs, pg.BBlinding))

		// A component along B cannot be hidden in D.
		shifted := d.Add(pg.B)
		forged, err := CreateVectorOpeningProof(transcript.New("opening"), g, rng, shifted, s, a, gs, pg.BBlinding)
		require.Nil(err)
		assert.False(forged.Verify(transcript.New("opening"), g, shifted, gs, pg.BBlinding))

		_, err = CreateVectorOpeningProof(transcript.New("opening"), g, rng, d, s, a[:3], gs, pg.BBlinding)
		assert.True(errors.Is(err, boomerang.ErrProtocolMisuse))
		_, err = DecodeVectorOpeningProof(g, proof.Bytes(g)[:g.PointSize()])
		assert.True(errors.Is(err, boomerang.ErrMalformedInput))
	}
}
