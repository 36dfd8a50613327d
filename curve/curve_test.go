package curve

import (
	"crypto/elliptic"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/internal/drbg"
)

func TestKnownPoints(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0316f70c3f35b3257896971b306635647bc52eb7cad7a5eca1a42f2340737749e3", hex.EncodeToString(T256().G().Mul(big.NewInt(2)).Bytes()))
	assert.Equal("02a470f33cddaad1ade7e37d65442f07aab67eaab3654c0911ca872292a6551441", hex.EncodeToString(T256().ScalarBaseMult(big.NewInt(12345)).Bytes()))
	assert.Equal("03f633faf9adb27b2c9b4fb3c3d83635abbb1f5d005d5716c156fe1418afa6119b", hex.EncodeToString(T256().Commit(big.NewInt(7), big.NewInt(11)).Bytes()))
	assert.Equal("02c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5", hex.EncodeToString(Secp256k1().ScalarBaseMult(big.NewInt(2)).Bytes()))
	assert.Equal("022462c24b1e38ba1e46c365bc999de2f2dc16214a977dedee332c2737c970cbe5", hex.EncodeToString(Secq256k1().H().Mul(big.NewInt(7)).Bytes()))
	assert.Equal("02b4342466b4b53e82b0438e982138ed5b73dcea827d339cc5e1ac152304b9e5d3", hex.EncodeToString(Secp256k1().H().Bytes()))
	assert.Equal("02604008c3316d732d80fef1e778b4d47313420beac1bc0b74cafd198a290224b7aa3a04828bb41d6392d43a7fc462480f", hex.EncodeToString(T384().G().Mul(big.NewInt(2)).Bytes()))
	assert.Equal("0289177cb78ca2225e77ceb294262ae176cf76ca6dbb803cdcb6f5eb75f41048d7", hex.EncodeToString(T256k1().G().Mul(big.NewInt(2)).Bytes()))
	assert.Len(T384().G().Bytes(), 49)
}

func TestHashToPoint(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("0208cbbfd6362de17a5707b00a6756ff4986fab1321f0d21eff09f41154d298847", hex.EncodeToString(T256().TagKey().Bytes()))
	assert.Equal("0208cbbfd6362de17a5707b00a6756ff4986fab1321f0d21eff09f41154d298847", hex.EncodeToString(Secq256k1().TagKey().Bytes()))
	assert.Equal("02b4bc039c4fecb5979c809f92c70b0e84867b288fc45c8f619f977316beff1369", hex.EncodeToString(T256().Generators(1)[0].Bytes()))
	assert.True(T256().HashToPoint([]byte("a")).Equal(T256().HashToPoint([]byte("a"))))
	assert.False(T256().HashToPoint([]byte("a")).Equal(T256().HashToPoint([]byte("b"))))

	gens := T256().Generators(4)
	for i := range gens {
		for j := i + 1; j < len(gens); j++ {
			assert.False(gens[i].Equal(gens[j]))
		}
	}
}

func TestP256MatchesStdlib(t *testing.T) {
	assert := assert.New(t)
	rng := drbg.NewFromUint64(1)

	std := elliptic.P256()
	c := P256()
	for i := 0; i < 8; i++ {
		k := c.RandomScalar(rng)
		x, y := std.ScalarBaseMult(k.Bytes())
		p := c.ScalarBaseMult(k)
		assert.Equal(0, x.Cmp(p.X()))
		assert.Equal(0, y.Cmp(p.Y()))

		x2, y2 := std.Add(x, y, std.Params().Gx, std.Params().Gy)
		q := p.Add(c.G())
		assert.Equal(0, x2.Cmp(q.X()))
		assert.Equal(0, y2.Cmp(q.Y()))
	}
}

func TestGroupLaws(t *testing.T) {
	rng := drbg.NewFromUint64(2)
	for _, c := range []*Curve{T256(), P256(), Secq256k1(), Secp256k1(), T384(), P384(), T256k1()} {
		t.Run(c.Name(), func(t *testing.T) {
			assert := assert.New(t)

			assert.True(c.G().Mul(c.Order()).IsIdentity())
			assert.True(c.H().Mul(c.Order()).IsIdentity())

			a, b := c.RandomScalar(rng), c.RandomScalar(rng)
			pa, pb := c.ScalarBaseMult(a), c.ScalarBaseMult(b)
			assert.True(pa.Add(pb).Equal(c.ScalarBaseMult(c.ScalarAdd(a, b))))
			assert.True(pa.Sub(pb).Equal(c.ScalarBaseMult(c.ScalarSub(a, b))))
			assert.True(pa.Add(pa).Equal(pa.Mul(big.NewInt(2))))
			assert.True(pa.Sub(pa).IsIdentity())
			assert.True(pa.Add(c.Identity()).Equal(pa))
			assert.True(pa.Mul(big.NewInt(-1)).Equal(pa.Neg()))

			msm := c.MultiScalarMult([]*big.Int{a, b}, []*Point{c.G(), c.H()})
			assert.True(msm.Equal(c.Commit(a, b)))
			assert.True(msm.Equal(c.G().Mul(a).Add(c.H().Mul(b))))
		})
	}
}

func TestEncoding(t *testing.T) {
	assert := assert.New(t)
	rng := drbg.NewFromUint64(3)
	c := T256()

	for i := 0; i < 8; i++ {
		p := c.ScalarBaseMult(c.RandomNonZeroScalar(rng))
		q, err := c.DecodePoint(p.Bytes())
		assert.Nil(err)
		assert.True(p.Equal(q))
	}

	_, err := c.DecodePoint(c.Identity().Bytes())
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))
	assert.Len(c.Identity().Bytes(), 33)

	bad := c.G().Bytes()
	bad[0] = 0x04
	_, err = c.DecodePoint(bad)
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))

	_, err = c.DecodePoint(bad[:20])
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))

	// x = p is out of range
	over := make([]byte, 33)
	over[0] = 0x02
	c.Field().FillBytes(over[1:])
	_, err = c.DecodePoint(over)
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))

	_, err = c.DecodeScalar(c.Order().Bytes())
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))
	k, err := c.DecodeScalar(c.ScalarBytes(big.NewInt(42)))
	require.Nil(t, err)
	assert.Equal(int64(42), k.Int64())

	_, err = c.NewPoint(big.NewInt(1), big.NewInt(1))
	assert.True(errors.Is(err, boomerang.ErrMalformedInput))
}

func TestEncoderDecoder(t *testing.T) {
	assert := assert.New(t)
	pr := T256Pair()

	enc := NewEncoder(0).
		WritePoint(pr.T.G()).
		WritePoint(pr.O.H()).
		WriteScalar(pr.T, big.NewInt(9)).
		WriteBytes([]byte("msg"))

	dec := NewDecoder(enc.Bytes())
	assert.True(dec.ReadPoint(pr.T).Equal(pr.T.G()))
	assert.True(dec.ReadPoint(pr.O).Equal(pr.O.H()))
	assert.Equal(int64(9), dec.ReadScalar(pr.T).Int64())
	assert.Equal([]byte("msg"), dec.ReadBytes())
	assert.Nil(dec.Finish())

	dec = NewDecoder(enc.Bytes()[:40])
	dec.ReadPoint(pr.T)
	dec.ReadPoint(pr.O)
	assert.True(errors.Is(dec.Finish(), boomerang.ErrMalformedInput))

	dec = NewDecoder(append(enc.Bytes(), 0))
	dec.ReadPoint(pr.T)
	assert.NotNil(dec.ReadPoint(pr.O))
	dec.ReadScalar(pr.T)
	dec.ReadBytes()
	assert.NotNil(dec.Finish())
}

func TestPair(t *testing.T) {
	assert := assert.New(t)

	for _, pr := range []*Pair{T256Pair(), Secq256k1Pair(), T384Pair(), T256k1Pair(), TSecp256k1Pair()} {
		assert.Equal(0, pr.T.Order().Cmp(pr.O.Field()))
		assert.Equal(DefaultSecParam, pr.SecParam)
		assert.True(pr.IsCM1(pr.SingleBitChallenge(0)))
		assert.True(pr.IsCP1(pr.SingleBitChallenge(1)))
		assert.Equal(0, pr.T.ScalarAdd(pr.CM1(), pr.CP1()).Sign())

		x := pr.O.G().X()
		assert.Equal(0, pr.FromOBToSF(x).Cmp(x))
	}

	assert.Panics(func() { NewPair("bad", P256(), T256()) })
	assert.Panics(func() { T256().G().Add(P256().G()) })

	_, err := PairByName("nope")
	assert.NotNil(err)
	pr, err := PairByName("secq256k1")
	assert.Nil(err)
	assert.Equal(Secq256k1Pair(), pr)
	for name, want := range map[string]*Pair{"t384": T384Pair(), "t256k1": T256k1Pair(), "tsecp256k1": TSecp256k1Pair()} {
		pr, err = PairByName(name)
		assert.Nil(err)
		assert.Equal(want, pr)
	}
}

func TestP384MatchesStdlib(t *testing.T) {
	assert := assert.New(t)
	rng := drbg.NewFromUint64(4)

	std := elliptic.P384()
	c := P384()
	for i := 0; i < 4; i++ {
		k := c.RandomScalar(rng)
		x, y := std.ScalarBaseMult(k.Bytes())
		p := c.ScalarBaseMult(k)
		assert.Equal(0, x.Cmp(p.X()))
		assert.Equal(0, y.Cmp(p.Y()))
	}
}

func TestScalarFromBytesWide(t *testing.T) {
	assert := assert.New(t)
	c := T256()

	buf := make([]byte, 64)
	buf[0] = 5
	assert.Equal(int64(5), c.ScalarFromBytesWide(buf).Int64())
	buf[0], buf[1] = 0, 1
	assert.Equal(int64(256), c.ScalarFromBytesWide(buf).Int64())
	assert.Nil(c.ScalarInv(big.NewInt(0)))
	assert.Equal(int64(1), c.ScalarMul(c.ScalarInv(big.NewInt(3)), big.NewInt(3)).Int64())
}
