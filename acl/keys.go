// Package acl implements the Anonymous Credentials Light blind signature
// over the T curve of a curve pair.
package acl

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/curve"
)

// KeyPair is a signer key. TagKey is the shared tag public key Z; it does
// not depend on the secret.
type KeyPair struct {
	Curve        *curve.Curve
	VerifyingKey *curve.Point
	TagKey       *curve.Point

	x *big.Int
}

func GenerateKeyPair(c *curve.Curve, rng io.Reader) *KeyPair {
	kp, err := KeyPairFromSecret(c, c.RandomNonZeroScalar(rng))
	if err != nil {
		panic(err)
	}
	return kp
}

// KeyPairFromSecret rebuilds a key pair from its secret scalar.
func KeyPairFromSecret(c *curve.Curve, x *big.Int) (*KeyPair, error) {
	if x.Sign() <= 0 || x.Cmp(c.Order()) >= 0 {
		return nil, errors.Wrap(boomerang.ErrMalformedInput, "acl secret key out of range")
	}
	return &KeyPair{
		Curve:        c,
		VerifyingKey: c.ScalarBaseMult(x),
		TagKey:       c.TagKey(),
		x:            new(big.Int).Set(x),
	}, nil
}

// DecodeKeyPair parses the output of SecretBytes.
func DecodeKeyPair(c *curve.Curve, buf []byte) (*KeyPair, error) {
	x, err := c.DecodeScalar(buf)
	if err != nil {
		return nil, err
	}
	return KeyPairFromSecret(c, x)
}

func (kp *KeyPair) SecretBytes() []byte {
	return kp.Curve.ScalarBytes(kp.x)
}

// Public returns the verifying key and tag key without the secret.
func (kp *KeyPair) Public() *PublicKey {
	return &PublicKey{VerifyingKey: kp.VerifyingKey, TagKey: kp.TagKey}
}

// PublicKey is what users receive from the signer.
type PublicKey struct {
	VerifyingKey *curve.Point
	TagKey       *curve.Point
}
