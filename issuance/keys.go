// Package issuance runs the four-message Boomerang issuance between a user
// (IssuanceC) and the issuer (IssuanceS). The user ends up with an ACL
// signature over a commitment to (id, 0, x, r) where id = id0 + id1 is a
// serial neither side controls alone.
package issuance

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/curve"
)

// UKeyPair is the user's signing key, committed in slot pedersen.PKSlot.
type UKeyPair struct {
	PK *curve.Point

	sk *big.Int
}

func GenerateUKeyPair(c *curve.Curve, rng io.Reader) *UKeyPair {
	k, err := UKeyPairFromSecret(c, c.RandomNonZeroScalar(rng))
	if err != nil {
		panic(err)
	}
	return k
}

func UKeyPairFromSecret(c *curve.Curve, sk *big.Int) (*UKeyPair, error) {
	if sk.Sign() <= 0 || sk.Cmp(c.Order()) >= 0 {
		return nil, errors.Wrap(boomerang.ErrMalformedInput, "user secret key out of range")
	}
	return &UKeyPair{PK: c.ScalarBaseMult(sk), sk: new(big.Int).Set(sk)}, nil
}

func DecodeUKeyPair(c *curve.Curve, buf []byte) (*UKeyPair, error) {
	sk, err := c.DecodeScalar(buf)
	if err != nil {
		return nil, err
	}
	return UKeyPairFromSecret(c, sk)
}

func (k *UKeyPair) SecretBytes() []byte {
	return k.PK.Curve().ScalarBytes(k.sk)
}
