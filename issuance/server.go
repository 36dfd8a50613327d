package issuance

import (
	"io"
	"math/big"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/pedersen"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// IssuanceS is the issuer side of one issuance. The ACL signer state lives
// here between GenerateM2 and GenerateM4 and is consumed by the latter.
type IssuanceS struct {
	Pair *curve.Pair
	M2   *M2
	// C is the combined commitment the issuer signs.
	C *curve.Point
	// ID0 is the user's serial share from M1.
	ID0 *big.Int

	comm *acl.SigComm
}

// CheckM1 validates the shape and proof of m1 without touching any state.
// The proof ties the clear ID0 to slot 0 of C1.
func CheckM1(pr *curve.Pair, m1 *M1) error {
	c := pr.T
	if m1.C1 == nil || m1.PK == nil || m1.ID0 == nil || m1.Proof == nil {
		return errors.Wrap(boomerang.ErrMalformedInput, "incomplete m1")
	}
	if len(m1.Gens) != Slots {
		return errors.Wrapf(boomerang.ErrMalformedInput, "m1 carries %d generators", len(m1.Gens))
	}
	if m1.C1.Curve() != c || m1.PK.Curve() != c {
		return errors.Wrap(boomerang.ErrMalformedInput, "m1 is not on the pair's T curve")
	}
	for i, g := range pedersen.MultiGenerators(c, Slots) {
		if m1.Gens[i] == nil || m1.Gens[i].Curve() != c || !g.Equal(m1.Gens[i]) {
			return errors.Wrapf(boomerang.ErrMalformedInput, "unexpected generator %d", i)
		}
	}
	if m1.ID0.Sign() < 0 || m1.ID0.Cmp(c.Order()) >= 0 {
		return errors.Wrap(boomerang.ErrMalformedInput, "id0 out of range")
	}
	if !m1.Proof.VerifyWithID(transcript.New(m1Label), m1.C1, m1.Gens, m1.ID0, m1.PK) {
		return errors.Wrap(boomerang.ErrVerificationFailed, "issuance proof")
	}
	return nil
}

// GenerateM2 verifies m1, samples the issuer serial share id1 and starts an
// ACL session over C = id1·G_0 + C1.
func GenerateM2(pr *curve.Pair, rng io.Reader, m1 *M1, kp *acl.KeyPair) (*IssuanceS, error) {
	if err := CheckM1(pr, m1); err != nil {
		logger.Warnw("rejected m1", "error", err)
		return nil, err
	}
	c := pr.T
	if kp.Curve != c {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "issuer key is not on the pair's T curve")
	}

	id1 := c.RandomNonZeroScalar(rng)
	cs := m1.Gens[0].Mul(id1)
	comb := cs.Add(m1.C1)
	sc, err := acl.Commit(kp, rng, comb)
	if err != nil {
		return nil, err
	}
	logger.Debugw("generated m2", "pair", pr.Name)
	return &IssuanceS{
		Pair: pr,
		M2:   &M2{Cs: cs, ID1: id1, Comm: sc.Public(), Key: kp.Public()},
		C:    comb,
		ID0:  m1.ID0,
		comm: sc,
	}, nil
}

// GenerateM4 answers the blinded challenge. It can succeed only once.
func (is *IssuanceS) GenerateM4(m3 *M3, kp *acl.KeyPair) (*M4, error) {
	resp, err := is.comm.Respond(kp, m3.E)
	if err != nil {
		return nil, err
	}
	logger.Debugw("generated m4")
	return &M4{Resp: resp}, nil
}
