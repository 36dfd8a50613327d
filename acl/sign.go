package acl

import (
	"io"
	"math/big"
	"sync"

	"github.com/gtank/merlin"
	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// SigComm is the signer's first message. Rand, A, A1 and A2 are sent to the
// user; the remaining scalars stay with the signer until Respond.
type SigComm struct {
	Comm *curve.Point
	Rand *big.Int
	A    *curve.Point
	A1   *curve.Point
	A2   *curve.Point

	mu    sync.Mutex
	state *signerState
}

type signerState struct {
	c, u, r1, r2 *big.Int
}

// Commit starts a signing session over the user commitment comm. Every
// session draws fresh randomness.
func Commit(kp *KeyPair, rng io.Reader, comm *curve.Point) (*SigComm, error) {
	if comm.IsIdentity() {
		return nil, errors.Wrap(boomerang.ErrMalformedInput, "commitment is the identity")
	}
	c := kp.Curve
	st := &signerState{
		u:  c.RandomScalar(rng),
		r1: c.RandomScalar(rng),
		r2: c.RandomScalar(rng),
		c:  c.RandomScalar(rng),
	}
	rnd := c.RandomScalar(rng)
	z1 := c.ScalarBaseMult(rnd).Add(comm)
	z2 := kp.TagKey.Sub(z1)
	return &SigComm{
		Comm:  comm,
		Rand:  rnd,
		A:     c.ScalarBaseMult(st.u),
		A1:    c.MultiScalarMult([]*big.Int{st.r1, st.c}, []*curve.Point{c.G(), z1}),
		A2:    c.MultiScalarMult([]*big.Int{st.r2, st.c}, []*curve.Point{c.H(), z2}),
		state: st,
	}, nil
}

// Public strips the signer state.
func (sc *SigComm) Public() *SigComm {
	return &SigComm{Comm: sc.Comm, Rand: sc.Rand, A: sc.A, A1: sc.A1, A2: sc.A2}
}

// SigResp is the signer's answer to a blinded challenge.
type SigResp struct {
	C  *big.Int // c' = e - c
	C1 *big.Int // c
	R  *big.Int
	R1 *big.Int
	R2 *big.Int
}

// Respond answers e. The signer state is consumed; a second call fails
// with ErrProtocolMisuse.
func (sc *SigComm) Respond(kp *KeyPair, e *big.Int) (*SigResp, error) {
	sc.mu.Lock()
	st := sc.state
	sc.state = nil
	sc.mu.Unlock()
	if st == nil {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "signing session already answered")
	}

	c := kp.Curve
	cp := c.ScalarSub(e, st.c)
	return &SigResp{
		C:  cp,
		C1: st.c,
		R:  c.ScalarSub(st.u, c.ScalarMul(cp, kp.x)),
		R1: st.r1,
		R2: st.r2,
	}, nil
}

// SigChall holds the user's blinded challenge E and the blinding values
// needed to unblind the response. Only E leaves the user.
type SigChall struct {
	E *big.Int

	comm   *SigComm
	zeta   *curve.Point
	zeta1  *curve.Point
	gamma  *big.Int
	tau    *big.Int
	t      [5]*big.Int
	msg    []byte
	origin *curve.Point
}

// Challenge blinds the signer's commitment and derives e for msg.
func Challenge(c *curve.Curve, pk *PublicKey, comm *SigComm, commitment *curve.Point, msg []byte, rng io.Reader) (*SigChall, error) {
	for _, p := range []*curve.Point{comm.A, comm.A1, comm.A2, commitment, pk.VerifyingKey, pk.TagKey} {
		if p == nil || p.IsIdentity() {
			return nil, errors.Wrap(boomerang.ErrMalformedInput, "identity in signer commitment")
		}
	}

	ch := &SigChall{
		comm:   comm.Public(),
		gamma:  c.RandomNonZeroScalar(rng),
		tau:    c.RandomScalar(rng),
		msg:    append([]byte(nil), msg...),
		origin: commitment,
	}
	for i := range ch.t {
		ch.t[i] = c.RandomScalar(rng)
	}
	t1, t2, t3, t4, t5 := ch.t[0], ch.t[1], ch.t[2], ch.t[3], ch.t[4]

	ch.zeta = pk.TagKey.Mul(ch.gamma)
	ch.zeta1 = c.ScalarBaseMult(comm.Rand).Add(commitment).Mul(ch.gamma)
	zeta2 := ch.zeta.Sub(ch.zeta1)

	alpha := comm.A.Add(c.MultiScalarMult([]*big.Int{t1, t2}, []*curve.Point{c.G(), pk.VerifyingKey}))
	alpha1 := c.MultiScalarMult([]*big.Int{ch.gamma, t3, t4}, []*curve.Point{comm.A1, c.G(), ch.zeta1})
	alpha2 := c.MultiScalarMult([]*big.Int{ch.gamma, t5, t4}, []*curve.Point{comm.A2, c.H(), zeta2})
	eta := pk.TagKey.Mul(ch.tau)

	eps := challengeHash(c, ch.zeta, ch.zeta1, alpha, alpha1, alpha2, eta, msg)
	ch.E = c.ScalarSub(c.ScalarSub(eps, t2), t4)
	return ch, nil
}

// Commitment returns the user commitment the challenge was built over.
func (ch *SigChall) Commitment() *curve.Point { return ch.origin }

func challengeTranscript(t *merlin.Transcript, ps [6]*curve.Point, msg []byte) {
	transcript.DomainSep(t, transcript.ACLChallenge)
	for i, p := range ps {
		transcript.AppendPoint(t, challengeLabels[i], p)
	}
	transcript.AppendMessage(t, "message", msg)
}

var challengeLabels = [6]string{"c1", "c2", "c3", "c4", "c5", "c6"}

func challengeHash(c *curve.Curve, zeta, zeta1, alpha, alpha1, alpha2, eta *curve.Point, msg []byte) *big.Int {
	t := transcript.New("Chall ACL")
	challengeTranscript(t, [6]*curve.Point{zeta, zeta1, alpha, alpha1, alpha2, eta}, msg)
	return transcript.ChallengeScalar(t, "chall", c)
}

// Signature is an unblinded ACL signature. Gamma and the signer's rnd are
// kept so the holder can later prove what ζ1 commits to.
type Signature struct {
	Zeta   *curve.Point
	Zeta1  *curve.Point
	Rho    *big.Int
	Omega  *big.Int
	Rho1   *big.Int
	Rho2   *big.Int
	Mu     *big.Int
	Omega1 *big.Int

	gamma *big.Int
	rnd   *big.Int
}

// Sign unblinds resp into a signature on msg and checks it.
func Sign(c *curve.Curve, pk *PublicKey, ch *SigChall, resp *SigResp) (*Signature, error) {
	t1, t2, t3, t4, t5 := ch.t[0], ch.t[1], ch.t[2], ch.t[3], ch.t[4]
	omega1 := c.ScalarAdd(resp.C1, t4)
	sig := &Signature{
		Zeta:   ch.zeta,
		Zeta1:  ch.zeta1,
		Rho:    c.ScalarAdd(resp.R, t1),
		Omega:  c.ScalarAdd(resp.C, t2),
		Rho1:   c.ScalarAdd(c.ScalarMul(ch.gamma, resp.R1), t3),
		Rho2:   c.ScalarAdd(c.ScalarMul(ch.gamma, resp.R2), t5),
		Mu:     c.ScalarSub(ch.tau, c.ScalarMul(omega1, ch.gamma)),
		Omega1: omega1,
		gamma:  ch.gamma,
		rnd:    ch.comm.Rand,
	}
	if !sig.Verify(c, pk, ch.msg) {
		return nil, errors.Wrap(boomerang.ErrVerificationFailed, "unblinded acl signature")
	}
	return sig, nil
}

// Verify accepts iff ω + ω1 equals the hash recomputed from the signature
// and ζ is not the identity.
func (s *Signature) Verify(c *curve.Curve, pk *PublicKey, msg []byte) bool {
	if s.Zeta == nil || s.Zeta.IsIdentity() {
		return false
	}
	zeta2 := s.Zeta.Sub(s.Zeta1)
	h1 := c.MultiScalarMult([]*big.Int{s.Rho, s.Omega}, []*curve.Point{c.G(), pk.VerifyingKey})
	h2 := c.MultiScalarMult([]*big.Int{s.Rho1, s.Omega1}, []*curve.Point{c.G(), s.Zeta1})
	h3 := c.MultiScalarMult([]*big.Int{s.Rho2, s.Omega1}, []*curve.Point{c.H(), zeta2})
	h4 := c.MultiScalarMult([]*big.Int{s.Mu, s.Omega1}, []*curve.Point{pk.TagKey, s.Zeta})

	eps := challengeHash(c, s.Zeta, s.Zeta1, h1, h2, h3, h4, msg)
	return c.ScalarAdd(s.Omega, s.Omega1).Cmp(eps) == 0
}

// Public drops the holder's opening.
func (s *Signature) Public() *Signature {
	cp := *s
	cp.gamma, cp.rnd = nil, nil
	return &cp
}
