package issuance

import (
	"io"
	"math/big"
	"sync"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/logging"
	"github.com/MixinNetwork/boomerang-go/pedersen"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// Slots is the number of attributes in a Boomerang token commitment:
// serial, value, user key and a randomiser.
const Slots = 4

const m1Label = "BoomerangM1"

// Message is what the issuer signs.
var Message = []byte("message")

var logger = logging.MustGetLogger("issuance")

// Token is the opening of an issued commitment.
type Token struct {
	ID *big.Int
	V  *big.Int
	SK *big.Int
	R  *big.Int
}

func (tk *Token) values() []*big.Int {
	return []*big.Int{tk.ID, tk.V, tk.SK, tk.R}
}

// State is what the user keeps after issuance.
type State struct {
	Commits []*pedersen.Commitment
	Sigs    []*acl.Signature
	Tokens  []*Token
	ID      *big.Int
}

// Verify checks every signature against pk and every commitment against its
// token opening.
func (s *State) Verify(c *curve.Curve, pk *acl.PublicKey) bool {
	if len(s.Commits) != len(s.Sigs) || len(s.Commits) != len(s.Tokens) {
		return false
	}
	gens := pedersen.MultiGenerators(c, Slots)
	for i, comm := range s.Commits {
		if !s.Sigs[i].Verify(c, pk, Message) {
			return false
		}
		opened := pedersen.NewMultiWithGens(c, gens, s.Tokens[i].values(), comm.Rand)
		if !opened.Point.Equal(comm.Point) {
			return false
		}
	}
	return true
}

// IssuanceC is the user side of one issuance. Its methods must be called in
// order: GenerateM1, GenerateM3, PopulateState.
type IssuanceC struct {
	Pair *curve.Pair
	M1   *M1

	mu     sync.Mutex
	key    *UKeyPair
	vals   []*big.Int
	c1     *pedersen.Commitment
	comm   *pedersen.Commitment
	id     *big.Int
	issuer *acl.PublicKey
	chall  *acl.SigChall
	done   bool
}

// GenerateM1 commits to (id0, 0, x, r0) over T and proves the opening with
// slot 0 disclosed as id0 and slot pedersen.PKSlot bound to key.PK.
func GenerateM1(pr *curve.Pair, key *UKeyPair, rng io.Reader) (*IssuanceC, error) {
	c := pr.T
	if key.PK.Curve() != c {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "user key is not on the pair's T curve")
	}
	id0 := c.RandomScalar(rng)
	vals := []*big.Int{id0, big.NewInt(0), key.sk, c.RandomScalar(rng)}
	c1, gens := pedersen.NewMulti(c, vals, rng)

	proof, err := pedersen.ProveIssuanceWithID(transcript.New(m1Label), rng, vals, c1, gens, key.PK)
	if err != nil {
		return nil, err
	}
	logger.Debugw("generated m1", "pair", pr.Name)
	return &IssuanceC{
		Pair: pr,
		M1:   &M1{C1: c1.Point, Proof: proof, PK: key.PK, Gens: gens, ID0: id0},
		key:  key,
		vals: vals,
		c1:   c1,
	}, nil
}

// GenerateM3 checks the issuer's share, combines the commitments and
// serials and blinds the ACL challenge.
func (ic *IssuanceC) GenerateM3(rng io.Reader, m2 *M2) (*M3, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.chall != nil {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "m3 already generated")
	}

	c := ic.Pair.T
	if !ic.M1.Gens[0].Mul(m2.ID1).Equal(m2.Cs) {
		logger.Warnw("rejected m2", "reason", "issuer share does not open to id1")
		return nil, errors.Wrap(boomerang.ErrVerificationFailed, "issuer commitment does not open to id1")
	}
	if !m2.Key.TagKey.Equal(c.TagKey()) {
		return nil, errors.Wrap(boomerang.ErrVerificationFailed, "unexpected tag key")
	}

	comm := ic.c1.Add(&pedersen.Commitment{Point: m2.Cs, Rand: big.NewInt(0)})
	ch, err := acl.Challenge(c, m2.Key, m2.Comm, comm.Point, Message, rng)
	if err != nil {
		return nil, err
	}
	ic.comm = comm
	ic.id = c.ScalarAdd(ic.M1.ID0, m2.ID1)
	ic.issuer = m2.Key
	ic.chall = ch
	logger.Debugw("generated m3")
	return &M3{E: ch.E}, nil
}

// PopulateState unblinds the issuer's response into the issued token. pk is
// the issuer key the user trusts; it must match the one announced in M2.
func (ic *IssuanceC) PopulateState(m4 *M4, pk *acl.PublicKey) (*State, error) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	switch {
	case ic.chall == nil:
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "m3 not generated")
	case ic.done:
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "state already populated")
	}
	if !pk.VerifyingKey.Equal(ic.issuer.VerifyingKey) {
		return nil, errors.Wrap(boomerang.ErrVerificationFailed, "m2 was signed under another issuer key")
	}

	c := ic.Pair.T
	sig, err := acl.Sign(c, pk, ic.chall, m4.Resp)
	if err != nil {
		logger.Warnw("rejected m4", "error", err)
		return nil, err
	}
	ic.done = true
	tk := &Token{ID: ic.id, V: ic.vals[1], SK: ic.key.sk, R: ic.vals[3]}
	return &State{
		Commits: []*pedersen.Commitment{ic.comm},
		Sigs:    []*acl.Signature{sig},
		Tokens:  []*Token{tk},
		ID:      ic.id,
	}, nil
}
