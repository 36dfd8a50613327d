package pedersen

import (
	"encoding/binary"
	"io"
	"math/big"

	"github.com/gtank/merlin"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/internal/drbg"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

// FSScalarMulProof repeats ScalarMulProof SecParam times under one
// challenge buffer, one bit per repetition.
type FSScalarMulProof struct {
	Proofs []*ScalarMulProof
}

// FSZKAttestScalarMulProof repeats ZKAttestScalarMulProof SecParam times,
// two bits per repetition.
type FSZKAttestScalarMulProof struct {
	Proofs []*ZKAttestScalarMulProof
}

// repetitionReaders derives one independent stream per repetition so that
// intermediates can be built concurrently while the proof stays a function
// of rng alone.
func repetitionReaders(rng io.Reader, n int) []io.Reader {
	seed := make([]byte, 32)
	if _, err := io.ReadFull(rng, seed); err != nil {
		panic(err)
	}
	root := drbg.New(seed)
	rs := make([]io.Reader, n)
	for i := range rs {
		var label [4]byte
		binary.BigEndian.PutUint32(label[:], uint32(i))
		rs[i] = root.Fork(label[:])
	}
	return rs
}

// forEach runs fn for 0..n-1 on an errgroup and returns the first error.
func forEach(n int, fn func(i int) error) error {
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

// bitAt returns bit k of buf counting LSB-first within each byte.
func bitAt(buf []byte, k int) byte {
	return (buf[k/8] >> (k % 8)) & 1
}

// ProveFSScalarMul proves s = λ·p with pr.SecParam repetitions.
func ProveFSScalarMul(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, s *curve.Point, lambda *big.Int, p *curve.Point) (*FSScalarMulProof, error) {
	if err := checkScalarMulStatement(pr, s, lambda, p); err != nil {
		return nil, err
	}
	transcript.DomainSep(t, transcript.FSScalarMulProof)

	n := pr.SecParam
	rngs := repetitionReaders(rng, n)
	inters := make([]*ScalarMulIntermediate, n)
	err := forEach(n, func(i int) error {
		si, err := NewScalarMulIntermediate(transcript.New("repetition"), rngs[i], pr, s, lambda, p)
		inters[i] = si
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, si := range inters {
		si.addToTranscript(t)
	}

	buf := transcript.ChallengeBytes(t, "c", (n+7)/8)
	proofs := make([]*ScalarMulProof, n)
	err = forEach(n, func(i int) error {
		proof, err := inters[i].Prove(pr, s, lambda, p, pr.SingleBitChallenge(bitAt(buf, i)))
		proofs[i] = proof
		return err
	})
	if err != nil {
		return nil, err
	}
	return &FSScalarMulProof{Proofs: proofs}, nil
}

// Verify checks every repetition against its challenge bit. A proof with
// the wrong number of repetitions is rejected with ErrProtocolMisuse.
func (fp *FSScalarMulProof) Verify(t *merlin.Transcript, pr *curve.Pair, p *curve.Point) (bool, error) {
	n := pr.SecParam
	if len(fp.Proofs) != n {
		return false, errors.Wrapf(boomerang.ErrProtocolMisuse, "%d repetitions, want %d", len(fp.Proofs), n)
	}
	transcript.DomainSep(t, transcript.FSScalarMulProof)
	for _, proof := range fp.Proofs {
		proof.AddToTranscript(t)
	}

	buf := transcript.ChallengeBytes(t, "c", (n+7)/8)
	err := forEach(n, func(i int) error {
		if !fp.Proofs[i].VerifyWithChallenge(pr, p, pr.SingleBitChallenge(bitAt(buf, i))) {
			return errors.Wrapf(boomerang.ErrVerificationFailed, "repetition %d", i)
		}
		return nil
	})
	return err == nil, nil
}

func (fp *FSScalarMulProof) SerializedSize() int {
	if len(fp.Proofs) == 0 {
		return 4
	}
	return 4 + len(fp.Proofs)*fp.Proofs[0].SerializedSize()
}

func (fp *FSScalarMulProof) Bytes(pr *curve.Pair) []byte {
	e := curve.NewEncoder(fp.SerializedSize())
	e.WriteUint32(uint32(len(fp.Proofs)))
	for _, p := range fp.Proofs {
		p.encode(e, pr)
	}
	return e.Bytes()
}

func DecodeFSScalarMulProof(pr *curve.Pair, buf []byte) (*FSScalarMulProof, error) {
	d := curve.NewDecoder(buf)
	n := int(d.ReadUint32())
	if n != pr.SecParam {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%d repetitions, want %d", n, pr.SecParam)
	}
	fp := &FSScalarMulProof{Proofs: make([]*ScalarMulProof, n)}
	for i := range fp.Proofs {
		fp.Proofs[i] = decodeScalarMulProof(d, pr)
	}
	return fp, d.Finish()
}

// ProveFSZKAttestScalarMul proves s = λ·p with pr.SecParam ZKAttest
// repetitions. Repetition i reads bits 2i and 2i+1 of the challenge.
func ProveFSZKAttestScalarMul(t *merlin.Transcript, rng io.Reader, pr *curve.Pair, s *curve.Point, lambda *big.Int, p *curve.Point) (*FSZKAttestScalarMulProof, error) {
	if err := checkScalarMulStatement(pr, s, lambda, p); err != nil {
		return nil, err
	}
	transcript.DomainSep(t, transcript.FSZKAttestScalarMul)

	n := pr.SecParam
	rngs := repetitionReaders(rng, n)
	inters := make([]*ZKAttestScalarMulIntermediate, n)
	err := forEach(n, func(i int) error {
		zi, err := NewZKAttestScalarMulIntermediate(transcript.New("repetition"), rngs[i], pr, s, lambda, p)
		inters[i] = zi
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, zi := range inters {
		zi.addToTranscript(t)
	}

	buf := transcript.ChallengeBytes(t, "c", (n+3)/4)
	proofs := make([]*ZKAttestScalarMulProof, n)
	err = forEach(n, func(i int) error {
		c0, c1 := pr.SingleBitChallenge(bitAt(buf, 2*i)), pr.SingleBitChallenge(bitAt(buf, 2*i+1))
		proof, err := inters[i].Prove(pr, s, lambda, p, c0, c1)
		proofs[i] = proof
		return err
	})
	if err != nil {
		return nil, err
	}
	return &FSZKAttestScalarMulProof{Proofs: proofs}, nil
}

func (fp *FSZKAttestScalarMulProof) Verify(t *merlin.Transcript, pr *curve.Pair, p *curve.Point) (bool, error) {
	n := pr.SecParam
	if len(fp.Proofs) != n {
		return false, errors.Wrapf(boomerang.ErrProtocolMisuse, "%d repetitions, want %d", len(fp.Proofs), n)
	}
	transcript.DomainSep(t, transcript.FSZKAttestScalarMul)
	for _, proof := range fp.Proofs {
		if !proof.wellFormed() {
			return false, nil
		}
		proof.AddToTranscript(t)
	}

	buf := transcript.ChallengeBytes(t, "c", (n+3)/4)
	err := forEach(n, func(i int) error {
		c0, c1 := pr.SingleBitChallenge(bitAt(buf, 2*i)), pr.SingleBitChallenge(bitAt(buf, 2*i+1))
		if !fp.Proofs[i].VerifyWithChallenge(pr, p, c0, c1) {
			return errors.Wrapf(boomerang.ErrVerificationFailed, "repetition %d", i)
		}
		return nil
	})
	return err == nil, nil
}

func (fp *FSZKAttestScalarMulProof) SerializedSize() int {
	n := 4
	for _, p := range fp.Proofs {
		n += p.SerializedSize()
	}
	return n
}

func (fp *FSZKAttestScalarMulProof) Bytes(pr *curve.Pair) []byte {
	e := curve.NewEncoder(fp.SerializedSize())
	e.WriteUint32(uint32(len(fp.Proofs)))
	for _, p := range fp.Proofs {
		p.encode(e, pr)
	}
	return e.Bytes()
}

func DecodeFSZKAttestScalarMulProof(pr *curve.Pair, buf []byte) (*FSZKAttestScalarMulProof, error) {
	d := curve.NewDecoder(buf)
	n := int(d.ReadUint32())
	if n != pr.SecParam {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%d repetitions, want %d", n, pr.SecParam)
	}
	fp := &FSZKAttestScalarMulProof{Proofs: make([]*ZKAttestScalarMulProof, n)}
	for i := range fp.Proofs {
		fp.Proofs[i] = decodeZKAttestScalarMulProof(d, pr)
	}
	return fp, d.Finish()
}
