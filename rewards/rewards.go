// Package rewards proves that a hidden reward value is in range and that a
// hidden usage vector has a given inner product with a public incentive
// catalog.
package rewards

import (
	"encoding/binary"
	"io"
	"math/big"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/bulletproofs"
	"github.com/MixinNetwork/boomerang-go/logging"
	"github.com/MixinNetwork/boomerang-go/transcript"
)

const (
	// DefaultBits is the range used for reward values.
	DefaultBits = 16

	rangeCapacity   = 64
	rangeLabel      = "rangeproof"
	linearLabel     = "linear proof"
	bindingLabel    = "rewards binding"
	lengthPrefixLen = 4
)

var logger = logging.MustGetLogger("rewards")

// Generators are shared by prover and verifier. The linear proof uses the
// first party's G generators with F = B and B = B̃ of the Pedersen bases.
type Generators struct {
	Group       bulletproofs.Group
	Pedersen    *bulletproofs.PedersenGens
	Range       *bulletproofs.BulletproofGens
	Linear      *bulletproofs.BulletproofGens
	CatalogSize int
}

// Setup builds generators for catalogs of up to catalogSize entries. The
// linear generators are rounded up to a power of two.
func Setup(g bulletproofs.Group, catalogSize int) (*Generators, error) {
	if catalogSize <= 0 || catalogSize > 1<<16 {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "catalog size %d", catalogSize)
	}
	capacity := 1
	for capacity < catalogSize {
		capacity <<= 1
	}
	return &Generators{
		Group:       g,
		Pedersen:    bulletproofs.NewPedersenGens(g),
		Range:       bulletproofs.NewBulletproofGens(g, rangeCapacity, 1),
		Linear:      bulletproofs.NewBulletproofGens(g, capacity, 1),
		CatalogSize: catalogSize,
	}, nil
}

func (gens *Generators) linearBases() ([]bulletproofs.Point, bulletproofs.Point, bulletproofs.Point) {
	return gens.Linear.Share(0).G(gens.Linear.GensCapacity), gens.Pedersen.B, gens.Pedersen.BBlinding
}

// pad extends v with zeros to the linear generator capacity.
func (gens *Generators) pad(v []*big.Int) ([]*big.Int, error) {
	if len(v) != gens.CatalogSize {
		return nil, errors.Wrapf(boomerang.ErrProtocolMisuse, "vector of %d for catalog of %d", len(v), gens.CatalogSize)
	}
	out := make([]*big.Int, gens.Linear.GensCapacity)
	copy(out, v)
	for i := len(v); i < len(out); i++ {
		out[i] = big.NewInt(0)
	}
	return out, nil
}

// Proof is a rewards proof with its commitments. V commits to the reward
// value; C = <private, G> + r·B̃ + <private, public>·B. Binding shows that
// C − V has no B component, so the range-proved value is the inner product.
type Proof struct {
	Range   *bulletproofs.RangeProof
	V       bulletproofs.Point
	Linear  *bulletproofs.LinearProof
	C       bulletproofs.Point
	Binding *bulletproofs.VectorOpeningProof
}

// Generate proves value in DefaultBits bits together with the linear
// relation between private and public. value must equal
// <private, public>.
func Generate(gens *Generators, value uint64, private, public []*big.Int, rng io.Reader) (*Proof, error) {
	return GenerateBits(gens, value, DefaultBits, private, public, rng)
}

// GenerateBits is Generate for a bits-wide range. The verifier must use
// VerifyBits with the same width.
func GenerateBits(gens *Generators, value uint64, bits int, private, public []*big.Int, rng io.Reader) (*Proof, error) {
	a, err := gens.pad(private)
	if err != nil {
		return nil, err
	}
	b, err := gens.pad(public)
	if err != nil {
		return nil, err
	}
	g := gens.Group
	order := g.Order()

	ip := big.NewInt(0)
	for i := range a {
		ip.Add(ip, new(big.Int).Mul(a[i], b[i]))
	}
	ip.Mod(ip, order)
	if ip.Cmp(new(big.Int).SetUint64(value)) != 0 {
		return nil, errors.Wrap(boomerang.ErrProtocolMisuse, "reward value is not the inner product of private and public")
	}

	blinding := randomScalar(order, rng)
	rp, v, err := bulletproofs.ProveSingle(gens.Range, gens.Pedersen, transcript.New(rangeLabel), value, blinding, bits, rng)
	if err != nil {
		return nil, err
	}

	gs, f, bb := gens.linearBases()
	r := randomScalar(order, rng)
	ks := append(append([]*big.Int(nil), a...), r, ip)
	ps := append(append([]bulletproofs.Point(nil), gs...), bb, f)
	c := g.MultiScalarMult(ks, ps)

	lp, err := bulletproofs.CreateLinearProof(transcript.New(linearLabel), g, rng, c, r, a, b, gs, f, bb)
	if err != nil {
		return nil, err
	}
	s := new(big.Int).Sub(r, blinding)
	bp, err := bulletproofs.CreateVectorOpeningProof(transcript.New(bindingLabel), g, rng, c.Sub(v), s.Mod(s, order), a, gs, bb)
	if err != nil {
		return nil, err
	}
	logger.Debugw("rewards proof generated", "group", g.Name(), "bits", bits, "catalog", gens.CatalogSize)
	return &Proof{Range: rp, V: v, Linear: lp, C: c, Binding: bp}, nil
}

func randomScalar(order *big.Int, rng io.Reader) *big.Int {
	var buf [64]byte
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		panic(err)
	}
	return new(big.Int).Mod(new(big.Int).SetBytes(buf[:]), order)
}

// Verify checks the proofs against the public catalog with a DefaultBits
// range.
func (p *Proof) Verify(gens *Generators, public []*big.Int) bool {
	return p.VerifyBits(gens, DefaultBits, public)
}

// VerifyBits checks the proofs with a bits-wide range. bits is chosen by
// the verifier, never read from the proof.
func (p *Proof) VerifyBits(gens *Generators, bits int, public []*big.Int) bool {
	b, err := gens.pad(public)
	if err != nil {
		logger.Warnw("rewards proof rejected", "error", err)
		return false
	}
	if p.Range == nil || p.Linear == nil || p.Binding == nil {
		return false
	}
	if !p.Range.VerifySingle(gens.Range, gens.Pedersen, transcript.New(rangeLabel), p.V, bits) {
		return false
	}
	gs, f, bb := gens.linearBases()
	if !p.Linear.Verify(transcript.New(linearLabel), gens.Group, p.C, gs, f, bb, b) {
		return false
	}
	return p.Binding.Verify(transcript.New(bindingLabel), gens.Group, p.C.Sub(p.V), gs, bb)
}

// VerifyMultiple accepts iff every proof verifies against public.
func VerifyMultiple(gens *Generators, proofs []*Proof, public []*big.Int) bool {
	for i, p := range proofs {
		if !p.Verify(gens, public) {
			logger.Debugw("rewards proof rejected", "index", i)
			return false
		}
	}
	return true
}

// Bytes writes V, C and the three proofs, each proof behind a 4-byte
// big-endian length.
func (p *Proof) Bytes(g bulletproofs.Group) []byte {
	rp, lp, bp := p.Range.Bytes(g), p.Linear.Bytes(g), p.Binding.Bytes(g)
	buf := make([]byte, 0, 2*g.PointSize()+3*lengthPrefixLen+len(rp)+len(lp)+len(bp))
	buf = append(buf, p.V.Bytes()...)
	buf = append(buf, p.C.Bytes()...)
	for _, chunk := range [][]byte{rp, lp, bp} {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(chunk)))
		buf = append(buf, chunk...)
	}
	return buf
}

func DecodeProof(g bulletproofs.Group, buf []byte) (*Proof, error) {
	ps := g.PointSize()
	if len(buf) < 2*ps+3*lengthPrefixLen {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "rewards proof length %d", len(buf))
	}
	p := &Proof{}
	var err error
	if p.V, err = g.DecodePoint(buf[:ps]); err != nil {
		return nil, err
	}
	if p.C, err = g.DecodePoint(buf[ps : 2*ps]); err != nil {
		return nil, err
	}
	rest := buf[2*ps:]
	chunks := make([][]byte, 3)
	for i := range chunks {
		if chunks[i], rest, err = readChunk(rest); err != nil {
			return nil, err
		}
	}
	if len(rest) != 0 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%d trailing bytes", len(rest))
	}
	if p.Range, err = bulletproofs.DecodeRangeProof(g, chunks[0]); err != nil {
		return nil, err
	}
	if p.Linear, err = bulletproofs.DecodeLinearProof(g, chunks[1]); err != nil {
		return nil, err
	}
	if p.Binding, err = bulletproofs.DecodeVectorOpeningProof(g, chunks[2]); err != nil {
		return nil, err
	}
	return p, nil
}

func readChunk(buf []byte) ([]byte, []byte, error) {
	if len(buf) < lengthPrefixLen {
		return nil, nil, errors.Wrap(boomerang.ErrMalformedInput, "missing length prefix")
	}
	n := int(binary.BigEndian.Uint32(buf))
	buf = buf[lengthPrefixLen:]
	if n > len(buf) {
		return nil, nil, errors.Wrapf(boomerang.ErrMalformedInput, "chunk of %d exceeds %d", n, len(buf))
	}
	return buf[:n], buf[n:], nil
}
