package bulletproofs

import (
	"encoding/binary"
	"math/big"

	"golang.org/x/crypto/sha3"
)

// PedersenGens are the value and blinding bases of range-proof commitments.
type PedersenGens struct {
	B         Point
	BBlinding Point
}

func NewPedersenGens(g Group) *PedersenGens {
	return &PedersenGens{B: g.Base(), BBlinding: g.Blinding()}
}

func (pg *PedersenGens) Commit(g Group, value, blinding *big.Int) Point {
	return g.MultiScalarMult([]*big.Int{value, blinding}, []Point{pg.B, pg.BBlinding})
}

// BulletproofGens holds GensCapacity G and H generators for each of
// PartyCapacity parties.
type BulletproofGens struct {
	Group         Group
	GensCapacity  int
	PartyCapacity int
	GVec          [][]Point
	HVec          [][]Point
}

func NewBulletproofGens(g Group, gensCapacity, partyCapacity int) *BulletproofGens {
	b := &BulletproofGens{
		Group:         g,
		PartyCapacity: partyCapacity,
		GVec:          make([][]Point, partyCapacity),
		HVec:          make([][]Point, partyCapacity),
	}
	b.IncreaseCapacity(gensCapacity)
	return b
}

func partyLabel(prefix byte, i int) []byte {
	label := make([]byte, 5)
	label[0] = prefix
	binary.LittleEndian.PutUint32(label[1:], uint32(i))
	return label
}

// IncreaseCapacity extends every party's chains; existing generators are kept.
func (b *BulletproofGens) IncreaseCapacity(capacity int) {
	if b.GensCapacity >= capacity {
		return
	}
	for i := 0; i < b.PartyCapacity; i++ {
		chainG := NewGeneratorsChain(b.Group, partyLabel('G', i))
		chainG.FastForward(b.GensCapacity)
		chainH := NewGeneratorsChain(b.Group, partyLabel('H', i))
		chainH.FastForward(b.GensCapacity)
		for j := b.GensCapacity; j < capacity; j++ {
			b.GVec[i] = append(b.GVec[i], chainG.Next())
			b.HVec[i] = append(b.HVec[i], chainH.Next())
		}
	}
	b.GensCapacity = capacity
}

// G returns the first n G generators of each of the first m parties, party
// by party.
func (b *BulletproofGens) G(n, m int) []Point {
	return aggregated(b.GVec, n, m)
}

func (b *BulletproofGens) H(n, m int) []Point {
	return aggregated(b.HVec, n, m)
}

func aggregated(vec [][]Point, n, m int) []Point {
	out := make([]Point, 0, n*m)
	for j := 0; j < m; j++ {
		out = append(out, vec[j][:n]...)
	}
	return out
}

// BulletproofGensShare is the slice of generators owned by party j.
type BulletproofGensShare struct {
	Gens  *BulletproofGens
	Share int
}

func (b *BulletproofGens) Share(j int) *BulletproofGensShare {
	return &BulletproofGensShare{Gens: b, Share: j}
}

func (s *BulletproofGensShare) G(n int) []Point { return s.Gens.GVec[s.Share][:n] }
func (s *BulletproofGensShare) H(n int) []Point { return s.Gens.HVec[s.Share][:n] }

// GeneratorsChain is a SHAKE256 stream of points.
type GeneratorsChain struct {
	sha3.ShakeHash
	group Group
}

func NewGeneratorsChain(g Group, label []byte) *GeneratorsChain {
	h := sha3.NewShake256()
	h.Write([]byte("GeneratorsChain"))
	h.Write(label)
	return &GeneratorsChain{ShakeHash: h, group: g}
}

func (c *GeneratorsChain) FastForward(n int) {
	var data [64]byte
	for i := 0; i < n; i++ {
		c.Read(data[:])
	}
}

func (c *GeneratorsChain) Next() Point {
	var data [64]byte
	c.Read(data[:])
	return c.group.FromUniformBytes(data[:])
}
