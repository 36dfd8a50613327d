// Package transcript wraps merlin transcripts with the labelled absorb and
// squeeze helpers every proof in this module uses.
package transcript

import (
	"encoding/binary"
	"math/big"

	"github.com/gtank/merlin"

	"github.com/MixinNetwork/boomerang-go/curve"
)

// ChallengeSize is the number of bytes squeezed for a scalar challenge.
const ChallengeSize = 64

// Domain separators of the Σ-protocols.
const (
	EqualityProof       = "equality-proof"
	OpeningProof        = "open-proof"
	MulProof            = "mul-proof"
	PointAddProof       = "ec-point-addition-proof"
	ZKAttestPointAdd    = "zk-attest-ec-point-addition-proof"
	ScalarMulProof      = "ec-scalar-mul"
	ZKAttestScalarMul   = "zk-attest-scalar-mul"
	FSScalarMulProof    = "fs-ec-scalar-mul"
	FSZKAttestScalarMul = "fs-zk-attest-scalar-mul"
	IssuanceProof       = "issuance-proof"
	ACLChallenge        = "acl-challenge"
	ACLChallengeZK      = "acl-challenge-zk"
	VectorOpeningProof  = "vector-opening-proof"
	ZeroOneProof        = "gk-zero-one-proof"
	AddMulProof         = "add-mul-proof"
)

func New(label string) *merlin.Transcript {
	return merlin.NewTranscript(label)
}

func appendBytes(field, data []byte, t *merlin.Transcript) {
	t.AppendMessage(field, data)
}

// DomainSep appends ("dom-sep", tag).
func DomainSep(t *merlin.Transcript, tag string) {
	appendBytes([]byte("dom-sep"), []byte(tag), t)
}

func AppendMessage(t *merlin.Transcript, label string, msg []byte) {
	appendBytes([]byte(label), msg, t)
}

// AppendPoint absorbs the compressed encoding of p.
func AppendPoint(t *merlin.Transcript, label string, p *curve.Point) {
	appendBytes([]byte(label), p.Bytes(), t)
}

func AppendScalar(t *merlin.Transcript, label string, c *curve.Curve, k *big.Int) {
	appendBytes([]byte(label), c.ScalarBytes(k), t)
}

// AppendUint64 absorbs v as 8 little-endian bytes.
func AppendUint64(t *merlin.Transcript, label string, v uint64) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	appendBytes([]byte(label), buf, t)
}

func ChallengeBytes(t *merlin.Transcript, label string, n int) []byte {
	return t.ExtractBytes([]byte(label), n)
}

// ChallengeScalar squeezes 64 bytes and reduces them little-endian modulo
// the order of c.
func ChallengeScalar(t *merlin.Transcript, label string, c *curve.Curve) *big.Int {
	return c.ScalarFromBytesWide(ChallengeBytes(t, label, ChallengeSize))
}

// RangeProofDomainSep starts an aggregated range proof over m values of n bits.
func RangeProofDomainSep(t *merlin.Transcript, n, m uint64) {
	DomainSep(t, "rangeproof v1")
	AppendUint64(t, "n", n)
	AppendUint64(t, "m", m)
}

// InnerProductDomainSep starts an inner-product argument of length n.
func InnerProductDomainSep(t *merlin.Transcript, n uint64) {
	DomainSep(t, "ipp v1")
	AppendUint64(t, "n", n)
}

// LinearProofDomainSep starts a linear proof of length n.
func LinearProofDomainSep(t *merlin.Transcript, n uint64) {
	DomainSep(t, "linear_proof v1")
	AppendUint64(t, "n", n)
}
