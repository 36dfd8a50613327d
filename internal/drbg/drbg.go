// Package drbg provides a deterministic io.Reader for reproducible protocol
// runs. It is not a substitute for crypto/rand in production.
package drbg

import (
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/sha3"
)

// Reader is a ChaCha20 keystream keyed by SHA3-256 of a seed.
type Reader struct {
	cipher *chacha20.Cipher
}

// New returns a reader whose output depends only on seed.
func New(seed []byte) *Reader {
	key := sha3.Sum256(seed)
	nonce := make([]byte, chacha20.NonceSize)
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		panic(err)
	}
	return &Reader{cipher: c}
}

// NewFromUint64 is New over the big-endian bytes of seed.
func NewFromUint64(seed uint64) *Reader {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(seed >> (56 - 8*i))
	}
	return New(buf[:])
}

func (r *Reader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// Fork derives an independent reader labelled by label, consuming 32 bytes
// of r.
func (r *Reader) Fork(label []byte) *Reader {
	seed := make([]byte, 32, 32+len(label))
	r.Read(seed)
	return New(append(seed, label...))
}
