package curve

import (
	"fmt"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// HashToPoint maps data to a point by try-and-increment: the first counter
// byte for which SHA3-256(data ‖ counter) is the x coordinate of a point
// with even y wins. It panics after 256 failures.
func (c *Curve) HashToPoint(data []byte) *Point {
	msg := make([]byte, len(data)+1)
	copy(msg, data)
	buf := make([]byte, c.PointSize())
	buf[0] = 0x02
	for ctr := 0; ctr < 256; ctr++ {
		msg[len(data)] = byte(ctr)
		digest := sha3.Sum256(msg)
		copy(buf[1:], digest[:])
		p, err := c.DecodePoint(buf)
		if err == nil {
			return p
		}
	}
	panic(fmt.Errorf("curve %s: try-and-increment exhausted", c.name))
}

// TagKey returns the public tag key Z shared by every ACL signer on c.
func (c *Curve) TagKey() *Point {
	h := sha3.NewShake256()
	h.Write([]byte("Tag Public Key"))
	h.Write([]byte{'G', 0, 0, 0, 0})
	seed := make([]byte, 64)
	h.Read(seed)
	return c.HashToPoint(seed)
}

// Generators returns k independent generators G_i = HashToPoint("Pedersen-generator-" ‖ i).
func (c *Curve) Generators(k int) []*Point {
	gens := make([]*Point, k)
	for i := range gens {
		gens[i] = c.HashToPoint([]byte("Pedersen-generator-" + strconv.Itoa(i)))
	}
	return gens
}
