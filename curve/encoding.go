package curve

import (
	"math/big"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
)

// Bytes returns the SEC1 compressed encoding. The identity encodes as
// PointSize zero bytes.
func (p *Point) Bytes() []byte {
	c := p.curve
	buf := make([]byte, c.PointSize())
	if p.inf {
		return buf
	}
	buf[0] = 0x02 | byte(p.y.Bit(0))
	p.x.FillBytes(buf[1:])
	return buf
}

// DecodePoint parses a compressed point. The identity, coordinates outside
// the field and x values without a square root are rejected.
func (c *Curve) DecodePoint(buf []byte) (*Point, error) {
	p, err := c.decompress(buf)
	if err != nil {
		return nil, err
	}
	if p.inf {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%s: point at infinity", c.name)
	}
	return p, nil
}

func (c *Curve) decompress(buf []byte) (*Point, error) {
	if len(buf) != c.PointSize() {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%s: point length %d", c.name, len(buf))
	}
	switch buf[0] {
	case 0x00:
		for _, b := range buf[1:] {
			if b != 0 {
				return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%s: bad identity encoding", c.name)
			}
		}
		return c.Identity(), nil
	case 0x02, 0x03:
	default:
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%s: point prefix %#x", c.name, buf[0])
	}

	x := new(big.Int).SetBytes(buf[1:])
	if x.Cmp(c.p) >= 0 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%s: x out of range", c.name)
	}
	y := new(big.Int).ModSqrt(c.rhs(x), c.p)
	if y == nil {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%s: x is not on the curve", c.name)
	}
	if y.Bit(0) != uint(buf[0]&1) {
		y.Sub(c.p, y)
	}
	return &Point{curve: c, x: x, y: y}, nil
}

// ScalarBytes returns the big-endian encoding of k mod n, ScalarSize bytes long.
func (c *Curve) ScalarBytes(k *big.Int) []byte {
	buf := make([]byte, c.ScalarSize())
	c.reduce(k).FillBytes(buf)
	return buf
}

// DecodeScalar parses a big-endian scalar and rejects values ≥ n.
func (c *Curve) DecodeScalar(buf []byte) (*big.Int, error) {
	if len(buf) != c.ScalarSize() {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%s: scalar length %d", c.name, len(buf))
	}
	k := new(big.Int).SetBytes(buf)
	if k.Cmp(c.n) >= 0 {
		return nil, errors.Wrapf(boomerang.ErrMalformedInput, "%s: non-canonical scalar", c.name)
	}
	return k, nil
}

// Encoder appends points and scalars to a byte slice. Values from any curve
// can be mixed; each is written at its own curve's size.
type Encoder struct {
	buf []byte
}

func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

func (e *Encoder) WritePoint(p *Point) *Encoder {
	e.buf = append(e.buf, p.Bytes()...)
	return e
}

func (e *Encoder) WritePoints(ps ...*Point) *Encoder {
	for _, p := range ps {
		e.WritePoint(p)
	}
	return e
}

func (e *Encoder) WriteScalar(c *Curve, k *big.Int) *Encoder {
	e.buf = append(e.buf, c.ScalarBytes(k)...)
	return e
}

func (e *Encoder) WriteScalars(c *Curve, ks ...*big.Int) *Encoder {
	for _, k := range ks {
		e.WriteScalar(c, k)
	}
	return e
}

func (e *Encoder) WriteUint32(v uint32) *Encoder {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	return e
}

func (e *Encoder) WriteByte(b byte) error {
	e.buf = append(e.buf, b)
	return nil
}

func (e *Encoder) WriteBytes(b []byte) *Encoder {
	e.WriteUint32(uint32(len(b)))
	e.buf = append(e.buf, b...)
	return e
}

func (e *Encoder) Bytes() []byte { return e.buf }

// Decoder consumes what an Encoder wrote. The first failure sticks and every
// later read returns zero values; check Err or Finish once at the end.
type Decoder struct {
	buf []byte
	err error
}

func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

func (d *Decoder) take(n int, what string) []byte {
	if d.err != nil {
		return nil
	}
	if len(d.buf) < n {
		d.err = errors.Wrapf(boomerang.ErrMalformedInput, "short buffer reading %s", what)
		return nil
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]
	return b
}

func (d *Decoder) ReadPoint(c *Curve) *Point {
	b := d.take(c.PointSize(), "point")
	if b == nil {
		return nil
	}
	p, err := c.DecodePoint(b)
	if err != nil {
		d.err = err
		return nil
	}
	return p
}

func (d *Decoder) ReadPoints(c *Curve, n int) []*Point {
	ps := make([]*Point, n)
	for i := range ps {
		ps[i] = d.ReadPoint(c)
	}
	return ps
}

func (d *Decoder) ReadScalar(c *Curve) *big.Int {
	b := d.take(c.ScalarSize(), "scalar")
	if b == nil {
		return nil
	}
	k, err := c.DecodeScalar(b)
	if err != nil {
		d.err = err
		return nil
	}
	return k
}

func (d *Decoder) ReadScalars(c *Curve, n int) []*big.Int {
	ks := make([]*big.Int, n)
	for i := range ks {
		ks[i] = d.ReadScalar(c)
	}
	return ks
}

func (d *Decoder) ReadUint32() uint32 {
	b := d.take(4, "length")
	if b == nil {
		return 0
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func (d *Decoder) ReadByte() (byte, error) {
	b := d.take(1, "byte")
	if b == nil {
		return 0, d.err
	}
	return b[0], nil
}

func (d *Decoder) ReadBytes() []byte {
	n := d.ReadUint32()
	if d.err == nil && int(n) > len(d.buf) {
		d.err = errors.Wrapf(boomerang.ErrMalformedInput, "length prefix %d exceeds buffer", n)
		return nil
	}
	b := d.take(int(n), "bytes")
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// Fail records err unless an earlier failure is pending.
func (d *Decoder) Fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

func (d *Decoder) Err() error { return d.err }

func (d *Decoder) Remaining() int { return len(d.buf) }

// Finish returns the sticky error, or an error if input is left over.
func (d *Decoder) Finish() error {
	if d.err != nil {
		return d.err
	}
	if len(d.buf) != 0 {
		return errors.Wrapf(boomerang.ErrMalformedInput, "%d trailing bytes", len(d.buf))
	}
	return nil
}
