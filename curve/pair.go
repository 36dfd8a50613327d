package curve

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/pkg/errors"
)

// DefaultSecParam is the number of Fiat-Shamir repetitions for 128-bit
// soundness of the single-bit scalar multiplication proofs.
const DefaultSecParam = 128

// Pair couples a T curve with an O curve whose base field is T's scalar
// field. Commitments to O coordinates live on T.
type Pair struct {
	Name     string
	T        *Curve
	O        *Curve
	SecParam int
}

// NewPair panics unless T's order equals O's base field.
func NewPair(name string, t, o *Curve) *Pair {
	if t.Order().Cmp(o.Field()) != 0 {
		panic(fmt.Errorf("curve pair %s: order of %s is not the field of %s", name, t.Name(), o.Name()))
	}
	return &Pair{Name: name, T: t, O: o, SecParam: DefaultSecParam}
}

var (
	t256PairOnce, secqPairOnce, t384PairOnce, t256k1PairOnce, tsecpPairOnce sync.Once
	t256Pair, secqPair, t384Pair, t256k1Pair, tsecpPair                     *Pair
)

// T256Pair is T-256 over P-256.
func T256Pair() *Pair {
	t256PairOnce.Do(func() {
		t256Pair = NewPair("t256", T256(), P256())
	})
	return t256Pair
}

// Secq256k1Pair is secq256k1 over secp256k1.
func Secq256k1Pair() *Pair {
	secqPairOnce.Do(func() {
		secqPair = NewPair("secq256k1", Secq256k1(), Secp256k1())
	})
	return secqPair
}

// T384Pair is T-384 over P-384.
func T384Pair() *Pair {
	t384PairOnce.Do(func() {
		t384Pair = NewPair("t384", T384(), P384())
	})
	return t384Pair
}

// T256k1Pair is T-256k1 over secp256k1.
func T256k1Pair() *Pair {
	t256k1PairOnce.Do(func() {
		t256k1Pair = NewPair("t256k1", T256k1(), Secp256k1())
	})
	return t256k1Pair
}

// TSecp256k1Pair is secp256k1 over secq256k1, the reverse of Secq256k1Pair.
func TSecp256k1Pair() *Pair {
	tsecpPairOnce.Do(func() {
		tsecpPair = NewPair("tsecp256k1", Secp256k1(), Secq256k1())
	})
	return tsecpPair
}

// PairByName resolves the names accepted in configuration files.
func PairByName(name string) (*Pair, error) {
	switch name {
	case "t256", "T-256", "":
		return T256Pair(), nil
	case "secq256k1":
		return Secq256k1Pair(), nil
	case "t384", "T-384":
		return T384Pair(), nil
	case "t256k1", "T-256k1":
		return T256k1Pair(), nil
	case "tsecp256k1":
		return TSecp256k1Pair(), nil
	}
	return nil, errors.Errorf("unknown curve pair %q", name)
}

// FromOBToSF lifts an O base field element into T's scalar field. The two
// fields coincide, so this is a reduction.
func (pr *Pair) FromOBToSF(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, pr.T.Order())
}

// FromOSToSF maps an O scalar into T's scalar field through its integer value.
func (pr *Pair) FromOSToSF(k *big.Int) *big.Int {
	return new(big.Int).Mod(k, pr.T.Order())
}

// FromOC is FromOSToSF under the name used by the commitment code.
func (pr *Pair) FromOC(k *big.Int) *big.Int {
	return pr.FromOSToSF(k)
}

// FromBFToSF maps a T base field element into T's scalar field.
func (pr *Pair) FromBFToSF(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, pr.T.Order())
}

// FromSFToOS maps a T scalar into O's scalar field.
func (pr *Pair) FromSFToOS(k *big.Int) *big.Int {
	return new(big.Int).Mod(k, pr.O.Order())
}

// SingleBitChallenge maps a challenge bit to a T scalar: 0 is -1 and 1 is +1.
func (pr *Pair) SingleBitChallenge(bit byte) *big.Int {
	if bit&1 == 1 {
		return pr.CP1()
	}
	return pr.CM1()
}

// CP1 is the challenge +1.
func (pr *Pair) CP1() *big.Int { return big.NewInt(1) }

// CM1 is the challenge -1, that is n-1 in T's scalar field.
func (pr *Pair) CM1() *big.Int { return new(big.Int).Sub(pr.T.Order(), big.NewInt(1)) }

// IsCP1 and IsCM1 classify single-bit challenges.
func (pr *Pair) IsCP1(c *big.Int) bool { return c.Cmp(big.NewInt(1)) == 0 }

func (pr *Pair) IsCM1(c *big.Int) bool { return c.Cmp(pr.CM1()) == 0 }
