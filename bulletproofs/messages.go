package bulletproofs

import "math/big"

// BitCommitment is a party's first message: its value commitment and the
// A and S shares.
type BitCommitment struct {
	VJ Point
	AJ Point
	SJ Point
}

type BitChallenge struct {
	Y *big.Int
	Z *big.Int
}

type PolyCommitment struct {
	T1j Point
	T2j Point
}

type PolyChallenge struct {
	X *big.Int
}

type ProofShare struct {
	TX         *big.Int
	TXBlinding *big.Int
	EBlinding  *big.Int
	LVec       []*big.Int
	RVec       []*big.Int
}
