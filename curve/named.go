package curve

import (
	"crypto/elliptic"
	"math/big"
	"sync"
)

func mustInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		panic("curve: bad constant " + s)
	}
	return v
}

var (
	t256Once, p256Once, secq256k1Once, secp256k1Once sync.Once
	t256, p256, secq256k1, secp256k1                 *Curve

	t384Once, p384Once, t256k1Once sync.Once
	t384, p384, t256k1             *Curve
)

// T256 is the curve whose group order equals the P-256 base field prime, so
// that P-256 coordinates are T256 scalars.
func T256() *Curve {
	t256Once.Do(func() {
		q := mustInt("115792089210356248762697446949407573530594504085698471288169790229257723883799")
		t256 = New(&Params{
			Name: "T-256",
			P:    q,
			A:    new(big.Int).Sub(q, big.NewInt(3)),
			B:    mustInt("81531206846337786915455327229510804132577517753388365729879493166393691077718"),
			N:    elliptic.P256().Params().P,
			Gx:   big.NewInt(3),
			Gy:   mustInt("40902200210088653215032584946694356296222563095503428277299570638400093548589"),
			Hx:   big.NewInt(5),
			Hy:   mustInt("28281484859698624956664858566852274012236038028101624500031073655422126514829"),
		})
	})
	return t256
}

// P256 is NIST P-256 with a second generator of x coordinate 5.
func P256() *Curve {
	p256Once.Do(func() {
		params := elliptic.P256().Params()
		p256 = New(&Params{
			Name: "P-256",
			P:    params.P,
			A:    big.NewInt(-3),
			B:    params.B,
			N:    params.N,
			Gx:   params.Gx,
			Gy:   params.Gy,
			Hx:   big.NewInt(5),
			Hy:   mustInt("31468013646237722594854082025316614106172411895747863909393730389177298123724"),
		})
	})
	return p256
}

// Secq256k1 swaps the field and order of secp256k1.
func Secq256k1() *Curve {
	secq256k1Once.Do(func() {
		secq256k1 = New(&Params{
			Name: "secq256k1",
			P:    mustInt("0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"),
			A:    big.NewInt(0),
			B:    big.NewInt(7),
			N:    mustInt("0xfffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f"),
			Gx:   mustInt("53718550993811904772965658690407829053653678808745171666022356150019200052646"),
			Gy:   mustInt("28941648020349172432234515805717979317553499307621291159490218670604692907903"),
			Hx:   mustInt("66074285972301200297129825078317149928956243591312218514112646334267511651104"),
			Hy:   mustInt("18451814157324471123246799073117578780512506837968746855038596379919570627435"),
		})
	})
	return secq256k1
}

// Secp256k1 is the SEC 2 Koblitz curve. Its second generator is derived by
// try-and-increment.
func Secp256k1() *Curve {
	secp256k1Once.Do(func() {
		secp256k1 = New(&Params{
			Name:   "secp256k1",
			P:      mustInt("0xfffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f"),
			A:      big.NewInt(0),
			B:      big.NewInt(7),
			N:      mustInt("0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141"),
			Gx:     mustInt("0x79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"),
			Gy:     mustInt("0x483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8"),
			HLabel: "secp256k1-generator-2",
		})
	})
	return secp256k1
}

// T384 is the curve whose group order equals the P-384 base field prime.
func T384() *Curve {
	t384Once.Do(func() {
		t384 = New(&Params{
			Name: "T-384",
			P:    mustInt("39402006196394479212279040100143613805079739270465446667940039326625812510850684806287457257749692633059273959086021"),
			A:    mustInt("20026862879313379863654166607105301622642181700373777070134388010349273891892149760539610171757683236290527048057018"),
			B:    mustInt("23911602450661234612404882548336064535929415695327240026670179346429452149970125567156571346957298429887433518292555"),
			N:    elliptic.P384().Params().P,
			Gx:   mustInt("18624522857557105898096886988538082729570911703609840597859472552101056293848159295245991160598223034723589185598549"),
			Gy:   mustInt("16812635070577401701780555151784939373443796894181112771346367209071849423738982329774175396215506669421943316852710"),
			Hx:   big.NewInt(5),
			Hy:   mustInt("6363885786003242131136944941369369468464707802299146445548164183900284786157464900151666199152091187308687891798230"),
		})
	})
	return t384
}

// P384 is NIST P-384 with a fixed second generator.
func P384() *Curve {
	p384Once.Do(func() {
		params := elliptic.P384().Params()
		p384 = New(&Params{
			Name: "P-384",
			P:    params.P,
			A:    big.NewInt(-3),
			B:    params.B,
			N:    params.N,
			Gx:   params.Gx,
			Gy:   params.Gy,
			Hx:   mustInt("35844451280757088535875123965116225310073208726034463360736462178210365192733738092353369333892565847293721646292008"),
			Hy:   mustInt("12852303813876583228171852252822018299502069287699403243661957712124279761251434632610206218878102281645617942246021"),
		})
	})
	return p384
}

// T256k1 is the curve whose group order equals the secp256k1 base field
// prime. G is the point with x = 3 and even y; H is derived.
func T256k1() *Curve {
	t256k1Once.Do(func() {
		t256k1 = New(&Params{
			Name:   "T-256k1",
			P:      mustInt("115792089237316195423570985008687907853634386693684621307141857813043191627553"),
			A:      mustInt("109944947385183287114744912266911522476262726606489319303438596785742669821412"),
			B:      mustInt("103809634340668564235099596520993680094951757055289709302696051708320017156366"),
			N:      mustInt("0xfffffffffffffffffffffffffffffffffffffffffffffffffffffffefffffc2f"),
			Gx:     big.NewInt(3),
			Gy:     mustInt("108488123923990839179583499952190112380739537925326093869285402713136172099506"),
			HLabel: "t256k1-generator-2",
		})
	})
	return t256k1
}
