package service

import (
	"context"
	"io"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/issuance"
)

// Issue runs the user side of one issuance against cli. The resulting
// signature is checked against pk.
func Issue(ctx context.Context, cli IssuanceClient, pr *curve.Pair, key *issuance.UKeyPair, pk *acl.PublicKey, rng io.Reader) (*issuance.State, error) {
	c := pr.T
	ic, err := issuance.GenerateM1(pr, key, rng)
	if err != nil {
		return nil, err
	}
	reply, err := cli.Begin(ctx, wrapperspb.Bytes(ic.M1.Bytes()))
	if err != nil {
		return nil, err
	}
	id, body, err := openEnvelope(reply.GetValue())
	if err != nil {
		return nil, err
	}
	m2, err := issuance.DecodeM2(c, body)
	if err != nil {
		return nil, err
	}
	m3, err := ic.GenerateM3(rng, m2)
	if err != nil {
		return nil, err
	}
	reply, err = cli.Finish(ctx, wrapperspb.Bytes(sealEnvelope(id, m3.Bytes(c))))
	if err != nil {
		return nil, err
	}
	m4, err := issuance.DecodeM4(c, reply.GetValue())
	if err != nil {
		return nil, err
	}
	return ic.PopulateState(m4, pk)
}
