package main

import (
	"fmt"
	"io"
	"math/big"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/bulletproofs"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/issuance"
	"github.com/MixinNetwork/boomerang-go/rewards"
)

func selftestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run a local issuance and a rewards proof",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			pr := conf.CurvePair()
			if err := selfIssue(pr, randReader()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "issuance on %s: ok\n", pr.Name)
			if err := selfRewards(randReader()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "rewards proof on ristretto255: ok")
			return nil
		},
	}
}

func selfIssue(pr *curve.Pair, rng io.Reader) error {
	kp := acl.GenerateKeyPair(pr.T, rng)
	ic, err := issuance.GenerateM1(pr, issuance.GenerateUKeyPair(pr.T, rng), rng)
	if err != nil {
		return err
	}
	is, err := issuance.GenerateM2(pr, rng, ic.M1, kp)
	if err != nil {
		return err
	}
	m3, err := ic.GenerateM3(rng, is.M2)
	if err != nil {
		return err
	}
	m4, err := is.GenerateM4(m3, kp)
	if err != nil {
		return err
	}
	state, err := ic.PopulateState(m4, kp.Public())
	if err != nil {
		return err
	}
	if !state.Verify(pr.T, kp.Public()) {
		return errors.Wrap(boomerang.ErrVerificationFailed, "issued state")
	}
	return nil
}

func selfRewards(rng io.Reader) error {
	gens, err := rewards.Setup(bulletproofs.Ristretto255(), 4)
	if err != nil {
		return err
	}
	public := []*big.Int{big.NewInt(5), big.NewInt(10), big.NewInt(20), big.NewInt(50)}
	private := []*big.Int{big.NewInt(2), big.NewInt(0), big.NewInt(1), big.NewInt(3)}
	proof, err := rewards.Generate(gens, 180, private, public, rng)
	if err != nil {
		return err
	}
	if !proof.Verify(gens, public) {
		return errors.Wrap(boomerang.ErrVerificationFailed, "rewards proof")
	}
	return nil
}
