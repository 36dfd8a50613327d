package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/issuance"
	"github.com/MixinNetwork/boomerang-go/service"
)

func randReader() io.Reader { return rand.Reader }

func decodePublicKey(pr *curve.Pair, s string) (*acl.PublicKey, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "decode issuer public key")
	}
	d := curve.NewDecoder(buf)
	pk := acl.DecodePublicKeyFrom(d, pr.T)
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return pk, nil
}

func issueCmd() *cobra.Command {
	var (
		addr    string
		issuer  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Obtain a token from a running issuer",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = conf.Listen
			}
			pr := conf.CurvePair()
			pk, err := decodePublicKey(pr, issuer)
			if err != nil {
				return err
			}

			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return errors.Wrapf(err, "dial %s", addr)
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			key := issuance.GenerateUKeyPair(pr.T, randReader())
			state, err := service.Issue(ctx, service.NewIssuanceClient(conn), pr, key, pk, randReader())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token %x\n", pr.T.ScalarBytes(state.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "issuer address, defaults to Listen")
	cmd.Flags().StringVar(&issuer, "issuer", "", "hex encoded issuer public key")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "issuance deadline")
	cmd.MarkFlagRequired("issuer")
	return cmd
}
