package main

import (
	"context"
	"encoding/hex"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/grpclog"

	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/config"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/logging"
	"github.com/MixinNetwork/boomerang-go/service"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the issuer",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), conf)
		},
	}
}

// loadIssuerKey reads a hex secret from conf.KeyFile, or generates a fresh
// key when none is configured.
func loadIssuerKey(conf *config.Config, pr *curve.Pair) (*acl.KeyPair, error) {
	if conf.KeyFile == "" {
		logger.Warn("KeyFile unset, using an ephemeral issuer key")
		return acl.GenerateKeyPair(pr.T, randReader()), nil
	}
	data, err := os.ReadFile(conf.KeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "read issuer key")
	}
	secret, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, errors.Wrap(err, "decode issuer key")
	}
	return acl.DecodeKeyPair(pr.T, secret)
}

func encodePublicKey(pk *acl.PublicKey) string {
	c := pk.VerifyingKey.Curve()
	e := curve.NewEncoder(2 * c.PointSize())
	pk.EncodeTo(e)
	return hex.EncodeToString(e.Bytes())
}

func serve(ctx context.Context, conf *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	grpclog.SetLoggerV2(logging.GRPCLogger("grpc"))
	pr := conf.CurvePair()
	kp, err := loadIssuerKey(conf, pr)
	if err != nil {
		return err
	}
	store, err := service.OpenSerialStore(conf.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := service.NewServer(service.Options{
		Pair:       pr,
		Key:        kp,
		Store:      store,
		SessionTTL: conf.SessionTTL,
	})
	go srv.RunSweeper(ctx, conf.SweepInterval)

	if conf.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(conf.MetricsListen, mux); err != nil {
				logger.Errorf("metrics listener: %s", err)
			}
		}()
	}

	lis, err := net.Listen("tcp", conf.Listen)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", conf.Listen)
	}
	gs := grpc.NewServer()
	service.RegisterIssuanceServer(gs, srv)
	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()

	logger.Infow("issuer listening", "address", lis.Addr().String(), "pair", pr.Name, "public_key", encodePublicKey(kp.Public()))
	return gs.Serve(lis)
}
