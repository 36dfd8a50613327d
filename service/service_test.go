package service

import (
	"context"
	"math/big"
	"net"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/internal/drbg"
	"github.com/MixinNetwork/boomerang-go/issuance"
)

const ttl = time.Minute

type fixture struct {
	pr     *curve.Pair
	srv    *Server
	cli    IssuanceClient
	clock  *fakeclock.FakeClock
	store  *SerialStore
	closer func()
}

func newFixture(t *testing.T) *fixture {
	gt := NewGomegaWithT(t)
	pr := curve.T256Pair()

	store, err := OpenSerialStore("")
	gt.Expect(err).NotTo(HaveOccurred())
	clk := fakeclock.NewFakeClock(time.Unix(1700000000, 0))
	srv := NewServer(Options{
		Pair:       pr,
		Key:        acl.GenerateKeyPair(pr.T, drbg.NewFromUint64(1)),
		Store:      store,
		SessionTTL: ttl,
		Clock:      clk,
		Registerer: prometheus.NewRegistry(),
		Rand:       drbg.NewFromUint64(2),
	})

	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	RegisterIssuanceServer(gs, srv)
	go gs.Serve(lis)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	gt.Expect(err).NotTo(HaveOccurred())

	f := &fixture{pr: pr, srv: srv, cli: NewIssuanceClient(conn), clock: clk, store: store}
	f.closer = func() {
		conn.Close()
		gs.Stop()
		store.Close()
	}
	t.Cleanup(f.closer)
	return f
}

func (f *fixture) userKey(seed uint64) *issuance.UKeyPair {
	return issuance.GenerateUKeyPair(f.pr.T, drbg.NewFromUint64(seed))
}

func TestIssueOverGRPC(t *testing.T) {
	gt := NewGomegaWithT(t)
	f := newFixture(t)

	state, err := Issue(context.Background(), f.cli, f.pr, f.userKey(10), f.srv.PublicKey(), drbg.NewFromUint64(11))
	gt.Expect(err).NotTo(HaveOccurred())
	gt.Expect(state.Verify(f.pr.T, f.srv.PublicKey())).To(BeTrue())
	gt.Expect(f.srv.Sessions()).To(Equal(0))

	gt.Expect(testutil.ToFloat64(f.srv.metrics.Begun)).To(Equal(1.0))
	gt.Expect(testutil.ToFloat64(f.srv.metrics.Finished)).To(Equal(1.0))
	gt.Expect(testutil.ToFloat64(f.srv.metrics.Sessions)).To(Equal(0.0))

	spent, err := f.store.Spent(KindToken, f.pr.T.ScalarBytes(state.ID))
	gt.Expect(err).NotTo(HaveOccurred())
	gt.Expect(spent).To(BeTrue())
	for _, kind := range []string{KindUserShare, KindIssuerShare, KindToken} {
		n, err := f.store.Count(kind)
		gt.Expect(err).NotTo(HaveOccurred())
		gt.Expect(n).To(Equal(1))
	}

	other := acl.GenerateKeyPair(f.pr.T, drbg.NewFromUint64(12))
	_, err = Issue(context.Background(), f.cli, f.pr, f.userKey(13), other.Public(), drbg.NewFromUint64(14))
	gt.Expect(err).To(HaveOccurred())
}

func TestReplayRejected(t *testing.T) {
	gt := NewGomegaWithT(t)
	f := newFixture(t)
	ctx := context.Background()
	c := f.pr.T

	ic, err := issuance.GenerateM1(f.pr, f.userKey(20), drbg.NewFromUint64(21))
	gt.Expect(err).NotTo(HaveOccurred())
	m1 := wrapperspb.Bytes(ic.M1.Bytes())

	reply, err := f.cli.Begin(ctx, m1)
	gt.Expect(err).NotTo(HaveOccurred())
	_, err = f.cli.Begin(ctx, m1)
	gt.Expect(status.Code(err)).To(Equal(codes.AlreadyExists))

	id, body, err := openEnvelope(reply.GetValue())
	gt.Expect(err).NotTo(HaveOccurred())
	m2, err := issuance.DecodeM2(c, body)
	gt.Expect(err).NotTo(HaveOccurred())
	m3, err := ic.GenerateM3(drbg.NewFromUint64(22), m2)
	gt.Expect(err).NotTo(HaveOccurred())

	finish := wrapperspb.Bytes(sealEnvelope(id, m3.Bytes(c)))
	_, err = f.cli.Finish(ctx, finish)
	gt.Expect(err).NotTo(HaveOccurred())
	_, err = f.cli.Finish(ctx, finish)
	gt.Expect(status.Code(err)).To(Equal(codes.NotFound))

	gt.Expect(testutil.ToFloat64(f.srv.metrics.Rejected.WithLabelValues("Begin", "AlreadyExists"))).To(Equal(1.0))
	gt.Expect(testutil.ToFloat64(f.srv.metrics.Rejected.WithLabelValues("Finish", "NotFound"))).To(Equal(1.0))
}

func TestMalformedRequests(t *testing.T) {
	gt := NewGomegaWithT(t)
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cli.Begin(ctx, wrapperspb.Bytes([]byte("junk")))
	gt.Expect(status.Code(err)).To(Equal(codes.InvalidArgument))

	_, err = f.cli.Finish(ctx, wrapperspb.Bytes([]byte{0, 3, 1, 2, 3}))
	gt.Expect(status.Code(err)).To(Equal(codes.InvalidArgument))

	_, err = f.cli.Finish(ctx, wrapperspb.Bytes(sealEnvelope(make([]byte, SessionIDSize), nil)))
	gt.Expect(status.Code(err)).To(Equal(codes.NotFound))

	// a proof over a different user key does not verify
	ic, err := issuance.GenerateM1(f.pr, f.userKey(30), drbg.NewFromUint64(31))
	gt.Expect(err).NotTo(HaveOccurred())
	ic.M1.PK = f.userKey(32).PK
	_, err = f.cli.Begin(ctx, wrapperspb.Bytes(ic.M1.Bytes()))
	gt.Expect(status.Code(err)).To(Equal(codes.PermissionDenied))

	// a serial share other than the one committed in C1
	ic, err = issuance.GenerateM1(f.pr, f.userKey(33), drbg.NewFromUint64(34))
	gt.Expect(err).NotTo(HaveOccurred())
	ic.M1.ID0 = big.NewInt(12345)
	_, err = f.cli.Begin(ctx, wrapperspb.Bytes(ic.M1.Bytes()))
	gt.Expect(status.Code(err)).To(Equal(codes.PermissionDenied))
	n, err := f.store.Count(KindUserShare)
	gt.Expect(err).NotTo(HaveOccurred())
	gt.Expect(n).To(Equal(0))
}

func TestSessionExpiry(t *testing.T) {
	gt := NewGomegaWithT(t)
	f := newFixture(t)
	ctx := context.Background()
	c := f.pr.T

	ic, err := issuance.GenerateM1(f.pr, f.userKey(40), drbg.NewFromUint64(41))
	gt.Expect(err).NotTo(HaveOccurred())
	reply, err := f.cli.Begin(ctx, wrapperspb.Bytes(ic.M1.Bytes()))
	gt.Expect(err).NotTo(HaveOccurred())
	gt.Expect(f.srv.Sessions()).To(Equal(1))

	id, body, err := openEnvelope(reply.GetValue())
	gt.Expect(err).NotTo(HaveOccurred())
	m2, err := issuance.DecodeM2(c, body)
	gt.Expect(err).NotTo(HaveOccurred())
	m3, err := ic.GenerateM3(drbg.NewFromUint64(42), m2)
	gt.Expect(err).NotTo(HaveOccurred())

	f.clock.Increment(ttl)
	_, err = f.cli.Finish(ctx, wrapperspb.Bytes(sealEnvelope(id, m3.Bytes(c))))
	gt.Expect(status.Code(err)).To(Equal(codes.NotFound))
	gt.Expect(f.srv.Sessions()).To(Equal(0))
}

func TestSweeper(t *testing.T) {
	gt := NewGomegaWithT(t)
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for seed := uint64(50); seed < 53; seed++ {
		ic, err := issuance.GenerateM1(f.pr, f.userKey(seed), drbg.NewFromUint64(seed+100))
		gt.Expect(err).NotTo(HaveOccurred())
		_, err = f.cli.Begin(ctx, wrapperspb.Bytes(ic.M1.Bytes()))
		gt.Expect(err).NotTo(HaveOccurred())
	}
	gt.Expect(f.srv.Sessions()).To(Equal(3))
	gt.Expect(testutil.ToFloat64(f.srv.metrics.Sessions)).To(Equal(3.0))

	go f.srv.RunSweeper(ctx, 10*time.Second)
	f.clock.WaitForWatcherAndIncrement(10 * time.Second)
	gt.Consistently(f.srv.Sessions, 100*time.Millisecond).Should(Equal(3))

	f.clock.Increment(ttl)
	gt.Eventually(f.srv.Sessions).Should(Equal(0))
	gt.Expect(testutil.ToFloat64(f.srv.metrics.Sessions)).To(Equal(0.0))
}

func TestSerialStorePersists(t *testing.T) {
	gt := NewGomegaWithT(t)
	dir := t.TempDir()

	store, err := OpenSerialStore(dir)
	gt.Expect(err).NotTo(HaveOccurred())
	gt.Expect(store.Spend(KindToken, []byte{1, 2, 3})).To(Succeed())
	err = store.Spend(KindToken, []byte{1, 2, 3})
	gt.Expect(err).To(MatchError(ContainSubstring(ErrSerialSpent.Error())))
	gt.Expect(store.Spend(KindUserShare, []byte{1, 2, 3})).To(Succeed())
	gt.Expect(store.Close()).To(Succeed())

	store, err = OpenSerialStore(dir)
	gt.Expect(err).NotTo(HaveOccurred())
	defer store.Close()
	spent, err := store.Spent(KindToken, []byte{1, 2, 3})
	gt.Expect(err).NotTo(HaveOccurred())
	gt.Expect(spent).To(BeTrue())
	n, err := store.Count(KindToken)
	gt.Expect(err).NotTo(HaveOccurred())
	gt.Expect(n).To(Equal(1))
}

func TestEnvelope(t *testing.T) {
	gt := NewGomegaWithT(t)

	id := make([]byte, SessionIDSize)
	id[0] = 7
	gotID, body, err := openEnvelope(sealEnvelope(id, []byte("m3")))
	gt.Expect(err).NotTo(HaveOccurred())
	gt.Expect(gotID).To(Equal(id))
	gt.Expect(body).To(Equal([]byte("m3")))

	_, _, err = openEnvelope([]byte{0})
	gt.Expect(err).To(HaveOccurred())
	_, _, err = openEnvelope(sealEnvelope(id[:4], nil))
	gt.Expect(err).To(HaveOccurred())
}
