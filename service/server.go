// Package service exposes Boomerang issuance over gRPC. The issuer keeps
// the ACL signer state of every open session in memory and records spent
// serials in leveldb.
package service

import (
	"context"
	"crypto/rand"
	"io"
	"math/big"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	boomerang "github.com/MixinNetwork/boomerang-go"
	"github.com/MixinNetwork/boomerang-go/acl"
	"github.com/MixinNetwork/boomerang-go/curve"
	"github.com/MixinNetwork/boomerang-go/issuance"
	"github.com/MixinNetwork/boomerang-go/logging"
)

var logger = logging.MustGetLogger("service")

type Options struct {
	Pair       *curve.Pair
	Key        *acl.KeyPair
	Store      *SerialStore
	SessionTTL time.Duration
	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Registerer defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Rand defaults to crypto/rand.
	Rand io.Reader
}

type Server struct {
	pair     *curve.Pair
	key      *acl.KeyPair
	store    *SerialStore
	sessions *sessionTable
	metrics  *Metrics
	rng      *lockedReader
}

type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}

func NewServer(opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clock.NewClock()
	}
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Rand == nil {
		opts.Rand = rand.Reader
	}
	m := NewMetrics(opts.Registerer)
	return &Server{
		pair:     opts.Pair,
		key:      opts.Key,
		store:    opts.Store,
		sessions: newSessionTable(opts.Clock, opts.SessionTTL, func(n int) { m.Sessions.Set(float64(n)) }),
		metrics:  m,
		rng:      &lockedReader{r: opts.Rand},
	}
}

// PublicKey is what clients verify issued signatures against.
func (s *Server) PublicKey() *acl.PublicKey { return s.key.Public() }

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int { return s.sessions.len() }

// RunSweeper drops expired sessions every interval until ctx is done.
func (s *Server) RunSweeper(ctx context.Context, interval time.Duration) {
	s.sessions.run(ctx, interval)
}

func (s *Server) Begin(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	out, err := s.begin(in.GetValue())
	if err != nil {
		return nil, s.reject("Begin", err)
	}
	s.metrics.Begun.Inc()
	return wrapperspb.Bytes(out), nil
}

func (s *Server) begin(buf []byte) ([]byte, error) {
	c := s.pair.T
	m1, err := issuance.DecodeM1(c, buf)
	if err != nil {
		return nil, err
	}
	st, err := issuance.GenerateM2(s.pair, s.rng, m1, s.key)
	if err != nil {
		return nil, err
	}
	if err := s.store.Spend(KindUserShare, c.ScalarBytes(m1.ID0)); err != nil {
		return nil, err
	}
	if err := s.store.Spend(KindIssuerShare, c.ScalarBytes(st.M2.ID1)); err != nil {
		return nil, err
	}
	id, err := newSessionID(s.rng, buf)
	if err != nil {
		return nil, err
	}
	s.sessions.put(id, st)
	logger.Debugw("session opened", "session", id)
	return sealEnvelope(id, st.M2.Bytes()), nil
}

func (s *Server) Finish(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	out, err := s.finish(in.GetValue())
	if err != nil {
		return nil, s.reject("Finish", err)
	}
	s.metrics.Finished.Inc()
	return wrapperspb.Bytes(out), nil
}

func (s *Server) finish(buf []byte) ([]byte, error) {
	c := s.pair.T
	id, body, err := openEnvelope(buf)
	if err != nil {
		return nil, err
	}
	st, err := s.sessions.take(id)
	if err != nil {
		return nil, err
	}
	m3, err := issuance.DecodeM3(c, body)
	if err != nil {
		return nil, err
	}
	m4, err := st.GenerateM4(m3, s.key)
	if err != nil {
		return nil, err
	}
	serial := new(big.Int).Add(st.ID0, st.M2.ID1)
	if err := s.store.Spend(KindToken, c.ScalarBytes(serial.Mod(serial, c.Order()))); err != nil {
		return nil, err
	}
	logger.Debugw("session finished", "session", id)
	return m4.Bytes(c), nil
}

func (s *Server) reject(method string, err error) error {
	st := toStatus(err)
	s.metrics.Rejected.WithLabelValues(method, st.Code().String()).Inc()
	logger.Warnw("rejected request", "method", method, "code", st.Code(), "error", err)
	return st.Err()
}

func toStatus(err error) *status.Status {
	code := codes.Internal
	switch {
	case errors.Is(err, ErrSessionNotFound):
		code = codes.NotFound
	case errors.Is(err, ErrSerialSpent):
		code = codes.AlreadyExists
	case errors.Is(err, boomerang.ErrMalformedInput):
		code = codes.InvalidArgument
	case errors.Is(err, boomerang.ErrVerificationFailed), errors.Is(err, boomerang.ErrInvalidChallenge):
		code = codes.PermissionDenied
	case errors.Is(err, boomerang.ErrProtocolMisuse):
		code = codes.FailedPrecondition
	}
	return status.New(code, err.Error())
}
