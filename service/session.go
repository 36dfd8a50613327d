package service

import (
	"context"
	"io"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/dchest/blake2b"
	"github.com/pkg/errors"

	"github.com/MixinNetwork/boomerang-go/issuance"
)

// ErrSessionNotFound covers unknown, consumed and expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionIDSize is the length of a session id, a BLAKE2b-256 digest.
const SessionIDSize = 32

type session struct {
	state   *issuance.IssuanceS
	expires time.Time
}

type sessionTable struct {
	mu       sync.Mutex
	clock    clock.Clock
	ttl      time.Duration
	sessions map[string]*session
	onChange func(n int)
}

func newSessionTable(clk clock.Clock, ttl time.Duration, onChange func(int)) *sessionTable {
	return &sessionTable{
		clock:    clk,
		ttl:      ttl,
		sessions: make(map[string]*session),
		onChange: onChange,
	}
}

// newSessionID hashes fresh randomness together with the first message.
func newSessionID(rng io.Reader, m1 []byte) ([]byte, error) {
	var nonce [32]byte
	if _, err := io.ReadFull(rng, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "session nonce")
	}
	h := blake2b.New256()
	h.Write(nonce[:])
	h.Write(m1)
	return h.Sum(nil), nil
}

func (t *sessionTable) put(id []byte, st *issuance.IssuanceS) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions[string(id)] = &session{state: st, expires: t.clock.Now().Add(t.ttl)}
	t.onChange(len(t.sessions))
}

// take removes and returns the session. Expired sessions are removed too
// but reported as missing.
func (t *sessionTable) take(id []byte) (*issuance.IssuanceS, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sessions[string(id)]
	if !ok {
		return nil, errors.Wrapf(ErrSessionNotFound, "%x", id)
	}
	delete(t.sessions, string(id))
	t.onChange(len(t.sessions))
	if !t.clock.Now().Before(s.expires) {
		return nil, errors.Wrapf(ErrSessionNotFound, "%x expired", id)
	}
	return s.state, nil
}

// sweep drops expired sessions and returns how many were dropped.
func (t *sessionTable) sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	n := 0
	for id, s := range t.sessions {
		if !now.Before(s.expires) {
			delete(t.sessions, id)
			n++
		}
	}
	if n > 0 {
		t.onChange(len(t.sessions))
	}
	return n
}

func (t *sessionTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *sessionTable) run(ctx context.Context, interval time.Duration) {
	ticker := t.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if n := t.sweep(); n > 0 {
				logger.Debugw("swept expired sessions", "count", n)
			}
		}
	}
}
