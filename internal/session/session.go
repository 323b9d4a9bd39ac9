// Package session keeps one FHE instance alive for the current provider and
// chain, re-creating it whenever either changes.
package session

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Creator builds an instance; *fhevm.Factory satisfies it.
type Creator interface {
	Create(ctx context.Context, opts fhevm.Options) (ftypes.Instance, error)
}

type Snapshot struct {
	Instance   ftypes.Instance
	Status     Status
	Err        error
	ChainID    uint64
	RequestID  string
	Generation uint64
}

type Session struct {
	creator    Creator
	mockChains map[uint64]string

	mu       sync.Mutex
	provider fhevm.ProviderRef
	chainID  uint64
	enabled  bool
	closed   bool
	gen      uint64
	cancel   context.CancelFunc
	snap     Snapshot
	changed  chan struct{}
	subs     map[int]chan Snapshot
	nextSub  int
}

func New(creator Creator, mockChains map[uint64]string) *Session {
	return &Session{
		creator:    creator,
		mockChains: mockChains,
		enabled:    true,
		snap:       Snapshot{Status: StatusIdle},
		changed:    make(chan struct{}),
		subs:       make(map[int]chan Snapshot),
	}
}

// Configure points the session at a provider and chain. A change aborts any
// in-flight creation and starts a new one.
func (s *Session) Configure(provider fhevm.ProviderRef, chainID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if sameProvider(s.provider, provider) && s.chainID == chainID && s.snap.Status != StatusIdle {
		return
	}
	s.provider = provider
	s.chainID = chainID
	s.restartLocked()
}

// SetEnabled toggles the session. Disabling drops to idle immediately.
func (s *Session) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.enabled == enabled {
		return
	}
	s.enabled = enabled
	s.restartLocked()
}

// Refresh cancels in-flight work and starts over.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.restartLocked()
}

// Close cancels in-flight work and stops accepting transitions.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.stopLocked()
	s.closed = true
	s.setLocked(Snapshot{Status: StatusIdle, Generation: s.gen})
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Instance returns the ready instance, if any.
func (s *Session) Instance() (ftypes.Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status != StatusReady || s.snap.Instance == nil {
		return nil, false
	}
	return s.snap.Instance, true
}

// Wait blocks until the session is no longer loading.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	for {
		s.mu.Lock()
		snap, ch := s.snap, s.changed
		s.mu.Unlock()

		if snap.Status != StatusLoading {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ch:
		}
	}
}

// Subscribe delivers the latest snapshot after every transition. Slow readers
// only see the most recent one.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snap

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

func (s *Session) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

func (s *Session) restartLocked() {
	s.stopLocked()

	if !s.enabled || s.provider.IsZero() {
		s.setLocked(Snapshot{Status: StatusIdle, ChainID: s.chainID, Generation: s.gen})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	gen := s.gen
	reqID := uuid.NewString()
	provider := s.provider
	chainID := s.chainID

	s.setLocked(Snapshot{Status: StatusLoading, ChainID: chainID, RequestID: reqID, Generation: gen})
	go s.run(ctx, gen, reqID, provider, chainID)
}

func (s *Session) run(ctx context.Context, gen uint64, reqID string, provider fhevm.ProviderRef, chainID uint64) {
	log.Info("fhevm session starting", "request_id", reqID, "provider", provider.String(), "chain_id", chainID)

	inst, err := s.creator.Create(ctx, fhevm.Options{
		Provider:   provider,
		MockChains: s.mockChains,
		OnStatusChange: func(st fhevm.Status) {
			log.Info("fhevm session progress", "request_id", reqID, "step", string(st))
		},
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || ctx.Err() != nil {
		log.Info("fhevm session result discarded", "request_id", reqID)
		return
	}
	s.cancel = nil

	if err == nil {
		s.setLocked(Snapshot{Instance: inst, Status: StatusReady, ChainID: chainID, RequestID: reqID, Generation: gen})
		log.Info("fhevm session ready", "request_id", reqID)
		return
	}

	if isSoftFailure(err) {
		log.Warn("fhevm not available yet", "request_id", reqID, "kind", shared.KindOf(err).String(), "error", err)
		s.setLocked(Snapshot{Status: StatusIdle, ChainID: chainID, RequestID: reqID, Generation: gen})
		return
	}

	log.Error("fhevm session failed", "request_id", reqID, "error", err)
	s.setLocked(Snapshot{Status: StatusError, Err: err, ChainID: chainID, RequestID: reqID, Generation: gen})
}

func (s *Session) setLocked(snap Snapshot) {
	s.snap = snap
	close(s.changed)
	s.changed = make(chan struct{})

	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func isSoftFailure(err error) bool {
	switch shared.KindOf(err) {
	case shared.KindAborted, shared.KindNetwork, shared.KindChainIDUnavailable:
		return true
	}
	return false
}

func sameProvider(a, b fhevm.ProviderRef) bool {
	if a.URL != b.URL {
		return false
	}
	if a.Provider == nil || b.Provider == nil {
		return a.Provider == nil && b.Provider == nil
	}
	ta, tb := reflect.TypeOf(a.Provider), reflect.TypeOf(b.Provider)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a.Provider == b.Provider
}
