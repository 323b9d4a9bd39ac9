package session

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/stretchr/testify/require"
)

type stubInstance struct{ name string }

func (stubInstance) CreateEncryptedInput(common.Address, common.Address) ftypes.InputBuilder {
	return nil
}

func (stubInstance) UserDecrypt(context.Context, []ftypes.HandleContractPair, string, string, string, []common.Address, common.Address, string, string) (map[string]*big.Int, error) {
	return nil, nil
}

func (stubInstance) GetPublicKey() *ftypes.PublicKey         { return nil }
func (stubInstance) GetPublicParams(int) *ftypes.PublicParam { return nil }

type call struct {
	opts    fhevm.Options
	ctx     context.Context
	release chan result
}

type result struct {
	inst ftypes.Instance
	err  error
}

// gatedCreator blocks every Create until the test releases it.
type gatedCreator struct {
	mu    sync.Mutex
	calls []*call
	ready chan *call
}

func newGatedCreator() *gatedCreator {
	return &gatedCreator{ready: make(chan *call, 16)}
}

func (g *gatedCreator) Create(ctx context.Context, opts fhevm.Options) (ftypes.Instance, error) {
	c := &call{opts: opts, ctx: ctx, release: make(chan result, 1)}
	g.mu.Lock()
	g.calls = append(g.calls, c)
	g.mu.Unlock()
	g.ready <- c

	r := <-c.release
	return r.inst, r.err
}

func (g *gatedCreator) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-g.ready:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("creator was not called")
		return nil
	}
}

func waitFor(t *testing.T, s *Session, want Status) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	snap, err := s.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, want, snap.Status)
	return snap
}

var localRef = fhevm.ProviderRef{URL: "http://localhost:8545"}

func TestSession_IdleWithoutProvider(t *testing.T) {
	s := New(newGatedCreator(), nil)
	require.Equal(t, StatusIdle, s.Snapshot().Status)
	_, ok := s.Instance()
	require.False(t, ok)
}

func TestSession_Ready(t *testing.T) {
	g := newGatedCreator()
	s := New(g, map[uint64]string{42: "http://devnet"})
	defer s.Close()

	s.Configure(localRef, 31337)
	require.Equal(t, StatusLoading, s.Snapshot().Status)

	c := g.next(t)
	require.Equal(t, localRef, c.opts.Provider)
	require.Equal(t, "http://devnet", c.opts.MockChains[42])
	c.release <- result{inst: stubInstance{name: "a"}}

	snap := waitFor(t, s, StatusReady)
	require.Equal(t, stubInstance{name: "a"}, snap.Instance)
	require.NotEmpty(t, snap.RequestID)

	inst, ok := s.Instance()
	require.True(t, ok)
	require.Equal(t, stubInstance{name: "a"}, inst)
}

func TestSession_SupersededResultIsDiscarded(t *testing.T) {
	g := newGatedCreator()
	s := New(g, nil)
	defer s.Close()

	s.Configure(localRef, 31337)
	first := g.next(t)

	s.Configure(fhevm.ProviderRef{URL: "https://sepolia.example"}, 11155111)
	second := g.next(t)
	require.Error(t, first.ctx.Err(), "first request must be cancelled")

	second.release <- result{inst: stubInstance{name: "new"}}
	waitFor(t, s, StatusReady)

	first.release <- result{inst: stubInstance{name: "stale"}}
	time.Sleep(20 * time.Millisecond)

	snap := s.Snapshot()
	require.Equal(t, StatusReady, snap.Status)
	require.Equal(t, stubInstance{name: "new"}, snap.Instance)
	require.Equal(t, uint64(11155111), snap.ChainID)
}

func TestSession_StaleErrorDoesNotOverwrite(t *testing.T) {
	g := newGatedCreator()
	s := New(g, nil)
	defer s.Close()

	s.Configure(localRef, 31337)
	first := g.next(t)
	s.Refresh()
	second := g.next(t)

	second.release <- result{inst: stubInstance{name: "fresh"}}
	waitFor(t, s, StatusReady)

	first.release <- result{err: errors.New("boom")}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StatusReady, s.Snapshot().Status)
}

func TestSession_Failures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{name: "abort is soft", err: shared.Aborted("create"), want: StatusIdle},
		{name: "network is soft", err: shared.Mark(errors.New("failed to fetch"), shared.KindNetwork), want: StatusIdle},
		{name: "chain id unavailable is soft", err: shared.Mark(errors.New("offline"), shared.KindChainIDUnavailable), want: StatusIdle},
		{name: "chain id timeout is fatal", err: shared.Mark(errors.New("provider request timeout"), shared.KindTimeout), want: StatusError},
		{name: "sdk shape is fatal", err: shared.Mark(errors.New("bad sdk"), shared.KindSDKShape), want: StatusError},
		{name: "unknown is fatal", err: errors.New("kaboom"), want: StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGatedCreator()
			s := New(g, nil)
			defer s.Close()

			s.Configure(localRef, 31337)
			g.next(t).release <- result{err: tt.err}

			snap := waitFor(t, s, tt.want)
			if tt.want == StatusError {
				require.ErrorIs(t, snap.Err, tt.err)
			} else {
				require.NoError(t, snap.Err)
			}
			require.Nil(t, snap.Instance)
		})
	}
}

func TestSession_DisableResetsImmediately(t *testing.T) {
	g := newGatedCreator()
	s := New(g, nil)
	defer s.Close()

	s.Configure(localRef, 31337)
	c := g.next(t)

	s.SetEnabled(false)
	require.Equal(t, StatusIdle, s.Snapshot().Status)
	require.Error(t, c.ctx.Err())

	c.release <- result{inst: stubInstance{name: "late"}}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, StatusIdle, s.Snapshot().Status)

	s.SetEnabled(true)
	g.next(t).release <- result{inst: stubInstance{name: "again"}}
	waitFor(t, s, StatusReady)
}

func TestSession_RefreshAfterError(t *testing.T) {
	g := newGatedCreator()
	s := New(g, nil)
	defer s.Close()

	s.Configure(localRef, 31337)
	g.next(t).release <- result{err: errors.New("kaboom")}
	waitFor(t, s, StatusError)

	s.Configure(localRef, 31337)
	select {
	case <-g.ready:
		t.Fatal("same provider must not restart an errored session")
	case <-time.After(20 * time.Millisecond):
	}

	s.Refresh()
	g.next(t).release <- result{inst: stubInstance{name: "ok"}}
	waitFor(t, s, StatusReady)
}

func TestSession_Subscribe(t *testing.T) {
	g := newGatedCreator()
	s := New(g, nil)

	ch, unsubscribe := s.Subscribe()
	require.Equal(t, StatusIdle, (<-ch).Status)

	s.Configure(localRef, 31337)
	require.Equal(t, StatusLoading, (<-ch).Status)

	g.next(t).release <- result{inst: stubInstance{}}
	require.Equal(t, StatusReady, (<-ch).Status)

	unsubscribe()
	_, open := <-ch
	require.False(t, open)

	s.Close()
	require.Equal(t, StatusIdle, s.Snapshot().Status)
}
