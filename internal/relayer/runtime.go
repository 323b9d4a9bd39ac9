package relayer

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type State int

const (
	StateUninitialized State = iota
	StateLoaded
	StateInitialized
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateInitialized:
		return "initialized"
	default:
		return "uninitialized"
	}
}

// Source fetches an untyped SDK object, the way a script tag would.
type Source interface {
	Fetch(ctx context.Context) (any, error)
}

type SourceFunc func(ctx context.Context) (any, error)

func (f SourceFunc) Fetch(ctx context.Context) (any, error) { return f(ctx) }

type pendingFetch struct {
	done chan struct{}
	obj  any
	err  error
}

// Runtime is the process-wide home of the relayer SDK.
type Runtime struct {
	mu       sync.Mutex
	injected any
	sdk      SDK
	state    State
	source   Source
	pending  *pendingFetch
}

var defaultRuntime = NewRuntime()

// Default returns the process-wide runtime.
func Default() *Runtime {
	return defaultRuntime
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

// Inject stores a host-provided SDK object. Validation happens on Load.
func (r *Runtime) Inject(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.injected = v
	r.sdk = nil
	r.state = StateUninitialized
}

// SetSource registers where Load fetches the SDK from when nothing was injected.
func (r *Runtime) SetSource(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = src
}

func (r *Runtime) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SDK returns the adapted SDK once loaded.
func (r *Runtime) SDK() (SDK, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sdk, r.sdk != nil
}

// Initialize calls InitSDK once; later calls are no-ops.
func (r *Runtime) Initialize(ctx context.Context, opts *InitOptions) error {
	r.mu.Lock()
	sdk, state := r.sdk, r.state
	r.mu.Unlock()

	if state == StateInitialized {
		return nil
	}
	if sdk == nil {
		return shared.Mark(errors.New("relayer sdk is not loaded"), shared.KindSDKUnavailable)
	}

	ok, err := sdk.InitSDK(ctx, opts)
	if err != nil {
		return shared.Mark(errors.Wrap(err, "relayer sdk init"), shared.KindSDKUnavailable)
	}
	if !ok {
		return shared.Mark(errors.New("relayer sdk init returned false"), shared.KindSDKUnavailable)
	}

	r.mu.Lock()
	if r.sdk == sdk {
		r.state = StateInitialized
	}
	r.mu.Unlock()

	log.Info("relayer sdk initialized")
	return nil
}
