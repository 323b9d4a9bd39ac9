package relayer

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// Loader ensures a well-shaped SDK is present in a Runtime.
type Loader struct {
	rt *Runtime
}

func NewLoader(rt *Runtime) *Loader {
	return &Loader{rt: rt}
}

// IsLoaded reports whether a valid SDK is held. It fails when the loader has
// no runtime to look into.
func (l *Loader) IsLoaded() (bool, error) {
	if l == nil || l.rt == nil {
		return false, shared.Mark(errors.New("relayer: no sdk runtime available"), shared.KindSDKUnavailable)
	}
	_, ok := l.rt.SDK()
	return ok, nil
}

// Load resolves once a valid SDK is available. It never retries.
func (l *Loader) Load(ctx context.Context) error {
	if l == nil || l.rt == nil {
		return shared.Mark(errors.New("relayer: no sdk runtime available"), shared.KindSDKUnavailable)
	}
	rt := l.rt

	rt.mu.Lock()
	if rt.sdk != nil {
		rt.mu.Unlock()
		return nil
	}

	if rt.injected != nil {
		sdk, err := Adapt(rt.injected)
		if err != nil {
			rt.mu.Unlock()
			return err
		}
		rt.sdk = sdk
		rt.state = StateLoaded
		rt.mu.Unlock()
		log.Info("relayer sdk already present")
		return nil
	}

	pending := rt.pending
	if pending == nil {
		if rt.source == nil {
			rt.mu.Unlock()
			return shared.Mark(errors.New("relayer: no sdk source configured"), shared.KindSDKUnavailable)
		}
		pending = &pendingFetch{done: make(chan struct{})}
		rt.pending = pending
		go rt.fetch(context.WithoutCancel(ctx), rt.source, pending)
	}
	rt.mu.Unlock()

	select {
	case <-ctx.Done():
		return shared.Mark(errors.Wrap(ctx.Err(), "relayer sdk load"), shared.KindAborted)
	case <-pending.done:
	}

	if pending.err != nil {
		return pending.err
	}
	return nil
}

func (r *Runtime) fetch(ctx context.Context, src Source, p *pendingFetch) {
	defer close(p.done)

	obj, err := src.Fetch(ctx)
	if err != nil {
		// %v keeps the source's transport kind out of the chain
		p.err = shared.Mark(errors.Newf("failed to load relayer sdk: %v", err), shared.KindSDKUnavailable)
	} else {
		var sdk SDK
		sdk, p.err = Adapt(obj)
		if p.err == nil {
			r.mu.Lock()
			if r.pending == p {
				r.sdk = sdk
				r.state = StateLoaded
			}
			r.mu.Unlock()
		}
	}

	r.mu.Lock()
	if r.pending == p {
		r.pending = nil
	}
	r.mu.Unlock()

	if p.err != nil {
		log.Error("relayer sdk load failed", "error", p.err)
		return
	}
	log.Info("relayer sdk loaded")
}
