package fhevm

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

const DefaultChainIDTimeout = 10 * time.Second

// Provider is the single RPC capability of an injected wallet provider.
// *rpc.Client satisfies it.
type Provider interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// ProviderRef is either an RPC URL or a provider object.
type ProviderRef struct {
	URL      string
	Provider Provider
}

func (p ProviderRef) IsZero() bool {
	return p.URL == "" && p.Provider == nil
}

// Network returns the value handed to the SDK as its network.
func (p ProviderRef) Network() any {
	if p.Provider != nil {
		return p.Provider
	}
	return p.URL
}

func (p ProviderRef) String() string {
	if p.URL != "" {
		return p.URL
	}
	if p.Provider != nil {
		return "provider"
	}
	return ""
}

// Resolution is the outcome of one chain resolution attempt.
type Resolution struct {
	IsMock  bool
	ChainID uint64
	RPCURL  string
}

// DialFunc opens a transient RPC connection for URL providers.
type DialFunc func(ctx context.Context, url string) (Provider, func(), error)

// Resolver determines chain identity for a provider.
type Resolver struct {
	Timeout time.Duration
	Dial    DialFunc
}

func NewResolver() *Resolver {
	return &Resolver{Timeout: DefaultChainIDTimeout, Dial: dialRPC}
}

func dialRPC(ctx context.Context, rawURL string) (Provider, func(), error) {
	c, err := rpc.DialContext(ctx, rawURL)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// DefaultMockChains returns the built-in mock chain mapping.
func DefaultMockChains() map[uint64]string {
	return map[uint64]string{constants.LocalChainID: constants.LocalRPCURL}
}

// MergeMockChains overlays overrides on the default mapping.
func MergeMockChains(overrides map[uint64]string) map[uint64]string {
	out := DefaultMockChains()
	for id, u := range overrides {
		out[id] = u
	}
	return out
}

// GetChainID issues eth_chainId through ref, bounded by the resolver timeout.
func (r *Resolver) GetChainID(ctx context.Context, ref ProviderRef) (uint64, error) {
	if ref.IsZero() {
		return 0, errors.New("no provider")
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultChainIDTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		id  uint64
		err error
	}
	done := make(chan result, 1)
	go func() {
		id, err := r.queryChainID(callCtx, ref)
		done <- result{id: id, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return 0, shared.Mark(errors.Wrap(ctx.Err(), "eth_chainId"), shared.KindAborted)
		}
		return 0, shared.Mark(errors.Newf("eth_chainId timed out after %s", timeout), shared.KindTimeout)
	}

	if res.err == nil {
		return res.id, nil
	}
	if ctx.Err() != nil {
		return 0, shared.Mark(errors.Wrap(res.err, "eth_chainId"), shared.KindAborted)
	}
	if callCtx.Err() != nil {
		return 0, shared.Mark(errors.Wrapf(res.err, "eth_chainId timed out after %s", timeout), shared.KindTimeout)
	}
	if shared.IsTransportFailure(res.err) {
		if looksLocal(ref.URL) {
			log.Warn("chain id unreachable on local node, assuming hardhat", "url", ref.URL, "error", res.err)
			return constants.LocalChainID, nil
		}
		return 0, shared.Mark(errors.Wrapf(res.err, "chain id unavailable for %s", ref), shared.KindChainIDUnavailable)
	}
	return 0, errors.Wrap(res.err, "eth_chainId")
}

func (r *Resolver) queryChainID(ctx context.Context, ref ProviderRef) (uint64, error) {
	p := ref.Provider
	if p == nil {
		dial := r.Dial
		if dial == nil {
			dial = dialRPC
		}
		c, closeFn, err := dial(ctx, ref.URL)
		if err != nil {
			return 0, err
		}
		if closeFn != nil {
			defer closeFn()
		}
		p = c
	}

	var raw string
	if err := p.CallContext(ctx, &raw, "eth_chainId"); err != nil {
		return 0, err
	}
	return parseChainID(raw)
}

func parseChainID(raw string) (uint64, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		v, err := hexutil.DecodeBig(strings.ToLower(raw))
		if err != nil {
			return 0, errors.Wrapf(err, "parse chain id %q", raw)
		}
		return v.Uint64(), nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return 0, errors.Newf("parse chain id %q", raw)
	}
	return v.Uint64(), nil
}

// Resolve determines whether ref points at a mock chain.
func (r *Resolver) Resolve(ctx context.Context, ref ProviderRef, overrides map[uint64]string) (Resolution, error) {
	mocks := MergeMockChains(overrides)

	id, err := r.GetChainID(ctx, ref)
	if err != nil {
		if shared.KindOf(err) == shared.KindAborted {
			return Resolution{}, err
		}
		if res, ok := guessMock(ref.URL, mocks); ok {
			log.Warn("chain id lookup failed, treating provider as mock", "url", ref.URL, "chain_id", res.ChainID, "error", err)
			return res, nil
		}
		return Resolution{}, err
	}

	if u, ok := mocks[id]; ok {
		return Resolution{IsMock: true, ChainID: id, RPCURL: u}, nil
	}
	return Resolution{ChainID: id}, nil
}

// guessMock matches a URL against known mock URLs first, then localhost patterns.
func guessMock(raw string, mocks map[uint64]string) (Resolution, bool) {
	if raw == "" {
		return Resolution{}, false
	}
	for id, u := range mocks {
		if sameURL(raw, u) {
			return Resolution{IsMock: true, ChainID: id, RPCURL: u}, true
		}
	}
	if u, ok := mocks[constants.LocalChainID]; ok && looksLocal(raw) {
		return Resolution{IsMock: true, ChainID: constants.LocalChainID, RPCURL: u}, true
	}
	return Resolution{}, false
}

func looksLocal(raw string) bool {
	l := strings.ToLower(raw)
	return strings.Contains(l, "localhost") || strings.Contains(l, "127.0.0.1")
}

func sameURL(a, b string) bool {
	return strings.TrimRight(strings.ToLower(a), "/") == strings.TrimRight(strings.ToLower(b), "/")
}
