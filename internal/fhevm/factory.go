// Package fhevm builds FHE instances: it resolves the chain behind a provider,
// prefers a local mock instance on development nodes and otherwise goes
// through the relayer SDK.
package fhevm

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/mock"
	"github.com/quantumauth-io/private-expense-log/internal/relayer"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type Status string

const (
	StatusSDKLoading      Status = "sdk-loading"
	StatusSDKLoaded       Status = "sdk-loaded"
	StatusSDKInitializing Status = "sdk-initializing"
	StatusSDKInitialized  Status = "sdk-initialized"
	StatusCreating        Status = "creating"
)

type Options struct {
	Provider       ProviderRef
	MockChains     map[uint64]string
	OnStatusChange func(Status)
}

// MockBuilder creates the local mock instance. Replaceable in tests.
type MockBuilder func(ctx context.Context, rpcURL string, chainID uint64, md RelayerMetadata) (ftypes.Instance, error)

type Factory struct {
	Resolver  *Resolver
	Runtime   *relayer.Runtime
	Loader    *relayer.Loader
	Keys      *PublicKeyCache
	BuildMock MockBuilder
	InitOpts  *relayer.InitOptions
}

// NewFactory wires a factory to the process-wide runtime and key cache.
func NewFactory() *Factory {
	return NewFactoryWith(NewResolver(), relayer.Default(), DefaultPublicKeyCache)
}

func NewFactoryWith(res *Resolver, rt *relayer.Runtime, keys *PublicKeyCache) *Factory {
	f := &Factory{
		Resolver: res,
		Runtime:  rt,
		Loader:   relayer.NewLoader(rt),
		Keys:     keys,
	}
	f.BuildMock = f.defaultMock
	return f
}

func (f *Factory) defaultMock(ctx context.Context, rpcURL string, chainID uint64, md RelayerMetadata) (ftypes.Instance, error) {
	dial := f.Resolver.Dial
	if dial == nil {
		dial = dialRPC
	}
	p, closeFn, err := dial(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return mock.Create(ctx, p, p, mock.Config{
		ACLContractAddress:                        md.ACLAddress,
		ChainID:                                   chainID,
		GatewayChainID:                            constants.GatewayChainID,
		InputVerifierContractAddress:              md.InputVerifierAddress,
		KMSContractAddress:                        md.KMSVerifierAddress,
		VerifyingContractAddressDecryption:        constants.VerifyingContractDecryption,
		VerifyingContractAddressInputVerification: constants.VerifyingContractInputVerification,
	})
}

func checkAbort(ctx context.Context, step string) error {
	if ctx.Err() != nil {
		return shared.Aborted(step)
	}
	return nil
}

// Create produces a ready FHE instance. ctx cancellation is observed after
// every suspension point and yields an aborted-kind error.
func (f *Factory) Create(ctx context.Context, opts Options) (ftypes.Instance, error) {
	notify := func(s Status) {
		if opts.OnStatusChange != nil {
			opts.OnStatusChange(s)
		}
	}

	if err := checkAbort(ctx, "create instance"); err != nil {
		return nil, err
	}

	res, err := f.Resolver.Resolve(ctx, opts.Provider, opts.MockChains)
	if err != nil {
		return nil, err
	}
	if err := checkAbort(ctx, "resolve chain"); err != nil {
		return nil, err
	}

	if res.IsMock {
		inst, err := f.createMock(ctx, res, notify)
		if err == nil {
			return inst, nil
		}
		if shared.KindOf(err) == shared.KindAborted {
			return nil, err
		}
		log.Warn("mock fhevm unavailable, using relayer sdk", "chain_id", res.ChainID, "error", err)
	}

	return f.createLive(ctx, opts.Provider, notify)
}

func (f *Factory) createMock(ctx context.Context, res Resolution, notify func(Status)) (ftypes.Instance, error) {
	md, err := f.Resolver.FetchRelayerMetadata(ctx, res.RPCURL)
	if err := checkAbort(ctx, "fetch relayer metadata"); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	notify(StatusCreating)
	inst, err := f.BuildMock(ctx, res.RPCURL, res.ChainID, md)
	if err := checkAbort(ctx, "create mock instance"); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "create mock instance")
	}

	log.Info("mock fhevm instance created", "chain_id", res.ChainID, "acl", md.ACLAddress)
	return inst, nil
}

func (f *Factory) createLive(ctx context.Context, provider ProviderRef, notify func(Status)) (ftypes.Instance, error) {
	loaded, err := f.Loader.IsLoaded()
	if err != nil {
		return nil, err
	}
	if !loaded {
		notify(StatusSDKLoading)
		err := f.Loader.Load(ctx)
		if err := checkAbort(ctx, "load relayer sdk"); err != nil {
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		notify(StatusSDKLoaded)
	}

	if f.Runtime.State() != relayer.StateInitialized {
		notify(StatusSDKInitializing)
		err := f.Runtime.Initialize(ctx, f.InitOpts)
		if err := checkAbort(ctx, "initialize relayer sdk"); err != nil {
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		notify(StatusSDKInitialized)
	}

	sdk, ok := f.Runtime.SDK()
	if !ok {
		return nil, shared.Mark(errors.New("relayer sdk disappeared after load"), shared.KindSDKUnavailable)
	}

	cfg := sdk.SepoliaConfig()
	if !relayer.IsValidAddress(cfg.ACLContractAddress) {
		return nil, shared.Mark(errors.Newf("invalid ACL address %q", cfg.ACLContractAddress), shared.KindSDKShape)
	}

	cached := f.Keys.Get(cfg.ACLContractAddress)
	cfg.Network = provider.Network()
	cfg.PublicKey = cached.PublicKey
	cfg.PublicParams = cached.PublicParams

	notify(StatusCreating)
	inst, err := sdk.CreateInstance(ctx, cfg)
	if err := checkAbort(ctx, "create relayer instance"); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrap(err, "create relayer instance")
	}

	f.Keys.Set(cfg.ACLContractAddress, inst.GetPublicKey(), inst.GetPublicParams(constants.PublicParamsSize))
	log.Info("relayer fhevm instance created", "acl", cfg.ACLContractAddress)
	return inst, nil
}
