package setup

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/private-expense-log/internal/chains"
	"github.com/quantumauth-io/private-expense-log/internal/contracts"
	"github.com/quantumauth-io/private-expense-log/internal/entrystore"
	"github.com/quantumauth-io/private-expense-log/internal/expenselog"
	clienthttp "github.com/quantumauth-io/private-expense-log/internal/http"
	"github.com/quantumauth-io/private-expense-log/internal/session"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type AppDeps struct {
	Chains     *chains.Service
	Session    *session.Session
	Signer     expenselog.Signer
	Cache      entrystore.Store
	MockChains map[uint64]string
	// PrefsPath is where the chosen network is remembered; empty disables it.
	PrefsPath string
}

// BindFunc connects to the expense log deployed at addr on the active chain.
type BindFunc func(addr common.Address, active *chains.Active) (expenselog.Contract, error)

func bindContract(addr common.Address, active *chains.Active) (expenselog.Contract, error) {
	return expenselog.NewBoundContract(addr, active.Clients.Eth)
}

// App ties the session and the expense-log facade to the active network.
type App struct {
	deps AppDeps
	bind BindFunc

	mu      sync.RWMutex
	svc     *expenselog.Service
	network clienthttp.Network
}

func NewApp(deps AppDeps) (*App, error) {
	return NewAppWithBinder(deps, bindContract)
}

func NewAppWithBinder(deps AppDeps, bind BindFunc) (*App, error) {
	a := &App{deps: deps, bind: bind}
	if err := a.activate(); err != nil {
		return nil, err
	}
	return a, nil
}

// activate rebuilds the facade for the chain service's active network and
// points the session at it.
func (a *App) activate() error {
	active, err := a.deps.Chains.Active()
	if err != nil {
		return err
	}
	addr, err := contracts.AddressFor(active.ChainID)
	if err != nil {
		return err
	}
	c, err := a.bind(addr, active)
	if err != nil {
		return err
	}

	svc := expenselog.New(expenselog.Deps{
		Session:         a.deps.Session,
		Contract:        c,
		Signer:          a.deps.Signer,
		ContractAddress: addr,
		ChainID:         active.ChainID,
		Cache:           a.deps.Cache,
	})
	_, isMock := a.deps.MockChains[active.ChainID]
	n := clienthttp.Network{
		Name:       active.NetworkName,
		ChainID:    active.ChainID,
		ChainIDHex: active.ChainIDHex,
		RPC:        active.RPCName,
		Contract:   addr.Hex(),
		Mock:       isMock,
	}

	a.mu.Lock()
	a.svc = svc
	a.network = n
	a.mu.Unlock()

	a.deps.Session.Configure(active.Provider(), active.ChainID)
	log.Info("expense log bound", "network", n.Name, "chain_id", n.ChainID, "contract", n.Contract, "mock", n.Mock)
	return nil
}

func (a *App) Session() *session.Session { return a.deps.Session }

func (a *App) Expenses() *expenselog.Service {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.svc
}

func (a *App) Account() common.Address { return a.deps.Signer.Address() }

func (a *App) Network() clienthttp.Network {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.network
}

func (a *App) Networks() []string { return a.deps.Chains.Names() }

// SwitchNetwork moves the client to another configured network. Unknown
// networks and chains without a deployment are rejected before anything
// changes.
func (a *App) SwitchNetwork(ctx context.Context, name string) (clienthttp.Network, error) {
	r, err := a.deps.Chains.ResolveByName(name)
	if err != nil {
		return clienthttp.Network{}, shared.Mark(err, shared.KindValidation)
	}
	if _, err := contracts.AddressFor(r.ChainID); err != nil {
		return clienthttp.Network{}, shared.Mark(err, shared.KindValidation)
	}
	if err := a.deps.Chains.SwitchChain(ctx, r.NetworkName); err != nil {
		return clienthttp.Network{}, shared.Mark(err, shared.KindNetwork)
	}
	if err := a.activate(); err != nil {
		return clienthttp.Network{}, err
	}

	if a.deps.PrefsPath != "" {
		if err := savePreferences(a.deps.PrefsPath, preferences{ActiveNetwork: r.NetworkName}); err != nil {
			log.Warn("could not save preferences", "path", a.deps.PrefsPath, "error", err)
		}
	}
	return a.Network(), nil
}
