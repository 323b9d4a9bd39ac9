// Package chains owns the node connections for the configured networks and
// tracks which one is active.
package chains

import (
	"context"
	"math/big"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm"
	utilsEth "github.com/quantumauth-io/quantum-go-utils/ethrpc"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

type Network struct {
	Name       string
	ChainID    uint64
	ChainIDHex string
	RPCs       []utilsEth.RPC
}

// NetworksFromConfig flattens the configured networks, sorted by name.
func NetworksFromConfig(mc *utilsEth.MultiConfig) []Network {
	if mc == nil {
		return nil
	}
	out := make([]Network, 0, len(mc.Networks))
	for name, n := range mc.Networks {
		out = append(out, Network{
			Name:       name,
			ChainID:    n.ChainID,
			ChainIDHex: n.ChainIDHex,
			RPCs:       n.RPCs,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type Config struct {
	Networks             []Network
	DefaultActiveNetwork string
	PreferredRPCName     string
}

// Resolved is one network with the RPC endpoint picked for it.
type Resolved struct {
	NetworkName string
	ChainID     uint64
	ChainIDHex  string
	RPCName     string
	URL         string
}

type Clients struct {
	RPC *rpc.Client
	Eth *ethclient.Client
}

// Active is the network currently in use.
type Active struct {
	Resolved
	Clients *Clients
}

// Provider is the active connection as the FHE session sees it.
func (a *Active) Provider() fhevm.ProviderRef {
	if a.Clients == nil || a.Clients.RPC == nil {
		return fhevm.ProviderRef{URL: a.URL}
	}
	return fhevm.ProviderRef{URL: a.URL, Provider: a.Clients.RPC}
}

type DialFunc func(ctx context.Context, url string) (*Clients, error)

type Service struct {
	cfg    Config
	dial   DialFunc
	active atomic.Pointer[Active]

	mu        sync.Mutex
	byNetwork map[string]*Clients
}

func New(ctx context.Context, cfg Config) (*Service, error) {
	return NewWithDialer(ctx, cfg, dialClients)
}

func NewWithDialer(ctx context.Context, cfg Config, dial DialFunc) (*Service, error) {
	if len(cfg.Networks) == 0 {
		return nil, errors.New("no networks configured")
	}
	if strings.TrimSpace(cfg.DefaultActiveNetwork) == "" {
		return nil, errors.New("active network is empty")
	}
	s := &Service{cfg: cfg, dial: dial, byNetwork: make(map[string]*Clients)}
	if err := s.SwitchChain(ctx, cfg.DefaultActiveNetwork); err != nil {
		return nil, err
	}
	return s, nil
}

func dialClients(ctx context.Context, url string) (*Clients, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return &Clients{RPC: rc, Eth: ethclient.NewClient(rc)}, nil
}

func (s *Service) Active() (*Active, error) {
	a := s.active.Load()
	if a == nil {
		return nil, errors.New("no active chain")
	}
	return a, nil
}

// SwitchChain makes networkName active; it is a no-op when already active.
func (s *Service) SwitchChain(ctx context.Context, networkName string) error {
	networkName = strings.TrimSpace(networkName)
	if cur := s.active.Load(); cur != nil && strings.EqualFold(cur.NetworkName, networkName) {
		return nil
	}
	resolved, err := s.ResolveByName(networkName)
	if err != nil {
		return err
	}
	return s.activate(ctx, resolved)
}

func (s *Service) SwitchChainByID(ctx context.Context, chainID uint64) (string, error) {
	resolved, err := s.ResolveByChainID(chainID)
	if err != nil {
		return "", err
	}
	if err := s.SwitchChain(ctx, resolved.NetworkName); err != nil {
		return "", err
	}
	return resolved.NetworkName, nil
}

func (s *Service) activate(ctx context.Context, r Resolved) error {
	clients, err := s.clientsFor(ctx, r)
	if err != nil {
		return err
	}
	s.active.Store(&Active{Resolved: r, Clients: clients})
	log.Info("active chain", "network", r.NetworkName, "chain_id", r.ChainID, "rpc", r.RPCName)
	return nil
}

// clientsFor dials outside the lock and keeps the first client on a race.
func (s *Service) clientsFor(ctx context.Context, r Resolved) (*Clients, error) {
	key := strings.ToLower(r.NetworkName)

	s.mu.Lock()
	if c := s.byNetwork[key]; c != nil {
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	dialed, err := s.dial(ctx, r.URL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.byNetwork[key]; c != nil {
		closeClients(dialed)
		return c, nil
	}
	s.byNetwork[key] = dialed
	return dialed, nil
}

// Close closes every cached connection.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, c := range s.byNetwork {
		closeClients(c)
		delete(s.byNetwork, k)
	}
	s.active.Store(nil)
}

func closeClients(c *Clients) {
	if c != nil && c.RPC != nil {
		c.RPC.Close()
	}
}

// Names lists the configured networks in config order.
func (s *Service) Names() []string {
	out := make([]string, 0, len(s.cfg.Networks))
	for _, n := range s.cfg.Networks {
		out = append(out, n.Name)
	}
	return out
}

func (s *Service) ResolveByName(networkName string) (Resolved, error) {
	if networkName == "" {
		return Resolved{}, errors.New("network name is empty")
	}
	for _, n := range s.cfg.Networks {
		if strings.EqualFold(n.Name, networkName) {
			return s.resolve(n)
		}
	}
	return Resolved{}, errors.Newf("unknown network %q", networkName)
}

func (s *Service) ResolveByChainID(chainID uint64) (Resolved, error) {
	if chainID == 0 {
		return Resolved{}, errors.New("chain id is 0")
	}
	return s.ResolveByChainIDHex(utilsEth.BigToHexQuantity(new(big.Int).SetUint64(chainID)))
}

// ResolveByChainIDHex matches either the configured hex id or the decimal id.
func (s *Service) ResolveByChainIDHex(chainIDHex string) (Resolved, error) {
	want := strings.ToLower(utilsEth.NormalizeHex0x(strings.TrimSpace(chainIDHex)))
	if want == "" || want == "0x" {
		return Resolved{}, errors.New("missing chain id")
	}
	for _, n := range s.cfg.Networks {
		if n.ChainIDHex != "" && strings.ToLower(utilsEth.NormalizeHex0x(n.ChainIDHex)) == want {
			return s.resolve(n)
		}
		if n.ChainID != 0 && strings.ToLower(utilsEth.BigToHexQuantity(new(big.Int).SetUint64(n.ChainID))) == want {
			return s.resolve(n)
		}
	}
	return Resolved{}, errors.Newf("chain %s not configured", want)
}

// resolve picks the preferred RPC by name, else the first one.
func (s *Service) resolve(n Network) (Resolved, error) {
	if len(n.RPCs) == 0 {
		return Resolved{}, errors.Newf("network %q has no RPCs configured", n.Name)
	}
	pick := n.RPCs[0]
	if pref := strings.TrimSpace(s.cfg.PreferredRPCName); pref != "" {
		for _, r := range n.RPCs {
			if strings.EqualFold(strings.TrimSpace(r.Name), pref) {
				pick = r
				break
			}
		}
	}
	if strings.TrimSpace(pick.URL) == "" {
		return Resolved{}, errors.Newf("network %q rpc %q url is empty", n.Name, pick.Name)
	}
	return Resolved{
		NetworkName: n.Name,
		ChainID:     n.ChainID,
		ChainIDHex:  n.ChainIDHex,
		RPCName:     pick.Name,
		URL:         pick.URL,
	}, nil
}
