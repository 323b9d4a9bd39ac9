package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/securefile"
	utilsconfig "github.com/quantumauth-io/quantum-go-utils/config"
	utilsEth "github.com/quantumauth-io/quantum-go-utils/ethrpc"
)

//go:embed config.yaml
var EmbeddedConfigYAML []byte

// Entry store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreBadger = "badger"
)

type ClientSettings struct {
	LocalHost      string
	Port           string
	ActiveNetwork  string
	StoreBackend   string
	DataDir        string
	AllowedOrigins []string
}

type RelayerSettings struct {
	URL string
}

type Config struct {
	ClientSettings *ClientSettings
	EthNetworks    *utilsEth.MultiConfig `mapstructure:"Ethereum"`
	// Contracts and MockChains are keyed by decimal chain id.
	Contracts  map[string]string
	MockChains map[string]string
	Relayer    *RelayerSettings
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}

	cfg, err := utilsconfig.ParseConfigWithEmbedded[Config](paths, EmbeddedConfigYAML)
	if err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills defaults and canonicalizes addresses.
func (c *Config) Normalize() error {
	if c.ClientSettings == nil {
		c.ClientSettings = &ClientSettings{}
	}
	if c.Relayer == nil {
		c.Relayer = &RelayerSettings{}
	}
	if c.EthNetworks == nil || len(c.EthNetworks.Networks) == 0 {
		return errors.New("config: no Ethereum networks configured")
	}
	c.EthNetworks.Normalize()

	cs := c.ClientSettings
	if strings.TrimSpace(cs.LocalHost) == "" {
		cs.LocalHost = "127.0.0.1"
	}
	if strings.TrimSpace(cs.Port) == "" {
		cs.Port = "6138"
	}
	cs.StoreBackend = strings.ToLower(strings.TrimSpace(cs.StoreBackend))
	switch cs.StoreBackend {
	case "":
		cs.StoreBackend = StoreFile
	case StoreMemory, StoreFile, StoreBadger:
	default:
		return errors.Newf("config: invalid StoreBackend %q (allowed: memory, file, badger)", cs.StoreBackend)
	}

	out := make(map[string]string, len(c.Contracts))
	for k, raw := range c.Contracts {
		id, err := parseChainKey(k)
		if err != nil {
			return errors.Wrap(err, "config: Contracts")
		}
		a := strings.TrimSpace(raw)
		if !common.IsHexAddress(a) {
			return errors.Newf("config: Contracts[%d] invalid address %q", id, raw)
		}
		out[strconv.FormatUint(id, 10)] = common.HexToAddress(a).Hex()
	}
	c.Contracts = out

	for k, u := range c.MockChains {
		if _, err := parseChainKey(k); err != nil {
			return errors.Wrap(err, "config: MockChains")
		}
		if strings.TrimSpace(u) == "" {
			return errors.Newf("config: MockChains[%s] has an empty RPC URL", k)
		}
	}
	return nil
}

func parseChainKey(k string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(k), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Newf("invalid chain id %q", k)
	}
	return id, nil
}

// ContractAddresses returns the configured deployments by chain id.
func (c *Config) ContractAddresses() map[uint64]common.Address {
	out := make(map[uint64]common.Address, len(c.Contracts))
	for k, a := range c.Contracts {
		if id, err := parseChainKey(k); err == nil {
			out[id] = common.HexToAddress(a)
		}
	}
	return out
}

// MockChainMap returns the mock chain overrides by chain id.
func (c *Config) MockChainMap() map[uint64]string {
	out := make(map[uint64]string, len(c.MockChains))
	for k, u := range c.MockChains {
		if id, err := parseChainKey(k); err == nil {
			out[id] = strings.TrimSpace(u)
		}
	}
	return out
}

// ActiveNetwork picks the network to start on: the explicit setting, then
// the EL_ENV default, then the Ethereum section's own choice.
func (c *Config) ActiveNetwork() (string, error) {
	if n := strings.TrimSpace(c.ClientSettings.ActiveNetwork); n != "" {
		return n, nil
	}
	env, err := securefile.EnvFolder()
	if err != nil {
		return "", err
	}
	switch env {
	case "local":
		return "localhost", nil
	case "develop":
		return "sepolia", nil
	}
	return c.EthNetworks.ActiveNetwork, nil
}

// InjectInfuraKeyFromEnv adds an Infura RPC to every public network when
// INFURA_API_KEY is set. The hardhat network is left alone.
func (c *Config) InjectInfuraKeyFromEnv() error {
	key := strings.TrimSpace(os.Getenv("INFURA_API_KEY"))
	if key == "" {
		return nil
	}
	return c.InjectInfuraKey(key)
}

func (c *Config) InjectInfuraKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("infura api key is empty")
	}

	for netName, net := range c.EthNetworks.Networks {
		if net.ChainID == constants.LocalChainID {
			continue
		}
		rpcURL := fmt.Sprintf("https://%s.infura.io/v3/%s", netName, key)

		replaced := false
		for i := range net.RPCs {
			if strings.EqualFold(net.RPCs[i].Name, "Infura") {
				net.RPCs[i].URL = rpcURL
				replaced = true
			}
		}
		if !replaced {
			net.RPCs = append(net.RPCs, utilsEth.RPC{Name: "Infura", URL: rpcURL})
		}

		// map values are copies
		c.EthNetworks.Networks[netName] = net
	}
	return nil
}
