package setup

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	clientconfig "github.com/quantumauth-io/private-expense-log/cmd/expense-log-client/config"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/entrystore"
	"github.com/quantumauth-io/private-expense-log/internal/securefile"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	utilsEth "github.com/quantumauth-io/quantum-go-utils/ethrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, backend string) *clientconfig.Config {
	t.Helper()
	return &clientconfig.Config{
		ClientSettings: &clientconfig.ClientSettings{StoreBackend: backend, DataDir: t.TempDir()},
		EthNetworks:    &utilsEth.MultiConfig{ActiveNetwork: "localhost"},
		Relayer:        &clientconfig.RelayerSettings{},
	}
}

func TestPickNetwork(t *testing.T) {
	t.Setenv(securefile.EnvVar, "")

	tests := []struct {
		name     string
		explicit string
		saved    string
		want     string
	}{
		{"config default", "", "", "localhost"},
		{"saved preference", "", "sepolia", "sepolia"},
		{"saved preference no longer configured", "", "mainnet", "localhost"},
		{"explicit setting wins", "localhost", "sepolia", "localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, clientconfig.StoreMemory)
			cfg.ClientSettings.ActiveNetwork = tt.explicit
			prefs := filepath.Join(t.TempDir(), constants.PreferencesFile)
			if tt.saved != "" {
				require.NoError(t, savePreferences(prefs, preferences{ActiveNetwork: tt.saved}))
			}
			got, err := pickNetwork(cfg, prefs, testNetworks)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenStore(t *testing.T) {
	user := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	contract := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	for _, backend := range []string{clientconfig.StoreMemory, clientconfig.StoreFile, clientconfig.StoreBadger} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			store, closeStore, err := openStore(cfg, []byte("pw"))
			require.NoError(t, err)
			defer func() { require.NoError(t, closeStore()) }()

			want := entrystore.Entries{20240115: {Date: 20240115, Category: 1, Level: 2, Emotion: 3}}
			require.NoError(t, store.Save(user, contract, want))
			got, err := store.Load(user, contract)
			require.NoError(t, err)
			assert.Equal(t, []shared.ExpenseEntry{want[20240115]}, got.Sorted())
		})
	}
}

func TestDataPath(t *testing.T) {
	cfg := testConfig(t, clientconfig.StoreMemory)
	p, err := dataPath(cfg, constants.WalletFile)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.ClientSettings.DataDir, constants.WalletFile), p)
}

func TestWalletStore_ImportsKeyFromEnv(t *testing.T) {
	t.Setenv(PrivateKeyEnv, " ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80 ")
	cfg := testConfig(t, clientconfig.StoreMemory)

	ws, err := walletStore(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.ClientSettings.DataDir, constants.WalletFile), ws.Path)

	ws.Opt.KDF = securefile.KDF{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}
	w, err := ws.Ensure([]byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), w.Address())
}

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"yes", true},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.in), func(t *testing.T) {
			got, err := promptYesNoFrom(strings.NewReader(tt.in), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
