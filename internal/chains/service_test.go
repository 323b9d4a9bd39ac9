package chains

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	utilsEth "github.com/quantumauth-io/quantum-go-utils/ethrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNetworks = []Network{
	{Name: "localhost", ChainID: 31337, RPCs: []utilsEth.RPC{{Name: "hardhat", URL: "http://127.0.0.1:8545"}}},
	{Name: "sepolia", ChainID: 11155111, ChainIDHex: "0xaa36a7", RPCs: []utilsEth.RPC{
		{Name: "Public", URL: "https://rpc.sepolia.org"},
		{Name: "Infura", URL: "https://sepolia.infura.io/v3/key"},
	}},
	{Name: "empty", ChainID: 5},
}

type dialRecorder struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (d *dialRecorder) dial(_ context.Context, url string) (*Clients, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	d.urls = append(d.urls, url)
	return &Clients{}, nil
}

func newTestService(t *testing.T, pref string) (*Service, *dialRecorder) {
	t.Helper()
	d := &dialRecorder{}
	s, err := NewWithDialer(context.Background(), Config{
		Networks:             testNetworks,
		DefaultActiveNetwork: "localhost",
		PreferredRPCName:     pref,
	}, d.dial)
	require.NoError(t, err)
	return s, d
}

func TestNew_ActivatesDefault(t *testing.T) {
	s, d := newTestService(t, "")
	a, err := s.Active()
	require.NoError(t, err)
	assert.Equal(t, "localhost", a.NetworkName)
	assert.Equal(t, uint64(31337), a.ChainID)
	assert.Equal(t, "http://127.0.0.1:8545", a.Provider().URL)
	assert.Equal(t, []string{"http://127.0.0.1:8545"}, d.urls)
}

func TestNew_Errors(t *testing.T) {
	_, err := NewWithDialer(context.Background(), Config{DefaultActiveNetwork: "x"}, nil)
	require.Error(t, err)

	_, err = NewWithDialer(context.Background(), Config{Networks: testNetworks}, nil)
	require.Error(t, err)

	d := &dialRecorder{err: errors.New("refused")}
	_, err = NewWithDialer(context.Background(), Config{Networks: testNetworks, DefaultActiveNetwork: "localhost"}, d.dial)
	require.Error(t, err)
}

func TestSwitchChain(t *testing.T) {
	ctx := context.Background()
	s, d := newTestService(t, "infura")

	require.NoError(t, s.SwitchChain(ctx, "Sepolia"))
	a, err := s.Active()
	require.NoError(t, err)
	assert.Equal(t, "Infura", a.RPCName)

	name, err := s.SwitchChainByID(ctx, 31337)
	require.NoError(t, err)
	assert.Equal(t, "localhost", name)

	require.NoError(t, s.SwitchChain(ctx, "sepolia"))
	assert.Len(t, d.urls, 2, "clients are cached per network")

	require.Error(t, s.SwitchChain(ctx, "mainnet"))
	require.Error(t, s.SwitchChain(ctx, "empty"))
	_, err = s.SwitchChainByID(ctx, 1)
	require.Error(t, err)
}

func TestResolveByChainIDHex(t *testing.T) {
	s, _ := newTestService(t, "")
	tests := []struct {
		in   string
		want string
	}{
		{"0xaa36a7", "sepolia"},
		{"0xAA36A7", "sepolia"},
		{"0x7a69", "localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r, err := s.ResolveByChainIDHex(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.NetworkName)
		})
	}
	_, err := s.ResolveByChainIDHex("")
	require.Error(t, err)
}

func TestClose(t *testing.T) {
	s, _ := newTestService(t, "")
	s.Close()
	_, err := s.Active()
	require.Error(t, err)
}

func TestNamesAndProvider(t *testing.T) {
	s, _ := newTestService(t, "")
	assert.Equal(t, []string{"localhost", "sepolia", "empty"}, s.Names())

	a, err := s.Active()
	require.NoError(t, err)
	p := a.Provider()
	assert.Nil(t, p.Provider)
	assert.False(t, p.IsZero())
}
