package http

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/entrystore"
	"github.com/quantumauth-io/private-expense-log/internal/expenselog"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/mock"
	"github.com/quantumauth-io/private-expense-log/internal/session"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/quantumauth-io/private-expense-log/internal/wallet"
	"github.com/stretchr/testify/require"
)

const hardhatKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

type memContract struct {
	mu      sync.Mutex
	entries map[uint32]expenselog.StoredEntry
}

func newMemContract() *memContract {
	return &memContract{entries: map[uint32]expenselog.StoredEntry{}}
}

func (c *memContract) EntryExists(_ context.Context, _ common.Address, date uint32) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[date]
	return ok, nil
}

func (c *memContract) GetEntry(_ context.Context, _ common.Address, date uint32) (expenselog.StoredEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[date]
	if !ok {
		return expenselog.StoredEntry{}, errors.New("execution reverted: Entry does not exist")
	}
	return e, nil
}

func (c *memContract) GetEntryCount(_ context.Context, _ common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint64(len(c.entries)), nil
}

func (c *memContract) GetLastEntryDate(_ context.Context, _ common.Address) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var last uint32
	for d := range c.entries {
		last = max(last, d)
	}
	return last, nil
}

func (c *memContract) GetEntryDatesInRange(_ context.Context, _ common.Address, start, end uint32) ([]uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := []uint32{}
	for d := range c.entries {
		if d >= start && d <= end {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (c *memContract) AddEntry(_ context.Context, _ *bind.TransactOpts, in expenselog.AddEntryInput) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[in.Date]; ok {
		return nil, errors.New("execution reverted: " + expenselog.ReasonEntryExists)
	}
	c.entries[in.Date] = expenselog.StoredEntry{
		Category:  in.Category,
		Level:     in.Level,
		Emotion:   in.Emotion,
		Timestamp: uint64(1_700_000_000 + len(c.entries)),
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

type chainIDProvider struct{}

func (chainIDProvider) CallContext(_ context.Context, result any, _ string, _ ...any) error {
	*(result.(*string)) = "0x7a69"
	return nil
}

// mockCreator hands every session generation the same mock instance.
type mockCreator struct{ inst ftypes.Instance }

func (m mockCreator) Create(context.Context, fhevm.Options) (ftypes.Instance, error) {
	return m.inst, nil
}

type fakeBackend struct {
	sess    *session.Session
	svc     *expenselog.Service
	account common.Address
	network Network
}

func (b *fakeBackend) Session() *session.Session     { return b.sess }
func (b *fakeBackend) Expenses() *expenselog.Service { return b.svc }
func (b *fakeBackend) Account() common.Address       { return b.account }
func (b *fakeBackend) Network() Network              { return b.network }
func (b *fakeBackend) Networks() []string            { return []string{"localhost", "sepolia"} }

func (b *fakeBackend) SwitchNetwork(_ context.Context, name string) (Network, error) {
	if name != b.network.Name {
		return Network{}, shared.Mark(errors.Newf("unknown network %q", name), shared.KindValidation)
	}
	return b.network, nil
}

func newBackend(t *testing.T) *fakeBackend {
	t.Helper()

	inst, err := mock.Create(context.Background(), chainIDProvider{}, nil, mock.Config{
		ACLContractAddress:                        "0x50157CFfD6bBFA2DECe204a89ec419c23ef5755D",
		ChainID:                                   constants.LocalChainID,
		GatewayChainID:                            constants.GatewayChainID,
		InputVerifierContractAddress:              "0x901F8942346f7AB3a01F6D7613119Bca447Bb030",
		KMSContractAddress:                        "0x1364cBBf2cDF5032C47d8226a6f6FBD2AFCDacAC",
		VerifyingContractAddressDecryption:        constants.VerifyingContractDecryption,
		VerifyingContractAddressInputVerification: constants.VerifyingContractInputVerification,
		Registry:                                  mock.NewRegistry(),
	})
	require.NoError(t, err)

	sess := session.New(mockCreator{inst: inst}, nil)
	t.Cleanup(sess.Close)
	sess.Configure(fhevm.ProviderRef{URL: constants.LocalRPCURL}, constants.LocalChainID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := sess.Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, session.StatusReady, snap.Status)

	w, err := wallet.FromHex(hardhatKey)
	require.NoError(t, err)

	svc := expenselog.New(expenselog.Deps{
		Session:         sess,
		Contract:        newMemContract(),
		Signer:          w,
		ContractAddress: contractAddr,
		ChainID:         constants.LocalChainID,
		Cache:           entrystore.NewMemoryStore(),
	})

	return &fakeBackend{
		sess:    sess,
		svc:     svc,
		account: w.Address(),
		network: Network{
			Name:     "localhost",
			ChainID:  constants.LocalChainID,
			RPC:      constants.LocalRPCURL,
			Contract: contractAddr.Hex(),
			Mock:     true,
		},
	}
}
