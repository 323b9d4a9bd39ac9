package expenselog

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/mock"
	"github.com/stretchr/testify/require"
)

var (
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	otherAddr    = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

// rpcErr mimics a JSON-RPC error object, optionally with revert data.
type rpcErr struct {
	code int
	msg  string
	data any
}

func (e *rpcErr) Error() string  { return e.msg }
func (e *rpcErr) ErrorCode() int { return e.code }
func (e *rpcErr) ErrorData() any { return e.data }

func revertWith(t testing.TB, reason string) error {
	t.Helper()
	str, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: str}}.Pack(reason)
	require.NoError(t, err)
	data := append([]byte{0x08, 0xc3, 0x79, 0xa0}, packed...)
	return &rpcErr{code: 3, msg: "execution reverted", data: hexutil.Encode(data)}
}

// fakeContract stores entries in memory and checks input proofs the way the
// deployed contract's FHE.fromExternal does.
type fakeContract struct {
	t       testing.TB
	chainID uint64
	address common.Address

	mu      sync.Mutex
	entries map[common.Address]map[uint32]StoredEntry
	order   map[common.Address][]uint32
	now     uint64

	addErr  error
	readErr map[uint32]error
	listErr error
	calls   int
}

func newFakeContract(t testing.TB) *fakeContract {
	return &fakeContract{
		t:       t,
		chainID: constants.LocalChainID,
		address: contractAddr,
		entries: map[common.Address]map[uint32]StoredEntry{},
		order:   map[common.Address][]uint32{},
		readErr: map[uint32]error{},
		now:     1_700_000_000,
	}
}

func (c *fakeContract) put(user common.Address, date uint32, e StoredEntry) {
	if c.entries[user] == nil {
		c.entries[user] = map[uint32]StoredEntry{}
	}
	c.entries[user][date] = e
	c.order[user] = append(c.order[user], date)
}

func (c *fakeContract) EntryExists(_ context.Context, user common.Address, date uint32) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[user][date]
	return ok, nil
}

func (c *fakeContract) GetEntry(_ context.Context, user common.Address, date uint32) (StoredEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readErr[date]; err != nil {
		return StoredEntry{}, err
	}
	e, ok := c.entries[user][date]
	if !ok {
		return StoredEntry{}, revertWith(c.t, "Entry does not exist")
	}
	return e, nil
}

func (c *fakeContract) GetEntryCount(_ context.Context, user common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uint64(len(c.entries[user])), nil
}

func (c *fakeContract) GetLastEntryDate(_ context.Context, user common.Address) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var last uint32
	for d := range c.entries[user] {
		if d > last {
			last = d
		}
	}
	return last, nil
}

func (c *fakeContract) GetEntryDatesInRange(_ context.Context, user common.Address, start, end uint32) ([]uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return nil, c.listErr
	}
	var out []uint32
	for _, d := range c.order[user] {
		if d >= start && d <= end {
			out = append(out, d)
		}
	}
	return out, nil
}

func (c *fakeContract) AddEntry(_ context.Context, opts *bind.TransactOpts, in AddEntryInput) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	if c.addErr != nil {
		return nil, c.addErr
	}
	if opts.GasLimit != constants.AddEntryGasLimit {
		return nil, errors.Newf("unexpected gas limit %d", opts.GasLimit)
	}
	if in.Date == 0 {
		return nil, revertWith(c.t, ReasonInvalidDate)
	}
	if _, ok := c.entries[opts.From][in.Date]; ok {
		return nil, revertWith(c.t, ReasonEntryExists)
	}
	for _, f := range []struct {
		handle [32]byte
		proof  []byte
	}{
		{in.Category, in.CategoryProof},
		{in.Level, in.LevelProof},
		{in.Emotion, in.EmotionProof},
	} {
		handles, err := mock.VerifyInputProof(f.proof, c.address, opts.From, c.chainID)
		if err != nil {
			return nil, revertWith(c.t, "InvalidInputProof")
		}
		if len(handles) != 1 || handles[0] != f.handle {
			return nil, revertWith(c.t, "InvalidInputHandle")
		}
	}

	c.now++
	c.put(opts.From, in.Date, StoredEntry{
		Category:  in.Category,
		Level:     in.Level,
		Emotion:   in.Emotion,
		Timestamp: c.now,
	})
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

type keySigner struct {
	key       *ecdsa.PrivateKey
	signErr   error
	signCalls int
}

func newKeySigner(t testing.TB) *keySigner {
	t.Helper()
	k, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &keySigner{key: k}
}

func (s *keySigner) Address() common.Address { return crypto.PubkeyToAddress(s.key.PublicKey) }

func (s *keySigner) TransactOpts(_ context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	return bind.NewKeyedTransactorWithChainID(s.key, chainID)
}

func (s *keySigner) SignTypedData(td apitypes.TypedData) (string, error) {
	s.signCalls++
	if s.signErr != nil {
		return "", s.signErr
	}
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return "", err
	}
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return "", err
	}
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

type staticSource struct{ inst ftypes.Instance }

func (s staticSource) Instance() (ftypes.Instance, bool) { return s.inst, s.inst != nil }

type chainIDProvider struct{}

func (chainIDProvider) CallContext(_ context.Context, result any, _ string, _ ...any) error {
	*(result.(*string)) = "0x7a69"
	return nil
}

func newMock(t testing.TB) *mock.Instance {
	t.Helper()
	m, err := mock.Create(context.Background(), chainIDProvider{}, nil, mock.Config{
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
	return m
}

// signedOnly hides the direct decryption path.
type signedOnly struct {
	ftypes.Instance
	ftypes.KeypairGenerator
	ftypes.EIP712Creator
}

func withoutDirect(m *mock.Instance) signedOnly {
	return signedOnly{Instance: m, KeypairGenerator: m, EIP712Creator: m}
}

// brokenDirect has a direct path that always fails.
type brokenDirect struct {
	signedOnly
	calls int
}

func (b *brokenDirect) UserDecryptEuint(context.Context, ftypes.FheType, string, common.Address, common.Address) (*big.Int, error) {
	b.calls++
	return nil, errors.New("direct decryption unavailable")
}

// bare exposes only the required Instance methods.
type bare struct{ ftypes.Instance }
