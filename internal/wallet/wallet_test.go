package wallet

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/quantumauth-io/private-expense-log/internal/securefile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// first default hardhat account
const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func fastStore(t *testing.T) *Store {
	s := NewStoreAt(filepath.Join(t.TempDir(), "wallet.json"))
	s.Opt.KDF = securefile.KDF{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32}
	return s
}

func TestFromHex(t *testing.T) {
	for _, in := range []string{devKey, "0x" + devKey} {
		w, err := FromHex(in)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), w.Address())
	}
	_, err := FromHex("abcd")
	require.Error(t, err)
}

func TestEnsure(t *testing.T) {
	s := fastStore(t)

	w1, err := s.Ensure([]byte("pw"))
	require.NoError(t, err)
	w2, err := s.Ensure([]byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, w1.Address(), w2.Address())

	_, err = s.Ensure([]byte("wrong"))
	require.ErrorIs(t, err, securefile.ErrInvalidPasswordOrCorrupt)
}

func TestEnsure_ImportKey(t *testing.T) {
	hardhat := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	s := fastStore(t)
	s.ImportKeyHex = "0x" + devKey
	w, err := s.Ensure([]byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, hardhat, w.Address())

	reopened := fastStore(t)
	reopened.Path = s.Path
	w, err = reopened.Ensure([]byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, hardhat, w.Address())

	// an existing keystore wins over a different import key
	reopened.ImportKeyHex = "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	w, err = reopened.Ensure([]byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, hardhat, w.Address())

	bad := fastStore(t)
	bad.ImportKeyHex = "abcd"
	_, err = bad.Ensure([]byte("pw"))
	require.Error(t, err)
}

func TestSignTypedData(t *testing.T) {
	w, err := FromHex(devKey)
	require.NoError(t, err)

	td := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {{Name: "name", Type: "string"}, {Name: "chainId", Type: "uint256"}},
			"Note":         {{Name: "text", Type: "string"}},
		},
		PrimaryType: "Note",
		Domain:      apitypes.TypedDataDomain{Name: "test", ChainId: math.NewHexOrDecimal256(31337)},
		Message:     apitypes.TypedDataMessage{"text": "hello"},
	}
	sigHex, err := w.SignTypedData(td)
	require.NoError(t, err)

	sig, err := hexutil.Decode(sigHex)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	assert.Contains(t, []byte{27, 28}, sig[64])

	hash, _, err := apitypes.TypedDataAndHash(td)
	require.NoError(t, err)
	sig[64] -= 27
	pub, err := crypto.SigToPub(hash, sig)
	require.NoError(t, err)
	assert.Equal(t, w.Address(), crypto.PubkeyToAddress(*pub))
}

func TestTransactOpts(t *testing.T) {
	w, err := FromHex(devKey)
	require.NoError(t, err)
	opts, err := w.TransactOpts(context.Background(), big.NewInt(31337))
	require.NoError(t, err)
	assert.Equal(t, w.Address(), opts.From)
	assert.NotNil(t, opts.Signer)
}

func TestSignHashLength(t *testing.T) {
	w, err := FromHex(devKey)
	require.NoError(t, err)
	_, err = w.SignHash([]byte{1, 2, 3})
	require.Error(t, err)
}
