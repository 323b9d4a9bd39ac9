// Package wallet is the local signer: a secp256k1 key kept in a
// password-sealed keystore file.
package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/securefile"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// keystore is the decrypted file content.
type keystore struct {
	Version    int    `json:"version"`
	AddressHex string `json:"address"`
	PrivKeyHex string `json:"priv_key_hex"`
	CreatedAt  string `json:"created_at,omitempty"`
}

type Wallet struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// FromKey wraps an existing key, e.g. a funded dev account.
func FromKey(key *ecdsa.PrivateKey) *Wallet {
	return &Wallet{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

// FromHex parses a hex private key with or without 0x.
func FromHex(s string) (*Wallet, error) {
	b, err := hexutil.Decode(with0x(s))
	if err != nil {
		return nil, errors.Wrap(err, "decode private key")
	}
	if len(b) != 32 {
		return nil, errors.Newf("private key must be 32 bytes, got %d", len(b))
	}
	k, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, errors.Wrap(err, "to ecdsa")
	}
	return FromKey(k), nil
}

func with0x(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s
	}
	return "0x" + s
}

func (w *Wallet) Address() common.Address { return w.address }

// TransactOpts returns signing options for chainID. Context and gas settings
// are left to the caller.
func (w *Wallet) TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "keyed transactor")
	}
	opts.Context = ctx
	return opts, nil
}

// SignHash signs a 32-byte digest with V in {27, 28}.
func (w *Wallet) SignHash(digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, errors.Newf("digest must be 32 bytes, got %d", len(digest))
	}
	sig, err := crypto.Sign(digest, w.key)
	if err != nil {
		return nil, errors.Wrap(err, "sign")
	}
	sig[64] += 27
	return sig, nil
}

// SignTypedData signs an EIP-712 payload like eth_signTypedData_v4 and
// returns the 0x-prefixed signature.
func (w *Wallet) SignTypedData(td apitypes.TypedData) (string, error) {
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return "", errors.Wrap(err, "hash typed data")
	}
	sig, err := w.SignHash(hash)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(sig), nil
}

// Store is a keystore file on disk.
type Store struct {
	Path string
	Opt  securefile.Options
	// ImportKeyHex, when set, seeds a new keystore with this key instead of a
	// generated one. It is ignored once the keystore exists.
	ImportKeyHex string
}

func NewStoreAt(path string) *Store {
	return &Store{
		Path: path,
		Opt: securefile.Options{
			FilePerm:      constants.FilePerm,
			DirectoryPerm: constants.DirectoryPerm,
			AAD:           []byte(constants.WalletAAD),
		},
	}
}

// Ensure opens the keystore, creating it on first use.
func (s *Store) Ensure(password []byte) (*Wallet, error) {
	ks, err := securefile.ReadEncryptedJSON[keystore](s.Path, password, s.Opt)
	if err == nil {
		w, err := FromHex(ks.PrivKeyHex)
		if err != nil {
			return nil, errors.Wrapf(err, "keystore %s", s.Path)
		}
		if ks.AddressHex != "" && common.HexToAddress(ks.AddressHex) != w.Address() {
			return nil, errors.Newf("keystore %s: address does not match key", s.Path)
		}
		if s.ImportKeyHex != "" {
			log.Warn("keystore exists, ignoring imported key", "path", s.Path, "address", w.Address().Hex())
		}
		return w, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrapf(err, "load wallet %s", s.Path)
	}

	w, err := s.newWallet()
	if err != nil {
		return nil, err
	}
	ks = keystore{
		Version:    constants.SchemaV1,
		AddressHex: w.Address().Hex(),
		PrivKeyHex: hexutil.Encode(crypto.FromECDSA(w.key))[2:],
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if err := securefile.WriteEncryptedJSON(s.Path, ks, password, s.Opt); err != nil {
		return nil, err
	}
	log.Info("created wallet", "address", w.Address().Hex(), "path", s.Path)
	return w, nil
}

func (s *Store) newWallet() (*Wallet, error) {
	if s.ImportKeyHex != "" {
		w, err := FromHex(s.ImportKeyHex)
		if err != nil {
			return nil, errors.Wrap(err, "import key")
		}
		return w, nil
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generate key")
	}
	return FromKey(key), nil
}
