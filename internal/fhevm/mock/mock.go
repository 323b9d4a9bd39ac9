// Package mock is a local stand-in for the relayer-backed FHE instance, used
// against development nodes that expose fhevm_relayer_metadata.
//
// Cleartexts and decrypt rights are kept in an in-process Registry and input
// proofs are signed by CoprocessorSigner, so handles do not survive a restart
// and proofs are only accepted by verifiers that trust that signer.
package mock

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/schemes"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
)

const kemScheme = "ML-KEM-768"

// Provider is the RPC capability the mock reads chain state through.
type Provider interface {
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

type Config struct {
	ACLContractAddress                        string
	ChainID                                   uint64
	GatewayChainID                            uint64
	InputVerifierContractAddress              string
	KMSContractAddress                        string
	VerifyingContractAddressDecryption        string
	VerifyingContractAddressInputVerification string

	Registry *Registry
}

type Instance struct {
	cfg    Config
	reg    *Registry
	scheme kem.Scheme
	now    func() time.Time

	publicKey    ftypes.PublicKey
	publicParams ftypes.PublicParam
}

var (
	_ ftypes.Instance         = (*Instance)(nil)
	_ ftypes.DirectDecrypter  = (*Instance)(nil)
	_ ftypes.KeypairGenerator = (*Instance)(nil)
	_ ftypes.EIP712Creator    = (*Instance)(nil)
)

// Create validates cfg and, when read is set, checks the node reports cfg.ChainID.
// write is accepted for parity with the vendor factory; transactions go
// through the expense contract binding instead.
func Create(ctx context.Context, read Provider, write Provider, cfg Config) (*Instance, error) {
	_ = write

	addrs := map[string]string{
		"aclContractAddress":                        cfg.ACLContractAddress,
		"inputVerifierContractAddress":              cfg.InputVerifierContractAddress,
		"kmsContractAddress":                        cfg.KMSContractAddress,
		"verifyingContractAddressDecryption":        cfg.VerifyingContractAddressDecryption,
		"verifyingContractAddressInputVerification": cfg.VerifyingContractAddressInputVerification,
	}
	for name, a := range addrs {
		if !common.IsHexAddress(a) {
			return nil, errors.Newf("mock fhevm: invalid %s %q", name, a)
		}
	}
	if cfg.ChainID == 0 {
		return nil, errors.New("mock fhevm: chain id is zero")
	}
	if cfg.GatewayChainID == 0 {
		cfg.GatewayChainID = constants.GatewayChainID
	}

	if read != nil {
		var raw string
		if err := read.CallContext(ctx, &raw, "eth_chainId"); err != nil {
			return nil, errors.Wrap(err, "mock fhevm: eth_chainId")
		}
		got, err := hexutil.DecodeUint64(strings.ToLower(raw))
		if err != nil {
			return nil, errors.Wrapf(err, "mock fhevm: parse chain id %q", raw)
		}
		if got != cfg.ChainID {
			return nil, errors.Newf("mock fhevm: node chain id %d does not match config %d", got, cfg.ChainID)
		}
	}

	reg := cfg.Registry
	if reg == nil {
		reg = DefaultRegistry
	}

	scheme := schemes.ByName(kemScheme)
	if scheme == nil {
		return nil, errors.Newf("mock fhevm: kem scheme %s unavailable", kemScheme)
	}

	acl := common.HexToAddress(cfg.ACLContractAddress)
	return &Instance{
		cfg:    cfg,
		reg:    reg,
		scheme: scheme,
		now:    time.Now,
		publicKey: ftypes.PublicKey{
			ID:   "mock-fhe-public-key",
			Data: crypto.Keccak256(acl.Bytes(), []byte("public-key")),
		},
		publicParams: ftypes.PublicParam{
			PublicParamsID: "mock-crs-2048",
			PublicParams:   crypto.Keccak256(acl.Bytes(), []byte("crs-2048")),
		},
	}, nil
}

func (m *Instance) Config() Config {
	return m.cfg
}

func (m *Instance) Registry() *Registry {
	return m.reg
}

func (m *Instance) GetPublicKey() *ftypes.PublicKey {
	pk := m.publicKey
	return &pk
}

func (m *Instance) GetPublicParams(size int) *ftypes.PublicParam {
	if size != constants.PublicParamsSize {
		return nil
	}
	p := m.publicParams
	return &p
}

// UserDecryptEuint is the direct single-handle path.
func (m *Instance) UserDecryptEuint(ctx context.Context, t ftypes.FheType, handle string, contract, user common.Address) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h, err := parseHandle(handle)
	if err != nil {
		return nil, err
	}
	rec, err := m.authorize(h, contract, user)
	if err != nil {
		return nil, err
	}
	if rec.fheType != t {
		return nil, errors.Newf("handle %s holds %s, not %s", handle, rec.fheType, t)
	}
	return new(big.Int).Set(rec.value), nil
}
