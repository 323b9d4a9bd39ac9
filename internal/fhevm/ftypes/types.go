// Package ftypes holds the capability contract of an FHE instance shared by
// the relayer SDK adapter, the local mock and the expense facade.
package ftypes

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

type FheType uint8

const (
	FheBool    FheType = 0
	FheUint8   FheType = 2
	FheUint16  FheType = 3
	FheUint32  FheType = 4
	FheUint64  FheType = 5
	FheAddress FheType = 7
)

func (t FheType) String() string {
	switch t {
	case FheBool:
		return "ebool"
	case FheUint8:
		return "euint8"
	case FheUint16:
		return "euint16"
	case FheUint32:
		return "euint32"
	case FheUint64:
		return "euint64"
	case FheAddress:
		return "eaddress"
	default:
		return fmt.Sprintf("fhetype(%d)", uint8(t))
	}
}

// PublicKey is the network FHE public key.
type PublicKey struct {
	ID   string `json:"id"`
	Data []byte `json:"data"`
}

// PublicParam is one CRS entry of PublicParams.
type PublicParam struct {
	PublicParamsID string `json:"publicParamsId"`
	PublicParams   []byte `json:"publicParams"`
}

// PublicParams is keyed by parameter size; only "2048" is ever used.
type PublicParams map[string]PublicParam

type EncryptedInput struct {
	Handles    [][32]byte
	InputProof []byte
}

type Keypair struct {
	PublicKey  string
	PrivateKey string
}

type HandleContractPair struct {
	Handle          string
	ContractAddress common.Address
}

// InputBuilder accumulates plaintext values bound to one (contract, user) pair.
type InputBuilder interface {
	Add8(v uint8) InputBuilder
	Encrypt(ctx context.Context) (EncryptedInput, error)
}

// Instance is a ready-to-use FHE handle.
type Instance interface {
	CreateEncryptedInput(contract, user common.Address) InputBuilder
	UserDecrypt(
		ctx context.Context,
		pairs []HandleContractPair,
		privateKey, publicKey, signature string,
		contractAddresses []common.Address,
		user common.Address,
		startTimestamp, durationDays string,
	) (map[string]*big.Int, error)
	GetPublicKey() *PublicKey
	GetPublicParams(size int) *PublicParam
}

// KeypairGenerator is optional; instances without it cannot run the signed
// batch decryption path.
type KeypairGenerator interface {
	GenerateKeypair() (Keypair, error)
}

// EIP712Creator builds the typed-data authorization for a batch decrypt.
type EIP712Creator interface {
	CreateEIP712(publicKey string, contractAddresses []common.Address, startTimestamp, durationDays string) (apitypes.TypedData, error)
}

// DirectDecrypter decrypts a single handle without an explicit signature.
type DirectDecrypter interface {
	UserDecryptEuint(ctx context.Context, t FheType, handle string, contract, user common.Address) (*big.Int, error)
}

// HandleHex renders a handle as 0x-prefixed 32-byte hex.
func HandleHex(h [32]byte) string {
	return "0x" + hex.EncodeToString(h[:])
}

// PadHandle normalizes a handle string to 0x + 64 lowercase hex digits.
func PadHandle(h string) (string, error) {
	s := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(h), "0x"), "0X")
	if len(s) > 64 {
		return "", errors.Newf("handle %q longer than 32 bytes", h)
	}
	if _, err := hex.DecodeString(strings.Repeat("0", len(s)%2) + s); err != nil {
		return "", errors.Wrapf(err, "handle %q is not hex", h)
	}
	return "0x" + strings.Repeat("0", 64-len(s)) + strings.ToLower(s), nil
}

// HandleFromBig converts a handle returned as an integer into hex form.
func HandleFromBig(v *big.Int) string {
	var out [32]byte
	if v != nil {
		v.FillBytes(out[:])
	}
	return HandleHex(out)
}
