package mock

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/binary"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
)

const (
	handleVersion = 0
	maxInputs     = 254
	sigLen        = 65
)

// coprocessorKey signs input proofs the way the input verifier's signers would.
var coprocessorKey = mustKey("fhevm-mock:coprocessor-signer:v1")

func mustKey(seed string) *ecdsa.PrivateKey {
	k, err := crypto.ToECDSA(crypto.Keccak256([]byte(seed)))
	if err != nil {
		panic(err)
	}
	return k
}

// CoprocessorSigner is the address input proofs are signed by.
func CoprocessorSigner() common.Address {
	return crypto.PubkeyToAddress(coprocessorKey.PublicKey)
}

type pending struct {
	value   *big.Int
	fheType ftypes.FheType
}

type inputBuilder struct {
	m        *Instance
	contract common.Address
	user     common.Address
	values   []pending
	err      error
}

func (m *Instance) CreateEncryptedInput(contract, user common.Address) ftypes.InputBuilder {
	return &inputBuilder{m: m, contract: contract, user: user}
}

func (b *inputBuilder) Add8(v uint8) ftypes.InputBuilder {
	if len(b.values) >= maxInputs {
		b.err = errors.Newf("too many encrypted inputs (max %d)", maxInputs)
		return b
	}
	b.values = append(b.values, pending{value: big.NewInt(int64(v)), fheType: ftypes.FheUint8})
	return b
}

func (b *inputBuilder) Encrypt(ctx context.Context) (ftypes.EncryptedInput, error) {
	if b.err != nil {
		return ftypes.EncryptedInput{}, b.err
	}
	if err := ctx.Err(); err != nil {
		return ftypes.EncryptedInput{}, err
	}
	if len(b.values) == 0 {
		return ftypes.EncryptedInput{}, errors.New("encrypted input is empty")
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return ftypes.EncryptedInput{}, errors.Wrap(err, "rand nonce")
	}

	blob := crypto.Keccak256(nonce, b.contract.Bytes(), b.user.Bytes())
	acl := common.HexToAddress(b.m.cfg.ACLContractAddress)

	handles := make([][32]byte, len(b.values))
	for i, p := range b.values {
		h := computeHandle(blob, i, acl, b.m.cfg.ChainID, p.fheType)
		handles[i] = h
		b.m.reg.put(common.Hash(h), record{
			value:    p.value,
			fheType:  p.fheType,
			contract: b.contract,
			user:     b.user,
		})
	}

	proof, err := signProof(handles, b.contract, b.user, b.m.cfg.ChainID)
	if err != nil {
		return ftypes.EncryptedInput{}, err
	}
	return ftypes.EncryptedInput{Handles: handles, InputProof: proof}, nil
}

// computeHandle lays out a handle as hash[0:21] | index | chainID(8) | type | version.
func computeHandle(blob []byte, index int, acl common.Address, chainID uint64, t ftypes.FheType) [32]byte {
	var chainBytes [8]byte
	binary.BigEndian.PutUint64(chainBytes[:], chainID)

	digest := crypto.Keccak256(blob, []byte{byte(index)}, acl.Bytes(), chainBytes[:])

	var h [32]byte
	copy(h[:21], digest[:21])
	h[21] = byte(index)
	copy(h[22:30], chainBytes[:])
	h[30] = byte(t)
	h[31] = handleVersion
	return h
}

func proofDigest(handles [][32]byte, contract, user common.Address, chainID uint64) []byte {
	var chainBytes [8]byte
	binary.BigEndian.PutUint64(chainBytes[:], chainID)

	parts := [][]byte{contract.Bytes(), user.Bytes(), chainBytes[:]}
	for _, h := range handles {
		parts = append(parts, h[:])
	}
	return crypto.Keccak256(parts...)
}

// proof layout: numHandles | numSigners | handles... | signatures...
func signProof(handles [][32]byte, contract, user common.Address, chainID uint64) ([]byte, error) {
	sig, err := crypto.Sign(proofDigest(handles, contract, user, chainID), coprocessorKey)
	if err != nil {
		return nil, errors.Wrap(err, "sign input proof")
	}

	out := make([]byte, 0, 2+32*len(handles)+sigLen)
	out = append(out, byte(len(handles)), 1)
	for _, h := range handles {
		out = append(out, h[:]...)
	}
	return append(out, sig...), nil
}

// VerifyInputProof checks that proof was produced for (contract, user) and
// returns the handles it carries.
func VerifyInputProof(proof []byte, contract, user common.Address, chainID uint64) ([][32]byte, error) {
	if len(proof) < 2 {
		return nil, errors.New("input proof too short")
	}
	n, signers := int(proof[0]), int(proof[1])
	if signers != 1 || len(proof) != 2+32*n+sigLen*signers {
		return nil, errors.New("input proof malformed")
	}

	handles := make([][32]byte, n)
	for i := range handles {
		copy(handles[i][:], proof[2+32*i:2+32*(i+1)])
	}
	sig := proof[2+32*n:]

	pub, err := crypto.SigToPub(proofDigest(handles, contract, user, chainID), sig)
	if err != nil {
		return nil, errors.Wrap(err, "recover input proof signer")
	}
	if crypto.PubkeyToAddress(*pub) != CoprocessorSigner() {
		return nil, errors.New("input proof not signed by coprocessor")
	}
	return handles, nil
}
