package mock

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	eip712Name        = "Decryption"
	eip712Version     = "1"
	eip712PrimaryType = "UserDecryptRequestVerification"
	reencryptInfo     = "fhevm-mock:user-decrypt:v1"
)

// GenerateKeypair returns an ephemeral ML-KEM keypair, hex encoded without 0x.
func (m *Instance) GenerateKeypair() (ftypes.Keypair, error) {
	pk, sk, err := m.scheme.GenerateKeyPair()
	if err != nil {
		return ftypes.Keypair{}, errors.Wrap(err, "generate keypair")
	}
	pkb, err := pk.MarshalBinary()
	if err != nil {
		return ftypes.Keypair{}, errors.Wrap(err, "marshal public key")
	}
	skb, err := sk.MarshalBinary()
	if err != nil {
		return ftypes.Keypair{}, errors.Wrap(err, "marshal private key")
	}
	return ftypes.Keypair{
		PublicKey:  strings.TrimPrefix(hexutil.Encode(pkb), "0x"),
		PrivateKey: strings.TrimPrefix(hexutil.Encode(skb), "0x"),
	}, nil
}

// CreateEIP712 builds the authorization the user signs for a batch decrypt.
func (m *Instance) CreateEIP712(publicKey string, contractAddresses []common.Address, startTimestamp, durationDays string) (apitypes.TypedData, error) {
	if len(contractAddresses) == 0 {
		return apitypes.TypedData{}, errors.New("no contract addresses")
	}
	contracts := make([]interface{}, len(contractAddresses))
	for i, a := range contractAddresses {
		contracts[i] = a.Hex()
	}

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			eip712PrimaryType: {
				{Name: "publicKey", Type: "bytes"},
				{Name: "contractAddresses", Type: "address[]"},
				{Name: "startTimestamp", Type: "uint256"},
				{Name: "durationDays", Type: "uint256"},
			},
		},
		PrimaryType: eip712PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              eip712Name,
			Version:           eip712Version,
			ChainId:           math.NewHexOrDecimal256(int64(m.cfg.GatewayChainID)),
			VerifyingContract: m.cfg.VerifyingContractAddressDecryption,
		},
		Message: apitypes.TypedDataMessage{
			"publicKey":         with0x(publicKey),
			"contractAddresses": contracts,
			"startTimestamp":    startTimestamp,
			"durationDays":      durationDays,
		},
	}, nil
}

// UserDecrypt checks the signed authorization, then re-encrypts every value to
// publicKey and opens it with privateKey.
func (m *Instance) UserDecrypt(
	ctx context.Context,
	pairs []ftypes.HandleContractPair,
	privateKey, publicKey, signature string,
	contractAddresses []common.Address,
	user common.Address,
	startTimestamp, durationDays string,
) (map[string]*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := m.checkWindow(startTimestamp, durationDays); err != nil {
		return nil, err
	}

	td, err := m.CreateEIP712(publicKey, contractAddresses, startTimestamp, durationDays)
	if err != nil {
		return nil, err
	}
	signer, err := recoverTypedDataSigner(td, signature)
	if err != nil {
		return nil, err
	}
	if signer != user {
		return nil, shared.Mark(
			errors.Newf("signature was produced by %s, not by user %s", signer.Hex(), user.Hex()),
			shared.KindUnauthorized,
		)
	}

	listed := make(map[common.Address]bool, len(contractAddresses))
	for _, a := range contractAddresses {
		listed[a] = true
	}

	out := make(map[string]*big.Int, len(pairs))
	for _, p := range pairs {
		if !listed[p.ContractAddress] {
			return nil, shared.Mark(
				errors.Newf("contract %s is not part of the signed request", p.ContractAddress.Hex()),
				shared.KindUnauthorized,
			)
		}
		h, err := parseHandle(p.Handle)
		if err != nil {
			return nil, err
		}
		rec, err := m.authorize(h, p.ContractAddress, user)
		if err != nil {
			return nil, err
		}

		ct, err := m.reencrypt(publicKey, rec.value)
		if err != nil {
			return nil, err
		}
		v, err := m.openReencrypted(privateKey, ct)
		if err != nil {
			return nil, err
		}
		out[h.Hex()] = v
	}
	return out, nil
}

func (m *Instance) checkWindow(startTimestamp, durationDays string) error {
	start, err := strconv.ParseInt(startTimestamp, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "parse start timestamp %q", startTimestamp)
	}
	days, err := strconv.ParseInt(durationDays, 10, 64)
	if err != nil || days <= 0 {
		return errors.Newf("invalid duration days %q", durationDays)
	}

	now := m.now().Unix()
	if now < start-60 {
		return shared.Mark(errors.New("decryption request starts in the future"), shared.KindUnauthorized)
	}
	if now > start+days*24*60*60 {
		return shared.Mark(errors.New("decryption request has expired"), shared.KindUnauthorized)
	}
	return nil
}

func (m *Instance) authorize(h common.Hash, contract, user common.Address) (record, error) {
	rec, ok := m.reg.lookup(h)
	if !ok || rec.contract != contract || !m.reg.isAllowed(h, user) || !m.reg.isAllowed(h, contract) {
		return record{}, shared.Mark(
			errors.Newf("user %s is not authorized to user decrypt handle %s", user.Hex(), h.Hex()),
			shared.KindUnauthorized,
		)
	}
	return rec, nil
}

type reencrypted struct {
	kemCT []byte
	nonce []byte
	box   []byte
}

func (m *Instance) reencrypt(publicKey string, v *big.Int) (reencrypted, error) {
	pkb, err := hexutil.Decode(with0x(publicKey))
	if err != nil {
		return reencrypted{}, errors.Wrap(err, "decode public key")
	}
	pk, err := m.scheme.UnmarshalBinaryPublicKey(pkb)
	if err != nil {
		return reencrypted{}, errors.Wrap(err, "unmarshal public key")
	}
	kemCT, ss, err := m.scheme.Encapsulate(pk)
	if err != nil {
		return reencrypted{}, errors.Wrap(err, "encapsulate")
	}
	aead, err := aeadFor(ss)
	if err != nil {
		return reencrypted{}, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return reencrypted{}, errors.Wrap(err, "rand nonce")
	}
	return reencrypted{kemCT: kemCT, nonce: nonce, box: aead.Seal(nil, nonce, v.Bytes(), nil)}, nil
}

func (m *Instance) openReencrypted(privateKey string, ct reencrypted) (*big.Int, error) {
	skb, err := hexutil.Decode(with0x(privateKey))
	if err != nil {
		return nil, errors.Wrap(err, "decode private key")
	}
	sk, err := m.scheme.UnmarshalBinaryPrivateKey(skb)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal private key")
	}
	ss, err := m.scheme.Decapsulate(sk, ct.kemCT)
	if err != nil {
		return nil, errors.Wrap(err, "decapsulate")
	}
	aead, err := aeadFor(ss)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, ct.nonce, ct.box, nil)
	if err != nil {
		return nil, errors.New("re-encrypted value does not open with the given keypair")
	}
	return new(big.Int).SetBytes(plain), nil
}

func aeadFor(sharedSecret []byte) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sharedSecret, nil, []byte(reencryptInfo)), key); err != nil {
		return nil, errors.Wrap(err, "derive key")
	}
	return chacha20poly1305.New(key)
}

func recoverTypedDataSigner(td apitypes.TypedData, signature string) (common.Address, error) {
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "hash typed data")
	}
	sig, err := hexutil.Decode(with0x(signature))
	if err != nil {
		return common.Address{}, errors.Wrap(err, "decode signature")
	}
	if len(sig) != 65 {
		return common.Address{}, errors.Newf("signature must be 65 bytes, got %d", len(sig))
	}
	sig = append([]byte(nil), sig...)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, shared.Mark(errors.Wrap(err, "recover signer"), shared.KindUnauthorized)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func parseHandle(s string) (common.Hash, error) {
	padded, err := ftypes.PadHandle(s)
	if err != nil {
		return common.Hash{}, err
	}
	return common.HexToHash(padded), nil
}

func with0x(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}

// SetClock replaces the time source used for request windows.
func (m *Instance) SetClock(now func() time.Time) {
	m.now = now
}
