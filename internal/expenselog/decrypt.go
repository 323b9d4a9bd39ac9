package expenselog

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

// target is one entry to decrypt.
type target struct {
	inst     ftypes.Instance
	contract common.Address
	user     common.Address
	chainID  uint64
	handles  [3]string
}

// directDecrypt asks the instance for each euint8 without a signed request.
func directDecrypt(ctx context.Context, t target) ([3]uint8, error) {
	var out [3]uint8
	dd, ok := t.inst.(ftypes.DirectDecrypter)
	if !ok {
		return out, shared.Mark(errors.New("instance has no direct euint8 decryption"), shared.KindUnsupported)
	}
	for i, h := range t.handles {
		v, err := dd.UserDecryptEuint(ctx, ftypes.FheUint8, h, t.contract, t.user)
		if err != nil {
			return out, err
		}
		if out[i], err = toUint8(v); err != nil {
			return out, err
		}
	}
	return out, nil
}

// signedBatchDecrypt builds an ephemeral keypair, has the user sign the
// EIP-712 authorization, and decrypts all three handles in one request.
func (s *Service) signedBatchDecrypt(ctx context.Context, t target) ([3]uint8, error) {
	var out [3]uint8

	kg, ok := t.inst.(ftypes.KeypairGenerator)
	if !ok {
		return out, shared.Mark(errors.New("instance cannot generate a decryption keypair"), shared.KindUnsupported)
	}
	ec, ok := t.inst.(ftypes.EIP712Creator)
	if !ok {
		return out, shared.Mark(errors.New("instance cannot build the EIP-712 request"), shared.KindUnsupported)
	}

	kp, err := kg.GenerateKeypair()
	if err != nil {
		return out, errors.Wrap(err, "generate keypair")
	}

	contracts := []common.Address{t.contract}
	start := strconv.FormatInt(s.now().Unix(), 10)
	td, err := ec.CreateEIP712(kp.PublicKey, contracts, start, constants.DecryptDuration)
	if err != nil {
		return out, errors.Wrap(err, "create eip712")
	}
	sig, err := s.deps.Signer.SignTypedData(td)
	if err != nil {
		return out, ClassifyTxError(errors.Wrap(err, "sign decryption request"))
	}
	if t.chainID == constants.LocalChainID {
		sig = strings.TrimPrefix(sig, "0x")
	}

	pairs := make([]ftypes.HandleContractPair, len(t.handles))
	for i, h := range t.handles {
		pairs[i] = ftypes.HandleContractPair{Handle: h, ContractAddress: t.contract}
	}

	res, err := t.inst.UserDecrypt(ctx, pairs, kp.PrivateKey, kp.PublicKey, sig, contracts, t.user, start, constants.DecryptDuration)
	if err != nil {
		return out, err
	}
	for i, h := range t.handles {
		v, ok := res[h]
		if !ok {
			continue
		}
		if out[i], err = toUint8(v); err != nil {
			return out, err
		}
	}
	return out, nil
}

func toUint8(v *big.Int) (uint8, error) {
	if v == nil {
		return 0, nil
	}
	if v.Sign() < 0 || v.BitLen() > 8 {
		return 0, errors.Newf("decrypted value %s does not fit euint8", v)
	}
	return uint8(v.Uint64()), nil
}

// decrypt tries the direct path first and falls back to the signed batch.
func (s *Service) decrypt(ctx context.Context, t target) ([3]uint8, error) {
	if _, ok := t.inst.(ftypes.DirectDecrypter); ok {
		vals, err := directDecrypt(ctx, t)
		if err == nil {
			return vals, nil
		}
		if shared.KindOf(err) == shared.KindAborted {
			return vals, err
		}
		log.Warn("direct euint8 decryption failed, trying signed batch", "error", err)
	}
	return s.signedBatchDecrypt(ctx, t)
}

func (s *Service) now() time.Time {
	if s.deps.Now != nil {
		return s.deps.Now()
	}
	return time.Now()
}
