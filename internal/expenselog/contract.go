package expenselog

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/quantumauth-io/private-expense-log/internal/contracts/bindings/go/encryptedexpenselog"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

// StoredEntry is the raw getEntry result: three ciphertext handles.
type StoredEntry struct {
	Category  [32]byte
	Level     [32]byte
	Emotion   [32]byte
	Timestamp uint64
}

// AddEntryInput carries one external euint8 handle and its proof per field.
type AddEntryInput struct {
	Date          uint32
	Category      [32]byte
	CategoryProof []byte
	Level         [32]byte
	LevelProof    []byte
	Emotion       [32]byte
	EmotionProof  []byte
}

// Contract is the subset of the expense log contract the service needs.
type Contract interface {
	EntryExists(ctx context.Context, user common.Address, date uint32) (bool, error)
	GetEntry(ctx context.Context, user common.Address, date uint32) (StoredEntry, error)
	GetEntryCount(ctx context.Context, user common.Address) (uint64, error)
	GetLastEntryDate(ctx context.Context, user common.Address) (uint32, error)
	GetEntryDatesInRange(ctx context.Context, user common.Address, start, end uint32) ([]uint32, error)
	// AddEntry submits the transaction and waits until it is mined.
	AddEntry(ctx context.Context, opts *bind.TransactOpts, in AddEntryInput) (*types.Receipt, error)
}

// Backend is what BoundContract needs from a node connection; *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// BoundContract adapts the generated binding to Contract.
type BoundContract struct {
	backend Backend
	address common.Address
	c       *encryptedexpenselog.EncryptedExpenseLog
}

func NewBoundContract(address common.Address, backend Backend) (*BoundContract, error) {
	c, err := encryptedexpenselog.NewEncryptedExpenseLog(address, backend)
	if err != nil {
		return nil, errors.Wrap(err, "bind expense log contract")
	}
	return &BoundContract{backend: backend, address: address, c: c}, nil
}

func (b *BoundContract) Address() common.Address { return b.address }

func callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (b *BoundContract) EntryExists(ctx context.Context, user common.Address, date uint32) (bool, error) {
	ok, err := b.c.EntryExists(callOpts(ctx), user, date)
	if err != nil {
		return false, ClassifyTxError(errors.Wrap(err, "entryExists"))
	}
	return ok, nil
}

func (b *BoundContract) GetEntry(ctx context.Context, user common.Address, date uint32) (StoredEntry, error) {
	out, err := b.c.GetEntry(callOpts(ctx), user, date)
	if err != nil {
		return StoredEntry{}, ClassifyTxError(errors.Wrap(err, "getEntry"))
	}
	e := StoredEntry{Category: out.Category, Level: out.Level, Emotion: out.Emotion}
	if out.Timestamp != nil {
		e.Timestamp = out.Timestamp.Uint64()
	}
	return e, nil
}

func (b *BoundContract) GetEntryCount(ctx context.Context, user common.Address) (uint64, error) {
	n, err := b.c.GetEntryCount(callOpts(ctx), user)
	if err != nil {
		return 0, ClassifyTxError(errors.Wrap(err, "getEntryCount"))
	}
	return n.Uint64(), nil
}

func (b *BoundContract) GetLastEntryDate(ctx context.Context, user common.Address) (uint32, error) {
	d, err := b.c.GetLastEntryDate(callOpts(ctx), user)
	if err != nil {
		return 0, ClassifyTxError(errors.Wrap(err, "getLastEntryDate"))
	}
	return d, nil
}

func (b *BoundContract) GetEntryDatesInRange(ctx context.Context, user common.Address, start, end uint32) ([]uint32, error) {
	dates, err := b.c.GetEntryDatesInRange(callOpts(ctx), user, start, end)
	if err != nil {
		return nil, ClassifyTxError(errors.Wrap(err, "getEntryDatesInRange"))
	}
	return dates, nil
}

func (b *BoundContract) AddEntry(ctx context.Context, opts *bind.TransactOpts, in AddEntryInput) (*types.Receipt, error) {
	tx, err := b.c.AddEntry(opts, in.Date,
		in.Category, in.CategoryProof,
		in.Level, in.LevelProof,
		in.Emotion, in.EmotionProof,
	)
	if err != nil {
		return nil, ClassifyTxError(errors.Wrap(err, "addEntry"))
	}

	receipt, err := bind.WaitMined(ctx, b.backend, tx)
	if err != nil {
		return nil, ClassifyTxError(errors.Wrap(err, "wait for addEntry"))
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		return receipt, nil
	}
	return receipt, b.revertReason(ctx, tx, receipt)
}

// revertReason replays a failed transaction at its block to recover the
// revert data; the receipt alone does not carry it.
func (b *BoundContract) revertReason(ctx context.Context, tx *types.Transaction, receipt *types.Receipt) error {
	failed := shared.Mark(errors.Newf("addEntry reverted in tx %s", tx.Hash().Hex()), shared.KindReverted)

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return failed
	}
	msg := ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Gas:   tx.Gas(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}
	if _, err := b.backend.CallContract(ctx, msg, receipt.BlockNumber); err != nil {
		if classified := ClassifyTxError(err); shared.KindOf(classified) != shared.KindUnknown {
			return classified
		}
	}
	return failed
}
