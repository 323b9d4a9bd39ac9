// Package expenselog is the expense-log facade: it encrypts entries,
// submits them, lists them, decrypts them and keeps a local cache of what has
// been decrypted.
package expenselog

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/quantumauth-io/private-expense-log/internal/analysis"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/entrystore"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

const (
	msgEncrypting = "Encrypting expense data..."
	msgSubmitting = "Submitting to blockchain..."
	msgAdded      = "Entry added successfully!"
	msgFetching   = "Fetching encrypted entry..."
	msgDecrypting = "Decrypting entry..."
	msgDecrypted  = "Decryption successful!"
)

// InstanceSource yields the current FHE instance; *session.Session satisfies it.
type InstanceSource interface {
	Instance() (ftypes.Instance, bool)
}

// Signer is the connected account.
type Signer interface {
	Address() common.Address
	TransactOpts(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
	// SignTypedData returns a 0x-prefixed 65-byte signature.
	SignTypedData(td apitypes.TypedData) (string, error)
}

type Deps struct {
	Session         InstanceSource
	Contract        Contract
	Signer          Signer
	ContractAddress common.Address
	ChainID         uint64
	// Cache is optional.
	Cache entrystore.Store
	Now   func() time.Time
}

// State is what a UI shows next to the expense log.
type State struct {
	IsLoading bool   `json:"isLoading"`
	Message   string `json:"message,omitempty"`
}

type Service struct {
	deps Deps

	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int

	cacheMu sync.Mutex
}

func New(deps Deps) *Service {
	return &Service{deps: deps, subs: make(map[int]chan State)}
}

func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe delivers the latest state after every change; slow readers only
// see the most recent one.
func (s *Service) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

func (s *Service) update(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s.state
		}
	}
}

func (s *Service) begin(msg string) {
	s.update(func(st *State) { st.IsLoading, st.Message = true, msg })
}

func (s *Service) say(msg string) {
	s.update(func(st *State) { st.Message = msg })
}

func (s *Service) done() {
	s.update(func(st *State) { st.IsLoading = false })
}

func missing(what string) error {
	return shared.Mark(errors.Newf("missing requirements: %s", what), shared.KindNotReady)
}

func (s *Service) account() (common.Address, error) {
	if s.deps.Contract == nil || s.deps.ContractAddress == (common.Address{}) {
		return common.Address{}, missing("contract")
	}
	if s.deps.Signer == nil {
		return common.Address{}, missing("signer")
	}
	return s.deps.Signer.Address(), nil
}

func (s *Service) instance() (ftypes.Instance, error) {
	if s.deps.Session == nil {
		return nil, missing("fhevm instance")
	}
	inst, ok := s.deps.Session.Instance()
	if !ok || inst == nil {
		return nil, missing("fhevm instance")
	}
	return inst, nil
}

// AddEntry encrypts the three fields separately and submits them in one
// transaction, returning once it is mined.
func (s *Service) AddEntry(ctx context.Context, date uint32, category, level, emotion int) error {
	user, err := s.account()
	if err != nil {
		return err
	}
	inst, err := s.instance()
	if err != nil {
		return err
	}
	if err := shared.ValidateEntry(date, category, level, emotion); err != nil {
		return err
	}

	s.begin(msgEncrypting)
	defer s.done()

	if err := s.addEntry(ctx, inst, user, date, uint8(category), uint8(level), uint8(emotion)); err != nil {
		log.Error("add entry failed", "date", date, "kind", shared.KindOf(err).String(), "error", err)
		s.say("Error: " + UserMessage(err))
		return err
	}

	s.say(msgAdded)
	log.Info("entry added", "date", date, "user", user.Hex())
	return nil
}

func (s *Service) addEntry(ctx context.Context, inst ftypes.Instance, user common.Address, date uint32, category, level, emotion uint8) error {
	in := AddEntryInput{Date: date}
	var err error
	if in.Category, in.CategoryProof, err = s.encrypt(ctx, inst, user, category); err != nil {
		return err
	}
	if in.Level, in.LevelProof, err = s.encrypt(ctx, inst, user, level); err != nil {
		return err
	}
	if in.Emotion, in.EmotionProof, err = s.encrypt(ctx, inst, user, emotion); err != nil {
		return err
	}

	s.say(msgSubmitting)

	opts, err := s.deps.Signer.TransactOpts(ctx, new(big.Int).SetUint64(s.deps.ChainID))
	if err != nil {
		return ClassifyTxError(errors.Wrap(err, "transact opts"))
	}
	opts.Context = ctx
	opts.GasLimit = constants.AddEntryGasLimit

	_, err = s.deps.Contract.AddEntry(ctx, opts, in)
	return ClassifyTxError(err)
}

func (s *Service) encrypt(ctx context.Context, inst ftypes.Instance, user common.Address, v uint8) ([32]byte, []byte, error) {
	enc, err := inst.CreateEncryptedInput(s.deps.ContractAddress, user).Add8(v).Encrypt(ctx)
	if err != nil {
		return [32]byte{}, nil, errors.Wrap(err, "encrypt input")
	}
	if len(enc.Handles) == 0 {
		return [32]byte{}, nil, errors.New("encrypt input: no handle returned")
	}
	return enc.Handles[0], enc.InputProof, nil
}

// GetAllEntries lists the encrypted entries in [start, end]. Entries that
// cannot be read are skipped and any listing failure yields an empty list.
func (s *Service) GetAllEntries(ctx context.Context, start, end uint32) []shared.EncryptedEntry {
	user, err := s.account()
	if err != nil {
		log.Warn("cannot list entries", "error", err)
		return []shared.EncryptedEntry{}
	}

	dates, err := s.deps.Contract.GetEntryDatesInRange(ctx, user, start, end)
	if err != nil {
		log.Error("list entry dates failed", "start", start, "end", end, "error", err)
		return []shared.EncryptedEntry{}
	}

	out := make([]shared.EncryptedEntry, 0, len(dates))
	for _, d := range dates {
		e, err := s.deps.Contract.GetEntry(ctx, user, d)
		if err != nil {
			log.Warn("skipping unreadable entry", "date", d, "error", err)
			continue
		}
		out = append(out, shared.EncryptedEntry{
			Date:      d,
			Category:  ftypes.HandleHex(e.Category),
			Level:     ftypes.HandleHex(e.Level),
			Emotion:   ftypes.HandleHex(e.Emotion),
			Timestamp: e.Timestamp,
		})
	}
	return out
}

// DecryptEntry returns nil, nil when there is no entry for date.
func (s *Service) DecryptEntry(ctx context.Context, date uint32) (*shared.ExpenseEntry, error) {
	user, err := s.account()
	if err != nil {
		return nil, err
	}
	inst, err := s.instance()
	if err != nil {
		return nil, err
	}

	s.begin(msgFetching)
	defer s.done()

	e, err := s.decryptEntry(ctx, inst, user, date)
	if err != nil {
		log.Error("decrypt entry failed", "date", date, "kind", shared.KindOf(err).String(), "error", err)
		s.say(DecryptMessage(err))
		return nil, err
	}
	if e == nil {
		return nil, nil
	}

	s.say(msgDecrypted)
	s.remember(user, *e)
	return e, nil
}

// GetEntry is DecryptEntry.
func (s *Service) GetEntry(ctx context.Context, date uint32) (*shared.ExpenseEntry, error) {
	return s.DecryptEntry(ctx, date)
}

func (s *Service) decryptEntry(ctx context.Context, inst ftypes.Instance, user common.Address, date uint32) (*shared.ExpenseEntry, error) {
	exists, err := s.deps.Contract.EntryExists(ctx, user, date)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	stored, err := s.deps.Contract.GetEntry(ctx, user, date)
	if err != nil {
		return nil, err
	}

	s.say(msgDecrypting)
	log.Info("decrypting entry",
		"date", date,
		"contract", s.deps.ContractAddress.Hex(),
		"user", user.Hex(),
		"chain_id", s.deps.ChainID,
	)

	vals, err := s.decrypt(ctx, target{
		inst:     inst,
		contract: s.deps.ContractAddress,
		user:     user,
		chainID:  s.deps.ChainID,
		handles: [3]string{
			ftypes.HandleHex(stored.Category),
			ftypes.HandleHex(stored.Level),
			ftypes.HandleHex(stored.Emotion),
		},
	})
	if err != nil {
		return nil, err
	}
	return &shared.ExpenseEntry{
		Date:      date,
		Category:  vals[0],
		Level:     vals[1],
		Emotion:   vals[2],
		Timestamp: stored.Timestamp,
	}, nil
}

// EntryCount is the number of entries the connected account has stored.
func (s *Service) EntryCount(ctx context.Context) (uint64, error) {
	user, err := s.account()
	if err != nil {
		return 0, err
	}
	return s.deps.Contract.GetEntryCount(ctx, user)
}

func (s *Service) LastEntryDate(ctx context.Context) (uint32, error) {
	user, err := s.account()
	if err != nil {
		return 0, err
	}
	return s.deps.Contract.GetLastEntryDate(ctx, user)
}

// Analysis decrypts every entry in [start, end] that is not cached yet and
// summarizes the lot. Entries that fail to decrypt are left out.
func (s *Service) Analysis(ctx context.Context, start, end uint32) (analysis.Summary, error) {
	user, err := s.account()
	if err != nil {
		return analysis.Summary{}, err
	}
	cached, err := s.CachedEntries()
	if err != nil {
		log.Warn("entry cache unavailable", "error", err)
	}
	have := make(map[uint32]shared.ExpenseEntry, len(cached))
	for _, e := range cached {
		have[e.Date] = e
	}

	dates, err := s.deps.Contract.GetEntryDatesInRange(ctx, user, start, end)
	if err != nil {
		return analysis.Summary{}, err
	}

	entries := make([]shared.ExpenseEntry, 0, len(dates))
	for _, d := range dates {
		if e, ok := have[d]; ok {
			entries = append(entries, e)
			continue
		}
		e, err := s.DecryptEntry(ctx, d)
		if err != nil {
			if shared.KindOf(err) == shared.KindAborted {
				return analysis.Summary{}, err
			}
			log.Warn("leaving entry out of analysis", "date", d, "error", err)
			continue
		}
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return analysis.Summarize(entries), nil
}

// CachedEntries returns what has been decrypted before, ordered by date.
func (s *Service) CachedEntries() ([]shared.ExpenseEntry, error) {
	user, err := s.account()
	if err != nil {
		return nil, err
	}
	if s.deps.Cache == nil {
		return []shared.ExpenseEntry{}, nil
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	got, err := s.deps.Cache.Load(user, s.deps.ContractAddress)
	if err != nil {
		return nil, err
	}
	return got.Sorted(), nil
}

// HideEntry forgets the decrypted form of one entry.
func (s *Service) HideEntry(date uint32) error {
	user, err := s.account()
	if err != nil || s.deps.Cache == nil {
		return err
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.deps.Cache.Remove(user, s.deps.ContractAddress, date)
}

func (s *Service) ClearCache() error {
	user, err := s.account()
	if err != nil || s.deps.Cache == nil {
		return err
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.deps.Cache.Clear(user, s.deps.ContractAddress)
}

func (s *Service) remember(user common.Address, e shared.ExpenseEntry) {
	if s.deps.Cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	all, err := s.deps.Cache.Load(user, s.deps.ContractAddress)
	if err == nil {
		all[e.Date] = e
		err = s.deps.Cache.Save(user, s.deps.ContractAddress, all)
	}
	if err != nil {
		log.Warn("could not cache decrypted entry", "date", e.Date, "error", err)
	}
}
