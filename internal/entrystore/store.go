// Package entrystore persists decrypted entries per (user, contract) so they
// survive restarts without another round of decryption.
package entrystore

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

// Entries maps YYYYMMDD to the decrypted entry for that day.
type Entries map[uint32]shared.ExpenseEntry

type Store interface {
	Load(user, contract common.Address) (Entries, error)
	Save(user, contract common.Address, entries Entries) error
	Remove(user, contract common.Address, date uint32) error
	Clear(user, contract common.Address) error
}

// Key is the storage key for one user and contract.
func Key(user, contract common.Address) string {
	return constants.DecryptedKeyBase + "_" + strings.ToLower(user.Hex()) + "_" + strings.ToLower(contract.Hex())
}

// Sorted returns the entries ordered by date.
func (e Entries) Sorted() []shared.ExpenseEntry {
	out := make([]shared.ExpenseEntry, 0, len(e))
	for _, v := range e {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (e Entries) clone() Entries {
	out := make(Entries, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// encode stores entries as a date-ordered array; map keys are not portable JSON.
func encode(e Entries) ([]byte, error) {
	b, err := json.Marshal(e.Sorted())
	if err != nil {
		return nil, errors.Wrap(err, "marshal entries")
	}
	return b, nil
}

func decode(b []byte) (Entries, error) {
	var list []shared.ExpenseEntry
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, errors.Wrap(err, "unmarshal entries")
	}
	return fromList(list), nil
}

func fromList(list []shared.ExpenseEntry) Entries {
	out := make(Entries, len(list))
	for _, v := range list {
		out[v.Date] = v
	}
	return out
}

// MemoryStore keeps entries for the life of the process.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]Entries
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Entries)}
}

func (m *MemoryStore) Load(user, contract common.Address) (Entries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[Key(user, contract)].clone(), nil
}

func (m *MemoryStore) Save(user, contract common.Address, entries Entries) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[Key(user, contract)] = entries.clone()
	return nil
}

func (m *MemoryStore) Remove(user, contract common.Address, date uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[Key(user, contract)], date)
	return nil
}

func (m *MemoryStore) Clear(user, contract common.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, Key(user, contract))
	return nil
}
