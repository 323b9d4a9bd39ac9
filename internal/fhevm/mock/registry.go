package mock

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
)

type record struct {
	value    *big.Int
	fheType  ftypes.FheType
	contract common.Address
	user     common.Address
}

// Registry plays the coprocessor database: it remembers the cleartext behind
// every handle and which accounts may decrypt it.
type Registry struct {
	mu      sync.RWMutex
	records map[common.Hash]record
	allowed map[common.Hash]map[common.Address]struct{}
}

// DefaultRegistry backs instances created without an explicit registry, so a
// re-created instance can still decrypt earlier handles.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		records: make(map[common.Hash]record),
		allowed: make(map[common.Hash]map[common.Address]struct{}),
	}
}

func (r *Registry) put(handle common.Hash, rec record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[handle] = rec
	r.allowLocked(handle, rec.user)
	r.allowLocked(handle, rec.contract)
}

func (r *Registry) allowLocked(handle common.Hash, account common.Address) {
	set := r.allowed[handle]
	if set == nil {
		set = make(map[common.Address]struct{})
		r.allowed[handle] = set
	}
	set[account] = struct{}{}
}

func (r *Registry) lookup(handle common.Hash) (record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[handle]
	return rec, ok
}

func (r *Registry) isAllowed(handle common.Hash, account common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.allowed[handle][account]
	return ok
}

// Len is the number of known handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
