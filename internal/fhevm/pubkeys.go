package fhevm

import (
	"strconv"
	"strings"
	"sync"

	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/fhevm/ftypes"
)

var paramsKey = strconv.Itoa(constants.PublicParamsSize)

// CachedKeys is what the cache holds for one ACL address.
type CachedKeys struct {
	PublicKey    *ftypes.PublicKey
	PublicParams ftypes.PublicParams
}

// PublicKeyCache maps an ACL contract address to key material. Entries are
// never evicted.
type PublicKeyCache struct {
	mu      sync.Mutex
	entries map[string]CachedKeys
}

// DefaultPublicKeyCache is shared by every factory in the process.
var DefaultPublicKeyCache = NewPublicKeyCache()

func NewPublicKeyCache() *PublicKeyCache {
	return &PublicKeyCache{entries: make(map[string]CachedKeys)}
}

// Get returns an empty result when nothing is cached for acl.
func (c *PublicKeyCache) Get(acl string) CachedKeys {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[normalizeACL(acl)]
	if !ok {
		return CachedKeys{}
	}

	out := CachedKeys{}
	if e.PublicKey != nil {
		pk := *e.PublicKey
		out.PublicKey = &pk
	}
	if p, ok := e.PublicParams[paramsKey]; ok {
		out.PublicParams = ftypes.PublicParams{paramsKey: p}
	}
	return out
}

// Set merges into the existing entry. Nil arguments leave fields untouched and
// only the 2048 parameter set is kept.
func (c *PublicKeyCache) Set(acl string, publicKey *ftypes.PublicKey, publicParams *ftypes.PublicParam) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := normalizeACL(acl)
	e := c.entries[key]
	if publicKey != nil {
		pk := *publicKey
		e.PublicKey = &pk
	}
	if publicParams != nil {
		e.PublicParams = ftypes.PublicParams{paramsKey: *publicParams}
	}
	c.entries[key] = e
}

// Len is the number of cached ACL addresses.
func (c *PublicKeyCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func normalizeACL(acl string) string {
	return strings.ToLower(strings.TrimSpace(acl))
}
