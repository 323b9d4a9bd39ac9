package entrystore

import (
	"os"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/private-expense-log/internal/constants"
	"github.com/quantumauth-io/private-expense-log/internal/securefile"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

// fileDoc is the decrypted content of the cache file.
type fileDoc struct {
	Version int                              `json:"version"`
	Entries map[string][]shared.ExpenseEntry `json:"entries"`
}

// FileStore keeps every key in one password-sealed JSON file.
type FileStore struct {
	path     string
	password []byte
	opts     securefile.Options

	mu sync.Mutex
}

func NewFileStore(path string, password []byte) *FileStore {
	return &FileStore{
		path:     path,
		password: password,
		opts: securefile.Options{
			FilePerm:      constants.FilePerm,
			DirectoryPerm: constants.DirectoryPerm,
			AAD:           []byte(constants.EntriesAAD),
		},
	}
}

func (f *FileStore) read() (fileDoc, error) {
	doc, err := securefile.ReadEncryptedJSON[fileDoc](f.path, f.password, f.opts)
	if errors.Is(err, os.ErrNotExist) {
		return fileDoc{Version: constants.SchemaV1, Entries: map[string][]shared.ExpenseEntry{}}, nil
	}
	if err != nil {
		return fileDoc{}, errors.Wrap(err, "read entry cache")
	}
	if doc.Entries == nil {
		doc.Entries = map[string][]shared.ExpenseEntry{}
	}
	return doc, nil
}

func (f *FileStore) write(doc fileDoc) error {
	doc.Version = constants.SchemaV1
	return errors.Wrap(securefile.WriteEncryptedJSON(f.path, doc, f.password, f.opts), "write entry cache")
}

func (f *FileStore) update(key string, fn func(Entries) Entries) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	next := fn(fromList(doc.Entries[key]))
	if len(next) == 0 {
		delete(doc.Entries, key)
	} else {
		doc.Entries[key] = next.Sorted()
	}
	return f.write(doc)
}

func (f *FileStore) Load(user, contract common.Address) (Entries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	return fromList(doc.Entries[Key(user, contract)]), nil
}

func (f *FileStore) Save(user, contract common.Address, entries Entries) error {
	return f.update(Key(user, contract), func(Entries) Entries { return entries })
}

func (f *FileStore) Remove(user, contract common.Address, date uint32) error {
	return f.update(Key(user, contract), func(e Entries) Entries {
		delete(e, date)
		return e
	})
}

func (f *FileStore) Clear(user, contract common.Address) error {
	return f.update(Key(user, contract), func(Entries) Entries { return nil })
}
