package entrystore

import (
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v4"
	"github.com/ethereum/go-ethereum/common"
)

// BadgerStore keeps one value per key in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the database in dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, errors.Wrapf(err, "open badger at %s", dir)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func (b *BadgerStore) get(txn *badger.Txn, key []byte) (Entries, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entries{}, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func (b *BadgerStore) put(txn *badger.Txn, key []byte, e Entries) error {
	if len(e) == 0 {
		return txn.Delete(key)
	}
	raw, err := encode(e)
	if err != nil {
		return err
	}
	return txn.Set(key, raw)
}

func (b *BadgerStore) Load(user, contract common.Address) (Entries, error) {
	var out Entries
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = b.get(txn, []byte(Key(user, contract)))
		return err
	})
	return out, errors.Wrap(err, "load entries")
}

func (b *BadgerStore) Save(user, contract common.Address, entries Entries) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return b.put(txn, []byte(Key(user, contract)), entries)
	})
	return errors.Wrap(err, "save entries")
}

func (b *BadgerStore) Remove(user, contract common.Address, date uint32) error {
	key := []byte(Key(user, contract))
	err := b.db.Update(func(txn *badger.Txn) error {
		e, err := b.get(txn, key)
		if err != nil {
			return err
		}
		if _, ok := e[date]; !ok {
			return nil
		}
		delete(e, date)
		return b.put(txn, key, e)
	})
	return errors.Wrap(err, "remove entry")
}

func (b *BadgerStore) Clear(user, contract common.Address) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(Key(user, contract)))
	})
	return errors.Wrap(err, "clear entries")
}
