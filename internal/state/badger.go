package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// BadgerStore keeps marks in a badger key/value database. Pages are stored
// as 8-byte big-endian integers.
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Entry
}

func NewBadgerStore(dir string, log *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, log: componentLogger(log)}, nil
}

func (s *BadgerStore) Get(key string) (int, bool) {
	page, found := 0, false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 8 {
				page = int(binary.BigEndian.Uint64(val))
				found = true
			}
			return nil
		})
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		s.log.WithError(err).WithField("key", key).Warn("read page mark")
	}
	return page, found
}

func (s *BadgerStore) Set(key string, page int) error {
	if page < 0 {
		return ErrNegativePage
	}
	return s.db.Update(func(txn *badger.Txn) error {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(page))
		return txn.Set([]byte(key), buf)
	})
}

func (s *BadgerStore) Clear(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
