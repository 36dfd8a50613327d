package service

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrSerialSpent is returned when a serial has already been recorded.
var ErrSerialSpent = errors.New("serial already spent")

// Serial kinds recorded by the issuer.
const (
	KindUserShare   = "id0"
	KindIssuerShare = "id1"
	KindToken       = "id"
)

// SerialStore records consumed serials in leveldb. An empty path keeps
// everything in memory.
type SerialStore struct {
	mu        sync.Mutex
	path      string
	db        *leveldb.DB
	writeOpts *opt.WriteOptions
}

func OpenSerialStore(path string) (*SerialStore, error) {
	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error opening leveldb at [%s]", path)
	}
	return &SerialStore{path: path, db: db, writeOpts: &opt.WriteOptions{Sync: true}}, nil
}

func serialKey(kind string, serial []byte) []byte {
	key := make([]byte, 0, len(kind)+1+len(serial))
	key = append(key, kind...)
	key = append(key, '/')
	return append(key, serial...)
}

// Spend records serial under kind, failing with ErrSerialSpent if it is
// already there.
func (s *SerialStore) Spend(kind string, serial []byte) error {
	key := serialKey(kind, serial)
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.db.Has(key, nil)
	if err != nil {
		return errors.Wrapf(err, "error retrieving leveldb key [%#v]", key)
	}
	if ok {
		return errors.Wrapf(ErrSerialSpent, "%s %x", kind, serial)
	}
	if err := s.db.Put(key, []byte{1}, s.writeOpts); err != nil {
		logger.Errorf("Error writing leveldb key [%#v]", key)
		return errors.Wrapf(err, "error writing leveldb key [%#v]", key)
	}
	return nil
}

func (s *SerialStore) Spent(kind string, serial []byte) (bool, error) {
	ok, err := s.db.Has(serialKey(kind, serial), nil)
	return ok, errors.Wrap(err, "error reading serial store")
}

// Count returns the number of serials of kind.
func (s *SerialStore) Count(kind string) (int, error) {
	itr := s.db.NewIterator(util.BytesPrefix(serialKey(kind, nil)), nil)
	defer itr.Release()
	n := 0
	for itr.Next() {
		n++
	}
	return n, errors.Wrapf(itr.Error(), "error iterating the serial store at [%s]", s.path)
}

func (s *SerialStore) Close() error {
	return s.db.Close()
}
