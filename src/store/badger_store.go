package store

import (
	"bytes"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/mosaicnetworks/syncmanager/src/syncmanager"
	"github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"
)

const (
	snapshotKey    = "snapshot"
	lostPrefix     = "lost"
	snapshotType   = "Snapshot"
	lastLostType   = "LastLost"
	defaultDirMode = 0700
)

// SnapshotRecord is the latched configuration as recorded in the store.
type SnapshotRecord struct {
	Snapshot  syncmanager.Snapshot
	LatchedAt time.Time
}

// BadgerStore implements the client.MetadataStore interface on top of Badger.
type BadgerStore struct {
	sync.Mutex

	db     *badger.DB
	path   string
	closed bool
}

// NewBadgerStore opens the database in path, creating it if necessary.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	if err := os.MkdirAll(path, defaultDirMode); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	if logger != nil {
		opts.Logger = logger
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

// Path returns the directory of the database.
func (s *BadgerStore) Path() string {
	return s.path
}

// Close closes the database. Calls after the first one do nothing.
func (s *BadgerStore) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// PutSnapshot records the configuration latched by the client.
func (s *BadgerStore) PutSnapshot(snapshot syncmanager.Snapshot) error {
	record := SnapshotRecord{
		Snapshot:  snapshot,
		LatchedAt: time.Now().UTC(),
	}
	record.Snapshot.Logger = nil

	return s.dbSet(snapshotType, snapshotKey, &record)
}

// GetSnapshot returns the last recorded configuration.
func (s *BadgerStore) GetSnapshot() (SnapshotRecord, error) {
	var record SnapshotRecord
	err := s.dbGet(snapshotType, snapshotKey, &record)
	return record, err
}

// SetLastLost records when the connection to server was lost.
func (s *BadgerStore) SetLastLost(server string, t time.Time) error {
	return s.dbSet(lastLostType, lostKey(server), t.UTC())
}

// LastLost returns when the connection to server was last lost.
func (s *BadgerStore) LastLost(server string) (time.Time, error) {
	var t time.Time
	err := s.dbGet(lastLostType, lostKey(server), &t)
	return t, err
}

func lostKey(server string) string {
	return lostPrefix + "_" + server
}

//------------------------------------------------------------------------------

func (s *BadgerStore) dbSet(dataType, key string, v interface{}) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return NewStoreErr(dataType, Closed, key)
	}

	val, err := marshal(v)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}

func (s *BadgerStore) dbGet(dataType, key string, v interface{}) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return NewStoreErr(dataType, Closed, key)
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if err == badger.ErrKeyNotFound {
		return NewStoreErr(dataType, KeyNotFound, key)
	}
	if err != nil {
		return err
	}

	return unmarshal(data, v)
}

func marshal(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func unmarshal(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(v)
}
