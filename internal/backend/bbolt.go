// Package backend adapts external embedded stores to the same
// Set/Get/Remove contract the native engine exposes, so the server can run
// against either without knowing which one it was handed.
package backend

import (
	"go.etcd.io/bbolt"

	"github.com/ignitedb/ignite/pkg/errors"
)

var bucketName = []byte("ignite")

// Store is the minimal contract the server dispatches requests against,
// satisfied by both *engine.Engine and *BboltStore.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
	Remove(key string) error
	Close() error
}

// BboltStore backs the Store contract with go.etcd.io/bbolt, the external
// embedded key-value store option (spec.md's engine-name switch).
type BboltStore struct {
	db *bbolt.DB
}

// OpenBbolt opens (creating if necessary) a bbolt database at path and
// ensures its single bucket exists.
func OpenBbolt(path string) (*BboltStore, error) {
	db, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &BboltStore{db: db}, nil
}

// Set stores value under key.
func (s *BboltStore) Set(key, value string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return errors.NewExternalBackendError(err, "Set")
	}
	return nil
}

// Get returns the value stored under key, and whether it was found.
func (s *BboltStore) Get(key string) (string, bool, error) {
	var value string
	var found bool

	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		value = string(v)
		return nil
	})
	if err != nil {
		return "", false, errors.NewExternalBackendError(err, "Get")
	}
	return value, found, nil
}

// Remove deletes key, reporting KeyNotFound if it was already absent —
// bbolt's own Delete is a silent no-op on a missing key, so presence is
// checked first to keep the same contract the native engine enforces.
func (s *BboltStore) Remove(key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b.Get([]byte(key)) == nil {
			return errors.NewKeyNotFoundEngineError(key)
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		if _, ok := err.(*errors.EngineError); ok {
			return err
		}
		return errors.NewExternalBackendError(err, "Remove")
	}
	return nil
}

// Close releases the underlying database file.
func (s *BboltStore) Close() error {
	return s.db.Close()
}
