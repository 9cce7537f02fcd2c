package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketCollections = []byte("collections")

// BoltBackend keeps collection documents in a bbolt bucket
type BoltBackend struct {
	db *bolt.DB
}

// NewBoltBackend opens (or creates) the bbolt file at dbPath
func NewBoltBackend(dbPath string) (*BoltBackend, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCollections)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket %s: %w", bucketCollections, err)
	}

	return &BoltBackend{db: db}, nil
}

// Load retrieves the document stored under key
func (b *BoltBackend) Load(key string) ([]byte, error) {
	var doc []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketCollections).Get([]byte(key))
		if v != nil {
			// Values are only valid inside the transaction.
			doc = append([]byte(nil), v...)
		}
		return nil
	})
	return doc, err
}

// Save replaces the document stored under key
func (b *BoltBackend) Save(key string, doc []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCollections).Put([]byte(key), doc)
	})
}

// Close closes the database
func (b *BoltBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
