// Package storage provides the key-value stores that back wallet save slots.
package storage

import "errors"

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("key not found")
	// ErrExists is returned by Rename when the target key is taken.
	ErrExists = errors.New("key already exists")
)

// DB is a key-value store. Values passed in and returned are copies.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// Rename atomically moves the value at from to to. It fails with
	// ErrNotFound when from is missing and ErrExists when to is taken.
	Rename(from, to []byte) error
	// ForEach visits keys with the given prefix in key order. A non-nil
	// error from fn stops iteration and is returned.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
