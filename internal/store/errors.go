package store

import "errors"

var (
	// ErrNotFound indicates the requested replica row does not exist.
	ErrNotFound = errors.New("replica row not found")

	// ErrEmptyStatement indicates Apply was called without SQL.
	ErrEmptyStatement = errors.New("empty statement")
)
