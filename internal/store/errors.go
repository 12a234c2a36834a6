package store

import "errors"

// Sentinel errors shared by the drivers.
var (
	ErrCollectionExists   = errors.New("store: collection already exists")
	ErrCollectionNotFound = errors.New("store: collection not found")
	ErrKeyNotFound        = errors.New("store: key not found")
)
