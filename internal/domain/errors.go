package domain

import "errors"

var (
	ErrComponentNotFound  = errors.New("component not found")
	ErrDuplicateComponent = errors.New("duplicate component id")
	ErrRegistrySealed     = errors.New("component registry is sealed")

	// ErrStoreCommit marks a state mutation that was not durably committed.
	// The mutation is not retried.
	ErrStoreCommit = errors.New("state commit failed")

	ErrSyncConflict = errors.New("conflicting command definitions")
)
