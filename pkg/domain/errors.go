package domain

import "fmt"

// NotFoundError is returned when a disposal references an asset id with no
// registry record.
type NotFoundError struct {
	AssetID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("asset %s not found", e.AssetID)
}

// InvalidDateError is returned when boundary input cannot be parsed into a
// real calendar date.
type InvalidDateError struct {
	Input string
}

func (e InvalidDateError) Error() string {
	return fmt.Sprintf("invalid calendar date %q", e.Input)
}

// InvalidAssetIDError is returned when an asset id normalizes to the empty
// string.
type InvalidAssetIDError struct {
	Input string
}

func (e InvalidAssetIDError) Error() string {
	return fmt.Sprintf("invalid asset id %q", e.Input)
}

// PersistError wraps a storage failure surfaced from a mutating call. The
// in-memory registry still reflects the mutation; the caller decides
// whether to retry the persist or treat the operation as failed.
type PersistError struct {
	Op  string
	Err error
}

func (e PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e PersistError) Unwrap() error { return e.Err }

// CorruptionError describes an unreadable primary store encountered at
// load. It is logged and recovered locally (quarantine plus fresh
// registry), never escalated to callers as a hard failure.
type CorruptionError struct {
	Path string
	Err  error
}

func (e CorruptionError) Error() string {
	return fmt.Sprintf("primary store %s unreadable: %v", e.Path, e.Err)
}

func (e CorruptionError) Unwrap() error { return e.Err }
