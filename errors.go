package nutscan

import "errors"

var (
	// ErrScanStalled is returned when a scan returned MaxEmptyScans empty
	// batches in a row without reaching the end. The scan state is kept so the
	// call can be retried; it does not mean the scan is exhausted.
	ErrScanStalled = errors.New("scan stalled on empty batches")

	// ErrKeyNotFound is returned when a key vanished before its values could be loaded.
	ErrKeyNotFound = errors.New("key not found")

	// ErrWrongType is returned by a Store when a command hits a key holding another type.
	ErrWrongType = errors.New("operation against a key holding the wrong kind of value")

	// ErrInvalidCursor is returned when an element carries a cursor its type can not resume from.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrFilterNotFound is returned when a key filter index is not registered.
	ErrFilterNotFound = errors.New("key filter not found")
)

// IsScanStalled is true if the error indicates a stalled scan.
func IsScanStalled(err error) bool {
	return errors.Is(err, ErrScanStalled)
}

// IsKeyNotFound is true if the error indicates the key is not found.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsWrongType is true if the error indicates the key changed its type.
func IsWrongType(err error) bool {
	return errors.Is(err, ErrWrongType)
}
