package bytesize

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by decompression, configuration and engine descriptors.
var (
	// ErrUnexpectedEndOfBytes is returned when a code needs more bytes than remain in the input.
	ErrUnexpectedEndOfBytes = errors.New("bytesize: unexpected end of bytes")
	// ErrInvalidUnicodeScalar is returned when a Unicode escape is not followed by a valid UTF-8 scalar value.
	ErrInvalidUnicodeScalar = errors.New("bytesize: invalid unicode scalar value")
	// ErrInvalidCode is returned when an escape code lies outside every partition of the code space.
	ErrInvalidCode = errors.New("bytesize: invalid code")
	// ErrFormat is returned when a decoded token cannot be turned back into text,
	// e.g. a custom word index the engine was not configured with.
	ErrFormat = errors.New("bytesize: cannot reconstruct text from token")
	// ErrEmptyCustomWord is returned by Config.Validate for an empty custom word.
	ErrEmptyCustomWord = errors.New("bytesize: empty custom word")
	// ErrBadVersion indicates a serialized engine descriptor of an unsupported version.
	ErrBadVersion = errors.New("bytesize: unsupported descriptor version")
	// ErrDictionaryMismatch indicates a serialized engine descriptor written
	// against different dictionaries than the ones compiled in.
	ErrDictionaryMismatch = errors.New("bytesize: descriptor dictionaries do not match")
)

// DecodeError reports the input offset at which decompression failed.
// Use errors.Is with the sentinel errors above to classify it.
type DecodeError struct {
	Offset int   // offset of the first byte of the failing code
	Err    error // one of the sentinel errors
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }
