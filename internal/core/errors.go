package core

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPrefix is returned when a prefix contains a non-hex character
	// or is longer than a full digest.
	ErrInvalidPrefix = errors.New("invalid prefix")

	// ErrSearchExhausted is returned when every candidate within the radius
	// was tried without a match.
	ErrSearchExhausted = errors.New("search exhausted")

	// ErrNotReplayable is returned when git commit cannot reproduce a found
	// commit exactly, so only writing the object directly will do.
	ErrNotReplayable = errors.New("commit cannot be replayed with git commit")

	// ErrSerializationInconsistency means the reconstructed commit bytes do not
	// hash to the object they claim to be. This is always a bug.
	ErrSerializationInconsistency = errors.New("serialization inconsistency")
)

// InvalidPrefixError describes why a prefix was rejected.
type InvalidPrefixError struct {
	Prefix  string
	Char    byte // offending character, zero when TooLong
	Pos     int  // zero-based index of Char
	TooLong bool
}

func (e *InvalidPrefixError) Error() string {
	if e.TooLong {
		return fmt.Sprintf("prefix %q is %d characters long; a digest has at most %d", e.Prefix, len(e.Prefix), maxPrefixLen)
	}
	return fmt.Sprintf("in %q, the character %q at position %d is not a hexadecimal character", e.Prefix, e.Char, e.Pos+1)
}

func (e *InvalidPrefixError) Unwrap() error {
	return ErrInvalidPrefix
}
