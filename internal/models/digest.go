package models

import (
	"encoding/hex"
)

// DigestSize is the length of a SHA-1 digest in bytes.
const DigestSize = 20

// Digest is the 160-bit content hash of a serialized object.
type Digest [DigestSize]byte

// String returns the lowercase 40-character hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ShortID returns the first 7 characters of the hex form
func (d Digest) ShortID() string {
	return d.String()[:7]
}
