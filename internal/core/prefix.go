package core

import (
	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

// maxPrefixLen is the length of a full hex digest.
const maxPrefixLen = 2 * models.DigestSize

// Prefix is a parsed hex prefix. Whole bytes are compared directly; an odd
// trailing hex digit is compared against the high nibble of the next byte.
type Prefix struct {
	raw   string
	bytes []byte
	odd   bool
	last  byte // trailing nibble when odd
}

// ParsePrefix validates s and decodes it for matching. Upper and lower case
// hex digits are both accepted. The empty prefix matches every digest.
func ParsePrefix(s string) (*Prefix, error) {
	if len(s) > maxPrefixLen {
		return nil, &InvalidPrefixError{Prefix: s, TooLong: true}
	}
	p := &Prefix{raw: s, bytes: make([]byte, 0, len(s)/2)}
	for i := 0; i+1 < len(s); i += 2 {
		hi, ok := fromHexChar(s[i])
		if !ok {
			return nil, &InvalidPrefixError{Prefix: s, Char: s[i], Pos: i}
		}
		lo, ok := fromHexChar(s[i+1])
		if !ok {
			return nil, &InvalidPrefixError{Prefix: s, Char: s[i+1], Pos: i + 1}
		}
		p.bytes = append(p.bytes, hi<<4|lo)
	}
	if len(s)%2 == 1 {
		n, ok := fromHexChar(s[len(s)-1])
		if !ok {
			return nil, &InvalidPrefixError{Prefix: s, Char: s[len(s)-1], Pos: len(s) - 1}
		}
		p.odd = true
		p.last = n
	}
	return p, nil
}

// String returns the prefix as given.
func (p *Prefix) String() string {
	return p.raw
}

// Len returns the number of hex digits in the prefix.
func (p *Prefix) Len() int {
	return len(p.raw)
}

// Match reports whether d starts with the prefix.
func (p *Prefix) Match(d models.Digest) bool {
	for i, b := range p.bytes {
		if d[i] != b {
			return false
		}
	}
	if p.odd {
		return d[len(p.bytes)]>>4 == p.last
	}
	return true
}

// Matches reports whether the hex digest digestHex starts with prefix,
// ignoring case. It fails with ErrInvalidPrefix for a malformed prefix.
func Matches(digestHex, prefix string) (bool, error) {
	if _, err := ParsePrefix(prefix); err != nil {
		return false, err
	}
	if len(digestHex) < len(prefix) {
		return false, nil
	}
	for i := 0; i < len(prefix); i++ {
		a, ok := fromHexChar(digestHex[i])
		if !ok {
			return false, nil
		}
		b, _ := fromHexChar(prefix[i])
		if a != b {
			return false, nil
		}
	}
	return true, nil
}

func fromHexChar(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
