package core

import (
	"crypto/sha1"
	"encoding"
	"hash"

	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

// Sum returns the SHA-1 digest of a fully serialized object.
func Sum(obj []byte) models.Digest {
	return models.Digest(sha1.Sum(obj))
}

// Hasher hashes candidates for one commit template. It caches the SHA-1
// state after "header + head" for each body length seen, so each candidate
// only hashes the variable part and the tail. A Hasher is not safe for
// concurrent use; each worker owns one.
type Hasher struct {
	tmpl   *Template
	h      hash.Hash
	marsh  encoding.BinaryMarshaler
	unmars encoding.BinaryUnmarshaler
	states map[int][]byte
	buf    []byte
}

// NewHasher returns a Hasher for the given template.
func NewHasher(t *Template) *Hasher {
	h := sha1.New()
	return &Hasher{
		tmpl:   t,
		h:      h,
		marsh:  h.(encoding.BinaryMarshaler),
		unmars: h.(encoding.BinaryUnmarshaler),
		// Body length only changes when a timestamp gains or loses a digit.
		states: make(map[int][]byte, 4),
		buf:    make([]byte, 0, 64),
	}
}

// Hash returns the digest of the object built from candidate c. It always
// equals Sum(Serialize(fields, c)).
func (hs *Hasher) Hash(c models.Candidate) models.Digest {
	n := hs.tmpl.BodyLen(c)
	if st, ok := hs.states[n]; ok {
		if err := hs.unmars.UnmarshalBinary(st); err != nil {
			panic("sha1: restore state: " + err.Error())
		}
	} else {
		hs.h.Reset()
		hs.h.Write(AppendHeader(hs.buf[:0], n))
		hs.h.Write(hs.tmpl.head)
		st, err := hs.marsh.MarshalBinary()
		if err != nil {
			panic("sha1: save state: " + err.Error())
		}
		hs.states[n] = st
	}

	hs.buf = hs.tmpl.appendVariable(hs.buf[:0], c)
	hs.h.Write(hs.buf)
	hs.h.Write(hs.tmpl.tail)

	var d models.Digest
	hs.h.Sum(d[:0])
	return d
}
