package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest_String(t *testing.T) {
	d := Digest{0xd0, 0x6f, 0x00, 0xd1, 0x67, 0x9a}
	assert.Equal(t, "d06f00d1679a0000000000000000000000000000", d.String())
	assert.Equal(t, "d06f00d", d.ShortID())
}

func TestSignature_String(t *testing.T) {
	s := Signature{Name: "Ada Lovelace", Email: "ada@example.com"}
	assert.Equal(t, "Ada Lovelace <ada@example.com>", s.String())
}

func TestCommitFields_Parents(t *testing.T) {
	f := &CommitFields{}
	assert.True(t, f.IsRoot())
	assert.False(t, f.IsMergeCommit())
	f.Parents = []string{"a", "b"}
	assert.False(t, f.IsRoot())
	assert.True(t, f.IsMergeCommit())
}
