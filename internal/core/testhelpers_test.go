package core

import (
	"encoding/hex"
	"testing"

	"github.com/kilupskalvis/git-force-prefix/internal/models"
	"github.com/stretchr/testify/require"
)

// Hashes of these fixtures were checked with `git hash-object -t commit`.
const (
	fixtureDigest     = "9fffe297c147490fe113978e2bb583a02dbcfc0c"
	fixtureBody       = "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\nparent 8f9e2b2f6d5c1c1a3e0b6f2c9d2e6a7b1c3d4e5f\nauthor Ada Lovelace <ada@example.com> 1700000000 +0100\ncommitter Charles Babbage <charles@example.com> 1700000300 -0530\n\nAdd analytical engine notes\n"
	rootFixtureDigest = "d50fcd880412cc9f02566a0435df736b1a12887d"
	rootFixtureBody   = "tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\nauthor Ada Lovelace <ada@example.com> -86400 -0000\ncommitter Ada Lovelace <ada@example.com> 0 +0000\n\nInitial commit\n"
)

func testFields() *models.CommitFields {
	return &models.CommitFields{
		Tree:      "4b825dc642cb6eb9a060e54bf8d69288fbee4904",
		Parents:   []string{"8f9e2b2f6d5c1c1a3e0b6f2c9d2e6a7b1c3d4e5f"},
		Author:    models.Signature{Name: "Ada Lovelace", Email: "ada@example.com"},
		Committer: models.Signature{Name: "Charles Babbage", Email: "charles@example.com"},
		Message:   []byte("Add analytical engine notes\n"),
	}
}

func testAnchor() models.Candidate {
	return models.Candidate{
		AuthorTime:      1700000000,
		AuthorOffset:    60,
		CommitterTime:   1700000300,
		CommitterOffset: -330,
	}
}

func rootFields() *models.CommitFields {
	ada := models.Signature{Name: "Ada Lovelace", Email: "ada@example.com"}
	return &models.CommitFields{
		Tree:      "4b825dc642cb6eb9a060e54bf8d69288fbee4904",
		Author:    ada,
		Committer: ada,
		Message:   []byte("Initial commit\n"),
	}
}

func rootAnchor() models.Candidate {
	return models.Candidate{
		AuthorTime:      -86400,
		AuthorOffset:    models.NegativeZero,
		CommitterTime:   0,
		CommitterOffset: 0,
	}
}

func mustDigest(t *testing.T, s string) models.Digest {
	t.Helper()
	var d models.Digest
	require.Len(t, s, 2*models.DigestSize)
	_, err := hex.Decode(d[:], []byte(s))
	require.NoError(t, err)
	return d
}
