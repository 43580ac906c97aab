package gitrepo

import (
	"testing"

	"github.com/kilupskalvis/git-force-prefix/internal/core"
	"github.com/kilupskalvis/git-force-prefix/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const withParent = `tree cb44699325a0f4d127979cc8ae82354dd7e80ac6
parent 30b08f0d64ab1b436713cbd43d6cd43dc0d967e3
author Grace Hopper <grace@example.com> 1524752605 -0500
committer Grace Hopper <grace@example.com> 1524753225 -0500

Test commit
`

const initialCommit = `tree f7b61169107fb3b4262406b998df7cba3a379bd6
author Grace Hopper <grace@example.com> 1524680608 -0500
committer Grace Hopper <grace@example.com> 1524680608 -0500

Initial commit
`

const signedCommit = "tree cb44699325a0f4d127979cc8ae82354dd7e80ac6\n" +
	"parent 30b08f0d64ab1b436713cbd43d6cd43dc0d967e3\n" +
	"author Grace Hopper <grace@example.com> 1524752605 -0500\n" +
	"committer Grace Hopper <grace@example.com> 1524753225 -0500\n" +
	"encoding ISO-8859-1\n" +
	"gpgsig -----BEGIN PGP SIGNATURE-----\n" +
	" \n" +
	" iQEzBAABCAAdFiEE\n" +
	" -----END PGP SIGNATURE-----\n" +
	"\n" +
	"Signed commit\n"

func TestParseCommit_WithParent(t *testing.T) {
	p, err := ParseCommit([]byte(withParent))
	require.NoError(t, err)

	f := p.Fields
	assert.Equal(t, "cb44699325a0f4d127979cc8ae82354dd7e80ac6", f.Tree)
	assert.Equal(t, []string{"30b08f0d64ab1b436713cbd43d6cd43dc0d967e3"}, f.Parents)
	assert.Equal(t, models.Signature{Name: "Grace Hopper", Email: "grace@example.com"}, f.Author)
	assert.Equal(t, f.Author, f.Committer)
	assert.Equal(t, "Test commit\n", string(f.Message))
	assert.Empty(t, f.ExtraHeaders)

	assert.Equal(t, int64(1524752605), p.Anchor.AuthorTime)
	assert.Equal(t, int64(1524753225), p.Anchor.CommitterTime)
	assert.Equal(t, "-0500", p.Anchor.AuthorOffset.String())
	assert.Equal(t, "-0500", p.Anchor.CommitterOffset.String())
	assert.False(t, p.Signed)
	assert.Equal(t, withParent, string(p.Unsigned))
}

func TestParseCommit_Initial(t *testing.T) {
	p, err := ParseCommit([]byte(initialCommit))
	require.NoError(t, err)
	assert.True(t, p.Fields.IsRoot())
	assert.Equal(t, "f7b61169107fb3b4262406b998df7cba3a379bd6", p.Fields.Tree)
	assert.Equal(t, int64(1524680608), p.Anchor.AuthorTime)
	assert.Equal(t, "Initial commit\n", string(p.Fields.Message))
}

func TestParseCommit_RoundTrips(t *testing.T) {
	for _, raw := range []string{withParent, initialCommit} {
		p, err := ParseCommit([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, string(core.SerializeBody(p.Fields, p.Anchor)))
	}
}

func TestParseCommit_DropsSignatureKeepsOtherHeaders(t *testing.T) {
	p, err := ParseCommit([]byte(signedCommit))
	require.NoError(t, err)
	assert.True(t, p.Signed)
	assert.Equal(t, "encoding ISO-8859-1\n", string(p.Fields.ExtraHeaders))
	assert.Equal(t, "Signed commit\n", string(p.Fields.Message))
	assert.NotContains(t, string(p.Unsigned), "gpgsig")
	assert.NotContains(t, string(p.Unsigned), "PGP")
	assert.Equal(t, string(p.Unsigned), string(core.SerializeBody(p.Fields, p.Anchor)))
}

func TestParseCommit_OddIdentities(t *testing.T) {
	raw := "tree f7b61169107fb3b4262406b998df7cba3a379bd6\n" +
		"author Eve <x> 123 +0000 <e>ve@example.com> -100 -0000\n" +
		"committer  <> 0 +1400\n" +
		"\n" +
		"\n\nmessage with leading blank lines"
	p, err := ParseCommit([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Eve <x> 123 +0000", p.Fields.Author.Name)
	assert.Equal(t, "e>ve@example.com", p.Fields.Author.Email)
	assert.Equal(t, int64(-100), p.Anchor.AuthorTime)
	assert.Equal(t, models.NegativeZero, p.Anchor.AuthorOffset)
	assert.Equal(t, "", p.Fields.Committer.Name)
	assert.Equal(t, "", p.Fields.Committer.Email)
	assert.Equal(t, raw, string(core.SerializeBody(p.Fields, p.Anchor)))
}

func TestParseCommit_Malformed(t *testing.T) {
	cases := map[string]string{
		"no blank line":   "tree f7b61169107fb3b4262406b998df7cba3a379bd6\n",
		"no tree":         "author A <a> 1 +0000\ncommitter A <a> 1 +0000\n\nm",
		"short tree":      "tree abc\nauthor A <a> 1 +0000\ncommitter A <a> 1 +0000\n\nm",
		"no committer":    "tree f7b61169107fb3b4262406b998df7cba3a379bd6\nauthor A <a> 1 +0000\n\nm",
		"bad timestamp":   "tree f7b61169107fb3b4262406b998df7cba3a379bd6\nauthor A <a> x +0000\ncommitter A <a> 1 +0000\n\nm",
		"bad offset":      "tree f7b61169107fb3b4262406b998df7cba3a379bd6\nauthor A <a> 1 0000\ncommitter A <a> 1 +0000\n\nm",
		"no email":        "tree f7b61169107fb3b4262406b998df7cba3a379bd6\nauthor A 1 +0000\ncommitter A <a> 1 +0000\n\nm",
		"header too soon": "tree f7b61169107fb3b4262406b998df7cba3a379bd6\nencoding UTF-8\nauthor A <a> 1 +0000\ncommitter A <a> 1 +0000\n\nm",
	}
	for name, raw := range cases {
		_, err := ParseCommit([]byte(raw))
		assert.ErrorIs(t, err, ErrMalformedCommit, name)
	}
}
