package core

import (
	"testing"

	"github.com/kilupskalvis/git-force-prefix/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestSerializeBody_MatchesGitFormat(t *testing.T) {
	body := SerializeBody(testFields(), testAnchor())
	assert.Equal(t, fixtureBody, string(body))
}

func TestSerialize_PrependsHeader(t *testing.T) {
	obj := Serialize(testFields(), testAnchor())
	assert.Equal(t, "commit 243\x00"+fixtureBody, string(obj))
}

func TestSerialize_RootCommitNegativeTimeAndNegativeZero(t *testing.T) {
	body := SerializeBody(rootFields(), rootAnchor())
	assert.Equal(t, rootFixtureBody, string(body))
	assert.Equal(t, rootFixtureDigest, Sum(Serialize(rootFields(), rootAnchor())).String())
}

func TestSerialize_Deterministic(t *testing.T) {
	a := Serialize(testFields(), testAnchor())
	b := Serialize(testFields(), testAnchor())
	assert.Equal(t, a, b)
}

func TestSerialize_MultipleParentsKeepOrder(t *testing.T) {
	fields := testFields()
	fields.Parents = []string{
		"1111111111111111111111111111111111111111",
		"2222222222222222222222222222222222222222",
	}
	body := string(SerializeBody(fields, testAnchor()))
	assert.Contains(t, body, "parent 1111111111111111111111111111111111111111\nparent 2222222222222222222222222222222222222222\nauthor ")
}

func TestSerialize_DelimitersPassThrough(t *testing.T) {
	fields := testFields()
	fields.Author = models.Signature{Name: "Eve <x> 123 +0000", Email: "e>ve@example.com"}
	body := string(SerializeBody(fields, testAnchor()))
	assert.Contains(t, body, "author Eve <x> 123 +0000 <e>ve@example.com> 1700000000 +0100\n")
}

func TestSerialize_ExtraHeadersAfterCommitter(t *testing.T) {
	fields := testFields()
	fields.ExtraHeaders = []byte("encoding ISO-8859-1\n")
	body := string(SerializeBody(fields, testAnchor()))
	assert.Contains(t, body, "-0530\nencoding ISO-8859-1\n\nAdd analytical engine notes\n")
}

func TestSerialize_MessageWithoutTrailingNewline(t *testing.T) {
	fields := testFields()
	fields.Message = []byte("no newline")
	body := string(SerializeBody(fields, testAnchor()))
	assert.Equal(t, "-0530\n\nno newline", body[len(body)-len("-0530\n\nno newline"):])
}

func TestTemplate_BodyLen(t *testing.T) {
	tmpl := NewTemplate(testFields())
	cases := []models.Candidate{
		testAnchor(),
		{AuthorTime: 0, CommitterTime: 9},
		{AuthorTime: -1, CommitterTime: 10},
		{AuthorTime: -9223372036854775808, CommitterTime: 9223372036854775807},
	}
	for _, c := range cases {
		assert.Len(t, tmpl.AppendBody(nil, c), tmpl.BodyLen(c))
	}
}

func TestDecimalLen(t *testing.T) {
	cases := map[int64]int{
		0:           1,
		9:           1,
		10:          2,
		-1:          2,
		-10:         3,
		1700000000:  10,
		-1700000000: 11,
	}
	for n, want := range cases {
		assert.Equal(t, want, decimalLen(n), "decimalLen(%d)", n)
	}
}
