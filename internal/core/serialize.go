package core

import (
	"strconv"

	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

// ObjectType is the object type written in the content-addressing header.
const ObjectType = "commit"

// SerializeBody returns the canonical commit text for fields with the
// candidate's timestamps. The result is what git stores after the header.
func SerializeBody(fields *models.CommitFields, c models.Candidate) []byte {
	return NewTemplate(fields).AppendBody(nil, c)
}

// Serialize returns the full object bytes that are hashed:
// "commit <len>\x00" followed by SerializeBody.
func Serialize(fields *models.CommitFields, c models.Candidate) []byte {
	body := SerializeBody(fields, c)
	out := AppendHeader(make([]byte, 0, len(body)+16), len(body))
	return append(out, body...)
}

// AppendHeader appends the object header for a body of size bytes.
func AppendHeader(b []byte, size int) []byte {
	b = append(b, ObjectType...)
	b = append(b, ' ')
	b = strconv.AppendInt(b, int64(size), 10)
	return append(b, 0)
}

// Template holds the immutable segments of a commit body so a candidate
// only needs its two timestamps and offsets filled in:
//
//	head  = "tree ...\nparent ...\nauthor Name <email> "
//	<author time> " " <author offset>
//	mid   = "\ncommitter Name <email> "
//	<committer time> " " <committer offset>
//	tail  = "\n" extra headers "\n" message
type Template struct {
	head []byte
	mid  []byte
	tail []byte
}

// NewTemplate precomputes the fixed segments for fields.
func NewTemplate(fields *models.CommitFields) *Template {
	var head []byte
	head = append(head, "tree "...)
	head = append(head, fields.Tree...)
	head = append(head, '\n')
	for _, p := range fields.Parents {
		head = append(head, "parent "...)
		head = append(head, p...)
		head = append(head, '\n')
	}
	head = append(head, "author "...)
	head = append(head, fields.Author.String()...)
	head = append(head, ' ')

	var mid []byte
	mid = append(mid, "\ncommitter "...)
	mid = append(mid, fields.Committer.String()...)
	mid = append(mid, ' ')

	tail := make([]byte, 0, 2+len(fields.ExtraHeaders)+len(fields.Message))
	tail = append(tail, '\n')
	tail = append(tail, fields.ExtraHeaders...)
	tail = append(tail, '\n')
	tail = append(tail, fields.Message...)

	return &Template{head: head, mid: mid, tail: tail}
}

// offsetLen is the fixed width of a "±HHMM" offset.
const offsetLen = 5

// BodyLen returns the body length for candidate c without building it.
func (t *Template) BodyLen(c models.Candidate) int {
	return len(t.head) + decimalLen(c.AuthorTime) + 1 + offsetLen +
		len(t.mid) + decimalLen(c.CommitterTime) + 1 + offsetLen +
		len(t.tail)
}

// AppendBody appends the body for candidate c to b.
func (t *Template) AppendBody(b []byte, c models.Candidate) []byte {
	b = append(b, t.head...)
	b = t.appendVariable(b, c)
	return append(b, t.tail...)
}

// appendVariable appends everything from the author timestamp up to and
// including the committer offset.
func (t *Template) appendVariable(b []byte, c models.Candidate) []byte {
	b = strconv.AppendInt(b, c.AuthorTime, 10)
	b = append(b, ' ')
	b = c.AuthorOffset.AppendTo(b)
	b = append(b, t.mid...)
	b = strconv.AppendInt(b, c.CommitterTime, 10)
	b = append(b, ' ')
	return c.CommitterOffset.AppendTo(b)
}

// decimalLen returns the length of the signed decimal form of n.
func decimalLen(n int64) int {
	l := 1
	u := uint64(n)
	if n < 0 {
		l++
		u = uint64(-n)
	}
	for u >= 10 {
		u /= 10
		l++
	}
	return l
}
