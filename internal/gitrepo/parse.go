package gitrepo

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

// ErrMalformedCommit is returned when raw commit bytes cannot be parsed.
var ErrMalformedCommit = errors.New("malformed commit")

// Parsed is a raw commit split into the fixed fields and the anchor
// timestamps that the search starts from.
type Parsed struct {
	Fields *models.CommitFields
	Anchor models.Candidate
	// Unsigned is the raw commit body with any signature header removed.
	// Serializing Fields with Anchor must reproduce it exactly.
	Unsigned []byte
	// Signed is true if a gpgsig header was dropped.
	Signed bool
}

// signatureHeaders cannot survive a timestamp change and are dropped.
var signatureHeaders = map[string]bool{
	"gpgsig":        true,
	"gpgsig-sha256": true,
}

// ParseCommit parses the body of a commit object (without the
// "commit <len>\x00" header).
func ParseCommit(raw []byte) (*Parsed, error) {
	end := bytes.Index(raw, []byte("\n\n"))
	if end < 0 {
		return nil, fmt.Errorf("%w: no blank line after headers", ErrMalformedCommit)
	}
	header, message := raw[:end+1], raw[end+2:]

	p := &Parsed{Fields: &models.CommitFields{Message: message}}
	unsigned := make([]byte, 0, len(raw))
	var extra []byte

	const (
		wantTree = iota
		wantParentOrAuthor
		wantCommitter
		inExtra
	)
	state := wantTree
	dropping := false

	for len(header) > 0 {
		nl := bytes.IndexByte(header, '\n')
		line := header[:nl]
		full := header[:nl+1]
		header = header[nl+1:]

		if state == inExtra && len(line) > 0 && line[0] == ' ' {
			// Continuation of the previous extra header.
			if !dropping {
				extra = append(extra, full...)
				unsigned = append(unsigned, full...)
			}
			continue
		}

		key, value, _ := bytes.Cut(line, []byte(" "))
		switch state {
		case wantTree:
			if string(key) != "tree" || !isHexID(value) {
				return nil, fmt.Errorf("%w: expected tree line, got %q", ErrMalformedCommit, line)
			}
			p.Fields.Tree = string(value)
			state = wantParentOrAuthor
		case wantParentOrAuthor:
			switch string(key) {
			case "parent":
				if !isHexID(value) {
					return nil, fmt.Errorf("%w: bad parent %q", ErrMalformedCommit, value)
				}
				p.Fields.Parents = append(p.Fields.Parents, string(value))
			case "author":
				sig, ts, off, err := parseIdent(value)
				if err != nil {
					return nil, fmt.Errorf("author: %w", err)
				}
				p.Fields.Author = sig
				p.Anchor.AuthorTime, p.Anchor.AuthorOffset = ts, off
				state = wantCommitter
			default:
				return nil, fmt.Errorf("%w: unsupported header %q before author", ErrMalformedCommit, key)
			}
		case wantCommitter:
			if string(key) != "committer" {
				return nil, fmt.Errorf("%w: expected committer line, got %q", ErrMalformedCommit, line)
			}
			sig, ts, off, err := parseIdent(value)
			if err != nil {
				return nil, fmt.Errorf("committer: %w", err)
			}
			p.Fields.Committer = sig
			p.Anchor.CommitterTime, p.Anchor.CommitterOffset = ts, off
			state = inExtra
		case inExtra:
			dropping = signatureHeaders[string(key)]
			if dropping {
				p.Signed = true
				continue
			}
			extra = append(extra, full...)
		}
		unsigned = append(unsigned, full...)
	}

	if state != inExtra {
		return nil, fmt.Errorf("%w: missing author or committer", ErrMalformedCommit)
	}

	p.Fields.ExtraHeaders = extra
	unsigned = append(unsigned, '\n')
	p.Unsigned = append(unsigned, message...)
	return p, nil
}

// parseIdent splits "Name <email> 1700000000 +0100".
func parseIdent(b []byte) (models.Signature, int64, models.Offset, error) {
	var sig models.Signature

	sp := bytes.LastIndexByte(b, ' ')
	if sp < 0 {
		return sig, 0, 0, fmt.Errorf("%w: ident %q has no timestamp", ErrMalformedCommit, b)
	}
	off, err := models.ParseOffset(string(b[sp+1:]))
	if err != nil {
		return sig, 0, 0, fmt.Errorf("%w: %v", ErrMalformedCommit, err)
	}
	b = b[:sp]

	sp = bytes.LastIndexByte(b, ' ')
	if sp < 0 {
		return sig, 0, 0, fmt.Errorf("%w: ident %q has no timestamp", ErrMalformedCommit, b)
	}
	ts, err := strconv.ParseInt(string(b[sp+1:]), 10, 64)
	if err != nil {
		return sig, 0, 0, fmt.Errorf("%w: bad timestamp: %v", ErrMalformedCommit, err)
	}
	ident := b[:sp]

	lt := bytes.LastIndex(ident, []byte(" <"))
	if lt < 0 || len(ident) == 0 || ident[len(ident)-1] != '>' {
		return sig, 0, 0, fmt.Errorf("%w: ident %q is not \"Name <email>\"", ErrMalformedCommit, ident)
	}
	sig.Name = string(ident[:lt])
	sig.Email = string(ident[lt+2 : len(ident)-1])
	return sig, ts, off, nil
}

func isHexID(b []byte) bool {
	if len(b) != 2*models.DigestSize {
		return false
	}
	for _, c := range b {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
