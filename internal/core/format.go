package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

// Replay is a found candidate in the forms git accepts for an amend.
type Replay struct {
	Author    models.Signature `json:"author"`
	Committer models.Signature `json:"committer"`
	// AuthorDate and CommitterDate use git's raw date format, "@<unix> ±HHMM".
	AuthorDate    string `json:"author_date"`
	CommitterDate string `json:"committer_date"`
	// AuthorTime and CommitterTime are the same instants in their own zones.
	AuthorTime    time.Time `json:"author_time"`
	CommitterTime time.Time `json:"committer_time"`
}

// Format converts a candidate for fields into its replay form.
func Format(fields *models.CommitFields, c models.Candidate) Replay {
	return Replay{
		Author:        fields.Author,
		Committer:     fields.Committer,
		AuthorDate:    RawDate(c.AuthorTime, c.AuthorOffset),
		CommitterDate: RawDate(c.CommitterTime, c.CommitterOffset),
		AuthorTime:    LocalTime(c.AuthorTime, c.AuthorOffset),
		CommitterTime: LocalTime(c.CommitterTime, c.CommitterOffset),
	}
}

// RawDate formats a timestamp in git's raw date format. The "@" forces the
// raw interpretation for small values.
func RawDate(unix int64, off models.Offset) string {
	return "@" + strconv.FormatInt(unix, 10) + " " + off.String()
}

// LocalTime returns the instant in a fixed zone named after its offset.
func LocalTime(unix int64, off models.Offset) time.Time {
	return time.Unix(unix, 0).In(time.FixedZone(off.String(), off.Seconds()))
}

// CheckReplayable reports whether git commit would rebuild the commit for
// fields and c byte for byte. git's date parser rejects negative times and
// reads "-0000" back as "+0000", git trims or drops some characters in
// identities, and an amend does not carry extra headers over as they are.
// Such commits can only be written directly.
func CheckReplayable(fields *models.CommitFields, c models.Candidate) error {
	if len(fields.ExtraHeaders) > 0 {
		name, _, _ := strings.Cut(string(fields.ExtraHeaders), " ")
		return fmt.Errorf("%w: HEAD has a %q header", ErrNotReplayable, name)
	}
	for _, d := range []struct {
		role string
		unix int64
		off  models.Offset
	}{
		{"author", c.AuthorTime, c.AuthorOffset},
		{"committer", c.CommitterTime, c.CommitterOffset},
	} {
		if d.unix < 0 {
			return fmt.Errorf("%w: %s time %d is before 1970", ErrNotReplayable, d.role, d.unix)
		}
		if d.off == models.NegativeZero {
			return fmt.Errorf("%w: %s offset is -0000", ErrNotReplayable, d.role)
		}
	}
	for _, id := range []struct {
		role string
		sig  models.Signature
	}{
		{"author", fields.Author},
		{"committer", fields.Committer},
	} {
		if !identSurvives(id.sig.Name) || !identSurvives(id.sig.Email) {
			return fmt.Errorf("%w: git would rewrite the %s identity %q", ErrNotReplayable, id.role, id.sig)
		}
	}
	return nil
}

// identSurvives reports whether git keeps s unchanged when it builds an
// identity: it trims crud from both ends and drops '<', '>' and newlines.
func identSurvives(s string) bool {
	if s == "" {
		return false
	}
	if identCrud(s[0]) || identCrud(s[len(s)-1]) {
		return false
	}
	return !strings.ContainsAny(s, "<>\n")
}

func identCrud(c byte) bool {
	return c <= ' ' || strings.IndexByte(",:;<>\"\\'", c) >= 0
}

// Env returns the environment assignments that recreate both identities
// and dates.
func (r Replay) Env() []string {
	return []string{
		"GIT_AUTHOR_NAME=" + r.Author.Name,
		"GIT_AUTHOR_EMAIL=" + r.Author.Email,
		"GIT_AUTHOR_DATE=" + r.AuthorDate,
		"GIT_COMMITTER_NAME=" + r.Committer.Name,
		"GIT_COMMITTER_EMAIL=" + r.Committer.Email,
		"GIT_COMMITTER_DATE=" + r.CommitterDate,
	}
}

// Command returns a shell command that amends HEAD with the replay dates.
// --amend keeps the old author identity but takes the author date only from
// --date, and takes the whole committer identity from the environment. The
// message is kept verbatim, an empty change is allowed and signing is off.
func (r Replay) Command() string {
	return fmt.Sprintf("GIT_COMMITTER_NAME=%s GIT_COMMITTER_EMAIL=%s GIT_COMMITTER_DATE=%s git commit --amend --no-edit --allow-empty --cleanup=verbatim --no-gpg-sign --date=%s",
		ShellQuote(r.Committer.Name), ShellQuote(r.Committer.Email),
		ShellQuote(r.CommitterDate), ShellQuote(r.AuthorDate))
}

// ShellQuote quotes s for a POSIX shell. Strings without characters that
// are special inside double quotes keep the double-quoted form.
func ShellQuote(s string) string {
	if !strings.ContainsAny(s, "\"$`\\!'") {
		return `"` + s + `"`
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
