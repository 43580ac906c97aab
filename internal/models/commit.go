// Package models defines the data structures shared by the prefix search:
// the fixed fields of a commit, timestamp candidates, and digests.
package models

// Signature is an author or committer identity as it appears in a commit
// header. Both strings are opaque and written without escaping.
type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// String returns the identity in commit header form, "Name <email>".
func (s Signature) String() string {
	return s.Name + " <" + s.Email + ">"
}

// CommitFields is the part of a commit that stays fixed while timestamps
// are searched. It is shared read-only by all search workers.
type CommitFields struct {
	Tree      string    `json:"tree"`
	Parents   []string  `json:"parents,omitempty"`
	Author    Signature `json:"author"`
	Committer Signature `json:"committer"`
	// ExtraHeaders holds raw header lines written after the committer line,
	// each terminated by a newline (e.g. "encoding ISO-8859-1\n").
	ExtraHeaders []byte `json:"extra_headers,omitempty"`
	// Message is everything after the blank line that ends the headers.
	Message []byte `json:"message"`
}

// IsRoot returns true if the commit has no parents
func (f *CommitFields) IsRoot() bool {
	return len(f.Parents) == 0
}

// IsMergeCommit returns true if the commit has more than one parent
func (f *CommitFields) IsMergeCommit() bool {
	return len(f.Parents) > 1
}
