package models

// Candidate is one pair of timestamps to try. Each candidate is
// independent of every other.
type Candidate struct {
	AuthorTime      int64  `json:"author_time"`
	AuthorOffset    Offset `json:"author_offset"`
	CommitterTime   int64  `json:"committer_time"`
	CommitterOffset Offset `json:"committer_offset"`
}

// Deviation returns the total absolute distance in seconds between c and
// the anchor across both timestamps.
func (c Candidate) Deviation(anchor Candidate) uint64 {
	return absDiff(c.AuthorTime, anchor.AuthorTime) + absDiff(c.CommitterTime, anchor.CommitterTime)
}

// AuthorDelta returns the author time shift relative to anchor.
func (c Candidate) AuthorDelta(anchor Candidate) int64 {
	return c.AuthorTime - anchor.AuthorTime
}

// CommitterDelta returns the committer time shift relative to anchor.
func (c Candidate) CommitterDelta(anchor Candidate) int64 {
	return c.CommitterTime - anchor.CommitterTime
}

func absDiff(a, b int64) uint64 {
	if a >= b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
