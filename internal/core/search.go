package core

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

// cancelCheckInterval is how many candidates a worker tries between
// context checks. The stop flag is checked on every candidate.
const cancelCheckInterval = 1024

// Outcome is the terminal state of a search.
type Outcome int

const (
	// Exhausted means every candidate within the radius was tried.
	Exhausted Outcome = iota
	// Found means a candidate whose digest matches the prefix was found.
	Found
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// SearchOptions configures a search.
type SearchOptions struct {
	EnumOptions
	// Workers is the number of concurrent workers; zero means runtime.NumCPU.
	Workers int
	// Progress, when set, receives the number of candidates tried.
	Progress *Progress
}

// Result is what a search returns. Candidate, Digest and Index are only
// meaningful when Outcome is Found.
type Result struct {
	Outcome   Outcome
	Anchor    models.Candidate
	Candidate models.Candidate
	Digest    models.Digest
	// Index is the candidate's position in enumeration order.
	Index    uint64
	Attempts uint64
	Elapsed  time.Duration
}

// Found reports whether the search found a match.
func (r *Result) Found() bool {
	return r.Outcome == Found
}

// Progress counts attempted candidates across workers. It is safe for
// concurrent use and may be read while a search runs.
type Progress struct {
	attempts atomic.Uint64
}

// Attempts returns the number of candidates tried so far.
func (p *Progress) Attempts() uint64 {
	return p.attempts.Load()
}

func (p *Progress) add(n uint64) {
	if p != nil && n > 0 {
		p.attempts.Add(n)
	}
}

// match is the single result slot shared by workers.
type match struct {
	stop      atomic.Bool
	candidate models.Candidate
	digest    models.Digest
}

// claim records a match if no other worker has, and reports whether it won.
func (m *match) claim(c models.Candidate, d models.Digest) bool {
	if !m.stop.CompareAndSwap(false, true) {
		return false
	}
	m.candidate, m.digest = c, d
	return true
}

// Search looks for timestamps near anchor that give fields a digest starting
// with prefix. Worker w of n walks its own NewPartition slice, so each
// worker skips the other slices a whole block at a time.
//
// With one worker the result is the first match in enumeration order. With
// several, the first worker to find any match wins, so a candidate further
// from the anchor may be returned even when a nearer one exists.
//
// An exhausted search is not an error: the Result reports Exhausted.
func Search(ctx context.Context, fields *models.CommitFields, anchor models.Candidate, prefix string, opts SearchOptions) (*Result, error) {
	p, err := ParsePrefix(prefix)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tmpl := NewTemplate(fields)
	progress := opts.Progress
	if progress == nil {
		progress = &Progress{}
	}
	start := progress.Attempts()
	began := time.Now()

	slog.Debug("search start",
		slog.String("prefix", p.String()),
		slog.Uint64("radius", opts.Radius),
		slog.Int("workers", workers),
		slog.Int("offset_steps", opts.OffsetSteps),
		slog.Bool("forward_only", opts.ForwardOnly),
		slog.Uint64("max_candidates", NewEnumerator(anchor, opts.EnumOptions).MaxCandidates()),
	)

	var (
		m    match
		wg   sync.WaitGroup
		errs = make([]error, workers)
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			errs[w] = runWorker(ctx, tmpl, p, anchor, opts.EnumOptions, w, workers, &m, progress)
		}(w)
	}
	wg.Wait()

	res := &Result{
		Outcome:  Exhausted,
		Anchor:   anchor,
		Attempts: progress.Attempts() - start,
		Elapsed:  time.Since(began),
	}
	if m.stop.Load() {
		res.Outcome = Found
		res.Candidate = m.candidate
		res.Digest = m.digest
		res.Index, _ = Rank(anchor, opts.EnumOptions, m.candidate)
	} else {
		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}

	slog.Debug("search done",
		slog.String("outcome", res.Outcome.String()),
		slog.Uint64("attempts", res.Attempts),
		slog.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

// runWorker tries every candidate in slice w of n.
func runWorker(ctx context.Context, tmpl *Template, p *Prefix, anchor models.Candidate, opts EnumOptions, w, n int, m *match, progress *Progress) error {
	e := NewPartition(anchor, opts, w, n)
	h := NewHasher(tmpl)

	var tried uint64
	defer func() { progress.add(tried) }()

	for {
		if m.stop.Load() {
			return nil
		}
		c, ok := e.Next()
		if !ok {
			return nil
		}

		d := h.Hash(c)
		tried++
		if p.Match(d) {
			m.claim(c, d)
			return nil
		}

		if tried%cancelCheckInterval == 0 {
			progress.add(tried)
			tried = 0
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}

// Verify re-serializes fields with the found candidate and hashes the bytes
// without the midstate cache. A mismatch means the fast path and the
// canonical form disagree.
func Verify(fields *models.CommitFields, res *Result) error {
	if !res.Found() {
		return nil
	}
	got := Sum(Serialize(fields, res.Candidate))
	if got != res.Digest {
		return fmt.Errorf("%w: candidate hashes to %s, search reported %s",
			ErrSerializationInconsistency, got, res.Digest)
	}
	return nil
}
