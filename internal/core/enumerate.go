package core

import (
	"github.com/kilupskalvis/git-force-prefix/internal/models"
)

// OffsetStepMinutes is the granularity of UTC offset variation.
const OffsetStepMinutes = 15

// maxRadius keeps anchor ± radius and level arithmetic far from overflow.
const maxRadius = 1 << 40

// EnumOptions shapes the candidate space around an anchor.
type EnumOptions struct {
	// Radius bounds how far, in seconds, each timestamp may move.
	Radius uint64
	// ForwardOnly only moves timestamps later, never earlier.
	ForwardOnly bool
	// PreserveOrder skips candidates whose committer time precedes the
	// author time, when the anchor itself has them in order.
	PreserveOrder bool
	// OffsetSteps enables UTC offset variation: both offsets are shifted by
	// 0, +15, -15, ... up to OffsetSteps*15 minutes. Zero keeps them fixed.
	OffsetSteps int
}

// Enumerator lazily yields candidates around an anchor in a fixed order:
//
//   - ascending total deviation |Δauthor| + |Δcommitter|;
//   - within a deviation level, ascending |Δauthor|, then + before -;
//   - for each author time, committer + before -;
//   - the UTC offset shift innermost, in the order 0, +15, -15, ...
//
// Two enumerators built from the same anchor and options yield identical
// sequences, which lets workers partition the space without sharing state.
type Enumerator struct {
	anchor  models.Candidate
	radius  int64
	forward bool
	ordered bool
	offsets []int

	// Only author magnitudes k with k%stride == slot are visited.
	stride int64
	slot   int64

	level int64 // |Δauthor| + |Δcommitter|
	k     int64 // |Δauthor|
	ai    int   // author sign index
	ci    int   // committer sign index
	oi    int   // offset delta index
	done  bool
	index uint64
}

// NewEnumerator returns an enumerator positioned before the first candidate,
// which is always the anchor itself.
func NewEnumerator(anchor models.Candidate, opts EnumOptions) *Enumerator {
	return NewPartition(anchor, opts, 0, 1)
}

// NewPartition returns an enumerator over slice slot of n. A slice holds
// every candidate whose author shift magnitude is congruent to slot modulo
// n, in the same relative order as NewEnumerator. The n slices are
// disjoint and together yield exactly the candidates of NewEnumerator.
func NewPartition(anchor models.Candidate, opts EnumOptions, slot, n int) *Enumerator {
	r := opts.Radius
	if r > maxRadius {
		r = maxRadius
	}
	if n < 1 {
		n = 1
	}
	e := &Enumerator{
		anchor:  anchor,
		radius:  int64(r),
		forward: opts.ForwardOnly,
		ordered: opts.PreserveOrder && anchor.CommitterTime >= anchor.AuthorTime,
		offsets: offsetDeltas(anchor, opts.OffsetSteps),
		stride:  int64(n),
		slot:    int64(slot % n),
	}
	// Level 0 only has k == 0.
	if e.slot != 0 {
		e.nextLevel()
	}
	return e
}

// offsetDeltas lists the offset shifts to try, skipping any that would push
// either role outside ±14:00.
func offsetDeltas(anchor models.Candidate, steps int) []int {
	deltas := []int{0}
	for s := 1; s <= steps; s++ {
		for _, d := range [2]int{s * OffsetStepMinutes, -s * OffsetStepMinutes} {
			if offsetInRange(anchor.AuthorOffset.Add(d)) && offsetInRange(anchor.CommitterOffset.Add(d)) {
				deltas = append(deltas, d)
			}
		}
	}
	return deltas
}

func offsetInRange(o models.Offset) bool {
	m := o.Minutes()
	return m >= -models.MaxOffsetMinutes && m <= models.MaxOffsetMinutes
}

// Next returns the next candidate, or false once the radius is exhausted.
func (e *Enumerator) Next() (models.Candidate, bool) {
	for !e.done {
		c, ok := e.current()
		e.advance()
		if ok {
			e.index++
			return c, true
		}
	}
	return models.Candidate{}, false
}

// Index returns how many candidates this enumerator has yielded so far.
func (e *Enumerator) Index() uint64 {
	return e.index
}

// Take returns up to n further candidates.
func (e *Enumerator) Take(n int) []models.Candidate {
	out := make([]models.Candidate, 0, n)
	for len(out) < n {
		c, ok := e.Next()
		if !ok {
			break
		}
		out = append(out, c)
	}
	return out
}

// MaxCandidates returns an upper bound on the number of candidates the
// full enumeration yields. It is exact unless PreserveOrder filters some
// out.
func (e *Enumerator) MaxCandidates() uint64 {
	side := uint64(2*e.radius + 1)
	if e.forward {
		side = uint64(e.radius + 1)
	}
	return side * side * uint64(len(e.offsets))
}

func (e *Enumerator) current() (models.Candidate, bool) {
	da := e.k * e.sign(e.ai)
	dc := (e.level - e.k) * e.sign(e.ci)
	at := e.anchor.AuthorTime + da
	ct := e.anchor.CommitterTime + dc
	if e.ordered && ct < at {
		return models.Candidate{}, false
	}
	d := e.offsets[e.oi]
	return models.Candidate{
		AuthorTime:      at,
		AuthorOffset:    e.anchor.AuthorOffset.Add(d),
		CommitterTime:   ct,
		CommitterOffset: e.anchor.CommitterOffset.Add(d),
	}, true
}

func (e *Enumerator) advance() {
	e.oi++
	if e.oi < len(e.offsets) {
		return
	}
	e.oi = 0
	e.ci++
	if e.ci < e.signs(e.level-e.k) {
		return
	}
	e.ci = 0
	e.ai++
	if e.ai < e.signs(e.k) {
		return
	}
	e.ai = 0
	e.k += e.stride
	if e.k <= min(e.level, e.radius) {
		return
	}
	e.nextLevel()
}

// nextLevel moves to the first owned author magnitude of the next level
// that has one.
func (e *Enumerator) nextLevel() {
	for {
		e.level++
		if e.level > 2*e.radius {
			e.done = true
			return
		}
		e.k = e.firstK(e.level)
		if e.k <= min(e.level, e.radius) {
			return
		}
	}
}

// firstK returns the smallest owned author magnitude in level.
func (e *Enumerator) firstK(level int64) int64 {
	lo := max(0, level-e.radius)
	return lo + ((e.slot-lo)%e.stride+e.stride)%e.stride
}

// blockLen returns how many candidates the (level, k) block yields.
func (e *Enumerator) blockLen(level, k int64) uint64 {
	var n uint64
	for ai := 0; ai < e.signs(k); ai++ {
		at := e.anchor.AuthorTime + k*e.sign(ai)
		for ci := 0; ci < e.signs(level-k); ci++ {
			ct := e.anchor.CommitterTime + (level-k)*e.sign(ci)
			if !e.ordered || ct >= at {
				n++
			}
		}
	}
	return n * uint64(len(e.offsets))
}

// Rank returns the zero-based position of c in the full enumeration for
// anchor and opts, or false if the enumeration never yields c. Whole blocks
// before c are counted without building their candidates.
func Rank(anchor models.Candidate, opts EnumOptions, c models.Candidate) (uint64, bool) {
	e := NewEnumerator(anchor, opts)
	da, dc := c.AuthorDelta(anchor), c.CommitterDelta(anchor)
	k := absInt(da)
	level := k + absInt(dc)
	if k > e.radius || level-k > e.radius {
		return 0, false
	}

	var rank uint64
	for l := int64(0); l < level; l++ {
		for j := max(0, l-e.radius); j <= min(l, e.radius); j++ {
			rank += e.blockLen(l, j)
		}
	}
	for j := max(0, level-e.radius); j < k; j++ {
		rank += e.blockLen(level, j)
	}

	e.level, e.k = level, k
	for !e.done && e.level == level && e.k == k {
		got, ok := e.current()
		e.advance()
		if !ok {
			continue
		}
		if got == c {
			return rank, true
		}
		rank++
	}
	return 0, false
}

func absInt(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// signs returns how many directions a shift of magnitude mag can take.
func (e *Enumerator) signs(mag int64) int {
	if mag == 0 || e.forward {
		return 1
	}
	return 2
}

func (e *Enumerator) sign(idx int) int64 {
	if idx == 0 {
		return 1
	}
	return -1
}
