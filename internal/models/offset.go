package models

import (
	"fmt"
	"math"
)

// Offset is a UTC offset in minutes east of UTC.
type Offset int32

// NegativeZero is git's "-0000" offset, used when the local zone is unknown.
// It behaves as zero minutes but keeps its sign when formatted.
const NegativeZero Offset = math.MinInt32

// MaxOffsetMinutes bounds offsets produced by the search (±14:00).
const MaxOffsetMinutes = 14 * 60

// ParseOffset parses a "±HHMM" offset as found in commit headers.
func ParseOffset(s string) (Offset, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	n := 0
	for i := 1; i < 5; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid UTC offset %q", s)
		}
		n = n*10 + int(c-'0')
	}
	hours, mins := n/100, n%100
	if mins > 59 {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	total := hours*60 + mins
	if s[0] == '-' {
		if total == 0 {
			return NegativeZero, nil
		}
		total = -total
	}
	return Offset(total), nil
}

// Minutes returns the offset in minutes; NegativeZero is 0.
func (o Offset) Minutes() int {
	if o == NegativeZero {
		return 0
	}
	return int(o)
}

// Seconds returns the offset in seconds, suitable for time.FixedZone.
func (o Offset) Seconds() int {
	return o.Minutes() * 60
}

// Add shifts the offset by delta minutes. A zero delta leaves
// NegativeZero untouched.
func (o Offset) Add(delta int) Offset {
	if delta == 0 {
		return o
	}
	return Offset(o.Minutes() + delta)
}

// String formats the offset as fixed-width "±HHMM".
func (o Offset) String() string {
	var buf [5]byte
	return string(o.AppendTo(buf[:0]))
}

// AppendTo appends the "±HHMM" form of the offset to b.
func (o Offset) AppendTo(b []byte) []byte {
	m := o.Minutes()
	sign := byte('+')
	if m < 0 || o == NegativeZero {
		sign = '-'
		m = -m
	}
	h, mm := m/60, m%60
	return append(b, sign,
		byte('0'+h/10%10), byte('0'+h%10),
		byte('0'+mm/10), byte('0'+mm%10))
}
