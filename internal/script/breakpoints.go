package script

import (
	"sort"
	"strings"
)

// DefaultMarker is the token appended to a line to flag a breakpoint.
const DefaultMarker = "#@breakpoint"

// Breakpoints is the set of line indexes carrying a breakpoint marker.
type Breakpoints struct {
	lines map[int]struct{}
}

// NewBreakpoints creates a set holding the given line indexes.
func NewBreakpoints(lines ...int) *Breakpoints {
	b := &Breakpoints{lines: make(map[int]struct{}, len(lines))}
	for _, l := range lines {
		b.Add(l)
	}
	return b
}

// Has reports whether line carries a marker. A nil set has none.
func (b *Breakpoints) Has(line int) bool {
	if b == nil {
		return false
	}
	_, ok := b.lines[line]
	return ok
}

// Add marks line. Negative indexes are ignored. The receiver must be
// non-nil; the zero value is an empty set.
func (b *Breakpoints) Add(line int) {
	if line < 0 {
		return
	}
	if b.lines == nil {
		b.lines = make(map[int]struct{})
	}
	b.lines[line] = struct{}{}
}

// Remove clears the marker on line.
func (b *Breakpoints) Remove(line int) {
	if b == nil {
		return
	}
	delete(b.lines, line)
}

// Toggle flips the marker on line and reports whether it is now set.
// The receiver must be non-nil; the zero value is an empty set.
func (b *Breakpoints) Toggle(line int) bool {
	if b.Has(line) {
		b.Remove(line)
		return false
	}
	b.Add(line)
	return true
}

// Len returns the number of marked lines.
func (b *Breakpoints) Len() int {
	if b == nil {
		return 0
	}
	return len(b.lines)
}

// Sorted returns the marked line indexes in ascending order.
func (b *Breakpoints) Sorted() []int {
	if b == nil {
		return nil
	}
	out := make([]int, 0, len(b.lines))
	for l := range b.lines {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// InsertLines records that n lines were inserted before index at.
// Markers on lines at or after at move down with their lines.
func (b *Breakpoints) InsertLines(at, n int) {
	if n <= 0 {
		return
	}
	b.remap(func(l int) (int, bool) {
		if l >= at {
			return l + n, true
		}
		return l, true
	})
}

// DeleteLines records that n lines starting at index at were removed.
// Markers on removed lines are dropped, later ones move up.
func (b *Breakpoints) DeleteLines(at, n int) {
	if n <= 0 {
		return
	}
	b.remap(func(l int) (int, bool) {
		switch {
		case l < at:
			return l, true
		case l < at+n:
			return 0, false
		default:
			return l - n, true
		}
	})
}

func (b *Breakpoints) remap(fn func(int) (int, bool)) {
	next := make(map[int]struct{}, len(b.lines))
	for l := range b.lines {
		if m, ok := fn(l); ok {
			next[m] = struct{}{}
		}
	}
	b.lines = next
}

// StripMarkers removes a trailing marker, and the whitespace before it, from
// every line and returns the clean lines with the set of marked indexes.
func StripMarkers(lines []string, marker string) ([]string, *Breakpoints) {
	if marker == "" {
		marker = DefaultMarker
	}
	bps := NewBreakpoints()
	clean := make([]string, len(lines))
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t")
		if body, ok := strings.CutSuffix(trimmed, marker); ok {
			clean[i] = strings.TrimRight(body, " \t")
			bps.Add(i)
			continue
		}
		clean[i] = line
	}
	return clean, bps
}

// AttachMarkers appends a space and the marker to every line in bps.
func AttachMarkers(lines []string, bps *Breakpoints, marker string) []string {
	if marker == "" {
		marker = DefaultMarker
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if bps.Has(i) {
			out[i] = line + " " + marker
			continue
		}
		out[i] = line
	}
	return out
}
