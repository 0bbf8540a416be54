package script

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestStripMarkers(t *testing.T) {
	lines := []string{
		`    e "Hello" #@breakpoint`,
		`    "plain"`,
		"    jump end   #@breakpoint  ",
		"#@breakpoint",
	}
	clean, bps := StripMarkers(lines, DefaultMarker)

	want := []string{`    e "Hello"`, `    "plain"`, "    jump end", ""}
	if diff := cmp.Diff(want, clean); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{0, 2, 3}, bps.Sorted())
}

func TestAttachMarkersInvertsStrip(t *testing.T) {
	lines := []string{`    e "Hello" #@breakpoint`, `    "plain"`}
	clean, bps := StripMarkers(lines, "")

	got := AttachMarkers(clean, bps, "")
	if diff := cmp.Diff(lines, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomMarker(t *testing.T) {
	clean, bps := StripMarkers([]string{"a ## bp", "b #@breakpoint"}, "## bp")

	assert.Equal(t, []string{"a", "b #@breakpoint"}, clean)
	assert.Equal(t, []int{0}, bps.Sorted())
}

func TestBreakpointsShift(t *testing.T) {
	tests := []struct {
		name string
		edit func(b *Breakpoints)
		want []int
	}{
		{"insert before", func(b *Breakpoints) { b.InsertLines(5, 1) }, []int{2, 8, 11}},
		{"insert at marked line", func(b *Breakpoints) { b.InsertLines(7, 2) }, []int{2, 9, 12}},
		{"insert after all", func(b *Breakpoints) { b.InsertLines(20, 3) }, []int{2, 7, 10}},
		{"delete marked line", func(b *Breakpoints) { b.DeleteLines(7, 1) }, []int{2, 9}},
		{"delete range", func(b *Breakpoints) { b.DeleteLines(1, 7) }, []int{3}},
		{"zero count", func(b *Breakpoints) { b.DeleteLines(2, 0) }, []int{2, 7, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBreakpoints(2, 7, 10)
			tt.edit(b)
			assert.Equal(t, tt.want, b.Sorted())
		})
	}
}

func TestBreakpointsToggle(t *testing.T) {
	b := NewBreakpoints()
	assert.True(t, b.Toggle(4))
	assert.True(t, b.Has(4))
	assert.False(t, b.Toggle(4))
	assert.Equal(t, 0, b.Len())

	var nilSet *Breakpoints
	assert.False(t, nilSet.Has(1))
	assert.Empty(t, nilSet.Sorted())
}

func TestBreakpointsZeroValue(t *testing.T) {
	var b Breakpoints
	b.Add(3)
	b.Add(-1)
	assert.True(t, b.Toggle(5))
	assert.Equal(t, []int{3, 5}, b.Sorted())

	var nilSet *Breakpoints
	assert.NotPanics(t, func() { nilSet.Remove(1) })
	assert.Equal(t, 0, nilSet.Len())
}
