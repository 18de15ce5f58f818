package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type extent struct{ x, y, x2, y2 int }

func (e extent) OriginalX() int  { return e.x }
func (e extent) OriginalY() int  { return e.y }
func (e extent) OriginalX2() int { return e.x2 }
func (e extent) OriginalY2() int { return e.y2 }

func TestStatePredicates(t *testing.T) {
	f := New(100, 200, 50, Current, Scored, HotSpot)

	assert.True(t, f.IsCurrentViewing())
	assert.False(t, f.IsPreviewing())
	assert.True(t, f.IsScored())
	assert.True(t, f.IsHotspot())

	f.SetViewingState(Preview)
	f.SetScoringState(Scoring)
	assert.False(t, f.IsCurrentViewing())
	assert.True(t, f.IsPreviewing())
	assert.False(t, f.IsScored())

	// transitions never touch geometry
	assert.Equal(t, 100, f.X())
	assert.Equal(t, 200, f.Y())
	assert.Equal(t, 50, f.Diameter())
}

func TestKi67Ordering(t *testing.T) {
	assert.Less(t, Negligible, Low)
	assert.Less(t, Low, Medium)
	assert.Less(t, Medium, High)
	assert.Less(t, High, HotSpot)
}

func TestEqual(t *testing.T) {
	a := New(3822, 4856, 4000, NotCurrent, NotScored, Negligible)

	tests := []struct {
		name  string
		other *FieldOfView
		want  bool
	}{
		{"different ki67 and viewing", New(3822, 4856, 4000, Current, NotScored, HotSpot), true},
		{"different scoring", New(3822, 4856, 4000, NotCurrent, Scored, Negligible), false},
		{"different x", New(3823, 4856, 4000, NotCurrent, NotScored, Negligible), false},
		{"different y", New(3822, 4857, 4000, NotCurrent, NotScored, Negligible), false},
		{"different diameter", New(3822, 4856, 3999, NotCurrent, NotScored, Negligible), false},
		{"nil", nil, false},
		{"self", a, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Equal(tt.other))
		})
	}
}

func TestInView_InclusiveSquare(t *testing.T) {
	f := New(1000, 2000, 400, NotCurrent, NotScored, Low)

	assert.True(t, f.InView(1000, 2000))
	assert.True(t, f.InView(800, 2000))
	assert.True(t, f.InView(1200, 2000))
	assert.True(t, f.InView(1000, 1800))
	assert.True(t, f.InView(1000, 2200))
	// corners are inside: the footprint is square, not circular
	assert.True(t, f.InView(1200, 2200))
	assert.True(t, f.InView(800, 1800))

	assert.False(t, f.InView(799, 2000))
	assert.False(t, f.InView(1201, 2000))
	assert.False(t, f.InView(1000, 2201))
}

func TestInView_OddDiameter(t *testing.T) {
	// half of 401 truncates to 200
	f := New(0, 0, 401, NotCurrent, NotScored, Low)
	assert.True(t, f.InView(200, 0))
	assert.False(t, f.InView(201, 0))
}

func TestInViewport(t *testing.T) {
	f := New(1000, 1000, 200, NotCurrent, NotScored, Low)

	tests := []struct {
		name string
		e    extent
		want bool
	}{
		{"contains field", extent{0, 0, 2000, 2000}, true},
		{"inside field", extent{950, 950, 1050, 1050}, true},
		{"touches left edge", extent{0, 0, 900, 2000}, true},
		{"touches right edge", extent{1100, 0, 2000, 2000}, true},
		{"left of field", extent{0, 0, 899, 2000}, false},
		{"right of field", extent{1101, 0, 2000, 2000}, false},
		{"above field", extent{0, 0, 2000, 899}, false},
		{"below field", extent{0, 1101, 2000, 2000}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.InViewport(tt.e))
		})
	}
}

func TestShiftX(t *testing.T) {
	f := New(10, 20, 30, NotCurrent, NotScored, Low)
	f.ShiftX(-1)
	assert.Equal(t, 9, f.X())
	assert.Equal(t, 20, f.Y())
}

func TestClone(t *testing.T) {
	f := New(10, 20, 30, Current, Scoring, HotSpot)
	c := f.Clone()
	assert.NotSame(t, f, c)
	assert.True(t, f.Equal(c))
	assert.Equal(t, f.String(), c.String())

	c.ShiftX(1)
	c.SetViewingState(NotCurrent)
	assert.Equal(t, 10, f.X())
	assert.Equal(t, Current, f.ViewingState())
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "current", Current.String())
	assert.Equal(t, "scored", Scored.String())
	assert.Equal(t, "hot-spot", HotSpot.String())
	assert.Equal(t, "Ki67State(9)", Ki67State(9).String())
	assert.Equal(t, "field(1,2 d=3 preview scoring medium)", New(1, 2, 3, Preview, Scoring, Medium).String())
}
