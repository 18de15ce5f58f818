// Package field models the fields of view selected for Ki67 scoring.
//
// All coordinates are in the original (full-resolution) image frame.
package field

import "fmt"

// ViewingState tells whether a field is the one being scored, hovered, or neither.
type ViewingState int

const (
	Current ViewingState = iota
	Preview
	NotCurrent
)

func (s ViewingState) String() string {
	switch s {
	case Current:
		return "current"
	case Preview:
		return "preview"
	case NotCurrent:
		return "not-current"
	default:
		return fmt.Sprintf("ViewingState(%d)", int(s))
	}
}

// ScoringState tracks scoring progress of a field.
type ScoringState int

const (
	NotScored ScoringState = iota
	Scoring
	Scored
)

func (s ScoringState) String() string {
	switch s {
	case NotScored:
		return "not-scored"
	case Scoring:
		return "scoring"
	case Scored:
		return "scored"
	default:
		return fmt.Sprintf("ScoringState(%d)", int(s))
	}
}

// Ki67State is the categorical Ki67 positivity of a field. Values are ordered:
// Negligible < Low < Medium < High < HotSpot.
type Ki67State int

const (
	Negligible Ki67State = iota
	Low
	Medium
	High
	HotSpot
)

func (k Ki67State) String() string {
	switch k {
	case Negligible:
		return "negligible"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case HotSpot:
		return "hot-spot"
	default:
		return fmt.Sprintf("Ki67State(%d)", int(k))
	}
}

// Extent is a rectangle expressed in original image coordinates, such as a viewport.
type Extent interface {
	OriginalX() int
	OriginalY() int
	OriginalX2() int
	OriginalY2() int
}

// FieldOfView is a square evaluation region centred on (x, y). Geometry is fixed at
// creation; viewing and scoring states change in place.
type FieldOfView struct {
	x        int
	y        int
	diameter int
	viewing  ViewingState
	scoring  ScoringState
	ki67     Ki67State
}

// New creates a field centred at x, y with the given diameter, all in original pixels.
func New(x, y, diameter int, viewing ViewingState, scoring ScoringState, ki67 Ki67State) *FieldOfView {
	return &FieldOfView{
		x:        x,
		y:        y,
		diameter: diameter,
		viewing:  viewing,
		scoring:  scoring,
		ki67:     ki67,
	}
}

// X returns the centre x in original pixels.
func (f *FieldOfView) X() int { return f.x }

// Y returns the centre y in original pixels.
func (f *FieldOfView) Y() int { return f.y }

// Diameter returns the side of the field's square in original pixels.
func (f *FieldOfView) Diameter() int { return f.diameter }

// ViewingState returns whether the field is current, previewed or neither.
func (f *FieldOfView) ViewingState() ViewingState { return f.viewing }

// ScoringState returns the scoring progress.
func (f *FieldOfView) ScoringState() ScoringState { return f.scoring }

// Ki67State returns the Ki67 positivity level.
func (f *FieldOfView) Ki67State() Ki67State { return f.ki67 }

// SetViewingState sets the viewing state without touching other fields.
func (f *FieldOfView) SetViewingState(s ViewingState) { f.viewing = s }

// SetScoringState sets the scoring state.
func (f *FieldOfView) SetScoringState(s ScoringState) { f.scoring = s }

// Clone returns an independent copy of f.
func (f *FieldOfView) Clone() *FieldOfView {
	c := *f
	return &c
}

// ShiftX moves the centre horizontally. It exists only to separate a new field
// from an existing one that would otherwise compare equal.
func (f *FieldOfView) ShiftX(dx int) { f.x += dx }

// IsHotspot reports whether the Ki67 level is HotSpot.
func (f *FieldOfView) IsHotspot() bool { return f.ki67 == HotSpot }

// IsScored reports whether scoring has finished.
func (f *FieldOfView) IsScored() bool { return f.scoring == Scored }

// IsCurrentViewing reports whether the field is the current one.
func (f *FieldOfView) IsCurrentViewing() bool { return f.viewing == Current }

// IsPreviewing reports whether the field is being hovered.
func (f *FieldOfView) IsPreviewing() bool { return f.viewing == Preview }

// Equal compares position, diameter and scoring state. Ki67 and viewing state are
// ignored, so two distinct selections at the same spot alias each other.
func (f *FieldOfView) Equal(o *FieldOfView) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f == o {
		return true
	}
	return f.x == o.x &&
		f.y == o.y &&
		f.diameter == o.diameter &&
		f.scoring == o.scoring
}

// InView reports whether the original-image point lies in the field's square, edges included.
func (f *FieldOfView) InView(px, py int) bool {
	r := f.diameter / 2
	return px <= f.x+r &&
		px >= f.x-r &&
		py <= f.y+r &&
		py >= f.y-r
}

// InViewport reports whether the field's square overlaps e, i.e. whether it must be drawn.
func (f *FieldOfView) InViewport(e Extent) bool {
	r := f.diameter / 2
	return e.OriginalX() <= f.x+r &&
		e.OriginalX2() >= f.x-r &&
		e.OriginalY() <= f.y+r &&
		e.OriginalY2() >= f.y-r
}

func (f *FieldOfView) String() string {
	return fmt.Sprintf("field(%d,%d d=%d %s %s %s)", f.x, f.y, f.diameter, f.viewing, f.scoring, f.ki67)
}
