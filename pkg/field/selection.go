package field

// Selection is an ordered set of fields. Order is meaningful and survives encoding.
// At most one field should be Current; SetCurrent keeps it that way, direct state
// changes do not.
type Selection []*FieldOfView

// Current returns the first field being viewed, or nil.
func (s Selection) Current() *FieldOfView {
	for _, f := range s {
		if f != nil && f.IsCurrentViewing() {
			return f
		}
	}
	return nil
}

// Scored returns the scored fields in selection order.
func (s Selection) Scored() Selection {
	out := Selection{}
	for _, f := range s {
		if f != nil && f.IsScored() {
			out = append(out, f)
		}
	}
	return out
}

// Visible returns the fields overlapping e in selection order.
func (s Selection) Visible(e Extent) Selection {
	out := Selection{}
	for _, f := range s {
		if f != nil && f.InViewport(e) {
			out = append(out, f)
		}
	}
	return out
}

// At returns the first field containing the original-image point, or nil.
func (s Selection) At(px, py int) *FieldOfView {
	for _, f := range s {
		if f != nil && f.InView(px, py) {
			return f
		}
	}
	return nil
}

// IndexOf returns the position of the first field equal to f, or -1.
func (s Selection) IndexOf(f *FieldOfView) int {
	for i, g := range s {
		if g.Equal(f) {
			return i
		}
	}
	return -1
}

// Contains reports whether a field equal to f is present.
func (s Selection) Contains(f *FieldOfView) bool {
	return s.IndexOf(f) >= 0
}

// Add appends f. If f equals a field already present it is shifted right one
// pixel at a time until it no longer does.
func (s Selection) Add(f *FieldOfView) Selection {
	if f == nil {
		return s
	}
	for s.Contains(f) {
		f.ShiftX(1)
	}
	return append(s, f)
}

// Remove drops the first field equal to f.
func (s Selection) Remove(f *FieldOfView) Selection {
	i := s.IndexOf(f)
	if i < 0 {
		return s
	}
	return append(s[:i:i], s[i+1:]...)
}

// SetCurrent makes f the only Current field; the previous one becomes NotCurrent.
func (s Selection) SetCurrent(f *FieldOfView) {
	for _, g := range s {
		if g != nil && g != f && g.IsCurrentViewing() {
			g.SetViewingState(NotCurrent)
		}
	}
	if f != nil {
		f.SetViewingState(Current)
	}
}

// ClearPreview returns every Preview field to NotCurrent.
func (s Selection) ClearPreview() {
	for _, f := range s {
		if f != nil && f.IsPreviewing() {
			f.SetViewingState(NotCurrent)
		}
	}
}
