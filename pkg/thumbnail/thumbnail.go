// Package thumbnail projects preview coordinates into a small overview panel
// anchored to the top-right corner of the main panel.
package thumbnail

import (
	"image"
	"math"
)

// Parent is the viewport a thumbnail overlays.
type Parent interface {
	PanelWidth() int
	ImageWidth() int
}

// Thumbnail keeps the fixed scale between the preview image and the overview.
// Zooming or panning the parent does not change it; build a new one instead.
type Thumbnail struct {
	width      int
	height     int
	panelWidth int
	scale      float64
}

// New creates a width×height thumbnail for parent.
func New(parent Parent, width, height int) *Thumbnail {
	return &Thumbnail{
		width:      width,
		height:     height,
		panelWidth: parent.PanelWidth(),
		scale:      float64(width) / float64(parent.ImageWidth()),
	}
}

// Width is the thumbnail width in panel pixels.
func (t *Thumbnail) Width() int { return t.width }

// Height is the thumbnail height in panel pixels.
func (t *Thumbnail) Height() int { return t.height }

// Scale is thumbnail pixels per preview pixel.
func (t *Thumbnail) Scale() float64 { return t.scale }

// ProjectRealX maps a preview x to a panel x inside the thumbnail.
func (t *Thumbnail) ProjectRealX(imageX int) int {
	return t.panelWidth - t.width + round(float64(imageX)*t.scale)
}

// ProjectRealY maps a preview y to a panel y inside the thumbnail.
func (t *Thumbnail) ProjectRealY(imageY int) int {
	return round(float64(imageY) * t.scale)
}

// ProjectRect maps a preview rectangle, typically the parent's visible area, into the panel.
func (t *Thumbnail) ProjectRect(r image.Rectangle) image.Rectangle {
	return image.Rect(
		t.ProjectRealX(r.Min.X), t.ProjectRealY(r.Min.Y),
		t.ProjectRealX(r.Max.X), t.ProjectRealY(r.Max.Y))
}

// Bounds is the thumbnail's own area in panel coordinates.
func (t *Thumbnail) Bounds() image.Rectangle {
	x0 := t.panelWidth - t.width
	return image.Rect(x0, 0, x0+t.width, t.height)
}

func round(f float64) int {
	return int(math.Floor(f + 0.5))
}
