// Package viewport pages a downsampled preview image through a fixed-size panel.
//
// Three coordinate frames are kept consistent:
//
//  1. original image: full-resolution slide, used for scoring and interchange
//  2. preview image: the downsampled image actually displayed (x, y here)
//  3. panel ("view"): on-screen pixels, letterboxed inside the panel
//
// original = preview × scaleToOriginal, panel = (preview − topLeft) × magnification.
package viewport

import (
	"errors"
	"fmt"
	"image"
	"math"
)

const (
	// ZoomIncrement is the magnification change per zoom step (one wheel click).
	ZoomIncrement = 0.04
	// ZoomMin is the zoom-in ceiling; larger means more zoom.
	ZoomMin = 2.0
)

// ErrInvalidGeometry is returned by New when dimensions or scale are out of range.
var ErrInvalidGeometry = errors.New("viewport: invalid geometry")

// Viewport holds the visible rectangle of the preview image inside a panel.
// It is not safe for concurrent mutation.
type Viewport struct {
	// top-left corner in preview coordinates
	x int
	y int

	// letterboxed footprint inside the panel
	viewableWidth  int
	viewableHeight int
	xOffset        int
	yOffset        int

	panelWidth  int
	panelHeight int
	imageWidth  int
	imageHeight int

	magnification float64
	// maxZoom is the zoomed-out floor, minZoom the zoomed-in ceiling
	maxZoom         float64
	minZoom         float64
	scaleToOriginal float64
}

// Option customizes a Viewport at construction.
type Option func(*Viewport)

// WithOrigin sets the initial top-left corner in preview coordinates.
func WithOrigin(x, y int) Option {
	return func(v *Viewport) {
		v.x = x
		v.y = y
	}
}

// WithMagnification sets the initial magnification. It is clamped into
// [MaxZoomMagnification, MinZoomMagnification] like any other zoom.
func WithMagnification(m float64) Option {
	return func(v *Viewport) {
		v.magnification = m
	}
}

// New creates a viewport for a preview image of imageWidth×imageHeight shown in a
// panelWidth×panelHeight panel. scaleToOriginal relates one preview pixel to the
// original image (original = preview × scaleToOriginal) and must be at least 1.
// Without options the whole image is fitted into the panel.
func New(panelWidth, panelHeight, imageWidth, imageHeight int, scaleToOriginal float64, opts ...Option) (*Viewport, error) {
	if panelWidth <= 0 || panelHeight <= 0 {
		return nil, fmt.Errorf("%w: panel %dx%d must be positive", ErrInvalidGeometry, panelWidth, panelHeight)
	}
	if imageWidth <= 0 || imageHeight <= 0 {
		return nil, fmt.Errorf("%w: image %dx%d must be positive", ErrInvalidGeometry, imageWidth, imageHeight)
	}
	if scaleToOriginal < 1 || math.IsNaN(scaleToOriginal) || math.IsInf(scaleToOriginal, 0) {
		return nil, fmt.Errorf("%w: scale to original %v must be >= 1", ErrInvalidGeometry, scaleToOriginal)
	}

	v := &Viewport{
		panelWidth:      panelWidth,
		panelHeight:     panelHeight,
		imageWidth:      imageWidth,
		imageHeight:     imageHeight,
		scaleToOriginal: scaleToOriginal,
		minZoom:         ZoomMin,
		maxZoom: math.Min(
			float64(panelWidth)/float64(imageWidth),
			float64(panelHeight)/float64(imageHeight)),
	}
	v.magnification = v.maxZoom

	for _, opt := range opts {
		opt(v)
	}

	if v.x < 0 {
		v.x = 0
	}
	if v.y < 0 {
		v.y = 0
	}
	if v.magnification <= 0 || math.IsNaN(v.magnification) {
		v.magnification = v.maxZoom
	}

	// Seed the footprint from the whole image, then settle through the regular
	// zoom path so the invariants hold from the start.
	v.letterbox(imageWidth, imageHeight)
	v.applyMagnification(v.magnification)

	return v, nil
}

// ChangeMagnification zooms by delta steps; positive delta zooms out, negative zooms in.
// The visible rectangle stays centred on the point that was centred before.
func (v *Viewport) ChangeMagnification(delta float64) {
	v.applyMagnification(v.magnification - delta*ZoomIncrement)
}

// ChangeMagnificationToOne zooms to 100% of the preview image.
func (v *Viewport) ChangeMagnificationToOne() {
	v.applyMagnification(1)
}

// ChangeMagnificationToFitWindow zooms out until the whole image fits the panel.
func (v *Viewport) ChangeMagnificationToFitWindow() {
	v.applyMagnification(v.maxZoom)
}

// applyMagnification runs recenter, footprint recompute and re-clamp, in that order.
func (v *Viewport) applyMagnification(target float64) {
	midX, midY := v.Center()

	v.magnification = math.Max(v.maxZoom, math.Min(v.minZoom, target))

	v.x = max(0, midX-round(float64(v.panelWidth)/v.magnification*0.5))
	v.y = max(0, midY-round(float64(v.panelHeight)/v.magnification*0.5))

	v.letterbox(
		min(round(float64(v.panelWidth)/v.magnification), v.imageWidth),
		min(round(float64(v.panelHeight)/v.magnification), v.imageHeight))

	if v.X2() > v.imageWidth {
		v.x = v.imageWidth - v.spanX()
	}
	if v.Y2() > v.imageHeight {
		v.y = v.imageHeight - v.spanY()
	}
}

// letterbox fits a viewing area of w×h preview pixels into the panel. One axis
// always fills the panel exactly.
func (v *Viewport) letterbox(w, h int) {
	if w > h {
		v.viewableWidth = v.panelWidth
		v.viewableHeight = round(float64(v.panelHeight) * float64(h) / float64(w))
	} else {
		v.viewableWidth = round(float64(v.panelWidth) * float64(w) / float64(h))
		v.viewableHeight = v.panelHeight
	}
	v.xOffset = round(float64(v.panelWidth-v.viewableWidth) / 2)
	v.yOffset = round(float64(v.panelHeight-v.viewableHeight) / 2)
}

// Move pans by dX, dY panel pixels, clamped to the image.
func (v *Viewport) Move(dX, dY int) {
	v.x = min(v.imageWidth-v.spanX(), max(0, v.x+round(float64(dX)/v.magnification)))
	v.y = min(v.imageHeight-v.spanY(), max(0, v.y+round(float64(dY)/v.magnification)))
}

// spanX is the preview width covered by the viewable footprint, capped at the image.
func (v *Viewport) spanX() int {
	return min(round(float64(v.viewableWidth)/v.magnification), v.imageWidth)
}

func (v *Viewport) spanY() int {
	return min(round(float64(v.viewableHeight)/v.magnification), v.imageHeight)
}

// Center returns the centre of the visible rectangle in preview coordinates.
func (v *Viewport) Center() (int, int) {
	return (v.X2()-v.x)/2 + v.x, (v.Y2()-v.y)/2 + v.y
}

// Magnification is relative to the preview image; 1 is 100%.
func (v *Viewport) Magnification() float64 { return v.magnification }

// MaxZoomMagnification is the zoomed-out floor where the whole image fits.
func (v *Viewport) MaxZoomMagnification() float64 { return v.maxZoom }

// MinZoomMagnification is the zoomed-in ceiling.
func (v *Viewport) MinZoomMagnification() float64 { return v.minZoom }

// ScaleToOriginal is the preview to original image ratio.
func (v *Viewport) ScaleToOriginal() float64 { return v.scaleToOriginal }

// Width is the viewable width in panel pixels.
func (v *Viewport) Width() int { return v.viewableWidth }

// Height is the viewable height in panel pixels.
func (v *Viewport) Height() int { return v.viewableHeight }

// XOffset is the horizontal letterbox padding.
func (v *Viewport) XOffset() int { return v.xOffset }

// YOffset is the vertical letterbox padding.
func (v *Viewport) YOffset() int { return v.yOffset }

// PanelWidth is the full panel width, letterbox included.
func (v *Viewport) PanelWidth() int { return v.panelWidth }

// PanelHeight is the full panel height, letterbox included.
func (v *Viewport) PanelHeight() int { return v.panelHeight }

// ImageWidth is the preview image width, not the original's.
func (v *Viewport) ImageWidth() int { return v.imageWidth }

// ImageHeight is the preview image height, not the original's.
func (v *Viewport) ImageHeight() int { return v.imageHeight }

// OriginalImageWidth is the preview width scaled to the original image.
func (v *Viewport) OriginalImageWidth() int {
	return round(float64(v.imageWidth) * v.scaleToOriginal)
}

// OriginalImageHeight is the preview height scaled to the original image.
func (v *Viewport) OriginalImageHeight() int {
	return round(float64(v.imageHeight) * v.scaleToOriginal)
}

// X is the left edge of the visible rectangle in preview coordinates.
func (v *Viewport) X() int { return v.x }

// Y is the top edge of the visible rectangle in preview coordinates.
func (v *Viewport) Y() int { return v.y }

// X2 is the right edge of the visible rectangle in preview coordinates.
func (v *Viewport) X2() int { return v.x + v.spanX() }

// Y2 is the bottom edge of the visible rectangle in preview coordinates.
func (v *Viewport) Y2() int { return v.y + v.spanY() }

// OriginalX is X in original image coordinates.
func (v *Viewport) OriginalX() int { return v.toOriginal(v.x) }

// OriginalY is Y in original image coordinates.
func (v *Viewport) OriginalY() int { return v.toOriginal(v.y) }

// OriginalX2 is X2 in original image coordinates.
func (v *Viewport) OriginalX2() int { return v.toOriginal(v.X2()) }

// OriginalY2 is Y2 in original image coordinates.
func (v *Viewport) OriginalY2() int { return v.toOriginal(v.Y2()) }

// Rect is the visible rectangle in preview coordinates.
func (v *Viewport) Rect() image.Rectangle {
	return image.Rect(v.x, v.y, v.X2(), v.Y2())
}

// OriginalRect is the visible rectangle in original image coordinates.
func (v *Viewport) OriginalRect() image.Rectangle {
	return image.Rect(v.OriginalX(), v.OriginalY(), v.OriginalX2(), v.OriginalY2())
}

// ProjectRealX maps a panel x to preview x.
func (v *Viewport) ProjectRealX(viewX int) int {
	return v.x + round(float64(viewX-v.xOffset)/v.magnification)
}

// ProjectRealY maps a panel y to preview y.
func (v *Viewport) ProjectRealY(viewY int) int {
	return v.y + round(float64(viewY-v.yOffset)/v.magnification)
}

// ProjectOriginalX maps a panel x to original x. Each stage rounds.
func (v *Viewport) ProjectOriginalX(viewX int) int {
	return v.toOriginal(v.ProjectRealX(viewX))
}

// ProjectOriginalY maps a panel y to original y. Each stage rounds.
func (v *Viewport) ProjectOriginalY(viewY int) int {
	return v.toOriginal(v.ProjectRealY(viewY))
}

// ProjectViewX maps a preview x to an x relative to the viewable area (no letterbox offset).
func (v *Viewport) ProjectViewX(realX int) int {
	return round(float64(realX-v.x) * v.magnification)
}

// ProjectViewY maps a preview y to a y relative to the viewable area (no letterbox offset).
func (v *Viewport) ProjectViewY(realY int) int {
	return round(float64(realY-v.y) * v.magnification)
}

// ProjectPanelX maps a preview x to an absolute panel x, letterbox offset included.
func (v *Viewport) ProjectPanelX(realX int) int {
	return v.xOffset + v.ProjectViewX(realX)
}

// ProjectPanelY maps a preview y to an absolute panel y, letterbox offset included.
func (v *Viewport) ProjectPanelY(realY int) int {
	return v.yOffset + v.ProjectViewY(realY)
}

// ProjectViewLength maps a preview length to panel pixels.
func (v *Viewport) ProjectViewLength(realLength int) int {
	return round(float64(realLength) * v.magnification)
}

func (v *Viewport) toOriginal(p int) int {
	return round(float64(p) * v.scaleToOriginal)
}

// round rounds half up, matching the pixel convention used across frames.
func round(f float64) int {
	return int(math.Floor(f + 0.5))
}
