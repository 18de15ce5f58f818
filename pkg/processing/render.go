package processing

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/gpec/fieldselector/pkg/field"
	"github.com/gpec/fieldselector/pkg/thumbnail"
	"github.com/gpec/fieldselector/pkg/viewport"
)

var (
	background     = color.NRGBA{32, 32, 32, 255}
	currentColor   = color.NRGBA{255, 0, 0, 255}
	previewColor   = color.NRGBA{255, 204, 0, 255}
	scoredColor    = color.NRGBA{0, 200, 0, 255}
	scoringColor   = color.NRGBA{255, 128, 0, 255}
	fieldColor     = color.NRGBA{0, 170, 255, 255}
	thumbnailFrame = color.NRGBA{200, 200, 200, 255}
	labelColor     = color.NRGBA{255, 255, 255, 255}
)

// Label is text drawn on a rendered image at a panel position (baseline left).
// A zero Color draws white.
type Label struct {
	Text  string
	Color color.NRGBA
	X     int
	Y     int
}

// RenderPanel draws what a panel shows for vp: the visible part of the preview
// letterboxed inside the panel, the fields overlapping it, and, when thumb is not
// nil, the overview in the top-right corner with the visible area outlined.
func (p *Processor) RenderPanel(preview image.Image, vp *viewport.Viewport, sel field.Selection, thumb *thumbnail.Thumbnail, labels ...Label) *image.NRGBA {
	panel := imaging.New(vp.PanelWidth(), vp.PanelHeight(), background)

	// sized by magnification so fields drawn through the projections line up even
	// when the visible span is capped short of the footprint
	rect := vp.Rect()
	w, h := vp.ProjectViewLength(rect.Dx()), vp.ProjectViewLength(rect.Dy())
	if w > 0 && h > 0 {
		visible := imaging.Crop(preview, rect.Add(preview.Bounds().Min))
		visible = imaging.Resize(visible, w, h, imaging.Linear)
		panel = imaging.Paste(panel, visible, image.Pt(vp.XOffset(), vp.YOffset()))
	}

	stroke := strokeWidth(vp.PanelWidth(), vp.PanelHeight())
	for _, f := range sel.Visible(vp) {
		drawRect(panel, panelRect(vp, f), stateColor(f), strokeFor(f, stroke))
	}

	if thumb != nil && thumb.Width() > 0 && thumb.Height() > 0 {
		small := imaging.Resize(preview, thumb.Width(), thumb.Height(), imaging.Box)
		origin := image.Pt(thumb.ProjectRealX(0), thumb.ProjectRealY(0))
		panel = imaging.Paste(panel, small, origin)
		drawRect(panel, thumb.Bounds(), thumbnailFrame, 1)
		drawRect(panel, thumb.ProjectRect(vp.Rect()), currentColor, 1)
	}

	for _, l := range labels {
		drawLabel(panel, l)
	}
	return panel
}

// RenderOverlay draws every field of sel over the whole preview with its index
// in selection order. scaleToOriginal converts preview pixels to original pixels.
func (p *Processor) RenderOverlay(preview image.Image, sel field.Selection, scaleToOriginal float64) *image.NRGBA {
	out := imaging.Clone(preview)
	if scaleToOriginal <= 0 {
		scaleToOriginal = 1
	}

	stroke := strokeWidth(out.Bounds().Dx(), out.Bounds().Dy())
	for i, f := range sel {
		if f == nil {
			continue
		}
		r := previewRect(f, scaleToOriginal)
		drawRect(out, r, stateColor(f), strokeFor(f, stroke))
		drawLabel(out, Label{
			Text:  strconv.Itoa(i + 1),
			Color: labelColor,
			X:     r.Min.X + stroke + 1,
			Y:     r.Min.Y + stroke + labelAscent,
		})
	}
	return out
}

// previewRect is the field's square in preview coordinates.
func previewRect(f *field.FieldOfView, scale float64) image.Rectangle {
	cx := float64(f.X()) / scale
	cy := float64(f.Y()) / scale
	r := float64(f.Diameter()) / 2 / scale
	return image.Rect(
		int(math.Round(cx-r)), int(math.Round(cy-r)),
		int(math.Round(cx+r)), int(math.Round(cy+r)))
}

// panelRect is the field's square in panel coordinates.
func panelRect(vp *viewport.Viewport, f *field.FieldOfView) image.Rectangle {
	r := previewRect(f, vp.ScaleToOriginal())
	return image.Rect(
		vp.ProjectPanelX(r.Min.X), vp.ProjectPanelY(r.Min.Y),
		vp.ProjectPanelX(r.Max.X), vp.ProjectPanelY(r.Max.Y))
}

func stateColor(f *field.FieldOfView) color.NRGBA {
	switch {
	case f.IsCurrentViewing():
		return currentColor
	case f.IsPreviewing():
		return previewColor
	case f.IsScored():
		return scoredColor
	case f.ScoringState() == field.Scoring:
		return scoringColor
	default:
		return fieldColor
	}
}

// strokeFor doubles the outline of hot spots.
func strokeFor(f *field.FieldOfView, stroke int) int {
	if f.IsHotspot() {
		return stroke * 2
	}
	return stroke
}

// strokeWidth is about 0.4% of the shorter side.
func strokeWidth(w, h int) int {
	return int(math.Max(2, 0.004*float64(min(w, h))))
}
