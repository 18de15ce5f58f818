package processing

import (
	"image"

	"github.com/disintegration/imaging"
)

// Preview is a downsampled copy of a slide image small enough to page through.
type Preview struct {
	Image          image.Image
	OriginalWidth  int
	OriginalHeight int
	// ScaleToOriginal converts preview pixels to original pixels, never below 1
	ScaleToOriginal float64
}

func (pv *Preview) Width() int  { return pv.Image.Bounds().Dx() }
func (pv *Preview) Height() int { return pv.Image.Bounds().Dy() }

// MakePreview fits img inside maxWidth×maxHeight keeping its aspect ratio.
// Images that already fit are used as they are.
func (p *Processor) MakePreview(img image.Image, maxWidth, maxHeight int) *Preview {
	b := img.Bounds()
	pv := &Preview{
		Image:           img,
		OriginalWidth:   b.Dx(),
		OriginalHeight:  b.Dy(),
		ScaleToOriginal: 1,
	}
	if maxWidth <= 0 || maxHeight <= 0 || (b.Dx() <= maxWidth && b.Dy() <= maxHeight) {
		return pv
	}

	pv.Image = imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	pv.ScaleToOriginal = float64(b.Dx()) / float64(pv.Width())
	if pv.ScaleToOriginal < 1 {
		pv.ScaleToOriginal = 1
	}
	return pv
}
