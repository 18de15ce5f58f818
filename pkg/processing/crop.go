package processing

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/gpec/fieldselector/pkg/field"
)

// FieldRect returns the square of f in original image pixels, clipped to bounds.
func FieldRect(f *field.FieldOfView, bounds image.Rectangle) image.Rectangle {
	r := f.Diameter() / 2
	return image.Rect(f.X()-r, f.Y()-r, f.X()+r, f.Y()+r).Intersect(bounds)
}

// CropField cuts the field out of the full resolution image. A positive size
// fits the crop into a size×size box.
func (p *Processor) CropField(img image.Image, f *field.FieldOfView, size int) (image.Image, error) {
	rect := FieldRect(f, img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("field at %d,%d lies outside the %dx%d image",
			f.X(), f.Y(), img.Bounds().Dx(), img.Bounds().Dy())
	}

	cropped := imaging.Crop(img, rect)
	if size > 0 && (cropped.Bounds().Dx() > size || cropped.Bounds().Dy() > size) {
		return imaging.Fit(cropped, size, size, imaging.Lanczos), nil
	}
	return cropped, nil
}
