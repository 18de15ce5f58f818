// Package stain finds Ki67 hot spots on a slide preview from pixel colour alone.
//
// Pixels are split into glass, hematoxylin (blue, negative) and DAB (brown,
// positive). A square window slides over the preview; its score is the DAB share
// of the tissue it covers. It needs no model server and serves as the offline
// suggestion backend.
package stain

import (
	"image"
	"slices"

	"github.com/disintegration/imaging"
)

// HotSpotDetector scores windows of a preview by DAB positivity
type HotSpotDetector struct {
	config DetectionConfig
}

// DetectionConfig holds configuration for hot spot detection
type DetectionConfig struct {
	// WindowRatio is the window side as a fraction of the shorter image side
	WindowRatio float64
	// MinTissueRatio is the tissue share a window needs to be scored
	MinTissueRatio float64
	// MinScore drops windows with a lower DAB share
	MinScore   float64
	MaxRegions int
	// GlassLevel is the mean RGB level above which a pixel is bare glass
	GlassLevel int
	// BrownMargin is how much red must exceed blue for a DAB pixel
	BrownMargin int
}

// New creates a new HotSpotDetector with default configuration
func New() *HotSpotDetector {
	return &HotSpotDetector{
		config: DetectionConfig{
			WindowRatio:    0.1,
			MinTissueRatio: 0.5,
			MinScore:       0.05,
			MaxRegions:     10,
			GlassLevel:     215,
			BrownMargin:    30,
		},
	}
}

// NewWithConfig creates a new HotSpotDetector with custom configuration
func NewWithConfig(config DetectionConfig) *HotSpotDetector {
	return &HotSpotDetector{config: config}
}

// Region represents a scored square window in preview pixels
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
	// Score is the DAB share of the tissue in the window
	Score float64
	// Tissue is the share of the window that is not glass
	Tissue float64
}

// Center returns the center point of the region
func (r Region) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Area returns the area of the region
func (r Region) Area() int {
	return r.Width * r.Height
}

func (r Region) rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Totals summarises a whole image
type Totals struct {
	// Tissue is the share of pixels that are not glass
	Tissue float64
	// Positive is the DAB share of the tissue
	Positive float64
}

// DetectHotSpots returns non-overlapping windows ordered by descending score
func (d *HotSpotDetector) DetectHotSpots(img image.Image) []Region {
	m := d.positivityMap(img)
	side := int(d.config.WindowRatio * float64(min(m.width, m.height)))
	if side < 1 {
		return nil
	}
	step := max(1, side/4)

	var regions []Region
	for y := 0; y+side <= m.height; y += step {
		for x := 0; x+side <= m.width; x += step {
			tissue := m.tissue.sum(x, y, side, side)
			if float64(tissue) < d.config.MinTissueRatio*float64(side*side) {
				continue
			}
			score := float64(m.positive.sum(x, y, side, side)) / float64(tissue)
			if score < d.config.MinScore {
				continue
			}
			regions = append(regions, Region{
				X:      x,
				Y:      y,
				Width:  side,
				Height: side,
				Score:  score,
				Tissue: float64(tissue) / float64(side*side),
			})
		}
	}

	return d.suppressOverlaps(regions)
}

// Measure returns tissue and DAB shares for the whole image
func (d *HotSpotDetector) Measure(img image.Image) Totals {
	m := d.positivityMap(img)
	tissue := m.tissue.sum(0, 0, m.width, m.height)
	if tissue == 0 {
		return Totals{}
	}
	return Totals{
		Tissue:   float64(tissue) / float64(m.width*m.height),
		Positive: float64(m.positive.sum(0, 0, m.width, m.height)) / float64(tissue),
	}
}

// suppressOverlaps keeps the best window of every overlapping group
func (d *HotSpotDetector) suppressOverlaps(regions []Region) []Region {
	slices.SortStableFunc(regions, func(a, b Region) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	var kept []Region
	for _, r := range regions {
		if d.config.MaxRegions > 0 && len(kept) == d.config.MaxRegions {
			break
		}
		overlaps := slices.ContainsFunc(kept, func(k Region) bool {
			return k.rect().Overlaps(r.rect())
		})
		if !overlaps {
			kept = append(kept, r)
		}
	}
	return kept
}

type positivity struct {
	width    int
	height   int
	tissue   summedArea
	positive summedArea
}

func (d *HotSpotDetector) positivityMap(img image.Image) positivity {
	src := imaging.Clone(img)
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	m := positivity{
		width:    w,
		height:   h,
		tissue:   newSummedArea(w, h),
		positive: newSummedArea(w, h),
	}

	for y := 0; y < h; y++ {
		i := y * src.Stride
		for x := 0; x < w; x++ {
			r, g, b := int(src.Pix[i]), int(src.Pix[i+1]), int(src.Pix[i+2])
			i += 4
			if r+g+b > 3*d.config.GlassLevel {
				continue
			}
			m.tissue.set(x, y)
			if r > b+d.config.BrownMargin && r >= g {
				m.positive.set(x, y)
			}
		}
	}
	m.tissue.integrate()
	m.positive.integrate()
	return m
}

// summedArea is an integral image of a binary mask
type summedArea struct {
	stride int
	v      []int
}

func newSummedArea(w, h int) summedArea {
	return summedArea{stride: w + 1, v: make([]int, (w+1)*(h+1))}
}

func (s summedArea) set(x, y int) {
	s.v[(y+1)*s.stride+x+1] = 1
}

func (s summedArea) integrate() {
	rows := len(s.v) / s.stride
	for y := 1; y < rows; y++ {
		for x := 1; x < s.stride; x++ {
			i := y*s.stride + x
			s.v[i] += s.v[i-1] + s.v[i-s.stride] - s.v[i-s.stride-1]
		}
	}
}

// sum counts the set pixels in the w×h window at x, y
func (s summedArea) sum(x, y, w, h int) int {
	a := y*s.stride + x
	b := y*s.stride + x + w
	c := (y+h)*s.stride + x
	e := (y+h)*s.stride + x + w
	return s.v[e] - s.v[b] - s.v[c] + s.v[a]
}
