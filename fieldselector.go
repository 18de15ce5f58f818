// Package fieldselector selects fields of view on a Ki67-stained slide for scoring.
//
// A Session pages a downsampled preview of the slide through a fixed-size panel,
// maps panel clicks to the full-resolution image, and keeps the ordered set of
// selected fields in the interchange string shared with the scoring server:
//
//	s, err := fieldselector.New(fieldselector.Config{
//		PanelWidth:      1024,
//		PanelHeight:     768,
//		PreviewWidth:    pv.Width(),
//		PreviewHeight:   pv.Height(),
//		ScaleToOriginal: pv.ScaleToOriginal,
//		FieldDiameter:   4000,
//	})
//	if err != nil {
//		return err
//	}
//	if err := s.Load("3822x4856y4000pp0no_13474x4347y4000pp1no"); err != nil {
//		return err
//	}
//	s.Viewport().ChangeMagnificationToOne()
//	f, _ := s.Select(512, 384, field.Negligible)
//	fmt.Println(f, s.Encoded())
//
// The building blocks live in pkg/: viewport (zoom, pan and coordinate
// projection), thumbnail (overview inset), field (fields and the selection set)
// and codec (interchange string).
package fieldselector

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/gpec/fieldselector/pkg/codec"
	"github.com/gpec/fieldselector/pkg/field"
	"github.com/gpec/fieldselector/pkg/thumbnail"
	"github.com/gpec/fieldselector/pkg/viewport"
)

// Version of the field selector library
const Version = "1.0.0"

var (
	// ErrNoCurrentField is returned when a scoring step needs a current field.
	ErrNoCurrentField = errors.New("fieldselector: no current field")
	// ErrOutsideImage is returned when a panel point falls in the letterbox.
	ErrOutsideImage = errors.New("fieldselector: point outside the image")
)

// Config describes the panel and the preview image of a session.
type Config struct {
	PanelWidth  int
	PanelHeight int
	// preview image actually paged through the panel
	PreviewWidth  int
	PreviewHeight int
	// ScaleToOriginal converts preview pixels to original pixels
	ScaleToOriginal float64
	// ThumbnailWidth of zero disables the overview; a zero height keeps the preview aspect
	ThumbnailWidth  int
	ThumbnailHeight int
	// FieldDiameter of fields created by Select, in original pixels
	FieldDiameter int
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// Session ties one viewport, its thumbnail and the selection together for a
// single caller. It is not safe for concurrent use.
type Session struct {
	cfg   Config
	vp    *viewport.Viewport
	thumb *thumbnail.Thumbnail
	sel   field.Selection
	log   zerolog.Logger
}

// New creates a session showing the whole preview with an empty selection.
func New(cfg Config, opts ...Option) (*Session, error) {
	if cfg.FieldDiameter <= 0 {
		return nil, fmt.Errorf("fieldselector: field diameter %d must be positive", cfg.FieldDiameter)
	}

	vp, err := viewport.New(cfg.PanelWidth, cfg.PanelHeight, cfg.PreviewWidth, cfg.PreviewHeight, cfg.ScaleToOriginal)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg: cfg,
		vp:  vp,
		sel: field.Selection{},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.ThumbnailWidth > 0 {
		h := cfg.ThumbnailHeight
		if h <= 0 {
			h = int(math.Round(float64(cfg.ThumbnailWidth) * float64(cfg.PreviewHeight) / float64(cfg.PreviewWidth)))
		}
		s.thumb = thumbnail.New(vp, cfg.ThumbnailWidth, h)
	}

	s.log.Debug().
		Int("panel_width", cfg.PanelWidth).
		Int("panel_height", cfg.PanelHeight).
		Int("preview_width", cfg.PreviewWidth).
		Int("preview_height", cfg.PreviewHeight).
		Float64("scale_to_original", cfg.ScaleToOriginal).
		Msg("session created")

	return s, nil
}

// Viewport returns the session viewport.
func (s *Session) Viewport() *viewport.Viewport { return s.vp }

// Thumbnail returns the overview inset, or nil when disabled.
func (s *Session) Thumbnail() *thumbnail.Thumbnail { return s.thumb }

// Selection returns the fields in selection order. The slice is shared.
func (s *Session) Selection() field.Selection { return s.sel }

// Load replaces the selection with the decoded interchange string. On error the
// current selection is kept.
func (s *Session) Load(encoded string) error {
	sel, err := codec.Decode(encoded)
	if err != nil {
		return fmt.Errorf("load selection: %w", err)
	}

	current := 0
	for _, f := range sel {
		if f.IsCurrentViewing() {
			current++
		}
	}
	if current > 1 {
		s.log.Warn().Int("current", current).Msg("selection has more than one current field")
	}

	s.sel = sel
	s.log.Debug().Int("fields", len(sel)).Msg("selection loaded")
	return nil
}

// Encoded returns the selection as an interchange string.
func (s *Session) Encoded() string {
	return codec.Encode(s.sel)
}

// Current returns the field being viewed, or nil.
func (s *Session) Current() *field.FieldOfView { return s.sel.Current() }

// Scored returns the scored fields in selection order.
func (s *Session) Scored() field.Selection { return s.sel.Scored() }

// VisibleFields returns the fields overlapping the visible area.
func (s *Session) VisibleFields() field.Selection {
	return s.sel.Visible(s.vp)
}

// FieldAt returns the first field containing the panel point, or nil.
func (s *Session) FieldAt(viewX, viewY int) *field.FieldOfView {
	return s.sel.At(s.vp.ProjectOriginalX(viewX), s.vp.ProjectOriginalY(viewY))
}

// Select makes the field under the panel point current, or creates one there
// with the configured diameter. Exactly one field is current afterwards.
func (s *Session) Select(viewX, viewY int, ki67 field.Ki67State) (*field.FieldOfView, error) {
	if !s.inImage(viewX, viewY) {
		return nil, ErrOutsideImage
	}

	f := s.FieldAt(viewX, viewY)
	if f == nil {
		f = field.New(
			s.vp.ProjectOriginalX(viewX),
			s.vp.ProjectOriginalY(viewY),
			s.cfg.FieldDiameter,
			field.NotCurrent,
			field.NotScored,
			ki67,
		)
		s.sel = s.sel.Add(f)
		s.log.Debug().Stringer("field", f).Msg("field added")
	}

	s.sel.SetCurrent(f)
	return f, nil
}

// Hover previews the field under the panel point unless it is current. Any
// other previewed field stops being previewed. It returns the hovered field or nil.
func (s *Session) Hover(viewX, viewY int) *field.FieldOfView {
	s.sel.ClearPreview()
	if !s.inImage(viewX, viewY) {
		return nil
	}

	f := s.FieldAt(viewX, viewY)
	if f != nil && !f.IsCurrentViewing() {
		f.SetViewingState(field.Preview)
	}
	return f
}

// BeginScoring marks the current field as being scored.
func (s *Session) BeginScoring() (*field.FieldOfView, error) {
	return s.setCurrentScoring(field.Scoring)
}

// FinishScoring marks the current field as scored.
func (s *Session) FinishScoring() (*field.FieldOfView, error) {
	return s.setCurrentScoring(field.Scored)
}

func (s *Session) setCurrentScoring(state field.ScoringState) (*field.FieldOfView, error) {
	f := s.sel.Current()
	if f == nil {
		return nil, ErrNoCurrentField
	}
	f.SetScoringState(state)
	s.log.Debug().Stringer("field", f).Msg("scoring state changed")
	return f, nil
}

// Merge appends copies of the fields in sel, nudging any that coincide with one
// already selected. sel itself is left untouched.
func (s *Session) Merge(sel field.Selection) {
	for _, f := range sel {
		if f == nil {
			continue
		}
		s.sel = s.sel.Add(f.Clone())
	}
}

// Remove drops f from the selection and reports whether it was present.
func (s *Session) Remove(f *field.FieldOfView) bool {
	n := len(s.sel)
	s.sel = s.sel.Remove(f)
	return len(s.sel) < n
}

// CenterOn pans so that f sits in the middle of the visible area, as far as the
// image edges allow.
func (s *Session) CenterOn(f *field.FieldOfView) {
	if f == nil {
		return
	}
	scale := s.vp.ScaleToOriginal()
	m := s.vp.Magnification()
	px := float64(f.X()) / scale
	py := float64(f.Y()) / scale
	cx, cy := s.vp.Center()

	s.vp.Move(
		int(math.Round((px-float64(cx))*m)),
		int(math.Round((py-float64(cy))*m)))
}

// inImage reports whether the panel point lies on the letterboxed footprint and
// projects onto the visible part of the preview. The footprint can reach past the
// image when the visible span is capped at the image edge.
func (s *Session) inImage(viewX, viewY int) bool {
	if viewX < s.vp.XOffset() || viewX >= s.vp.XOffset()+s.vp.Width() ||
		viewY < s.vp.YOffset() || viewY >= s.vp.YOffset()+s.vp.Height() {
		return false
	}
	x, y := s.vp.ProjectRealX(viewX), s.vp.ProjectRealY(viewY)
	return x >= s.vp.X() && x < s.vp.X2() && y >= s.vp.Y() && y < s.vp.Y2()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
