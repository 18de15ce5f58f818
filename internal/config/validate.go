package config

import (
	"errors"
	"net/url"

	"github.com/hay-kot/criterio"
)

// Validate checks that the configuration is valid. Every offending key is
// reported in a single criterio.FieldErrors.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		c.Viewport.validate(),
		c.Preview.validate(),
		c.Field.validate(),
		c.Vision.validate(),
		c.Output.validate(),
	)
}

func (v ViewportConfig) validate() error {
	var errs criterio.FieldErrorsBuilder
	if v.PanelWidth < 1 {
		errs = errs.Append("viewport.panel_width", errors.New("must be positive"))
	}
	if v.PanelHeight < 1 {
		errs = errs.Append("viewport.panel_height", errors.New("must be positive"))
	}
	if v.ThumbnailWidth < 0 || v.ThumbnailWidth > v.PanelWidth {
		errs = errs.Append("viewport.thumbnail_width", errors.New("must be between 0 and the panel width"))
	}
	if v.ThumbnailHeight < 0 || v.ThumbnailHeight > v.PanelHeight {
		errs = errs.Append("viewport.thumbnail_height", errors.New("must be between 0 and the panel height"))
	}
	return errs.ToError()
}

func (p PreviewConfig) validate() error {
	var errs criterio.FieldErrorsBuilder
	if p.MaxWidth < 1 {
		errs = errs.Append("preview.max_width", errors.New("must be positive"))
	}
	if p.MaxHeight < 1 {
		errs = errs.Append("preview.max_height", errors.New("must be positive"))
	}
	return errs.ToError()
}

func (f FieldConfig) validate() error {
	var errs criterio.FieldErrorsBuilder
	if f.Diameter < 1 {
		errs = errs.Append("field.diameter", errors.New("must be positive"))
	}
	return errs.ToError()
}

func (v VisionConfig) validate() error {
	var errs criterio.FieldErrorsBuilder
	if err := isSupported(backends)(v.Backend); err != nil {
		errs = errs.Append("vision.backend", err)
	}
	if v.URL != "" {
		if u, err := url.Parse(v.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = errs.Append("vision.url", errors.New("must be an absolute URL"))
		}
	}
	if v.MinConfidence < 0 || v.MinConfidence > 1 {
		errs = errs.Append("vision.min_confidence", errors.New("must be between 0 and 1"))
	}
	if v.MaxCandidates < 0 {
		errs = errs.Append("vision.max_candidates", errors.New("must not be negative"))
	}
	if v.SendSize < 0 {
		errs = errs.Append("vision.send_size", errors.New("must not be negative"))
	}
	if v.SendQuality < 1 || v.SendQuality > 100 {
		errs = errs.Append("vision.send_quality", errors.New("must be between 1 and 100"))
	}
	return errs.ToError()
}

func (o OutputConfig) validate() error {
	var errs criterio.FieldErrorsBuilder
	if err := isSupported(formats)(o.Format); err != nil {
		errs = errs.Append("output.format", err)
	}
	if o.Quality < 1 || o.Quality > 100 {
		errs = errs.Append("output.quality", errors.New("must be between 1 and 100"))
	}
	return errs.ToError()
}
