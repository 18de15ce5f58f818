package commands

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	fieldselector "github.com/gpec/fieldselector"
	"github.com/gpec/fieldselector/internal/config"
	"github.com/gpec/fieldselector/internal/utils"
	"github.com/gpec/fieldselector/pkg/processing"
	"github.com/gpec/fieldselector/pkg/types"
)

// slide is a loaded image with its preview and a session over it.
type slide struct {
	path     string
	original image.Image
	preview  *processing.Preview
	session  *fieldselector.Session
}

// openSlide loads the image, builds its preview and a session holding selection.
func openSlide(cfg *config.Config, proc *processing.Processor, path, selection string) (*slide, error) {
	if path == "" {
		return nil, fmt.Errorf("--image is required")
	}
	if !strings.HasPrefix(path, "http") && !utils.IsImageFile(path) {
		return nil, fmt.Errorf("%s: unsupported image type", path)
	}

	img, err := proc.LoadImageSmart(path)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	pv := proc.MakePreview(img, cfg.Preview.MaxWidth, cfg.Preview.MaxHeight)

	log.Debug().
		Str("image", path).
		Int("original_width", pv.OriginalWidth).
		Int("original_height", pv.OriginalHeight).
		Int("preview_width", pv.Width()).
		Int("preview_height", pv.Height()).
		Float64("scale_to_original", pv.ScaleToOriginal).
		Msg("preview ready")

	s, err := fieldselector.New(fieldselector.Config{
		PanelWidth:      cfg.Viewport.PanelWidth,
		PanelHeight:     cfg.Viewport.PanelHeight,
		PreviewWidth:    pv.Width(),
		PreviewHeight:   pv.Height(),
		ScaleToOriginal: pv.ScaleToOriginal,
		ThumbnailWidth:  cfg.Viewport.ThumbnailWidth,
		ThumbnailHeight: cfg.Viewport.ThumbnailHeight,
		FieldDiameter:   cfg.Field.Diameter,
	}, fieldselector.WithLogger(log.Logger))
	if err != nil {
		return nil, err
	}

	if selection != "" {
		raw, err := utils.ReadSelectionArg(selection)
		if err != nil {
			return nil, err
		}
		if err := s.Load(raw); err != nil {
			return nil, err
		}
	}

	return &slide{path: path, original: img, preview: pv, session: s}, nil
}

// save writes img to out, or to the configured output directory when out is empty.
func save(cfg *config.Config, proc *processing.Processor, img image.Image, src, out, suffix string) (string, error) {
	if out == "" {
		out = utils.GenerateOutputFilename(src, cfg.Output.Dir, suffix, cfg.Output.Format)
	}
	if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
		return "", err
	}

	format := utils.GetFileExtension(out)
	if format == "" {
		format = cfg.Output.Format
	}
	if err := proc.SaveImage(img, out, saveOptions(cfg, format)); err != nil {
		return "", fmt.Errorf("save %s: %w", out, err)
	}
	return out, nil
}

// parsePair parses "a,b" into two integers.
func parsePair(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("%q: expected two comma separated integers", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("%q: %w", s, err)
	}
	return x, y, nil
}

func saveOptions(cfg *config.Config, format string) types.SaveOptions {
	return types.SaveOptions{
		Format:   format,
		Quality:  cfg.Output.Quality,
		Lossless: cfg.Output.Lossless,
	}
}
