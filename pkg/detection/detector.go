package detection

import (
	"cmp"
	"context"
	"math"
	"slices"
	"strings"

	"github.com/gpec/fieldselector/pkg/client"
	"github.com/gpec/fieldselector/pkg/codec"
	"github.com/gpec/fieldselector/pkg/field"
	"github.com/gpec/fieldselector/pkg/types"
	"github.com/rs/zerolog"
)

// SimpleTestPrompt for testing if the model can see images
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt asks for Ki67 hot spot candidates on an immunostained slide preview
const DefaultPrompt = `You are assisting a pathologist scoring Ki67 on an immunostained breast tissue slide.
Brown (DAB) nuclei are Ki67 positive, blue (hematoxylin) nuclei are negative.

Return JSON only:
{
  "candidates": [
    {
      "label": "string",
      "confidence": 0.0,
      "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0},
      "ki67": 0
    }
  ],
  "description": "short neutral sentence (≤ 20 words)"
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels).
- Each box must lie on invasive tumour, not on stroma, fat, background or slide edges.
- ki67 is the estimated positivity level: 0 negligible, 1 low, 2 medium, 3 high, 4 hot spot.
- Order candidates from the densest positive staining to the weakest.
- If no tumour is visible, return {"candidates": [], "description": "no tumour found"}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Geometry supplies the original image dimensions suggestions are mapped onto
type Geometry interface {
	OriginalImageWidth() int
	OriginalImageHeight() int
}

// Options tune how candidates become fields
type Options struct {
	// Diameter of every suggested field in original pixels
	Diameter      int
	MinConfidence float64
	// MaxCandidates caps the number of fields; zero keeps all
	MaxCandidates int
	// Prompt overrides DefaultPrompt when set
	Prompt string
}

// Suggester turns vision model candidates into fields of view
type Suggester struct {
	client client.VisionClient
	opts   Options
	log    zerolog.Logger
}

// NewSuggester creates a new suggester with a vision client
func NewSuggester(client client.VisionClient, opts Options, log zerolog.Logger) *Suggester {
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	return &Suggester{client: client, opts: opts, log: log}
}

// Suggest asks the model for hot spot candidates on the encoded preview and returns
// them as not current, not scored fields in original image coordinates.
func (s *Suggester) Suggest(ctx context.Context, model, imageB64 string, g Geometry) (field.Selection, error) {
	result, err := s.client.SuggestFields(ctx, model, s.opts.Prompt, imageB64)
	if err != nil {
		return nil, err
	}

	candidates := s.filter(result.Candidates)
	s.log.Debug().
		Int("returned", len(result.Candidates)).
		Int("kept", len(candidates)).
		Str("description", result.Description).
		Msg("vision candidates")

	return s.toSelection(candidates, g), nil
}

// TestVision tests if the model can actually see the image with a simple prompt
func (s *Suggester) TestVision(ctx context.Context, model, imageB64 string) (string, error) {
	return s.client.SimpleQuery(ctx, model, SimpleTestPrompt, imageB64)
}

// filter drops empty or unsure candidates and keeps the most confident ones
func (s *Suggester) filter(in []types.Candidate) []types.Candidate {
	out := make([]types.Candidate, 0, len(in))
	for _, c := range in {
		if strings.EqualFold(strings.TrimSpace(c.Label), "none") {
			continue
		}
		if c.Confidence < s.opts.MinConfidence {
			continue
		}
		c.Box = normalizeBox(c.Box)
		if c.Box.W == 0 && c.Box.H == 0 && c.Box.X == 0 && c.Box.Y == 0 {
			continue
		}
		out = append(out, c)
	}

	slices.SortStableFunc(out, func(a, b types.Candidate) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	if s.opts.MaxCandidates > 0 && len(out) > s.opts.MaxCandidates {
		out = out[:s.opts.MaxCandidates]
	}
	return out
}

func (s *Suggester) toSelection(candidates []types.Candidate, g Geometry) field.Selection {
	sel := field.Selection{}
	w, h := float64(g.OriginalImageWidth()), float64(g.OriginalImageHeight())
	for _, c := range candidates {
		cx, cy := c.Box.Center()
		f := field.New(
			int(math.Round(cx*w)),
			int(math.Round(cy*h)),
			s.opts.Diameter,
			field.NotCurrent,
			field.NotScored,
			codec.Ki67FromCode(c.Ki67),
		)
		sel = sel.Add(f)
	}
	return sel
}

// clamp ensures a value is within the given bounds
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeBox ensures box coordinates are within [0,1] bounds
func normalizeBox(b types.Box) types.Box {
	b = types.Box{
		X: clamp(b.X, 0, 1),
		Y: clamp(b.Y, 0, 1),
		W: clamp(b.W, 0, 1),
		H: clamp(b.H, 0, 1),
	}
	if b.X+b.W > 1 {
		b.W = 1 - b.X
	}
	if b.Y+b.H > 1 {
		b.H = 1 - b.Y
	}
	return b
}
