package stain

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gpec/fieldselector/pkg/client"
	"github.com/gpec/fieldselector/pkg/types"
)

// Client answers suggestion requests locally with a HotSpotDetector.
// Model and prompt are ignored.
type Client struct {
	detector *HotSpotDetector
}

var _ client.VisionClient = (*Client)(nil)

func NewClient(detector *HotSpotDetector) *Client {
	if detector == nil {
		detector = New()
	}
	return &Client{detector: detector}
}

func (c *Client) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	img, err := decode(imgB64)
	if err != nil {
		return "", err
	}
	t := c.detector.Measure(img)
	return fmt.Sprintf("%dx%d image, %.0f%% tissue, %.1f%% of tissue DAB positive",
		img.Bounds().Dx(), img.Bounds().Dy(), t.Tissue*100, t.Positive*100), nil
}

func (c *Client) SuggestFields(ctx context.Context, model, prompt, imgB64 string) (*types.SuggestionResult, error) {
	img, err := decode(imgB64)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	regions := c.detector.DetectHotSpots(img)

	result := &types.SuggestionResult{
		Candidates:  make([]types.Candidate, 0, len(regions)),
		Description: fmt.Sprintf("%d DAB dense windows", len(regions)),
	}
	for _, r := range regions {
		result.Candidates = append(result.Candidates, types.Candidate{
			Label:      "dab hot spot",
			Confidence: r.Score,
			Box: types.Box{
				X: float64(r.X) / w,
				Y: float64(r.Y) / h,
				W: float64(r.Width) / w,
				H: float64(r.Height) / h,
			},
			Ki67: Level(r.Score),
		})
	}
	return result, nil
}

// Level maps a DAB share to the 0-4 Ki67 level scale
func Level(score float64) int {
	switch {
	case score >= 0.5:
		return 4
	case score >= 0.3:
		return 3
	case score >= 0.15:
		return 2
	case score >= 0.05:
		return 1
	default:
		return 0
	}
}

func decode(imgB64 string) (image.Image, error) {
	data, err := base64.StdEncoding.DecodeString(imgB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
