package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/gpec/fieldselector/internal/config"
	"github.com/gpec/fieldselector/pkg/client"
	"github.com/gpec/fieldselector/pkg/detection"
	"github.com/gpec/fieldselector/pkg/llamacpp"
	"github.com/gpec/fieldselector/pkg/ollama"
	"github.com/gpec/fieldselector/pkg/processing"
	"github.com/gpec/fieldselector/pkg/stain"
)

type SuggestCmd struct {
	flags      *Flags
	image      string
	selection  string
	backend    string
	url        string
	model      string
	testVision bool
}

func NewSuggestCmd(flags *Flags) *SuggestCmd {
	return &SuggestCmd{flags: flags}
}

func (cmd *SuggestCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "suggest",
		Usage:     "Ask a vision model for hot spot fields",
		UsageText: "field-selector suggest --image slide.tif [--selection S] [--backend ollama|llamacpp|stain] [--url URL] [--model M]",
		Description: `Sends the slide preview to a vision model and adds the proposed fields to the
selection. Fields that coincide with one already selected are nudged apart.
Prints the resulting selection string.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "slide image path or URL", Required: true, Destination: &cmd.image},
			&cli.StringFlag{Name: "selection", Aliases: []string{"s"}, Usage: "selection string or @file to extend", Destination: &cmd.selection},
			&cli.StringFlag{Name: "backend", Usage: "vision backend (ollama, llamacpp, stain); overrides config", Destination: &cmd.backend},
			&cli.StringFlag{Name: "url", Usage: "vision server URL; overrides config", Destination: &cmd.url},
			&cli.StringFlag{Name: "model", Usage: "vision model name; overrides config", Destination: &cmd.model},
			&cli.BoolFlag{Name: "test-vision", Usage: "only ask the model to describe the image", Destination: &cmd.testVision},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *SuggestCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.cfg()
	vision := cfg.Vision
	if cmd.backend != "" {
		vision.Backend = cmd.backend
	}
	if cmd.url != "" {
		vision.URL = cmd.url
	}
	if cmd.model != "" {
		vision.Model = cmd.model
	}

	vc, err := newVisionClient(vision)
	if err != nil {
		return err
	}

	proc := processing.NewProcessor()
	sl, err := openSlide(cfg, proc, cmd.image, cmd.selection)
	if err != nil {
		return err
	}

	imgB64, err := proc.PrepareImageForModel(sl.preview.Image, "jpg", vision.SendSize, vision.SendQuality)
	if err != nil {
		return fmt.Errorf("prepare image: %w", err)
	}

	suggester := detection.NewSuggester(vc, detection.Options{
		Diameter:      cfg.Field.Diameter,
		MinConfidence: vision.MinConfidence,
		MaxCandidates: vision.MaxCandidates,
	}, log.With().Str("component", "suggest").Logger())

	if cmd.testVision {
		answer, err := suggester.TestVision(ctx, vision.Model, imgB64)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.Root().Writer, answer)
		return err
	}

	suggested, err := suggester.Suggest(ctx, vision.Model, imgB64, sl.session.Viewport())
	if err != nil {
		return fmt.Errorf("suggest fields: %w", err)
	}
	sl.session.Merge(suggested)

	log.Info().
		Str("backend", vision.Backend).
		Str("model", vision.Model).
		Int("suggested", len(suggested)).
		Int("fields", len(sl.session.Selection())).
		Msg("suggestions merged")

	_, err = fmt.Fprintln(c.Root().Writer, sl.session.Encoded())
	return err
}

func newVisionClient(v config.VisionConfig) (client.VisionClient, error) {
	switch v.Backend {
	case "ollama":
		url := v.URL
		if url == "" {
			url = "http://localhost:11434"
		}
		return ollama.NewClient(url)
	case "llamacpp":
		return llamacpp.NewClient(v.URL)
	case "stain":
		return stain.NewClient(stain.New()), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (use 'ollama', 'llamacpp' or 'stain')", v.Backend)
	}
}
