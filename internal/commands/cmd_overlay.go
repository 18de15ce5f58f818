package commands

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/gpec/fieldselector/pkg/processing"
)

type OverlayCmd struct {
	flags     *Flags
	image     string
	selection string
	out       string
}

func NewOverlayCmd(flags *Flags) *OverlayCmd {
	return &OverlayCmd{flags: flags}
}

func (cmd *OverlayCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "overlay",
		Usage:       "Draw every selected field over the whole slide preview",
		UsageText:   "field-selector overlay --image slide.tif --selection S [--out overlay.png]",
		Description: "Fields are outlined by state and numbered in selection order.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "slide image path or URL", Required: true, Destination: &cmd.image},
			&cli.StringFlag{Name: "selection", Aliases: []string{"s"}, Usage: "selection string or @file", Required: true, Destination: &cmd.selection},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output image path", Destination: &cmd.out},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *OverlayCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.cfg()
	proc := processing.NewProcessor()

	sl, err := openSlide(cfg, proc, cmd.image, cmd.selection)
	if err != nil {
		return err
	}

	overlay := proc.RenderOverlay(sl.preview.Image, sl.session.Selection(), sl.preview.ScaleToOriginal)
	path, err := save(cfg, proc, overlay, sl.path, cmd.out, "_overlay")
	if err != nil {
		return err
	}

	log.Info().
		Str("path", path).
		Int("fields", len(sl.session.Selection())).
		Msg("wrote overlay")
	return nil
}
