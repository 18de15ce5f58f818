package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/gpec/fieldselector/pkg/field"
	"github.com/gpec/fieldselector/pkg/processing"
	"github.com/gpec/fieldselector/pkg/viewport"
)

type ViewCmd struct {
	flags     *Flags
	image     string
	selection string
	zoom      float64
	move      string
	one       bool
	fit       bool
	center    int
	click     string
	out       string
}

func NewViewCmd(flags *Flags) *ViewCmd {
	return &ViewCmd{flags: flags}
}

func (cmd *ViewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "view",
		Usage:     "Render what the panel shows after zooming and panning",
		UsageText: "field-selector view --image slide.tif [--selection S] [--one|--fit] [--zoom N] [--center I] [--move dx,dy] [--click x,y] [--out panel.png]",
		Description: `Builds a session over the image preview, then applies in order: --one or --fit,
--zoom (wheel steps, negative zooms in), --center (1-based field index), --move
(panel pixels) and --click (selects or creates the field under a panel point).
Prints the resulting selection string and writes a panel snapshot.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "slide image path or URL", Destination: &cmd.image},
			&cli.StringFlag{Name: "selection", Aliases: []string{"s"}, Usage: "selection string or @file", Destination: &cmd.selection},
			&cli.Float64Flag{Name: "zoom", Usage: "zoom steps; positive zooms out", Destination: &cmd.zoom},
			&cli.StringFlag{Name: "move", Usage: "pan by dx,dy panel pixels", Destination: &cmd.move},
			&cli.BoolFlag{Name: "one", Usage: "zoom to 100% of the preview", Destination: &cmd.one},
			&cli.BoolFlag{Name: "fit", Usage: "zoom to fit the whole image", Destination: &cmd.fit},
			&cli.IntFlag{Name: "center", Usage: "centre on the field with this 1-based index", Destination: &cmd.center},
			&cli.StringFlag{Name: "click", Usage: "select at x,y panel pixels", Destination: &cmd.click},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output image path", Destination: &cmd.out},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ViewCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.one && cmd.fit {
		return fmt.Errorf("--one and --fit are mutually exclusive")
	}

	cfg := cmd.flags.cfg()
	proc := processing.NewProcessor()

	sl, err := openSlide(cfg, proc, cmd.image, cmd.selection)
	if err != nil {
		return err
	}
	s := sl.session
	vp := s.Viewport()

	switch {
	case cmd.one:
		vp.ChangeMagnificationToOne()
	case cmd.fit:
		vp.ChangeMagnificationToFitWindow()
	}
	if cmd.zoom != 0 {
		vp.ChangeMagnification(cmd.zoom)
	}
	if cmd.center != 0 {
		sel := s.Selection()
		if cmd.center < 1 || cmd.center > len(sel) {
			return fmt.Errorf("--center %d: selection has %d fields", cmd.center, len(sel))
		}
		s.CenterOn(sel[cmd.center-1])
	}
	if cmd.move != "" {
		dx, dy, err := parsePair(cmd.move)
		if err != nil {
			return fmt.Errorf("--move: %w", err)
		}
		vp.Move(dx, dy)
	}
	if cmd.click != "" {
		x, y, err := parsePair(cmd.click)
		if err != nil {
			return fmt.Errorf("--click: %w", err)
		}
		f, err := s.Select(x, y, field.Negligible)
		if err != nil {
			return fmt.Errorf("--click: %w", err)
		}
		log.Info().Stringer("field", f).Msg("field selected")
	}

	logViewport(vp)

	panel := proc.RenderPanel(sl.preview.Image, vp, s.VisibleFields(), s.Thumbnail(), statusLabel(vp, len(s.Selection()), len(s.Scored())))
	path, err := save(cfg, proc, panel, sl.path, cmd.out, "_panel")
	if err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote panel")

	_, err = fmt.Fprintln(c.Root().Writer, s.Encoded())
	return err
}

func logViewport(vp *viewport.Viewport) {
	log.Info().
		Float64("magnification", vp.Magnification()).
		Stringer("preview_rect", vp.Rect()).
		Stringer("original_rect", vp.OriginalRect()).
		Int("x_offset", vp.XOffset()).
		Int("y_offset", vp.YOffset()).
		Int("viewable_width", vp.Width()).
		Int("viewable_height", vp.Height()).
		Msg("viewport")
}

func statusLabel(vp *viewport.Viewport, fields, scored int) processing.Label {
	return processing.Label{
		Text: fmt.Sprintf("%.0f%%  %d fields  %d scored", vp.Magnification()*100, fields, scored),
		X:    4,
		Y:    vp.PanelHeight() - 6,
	}
}
