package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/gpec/fieldselector/pkg/field"
	"github.com/gpec/fieldselector/pkg/processing"
)

type ExportCmd struct {
	flags     *Flags
	image     string
	selection string
	scored    bool
	size      int
	outDir    string
}

func NewExportCmd(flags *Flags) *ExportCmd {
	return &ExportCmd{flags: flags}
}

func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Crop every selected field out of the full resolution slide",
		UsageText: "field-selector export --image slide.tif --selection S [--scored] [--size 1024] [--out-dir DIR]",
		Description: `Writes one image per field, named by selection order and centre, for the
nuclei counter or for review. Crops are taken from the original image.`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Usage: "slide image path or URL", Required: true, Destination: &cmd.image},
			&cli.StringFlag{Name: "selection", Aliases: []string{"s"}, Usage: "selection string or @file", Required: true, Destination: &cmd.selection},
			&cli.BoolFlag{Name: "scored", Usage: "only export scored fields", Destination: &cmd.scored},
			&cli.IntFlag{Name: "size", Usage: "fit each crop into a size×size box (0 keeps full resolution)", Destination: &cmd.size},
			&cli.StringFlag{Name: "out-dir", Aliases: []string{"o"}, Usage: "output directory; defaults to the configured one", Destination: &cmd.outDir},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.cfg()
	proc := processing.NewProcessor()

	sl, err := openSlide(cfg, proc, cmd.image, cmd.selection)
	if err != nil {
		return err
	}

	fields := sl.session.Selection()
	if cmd.scored {
		fields = sl.session.Scored()
	}

	dir := cmd.outDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	base := strings.TrimSuffix(filepath.Base(sl.path), filepath.Ext(sl.path))

	written := 0
	for i, f := range fields {
		if err := ctx.Err(); err != nil {
			return err
		}
		crop, err := proc.CropField(sl.original, f, cmd.size)
		if err != nil {
			log.Warn().Err(err).Stringer("field", f).Msg("skipping field")
			continue
		}

		out := filepath.Join(dir, cropName(base, i+1, f, cfg.Output.Format))
		path, err := save(cfg, proc, crop, sl.path, out, "")
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(c.Root().Writer, path); err != nil {
			return err
		}
		written++
	}

	log.Info().
		Int("fields", len(fields)).
		Int("written", written).
		Str("dir", dir).
		Msg("exported fields")
	return nil
}

func cropName(base string, n int, f *field.FieldOfView, format string) string {
	return fmt.Sprintf("%s_%03d_%dx%dy_%s.%s", base, n, f.X(), f.Y(), f.Ki67State(), format)
}
