package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/gpec/fieldselector/internal/utils"
	"github.com/gpec/fieldselector/pkg/codec"
	"github.com/gpec/fieldselector/pkg/field"
)

type DecodeCmd struct {
	flags *Flags
	json  bool
}

func NewDecodeCmd(flags *Flags) *DecodeCmd {
	return &DecodeCmd{flags: flags}
}

func (cmd *DecodeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "decode",
		Usage:     "Print the fields of a selection string",
		UsageText: "field-selector decode [--json] <selection|@file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print one JSON object per field",
				Destination: &cmd.json,
			},
		},
		Action: cmd.run,
	})
	return app
}

type fieldJSON struct {
	Index    int    `json:"index"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Diameter int    `json:"diameter"`
	Ki67     int    `json:"ki67"`
	Level    string `json:"level"`
	Viewing  string `json:"viewing"`
	Scoring  string `json:"scoring"`
}

func (cmd *DecodeCmd) run(ctx context.Context, c *cli.Command) error {
	sel, err := decodeArg(c)
	if err != nil {
		return err
	}

	w := c.Root().Writer
	if cmd.json {
		enc := json.NewEncoder(w)
		for i, f := range sel {
			if err := enc.Encode(toFieldJSON(i, f)); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tX\tY\tDIAMETER\tKI67\tVIEWING\tSCORING")
	for i, f := range sel {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%s\n",
			i+1, f.X(), f.Y(), f.Diameter(), f.Ki67State(), f.ViewingState(), f.ScoringState())
	}
	return tw.Flush()
}

func toFieldJSON(i int, f *field.FieldOfView) fieldJSON {
	return fieldJSON{
		Index:    i + 1,
		X:        f.X(),
		Y:        f.Y(),
		Diameter: f.Diameter(),
		Ki67:     codec.Ki67Code(f.Ki67State()),
		Level:    f.Ki67State().String(),
		Viewing:  f.ViewingState().String(),
		Scoring:  f.ScoringState().String(),
	}
}

// decodeArg decodes the first positional argument.
func decodeArg(c *cli.Command) (field.Selection, error) {
	if c.Args().Len() != 1 {
		return nil, fmt.Errorf("expected exactly one selection argument")
	}
	return decodeSelection(c.Args().First())
}

func decodeSelection(arg string) (field.Selection, error) {
	raw, err := utils.ReadSelectionArg(arg)
	if err != nil {
		return nil, err
	}
	return codec.Decode(raw)
}
