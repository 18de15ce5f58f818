package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/gpec/fieldselector/pkg/codec"
)

type NormalizeCmd struct {
	flags *Flags
}

func NewNormalizeCmd(flags *Flags) *NormalizeCmd {
	return &NormalizeCmd{flags: flags}
}

func (cmd *NormalizeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "normalize",
		Usage:       "Rewrite a selection string in canonical form",
		UsageText:   "field-selector normalize <selection|@file>",
		Description: "Decodes and re-encodes the selection so every record carries its Ki67 level and both flags.",
		Action:      cmd.run,
	})
	return app
}

func (cmd *NormalizeCmd) run(ctx context.Context, c *cli.Command) error {
	sel, err := decodeArg(c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.Root().Writer, codec.Encode(sel))
	return err
}
