package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/eigenlog/eigenlog/internal/cliout"
)

// InfoCommand returns the info command: lists every partition's
// (host, app, severity, min, max) summary.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:   "info",
		Usage:  "List every partition with its first and last record ID",
		Action: infoAction,
	}
}

func infoAction(c *cli.Context) error {
	flags, src, err := openSource(c)
	if err != nil {
		return err
	}
	defer src.Close()

	results, err := src.info(c.Context)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	return cliout.New(flags.Format).Format(os.Stdout, results)
}
