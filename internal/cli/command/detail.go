package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/eigenlog/eigenlog/internal/cliout"
)

// DetailCommand returns the detail command: full-scan row count and
// per-date histogram for one (host, app, severity) partition.
func DetailCommand() *cli.Command {
	return &cli.Command{
		Name:  "detail",
		Usage: "Show a partition's row count and per-date histogram",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Required: true},
			&cli.StringFlag{Name: "app", Required: true},
			&cli.StringFlag{Name: "level", Required: true, Usage: "severity (error, warn, info, debug, trace)"},
		},
		Action: detailAction,
	}
}

func detailAction(c *cli.Context) error {
	flags, src, err := openSource(c)
	if err != nil {
		return err
	}
	defer src.Close()

	detail, err := src.detail(c.Context, c.String("host"), c.String("app"), c.String("level"))
	if err != nil {
		return fmt.Errorf("detail: %w", err)
	}

	return cliout.New(flags.Format).Format(os.Stdout, detail)
}
