// Package command provides eigenlog-cli's command definitions, built on
// urfave/cli/v2.
package command

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/eigenlog/eigenlog/internal/cliout"
	"github.com/eigenlog/eigenlog/internal/infra/buildinfo"
)

// App creates the eigenlog-cli application.
func App() *cli.App {
	return &cli.App{
		Name:    "eigenlog-cli",
		Usage:   "eigenlog command-line query tool",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			InfoCommand(),
			QueryCommand(),
			DetailCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "format",
			Usage: "output format: table, json, csv",
			Value: "table",
		},
		&cli.StringFlag{
			Name:  "database",
			Usage: "path to a local Badger data directory (mutually exclusive with --url)",
		},
		&cli.StringFlag{
			Name:  "url",
			Usage: "eigenlog-server base URL (mutually exclusive with --database); API key is read from stdin",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "with --database, log Badger's internal diagnostics",
		},
	}
}

// GlobalFlags are eigenlog-cli's parsed global flags.
type GlobalFlags struct {
	Format   cliout.Format
	Database string
	URL      string
	Verbose  bool
}

// ParseGlobalFlags extracts and validates the global flags from c.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	database := c.String("database")
	url := c.String("url")
	if database == "" && url == "" {
		return nil, fmt.Errorf("one of --database or --url is required")
	}
	if database != "" && url != "" {
		return nil, fmt.Errorf("--database and --url are mutually exclusive")
	}
	return &GlobalFlags{
		Format:   cliout.Format(strings.ToLower(c.String("format"))),
		Database: database,
		URL:      url,
		Verbose:  c.Bool("verbose"),
	}, nil
}

// readAPIKeyFromStdin reads a single line from stdin as the API key used
// for --url connections. The API key is never accepted as a plain CLI
// argument, since that would put it in shell history and process listings.
func readAPIKeyFromStdin() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read api key from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
