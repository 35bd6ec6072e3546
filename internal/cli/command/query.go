package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/eigenlog/eigenlog/internal/cli/connection"
	"github.com/eigenlog/eigenlog/internal/cliout"
)

// QueryCommand returns the query command: cross-partition search with
// severity/time/host/app/message filters and a result cap.
func QueryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Search log records across partitions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "level", Usage: "maximum severity to include (error, warn, info, debug, trace)"},
			&cli.StringFlag{Name: "start", Usage: "start timestamp (RFC3339 or Unix millis)"},
			&cli.StringFlag{Name: "end", Usage: "end timestamp (RFC3339 or Unix millis)"},
			&cli.StringFlag{Name: "host", Usage: "substring filter on host"},
			&cli.StringFlag{Name: "app", Usage: "substring filter on app"},
			&cli.StringFlag{Name: "matches", Usage: "regex the message must match"},
			&cli.StringFlag{Name: "not_matches", Usage: "regex the message must not match"},
			&cli.IntFlag{Name: "rows", Usage: "maximum number of results"},
		},
		Action: queryAction,
	}
}

func queryAction(c *cli.Context) error {
	flags, src, err := openSource(c)
	if err != nil {
		return err
	}
	defer src.Close()

	opts := connection.QueryOptions{
		MaxLogLevel:       c.String("level"),
		StartTimestamp:    c.String("start"),
		EndTimestamp:      c.String("end"),
		HostContains:      c.String("host"),
		AppContains:       c.String("app"),
		MessageMatches:    c.String("matches"),
		MessageNotMatches: c.String("not_matches"),
		MaxResults:        c.Int("rows"),
	}

	hits, err := src.query(c.Context, opts)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	return cliout.New(flags.Format).Format(os.Stdout, hits)
}
