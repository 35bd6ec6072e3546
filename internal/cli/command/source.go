package command

import (
	"context"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/eigenlog/eigenlog/internal/cli/connection"
)

// boundSource adapts whichever client --database/--url selected to a
// uniform, closeable capability set for the duration of one command.
type boundSource struct {
	info   func(ctx context.Context) ([]connection.InfoElement, error)
	query  func(ctx context.Context, opts connection.QueryOptions) ([]connection.Hit, error)
	detail func(ctx context.Context, host, app, severity string) (connection.Detail, error)
	closer io.Closer
}

func (s *boundSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// openSource resolves the global --database/--url flags into a bound
// source. Callers must Close it when done.
func openSource(c *cli.Context) (*GlobalFlags, *boundSource, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}

	if flags.Database != "" {
		lc, err := connection.NewLocalClient(flags.Database, flags.Verbose)
		if err != nil {
			return nil, nil, err
		}
		return flags, &boundSource{info: lc.Info, query: lc.Query, detail: lc.Detail, closer: lc}, nil
	}

	apiKey, err := readAPIKeyFromStdin()
	if err != nil {
		return nil, nil, err
	}
	rc := connection.NewRemoteClient(flags.URL, apiKey)
	return flags, &boundSource{info: rc.Info, query: rc.Query, detail: rc.Detail}, nil
}
