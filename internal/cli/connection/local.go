package connection

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/eigenlog/eigenlog/internal/domain"
	"github.com/eigenlog/eigenlog/internal/query"
	"github.com/eigenlog/eigenlog/internal/storage"
	"github.com/eigenlog/eigenlog/internal/storage/badger"
)

// LocalClient drives a storage.Engine opened directly over a local Badger
// directory, translating results into the same DTOs RemoteClient returns
// so eigenlog-cli's command layer is source-agnostic.
type LocalClient struct {
	engine storage.Engine
}

// NewLocalClient opens dir as a Badger-backed storage engine. Callers must
// call Close when done. When verbose is set, Badger's own internal log
// lines are routed through an hclog sink instead of being discarded, giving
// --database runs the same leveled, colorized diagnostics the rest of the
// hashicorp-backed stack produces.
func NewLocalClient(dir string, verbose bool) (*LocalClient, error) {
	opts := badger.Options{Dir: dir}
	if verbose {
		opts.Logger = verboseLogger()
	}
	store, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}
	return &LocalClient{engine: storage.New(store, nil)}, nil
}

// verboseLogger bridges log/slog into an hclog sink so --verbose reuses
// hclog's leveled, colorized terminal output rather than a second,
// differently-formatted logging path.
func verboseLogger() *slog.Logger {
	hl := hclog.New(&hclog.LoggerOptions{
		Name:  "eigenlog-cli",
		Level: hclog.Debug,
		Color: hclog.AutoColor,
	})
	w := hl.StandardWriter(&hclog.StandardLoggerOptions{InferLevels: true})
	return slog.New(slog.NewTextHandler(w, nil))
}

// Close releases the underlying storage engine.
func (c *LocalClient) Close() error { return c.engine.Close() }

// Info mirrors RemoteClient.Info against the local engine.
func (c *LocalClient) Info(ctx context.Context) ([]InfoElement, error) {
	results, err := c.engine.Info(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]InfoElement, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			out = append(out, InfoElement{Error: res.Err.Error()})
			continue
		}
		out = append(out, InfoElement{Summary: &Summary{
			Host:     string(res.Summary.Host),
			App:      string(res.Summary.App),
			Severity: res.Summary.Severity.String(),
			Min:      res.Summary.Min.String(),
			Max:      res.Summary.Max.String(),
		}})
	}
	return out, nil
}

// Query mirrors RemoteClient.Query against the local engine.
func (c *LocalClient) Query(ctx context.Context, opts QueryOptions) ([]Hit, error) {
	params, err := opts.toQueryParams()
	if err != nil {
		return nil, err
	}

	hits, err := c.engine.Query(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = Hit{
			Host:     string(h.Host),
			App:      string(h.App),
			Severity: h.Severity.String(),
			ID:       h.ID.String(),
			Record: Record{
				Message:    h.Record.Message,
				CodeModule: h.Record.CodeModule,
				CodeFile:   h.Record.CodeFile,
				CodeLine:   h.Record.CodeLine,
				Tags:       h.Record.Tags,
			},
		}
	}
	return out, nil
}

// Detail mirrors RemoteClient.Detail against the local engine.
func (c *LocalClient) Detail(ctx context.Context, host, app, severity string) (Detail, error) {
	h, err := domain.ParseHost(host)
	if err != nil {
		return Detail{}, err
	}
	a, err := domain.ParseApp(app)
	if err != nil {
		return Detail{}, err
	}
	sev, err := domain.ParseSeverity(severity)
	if err != nil {
		return Detail{}, err
	}

	d, err := c.engine.Detail(ctx, h, a, sev)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		Host:      string(d.Host),
		App:       string(d.App),
		Severity:  d.Severity.String(),
		Rows:      d.Rows,
		Histogram: d.Histogram,
	}, nil
}

func (o QueryOptions) toQueryParams() (query.Params, error) {
	var p query.Params
	if o.MaxLogLevel != "" {
		sev, err := domain.ParseSeverity(o.MaxLogLevel)
		if err != nil {
			return p, err
		}
		p.MaxLogLevel = &sev
	}
	if o.StartTimestamp != "" {
		t, err := parseTimestampFlag(o.StartTimestamp)
		if err != nil {
			return p, err
		}
		p.StartTimestamp = &t
	}
	if o.EndTimestamp != "" {
		t, err := parseTimestampFlag(o.EndTimestamp)
		if err != nil {
			return p, err
		}
		p.EndTimestamp = &t
	}
	p.HostContains = o.HostContains
	p.AppContains = o.AppContains
	p.MessageMatches = o.MessageMatches
	p.MessageNotMatches = o.MessageNotMatches
	if o.MaxResults > 0 {
		n := o.MaxResults
		p.MaxResults = &n
	}
	return p, nil
}

// parseTimestampFlag accepts either Unix-millis or RFC3339, matching the
// server's own parseTimestamp so --database and --url behave identically.
func parseTimestampFlag(v string) (time.Time, error) {
	if millis, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(millis).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, domain.ErrParseIdentity.WithDetails("invalid timestamp `" + v + "`")
	}
	return t, nil
}
