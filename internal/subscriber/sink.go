package subscriber

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/eigenlog/eigenlog/internal/domain"
	"github.com/eigenlog/eigenlog/internal/infra/buildinfo"
	"github.com/eigenlog/eigenlog/internal/storage"
	"github.com/eigenlog/eigenlog/internal/wire"
)

// Sink is the capability the shipper sends a finished batch through: either
// directly into a local storage engine, or over HTTP to a remote collector.
type Sink interface {
	Send(ctx context.Context, host domain.Host, app domain.App, sev domain.Severity, batch domain.Batch) error
}

// LocalSink submits straight into an embedded storage.Engine. There is no
// network error surface; storage errors still propagate through the hook.
type LocalSink struct {
	Engine storage.Engine
}

// Send implements Sink.
func (s LocalSink) Send(ctx context.Context, host domain.Host, app domain.App, sev domain.Severity, batch domain.Batch) error {
	return s.Engine.Submit(ctx, host, app, sev, batch)
}

// ConnectionProxy augments an outgoing request before it is sent, typically
// to attach the API key header. It is shared across sends (cloneable
// ownership); implementations must be safe for concurrent use since the
// shipper and the shutdown drainer may both invoke it.
type ConnectionProxy interface {
	Proxy(req *http.Request) (*http.Request, error)
}

// APIKeyProxy is the ConnectionProxy that stamps X-API-KEY on every
// outgoing submission.
type APIKeyProxy struct {
	APIKey string
}

// Proxy implements ConnectionProxy.
func (p APIKeyProxy) Proxy(req *http.Request) (*http.Request, error) {
	req.Header.Set("X-API-KEY", p.APIKey)
	return req, nil
}

// RemoteSink posts a batch to a remote eigenlog collector's submit
// endpoint, negotiating the wire format via Content-Type.
type RemoteSink struct {
	BaseURL string
	Client  *http.Client
	Proxy   ConnectionProxy
	Format  wire.Format
}

// Send implements Sink.
func (s RemoteSink) Send(ctx context.Context, host domain.Host, app domain.App, sev domain.Severity, batch domain.Batch) error {
	body, err := wire.Encode(s.Format, batch)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/log/submit/%s/%s/%s", s.BaseURL, host, app, sev)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.ErrNetwork.WithCause(err)
	}
	req.Header.Set("Content-Type", s.Format.MIME())
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	if s.Proxy != nil {
		req, err = s.Proxy.Proxy(req)
		if err != nil {
			return domain.ErrNetwork.WithCause(err)
		}
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return domain.ErrNetwork.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return domain.ErrNetwork.WithDetails(fmt.Sprintf("remote submit returned status %d", resp.StatusCode))
	}
	return nil
}
