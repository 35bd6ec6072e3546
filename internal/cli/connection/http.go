package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// RemoteClient talks to a running eigenlog-server over HTTP, always
// negotiating JSON so the CLI never needs the gob codec.
type RemoteClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRemoteClient builds a client against server (scheme defaults to
// http://) authenticating with apiKey.
func NewRemoteClient(server, apiKey string) *RemoteClient {
	base := server
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &RemoteClient{
		baseURL: base,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// BaseURL returns the normalized server base URL.
func (c *RemoteClient) BaseURL() string { return c.baseURL }

// InfoElement mirrors the JSON shape of httpapi/handler's per-partition
// info response element.
type InfoElement struct {
	Summary *Summary `json:"summary,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Summary mirrors domain.Summary's JSON shape.
type Summary struct {
	Host     string `json:"Host"`
	App      string `json:"App"`
	Severity string `json:"Severity"`
	Min      string `json:"Min"`
	Max      string `json:"Max"`
}

// Hit mirrors httpapi/handler's wireHit JSON shape.
type Hit struct {
	Host     string `json:"host"`
	App      string `json:"app"`
	Severity string `json:"severity"`
	ID       string `json:"id"`
	Record   Record `json:"record"`
}

// Record mirrors domain.Record's JSON shape.
type Record struct {
	Message    string            `json:"message"`
	CodeModule *string           `json:"code_module,omitempty"`
	CodeFile   *string           `json:"code_file,omitempty"`
	CodeLine   *uint32           `json:"code_line,omitempty"`
	Tags       map[string]string `json:"tags"`
}

// Detail mirrors domain.Detail's JSON shape.
type Detail struct {
	Host      string         `json:"Host"`
	App       string         `json:"App"`
	Severity  string         `json:"Severity"`
	Rows      int            `json:"Rows"`
	Histogram map[string]int `json:"Histogram"`
}

// QueryOptions mirrors the query-string parameters httpapi/handler parses.
type QueryOptions struct {
	MaxLogLevel       string
	StartTimestamp    string
	EndTimestamp      string
	HostContains      string
	AppContains       string
	MessageMatches    string
	MessageNotMatches string
	MaxResults        int
}

// Info calls GET /log/info.
func (c *RemoteClient) Info(ctx context.Context) ([]InfoElement, error) {
	var out []InfoElement
	if err := c.getJSON(ctx, "/log/info", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Query calls GET /log/query with opts encoded as query-string parameters.
func (c *RemoteClient) Query(ctx context.Context, opts QueryOptions) ([]Hit, error) {
	q := url.Values{}
	if opts.MaxLogLevel != "" {
		q.Set("max_log_level", opts.MaxLogLevel)
	}
	if opts.StartTimestamp != "" {
		q.Set("start_timestamp", opts.StartTimestamp)
	}
	if opts.EndTimestamp != "" {
		q.Set("end_timestamp", opts.EndTimestamp)
	}
	if opts.HostContains != "" {
		q.Set("host_contains", opts.HostContains)
	}
	if opts.AppContains != "" {
		q.Set("app_contains", opts.AppContains)
	}
	if opts.MessageMatches != "" {
		q.Set("message_matches", opts.MessageMatches)
	}
	if opts.MessageNotMatches != "" {
		q.Set("message_not_matches", opts.MessageNotMatches)
	}
	if opts.MaxResults > 0 {
		q.Set("max_results", strconv.Itoa(opts.MaxResults))
	}

	var out []Hit
	if err := c.getJSON(ctx, "/log/query?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Detail calls GET /log/detail/{host}/{app}/{severity}.
func (c *RemoteClient) Detail(ctx context.Context, host, app, severity string) (Detail, error) {
	var out Detail
	path := fmt.Sprintf("/log/detail/%s/%s/%s", url.PathEscape(host), url.PathEscape(app), url.PathEscape(severity))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return Detail{}, err
	}
	return out, nil
}

func (c *RemoteClient) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	return parseResponse(resp, target)
}

// parseResponse decodes resp's JSON body into target, surfacing the
// server's structured error code/message on non-2xx responses.
func parseResponse(resp *http.Response, target any) error {
	if resp.StatusCode >= 300 {
		var errResp struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		body, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
			return fmt.Errorf("[%s] %s", errResp.Code, errResp.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
