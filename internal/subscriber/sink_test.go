package subscriber

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eigenlog/eigenlog/internal/domain"
	"github.com/eigenlog/eigenlog/internal/id"
	"github.com/eigenlog/eigenlog/internal/infra/buildinfo"
	"github.com/eigenlog/eigenlog/internal/storage"
	"github.com/eigenlog/eigenlog/internal/storage/memory"
	"github.com/eigenlog/eigenlog/internal/wire"
)

func TestLocalSinkSubmitsToEngine(t *testing.T) {
	engine := storage.New(memory.New(), nil)
	sink := LocalSink{Engine: engine}

	gen := id.NewGenerator()
	recID, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	batch := domain.Batch{recID: domain.Record{Message: "hello"}}

	if err := sink.Send(context.Background(), "h1", "app1", domain.Error, batch); err != nil {
		t.Fatalf("Send: %v", err)
	}

	info, err := engine.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if len(info) != 1 {
		t.Fatalf("got %d partitions, want 1", len(info))
	}
}

func TestAPIKeyProxyStampsHeader(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://example.invalid/log/submit/h1/app1/error", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	proxy := APIKeyProxy{APIKey: "secret-key"}
	req, err = proxy.Proxy(req)
	if err != nil {
		t.Fatalf("Proxy: %v", err)
	}

	if got := req.Header.Get("X-API-KEY"); got != "secret-key" {
		t.Errorf("X-API-KEY = %q, want secret-key", got)
	}
}

func TestRemoteSinkSendsEncodedBatch(t *testing.T) {
	var gotPath, gotContentType, gotAPIKey, gotUserAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotAPIKey = r.Header.Get("X-API-KEY")
		gotUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sink := RemoteSink{
		BaseURL: srv.URL,
		Proxy:   APIKeyProxy{APIKey: "k1"},
		Format:  wire.JSON,
	}

	gen := id.NewGenerator()
	recID, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	batch := domain.Batch{recID: domain.Record{Message: "remote"}}

	if err := sink.Send(context.Background(), "h1", "app1", domain.Warn, batch); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotPath != "/log/submit/h1/app1/warn" {
		t.Errorf("path = %q, want /log/submit/h1/app1/warn", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotAPIKey != "k1" {
		t.Errorf("X-API-KEY = %q, want k1", gotAPIKey)
	}
	if gotUserAgent != buildinfo.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", gotUserAgent, buildinfo.UserAgent())
	}
}

func TestRemoteSinkErrorStatusReturnsErrNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := RemoteSink{BaseURL: srv.URL}

	err := sink.Send(context.Background(), "h1", "app1", domain.Error, domain.Batch{})
	if err == nil {
		t.Fatal("expected an error for a >=300 status")
	}
	if !errors.Is(err, domain.ErrNetwork) {
		t.Errorf("Send error = %v, want ErrNetwork", err)
	}
}
