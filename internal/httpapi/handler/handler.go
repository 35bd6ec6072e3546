// Package handler implements the submit/query/detail/info HTTP handlers
// behind the eigenlog collector endpoint.
package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eigenlog/eigenlog/internal/domain"
	"github.com/eigenlog/eigenlog/internal/query"
	"github.com/eigenlog/eigenlog/internal/storage"
	"github.com/eigenlog/eigenlog/internal/wire"
)

// Handler groups the storage engine the HTTP surface drives.
type Handler struct {
	engine storage.Engine
	logger *slog.Logger
}

// New builds a Handler bound to engine.
func New(engine storage.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

// Submit implements POST /log/submit/{host}/{app}/{severity}. The body's
// Content-Type picks the wire format; the body decodes to a domain.Batch.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	host, app, sev, err := parsePartitionPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	format, err := wire.ParseMIME(r.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, domain.ErrInvalidSubmissionContentType.WithCause(err))
		return
	}

	defer r.Body.Close()
	body, readErr := io.ReadAll(r.Body)
	if readErr != nil {
		writeError(w, domain.ErrSerialization.WithCause(readErr))
		return
	}

	var batch domain.Batch
	if err := wire.Decode(format, body, &batch); err != nil {
		writeError(w, err)
		return
	}

	if err := h.engine.Submit(r.Context(), host, app, sev, batch); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Query implements GET /log/query, translating query-string parameters
// into query.Params and the format of the Accept header.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	params, err := parseQueryParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	hits, err := h.engine.Query(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeEncoded(w, r, hitsToWire(hits))
}

// Detail implements GET /log/detail/{host}/{app}/{severity}.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	host, app, sev, err := parsePartitionPath(r)
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := h.engine.Detail(r.Context(), host, app, sev)
	if err != nil {
		writeError(w, err)
		return
	}
	writeEncoded(w, r, detail)
}

// Info implements GET /log/info, degrading per-partition: a bad partition
// becomes an error element rather than failing the whole call.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	results, err := h.engine.Info(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]infoElement, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			out = append(out, infoElement{Error: res.Err.Error()})
			continue
		}
		out = append(out, infoElement{Summary: res.Summary})
	}
	writeEncoded(w, r, out)
}

type infoElement struct {
	Summary *domain.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type wireHit struct {
	Host     domain.Host     `json:"host"`
	App      domain.App      `json:"app"`
	Severity domain.Severity `json:"severity"`
	ID       string          `json:"id"`
	Record   domain.Record   `json:"record"`
}

func hitsToWire(hits []query.Hit) []wireHit {
	out := make([]wireHit, len(hits))
	for i, hit := range hits {
		out[i] = wireHit{Host: hit.Host, App: hit.App, Severity: hit.Severity, ID: hit.ID.String(), Record: hit.Record}
	}
	return out
}

func parsePartitionPath(r *http.Request) (domain.Host, domain.App, domain.Severity, error) {
	host, err := domain.ParseHost(r.PathValue("host"))
	if err != nil {
		return "", "", 0, err
	}
	app, err := domain.ParseApp(r.PathValue("app"))
	if err != nil {
		return "", "", 0, err
	}
	sev, err := domain.ParseSeverity(r.PathValue("severity"))
	if err != nil {
		return "", "", 0, err
	}
	return host, app, sev, nil
}

func parseQueryParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()
	var params query.Params

	if v := q.Get("max_log_level"); v != "" {
		sev, err := domain.ParseSeverity(v)
		if err != nil {
			return params, err
		}
		params.MaxLogLevel = &sev
	}
	if v := q.Get("start_timestamp"); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return params, err
		}
		params.StartTimestamp = &t
	}
	if v := q.Get("end_timestamp"); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return params, err
		}
		params.EndTimestamp = &t
	}
	params.HostContains = q.Get("host_contains")
	params.AppContains = q.Get("app_contains")
	params.MessageMatches = q.Get("message_matches")
	params.MessageNotMatches = q.Get("message_not_matches")
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return params, domain.ErrRegex.WithDetails("max_results must be an integer")
		}
		params.MaxResults = &n
	}
	return params, nil
}

func parseTimestamp(v string) (time.Time, error) {
	if millis, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(millis).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, domain.ErrParseIdentity.WithDetails("invalid timestamp `" + v + "`")
	}
	return t, nil
}

func writeEncoded(w http.ResponseWriter, r *http.Request, v any) {
	format, err := wire.ParseMIME(r.Header.Get("Accept"))
	if err != nil {
		writeError(w, err)
		return
	}
	body, err := wire.Encode(format, v)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.MIME())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	de, ok := err.(*domain.Error)
	if !ok {
		de = domain.ErrStorage.WithCause(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", de.Code)
	w.WriteHeader(statusForCode(de.Code))
	_ = json.NewEncoder(w).Encode(map[string]string{"code": de.Code, "message": de.Error()})
}

func statusForCode(code string) int {
	switch code {
	case domain.ErrInvalidApiKey.Code:
		return http.StatusUnauthorized
	case domain.ErrInvalidSubmissionContentType.Code, domain.ErrUnsupportedSerializationMimeType.Code,
		domain.ErrParsePartitionName.Code, domain.ErrParseIdentity.Code,
		domain.ErrInvalidLengthBytesForId.Code, domain.ErrRegex.Code:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
