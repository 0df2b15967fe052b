package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/biblioteca-labs/acervo/internal/domain"
	"github.com/biblioteca-labs/acervo/internal/elastic"
	healthuc "github.com/biblioteca-labs/acervo/internal/usecase/health"
	ingestuc "github.com/biblioteca-labs/acervo/internal/usecase/ingest"
	searchuc "github.com/biblioteca-labs/acervo/internal/usecase/search"
	statusuc "github.com/biblioteca-labs/acervo/internal/usecase/status"
)

// --- Fake backend ---

// fakeBackend implements every usecase contract against canned data.
type fakeBackend struct {
	searchResp *elastic.SearchResponse
	searchErr  error
	bulkResp   *elastic.BulkResponse
	bulkErr    error
	exists     bool
	existsErr  error
	count      int64
	pingErr    error
}

func (f *fakeBackend) Search(_ context.Context, _ string, _ elastic.Query) (*elastic.SearchResponse, error) {
	return f.searchResp, f.searchErr
}

func (f *fakeBackend) Bulk(_ context.Context, _ string, docs []elastic.BulkDoc) (*elastic.BulkResponse, error) {
	if f.bulkErr != nil {
		return nil, f.bulkErr
	}
	if f.bulkResp != nil {
		return f.bulkResp, nil
	}
	resp := &elastic.BulkResponse{}
	for i := range docs {
		id := docs[i].ID
		if id == "" {
			id = "generated"
		}
		resp.Items = append(resp.Items, elastic.BulkRespItem{
			Index: elastic.BulkItemResult{ID: id, Status: 201},
		})
	}
	return resp, nil
}

func (f *fakeBackend) IndexExists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeBackend) Count(_ context.Context, _ string) (int64, error) {
	return f.count, nil
}

func (f *fakeBackend) Ping(_ context.Context) error { return f.pingErr }

func newTestRouter(backend *fakeBackend) http.Handler {
	server := NewServer(
		searchuc.New(backend, "libros"),
		ingestuc.New(backend, "libros"),
		statusuc.New(backend, "libros"),
		healthuc.New(backend),
		zap.NewNop(),
	)
	r := chirouter.NewRouter()
	server.Register(r)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// --- Search ---

func TestSearchEndpoint_ReturnsResults(t *testing.T) {
	resp := &elastic.SearchResponse{}
	resp.Hits.Total.Value = 2
	resp.Hits.Hits = []elastic.Hit{
		{ID: "a", Score: 2.0, Source: map[string]any{
			"titulo": "Cien años de soledad",
			"autor":  "Gabriel García Márquez",
			"anio":   float64(1967),
		}},
		{ID: "b", Score: 1.0, Source: map[string]any{"titulo": "El otoño del patriarca"}},
	}
	router := newTestRouter(&fakeBackend{searchResp: resp})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search?q=soledad", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body searchResponse
	decodeBody(t, rec, &body)
	if body.Total != 2 || len(body.Results) != 2 {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Results[0].Title != "Cien años de soledad" {
		t.Errorf("unexpected title: %s", body.Results[0].Title)
	}
	if body.Results[0].Year == nil || *body.Results[0].Year != 1967 {
		t.Errorf("unexpected year: %v", body.Results[0].Year)
	}
	if body.Results[1].Year != nil {
		t.Errorf("absent year must be omitted, got %v", *body.Results[1].Year)
	}
	if body.Error != "" {
		t.Errorf("unexpected error field: %s", body.Error)
	}
}

func TestSearchEndpoint_LegacyParameterNames(t *testing.T) {
	resp := &elastic.SearchResponse{}
	router := newTestRouter(&fakeBackend{searchResp: resp})

	for _, path := range []string{
		"/api/v1/search?q=x",
		"/api/v1/search?termino=x",
		"/api/v1/search?query=x",
	} {
		rec := doRequest(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestSearchEndpoint_DegradesOnBackendFailure(t *testing.T) {
	router := newTestRouter(&fakeBackend{
		searchErr: domain.ErrConnectionUnavailable,
	})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search?q=x", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("search must degrade, not fail: got %d", rec.Code)
	}

	var body searchResponse
	decodeBody(t, rec, &body)
	if body.Total != 0 || len(body.Results) != 0 {
		t.Errorf("expected empty degraded result, got %+v", body)
	}
	if body.Error == "" {
		t.Error("expected the cause in the error field")
	}
}

func TestSearchEndpoint_MissingIndexIsEmptyNotError(t *testing.T) {
	router := newTestRouter(&fakeBackend{searchErr: domain.ErrIndexNotFound})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/search?q=x", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body searchResponse
	decodeBody(t, rec, &body)
	if body.Error != "" {
		t.Errorf("a missing index is not an error: %s", body.Error)
	}
}

// --- Ingest ---

func TestIngestEndpoint_ReportsOutcome(t *testing.T) {
	router := newTestRouter(&fakeBackend{})

	payload := `[
		{"titulo": "A", "autor": "X"},
		{"autor": "sin título"}
	]`
	rec := doRequest(t, router, http.MethodPost, "/api/v1/records", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body ingestResponse
	decodeBody(t, rec, &body)
	if body.Accepted != 1 {
		t.Errorf("expected 1 accepted, got %d", body.Accepted)
	}
	if len(body.Rejected) != 1 {
		t.Fatalf("expected 1 rejection, got %v", body.Rejected)
	}
	if body.Rejected[0].Offset != 2 || body.Rejected[0].Reason != "missing_title" {
		t.Errorf("unexpected rejection: %+v", body.Rejected[0])
	}
}

func TestIngestEndpoint_UnusablePayloadIs400(t *testing.T) {
	router := newTestRouter(&fakeBackend{})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/records", "not json at all")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body errorResponse
	decodeBody(t, rec, &body)
	if body.Code != codeParseError {
		t.Errorf("expected parse_error code, got %s", body.Code)
	}
	if body.Message == "" {
		t.Error("expected the parse failure message verbatim")
	}
}

func TestIngestEndpoint_WriteFailuresStayIn200Report(t *testing.T) {
	router := newTestRouter(&fakeBackend{bulkErr: errors.New("bulk down")})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/records",
		`[{"titulo": "A", "autor": "X"}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("per-record write failures are part of the report: got %d", rec.Code)
	}

	var body ingestResponse
	decodeBody(t, rec, &body)
	if body.Accepted != 0 || len(body.Rejected) != 1 {
		t.Fatalf("unexpected report: %+v", body)
	}
	if body.Rejected[0].Reason != "write_failed" {
		t.Errorf("expected write_failed, got %s", body.Rejected[0].Reason)
	}
}

// --- Status ---

func TestStatusEndpoint(t *testing.T) {
	router := newTestRouter(&fakeBackend{exists: true, count: 77})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body statusResponse
	decodeBody(t, rec, &body)
	if body.Index != "libros" || !body.Exists || body.Count != 77 || body.Error != "" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestStatusEndpoint_BannerOnFailure(t *testing.T) {
	router := newTestRouter(&fakeBackend{existsErr: domain.ErrMissingCredentials})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status must answer 200 with a banner, got %d", rec.Code)
	}

	var body statusResponse
	decodeBody(t, rec, &body)
	if body.Error == "" {
		t.Error("expected the failure in the error field")
	}
}

// --- Health ---

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&fakeBackend{})

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHealthEndpoint_Degraded(t *testing.T) {
	router := newTestRouter(&fakeBackend{pingErr: errors.New("down")})

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
