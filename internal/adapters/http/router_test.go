package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/legalmind/legalmind/internal/core/domain"
	"github.com/legalmind/legalmind/internal/core/ports"
)

type fakeIngestor struct {
	doc *domain.Document
	err error
}

func (f *fakeIngestor) Upload(_ context.Context, filename, mimeType string, _ io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc := *f.doc
	doc.Filename = filename
	doc.MimeType = mimeType
	return &doc, nil
}

type fakeReader struct {
	doc *domain.Document
	err error
}

func (f *fakeReader) GetByID(_ context.Context, _ string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type fakeRetriever struct {
	result  *domain.RetrievalResult
	err     error
	gotOpts ports.RetrieveOptions
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, opts ports.RetrieveOptions) (*domain.RetrievalResult, error) {
	f.gotOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRouter(ingestor ports.DocumentIngestor, reader ports.DocumentReader, retriever ports.Retriever) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	defaults := ports.RetrieveOptions{UseHyde: true, UseMultiQuery: true}
	return NewRouter(ingestor, reader, retriever, defaults, nil, logger).Handler()
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&fakeIngestor{}, &fakeReader{}, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUploadDocumentAccepted(t *testing.T) {
	ingestor := &fakeIngestor{doc: &domain.Document{ID: "d-1", Status: domain.StatusUploaded}}
	handler := newTestRouter(ingestor, &fakeReader{}, &fakeRetriever{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "contract.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte("%PDF-1.4 test"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var doc domain.Document
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.ID != "d-1" || doc.Filename != "contract.pdf" {
		t.Fatalf("unexpected document: %+v", doc)
	}
}

func TestUploadDocumentMissingFile(t *testing.T) {
	handler := newTestRouter(&fakeIngestor{}, &fakeReader{}, &fakeRetriever{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", strings.NewReader("no multipart"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetDocumentNotFoundMapsTo404(t *testing.T) {
	reader := &fakeReader{err: domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no rows"))}
	handler := newTestRouter(&fakeIngestor{}, reader, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRetrieveReturnsResultsWithParentContext(t *testing.T) {
	retriever := &fakeRetriever{result: &domain.RetrievalResult{
		Results: []domain.SearchResult{
			{
				ChunkID: "c1",
				Text:    "child span",
				Score:   0.9,
				Metadata: map[string]any{
					domain.MetaParentID: "p1",
				},
			},
		},
		ExpandedQueries: []string{"termination"},
		LatencyMS:       12.5,
		TotalCandidates: 4,
		ParentContext:   map[string]string{"p1": "full parent span"},
	}}
	handler := newTestRouter(&fakeIngestor{}, &fakeReader{}, retriever)

	body := strings.NewReader(`{"query": "termination", "k": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/retrieve", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp retrieveResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Context != "full parent span" {
		t.Fatalf("expected parent span as context, got %q", resp.Results[0].Context)
	}
	if resp.TotalCandidates != 4 {
		t.Fatalf("expected candidate count preserved, got %d", resp.TotalCandidates)
	}
	if retriever.gotOpts.K != 1 || !retriever.gotOpts.UseHyde || !retriever.gotOpts.UseMultiQuery {
		t.Fatalf("unexpected options: %+v", retriever.gotOpts)
	}
}

func TestRetrieveExplicitFlagOverridesDefault(t *testing.T) {
	retriever := &fakeRetriever{result: &domain.RetrievalResult{}}
	handler := newTestRouter(&fakeIngestor{}, &fakeReader{}, retriever)

	body := strings.NewReader(`{"query": "q", "use_hyde": false}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/retrieve", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if retriever.gotOpts.UseHyde {
		t.Fatal("expected use_hyde=false to override the default")
	}
	if !retriever.gotOpts.UseMultiQuery {
		t.Fatal("expected multi-query default preserved")
	}
}

func TestRetrieveValidation(t *testing.T) {
	handler := newTestRouter(&fakeIngestor{}, &fakeReader{}, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader("not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/retrieve", strings.NewReader(`{"query": "  "}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank query, got %d", rec.Code)
	}
}

func TestRetrieveIndexUnavailableMapsTo503(t *testing.T) {
	retriever := &fakeRetriever{err: domain.WrapError(domain.ErrIndexUnavailable, "vector search", errors.New("qdrant down"))}
	handler := newTestRouter(&fakeIngestor{}, &fakeReader{}, retriever)

	body := strings.NewReader(`{"query": "termination"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/retrieve", body))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestRequestIDHeaderSet(t *testing.T) {
	handler := newTestRouter(&fakeIngestor{}, &fakeReader{}, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected request id header on response")
	}
}
