package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/legalmind/legalmind/internal/core/domain"
	"github.com/legalmind/legalmind/internal/core/ports"
	"github.com/legalmind/legalmind/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	ingestor  ports.DocumentIngestor
	reader    ports.DocumentReader
	retriever ports.Retriever
	defaults  ports.RetrieveOptions
	metrics   *metrics.HTTPServerMetrics
	logger    *slog.Logger
}

func NewRouter(
	ingestor ports.DocumentIngestor,
	reader ports.DocumentReader,
	retriever ports.Retriever,
	defaults ports.RetrieveOptions,
	serverMetrics *metrics.HTTPServerMetrics,
	logger *slog.Logger,
) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		ingestor:  ingestor,
		reader:    reader,
		retriever: retriever,
		defaults:  defaults,
		metrics:   serverMetrics,
		logger:    logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/retrieve", rt.retrieve)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(rt.logger, handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		rt.logger.Error("document upload failed", "filename", fileHeader.Filename, "error", err)
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "document id is required")
		return
	}

	doc, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type retrieveRequest struct {
	Query         string `json:"query"`
	K             int    `json:"k"`
	UseHyde       *bool  `json:"use_hyde"`
	UseMultiQuery *bool  `json:"use_multi_query"`
}

type retrieveResultItem struct {
	ChunkID  string         `json:"chunk_id"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Context  string         `json:"context"`
}

type retrieveResponse struct {
	Results         []retrieveResultItem `json:"results"`
	ExpandedQueries []string             `json:"expanded_queries"`
	LatencyMS       float64              `json:"latency_ms"`
	TotalCandidates int                  `json:"total_candidates"`
}

func (rt *Router) retrieve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	opts := rt.defaults
	opts.K = req.K
	if req.UseHyde != nil {
		opts.UseHyde = *req.UseHyde
	}
	if req.UseMultiQuery != nil {
		opts.UseMultiQuery = *req.UseMultiQuery
	}

	start := time.Now()
	result, err := rt.retriever.Retrieve(r.Context(), req.Query, opts)
	if err != nil {
		rt.logger.Error("retrieval failed", "error", err)
		if rt.metrics != nil {
			rt.metrics.RecordRetrieval(serviceName, "error", 0, 0, time.Since(start))
		}
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(serviceName, "success", result.TotalCandidates, len(result.Results), time.Since(start))
	}
	writeJSON(w, http.StatusOK, toRetrieveResponse(result))
}

func toRetrieveResponse(result *domain.RetrievalResult) retrieveResponse {
	items := make([]retrieveResultItem, 0, len(result.Results))
	for _, res := range result.Results {
		items = append(items, retrieveResultItem{
			ChunkID:  res.ChunkID,
			Text:     res.Text,
			Score:    res.Score,
			Metadata: res.Metadata,
			Context:  result.ContextFor(res),
		})
	}
	return retrieveResponse{
		Results:         items,
		ExpandedQueries: result.ExpandedQueries,
		LatencyMS:       result.LatencyMS,
		TotalCandidates: result.TotalCandidates,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
