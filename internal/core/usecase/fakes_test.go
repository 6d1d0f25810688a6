package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/legalmind/legalmind/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeEmbedder struct {
	queryVectors map[string][]float32
	err          error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.queryVectors[text]; ok {
		return vec, nil
	}
	return []float32{0}, nil
}

type fakeVectorStore struct {
	nearestFn func(vector []float32, k int) ([]domain.VectorHit, error)
	chunks    []domain.StoredChunk
	scrollErr error
	scrolls   int
	upserted  []domain.Chunk
}

func (f *fakeVectorStore) UpsertChunks(_ context.Context, chunks []domain.Chunk, _ [][]float32) error {
	f.upserted = append(f.upserted, chunks...)
	return nil
}

func (f *fakeVectorStore) Nearest(_ context.Context, vector []float32, k int) ([]domain.VectorHit, error) {
	if f.nearestFn == nil {
		return nil, nil
	}
	return f.nearestFn(vector, k)
}

func (f *fakeVectorStore) Scroll(_ context.Context, _ domain.ChunkFilter, _ int) ([]domain.StoredChunk, error) {
	f.scrolls++
	if f.scrollErr != nil {
		return nil, f.scrollErr
	}
	return f.chunks, nil
}

type fakeLexicalIndex struct {
	searchFn    func(query string, k int) ([]domain.SearchResult, error)
	invalidated int
}

func (f *fakeLexicalIndex) Search(_ context.Context, query string, k int) ([]domain.SearchResult, error) {
	if f.searchFn == nil {
		return nil, nil
	}
	return f.searchFn(query, k)
}

func (f *fakeLexicalIndex) Invalidate() {
	f.invalidated++
}

type fakeGenerator struct {
	completeFn func(systemPrompt, userPrompt string) (string, error)
}

func (f *fakeGenerator) Complete(_ context.Context, systemPrompt, userPrompt string, _ float64, _ int) (string, error) {
	return f.completeFn(systemPrompt, userPrompt)
}

type fakeScorer struct {
	scores     []float64
	err        error
	gotQueries []string
}

func (f *fakeScorer) Score(_ context.Context, query string, passages []string) ([]float64, error) {
	f.gotQueries = append(f.gotQueries, query)
	if f.err != nil {
		return nil, f.err
	}
	if f.scores != nil {
		return f.scores, nil
	}
	return make([]float64, len(passages)), nil
}

type fakeParentStore struct {
	texts      map[string]string
	err        error
	saveErr    error
	gotIDs     [][]string
	savedDocID string
	saved      []domain.Chunk
}

func (f *fakeParentStore) SaveParents(_ context.Context, documentID string, parents []domain.Chunk) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedDocID = documentID
	f.saved = append(f.saved, parents...)
	return nil
}

func (f *fakeParentStore) GetParentTexts(_ context.Context, ids []string) (map[string]string, error) {
	f.gotIDs = append(f.gotIDs, ids)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if text, ok := f.texts[id]; ok {
			out[id] = text
		}
	}
	return out, nil
}

type statusUpdate struct {
	status  domain.DocumentStatus
	message string
}

type fakeDocumentRepository struct {
	docs       map[string]*domain.Document
	createErr  error
	updateErr  error
	created    []*domain.Document
	statusLog  map[string][]statusUpdate
	savedPages int
}

func (f *fakeDocumentRepository) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, doc)
	if f.docs == nil {
		f.docs = map[string]*domain.Document{}
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeDocumentRepository) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("no such id"))
	}
	return doc, nil
}

func (f *fakeDocumentRepository) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.statusLog == nil {
		f.statusLog = map[string][]statusUpdate{}
	}
	f.statusLog[id] = append(f.statusLog[id], statusUpdate{status: status, message: errMessage})
	return nil
}

func (f *fakeDocumentRepository) SaveChunkCounts(_ context.Context, _ string, pages, _, _ int) error {
	f.savedPages = pages
	return nil
}

type fakeObjectStorage struct {
	saved   map[string][]byte
	saveErr error
}

func (f *fakeObjectStorage) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[key] = raw
	return nil
}

func (f *fakeObjectStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.saved[key])), nil
}

type fakeQueue struct {
	published  []string
	publishErr error
}

func (f *fakeQueue) PublishDocumentIngested(_ context.Context, documentID string) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, documentID)
	return nil
}

func (f *fakeQueue) SubscribeDocumentIngested(_ context.Context, _ func(context.Context, string) error) error {
	return nil
}

type fakeLoader struct {
	loaded *domain.LoadedDocument
	err    error
}

func (f *fakeLoader) Load(_ context.Context, _ *domain.Document) (*domain.LoadedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.loaded, nil
}

type fakeChunker struct {
	chunked *domain.ChunkedDocument
	err     error
}

func (f *fakeChunker) Chunk(_ *domain.LoadedDocument) (*domain.ChunkedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.chunked, nil
}
