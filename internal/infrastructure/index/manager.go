package index

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/legalmind/legalmind/internal/core/domain"
	"github.com/legalmind/legalmind/internal/core/ports"
)

// Manager owns the process-wide lexical index. The index is built lazily
// from the full stored corpus on first search and cached until Invalidate.
// Ingestion must call Invalidate after indexing new chunks; the cache is
// never rebuilt implicitly as a side effect of an unrelated call.
type Manager struct {
	store  ports.VectorStore
	logger *slog.Logger

	mu        sync.Mutex
	index     *bm25Index
	onRebuild func()
}

func NewManager(store ports.VectorStore, logger *slog.Logger) *Manager {
	return &Manager{store: store, logger: logger}
}

// SetRebuildHook registers a callback fired after every index build.
func (m *Manager) SetRebuildHook(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRebuild = fn
}

func (m *Manager) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	idx, err := m.ensure(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "build lexical index", err)
	}
	return idx.search(query, k), nil
}

func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = nil
}

func (m *Manager) ensure(ctx context.Context) (*bm25Index, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index != nil {
		return m.index, nil
	}

	corpus, err := m.store.Scroll(ctx, domain.ChunkFilter{}, 0)
	if err != nil {
		return nil, fmt.Errorf("scroll corpus: %w", err)
	}
	if len(corpus) == 0 {
		m.logger.Warn("no stored chunks for lexical index")
	}

	m.index = buildBM25(corpus)
	m.logger.Info("lexical index built", "documents", m.index.size())
	if m.onRebuild != nil {
		m.onRebuild()
	}
	return m.index, nil
}
