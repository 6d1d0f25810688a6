package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/legalmind/legalmind/internal/core/domain"
)

// ChunkRepository is the parent chunk store: ingestion writes the large
// parent spans here and retrieval reads them back by id when expanding a
// child match into its surrounding context.
type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) SaveParents(ctx context.Context, documentID string, parents []domain.Chunk) error {
	if len(parents) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin parent chunk tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, parent := range parents {
		_, err := tx.ExecContext(ctx, `
INSERT INTO parent_chunks (id, document_id, text, filename, page, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO NOTHING
`,
			parent.ID, documentID, parent.Text,
			metaString(parent.Metadata, domain.MetaFilename),
			metaInt(parent.Metadata, domain.MetaPageNumber),
			now,
		)
		if err != nil {
			return fmt.Errorf("insert parent chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit parent chunk tx: %w", err)
	}
	return nil
}

func (r *ChunkRepository) GetParentTexts(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, text
FROM parent_chunks
WHERE id = ANY($1)
`, ids)
	if err != nil {
		return nil, fmt.Errorf("select parent chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, text string
		if err := rows.Scan(&id, &text); err != nil {
			return nil, fmt.Errorf("scan parent chunk: %w", err)
		}
		out[id] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate parent chunks: %w", err)
	}
	return out, nil
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

func metaInt(meta map[string]any, key string) int {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
