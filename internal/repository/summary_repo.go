package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// Dimensión de los embeddings de documentos.
const summaryVectorDims = 1536

// SummarySearcher es la frontera de búsqueda vectorial: resúmenes de
// documentos del usuario, filtrados del lado del servidor.
type SummarySearcher interface {
	SearchSummaries(ctx context.Context, userID int64, topK int) ([]string, error)
}

type PgSummaryRepository struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func NewPgSummaryRepository(pool *pgxpool.Pool, timeout time.Duration) *PgSummaryRepository {
	return &PgSummaryRepository{pool: pool, timeout: timeout}
}

// SearchSummaries recupera hasta topK resúmenes del usuario. Se consulta con
// un vector cero: no interesa la semántica de la consulta sino el filtro por
// usuario y tipo, igual que el job original contra el índice vectorial.
func (r *PgSummaryRepository) SearchSummaries(ctx context.Context, userID int64, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 10
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	const query = `
		SELECT content
		FROM document_embeddings
		WHERE user_id = $1 AND is_summary
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	zero := pgvector.NewVector(make([]float32, summaryVectorDims))
	rows, err := r.pool.Query(ctx, query, userID, zero, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		if content == "" {
			continue
		}
		summaries = append(summaries, content)
	}
	return summaries, rows.Err()
}
