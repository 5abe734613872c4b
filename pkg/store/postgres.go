package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"

	"github.com/xhad/polisum/internal/models"
)

// Postgres persists history in a single table. When an embedder is set each
// entry is stored with a pgvector embedding and Search ranks by cosine
// distance; otherwise Search falls back to ILIKE.
type Postgres struct {
	config   StoreConfig
	pool     *pgxpool.Pool
	embedder QueryEmbedder
}

func NewPostgres(ctx context.Context, config StoreConfig, embedder QueryEmbedder) (*Postgres, error) {
	if config.TableName == "" {
		config.TableName = "history"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text
	}
	if config.SearchLimit == 0 {
		config.SearchLimit = DefaultSearchLimit
	}
	if !identRe.MatchString(config.TableName) {
		return nil, fmt.Errorf("invalid table name %q", config.TableName)
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ps := &Postgres{
		config:   config,
		pool:     pool,
		embedder: embedder,
	}

	if err := ps.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return ps, nil
}

func (ps *Postgres) initialize(ctx context.Context) error {
	if _, err := ps.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			scenario TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			embedding vector(%d)
		)`, ps.config.TableName, ps.config.VectorDim)
	if _, err := ps.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		ps.config.TableName, ps.config.TableName)
	if _, err := ps.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (ps *Postgres) Append(ctx context.Context, entry models.HistoryEntry) error {
	entry, err := prepare(entry)
	if err != nil {
		return err
	}

	var embedding *pgvector.Vector
	if ps.embedder != nil {
		vec, err := ps.embedder.EmbedQuery(ctx, entry.Content)
		if err != nil {
			log.Warn().Err(err).Str("id", entry.ID).Msg("storing history entry without embedding")
		} else {
			v := pgvector.NewVector(vec)
			embedding = &v
		}
	}

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, kind, scenario, content, created_at, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`,
		ps.config.TableName)

	_, err = ps.pool.Exec(ctx, stmt,
		entry.ID,
		entry.Kind,
		entry.Scenario,
		entry.Content,
		entry.CreatedAt,
		embedding,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}

	return nil
}

func (ps *Postgres) List(ctx context.Context) ([]models.HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, scenario, content, created_at
		FROM %s
		ORDER BY created_at ASC`,
		ps.config.TableName)

	rows, err := ps.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return scanEntries(rows)
}

func (ps *Postgres) Search(ctx context.Context, query string, limit int) ([]models.HistoryEntry, error) {
	limit = searchLimit(limit, ps.config.SearchLimit)

	if ps.embedder != nil {
		vec, err := ps.embedder.EmbedQuery(ctx, query)
		if err == nil {
			return ps.searchSimilar(ctx, vec, limit)
		}
		log.Warn().Err(err).Msg("embedding search query failed, using text match")
	}

	sql := fmt.Sprintf(`
		SELECT id, kind, scenario, content, created_at
		FROM %s
		WHERE strpos(lower(content), lower($1)) > 0 OR strpos(lower(scenario), lower($1)) > 0
		ORDER BY created_at DESC
		LIMIT $2`,
		ps.config.TableName)

	rows, err := ps.pool.Query(ctx, sql, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	return scanEntries(rows)
}

func (ps *Postgres) searchSimilar(ctx context.Context, vec []float32, limit int) ([]models.HistoryEntry, error) {
	sql := fmt.Sprintf(`
		SELECT id, kind, scenario, content, created_at
		FROM %s
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2`,
		ps.config.TableName)

	rows, err := ps.pool.Query(ctx, sql, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return scanEntries(rows)
}

func (ps *Postgres) Clear(ctx context.Context) error {
	if _, err := ps.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", ps.config.TableName)); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (ps *Postgres) Close() {
	if ps.pool != nil {
		ps.pool.Close()
	}
}

func scanEntries(rows pgx.Rows) ([]models.HistoryEntry, error) {
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.Scenario, &e.Content, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return entries, nil
}
