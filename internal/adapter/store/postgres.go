package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/omarazaz1/video-chat-project/internal/domain"
	"github.com/omarazaz1/video-chat-project/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates the extension and tables if they do not exist.
// The vector dimension must match the embedding model in use.
func (s *PostgresStore) EnsureSchema(ctx context.Context, dimension int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS videos (
			id            TEXT PRIMARY KEY,
			url           TEXT NOT NULL,
			segment_count INT NOT NULL DEFAULT 0,
			chunk_count   INT NOT NULL DEFAULT 0,
			ingested_at   TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			id            UUID PRIMARY KEY,
			video_id      TEXT NOT NULL,
			chunk_index   INT NOT NULL,
			kind          TEXT NOT NULL,
			content       TEXT NOT NULL,
			start_time    TEXT NOT NULL DEFAULT '',
			start_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			link          TEXT NOT NULL DEFAULT '',
			vector        vector(%d),
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS chunks_video_id_idx ON chunks (video_id)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id          BIGSERIAL PRIMARY KEY,
			action      TEXT NOT NULL,
			resource    TEXT NOT NULL,
			resource_id TEXT NOT NULL DEFAULT '',
			details     TEXT NOT NULL DEFAULT '',
			ip          TEXT NOT NULL DEFAULT '',
			user_agent  TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// --- Videos ---

// UpsertVideo inserts or updates the history row for a video.
func (s *PostgresStore) UpsertVideo(ctx context.Context, v *domain.Video) (*domain.Video, error) {
	query := `
		INSERT INTO videos (id, url, segment_count, chunk_count, ingested_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			url = EXCLUDED.url,
			segment_count = EXCLUDED.segment_count,
			chunk_count = GREATEST(videos.chunk_count, EXCLUDED.chunk_count),
			ingested_at = COALESCE(EXCLUDED.ingested_at, videos.ingested_at),
			updated_at = NOW()
		RETURNING id, url, segment_count, chunk_count, ingested_at, created_at, updated_at`

	var out domain.Video
	err := s.db.QueryRowContext(ctx, query,
		v.ID, v.URL, v.SegmentCount, v.ChunkCount, v.IngestedAt,
	).Scan(
		&out.ID, &out.URL, &out.SegmentCount, &out.ChunkCount,
		&out.IngestedAt, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert video: %w", err)
	}
	return &out, nil
}

// MarkVideoIngested records a successful ingest for a video.
func (s *PostgresStore) MarkVideoIngested(ctx context.Context, videoID string, chunkCount int) error {
	query := `UPDATE videos SET chunk_count = $2, ingested_at = NOW(), updated_at = NOW() WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, videoID, chunkCount)
	if err != nil {
		return fmt.Errorf("mark video ingested: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Transcript-body ingests may not have a prior /transcript call.
		insert := `INSERT INTO videos (id, url, chunk_count, ingested_at)
		           VALUES ($1, '', $2, NOW())
		           ON CONFLICT (id) DO UPDATE SET chunk_count = $2, ingested_at = NOW(), updated_at = NOW()`
		if _, err := s.db.ExecContext(ctx, insert, videoID, chunkCount); err != nil {
			return fmt.Errorf("mark video ingested: %w", err)
		}
	}
	return nil
}

// GetVideoByID retrieves a video history row.
func (s *PostgresStore) GetVideoByID(ctx context.Context, id string) (*domain.Video, error) {
	query := `SELECT id, url, segment_count, chunk_count, ingested_at, created_at, updated_at
	          FROM videos WHERE id = $1`

	var v domain.Video
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.URL, &v.SegmentCount, &v.ChunkCount,
		&v.IngestedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, port.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return &v, nil
}

// ListVideos returns all known videos, most recently updated first.
func (s *PostgresStore) ListVideos(ctx context.Context) ([]domain.Video, error) {
	query := `SELECT id, url, segment_count, chunk_count, ingested_at, created_at, updated_at
	          FROM videos ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []domain.Video
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(
			&v.ID, &v.URL, &v.SegmentCount, &v.ChunkCount,
			&v.IngestedAt, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// DeleteVideo removes a video's history row.
func (s *PostgresStore) DeleteVideo(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	return err
}

// --- Audit ---

// WriteAudit persists an audit record. Satisfies middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(action, resource, resourceID, details, ip, userAgent string) error {
	query := `INSERT INTO audit_log (action, resource, resource_id, details, ip, user_agent)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.Exec(query, action, resource, resourceID, details, ip, userAgent)
	if err != nil {
		return fmt.Errorf("write audit: %w", err)
	}
	return nil
}

// ListAuditLogs returns recent audit records, optionally filtered by action.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action string) ([]domain.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}

	query := `SELECT id, action, resource, resource_id, details, ip, user_agent, created_at
	          FROM audit_log`
	args := []interface{}{}
	if action != "" {
		query += ` WHERE action = $1`
		args = append(args, action)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(
			&l.ID, &l.Action, &l.Resource, &l.ResourceID,
			&l.Details, &l.IP, &l.UserAgent, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
