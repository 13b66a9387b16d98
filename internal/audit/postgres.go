package audit

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB es el subset de pgxpool.Pool que usa PGSink.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ DB = (*pgxpool.Pool)(nil)

const insertIssuance = `
INSERT INTO fastpass_issuances (id, kind, consumer_key, uid, nonce, signed_at, source, request_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// PGSink inserta eventos en fastpass_issuances.
type PGSink struct {
	DB DB
}

// NewPGSink abre un pool contra dsn.
func NewPGSink(ctx context.Context, dsn string) (*PGSink, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("audit: pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("audit: ping: %w", err)
	}
	return &PGSink{DB: pool}, pool, nil
}

func (s *PGSink) Record(ctx context.Context, ev Event) error {
	_, err := s.DB.Exec(ctx, insertIssuance,
		uuid.New(), ev.Kind, ev.ConsumerKey, ev.UID, ev.Nonce, ev.SignedAt.UTC(), ev.Source, ev.RequestID)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// Recent devuelve los últimos eventos de un uid (más nuevos primero).
func (s *PGSink) Recent(ctx context.Context, uid string, limit int) ([]Event, error) {
	rows, err := s.DB.Query(ctx, `
SELECT kind, consumer_key, uid, nonce, signed_at, source, request_id
FROM fastpass_issuances WHERE uid = $1 ORDER BY created_at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.Kind, &ev.ConsumerKey, &ev.UID, &ev.Nonce, &ev.SignedAt, &ev.Source, &ev.RequestID); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Migrate aplica en orden los *_up.sql de fsys (ver migrations/postgres).
// Las migraciones son idempotentes (IF NOT EXISTS).
func Migrate(ctx context.Context, db DB, fsys fs.FS) (int, error) {
	files, err := fs.Glob(fsys, "*_up.sql")
	if err != nil {
		return 0, err
	}
	sort.Strings(files)
	for i, f := range files {
		b, err := fs.ReadFile(fsys, f)
		if err != nil {
			return i, fmt.Errorf("audit: read %s: %w", f, err)
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		if _, err := db.Exec(ctx, string(b)); err != nil {
			return i, fmt.Errorf("audit: exec %s: %w", f, err)
		}
	}
	return len(files), nil
}
