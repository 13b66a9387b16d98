package audit

import (
	"context"
	"errors"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	migrations "github.com/dropDatabas3/fastpass/migrations/postgres"
)

func TestLogSink_MasksEmail(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	s := LogSink{Logger: zap.New(core)}

	err := s.Record(context.Background(), Event{
		Kind: KindIssued, ConsumerKey: "CK", UID: "42", Email: "jane@example.com",
		Nonce: "abc123", SignedAt: time.Unix(1700000000, 0), Source: "api",
	})
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "issued", fields["event"])
	assert.Equal(t, "j***@example.com", fields["email"])
	assert.Equal(t, "42", fields["uid"])
	assert.Equal(t, "abc123", fields["nonce"])
}

type failingSink struct{ err error }

func (f failingSink) Record(context.Context, Event) error { return f.err }

func TestMulti_JoinsErrors(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	boom := errors.New("boom")
	m := Multi{LogSink{Logger: zap.New(core)}, nil, failingSink{err: boom}}

	err := m.Record(context.Background(), Event{Kind: KindVerified})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, logs.Len())
}

// fakeDB registra los Exec.
type fakeDB struct {
	execs []string
	args  [][]any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	f.args = append(f.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestPGSink_Record(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	s := &PGSink{DB: db}
	at := time.Unix(1700000000, 0)
	require.NoError(t, s.Record(context.Background(), Event{
		Kind: KindIssued, ConsumerKey: "CK", UID: "42", Nonce: "n", SignedAt: at, Source: "jwt", RequestID: "rid",
	}))

	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "INSERT INTO fastpass_issuances")
	args := db.args[0]
	require.Len(t, args, 8)
	assert.IsType(t, uuid.UUID{}, args[0])
	assert.Equal(t, []any{"issued", "CK", "42", "n", at.UTC(), "jwt", "rid"}, args[1:])
}

func TestMigrate_AppliesUpFilesInOrder(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"0002_b_up.sql":   {Data: []byte("SELECT 2;")},
		"0001_a_up.sql":   {Data: []byte("SELECT 1;")},
		"0001_a_down.sql": {Data: []byte("SELECT -1;")},
	}
	db := &fakeDB{}
	n, err := Migrate(context.Background(), db, fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"SELECT 1;", "SELECT 2;"}, db.execs)
}

func TestMigrate_EmbeddedFiles(t *testing.T) {
	t.Parallel()

	db := &fakeDB{}
	n, err := Migrate(context.Background(), db, migrations.FS)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS fastpass_issuances")
}

// Requiere Postgres: TEST_DATABASE_URL=postgres://...
func TestPGSink_Integration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	sink, pool, err := NewPGSink(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	_, err = Migrate(ctx, pool, migrations.FS)
	require.NoError(t, err)

	uid := "it-" + uuid.NewString()
	require.NoError(t, sink.Record(ctx, Event{
		Kind: KindIssued, ConsumerKey: "CK", UID: uid, Nonce: uuid.NewString(), SignedAt: time.Now(), Source: "cli",
	}))

	evs, err := sink.Recent(ctx, uid, 10)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, KindIssued, evs[0].Kind)
}
