// Package testutil holds helpers for integration tests. Every helper skips
// the test when TEST_DATABASE_URL is unset so unit runs need no database.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"tour-marketplace/pkg/database"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const DSNEnv = "TEST_DATABASE_URL"

// NewPool opens a pool against TEST_DATABASE_URL, closed on test cleanup.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTxContext begins a transaction on pool, attaches it to a context the
// repositories will pick up, and rolls it back on cleanup.
func NewTxContext(t *testing.T, pool *pgxpool.Pool) context.Context {
	t.Helper()

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.NewTxContext: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })

	return database.WithTx(ctx, tx)
}

// MustOpenSQLDB opens a database/sql handle for TestMain, where no
// *testing.T exists. The caller closes it.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return dsn
}
