package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	d, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if _, err := d.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return d
}

func countItems(t *testing.T, d *sql.DB) int {
	t.Helper()
	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return n
}

func TestWithTx_Commit(t *testing.T) {
	d := setupTestDB(t)

	err := WithTx(d, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO items (name) VALUES ('a')`)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	if n := countItems(t, d); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	d := setupTestDB(t)
	boom := errors.New("boom")

	err := WithTx(d, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO items (name) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v, want boom", err)
	}

	if n := countItems(t, d); n != 0 {
		t.Errorf("count = %d, want 0 after rollback", n)
	}
}

func TestWithTxContext_Cancelled(t *testing.T) {
	d := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithTxContext(ctx, d, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO items (name) VALUES ('a')`)
		return err
	})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if n := countItems(t, d); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestNullStringValue(t *testing.T) {
	if got := NullStringValue(sql.NullString{String: "x", Valid: true}); got != "x" {
		t.Errorf("got %q, want x", got)
	}
	if got := NullStringValue(sql.NullString{}); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestNullString_EmptyIsNull(t *testing.T) {
	if NullString("").Valid {
		t.Error("empty string should map to NULL")
	}
	if !NullString("x").Valid {
		t.Error("non-empty string should be valid")
	}
}
