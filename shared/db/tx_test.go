package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "modernc.org/sqlite"
)

var errAbort = errors.New("abort")

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE image_table (id INTEGER PRIMARY KEY AUTOINCREMENT, uri TEXT NOT NULL)`)
	if err != nil {
		t.Fatalf("Failed to create test table: %v", err)
	}

	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM image_table").Scan(&count); err != nil {
		t.Fatalf("Failed to query: %v", err)
	}
	return count
}

func TestRunInTransaction_NewTransaction(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	err := RunInTransaction(ctx, db, func(txCtx context.Context) error {
		if _, ok := GetTx(txCtx); !ok {
			t.Error("Expected transaction in context")
		}

		_, err := GetExecutor(txCtx, db).ExecContext(txCtx, "INSERT INTO image_table (uri) VALUES (?)", "content://img/1")
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction failed: %v", err)
	}

	if count := countRows(t, db); count != 1 {
		t.Errorf("Expected 1 row, got %d", count)
	}
}

func TestRunInTransaction_Rollback(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	err := RunInTransaction(ctx, db, func(txCtx context.Context) error {
		_, err := GetExecutor(txCtx, db).ExecContext(txCtx, "INSERT INTO image_table (uri) VALUES (?)", "content://img/1")
		if err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("RunInTransaction error = %v, want %v", err, errAbort)
	}

	if count := countRows(t, db); count != 0 {
		t.Errorf("Expected 0 rows (rollback), got %d", count)
	}
}

func TestRunInTransaction_NestedTransaction(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	err := RunInTransaction(ctx, db, func(outerCtx context.Context) error {
		_, err := GetExecutor(outerCtx, db).ExecContext(outerCtx, "INSERT INTO image_table (uri) VALUES (?)", "outer")
		if err != nil {
			return err
		}

		return RunInTransaction(outerCtx, db, func(innerCtx context.Context) error {
			outerTx, _ := GetTx(outerCtx)
			innerTx, _ := GetTx(innerCtx)
			if outerTx != innerTx {
				t.Error("Expected nested transaction to reuse outer transaction")
			}

			_, err := GetExecutor(innerCtx, db).ExecContext(innerCtx, "INSERT INTO image_table (uri) VALUES (?)", "inner")
			return err
		})
	})
	if err != nil {
		t.Fatalf("RunInTransaction failed: %v", err)
	}

	if count := countRows(t, db); count != 2 {
		t.Errorf("Expected 2 rows, got %d", count)
	}
}

func TestRunInTransaction_NestedRollback(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	err := RunInTransaction(ctx, db, func(outerCtx context.Context) error {
		_, err := GetExecutor(outerCtx, db).ExecContext(outerCtx, "INSERT INTO image_table (uri) VALUES (?)", "outer")
		if err != nil {
			return err
		}

		return RunInTransaction(outerCtx, db, func(innerCtx context.Context) error {
			_, err := GetExecutor(innerCtx, db).ExecContext(innerCtx, "INSERT INTO image_table (uri) VALUES (?)", "inner")
			if err != nil {
				return err
			}
			return errAbort
		})
	})
	if err == nil {
		t.Fatal("Expected error from RunInTransaction")
	}

	if count := countRows(t, db); count != 0 {
		t.Errorf("Expected 0 rows (complete rollback), got %d", count)
	}
}

func TestRunInTransaction_PanicRollsBack(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Expected panic to propagate")
			}
		}()
		_ = RunInTransaction(ctx, db, func(txCtx context.Context) error {
			_, err := GetExecutor(txCtx, db).ExecContext(txCtx, "INSERT INTO image_table (uri) VALUES (?)", "doomed")
			if err != nil {
				return err
			}
			panic("boom")
		})
	}()

	if count := countRows(t, db); count != 0 {
		t.Errorf("Expected 0 rows after panic, got %d", count)
	}
}

func TestGetExecutor_WithTransaction(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	executor := GetExecutor(WithTx(ctx, tx), db)
	if executor != tx {
		t.Error("Expected executor to be the transaction")
	}
}

func TestGetExecutor_WithoutTransaction(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	executor := GetExecutor(context.Background(), db)
	if executor != db {
		t.Error("Expected executor to be the database")
	}
}
