// README: DB-backed store tests; require MEDRIDE_TEST_DSN.
package trip

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"medride/internal/types"
)

func setupTestStore(t *testing.T) *PGStore {
	t.Helper()

	dsn := os.Getenv("MEDRIDE_TEST_DSN")
	if dsn == "" {
		t.Skip("MEDRIDE_TEST_DSN not set; skipping DB-backed store tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE trip_state_events, trips"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_init.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(string(content)) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

func splitSQL(content string) []string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	var out []string
	for _, stmt := range strings.Split(strings.Join(kept, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dbTrip(id string) *Trip {
	uid := types.ID("user_db")
	return &Trip{
		ID:                 types.ID(id),
		Status:             StatusPending,
		PickupTime:         time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		PickupAddress:      "100 Main St",
		DestinationAddress: "200 Clinic Way",
		Price:              types.Money{Amount: 4500, Currency: "USD"},
		UserID:             &uid,
		CreatedAt:          time.Now().UTC(),
	}
}

func TestStoreGetNotFound(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreCASRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	if err := store.Create(ctx, dbTrip("t_cas")); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err := store.UpdateStatus(ctx, "t_cas", StatusPending, StatusUpcoming, 0, Fields{})
	if err != nil || !ok {
		t.Fatalf("first update: ok=%v err=%v", ok, err)
	}

	// The same (status, version) pair can only win once.
	ok, err = store.UpdateStatus(ctx, "t_cas", StatusPending, StatusUpcoming, 0, Fields{})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if ok {
		t.Fatal("stale write was accepted")
	}

	got, err := store.Get(ctx, "t_cas")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusUpcoming || got.StatusVersion != 1 {
		t.Fatalf("status %s version %d", got.Status, got.StatusVersion)
	}
}

func TestStoreListUnassigned(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	free := dbTrip("t_free")
	free.Status = StatusUpcoming
	if err := store.Create(ctx, free); err != nil {
		t.Fatalf("create: %v", err)
	}

	taken := dbTrip("t_taken")
	taken.Status = StatusUpcoming
	did := types.ID("d1")
	name := "Ann Lee"
	taken.DriverID = &did
	taken.DriverName = &name
	if err := store.Create(ctx, taken); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.ListRange(ctx, RangeFilter{
		From:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Statuses:   []Status{StatusPending, StatusUpcoming},
		Unassigned: true,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t_free" {
		t.Fatalf("unassigned list %v", got)
	}
}
