package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestDB(t *testing.T, connectionString string) *SQLiteDatabase {
	t.Helper()

	ds, err := NewSQLiteDatabase(connectionString)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase error: %v", err)
	}
	if err := ds.CreateDatabase(); err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = ds.Close() })
	return ds
}

func TestSQLite_CreateDatabaseIsIdempotent(t *testing.T) {
	ds := newTestDB(t, ":memory:")
	if err := ds.CreateDatabase(); err != nil {
		t.Fatalf("second CreateDatabase error: %v", err)
	}
	if !ds.DoesDatabaseExist() {
		t.Fatalf("expected DoesDatabaseExist to return true")
	}
}

func TestSQLite_FileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.db")
	ctx := context.Background()

	first, err := NewSQLiteDatabase(path)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase error: %v", err)
	}
	if err := first.CreateDatabase(); err != nil {
		t.Fatalf("CreateDatabase error: %v", err)
	}
	created, err := first.CreatePhoto(ctx, NewPhoto{
		Date:     time.Date(2024, 3, 2, 8, 15, 0, 0, time.UTC),
		Type:     PhotoTypeFreePose,
		Notes:    stringPtr("after vacation"),
		Filename: "pose.png",
		FileData: tinyPNG,
	})
	if err != nil {
		t.Fatalf("CreatePhoto error: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	second := newTestDB(t, path)
	got, err := second.GetPhoto(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPhoto after reopen error: %v", err)
	}
	if got.Weight != nil {
		t.Errorf("expected NULL weight to stay nil, got %v", *got.Weight)
	}
	if got.Notes == nil || *got.Notes != "after vacation" {
		t.Errorf("Notes = %v, want 'after vacation'", got.Notes)
	}
	if !got.Date.Equal(created.Date) {
		t.Errorf("Date = %v, want %v", got.Date, created.Date)
	}
}
