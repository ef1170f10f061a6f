package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestNewRedisDatabase_InvalidURL(t *testing.T) {
	if _, err := NewRedisDatabase("redis://:badport:x/"); err == nil {
		t.Fatal("expected error for malformed redis URL")
	}
}

func TestRedis_CreateDatabaseFailsWithoutServer(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	db, err := NewRedisDatabase(addr)
	if err != nil {
		t.Fatalf("NewRedisDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.CreateDatabase(); err == nil {
		t.Fatal("expected CreateDatabase to fail when the server is gone")
	}
}

func TestRedis_StoresOneHashFieldPerPhoto(t *testing.T) {
	server := miniredis.RunT(t)
	db, err := NewRedisDatabase(server.Addr())
	if err != nil {
		t.Fatalf("NewRedisDatabase error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created, err := db.CreatePhoto(context.Background(), NewPhoto{
		Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Type: PhotoTypeFront, Filename: "a.png", FileData: tinyPNG,
	})
	if err != nil {
		t.Fatalf("CreatePhoto error: %v", err)
	}

	got, err := server.HKeys(redisPhotosKey)
	if err != nil {
		t.Fatalf("HKeys error: %v", err)
	}
	if len(got) != 1 || got[0] != created.ID {
		t.Errorf("hash keys = %v, want [%s]", got, created.ID)
	}
}
