package storage

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Spok95/gradebook-bot/internal/config"
)

func TestObjectKey(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 5, time.UTC)
	got := ObjectKey(now, "Записи/Физика.xlsx")
	if !strings.HasPrefix(got, "exports/2024/01/10/") || !strings.HasSuffix(got, "-Записи_Физика.xlsx") {
		t.Fatalf("key = %q", got)
	}
	if got := ObjectKey(now, "  "); !strings.HasSuffix(got, "-export.xlsx") {
		t.Fatalf("empty name key = %q", got)
	}
}

// Нужен живой MinIO: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY.
func TestUploadRoundTrip(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set")
	}
	ctx := context.Background()
	s, err := NewMinIOService(config.MinIOConfig{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    "gradebook-test",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureBucket(ctx); err != nil {
		t.Fatal(err)
	}
	link, err := s.Upload(ctx, "t.xlsx", "application/octet-stream", []byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get(link)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "hello" {
		t.Fatalf("status = %d, body = %q", resp.StatusCode, body)
	}
}
