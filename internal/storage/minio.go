// Package storage кладёт выгрузки в MinIO и выдаёт на них временные ссылки.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Spok95/gradebook-bot/internal/config"
)

// DefaultURLTTL: срок жизни ссылки на выгрузку.
const DefaultURLTTL = 24 * time.Hour

type MinIOService struct {
	client *minio.Client
	bucket string
	urlTTL time.Duration
	now    func() time.Time
}

func NewMinIOService(cfg config.MinIOConfig) (*MinIOService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return &MinIOService{
		client: client,
		bucket: cfg.Bucket,
		urlTTL: DefaultURLTTL,
		now:    time.Now,
	}, nil
}

// EnsureBucket создаёт бакет, если его ещё нет.
func (s *MinIOService) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload кладёт файл под уникальным ключом и возвращает presigned-ссылку на скачивание.
func (s *MinIOService) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := ObjectKey(s.now(), name)
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=\"%s\"", path.Base(key)))
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.urlTTL, reqParams)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned url: %w", err)
	}
	return u.String(), nil
}

// URLTTL: сколько действует ссылка из Upload.
func (s *MinIOService) URLTTL() time.Duration { return s.urlTTL }

// ObjectKey: exports/ГГГГ/ММ/ДД/<unix-nano>-<имя>.
func ObjectKey(now time.Time, name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "/", "_"))
	if name == "" {
		name = "export.xlsx"
	}
	return fmt.Sprintf("exports/%s/%d-%s", now.UTC().Format("2006/01/02"), now.UnixNano(), name)
}
