// Package storage archives uploads and analysis transcripts in MinIO.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
}

type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// New buat koneksi MinIO dan pastikan bucket ada.
func New(ctx context.Context, opts Options) (*Store, error) {
	cli, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &Store{client: cli, bucketName: opts.Bucket, region: opts.Region}, nil
}

// Put stores data under key and returns the object URL. The URL is only
// reachable directly when the bucket is public.
func (s *Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if contentType == "" {
		contentType = ContentTypeFor(key)
	}
	_, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucketName, key), nil
}

// Check implements the health check by probing the bucket.
func (s *Store) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s does not exist", s.bucketName)
	}
	return nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ObjectKey builds {user}/{yyyy-mm-dd}/{uuid}-{name}. User and name are
// reduced to a safe character set.
func ObjectKey(user, name string, at time.Time, id uuid.UUID) string {
	return path.Join(
		safeSegment(user, "anonymous"),
		at.UTC().Format("2006-01-02"),
		id.String()+"-"+safeSegment(filepath.Base(name), "file"),
	)
}

func safeSegment(s, fallback string) string {
	s = strings.Trim(unsafeKeyChars.ReplaceAllString(s, "_"), "._")
	if s == "" {
		return fallback
	}
	return s
}

// ContentTypeFor is a small extension based mime lookup for archived objects.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return "application/json"
	case ".txt", ".log":
		return "text/plain; charset=utf-8"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".html":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
