package store

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// AssetStore forwards staged files to the remote asset host and hands back
// durable public URLs.
type AssetStore struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

func NewAssetStore(ctx context.Context, endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool) (*AssetStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &AssetStore{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// UploadFile streams the file at localPath to the asset host under a fresh
// object key and returns its public URL plus the key.
func (s *AssetStore) UploadFile(ctx context.Context, localPath string) (string, string, error) {
	ext := filepath.Ext(localPath)
	key := "avatars/" + uuid.New().String() + ext

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("minio upload: %w", err)
	}
	return s.PublicURL(key), key, nil
}

// PublicURL builds the durable URL for an object key.
func (s *AssetStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBase, s.bucket, key)
}

// Remove deletes an object.
func (s *AssetStore) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
