package services

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveStorage ships aged audit batches to object storage.
type ArchiveStorage interface {
	Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64) error
	EnsureBucketExists(ctx context.Context, bucketName string) error
}

type minioArchive struct {
	client *minio.Client
}

func NewMinioArchive(endpoint, accessKey, secretKey string, useSSL bool) (ArchiveStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioArchive{client: client}, nil
}

func (m *minioArchive) Upload(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64) error {
	_, err := m.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (m *minioArchive) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}
