package s3

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// S3Storage stores listing photos in a MinIO/S3 bucket.
type S3Storage struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

func NewS3Storage(ctx context.Context, endpoint, accessKey, secretKey, bucketName string, useSSL bool, log *logger.Logger) (*S3Storage, error) {
	log = log.Named("S3Storage")
	log.Info("Initializing MinIO storage", zap.String("endpoint", endpoint), zap.String("bucket", bucketName), zap.Bool("use_ssl", useSSL))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", endpoint, err)
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to make bucket %s: %w", bucketName, err)
		}
		log.Info("Bucket created", zap.String("bucket", bucketName))
	}

	return &S3Storage{client: client, bucket: bucketName, logger: log}, nil
}

// ObjectKey builds a unique key under the listing's prefix, keeping the
// file extension.
func ObjectKey(listingID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("listings/%s/%s%s", listingID, uuid.NewString(), ext)
}

// Upload stores the photo and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, listingID, fileName, contentType string, body io.Reader, size int64) (string, error) {
	key := ObjectKey(listingID, fileName)

	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("PutObject failed", zap.String("bucket", s.bucket), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", key, s.bucket, err)
	}
	s.logger.Info("Photo uploaded", zap.String("key", info.Key), zap.Int64("size", info.Size), zap.String("listing_id", listingID))

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucket, key), nil
}
