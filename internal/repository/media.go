package repository

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MediaRepository stores uploaded media, such as featured images.
type MediaRepository interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// S3MediaRepository stores media in an S3-compatible bucket.
type S3MediaRepository struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3MediaRepository(accessKeyID, accessKeySecret, baseEndpoint, bucket, publicURL string) *S3MediaRepository {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		repoLogger.Fatal().Err(err).Msg("Error initializing S3 client")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(baseEndpoint)
	})

	return &S3MediaRepository{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Upload stores the object under a generated key and returns the key. The
// original name survives as a suffix so bucket listings stay readable.
func (r *S3MediaRepository) Upload(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := uuid.New().String() + "-" + sanitizeObjectName(name)

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading media object: %w", err)
	}

	repoLogger.Debug().Str("key", key).Int("size", len(data)).Msg("Media object uploaded")
	return key, nil
}

func (r *S3MediaRepository) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("error deleting media object: %w", err)
	}
	return nil
}

func (r *S3MediaRepository) URL(key string) string {
	return r.publicURL + "/" + key
}

func sanitizeObjectName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r == ' ', r == '_':
			return '-'
		default:
			return -1
		}
	}, name)
}
