package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/config"
)

// objectAPI is the slice of the S3 client the storage needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Storage keeps photos in an S3-compatible bucket (AWS, DigitalOcean
// Spaces, MinIO) and serves them from a public base URL.
type S3Storage struct {
	client     objectAPI
	bucket     string
	keyPrefix  string
	publicBase string
	log        *zap.Logger
}

// NewS3Storage creates a client for cfg. A custom endpoint switches the
// client to path-style addressing.
func NewS3Storage(ctx context.Context, cfg config.S3Config, log *zap.Logger) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Storage(client, cfg, log), nil
}

func newS3Storage(client objectAPI, cfg config.S3Config, log *zap.Logger) *S3Storage {
	base := cfg.PublicBaseURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return &S3Storage{
		client:     client,
		bucket:     cfg.Bucket,
		keyPrefix:  strings.Trim(cfg.KeyPrefix, "/"),
		publicBase: strings.TrimRight(base, "/"),
		log:        log,
	}
}

func (s *S3Storage) key(publicID string) string {
	if s.keyPrefix == "" {
		return publicID
	}
	return s.keyPrefix + "/" + publicID
}

// Store uploads the staged file under <prefix>/<public id> and returns its
// public URL.
func (s *S3Storage) Store(ctx context.Context, f StagedFile) (string, error) {
	defer removeStaged(s.log, f.Path)

	file, err := os.Open(f.Path)
	if err != nil {
		return "", wrapStoreErr("open", err)
	}
	defer file.Close()

	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := s.key(PublicID(f.Filename))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		s.log.Error("s3 upload failed", zap.String("key", key), zap.Error(err))
		return "", wrapStoreErr("upload", err)
	}

	return s.publicBase + "/" + key, nil
}

// Delete removes the object the URL points at.
func (s *S3Storage) Delete(ctx context.Context, url string) error {
	id := PublicID(url)
	if id == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return wrapStoreErr("delete", err)
	}
	return nil
}
