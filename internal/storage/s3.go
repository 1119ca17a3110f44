package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/andreddluiz/Dash-AOS/internal/config"
	"github.com/andreddluiz/Dash-AOS/internal/logger"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// S3Storage keeps spreadsheet uploads in one bucket. Endpoint may point at an
// S3-compatible server such as MinIO.
type S3Storage struct {
	api    s3iface.S3API
	bucket string
	log    zerolog.Logger
}

func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	s3cfg := cfg.Storage.S3
	awsConfig := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(s3cfg.AccessKey, s3cfg.SecretKey, ""),
		Region:           aws.String(s3cfg.Region),
		DisableSSL:       aws.Bool(!s3cfg.UseSSL),
		S3ForcePathStyle: aws.Bool(true),
	}
	if s3cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(s3cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}
	return NewS3StorageWithClient(s3.New(sess), s3cfg.Bucket), nil
}

func NewS3StorageWithClient(api s3iface.S3API, bucket string) *S3Storage {
	return &S3Storage{
		api:    api,
		bucket: bucket,
		log:    logger.Component("storage").With().Str("bucket", bucket).Logger(),
	}
}

func (s *S3Storage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to download object")
		return nil, err
	}
	return out.Body, nil
}

// Upload stores data under key. Readers that cannot seek are buffered by the
// SDK, so callers should pass a *bytes.Reader for spreadsheets.
func (s *S3Storage) Upload(ctx context.Context, key string, data io.Reader) error {
	_, err := s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(data),
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("Failed to upload object")
		return err
	}
	s.log.Debug().Str("key", key).Msg("Object uploaded")
	return nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.api.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

// Exists reports false without error when the object is missing.
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.api.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

func contentType(key string) string {
	if strings.HasSuffix(strings.ToLower(key), ".xlsx") {
		return xlsxContentType
	}
	return "application/octet-stream"
}
