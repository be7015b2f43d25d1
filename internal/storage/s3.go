package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	apperrors "github.com/commentsapp/backend/internal/errors"
	"github.com/commentsapp/backend/internal/logger"
)

// S3Uploader stores attachments in an S3 bucket, optionally served
// through a CDN.
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Uploader creates a new S3-backed uploader
func NewS3Uploader(region, bucket, baseURL string) (*S3Uploader, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Uploader{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		baseURL: baseURL,
	}, nil
}

// UploadImage validates, resizes and puts an image attachment
func (u *S3Uploader) UploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	ext, err := validateImageHeader(header)
	if err != nil {
		return nil, err
	}

	data, err := processImage(file, ext)
	if err != nil {
		return nil, err
	}

	return u.put(ctx, uuid.NewString()+ext, data, contentTypeForExt(ext), header.Filename)
}

// UploadTextFile validates and puts a plain-text attachment
func (u *S3Uploader) UploadTextFile(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if err := validateTextHeader(header); err != nil {
		return nil, err
	}

	data, err := readTextFile(file)
	if err != nil {
		return nil, err
	}

	return u.put(ctx, uuid.NewString()+".txt", data, contentTypeForExt(".txt"), header.Filename)
}

func (u *S3Uploader) put(ctx context.Context, name string, data []byte, contentType, originalName string) (*UploadResult, error) {
	key := "uploads/" + name

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),

		// Attachments are immutable once stored
		CacheControl: aws.String("max-age=31536000"),

		Metadata: map[string]string{
			"original-filename": originalName,
			"upload-timestamp":  time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		logger.ErrorWithFields("S3 upload failed", err)
		return nil, apperrors.InternalError("failed to store file")
	}

	return &UploadResult{
		FileName: name,
		URL:      u.publicURL(key),
		Size:     int64(len(data)),
	}, nil
}

func (u *S3Uploader) publicURL(key string) string {
	if u.baseURL != "" {
		return fmt.Sprintf("%s/%s", u.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key)
}

// CheckBucketAccess verifies the bucket is reachable at startup
func (u *S3Uploader) CheckBucketAccess(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", u.bucket, err)
	}
	return nil
}
