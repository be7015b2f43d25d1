// Package storage persists comment attachments: images, downscaled to
// a thumbnail bound, and plain-text files. Local disk and S3 backends
// share the same validation and resize pipeline.
package storage

import (
	"context"
	"mime/multipart"
)

// UploadResult describes a stored attachment
type UploadResult struct {
	FileName string `json:"fileName"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// Uploader stores validated attachments and returns their public URL.
// This interface allows for easy mocking in tests.
type Uploader interface {
	UploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error)
	UploadTextFile(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error)
}

// Ensure both backends implement Uploader
var (
	_ Uploader = (*LocalUploader)(nil)
	_ Uploader = (*S3Uploader)(nil)
)
