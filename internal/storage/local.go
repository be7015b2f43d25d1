package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	apperrors "github.com/commentsapp/backend/internal/errors"
)

// LocalUploader stores attachments on the local filesystem under a
// single uploads directory served as static files.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates the uploads directory if needed.
// baseURL prefixes returned URLs, e.g. "" yields "/uploads/<name>".
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: baseURL}, nil
}

// UploadImage validates, resizes and writes an image attachment
func (u *LocalUploader) UploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	ext, err := validateImageHeader(header)
	if err != nil {
		return nil, err
	}

	data, err := processImage(file, ext)
	if err != nil {
		return nil, err
	}

	return u.write(uuid.NewString()+ext, data)
}

// UploadTextFile validates and writes a plain-text attachment
func (u *LocalUploader) UploadTextFile(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if err := validateTextHeader(header); err != nil {
		return nil, err
	}

	data, err := readTextFile(file)
	if err != nil {
		return nil, err
	}

	return u.write(uuid.NewString()+".txt", data)
}

func (u *LocalUploader) write(name string, data []byte) (*UploadResult, error) {
	path := filepath.Join(u.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, apperrors.InternalError("failed to store file")
	}
	return &UploadResult{
		FileName: name,
		URL:      u.baseURL + "/uploads/" + name,
		Size:     int64(len(data)),
	}, nil
}
