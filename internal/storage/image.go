package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	apperrors "github.com/commentsapp/backend/internal/errors"
)

const (
	// MaxImageBytes caps image attachments at 5 MB
	MaxImageBytes = 5 << 20
	// MaxTextBytes caps text attachments at 100 KB
	MaxTextBytes = 100 << 10

	// Images larger than this bound are scaled down proportionally
	MaxImageWidth  = 320
	MaxImageHeight = 240

	jpegQuality = 85
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// validateImageHeader rejects oversized or unsupported image uploads
// before any bytes are read. Returns the normalized extension.
func validateImageHeader(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageBytes {
		return "", apperrors.PayloadTooLarge(fmt.Sprintf("image exceeds %d bytes", MaxImageBytes))
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExtensions[ext] {
		return "", apperrors.ValidationError("file", "only .jpg, .jpeg, .png and .gif images are accepted")
	}
	return ext, nil
}

// validateTextHeader rejects oversized or non-.txt text uploads
func validateTextHeader(header *multipart.FileHeader) error {
	if header.Size > MaxTextBytes {
		return apperrors.PayloadTooLarge(fmt.Sprintf("text file exceeds %d bytes", MaxTextBytes))
	}
	if strings.ToLower(filepath.Ext(header.Filename)) != ".txt" {
		return apperrors.ValidationError("file", "only .txt files are accepted")
	}
	return nil
}

// processImage decodes, optionally downscales and re-encodes an image.
// Images already inside the bound pass through re-encoded at their
// original size; larger ones shrink by the ratio that fits both axes.
func processImage(file multipart.File, ext string) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return nil, apperrors.BadRequest("could not read uploaded file")
	}
	if len(raw) > MaxImageBytes {
		return nil, apperrors.PayloadTooLarge(fmt.Sprintf("image exceeds %d bytes", MaxImageBytes))
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.ValidationError("file", "file is not a decodable image")
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > MaxImageWidth || height > MaxImageHeight {
		ratioW := float64(MaxImageWidth) / float64(width)
		ratioH := float64(MaxImageHeight) / float64(height)
		ratio := ratioW
		if ratioH < ratio {
			ratio = ratioH
		}

		newW := int(float64(width) * ratio)
		newH := int(float64(height) * ratio)
		if newW < 1 {
			newW = 1
		}
		if newH < 1 {
			newH = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	switch ext {
	case ".png":
		err = png.Encode(&buf, src)
	case ".gif":
		err = gif.Encode(&buf, src, nil)
	default:
		err = jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, apperrors.InternalError("failed to encode image")
	}
	return buf.Bytes(), nil
}

// readTextFile pulls the whole text attachment into memory
func readTextFile(file multipart.File) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(file, MaxTextBytes+1))
	if err != nil {
		return nil, apperrors.BadRequest("could not read uploaded file")
	}
	if len(raw) > MaxTextBytes {
		return nil, apperrors.PayloadTooLarge(fmt.Sprintf("text file exceeds %d bytes", MaxTextBytes))
	}
	return raw, nil
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
