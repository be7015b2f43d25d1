package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/commentsapp/backend/internal/errors"
	"github.com/commentsapp/backend/internal/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", filepath.Join(os.TempDir(), "comments-test.log"))
	os.Exit(m.Run())
}

// memFile adapts a byte slice to multipart.File
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func makePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func upload(t *testing.T, u *LocalUploader, name string, data []byte, isImage bool) (*UploadResult, error) {
	t.Helper()
	file := memFile{bytes.NewReader(data)}
	header := &multipart.FileHeader{Filename: name, Size: int64(len(data))}
	if isImage {
		return u.UploadImage(context.Background(), file, header)
	}
	return u.UploadTextFile(context.Background(), file, header)
}

func newTestUploader(t *testing.T) *LocalUploader {
	t.Helper()
	u, err := NewLocalUploader(t.TempDir(), "")
	require.NoError(t, err)
	return u
}

func decodeStored(t *testing.T, u *LocalUploader, result *UploadResult) image.Image {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(u.dir, result.FileName))
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestUploadImageResizesLargeImages(t *testing.T) {
	u := newTestUploader(t)

	result, err := upload(t, u, "photo.png", makePNG(t, 640, 480), true)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(result.FileName, ".png"))
	assert.Equal(t, "/uploads/"+result.FileName, result.URL)

	img := decodeStored(t, u, result)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestUploadImageScalesByTightestAxis(t *testing.T) {
	u := newTestUploader(t)

	// 100x480: height is the binding constraint, ratio 0.5
	result, err := upload(t, u, "tall.png", makePNG(t, 100, 480), true)
	require.NoError(t, err)

	img := decodeStored(t, u, result)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestUploadImageKeepsSmallImages(t *testing.T) {
	u := newTestUploader(t)

	result, err := upload(t, u, "small.png", makePNG(t, 100, 80), true)
	require.NoError(t, err)

	img := decodeStored(t, u, result)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestUploadImageRejectsUnsupportedExtension(t *testing.T) {
	u := newTestUploader(t)

	_, err := upload(t, u, "notes.bmp", makePNG(t, 10, 10), true)

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, apiErr.Code)
}

func TestUploadImageRejectsOversizedFile(t *testing.T) {
	u := newTestUploader(t)

	file := memFile{bytes.NewReader(nil)}
	header := &multipart.FileHeader{Filename: "big.jpg", Size: MaxImageBytes + 1}
	_, err := u.UploadImage(context.Background(), file, header)

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrPayloadTooLarge, apiErr.Code)
}

func TestUploadImageRejectsNonImagePayload(t *testing.T) {
	u := newTestUploader(t)

	_, err := upload(t, u, "fake.png", []byte("not an image at all"), true)

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, apiErr.Code)
}

func TestUploadTextFile(t *testing.T) {
	u := newTestUploader(t)

	result, err := upload(t, u, "story.txt", []byte("attached text"), false)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(result.FileName, ".txt"))
	raw, err := os.ReadFile(filepath.Join(u.dir, result.FileName))
	require.NoError(t, err)
	assert.Equal(t, "attached text", string(raw))
}

func TestUploadTextFileRejectsWrongExtension(t *testing.T) {
	u := newTestUploader(t)

	_, err := upload(t, u, "story.md", []byte("text"), false)

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrValidation, apiErr.Code)
}

func TestUploadTextFileRejectsOversizedFile(t *testing.T) {
	u := newTestUploader(t)

	file := memFile{bytes.NewReader(nil)}
	header := &multipart.FileHeader{Filename: "big.txt", Size: MaxTextBytes + 1}
	_, err := u.UploadTextFile(context.Background(), file, header)

	apiErr, ok := apperrors.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrPayloadTooLarge, apiErr.Code)
}
