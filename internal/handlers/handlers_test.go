package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commentsapp/backend/internal/dto"
	apperrors "github.com/commentsapp/backend/internal/errors"
	"github.com/commentsapp/backend/internal/logger"
	"github.com/commentsapp/backend/internal/storage"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	_ = logger.Initialize("error", filepath.Join(os.TempDir(), "comments-test.log"))
	os.Exit(m.Run())
}

type fakeCommentService struct {
	lastPage     int
	lastPageSize int
	lastSortBy   string
	lastAsc      bool
	result       *dto.PagedResult

	lastCreateReq *dto.CreateCommentRequest
	lastIP        string
	createErr     error
}

func (f *fakeCommentService) GetComments(_ context.Context, page, pageSize int, sortBy string, ascending bool) *dto.PagedResult {
	f.lastPage, f.lastPageSize, f.lastSortBy, f.lastAsc = page, pageSize, sortBy, ascending
	if f.result != nil {
		return f.result
	}
	return dto.NewPagedResult(nil, 0, page, pageSize)
}

func (f *fakeCommentService) CreateComment(_ context.Context, req *dto.CreateCommentRequest, ip, _ string) (*dto.CommentDto, error) {
	f.lastCreateReq = req
	f.lastIP = ip
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &dto.CommentDto{ID: "c1", UserName: req.UserName, Email: req.Email, Text: req.Text, Replies: []*dto.CommentDto{}}, nil
}

func (f *fakeCommentService) PreviewComment(text string) string {
	return "sanitized:" + text
}

type fakeCaptchaService struct {
	token       string
	code        string
	generateErr error
	validateOK  bool
	consumeOK   bool
	consumed    []string
}

func (f *fakeCaptchaService) Generate(_ context.Context) (string, string, error) {
	return f.token, f.code, f.generateErr
}

func (f *fakeCaptchaService) Validate(_ context.Context, _, _ string) (bool, error) {
	return f.validateOK, nil
}

func (f *fakeCaptchaService) Consume(_ context.Context, token string) (bool, error) {
	f.consumed = append(f.consumed, token)
	return f.consumeOK, nil
}

type fakeUploader struct {
	result *storage.UploadResult
	err    error
}

func (f *fakeUploader) UploadImage(_ context.Context, _ multipart.File, _ *multipart.FileHeader) (*storage.UploadResult, error) {
	return f.result, f.err
}

func (f *fakeUploader) UploadTextFile(_ context.Context, _ multipart.File, _ *multipart.FileHeader) (*storage.UploadResult, error) {
	return f.result, f.err
}

type testEnv struct {
	router   *gin.Engine
	comments *fakeCommentService
	captcha  *fakeCaptchaService
	uploader *fakeUploader
}

func newTestEnv() *testEnv {
	comments := &fakeCommentService{}
	captcha := &fakeCaptchaService{token: "tok", code: "ABC123", consumeOK: true, validateOK: true}
	uploader := &fakeUploader{result: &storage.UploadResult{FileName: "f.png", URL: "/uploads/f.png", Size: 42}}

	h := New(comments, captcha, uploader)

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("/comments", h.GetComments)
		api.POST("/comments", h.CreateComment)
		api.POST("/comments/preview", h.PreviewComment)
		api.GET("/captcha", h.GenerateCaptcha)
		api.POST("/captcha/validate", h.ValidateCaptcha)
		api.POST("/file/image", h.UploadImage)
		api.POST("/file/text", h.UploadTextFile)
	}

	return &testEnv{router: router, comments: comments, captcha: captcha, uploader: uploader}
}

func (e *testEnv) do(method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(method, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	return e.do(method, path, body, "application/json")
}

func createPayload() map[string]interface{} {
	return map[string]interface{}{
		"userName":     "alice",
		"email":        "alice@example.com",
		"text":         "hello",
		"captchaToken": "tok",
	}
}

func TestGetCommentsDefaults(t *testing.T) {
	e := newTestEnv()

	w := e.do(http.MethodGet, "/api/comments", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, e.comments.lastPage)
	assert.Equal(t, 25, e.comments.lastPageSize)
	assert.Equal(t, "createdAt", e.comments.lastSortBy)
	assert.False(t, e.comments.lastAsc)
}

func TestGetCommentsQueryParams(t *testing.T) {
	e := newTestEnv()

	w := e.do(http.MethodGet, "/api/comments?page=2&pageSize=10&sortBy=userName&ascending=true", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, e.comments.lastPage)
	assert.Equal(t, 10, e.comments.lastPageSize)
	assert.Equal(t, "userName", e.comments.lastSortBy)
	assert.True(t, e.comments.lastAsc)
}

func TestGetCommentsGarbageParamsFallBack(t *testing.T) {
	e := newTestEnv()

	w := e.do(http.MethodGet, "/api/comments?page=abc&pageSize=xyz&ascending=maybe", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, e.comments.lastPage)
	assert.Equal(t, 25, e.comments.lastPageSize)
	assert.False(t, e.comments.lastAsc)
}

func TestCreateComment(t *testing.T) {
	e := newTestEnv()

	w := e.doJSON(http.MethodPost, "/api/comments", createPayload())

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, e.comments.lastCreateReq)
	assert.Equal(t, "alice", e.comments.lastCreateReq.UserName)
	assert.Equal(t, []string{"tok"}, e.captcha.consumed)

	var created dto.CommentDto
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "c1", created.ID)
}

func TestCreateCommentRejectsInvalidBody(t *testing.T) {
	e := newTestEnv()

	tests := []struct {
		name  string
		patch func(map[string]interface{})
	}{
		{"missing userName", func(p map[string]interface{}) { delete(p, "userName") }},
		{"missing email", func(p map[string]interface{}) { delete(p, "email") }},
		{"bad email", func(p map[string]interface{}) { p["email"] = "not-an-email" }},
		{"missing text", func(p map[string]interface{}) { delete(p, "text") }},
		{"missing captcha", func(p map[string]interface{}) { delete(p, "captchaToken") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := createPayload()
			tt.patch(payload)
			w := e.doJSON(http.MethodPost, "/api/comments", payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateCommentRequiresValidatedCaptcha(t *testing.T) {
	e := newTestEnv()
	e.captcha.consumeOK = false

	w := e.doJSON(http.MethodPost, "/api/comments", createPayload())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), string(apperrors.ErrCaptchaInvalid))
	assert.Nil(t, e.comments.lastCreateReq)
}

func TestCreateCommentServiceErrorsMapToStatus(t *testing.T) {
	e := newTestEnv()
	e.comments.createErr = apperrors.ValidationError("parentCommentId", "parent comment not found")

	w := e.doJSON(http.MethodPost, "/api/comments", createPayload())

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "parentCommentId")
}

func TestPreviewComment(t *testing.T) {
	e := newTestEnv()

	w := e.doJSON(http.MethodPost, "/api/comments/preview", map[string]string{"text": "<b>x</b>"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.PreviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sanitized:<b>x</b>", resp.HTML)
}

func TestGenerateCaptcha(t *testing.T) {
	e := newTestEnv()

	w := e.do(http.MethodGet, "/api/captcha", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tok", resp["token"])
	assert.Equal(t, "ABC123", resp["code"])
}

func TestValidateCaptcha(t *testing.T) {
	e := newTestEnv()

	w := e.doJSON(http.MethodPost, "/api/captcha/validate", map[string]string{"token": "tok", "code": "abc123"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)

	e.captcha.validateOK = false
	w = e.doJSON(http.MethodPost, "/api/captcha/validate", map[string]string{"token": "tok", "code": "nope"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
}

func TestValidateCaptchaRejectsMissingFields(t *testing.T) {
	e := newTestEnv()

	w := e.doJSON(http.MethodPost, "/api/captcha/validate", map[string]string{"token": "tok"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func multipartBody(t *testing.T, field, filename string, content []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	e := newTestEnv()

	body, contentType := multipartBody(t, "file", "pic.png", []byte("data"))
	w := e.do(http.MethodPost, "/api/file/image", body, contentType)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/uploads/f.png")
}

func TestUploadImageMissingFile(t *testing.T) {
	e := newTestEnv()

	body, contentType := multipartBody(t, "wrong", "pic.png", []byte("data"))
	w := e.do(http.MethodPost, "/api/file/image", body, contentType)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRejectionsPropagate(t *testing.T) {
	e := newTestEnv()
	e.uploader.result = nil
	e.uploader.err = apperrors.PayloadTooLarge("image exceeds 5242880 bytes")

	body, contentType := multipartBody(t, "file", "big.png", []byte(strings.Repeat("x", 10)))
	w := e.do(http.MethodPost, "/api/file/image", body, contentType)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
