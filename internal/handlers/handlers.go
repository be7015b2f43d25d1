// Package handlers wires HTTP routes to the comment board services.
package handlers

import (
	"context"

	"github.com/commentsapp/backend/internal/dto"
	"github.com/commentsapp/backend/internal/storage"
)

// CommentService is the slice of the comment core the handlers use
type CommentService interface {
	GetComments(ctx context.Context, page, pageSize int, sortBy string, ascending bool) *dto.PagedResult
	CreateComment(ctx context.Context, req *dto.CreateCommentRequest, ip, userAgent string) (*dto.CommentDto, error)
	PreviewComment(text string) string
}

// CaptchaService issues and redeems human-verification challenges
type CaptchaService interface {
	Generate(ctx context.Context) (token, code string, err error)
	Validate(ctx context.Context, token, submitted string) (bool, error)
	Consume(ctx context.Context, token string) (bool, error)
}

// Handlers bundles every HTTP handler with its collaborators
type Handlers struct {
	comments CommentService
	captcha  CaptchaService
	uploader storage.Uploader
}

// New creates the handler set
func New(comments CommentService, captcha CaptchaService, uploader storage.Uploader) *Handlers {
	return &Handlers{
		comments: comments,
		captcha:  captcha,
		uploader: uploader,
	}
}
