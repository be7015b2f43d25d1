// Package dto defines the JSON shapes exchanged with API clients.
package dto

import "time"

// CreateCommentRequest is the payload for posting a comment
type CreateCommentRequest struct {
	UserName        string  `json:"userName" binding:"required,max=120"`
	Email           string  `json:"email" binding:"required,email"`
	HomePage        *string `json:"homePage,omitempty" binding:"omitempty,url"`
	Text            string  `json:"text" binding:"required"`
	CaptchaToken    string  `json:"captchaToken" binding:"required"`
	ParentCommentID *string `json:"parentCommentId,omitempty"`
	ImagePath       *string `json:"imageUrl,omitempty"`
	TextFilePath    *string `json:"textFileUrl,omitempty"`
}

// PreviewRequest carries raw text for server-side sanitization preview
type PreviewRequest struct {
	Text string `json:"text" binding:"required"`
}

// PreviewResponse returns the sanitized rendering of a preview request
type PreviewResponse struct {
	HTML string `json:"html"`
}

// CommentDto is a single comment with its fully assembled reply tree
type CommentDto struct {
	ID              string        `json:"id"`
	UserName        string        `json:"userName"`
	Email           string        `json:"email"`
	HomePage        *string       `json:"homePage,omitempty"`
	Text            string        `json:"text"`
	ImageURL        *string       `json:"imageUrl,omitempty"`
	TextFileURL     *string       `json:"textFileUrl,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	ParentCommentID *string       `json:"parentCommentId,omitempty"`
	Replies         []*CommentDto `json:"replies"`
}

// PagedResult is one page of top-level comments. TotalCount counts
// top-level comments only; replies ride along inside their parents.
type PagedResult struct {
	Items      []*CommentDto `json:"items"`
	TotalCount int           `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

// NewPagedResult derives TotalPages from the count and page size
func NewPagedResult(items []*CommentDto, totalCount, page, pageSize int) *PagedResult {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}
	if items == nil {
		items = []*CommentDto{}
	}
	return &PagedResult{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
