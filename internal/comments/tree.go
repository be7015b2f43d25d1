// Package comments implements the comment board core: HTML
// sanitization, in-memory reply tree assembly and the service that
// ties the store, cache, queue and realtime layers together.
package comments

import (
	"sort"
	"strings"

	"github.com/commentsapp/backend/internal/dto"
	"github.com/commentsapp/backend/internal/models"
)

const (
	// DefaultPageSize is used when the client sends no page size
	DefaultPageSize = 25
	// MaxPageSize caps what a client may request
	MaxPageSize = 100

	SortByCreatedAt = "createdAt"
	SortByUserName  = "userName"
	SortByEmail     = "email"
)

// NormalizePaging clamps paging arguments. Page floors to 1, a
// missing or non-positive page size falls back to the default and
// oversized requests are capped.
func NormalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// NormalizeSortBy maps arbitrary client input onto a supported sort
// field, defaulting to creation time.
func NormalizeSortBy(sortBy string) string {
	switch strings.ToLower(sortBy) {
	case "username":
		return SortByUserName
	case "email":
		return SortByEmail
	default:
		return SortByCreatedAt
	}
}

// Assemble builds one page of fully nested comment trees from a flat
// snapshot of every comment. Sorting and pagination apply to
// top-level comments only; replies are always ordered oldest first.
// TotalCount counts top-level comments.
func Assemble(all []models.Comment, page, pageSize int, sortBy string, ascending bool) *dto.PagedResult {
	page, pageSize = NormalizePaging(page, pageSize)
	sortBy = NormalizeSortBy(sortBy)

	// Single pass: index children by parent ID. Top-level comments
	// live under the empty key.
	children := make(map[string][]*models.Comment)
	for i := range all {
		c := &all[i]
		parent := ""
		if c.ParentCommentID != nil {
			parent = *c.ParentCommentID
		}
		children[parent] = append(children[parent], c)
	}

	// Replies render oldest first at every level
	for parent, list := range children {
		if parent == "" {
			continue
		}
		sortChronological(list)
	}

	topLevel := children[""]
	sortTopLevel(topLevel, sortBy, ascending)

	totalCount := len(topLevel)

	start := (page - 1) * pageSize
	if start > totalCount {
		start = totalCount
	}
	end := start + pageSize
	if end > totalCount {
		end = totalCount
	}

	items := make([]*dto.CommentDto, 0, end-start)
	for _, root := range topLevel[start:end] {
		items = append(items, buildSubtree(root, children))
	}

	return dto.NewPagedResult(items, totalCount, page, pageSize)
}

// buildSubtree maps a comment and all its descendants to DTOs using an
// explicit stack, so arbitrarily deep threads cannot exhaust the
// goroutine stack.
func buildSubtree(root *models.Comment, children map[string][]*models.Comment) *dto.CommentDto {
	rootDto := MapToDto(root)

	type frame struct {
		comment *models.Comment
		dto     *dto.CommentDto
	}
	stack := []frame{{root, rootDto}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range children[top.comment.ID] {
			childDto := MapToDto(child)
			top.dto.Replies = append(top.dto.Replies, childDto)
			stack = append(stack, frame{child, childDto})
		}
	}

	return rootDto
}

// MapToDto converts a stored comment to its API shape without replies
func MapToDto(c *models.Comment) *dto.CommentDto {
	return &dto.CommentDto{
		ID:              c.ID,
		UserName:        c.User.UserName,
		Email:           c.User.Email,
		HomePage:        c.User.HomePage,
		Text:            c.Text,
		ImageURL:        c.ImagePath,
		TextFileURL:     c.TextFilePath,
		CreatedAt:       c.CreatedAt,
		ParentCommentID: c.ParentCommentID,
		Replies:         []*dto.CommentDto{},
	}
}

// sortChronological orders by CreatedAt with ID as tiebreak, so
// equal-timestamp siblings render identically on every read.
func sortChronological(list []*models.Comment) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func sortTopLevel(list []*models.Comment, sortBy string, ascending bool) {
	var less func(i, j int) bool
	switch sortBy {
	case SortByUserName:
		less = func(i, j int) bool {
			return strings.ToLower(list[i].User.UserName) < strings.ToLower(list[j].User.UserName)
		}
	case SortByEmail:
		less = func(i, j int) bool {
			return strings.ToLower(list[i].User.Email) < strings.ToLower(list[j].User.Email)
		}
	default:
		less = func(i, j int) bool {
			if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
				return list[i].CreatedAt.Before(list[j].CreatedAt)
			}
			return list[i].ID < list[j].ID
		}
	}
	if !ascending {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(list, less)
}
