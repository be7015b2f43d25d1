package comments

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/commentsapp/backend/internal/cache"
	"github.com/commentsapp/backend/internal/dto"
	apperrors "github.com/commentsapp/backend/internal/errors"
	"github.com/commentsapp/backend/internal/logger"
	"github.com/commentsapp/backend/internal/metrics"
	"github.com/commentsapp/backend/internal/models"
	"github.com/commentsapp/backend/internal/queue"
	"github.com/commentsapp/backend/internal/repository"
)

// pageTTL bounds how stale a cached page can get even if
// invalidation is missed.
const pageTTL = 5 * time.Minute

// PageCache is the slice of the cache layer the service depends on
type PageCache interface {
	GetPage(ctx context.Context, key string) (*dto.PagedResult, bool, error)
	SetPage(ctx context.Context, key string, result *dto.PagedResult, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// Broadcaster pushes freshly created comments to connected clients
type Broadcaster interface {
	BroadcastNewComment(comment *dto.CommentDto)
}

// Publisher hands comment-created events to the work queue
type Publisher interface {
	PublishCommentCreated(ctx context.Context, event queue.CommentCreatedEvent) error
}

// Service orchestrates comment reads and writes. Reads degrade
// gracefully when infrastructure is down; writes fail loudly only
// when the comment itself cannot be persisted.
type Service struct {
	comments repository.CommentRepository
	users    repository.UserRepository
	cache    PageCache
	realtime Broadcaster
	publish  Publisher
}

// NewService wires the comment service. realtime and publish may be
// nil, which disables those side effects.
func NewService(
	comments repository.CommentRepository,
	users repository.UserRepository,
	cache PageCache,
	realtime Broadcaster,
	publish Publisher,
) *Service {
	return &Service{
		comments: comments,
		users:    users,
		cache:    cache,
		realtime: realtime,
		publish:  publish,
	}
}

// GetComments returns one page of top-level comments with full reply
// trees. It never returns an error: any store or cache failure
// degrades to an empty page so the board always renders.
func (s *Service) GetComments(ctx context.Context, page, pageSize int, sortBy string, ascending bool) (result *dto.PagedResult) {
	page, pageSize = NormalizePaging(page, pageSize)
	sortBy = NormalizeSortBy(sortBy)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Comment page assembly panicked", zap.Any("panic", r))
			result = dto.NewPagedResult(nil, 0, page, pageSize)
		}
	}()

	key := cache.PageKey(page, pageSize, sortBy, ascending)

	if cached, hit, err := s.cache.GetPage(ctx, key); err != nil {
		logger.WarnWithFields("Page cache read failed", err)
	} else if hit {
		metrics.RecordCacheHit("comment_pages")
		return cached
	}
	metrics.RecordCacheMiss("comment_pages")

	all, err := s.comments.FetchAll(ctx)
	if err != nil {
		logger.ErrorWithFields("Comment store fetch failed", err)
		return dto.NewPagedResult(nil, 0, page, pageSize)
	}

	result = Assemble(all, page, pageSize, sortBy, ascending)

	if err := s.cache.SetPage(ctx, key, result, pageTTL); err != nil {
		logger.WarnWithFields("Page cache write failed", err)
	}

	return result
}

// CreateComment sanitizes, persists and announces a new comment.
// The author row is found by email or created on first sight.
// Broadcast, queue publication and cache invalidation are best
// effort; only persistence failures surface to the caller.
func (s *Service) CreateComment(ctx context.Context, req *dto.CreateCommentRequest, ip, userAgent string) (*dto.CommentDto, error) {
	text := Sanitize(req.Text)

	if req.ParentCommentID != nil {
		exists, err := s.comments.Exists(ctx, *req.ParentCommentID)
		if err != nil {
			return nil, apperrors.StoreUnavailable("parent lookup", err)
		}
		if !exists {
			return nil, apperrors.ValidationError("parentCommentId", "parent comment not found")
		}
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		user = &models.User{
			UserName:  req.UserName,
			Email:     req.Email,
			HomePage:  req.HomePage,
			IPAddress: ip,
			UserAgent: userAgent,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperrors.StoreUnavailable("create author", err)
		}
	case err != nil:
		return nil, apperrors.StoreUnavailable("author lookup", err)
	}

	created, err := s.comments.Create(ctx, &models.Comment{
		UserID:          user.ID,
		ParentCommentID: req.ParentCommentID,
		Text:            text,
		ImagePath:       req.ImagePath,
		TextFilePath:    req.TextFilePath,
	})
	if err != nil {
		return nil, apperrors.StoreUnavailable("create comment", err)
	}
	if created.User.ID == "" {
		return nil, apperrors.IntegrityError("comment persisted without a resolvable author")
	}

	kind := "top_level"
	if !created.IsTopLevel() {
		kind = "reply"
	}
	metrics.Get().CommentsCreatedTotal.WithLabelValues(kind).Inc()

	result := MapToDto(created)

	if s.realtime != nil {
		s.realtime.BroadcastNewComment(result)
	}

	if s.publish != nil {
		event := queue.CommentCreatedEvent{
			CommentID: created.ID,
			UserID:    created.UserID,
			CreatedAt: created.CreatedAt,
		}
		if err := s.publish.PublishCommentCreated(ctx, event); err != nil {
			logger.WarnWithFields("Comment event publication failed", err)
		}
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		logger.WarnWithFields("Page cache invalidation failed", err)
	}

	return result, nil
}

// PreviewComment returns the sanitized rendering of text without
// persisting anything. Posting the same text later produces the
// identical stored markup.
func (s *Service) PreviewComment(text string) string {
	return Sanitize(text)
}
