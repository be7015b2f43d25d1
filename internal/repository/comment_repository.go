package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/commentsapp/backend/internal/models"
)

var ErrCommentNotFound = errors.New("comment not found")

// CommentRepository handles all database operations for comments
type CommentRepository interface {
	// Create persists a comment and returns it reloaded with its
	// author row attached.
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)

	// FetchAll returns every comment with authors preloaded. Tree
	// assembly and pagination happen in memory, so reads take one
	// round trip.
	FetchAll(ctx context.Context) ([]models.Comment, error)

	Exists(ctx context.Context, commentID string) (bool, error)
	CountTopLevel(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if comment == nil {
		return nil, ErrInvalidInput
	}
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}

	var created models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", comment.ID).
		First(&created).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *commentRepository) FetchAll(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) Exists(ctx context.Context, commentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", commentID).
		Count(&count).Error
	return count > 0, err
}

func (r *commentRepository) CountTopLevel(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("parent_comment_id IS NULL").
		Count(&count).Error
	return count, err
}
