package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/commentsapp/backend/internal/logger"
	"github.com/commentsapp/backend/internal/models"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", filepath.Join(os.TempDir(), "comments-test.log"))
	os.Exit(m.Run())
}

type RepositorySuite struct {
	suite.Suite
	db       *gorm.DB
	users    UserRepository
	comments CommentRepository
}

func (s *RepositorySuite) SetupTest() {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", s.T().Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)

	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	s.Require().NoError(db.AutoMigrate(&models.User{}, &models.Comment{}))

	s.db = db
	s.users = NewUserRepository(db)
	s.comments = NewCommentRepository(db)
}

func (s *RepositorySuite) TearDownTest() {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func (s *RepositorySuite) createUser(name, email string) *models.User {
	user := &models.User{UserName: name, Email: email}
	s.Require().NoError(s.users.Create(context.Background(), user))
	return user
}

func (s *RepositorySuite) createComment(userID string, parentID *string, text string) *models.Comment {
	created, err := s.comments.Create(context.Background(), &models.Comment{
		UserID:          userID,
		ParentCommentID: parentID,
		Text:            text,
	})
	s.Require().NoError(err)
	return created
}

func (s *RepositorySuite) TestUserCreateAssignsID() {
	user := s.createUser("alice", "alice@example.com")
	s.NotEmpty(user.ID)
}

func (s *RepositorySuite) TestGetByEmailIsCaseInsensitive() {
	s.createUser("alice", "Alice@Example.com")

	found, err := s.users.GetByEmail(context.Background(), "alice@example.COM")
	s.Require().NoError(err)
	s.Equal("alice", found.UserName)
}

func (s *RepositorySuite) TestGetByEmailNotFound() {
	_, err := s.users.GetByEmail(context.Background(), "nobody@example.com")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *RepositorySuite) TestCreateCommentReloadsAuthor() {
	user := s.createUser("alice", "alice@example.com")

	created := s.createComment(user.ID, nil, "hello")

	s.NotEmpty(created.ID)
	s.Equal(user.ID, created.User.ID)
	s.Equal("alice", created.User.UserName)
	s.False(created.CreatedAt.IsZero())
}

func (s *RepositorySuite) TestFetchAllPreloadsAuthors() {
	alice := s.createUser("alice", "alice@example.com")
	bob := s.createUser("bob", "bob@example.com")

	root := s.createComment(alice.ID, nil, "root")
	s.createComment(bob.ID, &root.ID, "reply")

	all, err := s.comments.FetchAll(context.Background())
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	for _, c := range all {
		s.NotEmpty(c.User.UserName, "comment %s author not preloaded", c.ID)
	}
}

func (s *RepositorySuite) TestFetchAllBreaksTimestampTiesByID() {
	user := s.createUser("alice", "alice@example.com")
	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// insert in scrambled ID order with identical timestamps
	for _, id := range []string{"c2", "c3", "c1"} {
		_, err := s.comments.Create(context.Background(), &models.Comment{
			ID:        id,
			UserID:    user.ID,
			Text:      "text-" + id,
			CreatedAt: stamp,
		})
		s.Require().NoError(err)
	}

	all, err := s.comments.FetchAll(context.Background())
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("c1", all[0].ID)
	s.Equal("c2", all[1].ID)
	s.Equal("c3", all[2].ID)
}

func (s *RepositorySuite) TestExists() {
	user := s.createUser("alice", "alice@example.com")
	created := s.createComment(user.ID, nil, "hello")

	exists, err := s.comments.Exists(context.Background(), created.ID)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.comments.Exists(context.Background(), "missing")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RepositorySuite) TestCountTopLevelIgnoresReplies() {
	user := s.createUser("alice", "alice@example.com")

	first := s.createComment(user.ID, nil, "first")
	s.createComment(user.ID, nil, "second")
	s.createComment(user.ID, &first.ID, "a reply")

	count, err := s.comments.CountTopLevel(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func (s *RepositorySuite) TestUserCount() {
	s.createUser("alice", "alice@example.com")
	s.createUser("bob", "bob@example.com")

	count, err := s.users.Count(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(2), count)
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}
