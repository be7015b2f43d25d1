package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"gorm.io/gorm"

	"github.com/commentsapp/backend/internal/comments"
	"github.com/commentsapp/backend/internal/logger"
	"github.com/commentsapp/backend/internal/models"
	"github.com/commentsapp/backend/internal/repository"
)

// Seeder fills the database with realistic comment threads for
// development and demos.
type Seeder struct {
	db       *gorm.DB
	users    repository.UserRepository
	comments repository.CommentRepository
}

func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:       db,
		users:    repository.NewUserRepository(db),
		comments: repository.NewCommentRepository(db),
	}
}

// SeedDev creates a batch of users and nested comment threads.
// Everything goes through the repositories so seeded rows look
// exactly like rows the API would have written.
func (s *Seeder) SeedDev(ctx context.Context) error {
	logger.Log.Info("seeding users")
	users, err := s.seedUsers(ctx, 30)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("seeding comment threads")
	if err := s.seedThreads(ctx, users, 60); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	logger.Log.Info("seeding complete")
	return nil
}

// Clean removes every comment and user. Meant for development
// databases only.
func (s *Seeder) Clean() error {
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			UserName:  gofakeit.Username(),
			Email:     gofakeit.Email(),
			IPAddress: gofakeit.IPv4Address(),
			UserAgent: gofakeit.UserAgent(),
		}
		if rand.Intn(3) == 0 {
			homePage := gofakeit.URL()
			user.HomePage = &homePage
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// seedThreads creates topLevel root comments and grows reply chains
// under them. Reply probability halves with each level so trees stay
// shallow but varied.
func (s *Seeder) seedThreads(ctx context.Context, users []*models.User, topLevel int) error {
	for i := 0; i < topLevel; i++ {
		root, err := s.createComment(ctx, users, nil)
		if err != nil {
			return err
		}
		if err := s.growReplies(ctx, users, root.ID, 0.6); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) growReplies(ctx context.Context, users []*models.User, parentID string, probability float64) error {
	for rand.Float64() < probability {
		reply, err := s.createComment(ctx, users, &parentID)
		if err != nil {
			return err
		}
		if err := s.growReplies(ctx, users, reply.ID, probability/2); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) createComment(ctx context.Context, users []*models.User, parentID *string) (*models.Comment, error) {
	author := users[rand.Intn(len(users))]
	comment := &models.Comment{
		UserID:          author.ID,
		ParentCommentID: parentID,
		Text:            comments.Sanitize(fakeText()),
	}
	return s.comments.Create(ctx, comment)
}

// fakeText mixes plain sentences with the markup the sanitizer
// admits, so seeded data exercises the rendering path.
func fakeText() string {
	switch rand.Intn(4) {
	case 0:
		return fmt.Sprintf("<strong>%s</strong> %s", gofakeit.Word(), gofakeit.Sentence(8))
	case 1:
		return fmt.Sprintf("%s <code>%s</code>", gofakeit.Sentence(6), gofakeit.Word())
	case 2:
		return fmt.Sprintf(`Check out <a href="%s" title="%s">this</a>. %s`,
			gofakeit.URL(), gofakeit.Word(), gofakeit.Sentence(5))
	default:
		return gofakeit.Paragraph(1, 2, 8, " ")
	}
}
