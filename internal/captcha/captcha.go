// Package captcha issues and validates short-lived human-verification
// challenges backed by Redis.
package captcha

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/commentsapp/backend/internal/metrics"
)

const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 6

	challengeTTL = 10 * time.Minute

	pendingPrefix   = "captcha:"
	validatedPrefix = "captcha:ok:"
)

// KV is the subset of Redis operations the challenge store needs
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Service manages captcha challenges. Tokens are single-use: a
// successful validation consumes the pending challenge and leaves a
// validated marker that comment creation redeems exactly once.
type Service struct {
	kv KV
}

// NewService creates a captcha service on top of a KV store
func NewService(kv KV) *Service {
	return &Service{kv: kv}
}

// Generate issues a new challenge and returns its token and code.
// Real deployments render the code as an image; the code also comes
// back in the response so clients can draw it themselves.
func (s *Service) Generate(ctx context.Context) (token, code string, err error) {
	code = randomCode(codeLength)
	token = uuid.NewString()

	if err := s.kv.SetEx(ctx, pendingPrefix+token, code, challengeTTL); err != nil {
		return "", "", err
	}
	return token, code, nil
}

// Validate checks a submitted code against the pending challenge.
// Comparison is case-insensitive. A matching attempt removes the
// challenge and marks the token validated; a mismatch leaves the
// challenge in place for another try.
func (s *Service) Validate(ctx context.Context, token, submitted string) (bool, error) {
	stored, err := s.kv.Get(ctx, pendingPrefix+token)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.Get().CaptchaValidations.WithLabelValues("expired").Inc()
			return false, nil
		}
		return false, err
	}

	if !strings.EqualFold(stored, submitted) {
		metrics.Get().CaptchaValidations.WithLabelValues("mismatch").Inc()
		return false, nil
	}

	if err := s.kv.Del(ctx, pendingPrefix+token); err != nil {
		return false, err
	}
	if err := s.kv.SetEx(ctx, validatedPrefix+token, "1", challengeTTL); err != nil {
		return false, err
	}

	metrics.Get().CaptchaValidations.WithLabelValues("ok").Inc()
	return true, nil
}

// Consume redeems a validated token. It returns true exactly once per
// token; comment creation calls this as its admission check.
func (s *Service) Consume(ctx context.Context, token string) (bool, error) {
	key := validatedPrefix + token
	_, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := s.kv.Del(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}

func randomCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeCharset[rand.IntN(len(codeCharset))]
	}
	return string(b)
}
