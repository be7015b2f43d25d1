package captcha

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commentsapp/backend/internal/logger"
)

func TestMain(m *testing.M) {
	_ = logger.Initialize("error", filepath.Join(os.TempDir(), "comments-test.log"))
	os.Exit(m.Run())
}

type fakeKV struct {
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeKV) SetEx(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.data[key] = value.(string)
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func TestGenerateIssuesChallenge(t *testing.T) {
	kv := newFakeKV()
	svc := NewService(kv)

	token, code, err := svc.Generate(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Len(t, code, codeLength)
	for _, r := range code {
		assert.Contains(t, codeCharset, string(r))
	}
	assert.Equal(t, code, kv.data[pendingPrefix+token])
}

func TestValidateMatchIsCaseInsensitiveAndSingleUse(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	svc := NewService(kv)

	token, code, err := svc.Generate(ctx)
	require.NoError(t, err)

	ok, err := svc.Validate(ctx, token, strings.ToLower(code))
	require.NoError(t, err)
	assert.True(t, ok)

	// challenge consumed, second attempt fails
	ok, err = svc.Validate(ctx, token, code)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateMismatchKeepsChallenge(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	svc := NewService(kv)

	token, code, err := svc.Generate(ctx)
	require.NoError(t, err)

	ok, err := svc.Validate(ctx, token, "WRONG1")
	require.NoError(t, err)
	assert.False(t, ok)

	// challenge still pending, the right code succeeds
	ok, err = svc.Validate(ctx, token, code)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestValidateUnknownToken(t *testing.T) {
	svc := NewService(newFakeKV())

	ok, err := svc.Validate(context.Background(), "no-such-token", "ABC123")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeRedeemsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	svc := NewService(kv)

	token, code, err := svc.Generate(ctx)
	require.NoError(t, err)

	// not validated yet
	ok, err := svc.Consume(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Validate(ctx, token, code)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Consume(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	// second redemption fails
	ok, err = svc.Consume(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}
