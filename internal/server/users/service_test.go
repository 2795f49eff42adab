package users

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avoronov/todovault/internal/common"
	"github.com/avoronov/todovault/internal/logging"
	"github.com/avoronov/todovault/internal/server/auth"
	"github.com/avoronov/todovault/internal/server/config"
)

// --- helpers ---

type fakeRepo struct {
	users map[string]*User // keyed by email

	createErr    error
	lastLoginErr error
	setTokenErr  error

	clearedResetFor []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[string]*User)}
}

func (f *fakeRepo) Create(ctx context.Context, u *User) (*User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.users[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = "user-" + u.Email
	u.CreatedAt = time.Now()
	f.users[u.Email] = u
	return u, nil
}

func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if f.lastLoginErr != nil {
		return f.lastLoginErr
	}
	for _, u := range f.users {
		if u.ID == id {
			u.LastLogin = &at
		}
	}
	return nil
}

func (f *fakeRepo) SetResetToken(ctx context.Context, id string, tokenHash string, expires time.Time) error {
	if f.setTokenErr != nil {
		return f.setTokenErr
	}
	for _, u := range f.users {
		if u.ID == id {
			u.ResetTokenHash = &tokenHash
			u.ResetTokenExpires = &expires
		}
	}
	return nil
}

func (f *fakeRepo) ClearResetToken(ctx context.Context, id string) error {
	f.clearedResetFor = append(f.clearedResetFor, id)
	for _, u := range f.users {
		if u.ID == id {
			u.ResetTokenHash = nil
			u.ResetTokenExpires = nil
		}
	}
	return nil
}

func (f *fakeRepo) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*User, error) {
	for _, u := range f.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == tokenHash && u.ResetTokenExpires.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRepo) ResetPassword(ctx context.Context, id string, passwordHash []byte) error {
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			u.ResetTokenHash = nil
			u.ResetTokenExpires = nil
		}
	}
	return nil
}

func newTestService(repo Repository) *Service {
	cfg := &config.Config{
		BcryptCost:                 bcrypt.MinCost,
		ResetTokenValidityDuration: 10 * time.Minute,
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewService(repo, cfg, logger)
}

// --- Register ---

func TestRegister_Success_HashNeverPlaintext(t *testing.T) {
	s := newTestService(newFakeRepo())

	u, err := s.Register(context.Background(), "Alice", "A@X.com", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", u.Email, "email stored lowercase")
	assert.NotEqual(t, "secret1", string(u.PasswordHash))
	assert.True(t, auth.CheckPassword(u.PasswordHash, "secret1"))
}

func TestRegister_Validation(t *testing.T) {
	s := newTestService(newFakeRepo())

	tests := []struct {
		name, userName, email, password string
	}{
		{"missing name", "", "a@x.com", "secret1"},
		{"missing email", "Alice", "", "secret1"},
		{"missing password", "Alice", "a@x.com", ""},
		{"short password", "Alice", "a@x.com", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(context.Background(), tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestRegister_DuplicateEmail_CaseInsensitive(t *testing.T) {
	s := newTestService(newFakeRepo())

	_, err := s.Register(context.Background(), "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	_, err = s.Register(context.Background(), "Bob", "A@X.COM", "secret2")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

// --- Authenticate ---

func TestAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)

	_, err := s.Register(context.Background(), "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	t.Run("success stamps last login", func(t *testing.T) {
		u, err := s.Authenticate(context.Background(), "a@x.com", "secret1")
		require.NoError(t, err)
		assert.NotNil(t, u.LastLogin)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Authenticate(context.Background(), "a@x.com", "wrong")
		assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
	})

	t.Run("unknown user is indistinguishable", func(t *testing.T) {
		_, err := s.Authenticate(context.Background(), "nobody@x.com", "secret1")
		assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
	})

	t.Run("last-login persist failure never blocks login", func(t *testing.T) {
		repo.lastLoginErr = context.DeadlineExceeded
		defer func() { repo.lastLoginErr = nil }()

		_, err := s.Authenticate(context.Background(), "a@x.com", "secret1")
		assert.NoError(t, err)
	})
}

// --- Reset token lifecycle ---

func TestResetToken_RoundTrip_SingleUse(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)

	_, err := s.Register(context.Background(), "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	token, user, err := s.IssueResetToken(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	stored := repo.users["a@x.com"]
	require.NotNil(t, stored.ResetTokenHash)
	assert.NotEqual(t, token, *stored.ResetTokenHash, "plaintext token never persisted")
	assert.True(t, stored.ResetTokenExpires.After(time.Now()), "expiry must be in the future at issuance")
	assert.Equal(t, stored.ID, user.ID)

	// first consume succeeds
	u, err := s.ConsumeResetToken(context.Background(), token, "newpassword")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "newpassword"))
	assert.Nil(t, repo.users["a@x.com"].ResetTokenHash)
	assert.Nil(t, repo.users["a@x.com"].ResetTokenExpires)

	// second consume with the same token fails
	_, err = s.ConsumeResetToken(context.Background(), token, "anotherpass")
	assert.ErrorIs(t, err, common.ErrorInvalidToken)
}

func TestConsumeResetToken_Expired(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)

	_, err := s.Register(context.Background(), "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	token, _, err := s.IssueResetToken(context.Background(), "a@x.com")
	require.NoError(t, err)

	// force the window shut
	past := time.Now().Add(-time.Minute)
	repo.users["a@x.com"].ResetTokenExpires = &past

	_, err = s.ConsumeResetToken(context.Background(), token, "newpassword")
	assert.ErrorIs(t, err, common.ErrorInvalidToken)
}

func TestConsumeResetToken_ShortPassword(t *testing.T) {
	s := newTestService(newFakeRepo())

	_, err := s.ConsumeResetToken(context.Background(), "whatever", "123")
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestIssueResetToken_UnknownEmail(t *testing.T) {
	s := newTestService(newFakeRepo())

	_, _, err := s.IssueResetToken(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestClearResetToken_RollsBackPendingToken(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo)

	_, err := s.Register(context.Background(), "Alice", "a@x.com", "secret1")
	require.NoError(t, err)

	token, user, err := s.IssueResetToken(context.Background(), "a@x.com")
	require.NoError(t, err)

	require.NoError(t, s.ClearResetToken(context.Background(), user.ID))
	assert.Contains(t, repo.clearedResetFor, user.ID)

	_, err = s.ConsumeResetToken(context.Background(), token, "newpassword")
	assert.ErrorIs(t, err, common.ErrorInvalidToken, "rolled-back token must not work")
}
