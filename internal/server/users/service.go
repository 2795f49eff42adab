package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avoronov/todovault/internal/common"
	"github.com/avoronov/todovault/internal/logging"
	"github.com/avoronov/todovault/internal/server/auth"
	"github.com/avoronov/todovault/internal/server/config"
)

const minPasswordLength = 6

// resetTokenBytes is the entropy of a plaintext reset token; the hex form
// is twice as long.
const resetTokenBytes = 32

type Service struct {
	repo               Repository
	logger             logging.Logger
	bcryptCost         int
	resetTokenValidity time.Duration
}

func NewService(repo Repository, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:               repo,
		logger:             logger.With("module", "users"),
		bcryptCost:         cfg.BcryptCost,
		resetTokenValidity: cfg.ResetTokenValidityDuration,
	}
}

// Register creates a new user. The email is stored lowercase so uniqueness
// is case-insensitive.
func (s *Service) Register(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: please provide name, email, and password", common.ErrorValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", common.ErrorValidation, minPasswordLength)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := s.repo.Create(ctx, &User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("%w: user already exists with this email", common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the email/password pair. A missing user and a wrong
// password are indistinguishable to the caller. The last-login stamp is
// best-effort: a failure to persist it is logged and never blocks login.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, common.ErrorInvalidCredentials
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn(ctx, "failed to update last login", "user_id", user.ID, "error", err.Error())
	} else {
		user.LastLogin = &now
	}

	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// IssueResetToken generates a password-reset token for the given email and
// persists only its one-way hash plus expiry. The returned plaintext token
// is handed to the mail delivery step and never stored.
func (s *Service) IssueResetToken(ctx context.Context, email string) (string, *User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorNotFound
		}
		return "", nil, common.ErrorInternal
	}

	token, err := common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return "", nil, common.ErrorInternal
	}

	expires := time.Now().Add(s.resetTokenValidity)
	if err := s.repo.SetResetToken(ctx, user.ID, auth.HashResetToken(token), expires); err != nil {
		return "", nil, common.ErrorInternal
	}

	return token, user, nil
}

// ConsumeResetToken exchanges a valid plaintext reset token for a password
// change. Consuming clears the stored hash, so a token can be used at most
// once; unknown and expired tokens are rejected identically.
func (s *Service) ConsumeResetToken(ctx context.Context, token, newPassword string) (*User, error) {
	if newPassword == "" {
		return nil, fmt.Errorf("%w: please provide a new password", common.ErrorValidation)
	}
	if len(newPassword) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", common.ErrorValidation, minPasswordLength)
	}

	user, err := s.repo.GetByResetTokenHash(ctx, auth.HashResetToken(token), time.Now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: token invalid or expired", common.ErrorInvalidToken)
		}
		return nil, common.ErrorInternal
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.repo.ResetPassword(ctx, user.ID, hash); err != nil {
		return nil, common.ErrorInternal
	}

	user.PasswordHash = hash
	user.ResetTokenHash = nil
	user.ResetTokenExpires = nil
	return user, nil
}

// ClearResetToken is the compensation step for a failed reset-email
// delivery: it removes the pending token so no valid-but-undelivered token
// stays active.
func (s *Service) ClearResetToken(ctx context.Context, userID string) error {
	if err := s.repo.ClearResetToken(ctx, userID); err != nil {
		s.logger.Error(ctx, "failed to clear reset token", "user_id", userID, "error", err.Error())
		return common.ErrorInternal
	}
	return nil
}
