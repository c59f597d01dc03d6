// Package service implements the account core: registration,
// authentication and profile management on top of the user store, the
// password hasher and the token issuer.
package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"go-account-service/internal/domain"
	"go-account-service/internal/token"
	"go-account-service/pkg/utils"
)

const DefaultMinPasswordLen = 5

// checkEmail reuses the same validator gin binding is built on.
var checkEmail = validator.New()

// Profile is the only outward representation of a user. The password
// hash and the account flags never leave this package.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ProfilePatch carries optional profile changes; nil fields are left
// untouched.
type ProfilePatch struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type AccountService struct {
	users          domain.UserRepository
	tokens         *token.Issuer
	minPasswordLen int
	log            *zap.Logger
}

func NewAccountService(users domain.UserRepository, tokens *token.Issuer, minPasswordLen int, log *zap.Logger) *AccountService {
	if minPasswordLen <= 0 {
		minPasswordLen = DefaultMinPasswordLen
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{users: users, tokens: tokens, minPasswordLen: minPasswordLen, log: log}
}

// Register creates a new active user. The email is normalized to
// lowercase; duplicates surface as a ValidationError, relying on the
// store's unique index rather than a read-then-write check.
func (s *AccountService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        domain.NormalizeEmail(email),
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, &ValidationError{Field: "email", Reason: ReasonAlreadyExists}
		}
		s.log.Error("create user", zap.Error(err))
		return nil, err
	}
	return u, nil
}

// CreateSuperuser registers a user and promotes it to staff+superuser.
func (s *AccountService) CreateSuperuser(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.Register(ctx, email, password, "")
	if err != nil {
		return nil, err
	}
	u.IsStaff = true
	u.IsSuperuser = true
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// dummyHash absorbs a bcrypt comparison when the email is unknown, so
// the miss and wrong-password paths cost roughly the same.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Authenticate verifies credentials and issues a bearer token. Unknown
// email, inactive account and wrong password all return the same
// ErrAuthentication.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.Token, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Error("find user", zap.Error(err))
		}
		utils.CheckPassword(password, dummyHash)
		return nil, ErrAuthentication
	}
	if !u.IsActive || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, ErrAuthentication
	}

	t, err := s.tokens.Issue(ctx, u.ID)
	if err != nil {
		s.log.Error("issue token", zap.Error(err))
		return nil, ErrAuthentication
	}
	return t, nil
}

// GetProfile resolves a token to its owner's profile.
func (s *AccountService) GetProfile(ctx context.Context, tokenValue string) (*Profile, error) {
	u, err := s.resolve(ctx, tokenValue)
	if err != nil {
		return nil, err
	}
	return &Profile{Email: u.Email, Name: u.Name}, nil
}

// UpdateProfile applies a name and/or password change for the token's
// owner. A new password must satisfy the same length rule as
// registration and is re-hashed before storage.
func (s *AccountService) UpdateProfile(ctx context.Context, tokenValue string, patch ProfilePatch) (*Profile, error) {
	u, err := s.resolve(ctx, tokenValue)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Password != nil {
		if err := s.validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := utils.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrAuthentication
		}
		s.log.Error("update user", zap.Error(err))
		return nil, err
	}
	return &Profile{Email: u.Email, Name: u.Name}, nil
}

// Deactivate marks the user inactive and revokes every token bound to
// it. Existing sessions die immediately.
func (s *AccountService) Deactivate(ctx context.Context, userID string) error {
	if err := s.users.SetActive(ctx, userID, false); err != nil {
		return err
	}
	return s.tokens.RevokeAll(ctx, userID)
}

// ListUsers is the staff-facing listing used by the admin surface.
func (s *AccountService) ListUsers(ctx context.Context, offset, limit int, q string) ([]domain.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.users.List(ctx, offset, limit, q)
}

// Validator resolves raw token values for the transport layer.
func (s *AccountService) Validator() *token.Issuer { return s.tokens }

func (s *AccountService) resolve(ctx context.Context, tokenValue string) (*domain.User, error) {
	u, err := s.tokens.Validate(ctx, tokenValue)
	if err != nil {
		return nil, ErrAuthentication
	}
	return u, nil
}

func (s *AccountService) validateEmail(email string) error {
	if domain.NormalizeEmail(email) == "" {
		return &ValidationError{Field: "email", Reason: ReasonRequired}
	}
	if err := checkEmail.Var(email, "email"); err != nil {
		return &ValidationError{Field: "email", Reason: ReasonInvalid}
	}
	return nil
}

func (s *AccountService) validatePassword(password string) error {
	if len(password) < s.minPasswordLen {
		return &ValidationError{Field: "password", Reason: ReasonTooShort}
	}
	return nil
}
