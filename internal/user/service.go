package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/neonkeys-api/internal/apperror"
	"github.com/redmonkez12/neonkeys-api/internal/auth"
	"github.com/redmonkez12/neonkeys-api/internal/logging"
	"github.com/redmonkez12/neonkeys-api/internal/validation"
)

const invalidCredentialsMessage = "invalid email or password"

// Store is the persistence contract the service depends on. *Repository implements it.
type Store interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	EmailInUse(ctx context.Context, email string, exceptID uuid.UUID) (bool, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) (*User, error)
	ToggleStatus(ctx context.Context, id uuid.UUID) (*User, error)
}

// PasswordHasher hashes and verifies passwords. *auth.PasswordHasher implements it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

type RegisterInput struct {
	Username string  `json:"username" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Address  *string `json:"address,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateInput is a partial profile update; omitted fields keep their value.
type UpdateInput struct {
	Username *string `json:"username,omitempty" validate:"omitempty,min=1"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Address  *string `json:"address,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *User
	Token string
}

// Service implements user registration, login and account management.
type Service struct {
	store    Store
	hasher   PasswordHasher
	tokens   auth.TokenService
	tokenTTL time.Duration
	logger   *logging.Logger
}

func NewService(store Store, hasher PasswordHasher, tokens auth.TokenService, tokenTTL time.Duration, logger *logging.Logger) *Service {
	return &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Register creates an account and signs a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperror.Validation("username, email and password are required")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	exists, err := s.store.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, apperror.Internal(err, "failed to check existing user")
	}
	if exists {
		return nil, apperror.Conflict("username or email already exists")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperror.Internal(err, "failed to hash password")
	}

	u, err := s.store.Create(ctx, CreateParams{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      blankToNil(in.Address),
		Phone:        blankToNil(in.Phone),
	})
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, ErrDuplicate) {
			return nil, apperror.Conflict("username or email already exists")
		}
		return nil, apperror.Internal(err, "failed to create user")
	}

	token, err := s.tokens.CreateToken(u.ID, u.Email, s.tokenTTL)
	if err != nil {
		return nil, apperror.Internal(err, "failed to create token")
	}

	s.logger.Info("user registered", "user_id", u.ID.String())
	return &AuthResult{User: u, Token: token}, nil
}

// Login checks credentials. Unknown email and wrong password are reported identically.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperror.Validation("email and password are required")
	}

	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperror.InvalidCredentials(invalidCredentialsMessage)
		}
		return nil, apperror.Internal(err, "failed to load user")
	}

	ok, err := s.hasher.Verify(in.Password, u.PasswordHash)
	if err != nil {
		return nil, apperror.Internal(err, "failed to verify password")
	}
	if !ok {
		return nil, apperror.InvalidCredentials(invalidCredentialsMessage)
	}

	token, err := s.tokens.CreateToken(u.ID, u.Email, s.tokenTTL)
	if err != nil {
		return nil, apperror.Internal(err, "failed to create token")
	}

	return &AuthResult{User: u, Token: token}, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list users")
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to get user")
	}
	return u, nil
}

// Update merges the supplied fields into the stored profile.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*User, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to get user")
	}

	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if in.Email != nil {
		trimmed := strings.TrimSpace(*in.Email)
		in.Email = &trimmed
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != current.Email {
		inUse, err := s.store.EmailInUse(ctx, *in.Email, id)
		if err != nil {
			return nil, apperror.Internal(err, "failed to check email")
		}
		if inUse {
			return nil, apperror.Conflict("email is already in use")
		}
	}

	updated, err := s.store.Update(ctx, id, UpdateParams{
		Username: in.Username,
		Email:    in.Email,
		Address:  in.Address,
		Phone:    in.Phone,
	})
	if err != nil {
		return nil, translateStoreError(err, "failed to update user")
	}
	return updated, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, in ChangePasswordInput) error {
	if in.OldPassword == "" || in.NewPassword == "" {
		return apperror.Validation("old_password and new_password are required")
	}
	if err := validation.Struct(in); err != nil {
		return err
	}

	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return translateStoreError(err, "failed to get user")
	}

	ok, err := s.hasher.Verify(in.OldPassword, u.PasswordHash)
	if err != nil {
		return apperror.Internal(err, "failed to verify password")
	}
	if !ok {
		return apperror.InvalidCredentials("current password is incorrect")
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return apperror.Internal(err, "failed to hash password")
	}

	if err := s.store.UpdatePassword(ctx, id, hash); err != nil {
		return translateStoreError(err, "failed to update password")
	}

	s.logger.Info("password changed", "user_id", id.String())
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*Summary, error) {
	u, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to delete user")
	}
	return &Summary{ID: u.ID, Username: u.Username}, nil
}

func (s *Service) ToggleStatus(ctx context.Context, id uuid.UUID) (*Summary, error) {
	u, err := s.store.ToggleStatus(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "failed to toggle user status")
	}
	active := u.IsActive
	return &Summary{ID: u.ID, Username: u.Username, IsActive: &active}, nil
}

func translateStoreError(err error, msg string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperror.NotFound("user not found")
	case errors.Is(err, ErrDuplicate):
		return apperror.Conflict("username or email already exists")
	default:
		return apperror.Internal(err, msg)
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
