package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/neonkeys-api/internal/database"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("username or email already exists")
)

// Repository handles user data persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, params CreateParams) (*User, error) {
	dbUser := &database.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Address:      params.Address,
		Phone:        params.Phone,
		IsActive:     true,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// ExistsByEmailOrUsername reports whether any user already holds email or username.
func (r *Repository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("email = ?", email).
		WhereOr("username = ?", username).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check existing user: %w", err)
	}
	return exists, nil
}

// EmailInUse reports whether a user other than exceptID holds email.
func (r *Repository) EmailInUse(ctx context.Context, email string, exceptID uuid.UUID) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("email = ?", email).
		Where("id <> ?", exceptID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// List returns every user, oldest first.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	var rows []database.User
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]User, 0, len(rows))
	for i := range rows {
		users = append(users, *mapDBUserToModel(&rows[i]))
	}
	return users, nil
}

// Update applies the non-nil fields of params and returns the updated row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	dbUser := new(database.User)
	q := r.db.NewUpdate().
		Model(dbUser).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*")

	if params.Username != nil {
		q = q.Set("username = ?", *params.Username)
	}
	if params.Email != nil {
		q = q.Set("email = ?", *params.Email)
	}
	if params.Address != nil {
		q = q.Set("address = ?", *params.Address)
	}
	if params.Phone != nil {
		q = q.Set("phone = ?", *params.Phone)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireRow(result)
}

// Delete removes the user and returns the deleted row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	res, err := r.db.NewDelete().
		Model(dbUser).
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	return mapDBUserToModel(dbUser), nil
}

// ToggleStatus flips is_active in a single statement and returns the updated row.
func (r *Repository) ToggleStatus(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	res, err := r.db.NewUpdate().
		Model(dbUser).
		Set("is_active = NOT is_active").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to toggle user status: %w", err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}

	return mapDBUserToModel(dbUser), nil
}

func requireRow(res sql.Result) error {
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Username:     dbu.Username,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		Address:      dbu.Address,
		Phone:        dbu.Phone,
		IsActive:     dbu.IsActive,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
