package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-api/internal/access"
	"library-api/internal/model"
	"library-api/pkg/apierror"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

const userColumns = `id, email, display_name, password_hash, role, library_id, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, errUserNotFound()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, errUserNotFound()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, display_name, password_hash, role, library_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		strings.TrimSpace(u.Email), u.DisplayName, u.PasswordHash, string(u.Role), u.LibraryID, u.CreatedAt, u.UpdatedAt).
		Scan(&u.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return model.User{}, errUserExists()
		case foreignKeyViolation:
			return model.User{}, errUnknownLibrary()
		}
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, displayName *string, passwordHash *string) (model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		 SET display_name = COALESCE($2, display_name),
		     password_hash = COALESCE($3, password_hash),
		     updated_at = $4
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, displayName, passwordHash, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, errUserNotFound()
	}
	if err != nil {
		return model.User{}, fmt.Errorf("update user profile: %w", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, libraryID *int64) ([]model.UserProfile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE $1::bigint IS NULL OR library_id = $1
		 ORDER BY id`, libraryID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.UserProfile, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u.Profile())
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &role, &u.LibraryID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}

	parsed, err := access.ParseRole(role)
	if err != nil {
		return model.User{}, fmt.Errorf("user %d: %w", u.ID, err)
	}
	u.Role = parsed

	return u, nil
}

func errUserNotFound() error {
	return apierror.Wrap(model.ErrUserNotFound, "NOT_FOUND", "user not found", http.StatusNotFound)
}

func errUserExists() error {
	return apierror.Wrap(model.ErrUserAlreadyExists, "ALREADY_EXISTS", "email already registered", http.StatusConflict)
}

func errUnknownLibrary() error {
	return apierror.BadRequest("library_id does not exist", "library_id")
}
