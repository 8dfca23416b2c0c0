package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"user-directory-api/internal/domain/apperr"
	"user-directory-api/internal/domain/user"
	"user-directory-api/internal/infrastructure/db/postgres"
)

type Repository struct {
	db postgres.DB
}

func NewRepository(db postgres.DB) user.Repository {
	return &Repository{db: db}
}

// scanUser reads the user columns in query order, then any extra columns into extra.
func scanUser(row pgx.Row, extra ...any) (*User, error) {
	u := new(User)
	dest := append([]any{
		&u.UUID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.ImagePath,

		&u.CreatedAt,
		&u.UpdatedAt,
		&u.DeletedAt,
	}, extra...)
	err := row.Scan(dest...)
	return u, err
}

func (r *Repository) FetchUsers(ctx context.Context) (user.Users, error) {
	rows, err := r.db.Query(ctx, SelectUsers)
	if err != nil {
		return nil, &apperr.StorageError{Op: "select users", Err: err}
	}
	defer rows.Close()

	us := Users{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, &apperr.StorageError{Op: "scan user", Err: err}
		}
		us = append(us, u)
	}
	if err = rows.Err(); err != nil {
		return nil, &apperr.StorageError{Op: "iterate users", Err: err}
	}

	return fromDBModels(us), nil
}

func (r *Repository) FetchUserByID(ctx context.Context, uuid user.UUID) (*user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, SelectUserByID, uuid))
	if err != nil {
		return nil, notFoundOr(err, uuid, "select")
	}

	return fromDBModel(u), nil
}

func (r *Repository) CreateUser(ctx context.Context, req user.User) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := scanUser(r.db.QueryRow(
		ctx,
		InsertUser,
		req.Name, req.Email, req.Phone, req.ImagePath,
	))
	if err != nil {
		if postgres.IsPgCheckViolation(err) {
			return nil, checkViolation(err)
		}
		return nil, &apperr.StorageError{Op: "insert user", Err: err}
	}

	return fromDBModel(u), nil
}

func (r *Repository) UpdateUser(ctx context.Context, uuid user.UUID, p user.Patch) (*user.User, *string, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	var prevImagePath *string
	u, err := scanUser(r.db.QueryRow(ctx, UpdateUserByUUID,
		p.Name, p.Email, p.Phone, p.ImagePath, p.ClearImage, uuid,
	), &prevImagePath)
	if err != nil {
		if postgres.IsPgCheckViolation(err) {
			return nil, nil, checkViolation(err)
		}
		return nil, nil, notFoundOr(err, uuid, "update")
	}

	return fromDBModel(u), prevImagePath, nil
}

func (r *Repository) DeleteUser(ctx context.Context, uuid user.UUID) (*user.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, SoftDeleteUserByUUID, uuid))
	if err != nil {
		return nil, notFoundOr(err, uuid, "delete")
	}

	return fromDBModel(u), nil
}

func notFoundOr(err error, uuid user.UUID, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("user %s: %w", uuid, apperr.ErrNotFound)
	}
	return &apperr.StorageError{Op: op + " user " + uuid.String(), Err: err}
}

// checkViolation turns a users_<field>_not_blank violation into a field error.
func checkViolation(err error) error {
	field := strings.TrimSuffix(strings.TrimPrefix(postgres.ConstraintName(err), "users_"), "_not_blank")
	if field == "" {
		field = "user"
	}
	return apperr.Invalid(field, field+" must not be empty")
}
