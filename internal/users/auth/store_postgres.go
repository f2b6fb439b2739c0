// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/platform/database/schema"
	"github.com/taibuivan/famvault/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] on users.account.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var account = schema.UserAccount

// userColumns is the credential projection of users.account, in scan order.
var userColumns = schema.List([]string{
	account.ID, account.Name, account.Email, account.Password, account.IsVerified,
	account.OTPHash, account.OTPExpiresAt, account.CreatedAt, account.UpdatedAt,
})

// scanUser hydrates a [User] from a row selected with userColumns.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	var otpHash *string

	err := row.Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.IsVerified,
		&otpHash, &user.OTPExpiresAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if otpHash != nil {
		user.OTPHash = *otpHash
	}
	return user, nil
}

// FindByEmail implements [UserRepository].
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, userColumns, account.Table, account.Email)

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("postgres_user_find_by_email_failed: %w", err)
	}
	return user, err
}

// FindByID implements [UserRepository].
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, userColumns, account.Table, account.ID)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("postgres_user_find_by_id_failed: %w", err)
	}
	return user, err
}

/*
Create persists a new user record into the users.account table.

Returns:
  - error: apperr.Conflict on a duplicate email, otherwise storage failures
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s, %s`,
		account.Table,
		account.ID, account.Name, account.Email, account.Password, account.IsVerified,
		account.OTPHash, account.OTPExpiresAt, account.CreatedAt, account.UpdatedAt,
		account.CreatedAt, account.UpdatedAt,
	)

	var otpHash *string
	if user.OTPHash != "" {
		otpHash = &user.OTPHash
	}

	err := repository.pool.QueryRow(context, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.IsVerified, otpHash, user.OTPExpiresAt,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			conflict := apperr.Conflict("Email already exists")
			conflict.Cause = err
			return conflict
		}
		return fmt.Errorf("postgres_user_create_failed: %w", err)
	}

	return nil
}

/*
UpdateByID applies the non-nil fields of patch in a single statement.

Description: updatedat is always bumped. Clearing the OTP nulls both columns
together so the pair never goes out of step.
*/
func (repository *PostgresUserRepository) UpdateByID(context context.Context, id string, patch UserPatch) (*User, error) {
	args := []any{id}
	sets := []string{}

	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.PasswordHash != nil {
		set(account.Password, *patch.PasswordHash)
	}
	if patch.IsVerified != nil {
		set(account.IsVerified, *patch.IsVerified)
	}
	if patch.ClearOTP {
		sets = append(sets, account.OTPHash+" = NULL", account.OTPExpiresAt+" = NULL")
	} else {
		if patch.OTPHash != nil {
			set(account.OTPHash, *patch.OTPHash)
		}
		if patch.OTPExpiresAt != nil {
			set(account.OTPExpiresAt, patch.OTPExpiresAt.UTC().Truncate(time.Microsecond))
		}
	}
	sets = append(sets, account.UpdatedAt+" = NOW()")

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1 RETURNING %s`,
		account.Table, strings.Join(sets, ", "), account.ID, userColumns,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, args...))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("postgres_user_update_failed: %w", err)
	}
	return user, err
}

// DeleteByEmail implements [UserRepository].
func (repository *PostgresUserRepository) DeleteByEmail(context context.Context, email string) error {
	return repository.delete(context, account.Email, email)
}

// DeleteByID implements [UserRepository].
func (repository *PostgresUserRepository) DeleteByID(context context.Context, id string) error {
	return repository.delete(context, account.ID, id)
}

func (repository *PostgresUserRepository) delete(context context.Context, column, value string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, account.Table, column)

	command, err := repository.pool.Exec(context, query, value)
	if err != nil {
		return fmt.Errorf("postgres_user_delete_failed: %w", err)
	}

	if command.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
