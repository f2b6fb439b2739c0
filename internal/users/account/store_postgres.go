// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/famvault/internal/platform/database/schema"
)

// PostgresRepository implements [Repository] on the profile columns of users.account.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of the profile Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var account = schema.UserAccount

// profileColumns is the profile projection of users.account, in scan order.
var profileColumns = schema.List([]string{
	account.ID, account.Name, account.Email, account.Phone, account.DateOfBirth,
	account.Gender, account.BloodGroup, account.Address, account.Allergies,
	account.Conditions, account.ProfilePic, account.UpdatedAt,
})

func scanProfile(row pgx.Row) (*Profile, error) {
	profile := &Profile{}
	var dateOfBirth *time.Time

	err := row.Scan(
		&profile.ID, &profile.Name, &profile.Email, &profile.Phone, &dateOfBirth,
		&profile.Gender, &profile.BloodGroup, &profile.Address, &profile.Allergies,
		&profile.Conditions, &profile.ProfilePic, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if dateOfBirth != nil {
		profile.DateOfBirth = dateOfBirth.Format(time.DateOnly)
	}
	return profile, nil
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, profileColumns, account.Table, account.ID)

	profile, err := scanProfile(repository.pool.QueryRow(context, query, id))
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, fmt.Errorf("postgres_profile_find_failed: %w", err)
	}
	return profile, err
}

// Update implements [Repository].
func (repository *PostgresRepository) Update(context context.Context, id string, patch ProfilePatch) (*Profile, error) {
	args := []any{id}
	sets := []string{}

	set := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	set(account.Name, patch.Name)
	set(account.Phone, patch.Phone)
	set(account.Gender, patch.Gender)
	set(account.BloodGroup, patch.BloodGroup)
	set(account.Address, patch.Address)
	set(account.Allergies, patch.Allergies)
	set(account.Conditions, patch.Conditions)
	set(account.ProfilePic, patch.ProfilePic)

	if patch.DateOfBirth != nil {
		var value any
		if *patch.DateOfBirth != "" {
			parsed, err := time.Parse(time.DateOnly, *patch.DateOfBirth)
			if err != nil {
				return nil, fmt.Errorf("postgres_profile_bad_date: %w", err)
			}
			value = parsed
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", account.DateOfBirth, len(args)))
	}
	sets = append(sets, account.UpdatedAt+" = NOW()")

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1 RETURNING %s`,
		account.Table, strings.Join(sets, ", "), account.ID, profileColumns,
	)

	profile, err := scanProfile(repository.pool.QueryRow(context, query, args...))
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, fmt.Errorf("postgres_profile_update_failed: %w", err)
	}
	return profile, err
}
