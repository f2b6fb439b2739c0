// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contact

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/famvault/internal/platform/database/schema"
	"github.com/taibuivan/famvault/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on vault.contact.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var table = schema.VaultContact

// ListByUser implements [Repository].
func (repository *PostgresRepository) ListByUser(context context.Context, userID string) ([]*Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s ASC`,
		schema.List(table.Columns()), table.Table,
		table.UserID,
		table.IsEmergencyService, table.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_contact_list_failed: %w", err)
	}

	contacts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Contact, error) {
		contact := &Contact{}
		err := row.Scan(
			&contact.ID, &contact.UserID, &contact.Name, &contact.Relationship,
			&contact.Phone, &contact.IsEmergencyService, &contact.CreatedAt,
		)
		return contact, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres_contact_scan_failed: %w", err)
	}

	return contacts, nil
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, contact *Contact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING %s`,
		table.Table,
		table.ID, table.UserID, table.Name, table.Relationship, table.Phone, table.IsEmergencyService, table.CreatedAt,
		table.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		contact.ID, contact.UserID, contact.Name, contact.Relationship, contact.Phone, contact.IsEmergencyService,
	).Scan(&contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres_contact_create_failed: %w", dberr.Wrap(err, "Contact"))
	}

	return nil
}

// Delete implements [Repository].
func (repository *PostgresRepository) Delete(context context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table.Table, table.ID, table.UserID)

	command, err := repository.pool.Exec(context, query, id, userID)
	if err != nil {
		return fmt.Errorf("postgres_contact_delete_failed: %w", err)
	}
	if command.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}
