// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package folder

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/famvault/internal/platform/database/schema"
	"github.com/taibuivan/famvault/internal/platform/dberr"
	"github.com/taibuivan/famvault/internal/vault"
)

// PostgresRepository implements [Repository] on vault.folder.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var table = schema.VaultFolder

func scanFolder(row pgx.Row) (*Folder, error) {
	folder := &Folder{}
	err := row.Scan(&folder.ID, &folder.UserID, &folder.Name, &folder.Category, &folder.CreatedAt)
	return folder, err
}

// ListByUser implements [Repository].
func (repository *PostgresRepository) ListByUser(context context.Context, userID string, category *vault.Category) ([]*Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, schema.List(table.Columns()), table.Table, table.UserID)
	args := []any{userID}

	if category != nil {
		args = append(args, string(*category))
		query += fmt.Sprintf(" AND %s = $%d", table.Category, len(args))
	}
	query += fmt.Sprintf(" ORDER BY %s DESC", table.CreatedAt)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres_folder_list_failed: %w", err)
	}

	folders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Folder, error) {
		return scanFolder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("postgres_folder_scan_failed: %w", err)
	}
	return folders, nil
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, userID, id string) (*Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		schema.List(table.Columns()), table.Table, table.ID, table.UserID,
	)

	folder, err := scanFolder(repository.pool.QueryRow(context, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("postgres_folder_find_failed: %w", err)
	}
	return folder, nil
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, folder *Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING %s`,
		table.Table,
		table.ID, table.UserID, table.Name, table.Category, table.CreatedAt,
		table.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		folder.ID, folder.UserID, folder.Name, string(folder.Category),
	).Scan(&folder.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres_folder_create_failed: %w", dberr.Wrap(err, "Folder"))
	}
	return nil
}

// Delete implements [Repository]. The foreign key detaches the documents.
func (repository *PostgresRepository) Delete(context context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table.Table, table.ID, table.UserID)

	command, err := repository.pool.Exec(context, query, id, userID)
	if err != nil {
		return fmt.Errorf("postgres_folder_delete_failed: %w", err)
	}
	if command.RowsAffected() == 0 {
		return ErrFolderNotFound
	}
	return nil
}
