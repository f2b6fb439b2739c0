// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/famvault/internal/platform/database/schema"
	"github.com/taibuivan/famvault/internal/platform/dberr"
	"github.com/taibuivan/famvault/internal/vault"
)

// PostgresRepository implements [Repository] on vault.document.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	table   = schema.VaultDocument
	columns = schema.List(table.Columns())
)

func scanDocument(row pgx.Row) (*Document, error) {
	document := &Document{}
	err := row.Scan(
		&document.ID, &document.UserID, &document.Title, &document.Category, &document.FolderID,
		&document.StorageKey, &document.OriginalName, &document.FileType, &document.Size,
		&document.HasReminder, &document.ReminderDate, &document.ReminderNote,
		&document.CreatedAt, &document.LastAccessed,
	)
	return document, err
}

func collectDocuments(rows pgx.Rows) ([]*Document, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Document, error) {
		return scanDocument(row)
	})
}

/*
List builds the WHERE clause from filter and runs the page and count queries.
*/
func (repository *PostgresRepository) List(context context.Context, userID string, filter Filter, limit, offset int) ([]*Document, int, error) {
	conditions := []string{fmt.Sprintf("%s = $1", table.UserID)}
	args := []any{userID}

	if filter.Category != nil {
		args = append(args, string(*filter.Category))
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.Category, len(args)))
	}
	if filter.FolderID != nil {
		args = append(args, *filter.FolderID)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", table.FolderID, len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, table.Table, where)
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_document_count_failed: %w", err)
	}

	pageArgs := append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s DESC LIMIT $%d OFFSET $%d`,
		columns, table.Table, where, table.CreatedAt, len(args)+1, len(args)+2,
	)

	rows, err := repository.pool.Query(context, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_document_list_failed: %w", err)
	}

	documents, err := collectDocuments(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_document_scan_failed: %w", err)
	}
	return documents, total, nil
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, userID, id string) (*Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`, columns, table.Table, table.ID, table.UserID)

	document, err := scanDocument(repository.pool.QueryRow(context, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("postgres_document_find_failed: %w", err)
	}
	return document, nil
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, document *Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING %s, %s`,
		table.Table,
		table.ID, table.UserID, table.Title, table.Category, table.FolderID, table.StorageKey,
		table.OriginalName, table.FileType, table.Size, table.CreatedAt, table.LastAccessed,
		table.CreatedAt, table.LastAccessed,
	)

	err := repository.pool.QueryRow(context, query,
		document.ID, document.UserID, document.Title, string(document.Category), document.FolderID,
		document.StorageKey, document.OriginalName, document.FileType, document.Size,
	).Scan(&document.CreatedAt, &document.LastAccessed)
	if err != nil {
		return fmt.Errorf("postgres_document_create_failed: %w", dberr.Wrap(err, "Document"))
	}
	return nil
}

// Delete implements [Repository].
func (repository *PostgresRepository) Delete(context context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table.Table, table.ID, table.UserID)

	command, err := repository.pool.Exec(context, query, id, userID)
	if err != nil {
		return fmt.Errorf("postgres_document_delete_failed: %w", err)
	}
	if command.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Touch implements [Repository].
func (repository *PostgresRepository) Touch(context context.Context, userID, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3 WHERE %s = $1 AND %s = $2`,
		table.Table, table.LastAccessed, table.ID, table.UserID,
	)

	if _, err := repository.pool.Exec(context, query, id, userID, at); err != nil {
		return fmt.Errorf("postgres_document_touch_failed: %w", err)
	}
	return nil
}

// SetReminder implements [Repository]. A disabled reminder nulls the date and note.
func (repository *PostgresRepository) SetReminder(context context.Context, userID, id string, reminder Reminder) (*Document, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $3, %s = $4, %s = $5
		WHERE %s = $1 AND %s = $2
		RETURNING %s`,
		table.Table, table.HasReminder, table.ReminderDate, table.ReminderNote,
		table.ID, table.UserID,
		columns,
	)

	date, note := reminder.Date, reminder.Note
	if !reminder.Enabled {
		date, note = nil, ""
	}

	document, err := scanDocument(repository.pool.QueryRow(context, query, id, userID, reminder.Enabled, date, note))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("postgres_document_set_reminder_failed: %w", err)
	}
	return document, nil
}

// ListReminders implements [Repository].
func (repository *PostgresRepository) ListReminders(context context.Context, userID string, from time.Time, limit int) ([]*Document, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1 AND %s AND %s >= $2
		ORDER BY %s ASC
		LIMIT $3`,
		columns, table.Table,
		table.UserID, table.HasReminder, table.ReminderDate,
		table.ReminderDate,
	)

	rows, err := repository.pool.Query(context, query, userID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_document_reminders_failed: %w", err)
	}

	documents, err := collectDocuments(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres_document_scan_failed: %w", err)
	}
	return documents, nil
}

// ListRecent implements [Repository].
func (repository *PostgresRepository) ListRecent(context context.Context, userID string, limit int) ([]*Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT $2`,
		columns, table.Table, table.UserID, table.LastAccessed,
	)

	rows, err := repository.pool.Query(context, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_document_recent_failed: %w", err)
	}

	documents, err := collectDocuments(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres_document_scan_failed: %w", err)
	}
	return documents, nil
}

// Count implements [Repository].
func (repository *PostgresRepository) Count(context context.Context, userID string) (Counts, error) {
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE %s = $2),
			COUNT(*) FILTER (WHERE %s = $3)
		FROM %s WHERE %s = $1`,
		table.Category, table.Category, table.Table, table.UserID,
	)

	var counts Counts
	err := repository.pool.QueryRow(context, query,
		userID, string(vault.CategoryDocument), string(vault.CategoryMedical),
	).Scan(&counts.Documents, &counts.MedicalRecords)
	if err != nil {
		return Counts{}, fmt.Errorf("postgres_document_count_by_category_failed: %w", err)
	}
	return counts, nil
}
