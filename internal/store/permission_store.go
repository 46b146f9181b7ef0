package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"roster/internal/database"
	"roster/internal/models"
)

type PermissionStore interface {
	ListPermissions(ctx context.Context, txn *database.Txn, q models.Query[models.PermissionFilter]) ([]models.Permission, int64, error)
	GetPermission(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.Permission, error)
	CreatePermission(ctx context.Context, txn *database.Txn, permission *models.Permission) (*models.Permission, error)
	UpdatePermission(ctx context.Context, txn *database.Txn, permission *models.Permission) (*models.Permission, error)
	DeletePermission(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.Permission, error)
	DeletePermissions(ctx context.Context, txn *database.Txn, ids []uuid.UUID) ([]models.Permission, error)
}

var permissionSortColumns = map[string]string{
	"id":         "id",
	"name":       "name",
	"created_at": "created_at",
}

type PostgresPermissionStore struct{}

func NewPostgresPermissionStore() *PostgresPermissionStore {
	return &PostgresPermissionStore{}
}

func (s *PostgresPermissionStore) ListPermissions(ctx context.Context, txn *database.Txn, q models.Query[models.PermissionFilter]) ([]models.Permission, int64, error) {
	query := `
		SELECT id, name, description, created_at
		FROM permissions
	`
	countQuery := `SELECT count(*) FROM permissions`

	args := []interface{}{}
	if f := q.Filter; f != nil && f.Name != nil {
		query += ` WHERE name = $1`
		countQuery += ` WHERE name = $1`
		args = append(args, *f.Name)
	}

	orderBy := "id ASC"
	if sort := q.GetSort(); sort != "" {
		col, ok := permissionSortColumns[sort]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrInvalidSort, sort)
		}
		dir := "ASC"
		if q.GetOrder() == models.OrderDesc {
			dir = "DESC"
		}
		orderBy = col + " " + dir
		if col != "id" {
			orderBy += ", id ASC"
		}
	}
	query += " ORDER BY " + orderBy

	var total int64
	if err := txn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count permissions: %w", err)
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.GetSize(), q.Offset())

	rows, err := txn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	permissions := []models.Permission{}
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan permission: %w", err)
		}
		permissions = append(permissions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return permissions, total, nil
}

func (s *PostgresPermissionStore) GetPermission(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.Permission, error) {
	query := `
		SELECT id, name, description, created_at
		FROM permissions
		WHERE id = $1
	`
	var p models.Permission
	err := txn.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: permission %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return &p, nil
}

func (s *PostgresPermissionStore) CreatePermission(ctx context.Context, txn *database.Txn, permission *models.Permission) (*models.Permission, error) {
	query := `
		INSERT INTO permissions (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, created_at
	`
	var p models.Permission
	err := txn.QueryRow(ctx, query, permission.ID, permission.Name, permission.Description).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: permission %q", ErrDuplicate, permission.Name)
		}
		return nil, fmt.Errorf("failed to create permission: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresPermissionStore) UpdatePermission(ctx context.Context, txn *database.Txn, permission *models.Permission) (*models.Permission, error) {
	query := `
		UPDATE permissions
		SET name = $1, description = $2
		WHERE id = $3
		RETURNING id, name, description, created_at
	`
	var p models.Permission
	err := txn.QueryRow(ctx, query, permission.Name, permission.Description, permission.ID).
		Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: permission %s", ErrNotFound, permission.ID)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: permission %q", ErrDuplicate, permission.Name)
		}
		return nil, fmt.Errorf("failed to update permission: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresPermissionStore) DeletePermission(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.Permission, error) {
	query := `
		DELETE FROM permissions
		WHERE id = $1
		RETURNING id, name, description, created_at
	`
	var p models.Permission
	err := txn.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: permission %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to delete permission: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresPermissionStore) DeletePermissions(ctx context.Context, txn *database.Txn, ids []uuid.UUID) ([]models.Permission, error) {
	query := `
		DELETE FROM permissions
		WHERE id = ANY($1)
		RETURNING id, name, description, created_at
	`
	rows, err := txn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete permissions: %w", err)
	}
	defer rows.Close()

	deleted := []models.Permission{}
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		deleted = append(deleted, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	rows.Close()

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return deleted, nil
}
