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

type GroupPermissionStore interface {
	ListGroupPermissions(ctx context.Context, txn *database.Txn, q models.Query[models.GroupPermissionFilter]) ([]models.GroupPermission, int64, error)
	GetGroupPermission(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (*models.GroupPermission, error)
	GroupPermissionExists(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (bool, error)
	CreateGroupPermission(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (*models.GroupPermission, error)
	DeleteGroupPermission(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (*models.GroupPermission, error)
	DeleteGroupPermissionsByGroup(ctx context.Context, txn *database.Txn, groupID uuid.UUID) ([]models.GroupPermission, error)
	DeleteGroupPermissionsByPermission(ctx context.Context, txn *database.Txn, permissionID uuid.UUID) ([]models.GroupPermission, error)
}

var groupPermissionSortColumns = map[string]string{
	"group_id":      "group_id",
	"permission_id": "permission_id",
	"created_at":    "created_at",
}

type PostgresGroupPermissionStore struct{}

func NewPostgresGroupPermissionStore() *PostgresGroupPermissionStore {
	return &PostgresGroupPermissionStore{}
}

func (s *PostgresGroupPermissionStore) ListGroupPermissions(ctx context.Context, txn *database.Txn, q models.Query[models.GroupPermissionFilter]) ([]models.GroupPermission, int64, error) {
	query := `
		SELECT group_id, permission_id, created_at
		FROM group_permissions
	`
	countQuery := `SELECT count(*) FROM group_permissions`

	args := []interface{}{}
	where := ""
	if f := q.Filter; f != nil {
		if f.GroupID != nil {
			args = append(args, *f.GroupID)
			where = fmt.Sprintf(" WHERE group_id = $%d", len(args))
		}
		if f.PermissionID != nil {
			args = append(args, *f.PermissionID)
			clause := fmt.Sprintf("permission_id = $%d", len(args))
			if where == "" {
				where = " WHERE " + clause
			} else {
				where += " AND " + clause
			}
		}
	}
	query += where
	countQuery += where

	orderBy := "group_id ASC, permission_id ASC"
	if sort := q.GetSort(); sort != "" {
		col, ok := groupPermissionSortColumns[sort]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrInvalidSort, sort)
		}
		dir := "ASC"
		if q.GetOrder() == models.OrderDesc {
			dir = "DESC"
		}
		switch col {
		case "group_id":
			orderBy = "group_id " + dir + ", permission_id ASC"
		case "permission_id":
			orderBy = "permission_id " + dir + ", group_id ASC"
		default:
			orderBy = col + " " + dir + ", group_id ASC, permission_id ASC"
		}
	}
	query += " ORDER BY " + orderBy

	var total int64
	if err := txn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count group permissions: %w", err)
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.GetSize(), q.Offset())

	rows, err := txn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list group permissions: %w", err)
	}
	defer rows.Close()

	grants := []models.GroupPermission{}
	for rows.Next() {
		var gp models.GroupPermission
		if err := rows.Scan(&gp.GroupID, &gp.PermissionID, &gp.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group permission: %w", err)
		}
		grants = append(grants, gp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return grants, total, nil
}

func (s *PostgresGroupPermissionStore) GetGroupPermission(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (*models.GroupPermission, error) {
	query := `
		SELECT group_id, permission_id, created_at
		FROM group_permissions
		WHERE group_id = $1 AND permission_id = $2
	`
	var gp models.GroupPermission
	err := txn.QueryRow(ctx, query, groupID, permissionID).Scan(&gp.GroupID, &gp.PermissionID, &gp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: group permission %s/%s", ErrNotFound, groupID, permissionID)
		}
		return nil, fmt.Errorf("failed to get group permission: %w", err)
	}
	return &gp, nil
}

func (s *PostgresGroupPermissionStore) GroupPermissionExists(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM group_permissions
			WHERE group_id = $1 AND permission_id = $2
		)
	`
	var exists bool
	if err := txn.QueryRow(ctx, query, groupID, permissionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check group permission: %w", err)
	}
	return exists, nil
}

func (s *PostgresGroupPermissionStore) CreateGroupPermission(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (*models.GroupPermission, error) {
	query := `
		INSERT INTO group_permissions (group_id, permission_id)
		VALUES ($1, $2)
		RETURNING group_id, permission_id, created_at
	`
	var gp models.GroupPermission
	err := txn.QueryRow(ctx, query, groupID, permissionID).Scan(&gp.GroupID, &gp.PermissionID, &gp.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: group permission %s/%s", ErrDuplicate, groupID, permissionID)
		}
		return nil, fmt.Errorf("failed to create group permission: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &gp, nil
}

func (s *PostgresGroupPermissionStore) DeleteGroupPermission(ctx context.Context, txn *database.Txn, groupID, permissionID uuid.UUID) (*models.GroupPermission, error) {
	query := `
		DELETE FROM group_permissions
		WHERE group_id = $1 AND permission_id = $2
		RETURNING group_id, permission_id, created_at
	`
	var gp models.GroupPermission
	err := txn.QueryRow(ctx, query, groupID, permissionID).Scan(&gp.GroupID, &gp.PermissionID, &gp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: group permission %s/%s", ErrNotFound, groupID, permissionID)
		}
		return nil, fmt.Errorf("failed to delete group permission: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &gp, nil
}

func (s *PostgresGroupPermissionStore) DeleteGroupPermissionsByGroup(ctx context.Context, txn *database.Txn, groupID uuid.UUID) ([]models.GroupPermission, error) {
	query := `
		DELETE FROM group_permissions
		WHERE group_id = $1
		RETURNING group_id, permission_id, created_at
	`
	return s.deleteMany(ctx, txn, query, groupID)
}

func (s *PostgresGroupPermissionStore) DeleteGroupPermissionsByPermission(ctx context.Context, txn *database.Txn, permissionID uuid.UUID) ([]models.GroupPermission, error) {
	query := `
		DELETE FROM group_permissions
		WHERE permission_id = $1
		RETURNING group_id, permission_id, created_at
	`
	return s.deleteMany(ctx, txn, query, permissionID)
}

func (s *PostgresGroupPermissionStore) deleteMany(ctx context.Context, txn *database.Txn, query string, arg interface{}) ([]models.GroupPermission, error) {
	rows, err := txn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to delete group permissions: %w", err)
	}
	defer rows.Close()

	deleted := []models.GroupPermission{}
	for rows.Next() {
		var gp models.GroupPermission
		if err := rows.Scan(&gp.GroupID, &gp.PermissionID, &gp.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group permission: %w", err)
		}
		deleted = append(deleted, gp)
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
