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

type UserPermissionStore interface {
	ListUserPermissions(ctx context.Context, txn *database.Txn, q models.Query[models.UserPermissionFilter]) ([]models.UserPermission, int64, error)
	GetUserPermission(ctx context.Context, txn *database.Txn, userID, permissionID uuid.UUID) (*models.UserPermission, error)
	UserPermissionExists(ctx context.Context, txn *database.Txn, userID, permissionID uuid.UUID) (bool, error)
	CreateUserPermission(ctx context.Context, txn *database.Txn, userID, permissionID uuid.UUID) (*models.UserPermission, error)
	DeleteUserPermission(ctx context.Context, txn *database.Txn, userID, permissionID uuid.UUID) (*models.UserPermission, error)
	DeleteUserPermissionsByUser(ctx context.Context, txn *database.Txn, userID uuid.UUID) ([]models.UserPermission, error)
	DeleteUserPermissionsByPermission(ctx context.Context, txn *database.Txn, permissionID uuid.UUID) ([]models.UserPermission, error)
}

var userPermissionSortColumns = map[string]string{
	"user_id":       "user_id",
	"permission_id": "permission_id",
	"created_at":    "created_at",
}

type PostgresUserPermissionStore struct{}

func NewPostgresUserPermissionStore() *PostgresUserPermissionStore {
	return &PostgresUserPermissionStore{}
}

func (s *PostgresUserPermissionStore) ListUserPermissions(ctx context.Context, txn *database.Txn, q models.Query[models.UserPermissionFilter]) ([]models.UserPermission, int64, error) {
	query := `
		SELECT user_id, permission_id, created_at
		FROM user_permissions
	`
	countQuery := `SELECT count(*) FROM user_permissions`

	args := []interface{}{}
	where := ""
	if f := q.Filter; f != nil {
		if f.UserID != nil {
			args = append(args, *f.UserID)
			where = fmt.Sprintf(" WHERE user_id = $%d", len(args))
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

	orderBy := "user_id ASC, permission_id ASC"
	if sort := q.GetSort(); sort != "" {
		col, ok := userPermissionSortColumns[sort]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrInvalidSort, sort)
		}
		dir := "ASC"
		if q.GetOrder() == models.OrderDesc {
			dir = "DESC"
		}
		switch col {
		case "user_id":
			orderBy = "user_id " + dir + ", permission_id ASC"
		case "permission_id":
			orderBy = "permission_id " + dir + ", user_id ASC"
		default:
			orderBy = col + " " + dir + ", user_id ASC, permission_id ASC"
		}
	}
	query += " ORDER BY " + orderBy

	var total int64
	if err := txn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count user permissions: %w", err)
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.GetSize(), q.Offset())

	rows, err := txn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list user permissions: %w", err)
	}
	defer rows.Close()

	grants := []models.UserPermission{}
	for rows.Next() {
		var up models.UserPermission
		if err := rows.Scan(&up.UserID, &up.PermissionID, &up.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user permission: %w", err)
		}
		grants = append(grants, up)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return grants, total, nil
}

func (s *PostgresUserPermissionStore) GetUserPermission(ctx context.Context, txn *database.Txn, userID, permissionID uuid.UUID) (*models.UserPermission, error) {
	query := `
		SELECT user_id, permission_id, created_at
		FROM user_permissions
		WHERE user_id = $1 AND permission_id = $2
	`
	var up models.UserPermission
	err := txn.QueryRow(ctx, query, userID, permissionID).Scan(&up.UserID, &up.PermissionID, &up.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user permission %s/%s", ErrNotFound, userID, permissionID)
		}
		return nil, fmt.Errorf("failed to get user permission: %w", err)
	}
	return &up, nil
}

func (s *PostgresUserPermissionStore) UserPermissionExists(ctx context.Context, txn *database.Txn, userID, permissionID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_permissions
			WHERE user_id = $1 AND permission_id = $2
		)
	`
	var exists bool
	if err := txn.QueryRow(ctx, query, userID, permissionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user permission: %w", err)
	}
	return exists, nil
}

func (s *PostgresUserPermissionStore) CreateUserPermission(ctx context.Context, txn *database.Txn, userID, permissionID uuid.UUID) (*models.UserPermission, error) {
	query := `
		INSERT INTO user_permissions (user_id, permission_id)
		VALUES ($1, $2)
		RETURNING user_id, permission_id, created_at
	`
	var up models.UserPermission
	err := txn.QueryRow(ctx, query, userID, permissionID).Scan(&up.UserID, &up.PermissionID, &up.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user permission %s/%s", ErrDuplicate, userID, permissionID)
		}
		return nil, fmt.Errorf("failed to create user permission: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &up, nil
}

func (s *PostgresUserPermissionStore) DeleteUserPermission(ctx context.Context, txn *database.Txn, userID, permissionID uuid.UUID) (*models.UserPermission, error) {
	query := `
		DELETE FROM user_permissions
		WHERE user_id = $1 AND permission_id = $2
		RETURNING user_id, permission_id, created_at
	`
	var up models.UserPermission
	err := txn.QueryRow(ctx, query, userID, permissionID).Scan(&up.UserID, &up.PermissionID, &up.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user permission %s/%s", ErrNotFound, userID, permissionID)
		}
		return nil, fmt.Errorf("failed to delete user permission: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &up, nil
}

func (s *PostgresUserPermissionStore) DeleteUserPermissionsByUser(ctx context.Context, txn *database.Txn, userID uuid.UUID) ([]models.UserPermission, error) {
	query := `
		DELETE FROM user_permissions
		WHERE user_id = $1
		RETURNING user_id, permission_id, created_at
	`
	return s.deleteMany(ctx, txn, query, userID)
}

func (s *PostgresUserPermissionStore) DeleteUserPermissionsByPermission(ctx context.Context, txn *database.Txn, permissionID uuid.UUID) ([]models.UserPermission, error) {
	query := `
		DELETE FROM user_permissions
		WHERE permission_id = $1
		RETURNING user_id, permission_id, created_at
	`
	return s.deleteMany(ctx, txn, query, permissionID)
}

func (s *PostgresUserPermissionStore) deleteMany(ctx context.Context, txn *database.Txn, query string, arg interface{}) ([]models.UserPermission, error) {
	rows, err := txn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user permissions: %w", err)
	}
	defer rows.Close()

	deleted := []models.UserPermission{}
	for rows.Next() {
		var up models.UserPermission
		if err := rows.Scan(&up.UserID, &up.PermissionID, &up.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user permission: %w", err)
		}
		deleted = append(deleted, up)
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
