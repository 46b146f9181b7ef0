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

type UserGroupStore interface {
	ListUserGroups(ctx context.Context, txn *database.Txn, q models.Query[models.UserGroupFilter]) ([]models.UserGroup, int64, error)
	GetUserGroup(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.UserGroup, error)
	CreateUserGroup(ctx context.Context, txn *database.Txn, group *models.UserGroup) (*models.UserGroup, error)
	UpdateUserGroup(ctx context.Context, txn *database.Txn, group *models.UserGroup) (*models.UserGroup, error)
	DeleteUserGroup(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.UserGroup, error)
	DeleteUserGroups(ctx context.Context, txn *database.Txn, ids []uuid.UUID) ([]models.UserGroup, error)
}

var userGroupSortColumns = map[string]string{
	"id":         "id",
	"group_name": "group_name",
	"created_at": "created_at",
}

type PostgresUserGroupStore struct{}

func NewPostgresUserGroupStore() *PostgresUserGroupStore {
	return &PostgresUserGroupStore{}
}

func (s *PostgresUserGroupStore) ListUserGroups(ctx context.Context, txn *database.Txn, q models.Query[models.UserGroupFilter]) ([]models.UserGroup, int64, error) {
	query := `
		SELECT id, group_name, created_at
		FROM user_groups
	`
	countQuery := `SELECT count(*) FROM user_groups`

	args := []interface{}{}
	if f := q.Filter; f != nil && f.GroupName != nil {
		query += ` WHERE group_name = $1`
		countQuery += ` WHERE group_name = $1`
		args = append(args, *f.GroupName)
	}

	orderBy := "id ASC"
	if sort := q.GetSort(); sort != "" {
		col, ok := userGroupSortColumns[sort]
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
		return nil, 0, fmt.Errorf("failed to count user groups: %w", err)
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.GetSize(), q.Offset())

	rows, err := txn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list user groups: %w", err)
	}
	defer rows.Close()

	groups := []models.UserGroup{}
	for rows.Next() {
		var g models.UserGroup
		if err := rows.Scan(&g.ID, &g.GroupName, &g.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return groups, total, nil
}

func (s *PostgresUserGroupStore) GetUserGroup(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.UserGroup, error) {
	query := `
		SELECT id, group_name, created_at
		FROM user_groups
		WHERE id = $1
	`
	var g models.UserGroup
	err := txn.QueryRow(ctx, query, id).Scan(&g.ID, &g.GroupName, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user group %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user group: %w", err)
	}
	return &g, nil
}

func (s *PostgresUserGroupStore) CreateUserGroup(ctx context.Context, txn *database.Txn, group *models.UserGroup) (*models.UserGroup, error) {
	query := `
		INSERT INTO user_groups (id, group_name)
		VALUES ($1, $2)
		RETURNING id, group_name, created_at
	`
	var g models.UserGroup
	err := txn.QueryRow(ctx, query, group.ID, group.GroupName).Scan(&g.ID, &g.GroupName, &g.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user group %q", ErrDuplicate, group.GroupName)
		}
		return nil, fmt.Errorf("failed to create user group: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *PostgresUserGroupStore) UpdateUserGroup(ctx context.Context, txn *database.Txn, group *models.UserGroup) (*models.UserGroup, error) {
	query := `
		UPDATE user_groups
		SET group_name = $1
		WHERE id = $2
		RETURNING id, group_name, created_at
	`
	var g models.UserGroup
	err := txn.QueryRow(ctx, query, group.GroupName, group.ID).Scan(&g.ID, &g.GroupName, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user group %s", ErrNotFound, group.ID)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user group %q", ErrDuplicate, group.GroupName)
		}
		return nil, fmt.Errorf("failed to update user group: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *PostgresUserGroupStore) DeleteUserGroup(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.UserGroup, error) {
	query := `
		DELETE FROM user_groups
		WHERE id = $1
		RETURNING id, group_name, created_at
	`
	var g models.UserGroup
	err := txn.QueryRow(ctx, query, id).Scan(&g.ID, &g.GroupName, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user group %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to delete user group: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *PostgresUserGroupStore) DeleteUserGroups(ctx context.Context, txn *database.Txn, ids []uuid.UUID) ([]models.UserGroup, error) {
	query := `
		DELETE FROM user_groups
		WHERE id = ANY($1)
		RETURNING id, group_name, created_at
	`
	rows, err := txn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user groups: %w", err)
	}
	defer rows.Close()

	deleted := []models.UserGroup{}
	for rows.Next() {
		var g models.UserGroup
		if err := rows.Scan(&g.ID, &g.GroupName, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user group: %w", err)
		}
		deleted = append(deleted, g)
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
