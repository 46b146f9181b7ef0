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

// UserStore operations run on a transaction handle owned by the caller.
// Reads leave the handle open; mutations commit it before returning, so a
// caller must begin a fresh transaction per mutating call.
type UserStore interface {
	ListUsers(ctx context.Context, txn *database.Txn, q models.Query[models.UserFilter]) ([]models.User, int64, error)
	GetUser(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.User, error)
	GetUserByUsername(ctx context.Context, txn *database.Txn, username string) (*models.User, error)
	GetUserPasswordHash(ctx context.Context, txn *database.Txn, id uuid.UUID) (string, error)
	CreateUser(ctx context.Context, txn *database.Txn, user *models.User) (*models.User, error)
	UpdateUser(ctx context.Context, txn *database.Txn, user *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.User, error)
	DeleteUsers(ctx context.Context, txn *database.Txn, ids []uuid.UUID) ([]models.User, error)
}

var userSortColumns = map[string]string{
	"id":         "id",
	"username":   "username",
	"created_at": "created_at",
}

type PostgresUserStore struct{}

func NewPostgresUserStore() *PostgresUserStore {
	return &PostgresUserStore{}
}

func (s *PostgresUserStore) ListUsers(ctx context.Context, txn *database.Txn, q models.Query[models.UserFilter]) ([]models.User, int64, error) {
	query := `
		SELECT id, username, password_hash, created_at, user_group_id
		FROM users
	`
	countQuery := `SELECT count(*) FROM users`

	args := []interface{}{}
	if f := q.Filter; f != nil && f.UserGroupID != nil {
		query += ` WHERE user_group_id = $1`
		countQuery += ` WHERE user_group_id = $1`
		args = append(args, *f.UserGroupID)
	}

	orderBy := "id ASC"
	if sort := q.GetSort(); sort != "" {
		col, ok := userSortColumns[sort]
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
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.GetSize(), q.Offset())

	rows, err := txn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UserGroupID); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return users, total, nil
}

func (s *PostgresUserStore) GetUser(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, created_at, user_group_id
		FROM users
		WHERE id = $1
	`
	var u models.User
	err := txn.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UserGroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *PostgresUserStore) GetUserByUsername(ctx context.Context, txn *database.Txn, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, created_at, user_group_id
		FROM users
		WHERE username = $1
	`
	var u models.User
	err := txn.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UserGroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &u, nil
}

func (s *PostgresUserStore) GetUserPasswordHash(ctx context.Context, txn *database.Txn, id uuid.UUID) (string, error) {
	query := `SELECT password_hash FROM users WHERE id = $1`
	var hash string
	err := txn.QueryRow(ctx, query, id).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}
	return hash, nil
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, txn *database.Txn, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, username, password_hash, user_group_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, password_hash, created_at, user_group_id
	`
	var u models.User
	err := txn.QueryRow(ctx, query, user.ID, user.Username, user.PasswordHash, user.UserGroupID).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UserGroupID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: username %q", ErrDuplicate, user.Username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) UpdateUser(ctx context.Context, txn *database.Txn, user *models.User) (*models.User, error) {
	query := `
		UPDATE users
		SET username = $1, password_hash = $2, user_group_id = $3
		WHERE id = $4
		RETURNING id, username, password_hash, created_at, user_group_id
	`
	var u models.User
	err := txn.QueryRow(ctx, query, user.Username, user.PasswordHash, user.UserGroupID, user.ID).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UserGroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, user.ID)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: username %q", ErrDuplicate, user.Username)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresUserStore) DeleteUser(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.User, error) {
	query := `
		DELETE FROM users
		WHERE id = $1
		RETURNING id, username, password_hash, created_at, user_group_id
	`
	var u models.User
	err := txn.QueryRow(ctx, query, id).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UserGroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUsers removes every listed id that exists and returns the deleted
// rows. Ids with no matching row are skipped, not an error.
func (s *PostgresUserStore) DeleteUsers(ctx context.Context, txn *database.Txn, ids []uuid.UUID) ([]models.User, error) {
	query := `
		DELETE FROM users
		WHERE id = ANY($1)
		RETURNING id, username, password_hash, created_at, user_group_id
	`
	rows, err := txn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete users: %w", err)
	}
	defer rows.Close()

	deleted := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UserGroupID); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		deleted = append(deleted, u)
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
