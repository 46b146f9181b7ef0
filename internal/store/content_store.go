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

type ContentStore interface {
	ListContents(ctx context.Context, txn *database.Txn, q models.Query[models.ContentFilter]) ([]models.Content, int64, error)
	GetContent(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.Content, error)
	CreateContent(ctx context.Context, txn *database.Txn, content *models.Content) (*models.Content, error)
	UpdateContent(ctx context.Context, txn *database.Txn, content *models.Content) (*models.Content, error)
	DeleteContent(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.Content, error)
	DeleteContents(ctx context.Context, txn *database.Txn, ids []uuid.UUID) ([]models.Content, error)
}

var contentSortColumns = map[string]string{
	"id":         "id",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type PostgresContentStore struct{}

func NewPostgresContentStore() *PostgresContentStore {
	return &PostgresContentStore{}
}

func (s *PostgresContentStore) ListContents(ctx context.Context, txn *database.Txn, q models.Query[models.ContentFilter]) ([]models.Content, int64, error) {
	query := `
		SELECT id, body, created_at, updated_at, author_id
		FROM contents
	`
	countQuery := `SELECT count(*) FROM contents`

	args := []interface{}{}
	if q.Filter != nil && q.Filter.AuthorID != nil {
		query += " WHERE author_id = $1"
		countQuery += " WHERE author_id = $1"
		args = append(args, *q.Filter.AuthorID)
	}

	orderBy := "id ASC"
	if sort := q.GetSort(); sort != "" {
		col, ok := contentSortColumns[sort]
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
		return nil, 0, fmt.Errorf("failed to count contents: %w", err)
	}

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, q.GetSize(), q.Offset())

	rows, err := txn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contents: %w", err)
	}
	defer rows.Close()

	contents := []models.Content{}
	for rows.Next() {
		var c models.Content
		if err := rows.Scan(&c.ID, &c.Body, &c.CreatedAt, &c.UpdatedAt, &c.AuthorID); err != nil {
			return nil, 0, fmt.Errorf("failed to scan content: %w", err)
		}
		contents = append(contents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return contents, total, nil
}

func (s *PostgresContentStore) GetContent(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.Content, error) {
	query := `
		SELECT id, body, created_at, updated_at, author_id
		FROM contents
		WHERE id = $1
	`
	var c models.Content
	err := txn.QueryRow(ctx, query, id).Scan(&c.ID, &c.Body, &c.CreatedAt, &c.UpdatedAt, &c.AuthorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: content %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &c, nil
}

func (s *PostgresContentStore) CreateContent(ctx context.Context, txn *database.Txn, content *models.Content) (*models.Content, error) {
	query := `
		INSERT INTO contents (id, body, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, body, created_at, updated_at, author_id
	`
	var created models.Content
	err := txn.QueryRow(ctx, query, content.ID, content.Body, content.AuthorID).
		Scan(&created.ID, &created.Body, &created.CreatedAt, &created.UpdatedAt, &created.AuthorID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: content %s", ErrDuplicate, content.ID)
		}
		return nil, fmt.Errorf("failed to create content: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *PostgresContentStore) UpdateContent(ctx context.Context, txn *database.Txn, content *models.Content) (*models.Content, error) {
	query := `
		UPDATE contents
		SET body = $1, author_id = $2, updated_at = now()
		WHERE id = $3
		RETURNING id, body, created_at, updated_at, author_id
	`
	var updated models.Content
	err := txn.QueryRow(ctx, query, content.Body, content.AuthorID, content.ID).
		Scan(&updated.ID, &updated.Body, &updated.CreatedAt, &updated.UpdatedAt, &updated.AuthorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: content %s", ErrNotFound, content.ID)
		}
		return nil, fmt.Errorf("failed to update content: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *PostgresContentStore) DeleteContent(ctx context.Context, txn *database.Txn, id uuid.UUID) (*models.Content, error) {
	query := `
		DELETE FROM contents
		WHERE id = $1
		RETURNING id, body, created_at, updated_at, author_id
	`
	var deleted models.Content
	err := txn.QueryRow(ctx, query, id).Scan(&deleted.ID, &deleted.Body, &deleted.CreatedAt, &deleted.UpdatedAt, &deleted.AuthorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: content %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to delete content: %w", err)
	}

	if err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (s *PostgresContentStore) DeleteContents(ctx context.Context, txn *database.Txn, ids []uuid.UUID) ([]models.Content, error) {
	query := `
		DELETE FROM contents
		WHERE id = ANY($1)
		RETURNING id, body, created_at, updated_at, author_id
	`
	rows, err := txn.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to delete contents: %w", err)
	}
	defer rows.Close()

	deleted := []models.Content{}
	for rows.Next() {
		var c models.Content
		if err := rows.Scan(&c.ID, &c.Body, &c.CreatedAt, &c.UpdatedAt, &c.AuthorID); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		deleted = append(deleted, c)
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
