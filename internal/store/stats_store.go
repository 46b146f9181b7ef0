package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"roster/internal/database"
	"roster/internal/models"
)

// StatsStore aggregates counts across the roster tables. The whole snapshot
// runs on one caller-owned read transaction so the figures are consistent
// with each other.
type StatsStore interface {
	GetOverviewStats(ctx context.Context, txn *database.Txn, groupID *uuid.UUID) (*models.OverviewStats, error)
}

type PostgresStatsStore struct{}

func NewPostgresStatsStore() *PostgresStatsStore {
	return &PostgresStatsStore{}
}

// GetOverviewStats counts each entity plus its 30-day growth. A group id
// narrows the user and grant figures to that group; the other totals stay
// global.
func (s *PostgresStatsStore) GetOverviewStats(ctx context.Context, txn *database.Txn, groupID *uuid.UUID) (*models.OverviewStats, error) {
	stats := &models.OverviewStats{}

	// 1. Total Users
	userQuery := `SELECT count(*) FROM users`
	userArgs := []interface{}{}
	if groupID != nil {
		userQuery += ` WHERE user_group_id = $1`
		userArgs = append(userArgs, *groupID)
	}
	if err := txn.QueryRow(ctx, userQuery, userArgs...).Scan(&stats.TotalUsers); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	// 2. Users created in the last 30 days
	userChangeQuery := `SELECT count(*) FROM users WHERE created_at >= NOW() - INTERVAL '30 days'`
	userChangeArgs := []interface{}{}
	if groupID != nil {
		userChangeQuery += ` AND user_group_id = $1`
		userChangeArgs = append(userChangeArgs, *groupID)
	}
	if err := txn.QueryRow(ctx, userChangeQuery, userChangeArgs...).Scan(&stats.TotalUsersChange); err != nil {
		return nil, fmt.Errorf("failed to count new users: %w", err)
	}

	// 3. Total User Groups
	if err := txn.QueryRow(ctx, `SELECT count(*) FROM user_groups`).Scan(&stats.TotalUserGroups); err != nil {
		return nil, fmt.Errorf("failed to count user groups: %w", err)
	}

	// 4. Total Permissions
	if err := txn.QueryRow(ctx, `SELECT count(*) FROM permissions`).Scan(&stats.TotalPermissions); err != nil {
		return nil, fmt.Errorf("failed to count permissions: %w", err)
	}

	// 5. Group Grants
	groupGrantQuery := `SELECT count(*) FROM group_permissions`
	groupGrantArgs := []interface{}{}
	if groupID != nil {
		groupGrantQuery += ` WHERE group_id = $1`
		groupGrantArgs = append(groupGrantArgs, *groupID)
	}
	if err := txn.QueryRow(ctx, groupGrantQuery, groupGrantArgs...).Scan(&stats.TotalGroupGrants); err != nil {
		return nil, fmt.Errorf("failed to count group grants: %w", err)
	}

	// 6. User Grants
	userGrantQuery := `SELECT count(*) FROM user_permissions`
	userGrantArgs := []interface{}{}
	if groupID != nil {
		userGrantQuery += ` WHERE user_id IN (SELECT id FROM users WHERE user_group_id = $1)`
		userGrantArgs = append(userGrantArgs, *groupID)
	}
	if err := txn.QueryRow(ctx, userGrantQuery, userGrantArgs...).Scan(&stats.TotalUserGrants); err != nil {
		return nil, fmt.Errorf("failed to count user grants: %w", err)
	}

	// 7. Total Contents
	if err := txn.QueryRow(ctx, `SELECT count(*) FROM contents`).Scan(&stats.TotalContents); err != nil {
		return nil, fmt.Errorf("failed to count contents: %w", err)
	}

	// 8. Contents created in the last 30 days
	contentChangeQuery := `SELECT count(*) FROM contents WHERE created_at >= NOW() - INTERVAL '30 days'`
	if err := txn.QueryRow(ctx, contentChangeQuery).Scan(&stats.TotalContentsChange); err != nil {
		return nil, fmt.Errorf("failed to count new contents: %w", err)
	}

	// 9. Recent Contents (last 3)
	recentQuery := `
		SELECT id, body, created_at, updated_at, author_id
		FROM contents
		ORDER BY created_at DESC, id ASC
		LIMIT 3
	`
	rows, err := txn.Query(ctx, recentQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent contents: %w", err)
	}
	defer rows.Close()

	recent := []models.ContentResponse{}
	for rows.Next() {
		var c models.Content
		if err := rows.Scan(&c.ID, &c.Body, &c.CreatedAt, &c.UpdatedAt, &c.AuthorID); err != nil {
			return nil, fmt.Errorf("failed to scan content: %w", err)
		}
		recent = append(recent, c.Response())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recent contents: %w", err)
	}
	stats.RecentContents = recent

	return stats, nil
}
