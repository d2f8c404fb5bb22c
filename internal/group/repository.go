package group

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles group and membership data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new group and its initial members in one transaction
func (r *Repository) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest, memberIDs []int64) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (name, description, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, created_by, created_at
	`

	group := &Group{}
	err = tx.QueryRowContext(ctx, query, req.Name, req.Description, creatorID).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.CreatedBy,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	memberQuery := `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)`
	for _, userID := range memberIDs {
		if _, err := tx.ExecContext(ctx, memberQuery, group.ID, userID); err != nil {
			return nil, fmt.Errorf("failed to add member %d: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group creation: %w", err)
	}

	return group, nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `
		SELECT id, name, description, created_by, created_at
		FROM groups
		WHERE id = $1 AND deleted_at IS NULL
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.CreatedBy,
		&group.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// GetMembers retrieves all active members of a group with their user details
func (r *Repository) GetMembers(ctx context.Context, groupID int64) ([]*Member, error) {
	query := `
		SELECT m.id, m.group_id, m.user_id, m.joined_at, u.name, u.email
		FROM group_members m
		JOIN users u ON m.user_id = u.id
		WHERE m.group_id = $1 AND m.deleted_at IS NULL
		ORDER BY m.user_id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		if err := rows.Scan(
			&member.ID,
			&member.GroupID,
			&member.UserID,
			&member.JoinedAt,
			&member.Name,
			&member.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, nil
}

// GetMemberIDs retrieves the user IDs of all active members of a group
func (r *Repository) GetMemberIDs(ctx context.Context, groupID int64) ([]int64, error) {
	query := `
		SELECT user_id FROM group_members
		WHERE group_id = $1 AND deleted_at IS NULL
		ORDER BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member IDs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// GetMember retrieves a single active membership, or nil when absent
func (r *Repository) GetMember(ctx context.Context, groupID, userID int64) (*Member, error) {
	query := `
		SELECT id, group_id, user_id, joined_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.JoinedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// ExistingUserIDs returns which of the given user IDs exist as active users
func (r *Repository) ExistingUserIDs(ctx context.Context, userIDs []int64) ([]int64, error) {
	query := `SELECT id FROM users WHERE id = ANY($1) AND deleted_at IS NULL`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to check users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// ListByUserID retrieves all groups a user belongs to
func (r *Repository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Group, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM groups g
		JOIN group_members m ON g.id = m.group_id
		WHERE m.user_id = $1 AND m.deleted_at IS NULL AND g.deleted_at IS NULL
	`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT g.id, g.name, g.description, g.created_by, g.created_at
		FROM groups g
		JOIN group_members m ON g.id = m.group_id
		WHERE m.user_id = $1 AND m.deleted_at IS NULL AND g.deleted_at IS NULL
		ORDER BY g.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group := &Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.CreatedBy,
			&group.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}

	return groups, total, nil
}

// AddMember adds a user to a group, reviving a previously removed membership
func (r *Repository) AddMember(ctx context.Context, groupID, userID int64) (*Member, error) {
	query := `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, user_id)
		DO UPDATE SET deleted_at = NULL, joined_at = NOW()
		RETURNING id, group_id, user_id, joined_at
	`

	member := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// RemoveMember soft-deletes a membership
func (r *Repository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	query := `
		UPDATE group_members
		SET deleted_at = NOW()
		WHERE group_id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// SoftDelete marks a group and its memberships as deleted
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE group_members SET deleted_at = NOW() WHERE group_id = $1 AND deleted_at IS NULL`, id); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE groups SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}
