package settlement

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles settlement data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a settlement record
func (r *Repository) Create(ctx context.Context, payerID int64, req *CreateSettlementRequest) (*Settlement, error) {
	query := `
		INSERT INTO settlements (group_id, payer_id, payee_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, group_id, payer_id, payee_id, amount, created_at
	`

	settlement := &Settlement{}
	err := r.db.QueryRowContext(ctx, query,
		req.GroupID,
		payerID,
		req.PayeeID,
		req.Amount,
	).Scan(
		&settlement.ID,
		&settlement.GroupID,
		&settlement.PayerID,
		&settlement.PayeeID,
		&settlement.Amount,
		&settlement.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	return settlement, nil
}

// GetByID retrieves an active settlement
func (r *Repository) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	query := `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount, s.created_at, payer.name, payee.name
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.id = $1 AND s.deleted_at IS NULL
	`

	settlement := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&settlement.ID,
		&settlement.GroupID,
		&settlement.PayerID,
		&settlement.PayeeID,
		&settlement.Amount,
		&settlement.CreatedAt,
		&settlement.PayerName,
		&settlement.PayeeName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return settlement, nil
}

// ListByGroupID retrieves active settlements for a group, newest first
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Settlement, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM settlements WHERE group_id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	query := `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount, s.created_at, payer.name, payee.name
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.group_id = $1 AND s.deleted_at IS NULL
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements, err := scanSettlements(rows)
	if err != nil {
		return nil, 0, err
	}

	return settlements, total, nil
}

// ListActiveByGroupID retrieves every active settlement of a group, the read
// input for balance computation
func (r *Repository) ListActiveByGroupID(ctx context.Context, groupID int64) ([]*Settlement, error) {
	query := `
		SELECT s.id, s.group_id, s.payer_id, s.payee_id, s.amount, s.created_at, payer.name, payee.name
		FROM settlements s
		JOIN users payer ON s.payer_id = payer.id
		JOIN users payee ON s.payee_id = payee.id
		WHERE s.group_id = $1 AND s.deleted_at IS NULL
		ORDER BY s.created_at DESC, s.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	return scanSettlements(rows)
}

// SoftDelete marks a settlement as deleted
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE settlements SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// scanSettlements reads settlement rows including the joined party names
func scanSettlements(rows *sql.Rows) ([]*Settlement, error) {
	var settlements []*Settlement
	for rows.Next() {
		settlement := &Settlement{}
		if err := rows.Scan(
			&settlement.ID,
			&settlement.GroupID,
			&settlement.PayerID,
			&settlement.PayeeID,
			&settlement.Amount,
			&settlement.CreatedAt,
			&settlement.PayerName,
			&settlement.PayeeName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	return settlements, nil
}
