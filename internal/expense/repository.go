package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fkhayef/settleup/internal/expense/split"
)

// Repository handles expense and split data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithSplits inserts an expense and all its splits in one transaction.
// The splits of an expense are never visible without the expense itself, and
// vice versa.
func (r *Repository) CreateWithSplits(ctx context.Context, payerID int64, req *CreateExpenseRequest, shares []split.Share) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (group_id, payer_id, description, amount, split_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, group_id, payer_id, description, amount, split_type, created_at
	`

	expense := &Expense{}
	err = tx.QueryRowContext(ctx, query,
		req.GroupID,
		payerID,
		req.Description,
		req.Amount,
		req.SplitType,
	).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.SplitType,
		&expense.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	splitQuery := `
		INSERT INTO expense_splits (expense_id, user_id, amount_owed)
		VALUES ($1, $2, $3)
		RETURNING id, expense_id, user_id, amount_owed
	`

	expense.Splits = make([]*Split, len(shares))
	for i, share := range shares {
		sp := &Split{}
		err := tx.QueryRowContext(ctx, splitQuery, expense.ID, share.UserID, share.Amount).Scan(
			&sp.ID,
			&sp.ExpenseID,
			&sp.UserID,
			&sp.Amount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create split: %w", err)
		}
		expense.Splits[i] = sp
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense creation: %w", err)
	}

	return expense, nil
}

// GetByID retrieves an active expense with its splits
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.split_type, e.created_at, u.name
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.id = $1 AND e.deleted_at IS NULL
	`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.SplitType,
		&expense.CreatedAt,
		&expense.PayerName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	splits, err := r.getSplitsByExpenseID(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Splits = splits

	return expense, nil
}

// getSplitsByExpenseID retrieves all active splits for an expense
func (r *Repository) getSplitsByExpenseID(ctx context.Context, expenseID int64) ([]*Split, error) {
	query := `
		SELECT s.id, s.expense_id, s.user_id, s.amount_owed, u.name
		FROM expense_splits s
		JOIN users u ON s.user_id = u.id
		WHERE s.expense_id = $1 AND s.deleted_at IS NULL
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []*Split
	for rows.Next() {
		sp := &Split{}
		if err := rows.Scan(
			&sp.ID,
			&sp.ExpenseID,
			&sp.UserID,
			&sp.Amount,
			&sp.UserName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		splits = append(splits, sp)
	}

	return splits, nil
}

// ListByGroupID retrieves active expenses for a group, newest first, with splits
func (r *Repository) ListByGroupID(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.split_type, e.created_at, u.name
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.group_id = $1 AND e.deleted_at IS NULL
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.attachSplits(ctx, groupID, expenses); err != nil {
		return nil, 0, err
	}

	return expenses, total, nil
}

// ListActiveByGroupID retrieves every active expense of a group with its
// splits, the read input for balance computation
func (r *Repository) ListActiveByGroupID(ctx context.Context, groupID int64) ([]*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.split_type, e.created_at, u.name
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		WHERE e.group_id = $1 AND e.deleted_at IS NULL
		ORDER BY e.created_at DESC, e.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachSplits(ctx, groupID, expenses); err != nil {
		return nil, err
	}

	return expenses, nil
}

// attachSplits loads all active splits for a group's active expenses in one
// query and attaches them to the matching expense
func (r *Repository) attachSplits(ctx context.Context, groupID int64, expenses []*Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	query := `
		SELECT s.id, s.expense_id, s.user_id, s.amount_owed, u.name
		FROM expense_splits s
		JOIN expenses e ON s.expense_id = e.id
		JOIN users u ON s.user_id = u.id
		WHERE e.group_id = $1 AND e.deleted_at IS NULL AND s.deleted_at IS NULL
		ORDER BY s.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	byExpense := make(map[int64][]*Split)
	for rows.Next() {
		sp := &Split{}
		if err := rows.Scan(
			&sp.ID,
			&sp.ExpenseID,
			&sp.UserID,
			&sp.Amount,
			&sp.UserName,
		); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		byExpense[sp.ExpenseID] = append(byExpense[sp.ExpenseID], sp)
	}

	for _, e := range expenses {
		e.Splits = byExpense[e.ID]
	}

	return nil
}

// SoftDelete marks an expense and all its splits as deleted in one
// transaction, so the split-sum invariant holds at every point in time
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE expense_splits SET deleted_at = NOW() WHERE expense_id = $1 AND deleted_at IS NULL`, id); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE expenses SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// scanExpenses reads expense rows including the joined payer name
func scanExpenses(rows *sql.Rows) ([]*Expense, error) {
	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.PayerID,
			&expense.Description,
			&expense.Amount,
			&expense.SplitType,
			&expense.CreatedAt,
			&expense.PayerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}
