// Package postgres persists groups, members and expenses in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/storage"
)

//go:embed schema.sql
var schema string

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a storage.Store backed by a database/sql connection pool
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// New creates a store on top of an open connection pool
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates any missing tables and indexes
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// CreateGroup inserts a group and its initial members in one transaction
func (s *Store) CreateGroup(ctx context.Context, group *domain.Group, members []domain.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (id, name, description, type, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := tx.ExecContext(ctx, query,
		group.ID,
		group.Name,
		group.Description,
		group.Type,
		group.CreatedBy,
		group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrConflict
	}

	for i := range members {
		members[i].GroupID = group.ID
		if err := insertMember(ctx, tx, &members[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by its ID
func (s *Store) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	query := `
		SELECT id, name, description, type, created_by, created_at
		FROM groups
		WHERE id = $1
	`

	group := &domain.Group{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.Type,
		&group.CreatedBy,
		&group.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// ListGroups retrieves groups, optionally only those a user created or belongs to
func (s *Store) ListGroups(ctx context.Context, userID string, limit, offset int) ([]*domain.Group, int, error) {
	filter := `
		WHERE $1 = ''
		   OR g.created_by = $1
		   OR EXISTS (SELECT 1 FROM members m WHERE m.group_id = g.id AND m.user_id = $1)
	`

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM groups g `+filter, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT g.id, g.name, g.description, g.type, g.created_by, g.created_at
		FROM groups g
	` + filter + `
		ORDER BY g.created_at, g.id
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []*domain.Group{}
	for rows.Next() {
		group := &domain.Group{}
		if err := rows.Scan(
			&group.ID,
			&group.Name,
			&group.Description,
			&group.Type,
			&group.CreatedBy,
			&group.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, total, nil
}

// ListMembers retrieves a group's members in join order
func (s *Store) ListMembers(ctx context.Context, groupID string) ([]domain.Member, error) {
	return listMembers(ctx, s.db, groupID)
}

// ListExpenses retrieves a group's expenses with their splits and items
func (s *Store) ListExpenses(ctx context.Context, groupID string) ([]domain.Expense, error) {
	return listExpenses(ctx, s.db, `e.group_id = $1`, groupID)
}

// GetExpense retrieves a single expense with its splits and items
func (s *Store) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	expenses, err := listExpenses(ctx, s.db, `e.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, nil
	}
	return &expenses[0], nil
}

// FindExpenses retrieves expenses matching q across groups in creation order
func (s *Store) FindExpenses(ctx context.Context, q storage.ExpenseQuery) ([]domain.Expense, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.GroupID != "" {
		conds = append(conds, "e.group_id = "+arg(q.GroupID))
	}
	if q.UserID != "" {
		user := arg(q.UserID)
		conds = append(conds, `EXISTS (
			SELECT 1 FROM members m
			WHERE m.group_id = e.group_id AND m.user_id = `+user+`
			  AND (m.id = e.paid_by OR EXISTS (
				SELECT 1 FROM expense_splits x WHERE x.expense_id = e.id AND x.member_id = m.id)))`)
	}
	if !q.Since.IsZero() {
		conds = append(conds, "e.created_at >= "+arg(q.Since))
	}
	if !q.Until.IsZero() {
		conds = append(conds, "e.created_at < "+arg(q.Until))
	}
	if len(conds) == 0 {
		conds = append(conds, "TRUE")
	}

	expenses, err := listExpenses(ctx, s.db, strings.Join(conds, " AND "), args...)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []domain.Expense{}
	}
	return expenses, nil
}

// WithinGroup locks the group row for the duration of a transaction
func (s *Store) WithinGroup(ctx context.Context, groupID string, fn func(ctx context.Context, tx storage.GroupTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to lock group: %w", err)
	}

	if err := fn(ctx, &groupTx{tx: tx, groupID: groupID}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

type groupTx struct {
	tx      *sql.Tx
	groupID string
}

func (t *groupTx) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return listMembers(ctx, t.tx, t.groupID)
}

func (t *groupTx) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return listExpenses(ctx, t.tx, `e.group_id = $1`, t.groupID)
}

func (t *groupTx) AddMember(ctx context.Context, member *domain.Member) error {
	member.GroupID = t.groupID
	return insertMember(ctx, t.tx, member)
}

func (t *groupTx) RemoveMember(ctx context.Context, memberID string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1 AND group_id = $2`, memberID, t.groupID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return expectRow(res)
}

func (t *groupTx) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	expense.GroupID = t.groupID

	query := `
		INSERT INTO expenses (id, group_id, description, amount, paid_by, split_type, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := t.tx.ExecContext(ctx, query,
		expense.ID,
		expense.GroupID,
		expense.Description,
		expense.Amount,
		expense.PaidBy,
		expense.Strategy,
		expense.Source,
		expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrConflict
	}

	for i, split := range expense.Splits {
		query := `
			INSERT INTO expense_splits (expense_id, position, member_id, member_name, amount, percentage, settled)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		if _, err := t.tx.ExecContext(ctx, query,
			expense.ID,
			i,
			split.MemberID,
			split.MemberName,
			split.Amount,
			split.Percentage,
			split.Settled,
		); err != nil {
			return fmt.Errorf("failed to create split: %w", err)
		}
	}

	for i, item := range expense.Items {
		query := `
			INSERT INTO expense_items (expense_id, position, name, price, category, assigned_to)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := t.tx.ExecContext(ctx, query,
			expense.ID,
			i,
			item.Name,
			item.Price,
			item.Category,
			pq.Array(assignees(item.AssignedTo)),
		); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
	}

	return nil
}

// assignees keeps a missing list from being written as NULL
func assignees(memberIDs []string) []string {
	if memberIDs == nil {
		return []string{}
	}
	return memberIDs
}

func (t *groupTx) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1 AND group_id = $2`, expenseID, t.groupID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return expectRow(res)
}

func (t *groupTx) SettleSplit(ctx context.Context, expenseID, memberID string, settled bool) error {
	query := `
		UPDATE expense_splits s
		SET settled = $3
		FROM expenses e
		WHERE s.expense_id = e.id AND e.group_id = $4 AND s.expense_id = $1 AND s.member_id = $2
	`
	res, err := t.tx.ExecContext(ctx, query, expenseID, memberID, settled, t.groupID)
	if err != nil {
		return fmt.Errorf("failed to settle split: %w", err)
	}
	return expectRow(res)
}

func (t *groupTx) PersistBalances(ctx context.Context, balances []domain.Balance) error {
	for _, b := range balances {
		_, err := t.tx.ExecContext(ctx,
			`UPDATE members SET balance = $1 WHERE id = $2 AND group_id = $3`,
			b.Net, b.MemberID, t.groupID,
		)
		if err != nil {
			return fmt.Errorf("failed to persist balance: %w", err)
		}
	}
	return nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func insertMember(ctx context.Context, q querier, member *domain.Member) error {
	query := `
		INSERT INTO members (id, group_id, user_id, name, email, dietary, balance, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := q.ExecContext(ctx, query,
		member.ID,
		member.GroupID,
		member.UserID,
		member.Name,
		member.Email,
		member.Dietary,
		member.Balance,
		member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrConflict
	}
	return nil
}

func listMembers(ctx context.Context, q querier, groupID string) ([]domain.Member, error) {
	query := `
		SELECT id, group_id, user_id, name, email, dietary, balance, joined_at
		FROM members
		WHERE group_id = $1
		ORDER BY seq
	`

	rows, err := q.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(
			&m.ID,
			&m.GroupID,
			&m.UserID,
			&m.Name,
			&m.Email,
			&m.Dietary,
			&m.Balance,
			&m.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	return members, nil
}

// listExpenses loads expenses matching where, then attaches splits and items
func listExpenses(ctx context.Context, q querier, where string, args ...any) ([]domain.Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.description, e.amount, e.paid_by, e.split_type, e.source, e.created_at
		FROM expenses e
		WHERE ` + where + `
		ORDER BY e.seq
	`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}

	var expenses []domain.Expense
	index := make(map[string]int)
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(
			&e.ID,
			&e.GroupID,
			&e.Description,
			&e.Amount,
			&e.PaidBy,
			&e.Strategy,
			&e.Source,
			&e.CreatedAt,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	if err := attachSplits(ctx, q, where, args, expenses, index); err != nil {
		return nil, err
	}
	if err := attachItems(ctx, q, where, args, expenses, index); err != nil {
		return nil, err
	}
	return expenses, nil
}

func attachSplits(ctx context.Context, q querier, where string, args []any, expenses []domain.Expense, index map[string]int) error {
	query := `
		SELECT s.expense_id, s.member_id, s.member_name, s.amount, s.percentage, s.settled
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE ` + where + `
		ORDER BY s.expense_id, s.position
	`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var s domain.Split
		if err := rows.Scan(
			&expenseID,
			&s.MemberID,
			&s.MemberName,
			&s.Amount,
			&s.Percentage,
			&s.Settled,
		); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		at := index[expenseID]
		expenses[at].Splits = append(expenses[at].Splits, s)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	return nil
}

func attachItems(ctx context.Context, q querier, where string, args []any, expenses []domain.Expense, index map[string]int) error {
	query := `
		SELECT i.expense_id, i.name, i.price, i.category, i.assigned_to
		FROM expense_items i
		JOIN expenses e ON e.id = i.expense_id
		WHERE ` + where + `
		ORDER BY i.expense_id, i.position
	`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var item domain.Item
		var assigned pq.StringArray
		if err := rows.Scan(
			&expenseID,
			&item.Name,
			&item.Price,
			&item.Category,
			&assigned,
		); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		item.AssignedTo = []string(assigned)
		at := index[expenseID]
		expenses[at].Items = append(expenses[at].Items, item)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	return nil
}
