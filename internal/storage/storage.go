// Package storage defines the persistence boundary for groups, members and expenses.
package storage

//go:generate mockgen -source=storage.go -destination=mock_storage.go -package=storage

import (
	"context"
	"errors"
	"time"

	"github.com/fkhayef/splitledger/internal/domain"
)

// Common errors
var (
	// ErrNotFound is returned by mutations whose target row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a record with the same identity already exists
	ErrConflict = errors.New("record already exists")
)

// Store is the read side of persistence plus a serialized write scope per group.
// Get methods return nil and no error when the record does not exist.
type Store interface {
	CreateGroup(ctx context.Context, group *domain.Group, members []domain.Member) error
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	ListGroups(ctx context.Context, userID string, limit, offset int) ([]*domain.Group, int, error)
	ListMembers(ctx context.Context, groupID string) ([]domain.Member, error)
	ListExpenses(ctx context.Context, groupID string) ([]domain.Expense, error)
	GetExpense(ctx context.Context, id string) (*domain.Expense, error)

	// FindExpenses returns the expenses matching q in creation order
	FindExpenses(ctx context.Context, q ExpenseQuery) ([]domain.Expense, error)

	// WithinGroup runs fn with exclusive write access to one group.
	// Changes made through tx are kept only if fn returns nil.
	WithinGroup(ctx context.Context, groupID string, fn func(ctx context.Context, tx GroupTx) error) error

	Close() error
}

// ExpenseQuery filters FindExpenses. Zero fields match everything.
// UserID matches expenses paid by or split with a member linked to that user.
// Since is inclusive and Until is exclusive.
type ExpenseQuery struct {
	GroupID string
	UserID  string
	Since   time.Time
	Until   time.Time
}

// Covers reports whether t falls inside the query's time window
func (q ExpenseQuery) Covers(t time.Time) bool {
	if !q.Since.IsZero() && t.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && !t.Before(q.Until) {
		return false
	}
	return true
}

// GroupTx reads and writes a single group's records inside WithinGroup
type GroupTx interface {
	ListMembers(ctx context.Context) ([]domain.Member, error)
	ListExpenses(ctx context.Context) ([]domain.Expense, error)
	AddMember(ctx context.Context, member *domain.Member) error
	RemoveMember(ctx context.Context, memberID string) error
	CreateExpense(ctx context.Context, expense *domain.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	SettleSplit(ctx context.Context, expenseID, memberID string, settled bool) error
	PersistBalances(ctx context.Context, balances []domain.Balance) error
}
