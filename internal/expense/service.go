package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/storage"
	"github.com/fkhayef/splitledger/internal/validation"
)

// Common errors
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrSplitNotFound   = errors.New("split not found")
	ErrNoPayer         = errors.New("paid_by is required when the caller is not a member of the group")
	ErrNotMember       = errors.New("you are not a member of this group")
	ErrNotPayer        = errors.New("only the member who paid can delete this expense")
	ErrNotParticipant  = errors.New("only the payer or the member who owes the split can change it")
)

// Result is a stored expense together with the group balances after the change
type Result struct {
	Expense  *domain.Expense
	Balances []domain.Balance
}

// BalanceCheck vets a new expense against the balances it is about to change.
// It runs inside the group's write scope, so before is current.
type BalanceCheck func(before []domain.Balance, expense *domain.Expense) error

// Period bounds a listing by creation time. Zero bounds are open; Until is exclusive.
type Period struct {
	Since time.Time
	Until time.Time
}

// Service handles expense business logic
type Service struct {
	store        storage.Store
	validate     *validation.Validator
	splitFactory *split.Factory // Factory pattern for creating split strategies
	logger       *slog.Logger
	now          func() time.Time
}

// NewService creates a new expense service with dependencies injected
func NewService(store storage.Store, validate *validation.Validator, splitFactory *split.Factory, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		validate:     validate,
		splitFactory: splitFactory,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateExpense validates and splits an expense, then records it and the updated balances together.
// When PaidBy is empty the caller's own membership pays. Any checks run before anything is written.
func (s *Service) CreateExpense(ctx context.Context, callerID string, req *CreateExpenseRequest, checks ...BalanceCheck) (*Result, error) {
	if strings.TrimSpace(req.GroupID) == "" {
		return nil, domain.NewValidationError("group_id", "is required")
	}

	group, err := s.group(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	var result Result
	err = s.store.WithinGroup(ctx, req.GroupID, func(ctx context.Context, tx storage.GroupTx) error {
		members, err := tx.ListMembers(ctx)
		if err != nil {
			return err
		}
		if !group.CanAccess(members, callerID) {
			return ErrNotMember
		}
		expenses, err := tx.ListExpenses(ctx)
		if err != nil {
			return err
		}

		expense, err := s.build(req.GroupID, callerID, &req.ExpenseInput, members)
		if err != nil {
			return err
		}

		before, err := ledger.ComputeBalances(members, expenses)
		if err != nil {
			return err
		}
		for _, check := range checks {
			if err := check(before, expense); err != nil {
				return err
			}
		}
		balances, err := ledger.Apply(before, *expense)
		if err != nil {
			return err
		}

		if err := tx.CreateExpense(ctx, expense); err != nil {
			return err
		}
		if err := tx.PersistBalances(ctx, balances); err != nil {
			return err
		}

		result = Result{Expense: expense, Balances: balances}
		return nil
	})
	if err != nil {
		return nil, s.fail(req.GroupID, err)
	}

	s.logger.Info("expense created",
		"group_id", req.GroupID,
		"expense_id", result.Expense.ID,
		"amount", domain.FormatAmount(result.Expense.Amount),
		"split_type", result.Expense.Strategy)
	return &result, nil
}

// Preview computes the splits an expense would get without storing anything
func (s *Service) Preview(ctx context.Context, callerID string, req *CreateExpenseRequest) (*domain.Expense, error) {
	if strings.TrimSpace(req.GroupID) == "" {
		return nil, domain.NewValidationError("group_id", "is required")
	}

	_, members, err := s.access(ctx, callerID, req.GroupID)
	if err != nil {
		return nil, err
	}

	return s.build(req.GroupID, callerID, &req.ExpenseInput, members)
}

// build turns validated input into an expense with its splits
func (s *Service) build(groupID, callerID string, in *validation.ExpenseInput, members []domain.Member) (*domain.Expense, error) {
	input := *in
	if input.PaidBy == "" {
		payer, ok := domain.MemberForUser(members, callerID)
		if !ok {
			return nil, domain.NewValidationError("paid_by", ErrNoPayer.Error())
		}
		input.PaidBy = payer
	}

	if err := s.validate.Expense(&input, members); err != nil {
		return nil, err
	}

	splits, err := s.splitFactory.Compute(input.Strategy, validation.SplitRequest(&input, members))
	if err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = domain.SourceManual
	}

	expense := &domain.Expense{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		PaidBy:      input.PaidBy,
		Strategy:    input.Strategy,
		Source:      source,
		Items:       input.Items,
		Splits:      splits,
		CreatedAt:   s.now(),
	}
	if err := ledger.CheckExpense(expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// GetExpenseByID retrieves an expense with its splits for a member of its group
func (s *Service) GetExpenseByID(ctx context.Context, callerID, id string) (*domain.Expense, error) {
	expense, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.access(ctx, callerID, expense.GroupID); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroupID retrieves a group's expenses created within period, newest first
func (s *Service) ListExpensesByGroupID(ctx context.Context, callerID, groupID string, period Period, page, perPage int) ([]domain.Expense, int, error) {
	if _, _, err := s.access(ctx, callerID, groupID); err != nil {
		return nil, 0, err
	}

	expenses, err := s.store.FindExpenses(ctx, storage.ExpenseQuery{
		GroupID: groupID,
		Since:   period.Since,
		Until:   period.Until,
	})
	if err != nil {
		return nil, 0, err
	}
	return paginate(expenses, page, perPage)
}

// ListUserExpenses retrieves the expenses the caller paid or shares in across all
// of their groups, newest first
func (s *Service) ListUserExpenses(ctx context.Context, callerID string, period Period, page, perPage int) ([]domain.Expense, int, error) {
	if callerID == "" {
		return nil, 0, ErrNotMember
	}

	expenses, err := s.store.FindExpenses(ctx, storage.ExpenseQuery{
		UserID: callerID,
		Since:  period.Since,
		Until:  period.Until,
	})
	if err != nil {
		return nil, 0, err
	}
	return paginate(expenses, page, perPage)
}

// paginate reverses expenses to newest first and cuts out one page
func paginate(expenses []domain.Expense, page, perPage int) ([]domain.Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	slices.Reverse(expenses)

	total := len(expenses)
	offset := min((page-1)*perPage, total)
	end := min(offset+perPage, total)
	return expenses[offset:end], total, nil
}

// DeleteExpense removes an expense and recomputes the group's balances from what remains.
// Only the member who paid may delete it.
func (s *Service) DeleteExpense(ctx context.Context, callerID, id string) ([]domain.Balance, error) {
	expense, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	group, err := s.group(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}

	var balances []domain.Balance
	err = s.store.WithinGroup(ctx, expense.GroupID, func(ctx context.Context, tx storage.GroupTx) error {
		members, err := tx.ListMembers(ctx)
		if err != nil {
			return err
		}
		if !group.CanAccess(members, callerID) {
			return ErrNotMember
		}
		if me, _ := domain.MemberForUser(members, callerID); me != expense.PaidBy {
			return ErrNotPayer
		}

		expenses, err := tx.ListExpenses(ctx)
		if err != nil {
			return err
		}

		remaining := slices.DeleteFunc(expenses, func(e domain.Expense) bool { return e.ID == id })
		balances, err = ledger.ComputeBalances(members, remaining)
		if err != nil {
			return err
		}

		if err := tx.DeleteExpense(ctx, id); err != nil {
			return err
		}
		return tx.PersistBalances(ctx, balances)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, s.fail(expense.GroupID, err)
	}

	s.logger.Info("expense deleted", "group_id", expense.GroupID, "expense_id", id, "user_id", callerID)
	return balances, nil
}

// SettleSplit flags one member's share of an expense as settled or not.
// The payer and the member who owes the share may change it.
// The flag is informational and does not change balances.
func (s *Service) SettleSplit(ctx context.Context, callerID, expenseID, memberID string, settled bool) (*domain.Expense, error) {
	expense, err := s.get(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	group, err := s.group(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinGroup(ctx, expense.GroupID, func(ctx context.Context, tx storage.GroupTx) error {
		members, err := tx.ListMembers(ctx)
		if err != nil {
			return err
		}
		if !group.CanAccess(members, callerID) {
			return ErrNotMember
		}
		if me, _ := domain.MemberForUser(members, callerID); me != expense.PaidBy && me != memberID {
			return ErrNotParticipant
		}
		return tx.SettleSplit(ctx, expenseID, memberID, settled)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSplitNotFound
		}
		return nil, err
	}

	return s.get(ctx, expenseID)
}

func (s *Service) get(ctx context.Context, id string) (*domain.Expense, error) {
	expense, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, ErrExpenseNotFound
	}
	return expense, nil
}

func (s *Service) group(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// access loads a group's members once the caller is known to belong to it
func (s *Service) access(ctx context.Context, callerID, groupID string) (*domain.Group, []domain.Member, error) {
	group, err := s.group(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if !group.CanAccess(members, callerID) {
		return nil, nil, ErrNotMember
	}
	return group, members, nil
}

// fail maps storage errors and reports a broken ledger at error level
func (s *Service) fail(groupID string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrGroupNotFound
	case errors.Is(err, domain.ErrLedgerInconsistency):
		s.logger.Error("ledger inconsistency", "group_id", groupID, "error", err)
		return err
	case errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("failed to store expense: %w", err)
	default:
		return err
	}
}
