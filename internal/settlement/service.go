package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/expense"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/storage"
	"github.com/fkhayef/splitledger/internal/validation"
)

// Common errors
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNotMember     = expense.ErrNotMember
)

// ExpenseRecorder stores an expense and returns the balances after it
type ExpenseRecorder interface {
	CreateExpense(ctx context.Context, callerID string, req *expense.CreateExpenseRequest, checks ...expense.BalanceCheck) (*expense.Result, error)
}

// Suggestion is the minimal set of transfers that settles a group
type Suggestion struct {
	Balances  []domain.Balance
	Transfers []domain.Transfer
}

// Service handles settlement business logic
type Service struct {
	store    storage.Store
	expenses ExpenseRecorder
	validate *validation.Validator
	logger   *slog.Logger
}

// NewService creates a new settlement service
func NewService(store storage.Store, expenses ExpenseRecorder, validate *validation.Validator, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		expenses: expenses,
		validate: validate,
		logger:   logger,
	}
}

// Suggest plans the transfers that bring every balance in the group to zero
func (s *Service) Suggest(ctx context.Context, callerID, groupID string) (*Suggestion, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.CanAccess(members, callerID) {
		return nil, ErrNotMember
	}
	expenses, err := s.store.ListExpenses(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances, err := ledger.ComputeBalances(members, expenses)
	if err != nil {
		return nil, s.inconsistent(groupID, err)
	}

	transfers, err := Plan(balances)
	if err != nil {
		return nil, s.inconsistent(groupID, err)
	}

	return &Suggestion{Balances: balances, Transfers: transfers}, nil
}

// Record stores a payment between two members as an EXACT expense:
// the sender pays the full amount and the receiver owes all of it.
// The sender must owe money, the receiver must be owed money, and the amount
// may not exceed what either side has outstanding. A smaller amount is recorded
// as is and leaves the rest of the debt open.
func (s *Service) Record(ctx context.Context, callerID, groupID string, in *validation.SettlementInput) (*expense.Result, error) {
	if err := s.validate.Settlement(in); err != nil {
		return nil, err
	}

	description := in.Description
	if description == "" {
		description = fmt.Sprintf("Settlement: %s paid %s", in.From, in.To)
	}

	amount := in.Amount
	result, err := s.expenses.CreateExpense(ctx, callerID, &expense.CreateExpenseRequest{
		GroupID: groupID,
		ExpenseInput: validation.ExpenseInput{
			Description: description,
			Amount:      amount,
			PaidBy:      in.From,
			Strategy:    domain.StrategyExact,
			Shares:      []split.Share{{MemberID: in.To, Amount: &amount}},
		},
	}, outstandingCheck(in))
	if err != nil {
		if errors.Is(err, expense.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}

	s.logger.Info("settlement recorded",
		"group_id", groupID,
		"from", in.From,
		"to", in.To,
		"amount", domain.FormatAmount(in.Amount))
	return result, nil
}

// outstandingCheck caps a payment at the debt between its two members
func outstandingCheck(in *validation.SettlementInput) expense.BalanceCheck {
	return func(before []domain.Balance, _ *domain.Expense) error {
		var from, to decimal.Decimal
		for _, b := range before {
			switch b.MemberID {
			case in.From:
				from = b.Net
			case in.To:
				to = b.Net
			}
		}

		if !from.IsNegative() || domain.IsNegligible(from) {
			return domain.NewValidationError("from", "has nothing to settle")
		}
		if !to.IsPositive() || domain.IsNegligible(to) {
			return domain.NewValidationError("to", "is not owed anything")
		}
		limit := decimal.Min(from.Neg(), to).Round(domain.Scale)
		if in.Amount.GreaterThan(limit) {
			return domain.NewValidationError("amount", "exceeds the outstanding balance of "+domain.FormatAmount(limit))
		}
		return nil
	}
}

func (s *Service) inconsistent(groupID string, err error) error {
	if errors.Is(err, domain.ErrLedgerInconsistency) {
		s.logger.Error("ledger inconsistency", "group_id", groupID, "error", err)
	}
	return err
}
