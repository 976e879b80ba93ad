package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/storage"
	"github.com/fkhayef/splitledger/internal/validation"
)

// Common errors
var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrMemberHasBalance  = errors.New("member has an outstanding balance")
	ErrMemberReferenced  = errors.New("member is referenced by existing expenses")
	ErrMemberAlreadyUsed = errors.New("member already exists in this group")
	ErrNotMember         = errors.New("you are not a member of this group")
	ErrNotAdmin          = errors.New("only the group creator can change its members")
)

// BalanceReport is the recomputed state of a group's ledger
type BalanceReport struct {
	Balances []domain.Balance
	Summary  ledger.Summary
}

// Service handles group business logic
type Service struct {
	store    storage.Store
	validate *validation.Validator
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new group service
func NewService(store storage.Store, validate *validation.Validator, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		validate: validate,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create creates a new group with its initial members.
// The first member listed is linked to the creator unless it names another user.
func (s *Service) Create(ctx context.Context, creatorID string, in *validation.GroupInput) (*domain.Group, []domain.Member, error) {
	if err := s.validate.Group(in); err != nil {
		return nil, nil, err
	}
	if len(in.Members) == 0 {
		return nil, nil, domain.NewValidationError("members", "at least one member is required")
	}

	now := s.now()
	group := &domain.Group{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Type:        in.Type,
		CreatedBy:   creatorID,
		CreatedAt:   now,
	}
	if group.Type == "" {
		group.Type = domain.GroupTypeGeneral
	}

	members := make([]domain.Member, len(in.Members))
	for i := range in.Members {
		members[i] = newMember(group.ID, &in.Members[i], now)
	}
	if members[0].UserID == "" {
		members[0].UserID = creatorID
	}

	if err := s.store.CreateGroup(ctx, group, members); err != nil {
		return nil, nil, fmt.Errorf("failed to create group: %w", err)
	}

	s.logger.Info("group created", "group_id", group.ID, "members", len(members))
	return group, members, nil
}

// GetByID retrieves a group the caller created or belongs to
func (s *Service) GetByID(ctx context.Context, callerID, id string) (*domain.Group, error) {
	group, _, err := s.GetByIDWithMembers(ctx, callerID, id)
	return group, err
}

// GetByIDWithMembers retrieves a group with all its members
func (s *Service) GetByIDWithMembers(ctx context.Context, callerID, id string) (*domain.Group, []domain.Member, error) {
	group, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	members, err := s.store.ListMembers(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !group.CanAccess(members, callerID) {
		return nil, nil, ErrNotMember
	}

	return group, members, nil
}

// ListByUserID retrieves all groups for a user
func (s *Service) ListByUserID(ctx context.Context, userID string, page, perPage int) ([]*domain.Group, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListGroups(ctx, userID, perPage, offset)
}

// GetMembers retrieves all members of a group
func (s *Service) GetMembers(ctx context.Context, callerID, groupID string) ([]domain.Member, error) {
	_, members, err := s.GetByIDWithMembers(ctx, callerID, groupID)
	return members, err
}

// AddMember adds a member to a group. Only the group's creator may do this.
func (s *Service) AddMember(ctx context.Context, callerID, groupID string, in *validation.MemberInput) (*domain.Member, error) {
	group, err := s.find(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(callerID) {
		return nil, ErrNotAdmin
	}

	var member domain.Member
	err = s.store.WithinGroup(ctx, groupID, func(ctx context.Context, tx storage.GroupTx) error {
		existing, err := tx.ListMembers(ctx)
		if err != nil {
			return err
		}
		if err := s.validate.Member(in, existing); err != nil {
			return err
		}

		member = newMember(groupID, in, s.now())
		return tx.AddMember(ctx, &member)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.logger.Info("member added", "group_id", groupID, "member_id", member.ID)
	return &member, nil
}

// RemoveMember removes a member whose balance is settled and who no expense refers to.
// Only the group's creator may do this.
func (s *Service) RemoveMember(ctx context.Context, callerID, groupID, memberID string) error {
	group, err := s.find(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.IsAdmin(callerID) {
		return ErrNotAdmin
	}

	err = s.store.WithinGroup(ctx, groupID, func(ctx context.Context, tx storage.GroupTx) error {
		members, err := tx.ListMembers(ctx)
		if err != nil {
			return err
		}
		expenses, err := tx.ListExpenses(ctx)
		if err != nil {
			return err
		}

		balances, err := s.recompute(groupID, members, expenses)
		if err != nil {
			return err
		}

		net, ok := ledger.Lookup(balances)[memberID]
		if !ok {
			return ErrMemberNotFound
		}
		if !domain.IsNegligible(net) {
			return fmt.Errorf("%w: %s", ErrMemberHasBalance, domain.FormatAmount(net))
		}
		for i := range expenses {
			if expenses[i].References(memberID) {
				return ErrMemberReferenced
			}
		}

		return tx.RemoveMember(ctx, memberID)
	})
	if err != nil {
		return translate(err)
	}

	s.logger.Info("member removed", "group_id", groupID, "member_id", memberID, "user_id", callerID)
	return nil
}

// Balances recomputes every member's balance from the group's expenses and stores the result
func (s *Service) Balances(ctx context.Context, callerID, groupID string) (*BalanceReport, error) {
	group, err := s.find(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var report BalanceReport
	err = s.store.WithinGroup(ctx, groupID, func(ctx context.Context, tx storage.GroupTx) error {
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

		balances, err := s.recompute(groupID, members, expenses)
		if err != nil {
			return err
		}
		if err := tx.PersistBalances(ctx, balances); err != nil {
			return err
		}

		report = BalanceReport{Balances: balances, Summary: ledger.Summarize(expenses)}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	return &report, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.Group, error) {
	group, err := s.store.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// recompute derives balances and reports a broken ledger at error level
func (s *Service) recompute(groupID string, members []domain.Member, expenses []domain.Expense) ([]domain.Balance, error) {
	balances, err := ledger.ComputeBalances(members, expenses)
	if errors.Is(err, domain.ErrLedgerInconsistency) || errors.Is(err, domain.ErrUnknownMember) {
		s.logger.Error("stored ledger is inconsistent", "group_id", groupID, "error", err)
	}
	return balances, err
}

func newMember(groupID string, in *validation.MemberInput, joined time.Time) domain.Member {
	dietary := in.Dietary
	if dietary == "" {
		dietary = domain.DietaryBoth
	}
	return domain.Member{
		ID:       uuid.NewString(),
		GroupID:  groupID,
		UserID:   in.UserID,
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Dietary:  dietary,
		JoinedAt: joined,
	}
}

// translate maps storage errors onto this package's errors
func translate(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrGroupNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrMemberAlreadyUsed
	default:
		return err
	}
}
