// Package memory keeps groups, members and expenses in process memory.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/storage"
)

type groupState struct {
	// writer serializes WithinGroup calls for this group
	writer sync.Mutex

	group    domain.Group
	members  []domain.Member
	expenses []domain.Expense
}

// Store is an in-memory storage.Store
type Store struct {
	mu     sync.RWMutex
	groups map[string]*groupState
	order  []string
}

var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store
func New() *Store {
	return &Store{groups: make(map[string]*groupState)}
}

// CreateGroup stores a new group together with its initial members
func (s *Store) CreateGroup(ctx context.Context, group *domain.Group, members []domain.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[group.ID]; exists {
		return storage.ErrConflict
	}
	s.groups[group.ID] = &groupState{
		group:   *group,
		members: slices.Clone(members),
	}
	s.order = append(s.order, group.ID)
	return nil
}

// GetGroup returns the group or nil when it does not exist
func (s *Store) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.groups[id]
	if !ok {
		return nil, nil
	}
	group := state.group
	return &group, nil
}

// ListGroups returns groups in creation order. A non-empty userID limits the
// result to groups the user created or is a member of.
func (s *Store) ListGroups(ctx context.Context, userID string, limit, offset int) ([]*domain.Group, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*domain.Group
	for _, id := range s.order {
		state := s.groups[id]
		if userID != "" && !involves(state, userID) {
			continue
		}
		group := state.group
		matched = append(matched, &group)
	}

	total := len(matched)
	if offset >= total {
		return []*domain.Group{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func involves(state *groupState, userID string) bool {
	if state.group.CreatedBy == userID {
		return true
	}
	for _, m := range state.members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// ListMembers returns a group's members in join order
func (s *Store) ListMembers(ctx context.Context, groupID string) ([]domain.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.groups[groupID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(state.members), nil
}

// ListExpenses returns a group's expenses in creation order
func (s *Store) ListExpenses(ctx context.Context, groupID string) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.groups[groupID]
	if !ok {
		return nil, nil
	}
	return cloneExpenses(state.expenses), nil
}

// GetExpense returns the expense or nil when it does not exist
func (s *Store) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, state := range s.groups {
		for i := range state.expenses {
			if state.expenses[i].ID == id {
				e := cloneExpense(state.expenses[i])
				return &e, nil
			}
		}
	}
	return nil, nil
}

// FindExpenses returns matching expenses across groups ordered by creation time
func (s *Store) FindExpenses(ctx context.Context, q storage.ExpenseQuery) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found []domain.Expense
	for _, id := range s.order {
		state := s.groups[id]
		if q.GroupID != "" && id != q.GroupID {
			continue
		}

		var linked []string
		if q.UserID != "" {
			for _, m := range state.members {
				if m.UserID == q.UserID {
					linked = append(linked, m.ID)
				}
			}
			if len(linked) == 0 {
				continue
			}
		}

		for _, e := range state.expenses {
			if !q.Covers(e.CreatedAt) {
				continue
			}
			if q.UserID != "" && !slices.ContainsFunc(linked, e.References) {
				continue
			}
			found = append(found, cloneExpense(e))
		}
	}

	slices.SortStableFunc(found, func(a, b domain.Expense) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return found, nil
}

// WithinGroup runs fn against a private copy of the group's records and
// publishes the copy only when fn succeeds.
func (s *Store) WithinGroup(ctx context.Context, groupID string, fn func(ctx context.Context, tx storage.GroupTx) error) error {
	s.mu.RLock()
	state, ok := s.groups[groupID]
	s.mu.RUnlock()
	if !ok {
		return storage.ErrNotFound
	}

	state.writer.Lock()
	defer state.writer.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	tx := &groupTx{
		groupID:  groupID,
		members:  slices.Clone(state.members),
		expenses: cloneExpenses(state.expenses),
	}
	s.mu.RUnlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	state.members = tx.members
	state.expenses = tx.expenses
	s.mu.Unlock()
	return nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

type groupTx struct {
	groupID  string
	members  []domain.Member
	expenses []domain.Expense
}

func (t *groupTx) ListMembers(ctx context.Context) ([]domain.Member, error) {
	return slices.Clone(t.members), nil
}

func (t *groupTx) ListExpenses(ctx context.Context) ([]domain.Expense, error) {
	return cloneExpenses(t.expenses), nil
}

func (t *groupTx) AddMember(ctx context.Context, member *domain.Member) error {
	for _, m := range t.members {
		if m.ID == member.ID {
			return storage.ErrConflict
		}
	}
	m := *member
	m.GroupID = t.groupID
	t.members = append(t.members, m)
	return nil
}

func (t *groupTx) RemoveMember(ctx context.Context, memberID string) error {
	i := slices.IndexFunc(t.members, func(m domain.Member) bool { return m.ID == memberID })
	if i < 0 {
		return storage.ErrNotFound
	}
	t.members = slices.Delete(t.members, i, i+1)
	return nil
}

func (t *groupTx) CreateExpense(ctx context.Context, expense *domain.Expense) error {
	for _, e := range t.expenses {
		if e.ID == expense.ID {
			return storage.ErrConflict
		}
	}
	e := cloneExpense(*expense)
	e.GroupID = t.groupID
	t.expenses = append(t.expenses, e)
	return nil
}

func (t *groupTx) DeleteExpense(ctx context.Context, expenseID string) error {
	i := slices.IndexFunc(t.expenses, func(e domain.Expense) bool { return e.ID == expenseID })
	if i < 0 {
		return storage.ErrNotFound
	}
	t.expenses = slices.Delete(t.expenses, i, i+1)
	return nil
}

func (t *groupTx) SettleSplit(ctx context.Context, expenseID, memberID string, settled bool) error {
	for i := range t.expenses {
		if t.expenses[i].ID != expenseID {
			continue
		}
		for j := range t.expenses[i].Splits {
			if t.expenses[i].Splits[j].MemberID == memberID {
				t.expenses[i].Splits[j].Settled = settled
				return nil
			}
		}
	}
	return storage.ErrNotFound
}

func (t *groupTx) PersistBalances(ctx context.Context, balances []domain.Balance) error {
	net := make(map[string]int, len(balances))
	for i, b := range balances {
		net[b.MemberID] = i
	}
	for i := range t.members {
		if at, ok := net[t.members[i].ID]; ok {
			t.members[i].Balance = balances[at].Net
		}
	}
	return nil
}

func cloneExpenses(expenses []domain.Expense) []domain.Expense {
	out := make([]domain.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = cloneExpense(e)
	}
	return out
}

func cloneExpense(e domain.Expense) domain.Expense {
	e.Splits = slices.Clone(e.Splits)
	e.Items = slices.Clone(e.Items)
	for i := range e.Items {
		e.Items[i].AssignedTo = slices.Clone(e.Items[i].AssignedTo)
	}
	return e
}
