package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Strategy identifies how an expense is divided among members
type Strategy string

const (
	StrategyEqual      Strategy = "EQUAL"
	StrategyPercentage Strategy = "PERCENTAGE"
	StrategyExact      Strategy = "EXACT"
	StrategyItemWise   Strategy = "ITEM_WISE"
)

// Strategies lists every known split strategy
var Strategies = []Strategy{StrategyEqual, StrategyPercentage, StrategyExact, StrategyItemWise}

// Valid reports whether s is one of the known strategies
func (s Strategy) Valid() bool {
	for _, known := range Strategies {
		if s == known {
			return true
		}
	}
	return false
}

// DietaryTag is a member's dietary preference
type DietaryTag string

const (
	DietaryVegetarian    DietaryTag = "vegetarian"
	DietaryNonVegetarian DietaryTag = "non-vegetarian"
	DietaryBoth          DietaryTag = "both"
)

// ItemCategory classifies a line item
type ItemCategory string

const (
	CategoryVegetarian    ItemCategory = "vegetarian"
	CategoryNonVegetarian ItemCategory = "non-vegetarian"
	CategoryOther         ItemCategory = "other"
)

// ExpenseSource records where an expense's items came from
type ExpenseSource string

const (
	SourceManual ExpenseSource = "manual"
	SourceScan   ExpenseSource = "scan"
)

// GroupType describes what a group is for
type GroupType string

const (
	GroupTypeTrip    GroupType = "trip"
	GroupTypeMeal    GroupType = "meal"
	GroupTypeEvent   GroupType = "event"
	GroupTypeGeneral GroupType = "general"
)

// Group is a set of members sharing expenses
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        GroupType `json:"type"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsAdmin reports whether userID created the group
func (g *Group) IsAdmin(userID string) bool {
	return userID != "" && g.CreatedBy == userID
}

// CanAccess reports whether userID created the group or is linked to one of its members
func (g *Group) CanAccess(members []Member, userID string) bool {
	if g.IsAdmin(userID) {
		return true
	}
	_, ok := MemberForUser(members, userID)
	return ok
}

// MemberForUser returns the id of the member linked to userID
func MemberForUser(members []Member, userID string) (string, bool) {
	if userID == "" {
		return "", false
	}
	for _, m := range members {
		if m.UserID == userID {
			return m.ID, true
		}
	}
	return "", false
}

// Member is a participant in a group.
// UserID is set only for registered users; placeholder members have none.
type Member struct {
	ID       string          `json:"id"`
	GroupID  string          `json:"group_id"`
	UserID   string          `json:"user_id,omitempty"`
	Name     string          `json:"name"`
	Email    string          `json:"email,omitempty"`
	Dietary  DietaryTag      `json:"dietary"`
	Balance  decimal.Decimal `json:"balance"`
	JoinedAt time.Time       `json:"joined_at"`
}

// Expense is a payment advanced by one member and divided among others
type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	Strategy    Strategy        `json:"split_type"`
	Source      ExpenseSource   `json:"source"`
	Items       []Item          `json:"items,omitempty"`
	Splits      []Split         `json:"splits"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SplitTotal sums the amounts of every split
func (e *Expense) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range e.Splits {
		total = total.Add(s.Amount)
	}
	return total
}

// References reports whether memberID paid for or owes part of the expense
func (e *Expense) References(memberID string) bool {
	if e.PaidBy == memberID {
		return true
	}
	for _, s := range e.Splits {
		if s.MemberID == memberID {
			return true
		}
	}
	return false
}

// Item is a receipt line used by item-wise splitting
type Item struct {
	Name       string          `json:"name" yaml:"name" validate:"required,max=100"`
	Price      decimal.Decimal `json:"price" yaml:"price" validate:"gte=0"`
	Category   ItemCategory    `json:"category" yaml:"category,omitempty" validate:"omitempty,oneof=vegetarian non-vegetarian other"`
	AssignedTo []string        `json:"assigned_to" yaml:"assigned_to"`
}

// Split is one member's share of an expense.
// Percentage is derived from Amount and the expense total and is display-only.
type Split struct {
	MemberID   string              `json:"member_id"`
	MemberName string              `json:"member_name,omitempty"`
	Amount     decimal.Decimal     `json:"amount"`
	Percentage decimal.NullDecimal `json:"percentage"`
	Settled    bool                `json:"settled"`
}

// Balance is a member's position in a group.
// Net is positive when the group owes the member and negative when the member owes the group.
type Balance struct {
	MemberID   string          `json:"member_id"`
	MemberName string          `json:"member_name"`
	Paid       decimal.Decimal `json:"paid"`
	Owed       decimal.Decimal `json:"owed"`
	Net        decimal.Decimal `json:"net"`
}

// Transfer is a single payment that moves two balances toward zero
type Transfer struct {
	From     string          `json:"from"`
	FromName string          `json:"from_name,omitempty"`
	To       string          `json:"to"`
	ToName   string          `json:"to_name,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}
