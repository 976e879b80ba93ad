// Package validation guards the split calculator and the ledger against malformed input.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/expense/split"
)

// ExpenseInput is a new expense before it is split
type ExpenseInput struct {
	Description string               `json:"description" yaml:"description" validate:"required,max=255"`
	Amount      decimal.Decimal      `json:"amount" yaml:"amount" validate:"gt=0"`
	PaidBy      string               `json:"paid_by" yaml:"paid_by" validate:"required"`
	Strategy    domain.Strategy      `json:"split_type" yaml:"split_type" validate:"required,oneof=EQUAL PERCENTAGE EXACT ITEM_WISE"`
	Source      domain.ExpenseSource `json:"source,omitempty" yaml:"source,omitempty" validate:"omitempty,oneof=manual scan"`

	// Participants restricts an EQUAL split to a subset of the group; empty means everyone
	Participants     []string      `json:"participants,omitempty" yaml:"participants,omitempty"`
	Shares           []split.Share `json:"shares,omitempty" yaml:"shares,omitempty"`
	Items            []domain.Item `json:"items,omitempty" yaml:"items,omitempty" validate:"dive"`
	AutoCompleteLast bool          `json:"auto_complete_last,omitempty" yaml:"auto_complete_last,omitempty"`
}

// MemberInput describes a member to add to a group
type MemberInput struct {
	Name    string            `json:"name" yaml:"name" validate:"required,max=100"`
	Email   string            `json:"email" yaml:"email" validate:"required,email"`
	UserID  string            `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Dietary domain.DietaryTag `json:"dietary,omitempty" yaml:"dietary,omitempty" validate:"omitempty,oneof=vegetarian non-vegetarian both"`
}

// GroupInput describes a group to create
type GroupInput struct {
	Name        string           `json:"name" yaml:"name" validate:"required,max=100"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty" validate:"max=500"`
	Type        domain.GroupType `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,oneof=trip meal event general"`
	Members     []MemberInput    `json:"members" yaml:"members" validate:"dive"`
}

// SettlementInput records a payment from one member to another
type SettlementInput struct {
	From        string          `json:"from" yaml:"from" validate:"required"`
	To          string          `json:"to" yaml:"to" validate:"required,nefield=From"`
	Amount      decimal.Decimal `json:"amount" yaml:"amount" validate:"gt=0"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty" validate:"max=255"`
}

// Validator runs struct rules and domain checks
type Validator struct {
	validate *validator.Validate
	splits   *split.Factory
}

// New creates a validator. It is safe for concurrent use.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	// Compare decimals numerically in gt/lt rules
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &Validator{validate: v, splits: split.NewSplitStrategyFactory()}
}

// Expense validates a new expense against the group's members.
// Structural problems are all reported together; the split constraints of
// the chosen strategy are checked only once the structure is sound.
func (v *Validator) Expense(in *ExpenseInput, members []domain.Member) error {
	errs := v.structErrors(in)

	if in.Amount.IsPositive() && !domain.IsCurrencyAmount(in.Amount) {
		errs = append(errs, domain.NewValidationError("amount", "must not have more than two decimal places"))
	}
	if strings.TrimSpace(in.Description) == "" && in.Description != "" {
		errs = append(errs, domain.NewValidationError("description", "must not be blank"))
	}

	byID := make(map[string]bool, len(members))
	for _, m := range members {
		byID[m.ID] = true
	}
	if in.PaidBy != "" && !byID[in.PaidBy] {
		errs = append(errs, &domain.UnknownMemberError{MemberID: in.PaidBy})
	}
	if len(in.Items) > 0 && in.Strategy != domain.StrategyItemWise {
		errs = append(errs, domain.NewValidationError("items", "only allowed for ITEM_WISE splits"))
	}
	if len(in.Participants) > 0 && in.Strategy != domain.StrategyEqual {
		errs = append(errs, domain.NewValidationError("participants", "only allowed for EQUAL splits"))
	}
	seen := make(map[string]bool, len(in.Participants))
	for i, id := range in.Participants {
		if seen[id] {
			errs = append(errs, domain.NewValidationError(fmt.Sprintf("participants[%d]", i), "duplicate member"))
			continue
		}
		seen[id] = true
		if !byID[id] {
			errs = append(errs, &domain.UnknownMemberError{MemberID: id})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	strategy, err := v.splits.Create(in.Strategy)
	if err != nil {
		return err
	}
	return strategy.Validate(SplitRequest(in, members))
}

// SplitRequest builds the split calculator input for an expense
func SplitRequest(in *ExpenseInput, members []domain.Member) split.Request {
	participants := members
	if in.Strategy == domain.StrategyEqual && len(in.Participants) > 0 {
		wanted := make(map[string]bool, len(in.Participants))
		for _, id := range in.Participants {
			wanted[id] = true
		}
		participants = make([]domain.Member, 0, len(in.Participants))
		for _, m := range members {
			if wanted[m.ID] {
				participants = append(participants, m)
			}
		}
	}

	return split.Request{
		Total:            in.Amount,
		Members:          participants,
		Shares:           in.Shares,
		Items:            in.Items,
		AutoCompleteLast: in.AutoCompleteLast,
	}
}

// Group validates a new group and its initial members
func (v *Validator) Group(in *GroupInput) error {
	errs := v.structErrors(in)
	if strings.TrimSpace(in.Name) == "" && in.Name != "" {
		errs = append(errs, domain.NewValidationError("name", "must not be blank"))
	}

	emails := make(map[string]bool, len(in.Members))
	for i, m := range in.Members {
		if strings.TrimSpace(m.Name) == "" && m.Name != "" {
			errs = append(errs, domain.NewValidationError(fmt.Sprintf("members[%d].name", i), "must not be blank"))
		}
		key := strings.ToLower(strings.TrimSpace(m.Email))
		if key == "" {
			continue
		}
		if emails[key] {
			errs = append(errs, domain.NewValidationError(fmt.Sprintf("members[%d].email", i), "duplicate email address"))
		}
		emails[key] = true
	}

	return errors.Join(errs...)
}

// Member validates a member being added to a group with existing members
func (v *Validator) Member(in *MemberInput, existing []domain.Member) error {
	errs := v.structErrors(in)
	if strings.TrimSpace(in.Name) == "" && in.Name != "" {
		errs = append(errs, domain.NewValidationError("name", "must not be blank"))
	}

	key := strings.ToLower(strings.TrimSpace(in.Email))
	for _, m := range existing {
		if key != "" && strings.ToLower(m.Email) == key {
			errs = append(errs, domain.NewValidationError("email", "duplicate email address"))
			break
		}
	}

	return errors.Join(errs...)
}

// Settlement validates a recorded payment between two members
func (v *Validator) Settlement(in *SettlementInput) error {
	errs := v.structErrors(in)
	if in.Amount.IsPositive() && !domain.IsCurrencyAmount(in.Amount) {
		errs = append(errs, domain.NewValidationError("amount", "must not have more than two decimal places"))
	}
	return errors.Join(errs...)
}

// structErrors translates validator failures into domain validation errors
func (v *Validator) structErrors(s interface{}) []error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []error{domain.NewValidationError("", err.Error())}
	}

	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, domain.NewValidationError(fieldPath(fe), describe(fe)))
	}
	return errs
}

// fieldPath drops the top-level struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "invalid email format"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "nefield":
		return "must differ from the payer"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
