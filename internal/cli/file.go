package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/expense/split"
	"github.com/fkhayef/splitledger/internal/ledger"
	"github.com/fkhayef/splitledger/internal/validation"
)

// LedgerFile is a group and its expenses described in YAML
type LedgerFile struct {
	Group    string         `yaml:"group"`
	Members  []MemberEntry  `yaml:"members"`
	Expenses []ExpenseEntry `yaml:"expenses"`
}

// MemberEntry is one member of a ledger file. ID defaults to Name.
type MemberEntry struct {
	ID      string            `yaml:"id,omitempty"`
	Name    string            `yaml:"name"`
	Email   string            `yaml:"email,omitempty"`
	Dietary domain.DietaryTag `yaml:"dietary,omitempty"`
}

// ExpenseEntry is one expense of a ledger file. ID defaults to its position.
type ExpenseEntry struct {
	ID                      string `yaml:"id,omitempty"`
	validation.ExpenseInput `yaml:",inline"`
}

// LoadFile reads a ledger file from disk, or from stdin when path is "-"
func LoadFile(path string, stdin io.Reader) (*LedgerFile, error) {
	if path == "-" {
		return ParseFile(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	return ParseFile(f)
}

// ParseFile decodes a ledger file, rejecting unknown keys
func ParseFile(r io.Reader) (*LedgerFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file LedgerFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("ledger file is empty")
		}
		return nil, fmt.Errorf("failed to parse ledger file: %w", err)
	}
	if len(file.Members) == 0 {
		return nil, domain.NewValidationError("members", "at least one member is required")
	}
	return &file, nil
}

// GroupMembers converts the file's members into domain members
func (f *LedgerFile) GroupMembers() []domain.Member {
	members := make([]domain.Member, len(f.Members))
	for i, m := range f.Members {
		id := m.ID
		if id == "" {
			id = m.Name
		}
		dietary := m.Dietary
		if dietary == "" {
			dietary = domain.DietaryBoth
		}
		members[i] = domain.Member{ID: id, Name: m.Name, Email: m.Email, Dietary: dietary}
	}
	return members
}

// Ledger is a ledger file with every expense validated and split
type Ledger struct {
	Name     string
	Members  []domain.Member
	Expenses []domain.Expense
}

// Build validates and splits every expense in the file
func (f *LedgerFile) Build(v *validation.Validator, factory *split.Factory) (*Ledger, error) {
	members := f.GroupMembers()
	if _, err := ledger.NewBalances(members); err != nil {
		return nil, err
	}

	expenses := make([]domain.Expense, 0, len(f.Expenses))
	for i := range f.Expenses {
		entry := &f.Expenses[i]
		id := entry.ID
		if id == "" {
			id = fmt.Sprintf("expense-%d", i+1)
		}

		if err := v.Expense(&entry.ExpenseInput, members); err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		splits, err := factory.Compute(entry.Strategy, validation.SplitRequest(&entry.ExpenseInput, members))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}

		source := entry.Source
		if source == "" {
			source = domain.SourceManual
		}
		expenses = append(expenses, domain.Expense{
			ID:          id,
			Description: entry.Description,
			Amount:      entry.Amount,
			PaidBy:      entry.PaidBy,
			Strategy:    entry.Strategy,
			Source:      source,
			Items:       entry.Items,
			Splits:      splits,
		})
	}

	return &Ledger{Name: f.Group, Members: members, Expenses: expenses}, nil
}
