package expense

import (
	"time"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/validation"
)

// CreateExpenseRequest represents the request to create or preview an expense
type CreateExpenseRequest struct {
	GroupID string `json:"group_id"`
	validation.ExpenseInput
}

// SettleSplitRequest represents the request to flag a split as settled
type SettleSplitRequest struct {
	Settled *bool `json:"settled,omitempty"`
}

// ExpenseResponse represents the response for an expense
type ExpenseResponse struct {
	ID          string               `json:"id,omitempty"`
	GroupID     string               `json:"group_id"`
	PaidBy      string               `json:"paid_by"`
	Description string               `json:"description"`
	Amount      string               `json:"amount"`
	SplitType   domain.Strategy      `json:"split_type"`
	Source      domain.ExpenseSource `json:"source"`
	CreatedAt   string               `json:"created_at,omitempty"`
	Items       []*ItemResponse      `json:"items,omitempty"`
	Splits      []*SplitResponse     `json:"splits"`
	Balances    []*BalanceResponse   `json:"balances,omitempty"`
}

// SplitResponse represents one member's share of an expense
type SplitResponse struct {
	MemberID   string  `json:"member_id"`
	MemberName string  `json:"member_name,omitempty"`
	Amount     string  `json:"amount"`
	Percentage *string `json:"percentage,omitempty"`
	Settled    bool    `json:"settled"`
}

// ItemResponse represents a receipt line of an item-wise expense
type ItemResponse struct {
	Name       string              `json:"name"`
	Price      string              `json:"price"`
	Category   domain.ItemCategory `json:"category"`
	AssignedTo []string            `json:"assigned_to"`
}

// BalanceResponse is a member's net position after a change
type BalanceResponse struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Net        string `json:"net"`
}

// ToExpenseResponse converts an Expense to an ExpenseResponse DTO
func ToExpenseResponse(e *domain.Expense) *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PaidBy:      e.PaidBy,
		Description: e.Description,
		Amount:      domain.FormatAmount(e.Amount),
		SplitType:   e.Strategy,
		Source:      e.Source,
		Splits:      make([]*SplitResponse, len(e.Splits)),
	}
	if !e.CreatedAt.IsZero() {
		resp.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}

	for i, s := range e.Splits {
		resp.Splits[i] = &SplitResponse{
			MemberID:   s.MemberID,
			MemberName: s.MemberName,
			Amount:     domain.FormatAmount(s.Amount),
			Settled:    s.Settled,
		}
		if s.Percentage.Valid {
			p := s.Percentage.Decimal.StringFixed(2)
			resp.Splits[i].Percentage = &p
		}
	}

	for _, item := range e.Items {
		resp.Items = append(resp.Items, &ItemResponse{
			Name:       item.Name,
			Price:      domain.FormatAmount(item.Price),
			Category:   item.Category,
			AssignedTo: item.AssignedTo,
		})
	}
	return resp
}

// ToBalanceResponses converts balances to their DTOs
func ToBalanceResponses(balances []domain.Balance) []*BalanceResponse {
	out := make([]*BalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = &BalanceResponse{
			MemberID:   b.MemberID,
			MemberName: b.MemberName,
			Net:        domain.FormatAmount(b.Net),
		}
	}
	return out
}
