package group

import (
	"time"

	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/validation"
)

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest = validation.GroupInput

// AddMemberRequest represents the request to add a member to a group
type AddMemberRequest = validation.MemberInput

// GroupResponse represents the response for a group
type GroupResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Type        domain.GroupType  `json:"type"`
	CreatedBy   string            `json:"created_by,omitempty"`
	CreatedAt   string            `json:"created_at"`
	Members     []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID       string            `json:"id"`
	UserID   string            `json:"user_id,omitempty"`
	Name     string            `json:"name"`
	Email    string            `json:"email,omitempty"`
	Dietary  domain.DietaryTag `json:"dietary"`
	Balance  string            `json:"balance"`
	JoinedAt string            `json:"joined_at"`
}

// BalanceResponse is one member's position in a group
type BalanceResponse struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Paid       string `json:"paid"`
	Owed       string `json:"owed"`
	Net        string `json:"net"`
}

// SummaryResponse aggregates a group's expenses
type SummaryResponse struct {
	Total    string `json:"total"`
	Count    int    `json:"count"`
	Average  string `json:"average"`
	Largest  string `json:"largest"`
	Smallest string `json:"smallest"`
}

// BalanceReportResponse is the response for GET /groups/{id}/balances
type BalanceReportResponse struct {
	Balances []*BalanceResponse `json:"balances"`
	Summary  SummaryResponse    `json:"summary"`
}

// ToGroupResponse converts a group and its members to a GroupResponse DTO
func ToGroupResponse(g *domain.Group, members []domain.Member) *GroupResponse {
	resp := &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Type:        g.Type,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
	}
	if members != nil {
		resp.Members = make([]*MemberResponse, len(members))
		for i := range members {
			resp.Members[i] = ToMemberResponse(&members[i])
		}
	}
	return resp
}

// ToMemberResponse converts a Member to a MemberResponse DTO
func ToMemberResponse(m *domain.Member) *MemberResponse {
	return &MemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		Name:     m.Name,
		Email:    m.Email,
		Dietary:  m.Dietary,
		Balance:  domain.FormatAmount(m.Balance),
		JoinedAt: m.JoinedAt.Format(time.RFC3339),
	}
}

// ToBalanceReportResponse converts a BalanceReport to its DTO
func ToBalanceReportResponse(r *BalanceReport) *BalanceReportResponse {
	resp := &BalanceReportResponse{
		Balances: make([]*BalanceResponse, len(r.Balances)),
		Summary: SummaryResponse{
			Total:    domain.FormatAmount(r.Summary.Total),
			Count:    r.Summary.Count,
			Average:  domain.FormatAmount(r.Summary.Average),
			Largest:  domain.FormatAmount(r.Summary.Largest),
			Smallest: domain.FormatAmount(r.Summary.Smallest),
		},
	}
	for i, b := range r.Balances {
		resp.Balances[i] = &BalanceResponse{
			MemberID:   b.MemberID,
			MemberName: b.MemberName,
			Paid:       domain.FormatAmount(b.Paid),
			Owed:       domain.FormatAmount(b.Owed),
			Net:        domain.FormatAmount(b.Net),
		}
	}
	return resp
}
