package settlement

import (
	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/internal/validation"
)

// RecordSettlementRequest represents the request to record a payment between two members
type RecordSettlementRequest = validation.SettlementInput

// TransferResponse represents one suggested payment
type TransferResponse struct {
	From     string `json:"from"`
	FromName string `json:"from_name,omitempty"`
	To       string `json:"to"`
	ToName   string `json:"to_name,omitempty"`
	Amount   string `json:"amount"`
	Message  string `json:"message"` // e.g., "Bob pays Alice 30.00"
}

// NetBalanceResponse represents a member's net position
type NetBalanceResponse struct {
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
	Net        string `json:"net"`
}

// SuggestionResponse is the response for GET /groups/{id}/settlement
type SuggestionResponse struct {
	Settled   bool                  `json:"settled"`
	Transfers []*TransferResponse   `json:"transfers"`
	Balances  []*NetBalanceResponse `json:"balances"`
}

// ToSuggestionResponse converts a Suggestion to its DTO
func ToSuggestionResponse(s *Suggestion) *SuggestionResponse {
	resp := &SuggestionResponse{
		Settled:   len(s.Transfers) == 0,
		Transfers: make([]*TransferResponse, len(s.Transfers)),
		Balances:  ToNetBalanceResponses(s.Balances),
	}
	for i, t := range s.Transfers {
		resp.Transfers[i] = &TransferResponse{
			From:     t.From,
			FromName: t.FromName,
			To:       t.To,
			ToName:   t.ToName,
			Amount:   domain.FormatAmount(t.Amount),
			Message:  displayName(t.FromName, t.From) + " pays " + displayName(t.ToName, t.To) + " " + domain.FormatAmount(t.Amount),
		}
	}
	return resp
}

// ToNetBalanceResponses converts balances to their DTOs
func ToNetBalanceResponses(balances []domain.Balance) []*NetBalanceResponse {
	out := make([]*NetBalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = &NetBalanceResponse{
			MemberID:   b.MemberID,
			MemberName: b.MemberName,
			Net:        domain.FormatAmount(b.Net),
		}
	}
	return out
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
