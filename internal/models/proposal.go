package models

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Proposal is a client-facing quote built from categories and variables.
type Proposal struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ClientName  string     `json:"client_name"`
	ClientEmail string     `json:"client_email"`
	Categories  []Category `json:"proposal_categories"`
	Variables   []Variable `json:"proposal_variables"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   Timestamp  `json:"updated_at"`
}

// ProposalInput is the create and update body.
type ProposalInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ClientName  string          `json:"client_name"`
	ClientEmail string          `json:"client_email"`
	Categories  []CategoryInput `json:"proposal_categories"`
	Variables   []VariableInput `json:"proposal_variables"`
}

// Total sums every category of the proposal.
func (p Proposal) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, c := range p.Categories {
		sum = sum.Add(c.Total())
	}
	return sum
}

// ProposalRef is the proposal field of a contract. The backend sends either
// the nested proposal or only its id.
type ProposalRef struct {
	Proposal
}

func (r *ProposalRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ProposalRef{}
		return nil
	}
	if len(data) > 0 && data[0] != '{' {
		var id int64
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = ProposalRef{Proposal: Proposal{ID: id}}
		return nil
	}
	var p Proposal
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	r.Proposal = p
	return nil
}
