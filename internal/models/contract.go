package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Contract binds a proposal to parties, dates, payment terms and signatures.
type Contract struct {
	ID                  int64       `json:"id"`
	Proposal            ProposalRef `json:"proposal"`
	Title               string      `json:"contract_title"`
	ContractorName      string      `json:"contractor_name"`
	ContractorCompany   string      `json:"contractor_company"`
	TermsAndConditions  string      `json:"terms_and_conditions"`
	Scope               string      `json:"scope"`
	PaymentTerms        string      `json:"payment_terms"`
	PaymentAmount       Money       `json:"payment_amount"`
	StartDate           Date        `json:"start_date"`
	EndDate             Date        `json:"end_date"`
	AdditionalNotes     string      `json:"additional_notes,omitempty"`
	ClientAddress       string      `json:"client_address"`
	ClientSignature     string      `json:"client_signature"`
	ClientInitials      string      `json:"client_initials"`
	ContractorSignature string      `json:"contractor_signature"`
	ContractorInitials  string      `json:"contractor_initials"`
	CreatedAt           Timestamp   `json:"created_at"`
	ClientSignedAt      *Timestamp  `json:"client_signed_at,omitempty"`
	ContractorSignedAt  *Timestamp  `json:"contractor_signed_at,omitempty"`
}

// ContractInput is the create body. The proposal is referenced by id.
type ContractInput struct {
	Proposal            int64   `json:"proposal"`
	Title               string  `json:"contract_title"`
	ContractorName      string  `json:"contractor_name"`
	ContractorCompany   string  `json:"contractor_company"`
	TermsAndConditions  string  `json:"terms_and_conditions"`
	ClientSignature     string  `json:"client_signature"`
	ClientInitials      string  `json:"client_initials"`
	ContractorSignature string  `json:"contractor_signature"`
	ContractorInitials  string  `json:"contractor_initials"`
	PaymentTerms        string  `json:"payment_terms"`
	StartDate           Date    `json:"start_date"`
	EndDate             Date    `json:"end_date"`
	PaymentAmount       float64 `json:"payment_amount"`
	Scope               string  `json:"scope"`
	AdditionalNotes     string  `json:"additional_notes"`
	ClientAddress       string  `json:"client_address"`
}

// ClientName is the client of the underlying proposal.
func (c Contract) ClientName() string { return c.Proposal.ClientName }

// FileName is the download name of the contract PDF.
func (c Contract) FileName() string {
	return DocumentFileName(c.Title, "pdf")
}

// DocumentFileName builds "<title>.<ext>", replacing path separators.
func DocumentFileName(title, ext string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		name = "document"
	}
	name = strings.NewReplacer("/", "-", "\\", "-", "\"", "'").Replace(name)
	return name + "." + ext
}

// ErrInvalidAmount is returned by ParseMoney for input that is not a finite
// non-negative number.
var ErrInvalidAmount = errors.New("invalid amount")

// Money is a payment amount. The backend serialises decimals as either a JSON
// number or a string.
type Money float64

func (m Money) Decimal() decimal.Decimal { return Amount(float64(m)) }

func (m Money) String() string { return FormatMoney(m.Decimal()) }

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*m = 0
			return nil
		}
		v, err := ParseMoney(s)
		if err != nil {
			return fmt.Errorf("payment_amount %q: %w", s, err)
		}
		*m = Money(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Money(f)
	return nil
}

// ParseMoney parses user input such as "5000", "$5,000.50" or " 12.5 ".
func ParseMoney(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}
