package validation

import (
	"math"
	"net/mail"
	"strconv"
	"strings"

	"github.com/diewo77/proposal-desk/internal/models"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// First returns one violation in a stable order (sorted by field).
func (v Violations) First() (field, code string) {
	for f, c := range v {
		if field == "" || f < field {
			field, code = f, c
		}
	}
	return field, code
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		v[field] = "not_a_number"
		return
	}
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func Email(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v[field] = "invalid_email"
	}
}

func OneOfTaxonomy(field string, c models.VariableCategory, v Violations) {
	if !c.Known() {
		v[field] = "unknown_variable_category"
	}
}

// ParseCost parses a cost typed by a user. Empty input is zero; non-numeric,
// non-finite and negative input records a violation.
func ParseCost(field, raw string, v Violations) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		v[field] = "not_a_number"
		return 0
	}
	NonNegativeFloat(field, f, v)
	if _, bad := v[field]; bad {
		return 0
	}
	return f
}

// ParseAmount parses a payment amount such as "$5,000".
func ParseAmount(field, raw string, v Violations) float64 {
	f, err := models.ParseMoney(raw)
	if err != nil {
		v[field] = "invalid_amount"
		return 0
	}
	return f
}
