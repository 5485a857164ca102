package validation

import (
	"testing"

	"github.com/diewo77/proposal-desk/internal/models"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     float64
		wantCode string
	}{
		{"integer", "120", 120, ""},
		{"decimal with spaces", " 80.5 ", 80.5, ""},
		{"empty is zero", "", 0, ""},
		{"letters", "abc", 0, "not_a_number"},
		{"negative", "-3", 0, "must_not_be_negative"},
		{"nan", "NaN", 0, "not_a_number"},
		{"inf", "Inf", 0, "not_a_number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := make(Violations)
			got := ParseCost("material_cost", tt.raw, v)
			if got != tt.want {
				t.Fatalf("ParseCost(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			if v["material_cost"] != tt.wantCode {
				t.Fatalf("violation = %q, want %q", v["material_cost"], tt.wantCode)
			}
		})
	}
}

func TestRequiredAndEmail(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	Email("client_email", "not-an-email", v)
	Email("other_email", "", v)
	if v["name"] != "required" || v["client_email"] != "invalid_email" {
		t.Fatalf("unexpected violations: %v", v)
	}
	if _, ok := v["other_email"]; ok {
		t.Fatalf("empty email should be left to Required")
	}
	if f, _ := v.First(); f != "client_email" {
		t.Fatalf("First() = %s", f)
	}
}

func TestOneOfTaxonomy(t *testing.T) {
	v := make(Violations)
	OneOfTaxonomy("category", models.SquareFeet, v)
	OneOfTaxonomy("other", "Gallons", v)
	if _, ok := v["category"]; ok {
		t.Fatalf("known tag rejected")
	}
	if v["other"] != "unknown_variable_category" {
		t.Fatalf("unknown tag accepted: %v", v)
	}
}

func TestParseAmount(t *testing.T) {
	v := make(Violations)
	if got := ParseAmount("payment_amount", "$1,250.00", v); got != 1250 || !v.Empty() {
		t.Fatalf("got %v %v", got, v)
	}
	ParseAmount("payment_amount", "lots", v)
	if v["payment_amount"] != "invalid_amount" {
		t.Fatalf("expected invalid_amount, got %v", v)
	}
}
