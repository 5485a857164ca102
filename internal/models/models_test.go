package models

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestElement_Total(t *testing.T) {
	tests := []struct {
		name string
		el   Element
		want string
	}{
		{"oak plank", Element{Name: "Oak Plank", MaterialCost: 120, LaborCost: 80}, "$200.00"},
		{"fractions", Element{MaterialCost: 0.1, LaborCost: 0.2}, "$0.30"},
		{"nan counts as zero", Element{MaterialCost: math.NaN(), LaborCost: 5}, "$5.00"},
		{"inf counts as zero", Element{MaterialCost: 3, LaborCost: math.Inf(1)}, "$3.00"},
		{"empty", Element{}, "$0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMoney(tt.el.Total()); got != tt.want {
				t.Fatalf("Total() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCategory_Total(t *testing.T) {
	c := Category{Name: "Flooring", Elements: []Element{
		{ID: 1, Name: "Oak Plank", MaterialCost: 120, LaborCost: 80},
		{ID: 2, Name: "Underlay", MaterialCost: 10.25, LaborCost: 4.5},
	}}
	if got := FormatMoney(c.Total()); got != "$214.75" {
		t.Fatalf("Total() = %s", got)
	}
	if got := FormatMoney(c.MaterialTotal()); got != "$130.25" {
		t.Fatalf("MaterialTotal() = %s", got)
	}
	if got := FormatMoney(c.LaborTotal()); got != "$84.50" {
		t.Fatalf("LaborTotal() = %s", got)
	}
}

func TestCategory_CloneIsIndependent(t *testing.T) {
	c := Category{ID: 1, Elements: []Element{{ID: 1, MaterialCost: 1}}}
	cp := c.Clone()
	cp.Elements[0].MaterialCost = 99
	if c.Elements[0].MaterialCost != 1 {
		t.Fatalf("clone shares element storage")
	}
}

func TestGroupVariables(t *testing.T) {
	vars := []Variable{
		{ID: 1, Name: "Doors", Category: Count},
		{ID: 2, Name: "Wall", Category: LinearFeet},
		{ID: 3, Name: "Odd", Category: "Gallons"},
		{ID: 4, Name: "Trim", Category: LinearFeet},
		{ID: 5, Name: "Floor", Category: SquareFeet},
	}
	groups, unmatched := GroupVariables(vars)

	wantOrder := []VariableCategory{LinearFeet, SquareFeet, Count}
	if len(groups) != len(wantOrder) {
		t.Fatalf("got %d groups, want %d", len(groups), len(wantOrder))
	}
	total := len(unmatched)
	for i, g := range groups {
		if g.Category != wantOrder[i] {
			t.Fatalf("group %d = %s, want %s", i, g.Category, wantOrder[i])
		}
		if len(g.Variables) == 0 {
			t.Fatalf("empty group %s emitted", g.Category)
		}
		total += len(g.Variables)
	}
	if total != len(vars) {
		t.Fatalf("partition lost variables: %d != %d", total, len(vars))
	}
	if groups[0].Variables[0].Name != "Wall" || groups[0].Variables[1].Name != "Trim" {
		t.Fatalf("input order not preserved: %+v", groups[0].Variables)
	}
	if len(unmatched) != 1 || unmatched[0].ID != 3 {
		t.Fatalf("unmatched = %+v", unmatched)
	}
}

func TestGroupVariables_Empty(t *testing.T) {
	groups, unmatched := GroupVariables(nil)
	if len(groups) != 0 || len(unmatched) != 0 {
		t.Fatalf("expected nothing, got %v %v", groups, unmatched)
	}
}

func TestDate_JSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-03-05T17:45:00Z"`), &d); err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-03-05"` {
		t.Fatalf("marshal = %s", b)
	}
	if d.Long() != "March 5, 2024" {
		t.Fatalf("Long() = %s", d.Long())
	}
	var empty Date
	if err := json.Unmarshal([]byte(`null`), &empty); err != nil || !empty.IsZero() {
		t.Fatalf("null should decode to zero date, err=%v", err)
	}
}

func TestNewDate_DropsTime(t *testing.T) {
	d := NewDate(time.Date(2024, 1, 2, 23, 59, 0, 0, time.FixedZone("X", 3600)))
	if d.String() != "2024-01-02" || d.Hour() != 0 {
		t.Fatalf("NewDate kept time of day: %v", d.Time)
	}
}

func TestContract_DecodesBackendShapes(t *testing.T) {
	body := `{
		"id": 7,
		"proposal": {"id": 3, "name": "Kitchen", "client_name": "Jane Doe", "proposal_categories": [], "proposal_variables": []},
		"contract_title": "Kitchen remodel",
		"payment_amount": "5000.50",
		"start_date": "2024-01-01",
		"end_date": "2024-04-01",
		"created_at": "2024-01-01T10:00:00.123456"
	}`
	var c Contract
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatal(err)
	}
	if c.ClientName() != "Jane Doe" || c.Proposal.ID != 3 {
		t.Fatalf("proposal not decoded: %+v", c.Proposal)
	}
	if c.PaymentAmount.String() != "$5000.50" {
		t.Fatalf("payment amount = %s", c.PaymentAmount)
	}
	if c.CreatedAt.IsZero() {
		t.Fatalf("created_at not decoded")
	}

	var byID Contract
	if err := json.Unmarshal([]byte(`{"id": 1, "proposal": 9, "payment_amount": 12}`), &byID); err != nil {
		t.Fatal(err)
	}
	if byID.Proposal.ID != 9 || float64(byID.PaymentAmount) != 12 {
		t.Fatalf("id-only proposal: %+v", byID)
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"5000", 5000, false},
		{"$5,000.50", 5000.5, false},
		{" 12.5 ", 12.5, false},
		{"", 0, true},
		{"abc", 0, true},
		{"-1", 0, true},
		{"NaN", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseMoney(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseMoney(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDocumentFileName(t *testing.T) {
	if got := DocumentFileName("Kitchen / Bath", "pdf"); got != "Kitchen - Bath.pdf" {
		t.Fatalf("got %q", got)
	}
	if got := DocumentFileName("  ", "pdf"); got != "document.pdf" {
		t.Fatalf("got %q", got)
	}
}
