package models

import "github.com/shopspring/decimal"

// Category groups elements. Custom categories created inside a draft carry a
// negative id until the backend persists them.
type Category struct {
	ID       int64     `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string    `json:"name" yaml:"name"`
	Elements []Element `json:"elements" yaml:"elements"`
}

// CategoryInput is the body sent when creating a category or embedding a new
// one in a template or proposal.
type CategoryInput struct {
	Name     string         `json:"name"`
	Elements []ElementInput `json:"elements"`
}

// Total sums the element totals.
func (c Category) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range c.Elements {
		sum = sum.Add(e.Total())
	}
	return sum
}

// MaterialTotal sums the material costs only.
func (c Category) MaterialTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range c.Elements {
		sum = sum.Add(e.Material())
	}
	return sum
}

// LaborTotal sums the labor costs only.
func (c Category) LaborTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range c.Elements {
		sum = sum.Add(e.Labor())
	}
	return sum
}

// Clone returns a copy that shares no element storage with c.
func (c Category) Clone() Category {
	out := c
	if c.Elements != nil {
		out.Elements = append([]Element(nil), c.Elements...)
	}
	return out
}

// Element looks up an element by id.
func (c Category) Element(id int64) (Element, bool) {
	for _, e := range c.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}

func (c Category) Input() CategoryInput {
	in := CategoryInput{Name: c.Name, Elements: make([]ElementInput, 0, len(c.Elements))}
	for _, e := range c.Elements {
		in.Elements = append(in.Elements, e.Input())
	}
	return in
}

// IsCustom reports whether the category has not been persisted yet.
func (c Category) IsCustom() bool { return c.ID <= 0 }
