// Package document builds the renderer-neutral tree of a contract or proposal.
// Section order, section numbers and every displayed amount are decided here;
// the HTML, PDF and spreadsheet renderers only lay the tree out.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindContract Kind = "contract"
	KindProposal Kind = "proposal"
)

type SectionKind string

const (
	SectionTerm         SectionKind = "term"
	SectionScope        SectionKind = "scope"
	SectionCategories   SectionKind = "categories"
	SectionCompensation SectionKind = "compensation"
	SectionTerms        SectionKind = "terms"
	SectionNotes        SectionKind = "notes"
	SectionVariables    SectionKind = "variables"
	SectionOverview     SectionKind = "overview"
	SectionCostSummary  SectionKind = "cost_summary"
)

// Span is a run of text inside a paragraph.
type Span struct {
	Text string
	Bold bool
}

type Paragraph []Span

// Plain wraps s in a single regular span.
func Plain(s string) Paragraph { return Paragraph{{Text: s}} }

func (p Paragraph) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteString(s.Text)
	}
	return b.String()
}

type CostRow struct {
	Name     string
	Material decimal.Decimal
	Labor    decimal.Decimal
	Total    decimal.Decimal
}

func (r CostRow) MaterialText() string { return models.FormatMoney(r.Material) }
func (r CostRow) LaborText() string    { return models.FormatMoney(r.Labor) }
func (r CostRow) TotalText() string    { return models.FormatMoney(r.Total) }

// CostTable is one category with its element rows.
type CostTable struct {
	Category string
	Rows     []CostRow
	Total    decimal.Decimal
}

func (t CostTable) TotalText() string { return models.FormatMoney(t.Total) }

type ValueRow struct {
	Name  string
	Value float64
}

func (r ValueRow) ValueText() string { return models.FormatQuantity(r.Value) }

// ValueGroup is one taxonomy bucket of variables.
type ValueGroup struct {
	Category string
	Rows     []ValueRow
}

type SummaryRow struct {
	Label  string
	Amount decimal.Decimal
	Strong bool
}

func (r SummaryRow) AmountText() string { return models.FormatMoney(r.Amount) }

// Section is a numbered block of the document.
type Section struct {
	Number  int
	Kind    SectionKind
	Title   string
	Body    []Paragraph
	Costs   []CostTable
	Values  []ValueGroup
	Summary []SummaryRow
}

// Heading is the numbered title, e.g. "3. COMPENSATION".
func (s Section) Heading() string {
	return fmt.Sprintf("%d. %s", s.Number, s.Title)
}

// SignatureBlock is one party's signing area.
type SignatureBlock struct {
	Label       string
	Image       string
	Name        string
	Affiliation string
	Initials    string
	Date        string
}

func (b SignatureBlock) HasImage() bool { return b.Image != "" }

type Document struct {
	Kind       Kind
	Title      string
	Intro      []Paragraph
	Sections   []Section
	Signatures []SignatureBlock
	Footer     string
	FileName   string
}

// Headings lists the numbered section headings in order.
func (d Document) Headings() []string {
	out := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		out = append(out, s.Heading())
	}
	return out
}

// Section returns the first section of the given kind.
func (d Document) Section(kind SectionKind) (Section, bool) {
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// sections numbers sections as they are appended, so optional sections only
// take a number when present.
type sections struct {
	list []Section
}

func (s *sections) add(sec Section) {
	sec.Number = len(s.list) + 1
	s.list = append(s.list, sec)
}

func costTables(categories []models.Category) []CostTable {
	tables := make([]CostTable, 0, len(categories))
	for _, c := range categories {
		t := CostTable{Category: c.Name, Total: c.Total()}
		for _, e := range c.Elements {
			t.Rows = append(t.Rows, CostRow{
				Name:     e.Name,
				Material: e.Material(),
				Labor:    e.Labor(),
				Total:    e.Total(),
			})
		}
		tables = append(tables, t)
	}
	return tables
}

func valueGroups(vars []models.Variable) []ValueGroup {
	groups, _ := models.GroupVariables(vars)
	out := make([]ValueGroup, 0, len(groups))
	for _, g := range groups {
		vg := ValueGroup{Category: string(g.Category)}
		for _, v := range g.Variables {
			vg.Rows = append(vg.Rows, ValueRow{Name: v.Name, Value: v.Value})
		}
		out = append(out, vg)
	}
	return out
}

// footer is the generation stamp printed at the bottom of every document.
func footer(now time.Time) string {
	return "Document generated on " + now.Format("January 2, 2006 at 3:04 PM")
}
