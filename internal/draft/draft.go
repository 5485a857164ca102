// Package draft holds the state of a template, proposal or contract while it
// is being composed. A Draft is a value: every change goes through Reduce,
// which returns a new Draft and leaves the input untouched.
package draft

import (
	"time"

	"github.com/diewo77/proposal-desk/internal/models"
)

type Kind string

const (
	KindTemplate Kind = "template"
	KindProposal Kind = "proposal"
	KindContract Kind = "contract"
)

func (k Kind) Valid() bool {
	return k == KindTemplate || k == KindProposal || k == KindContract
}

const DefaultTermsAndConditions = `1. SERVICES: The Contractor agrees to provide the services described in the Scope of Work section.

2. PAYMENT: The Client agrees to pay the Contractor as specified in the Payment Terms section.

3. TERM: This Agreement shall commence on the Start Date and continue until the End Date, unless terminated earlier.

4. CONFIDENTIALITY: The Contractor agrees to maintain the confidentiality of all proprietary information.

5. INTELLECTUAL PROPERTY: All work product created by the Contractor shall be the property of the Client.

6. INDEPENDENT CONTRACTOR: The Contractor is an independent contractor and not an employee of the Client.

7. TERMINATION: Either party may terminate this Agreement with 30 days written notice.

8. GOVERNING LAW: This Agreement shall be governed by the laws of the State of New York.`

// Defaults pre-fills a new contract draft.
type Defaults struct {
	ContractorName    string
	ContractorCompany string
	ClientAddress     string
	PaymentAmount     string
	PaymentTerms      string
	Scope             string
}

// Fields are the header fields of every kind. Only the ones relevant to the
// draft's kind are validated and submitted.
type Fields struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	ClientName  string `json:"client_name,omitempty"`
	ClientEmail string `json:"client_email,omitempty"`

	ContractTitle       string      `json:"contract_title,omitempty"`
	ContractorName      string      `json:"contractor_name,omitempty"`
	ContractorCompany   string      `json:"contractor_company,omitempty"`
	ContractorInitials  string      `json:"contractor_initials,omitempty"`
	ContractorSignature string      `json:"contractor_signature,omitempty"`
	ClientAddress       string      `json:"client_address,omitempty"`
	ClientInitials      string      `json:"client_initials,omitempty"`
	ClientSignature     string      `json:"client_signature,omitempty"`
	StartDate           models.Date `json:"start_date"`
	EndDate             models.Date `json:"end_date"`
	PaymentAmount       string      `json:"payment_amount,omitempty"`
	PaymentTerms        string      `json:"payment_terms,omitempty"`
	Scope               string      `json:"scope,omitempty"`
	TermsAndConditions  string      `json:"terms_and_conditions,omitempty"`
	AdditionalNotes     string      `json:"additional_notes,omitempty"`
}

// Draft is the aggregate under construction.
//
// Selected categories keep the definition fetched from the backend. Cost edits
// live in Costs keyed by category id then element id, and variable values in
// Values keyed by variable id, so fetched definitions are never edited in
// place.
type Draft struct {
	Kind             Kind                                          `json:"kind"`
	TargetID         int64                                         `json:"target_id,omitempty"`
	Fields           Fields                                        `json:"fields"`
	Categories       []models.Category                             `json:"categories"`
	CustomCategories []models.Category                             `json:"custom_categories"`
	Variables        map[models.VariableCategory][]models.Variable `json:"variables"`
	CustomVariables  []models.Variable                             `json:"custom_variables"`
	Costs            map[int64]map[int64]models.Element            `json:"costs"`
	Values           map[int64]float64                             `json:"values"`
	LastTempID       int64                                         `json:"last_temp_id"`
	// Version is the stored revision the draft was loaded from.
	Version int64 `json:"-"`
}

// New returns an empty draft. Contract drafts start with the defaults and a
// three month term beginning today.
func New(kind Kind, now time.Time, def Defaults) Draft {
	d := Draft{Kind: kind}
	d.init()
	if kind == KindContract {
		d.Fields.ContractTitle = "Service Agreement Contract"
		d.Fields.ContractorName = def.ContractorName
		d.Fields.ContractorCompany = def.ContractorCompany
		d.Fields.ClientAddress = def.ClientAddress
		d.Fields.PaymentAmount = def.PaymentAmount
		d.Fields.PaymentTerms = def.PaymentTerms
		d.Fields.Scope = def.Scope
		d.Fields.TermsAndConditions = DefaultTermsAndConditions
		d.Fields.StartDate = models.NewDate(now)
		d.Fields.EndDate = models.NewDate(now.AddDate(0, 3, 0))
	}
	return d
}

func (d *Draft) init() {
	if d.Variables == nil {
		d.Variables = map[models.VariableCategory][]models.Variable{}
	}
	if d.Costs == nil {
		d.Costs = map[int64]map[int64]models.Element{}
	}
	if d.Values == nil {
		d.Values = map[int64]float64{}
	}
}

// Clone deep-copies d.
func (d Draft) Clone() Draft {
	out := d
	out.Categories = cloneCategories(d.Categories)
	out.CustomCategories = cloneCategories(d.CustomCategories)
	out.CustomVariables = append([]models.Variable(nil), d.CustomVariables...)
	out.Variables = make(map[models.VariableCategory][]models.Variable, len(d.Variables))
	for tag, vars := range d.Variables {
		out.Variables[tag] = append([]models.Variable(nil), vars...)
	}
	out.Costs = make(map[int64]map[int64]models.Element, len(d.Costs))
	for catID, overlay := range d.Costs {
		inner := make(map[int64]models.Element, len(overlay))
		for elID, el := range overlay {
			inner[elID] = el
		}
		out.Costs[catID] = inner
	}
	out.Values = make(map[int64]float64, len(d.Values))
	for id, v := range d.Values {
		out.Values[id] = v
	}
	return out
}

func cloneCategories(in []models.Category) []models.Category {
	if in == nil {
		return nil
	}
	out := make([]models.Category, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func (d *Draft) nextTempID() int64 {
	d.LastTempID--
	return d.LastTempID
}

// ResolvedCategories returns the selected categories with cost edits applied,
// followed by the custom categories.
func (d Draft) ResolvedCategories() []models.Category {
	out := make([]models.Category, 0, len(d.Categories)+len(d.CustomCategories))
	for _, c := range d.Categories {
		rc := c.Clone()
		overlay := d.Costs[c.ID]
		for i, e := range rc.Elements {
			if edited, ok := overlay[e.ID]; ok && e.ID != 0 {
				rc.Elements[i].MaterialCost = edited.MaterialCost
				rc.Elements[i].LaborCost = edited.LaborCost
			}
		}
		out = append(out, rc)
	}
	for _, c := range d.CustomCategories {
		out = append(out, c.Clone())
	}
	return out
}

// AllVariables returns the selected variables in taxonomy order followed by
// the custom ones, each carrying its current value.
func (d Draft) AllVariables() []models.Variable {
	var out []models.Variable
	for _, tag := range models.VariableTaxonomy {
		for _, v := range d.Variables[tag] {
			out = append(out, d.withValue(v))
		}
	}
	for _, v := range d.CustomVariables {
		out = append(out, d.withValue(v))
	}
	return out
}

func (d Draft) withValue(v models.Variable) models.Variable {
	if val, ok := d.Values[v.ID]; ok {
		v.Value = val
	}
	return v
}

func (d Draft) hasVariable(id int64) bool {
	for _, vars := range d.Variables {
		for _, v := range vars {
			if v.ID == id {
				return true
			}
		}
	}
	for _, v := range d.CustomVariables {
		if v.ID == id {
			return true
		}
	}
	return false
}

func (d Draft) categoryIndex(id int64) int {
	for i, c := range d.Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (d Draft) customCategoryIndex(id int64) int {
	for i, c := range d.CustomCategories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Title is a short label for listings.
func (d Draft) Title() string {
	switch d.Kind {
	case KindContract:
		return d.Fields.ContractTitle
	default:
		return d.Fields.Name
	}
}
