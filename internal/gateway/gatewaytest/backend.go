// Package gatewaytest runs an in-memory REST backend with the same resource
// surface as the real one, for tests and local development.
package gatewaytest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/proposal-desk/internal/models"
	"github.com/diewo77/proposal-desk/internal/signature"
)

// Email is one recorded send-email request.
type Email struct {
	Address    string
	ContractID int64
}

// Backend holds the fake's state. Fields may be read after locking Mu.
type Backend struct {
	Mu         sync.Mutex
	Categories map[int64]models.Category
	Elements   map[int64]models.Element
	Variables  map[int64]models.Variable
	Proposals  map[int64]models.Proposal
	Templates  map[int64]models.Template
	Contracts  map[int64]models.Contract
	Media      map[string][]byte
	Emails     []Email
	Requests   []string

	failures map[string]int
	nextID   int64
	server   *httptest.Server
}

// New returns an empty backend. Call Start or use Handler directly.
func New() *Backend {
	return &Backend{
		Categories: map[int64]models.Category{},
		Elements:   map[int64]models.Element{},
		Variables:  map[int64]models.Variable{},
		Proposals:  map[int64]models.Proposal{},
		Templates:  map[int64]models.Template{},
		Contracts:  map[int64]models.Contract{},
		Media:      map[string][]byte{},
		failures:   map[string]int{},
	}
}

// Start serves the backend on a local port until Close.
func (b *Backend) Start() *Backend {
	b.server = httptest.NewServer(b.Handler())
	return b
}

func (b *Backend) URL() string { return b.server.URL }

func (b *Backend) Close() {
	if b.server != nil {
		b.server.Close()
	}
}

// Fail makes every request matching "METHOD /path" answer status until
// cleared with status 0.
func (b *Backend) Fail(method, path string, status int) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.failures, key)
		return
	}
	b.failures[key] = status
}

func (b *Backend) id() int64 {
	b.nextID++
	return b.nextID
}

// AddCategory stores a category, assigning ids to it and its elements.
func (b *Backend) AddCategory(c models.Category) models.Category {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	return b.addCategory(c)
}

func (b *Backend) addCategory(c models.Category) models.Category {
	c.ID = b.id()
	for i := range c.Elements {
		if c.Elements[i].ID == 0 {
			c.Elements[i].ID = b.id()
		}
	}
	b.Categories[c.ID] = c
	return c
}

func (b *Backend) AddVariable(v models.Variable) models.Variable {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	v.ID = b.id()
	b.Variables[v.ID] = v
	return v
}

func (b *Backend) AddProposal(p models.Proposal) models.Proposal {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	p.ID = b.id()
	b.Proposals[p.ID] = p
	return p
}

func (b *Backend) AddContract(c models.Contract) models.Contract {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	c.ID = b.id()
	b.Contracts[c.ID] = c
	return c
}

func (b *Backend) AddTemplate(t models.Template) models.Template {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	t.ID = b.id()
	b.Templates[t.ID] = t
	return t
}

// Handler returns the HTTP surface of the backend.
func (b *Backend) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /proposal-categories", b.listCategories)
	mux.HandleFunc("POST /proposal-categories", b.createCategory)
	mux.HandleFunc("PUT /proposal-categories/{id}", b.updateCategory)
	mux.HandleFunc("DELETE /proposal-categories/{id}", deleteFrom(b, func() map[int64]models.Category { return b.Categories }))

	mux.HandleFunc("GET /proposal-elements", listOf(b, func() map[int64]models.Element { return b.Elements }))
	mux.HandleFunc("POST /proposal-elements", b.saveElement)
	mux.HandleFunc("PUT /proposal-elements/{id}", b.saveElement)
	mux.HandleFunc("DELETE /proposal-elements/{id}", deleteFrom(b, func() map[int64]models.Element { return b.Elements }))

	mux.HandleFunc("GET /variables", listOf(b, func() map[int64]models.Variable { return b.Variables }))
	mux.HandleFunc("POST /variables", b.saveVariable)
	mux.HandleFunc("PUT /variables/{id}", b.saveVariable)
	mux.HandleFunc("DELETE /variables/{id}", deleteFrom(b, func() map[int64]models.Variable { return b.Variables }))

	mux.HandleFunc("GET /proposals", listOf(b, func() map[int64]models.Proposal { return b.Proposals }))
	mux.HandleFunc("GET /proposals/{id}", getFrom(b, func() map[int64]models.Proposal { return b.Proposals }))
	mux.HandleFunc("POST /proposals", b.saveProposal)
	mux.HandleFunc("PUT /proposals/{id}", b.saveProposal)
	mux.HandleFunc("DELETE /proposals/{id}", deleteFrom(b, func() map[int64]models.Proposal { return b.Proposals }))

	mux.HandleFunc("GET /templates", listOf(b, func() map[int64]models.Template { return b.Templates }))
	mux.HandleFunc("GET /templates/{id}", getFrom(b, func() map[int64]models.Template { return b.Templates }))
	mux.HandleFunc("POST /templates", b.createTemplate)
	mux.HandleFunc("DELETE /templates/{id}", deleteFrom(b, func() map[int64]models.Template { return b.Templates }))

	mux.HandleFunc("GET /contracts", listOf(b, func() map[int64]models.Contract { return b.Contracts }))
	mux.HandleFunc("GET /contracts/{id}", getFrom(b, func() map[int64]models.Contract { return b.Contracts }))
	mux.HandleFunc("POST /contracts", b.createContract)
	mux.HandleFunc("DELETE /contracts/{id}", deleteFrom(b, func() map[int64]models.Contract { return b.Contracts }))
	mux.HandleFunc("POST /contracts/{id}/client_upload_signature", b.uploadSignature("client"))
	mux.HandleFunc("POST /contracts/{id}/contractor_upload_signature", b.uploadSignature("contractor"))

	mux.HandleFunc("POST /send-email", b.sendEmail)
	mux.HandleFunc("GET /media/{name}", b.media)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.Mu.Lock()
		b.Requests = append(b.Requests, r.Method+" "+r.URL.Path)
		status, fail := b.failures[r.Method+" "+r.URL.Path]
		b.Mu.Unlock()
		if fail {
			http.Error(w, `{"detail":"injected failure"}`, status)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
		return false
	}
	return true
}

func sortedValues[T any](m map[int64]T) []T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}

func listOf[T any](b *Backend, store func() map[int64]T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.Mu.Lock()
		out := sortedValues(store())
		b.Mu.Unlock()
		writeJSON(w, http.StatusOK, out)
	}
}

func getFrom[T any](b *Backend, store func() map[int64]T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		b.Mu.Lock()
		v, found := store()[id]
		b.Mu.Unlock()
		if !ok || !found {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func deleteFrom[T any](b *Backend, store func() map[int64]T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		b.Mu.Lock()
		defer b.Mu.Unlock()
		if _, found := store()[id]; !ok || !found {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		delete(store(), id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (b *Backend) listCategories(w http.ResponseWriter, r *http.Request) {
	b.Mu.Lock()
	out := sortedValues(b.Categories)
	b.Mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func categoryFromInput(in models.CategoryInput) models.Category {
	c := models.Category{Name: in.Name}
	for _, e := range in.Elements {
		c.Elements = append(c.Elements, models.Element{Name: e.Name, MaterialCost: e.MaterialCost, LaborCost: e.LaborCost})
	}
	return c
}

func (b *Backend) createCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	b.Mu.Lock()
	c := b.addCategory(categoryFromInput(in))
	b.Mu.Unlock()
	writeJSON(w, http.StatusCreated, c)
}

func (b *Backend) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	var in models.CategoryInput
	if !decode(w, r, &in) {
		return
	}
	b.Mu.Lock()
	defer b.Mu.Unlock()
	if _, ok := b.Categories[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	c := categoryFromInput(in)
	c.ID = id
	for i := range c.Elements {
		c.Elements[i].ID = b.id()
	}
	b.Categories[id] = c
	writeJSON(w, http.StatusOK, c)
}

func (b *Backend) saveElement(w http.ResponseWriter, r *http.Request) {
	var in models.ElementInput
	if !decode(w, r, &in) {
		return
	}
	b.Mu.Lock()
	defer b.Mu.Unlock()
	e := models.Element{Name: in.Name, MaterialCost: in.MaterialCost, LaborCost: in.LaborCost}
	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, _ := pathID(r)
		if _, ok := b.Elements[id]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		e.ID, status = id, http.StatusOK
	} else {
		e.ID = b.id()
	}
	b.Elements[e.ID] = e
	writeJSON(w, status, e)
}

func (b *Backend) saveVariable(w http.ResponseWriter, r *http.Request) {
	var in models.VariableInput
	if !decode(w, r, &in) {
		return
	}
	b.Mu.Lock()
	defer b.Mu.Unlock()
	v := models.Variable{Name: in.Name, Category: in.Category, Value: in.Value}
	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, _ := pathID(r)
		if _, ok := b.Variables[id]; !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		v.ID, status = id, http.StatusOK
	} else {
		v.ID = b.id()
	}
	b.Variables[v.ID] = v
	writeJSON(w, status, v)
}

func (b *Backend) saveProposal(w http.ResponseWriter, r *http.Request) {
	var in models.ProposalInput
	if !decode(w, r, &in) {
		return
	}
	b.Mu.Lock()
	defer b.Mu.Unlock()
	now := models.Timestamp{Time: time.Now().UTC()}
	p := models.Proposal{
		Name:        in.Name,
		Description: in.Description,
		ClientName:  in.ClientName,
		ClientEmail: in.ClientEmail,
		UpdatedAt:   now,
	}
	for _, c := range in.Categories {
		cat := categoryFromInput(c)
		cat.ID = b.id()
		for i := range cat.Elements {
			cat.Elements[i].ID = b.id()
		}
		p.Categories = append(p.Categories, cat)
	}
	for _, v := range in.Variables {
		p.Variables = append(p.Variables, models.Variable{ID: b.id(), Name: v.Name, Category: v.Category, Value: v.Value})
	}
	status := http.StatusCreated
	if r.Method == http.MethodPut {
		id, _ := pathID(r)
		old, ok := b.Proposals[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		p.ID, p.CreatedAt, status = id, old.CreatedAt, http.StatusOK
	} else {
		p.ID, p.CreatedAt = b.id(), now
	}
	b.Proposals[p.ID] = p
	writeJSON(w, status, p)
}

func (b *Backend) createTemplate(w http.ResponseWriter, r *http.Request) {
	var in models.TemplateInput
	if !decode(w, r, &in) {
		return
	}
	b.Mu.Lock()
	defer b.Mu.Unlock()
	t := models.Template{
		ID:          b.id(),
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   models.Timestamp{Time: time.Now().UTC()},
	}
	for _, id := range in.Categories {
		c, ok := b.Categories[id]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "unknown category " + strconv.FormatInt(id, 10)})
			return
		}
		t.Categories = append(t.Categories, c.Clone())
	}
	for _, nc := range in.NewCategories {
		t.Categories = append(t.Categories, b.addCategory(categoryFromInput(nc)))
	}
	for _, id := range in.Variables {
		v, ok := b.Variables[id]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "unknown variable " + strconv.FormatInt(id, 10)})
			return
		}
		t.Variables = append(t.Variables, v)
	}
	for _, nv := range in.NewVariables {
		v := models.Variable{ID: b.id(), Name: nv.Name, Category: nv.Category}
		b.Variables[v.ID] = v
		t.Variables = append(t.Variables, v)
	}
	b.Templates[t.ID] = t
	writeJSON(w, http.StatusCreated, t)
}

func (b *Backend) createContract(w http.ResponseWriter, r *http.Request) {
	var in models.ContractInput
	if !decode(w, r, &in) {
		return
	}
	b.Mu.Lock()
	defer b.Mu.Unlock()
	p, ok := b.Proposals[in.Proposal]
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"proposal": "Invalid pk - object does not exist."})
		return
	}
	c := models.Contract{
		ID:                  b.id(),
		Proposal:            models.ProposalRef{Proposal: p},
		Title:               in.Title,
		ContractorName:      in.ContractorName,
		ContractorCompany:   in.ContractorCompany,
		TermsAndConditions:  in.TermsAndConditions,
		Scope:               in.Scope,
		PaymentTerms:        in.PaymentTerms,
		PaymentAmount:       models.Money(in.PaymentAmount),
		StartDate:           in.StartDate,
		EndDate:             in.EndDate,
		AdditionalNotes:     in.AdditionalNotes,
		ClientAddress:       in.ClientAddress,
		ClientSignature:     in.ClientSignature,
		ClientInitials:      in.ClientInitials,
		ContractorSignature: in.ContractorSignature,
		ContractorInitials:  in.ContractorInitials,
		CreatedAt:           models.Timestamp{Time: time.Now().UTC()},
	}
	b.Contracts[c.ID] = c
	writeJSON(w, http.StatusCreated, c)
}

// uploadSignature stores the image under /media and points the contract at it.
func (b *Backend) uploadSignature(party string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := pathID(r)
		if err := r.ParseMultipartForm(5 << 20); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
			return
		}
		f, _, err := r.FormFile("signature")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"signature": "No file was submitted."})
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
			return
		}
		if _, err := signature.EncodeDataURI(data); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"signature": "Upload a valid image."})
			return
		}

		b.Mu.Lock()
		defer b.Mu.Unlock()
		c, ok := b.Contracts[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
			return
		}
		name := party + "-" + strconv.FormatInt(id, 10) + ".png"
		b.Media[name] = data
		ref := "/media/" + name
		signedAt := &models.Timestamp{Time: time.Now().UTC()}
		if party == "client" {
			c.ClientSignature, c.ClientSignedAt = ref, signedAt
		} else {
			c.ContractorSignature, c.ContractorSignedAt = ref, signedAt
			if initials := strings.TrimSpace(r.FormValue("contractor_initials")); initials != "" {
				c.ContractorInitials = initials
			}
		}
		b.Contracts[id] = c
		writeJSON(w, http.StatusOK, c)
	}
}

func (b *Backend) sendEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	id, err := strconv.ParseInt(r.URL.Query().Get("contract_id"), 10, 64)
	if email == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "email and contract_id are required"})
		return
	}
	b.Mu.Lock()
	b.Emails = append(b.Emails, Email{Address: email, ContractID: id})
	b.Mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (b *Backend) media(w http.ResponseWriter, r *http.Request) {
	b.Mu.Lock()
	data, ok := b.Media[r.PathValue("name")]
	b.Mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	_, _ = w.Write(data)
}
