package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/proposal-desk/httpx"
	"github.com/diewo77/proposal-desk/internal/documents"
	"github.com/diewo77/proposal-desk/internal/gateway"
	"github.com/diewo77/proposal-desk/internal/logging"
	"github.com/diewo77/proposal-desk/internal/metrics"
	"github.com/diewo77/proposal-desk/internal/render/htmlrender"
	"github.com/diewo77/proposal-desk/internal/signature"
	"github.com/diewo77/proposal-desk/validation"
)

// maxSignatureSize bounds a signature upload.
const maxSignatureSize = 5 << 20

// RecordHandler lists, shows, renders and deletes saved templates,
// proposals and contracts.
type RecordHandler struct {
	api  *gateway.Client
	docs *documents.Service
	out  documentWriter
}

func NewRecordHandler(api *gateway.Client, docs *documents.Service, m *metrics.Metrics, now func() time.Time) *RecordHandler {
	if now == nil {
		now = time.Now
	}
	return &RecordHandler{api: api, docs: docs, out: documentWriter{metrics: m, now: now}}
}

// Templates

func (h *RecordHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.api.ListTemplates(r.Context())
	if err != nil {
		fail(w, r, "failed_to_list_templates", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, templates)
		return
	}
	page(w, r, "templates.html", map[string]any{"Templates": templates})
}

func (h *RecordHandler) ViewTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	t, err := h.api.GetTemplate(r.Context(), id)
	if err != nil {
		fail(w, r, "failed_to_load_template", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, t)
		return
	}
	page(w, r, "template.html", map[string]any{"Template": t})
}

func (h *RecordHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	if err := h.api.DeleteTemplate(r.Context(), id); err != nil {
		fail(w, r, "failed_to_delete_template", err)
		return
	}
	done(w, r, http.StatusNoContent, nil, "/templates")
}

// Proposals

func (h *RecordHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.api.ListProposals(r.Context())
	if err != nil {
		fail(w, r, "failed_to_list_proposals", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, proposals)
		return
	}
	page(w, r, "proposals.html", map[string]any{"Proposals": proposals})
}

func (h *RecordHandler) ViewProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	if httpx.WantsJSON(r) {
		p, err := h.api.GetProposal(r.Context(), id)
		if err != nil {
			fail(w, r, "failed_to_load_proposal", err)
			return
		}
		httpx.JSON(w, http.StatusOK, p)
		return
	}
	doc, err := h.docs.ProposalDocument(r.Context(), id, h.out.now())
	if err != nil {
		fail(w, r, "failed_to_load_proposal", err)
		return
	}
	preview, err := htmlrender.Fragment(doc)
	if err != nil {
		fail(w, r, "failed_to_render_document", err)
		return
	}
	page(w, r, "proposal.html", map[string]any{"ID": id, "Document": doc, "Preview": preview})
}

// ProposalDocument downloads a proposal as html, pdf or xlsx (the default).
func (h *RecordHandler) ProposalDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	doc, err := h.docs.ProposalDocument(r.Context(), id, h.out.now())
	if err != nil {
		fail(w, r, "failed_to_load_proposal", err)
		return
	}
	h.out.write(w, r, doc, formatOf(r, FormatXLSX))
}

func (h *RecordHandler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	if err := h.api.DeleteProposal(r.Context(), id); err != nil {
		fail(w, r, "failed_to_delete_proposal", err)
		return
	}
	done(w, r, http.StatusNoContent, nil, "/proposals")
}

// Contracts

func (h *RecordHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.api.ListContracts(r.Context())
	if err != nil {
		fail(w, r, "failed_to_list_contracts", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, contracts)
		return
	}
	page(w, r, "contracts.html", map[string]any{"Contracts": contracts})
}

func (h *RecordHandler) ViewContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	if httpx.WantsJSON(r) {
		c, err := h.api.GetContract(r.Context(), id)
		if err != nil {
			fail(w, r, "failed_to_load_contract", err)
			return
		}
		httpx.JSON(w, http.StatusOK, c)
		return
	}
	doc, err := h.docs.ContractDocument(r.Context(), id, h.out.now())
	if err != nil {
		fail(w, r, "failed_to_load_contract", err)
		return
	}
	preview, err := htmlrender.Fragment(doc)
	if err != nil {
		fail(w, r, "failed_to_render_document", err)
		return
	}
	page(w, r, "contract.html", map[string]any{"ID": id, "Document": doc, "Preview": preview})
}

// ContractDocument downloads a contract as pdf (the default), html or xlsx.
func (h *RecordHandler) ContractDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	doc, err := h.docs.ContractDocument(r.Context(), id, h.out.now())
	if err != nil {
		fail(w, r, "failed_to_load_contract", err)
		return
	}
	h.out.write(w, r, doc, formatOf(r, FormatPDF))
}

// ContractPreview shows the standalone HTML rendering of a contract.
func (h *RecordHandler) ContractPreview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	doc, err := h.docs.ContractDocument(r.Context(), id, h.out.now())
	if err != nil {
		fail(w, r, "failed_to_load_contract", err)
		return
	}
	h.out.write(w, r, doc, FormatHTML)
}

func (h *RecordHandler) DeleteContract(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	if err := h.api.DeleteContract(r.Context(), id); err != nil {
		fail(w, r, "failed_to_delete_contract", err)
		return
	}
	done(w, r, http.StatusNoContent, nil, "/contracts")
}

// UploadSignature accepts a multipart "signature" file, or a data URI in the
// "signature_data" field as drawn on a canvas, for the party in the path.
func (h *RecordHandler) UploadSignature(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	party := gateway.Party(r.PathValue("party"))
	if !party.Valid() {
		httpx.JSONError(w, http.StatusNotFound, "unknown_party", string(party))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSignatureSize)
	if err := r.ParseMultipartForm(maxSignatureSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}

	var (
		data     []byte
		filename string
		err      error
	)
	if f, hdr, ferr := r.FormFile("signature"); ferr == nil {
		defer f.Close()
		filename = hdr.Filename
		data, err = io.ReadAll(f)
	} else if uri := r.FormValue("signature_data"); uri != "" {
		var img signature.Image
		img, err = signature.ParseDataURI(uri)
		data = img.Data
	} else {
		invalid(w, r, validation.Violations{"signature": "required"}, "", nil)
		return
	}
	if err != nil {
		invalid(w, r, validation.Violations{"signature": "unreadable_image"}, "", nil)
		return
	}
	if _, _, err := signature.Normalize(data); err != nil {
		logging.FromContext(r.Context()).Warn("signature rejected", zap.Int64("contract_id", id), zap.Error(err))
		invalid(w, r, validation.Violations{"signature": "unsupported_image"}, "", nil)
		return
	}

	initials := strings.TrimSpace(r.FormValue("initials"))
	if err := h.api.UploadSignature(r.Context(), id, party, filename, data, initials); err != nil {
		fail(w, r, "failed_to_upload_signature", err)
		return
	}
	done(w, r, http.StatusNoContent, nil, "/contracts/"+r.PathValue("id"))
}

// SendEmail asks the backend to mail the contract. Without an address the
// client email of the proposal is used.
func (h *RecordHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badID(w, r)
		return
	}
	var in struct {
		Email string `json:"email"`
	}
	if isJSONBody(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		in.Email = r.FormValue("email")
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		c, err := h.docs.Contract(r.Context(), id)
		if err != nil {
			fail(w, r, "failed_to_load_contract", err)
			return
		}
		in.Email = c.Proposal.ClientEmail
	}
	v := make(validation.Violations)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	if !v.Empty() {
		invalid(w, r, v, "", nil)
		return
	}
	if err := h.api.SendEmail(r.Context(), in.Email, id); err != nil {
		fail(w, r, "failed_to_send_email", err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "sent", "email": in.Email})
		return
	}
	http.Redirect(w, r, "/contracts/"+r.PathValue("id"), http.StatusSeeOther)
}
