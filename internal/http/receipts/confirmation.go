package receipts

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receipts/internal/engine"
	"github.com/MrJamesThe3rd/receipts/internal/matching"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

// ConfirmationHandler drives the single open confirmation of the session.
type ConfirmationHandler struct {
	engine *engine.Engine
}

func NewConfirmationHandler(e *engine.Engine) *ConfirmationHandler {
	return &ConfirmationHandler{engine: e}
}

func (h *ConfirmationHandler) Routes(r chi.Router) {
	r.Get("/", h.get)
	r.Post("/", h.open)
	r.Delete("/", h.close)
	r.Post("/link", h.linkOnly)
	r.Post("/link-and-update", h.linkAndUpdate)
}

func (h *ConfirmationHandler) get(w http.ResponseWriter, _ *http.Request) {
	h.writeSelection(w, http.StatusOK)
}

type openRequest struct {
	Receipt       string    `json:"receipt"`
	LedgerEntryID uuid.UUID `json:"ledger_entry_id"`
}

func (h *ConfirmationHandler) open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key, err := receipt.ParseKey(req.Receipt)
	if err != nil {
		http.Error(w, "invalid receipt key", http.StatusBadRequest)
		return
	}

	if req.LedgerEntryID == uuid.Nil {
		http.Error(w, "ledger_entry_id is required", http.StatusBadRequest)
		return
	}

	if _, err := h.engine.OpenConfirmationFor(r.Context(), key, req.LedgerEntryID); err != nil {
		writeError(w, err)
		return
	}

	h.writeSelection(w, http.StatusCreated)
}

func (h *ConfirmationHandler) close(w http.ResponseWriter, _ *http.Request) {
	if err := h.engine.CloseConfirmation(); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ConfirmationHandler) linkOnly(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.ConfirmLinkOnly(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(res))
}

type linkAndUpdateRequest struct {
	Fields []matching.Field `json:"fields"`
}

func (h *ConfirmationHandler) linkAndUpdate(w http.ResponseWriter, r *http.Request) {
	var req linkAndUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := h.engine.ConfirmLinkAndUpdate(r.Context(), req.Fields)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResultResponse(res))
}

func (h *ConfirmationHandler) writeSelection(w http.ResponseWriter, status int) {
	state := h.engine.ConfirmationState()

	sel, ok := h.engine.SelectedMatch()
	if !ok {
		writeJSON(w, status, toSelectionResponse(state, nil))
		return
	}

	writeJSON(w, status, toSelectionResponse(state, &sel))
}
