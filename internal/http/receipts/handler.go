package receipts

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/receipts/internal/confirm"
	"github.com/MrJamesThe3rd/receipts/internal/engine"
	"github.com/MrJamesThe3rd/receipts/internal/ledger"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

type Handler struct {
	engine *engine.Engine
}

func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/refresh", h.refresh)
	r.Get("/{key}", h.get)
	r.Get("/{key}/suggestions", h.suggestions)
	r.Get("/{key}/best-match", h.bestMatch)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	in := h.engine.Inbox()
	rs := in.All()

	if s := r.URL.Query().Get("source"); s != "" {
		src := receipt.Source(s)
		if !src.Valid() {
			http.Error(w, "unknown source", http.StatusBadRequest)
			return
		}

		rs = in.BySource(src)
	}

	if r.URL.Query().Get("pending") == "true" {
		rs = slices.DeleteFunc(rs, func(rc receipt.UnifiedReceipt) bool {
			return !rc.Status.IsOpen()
		})
	}

	writeJSON(w, http.StatusOK, toInboxResponse(in, rs))
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	in := h.engine.Refresh(r.Context())

	writeJSON(w, http.StatusOK, toInboxResponse(in, in.All()))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.receipt(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toReceiptResponse(rc))
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.receipt(w, r)
	if !ok {
		return
	}

	ss, err := h.engine.SuggestionsForReceipt(r.Context(), rc)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponseList(ss))
}

func (h *Handler) bestMatch(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.receipt(w, r)
	if !ok {
		return
	}

	s, found, err := h.engine.BestMatch(r.Context(), rc)
	if err != nil {
		writeError(w, err)
		return
	}

	if !found {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, toSuggestionResponse(s))
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) (receipt.UnifiedReceipt, bool) {
	key, err := receipt.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		http.Error(w, "invalid receipt key", http.StatusBadRequest)
		return receipt.UnifiedReceipt{}, false
	}

	rc, err := h.engine.Receipt(key)
	if err != nil {
		writeError(w, err)
		return receipt.UnifiedReceipt{}, false
	}

	return rc, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var commitErr *confirm.CommitError

	// commit failures wrap the ledger's own errors, so they are matched first
	switch {
	case errors.As(err, &commitErr):
		http.Error(w, commitErr.Error(), http.StatusBadGateway)
	case errors.Is(err, receipt.ErrNotFound):
		http.Error(w, "receipt not found", http.StatusNotFound)
	case errors.Is(err, ledger.ErrNotFound):
		http.Error(w, "ledger entry not found", http.StatusNotFound)
	case errors.Is(err, confirm.ErrNoSelection), errors.Is(err, confirm.ErrCommitInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, confirm.ErrUnknownField),
		errors.Is(err, confirm.ErrFieldUnavailable),
		errors.Is(err, confirm.ErrSuggestionInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
