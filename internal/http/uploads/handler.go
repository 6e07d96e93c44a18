package uploads

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/receipts/internal/engine"
	"github.com/MrJamesThe3rd/receipts/internal/queue"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

const maxUploadSize = 20 << 20

type Handler struct {
	engine *engine.Engine
}

func NewHandler(e *engine.Engine) *Handler {
	return &Handler{engine: e}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.upload)
	r.Get("/queue", h.listQueue)
	r.Post("/queue", h.enqueue)
	r.Post("/queue/drain", h.drain)
}

func (h *Handler) ConnectivityRoutes(r chi.Router) {
	r.Get("/", h.connectivity)
	r.Put("/", h.setConnectivity)
}

type receiptResponse struct {
	Key      string           `json:"key"`
	ID       string           `json:"id"`
	Merchant string           `json:"merchant,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Status   receipt.Status   `json:"status"`
}

func toReceiptResponse(r receipt.UnifiedReceipt) receiptResponse {
	return receiptResponse{
		Key:      r.Key().String(),
		ID:       r.ID,
		Merchant: r.Merchant,
		Amount:   r.Amount,
		Status:   r.Status,
	}
}

type itemResponse struct {
	ID          uuid.UUID   `json:"id"`
	FileName    string      `json:"file_name"`
	ContentType string      `json:"content_type"`
	Size        int         `json:"size"`
	EnqueuedAt  time.Time   `json:"enqueued_at"`
	Attempts    int         `json:"attempts"`
	LastError   *string     `json:"last_error,omitempty"`
	State       queue.State `json:"state"`
}

func toItemResponse(it *queue.Item) itemResponse {
	return itemResponse{
		ID:          it.ID,
		FileName:    it.File.Name,
		ContentType: it.File.ContentType,
		Size:        len(it.File.Data),
		EnqueuedAt:  it.EnqueuedAt,
		Attempts:    it.Attempts,
		LastError:   it.LastError,
		State:       it.State,
	}
}

type uploadResponse struct {
	Receipt *receiptResponse `json:"receipt,omitempty"`
	Queued  *itemResponse    `json:"queued,omitempty"`
}

// readUpload pulls the "file" part out of a multipart request. On failure it
// writes the error response and returns false.
func readUpload(w http.ResponseWriter, r *http.Request) (receipt.Upload, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return receipt.Upload{}, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return receipt.Upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return receipt.Upload{}, false
	}

	contentType, ok := sniff(data)
	if !ok {
		http.Error(w, "unsupported file type "+contentType, http.StatusUnsupportedMediaType)
		return receipt.Upload{}, false
	}

	return receipt.Upload{Name: header.Filename, ContentType: contentType, Data: data}, true
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	upload, ok := readUpload(w, r)
	if !ok {
		return
	}

	res, err := h.engine.Upload(r.Context(), upload)
	if err != nil {
		slog.Error("upload failed", "file", upload.Name, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)

		return
	}

	var resp uploadResponse

	status := http.StatusCreated

	if res.Receipt != nil {
		resp.Receipt = new(toReceiptResponse(*res.Receipt))
	}

	if res.Queued != nil {
		resp.Queued = new(toItemResponse(res.Queued))
		status = http.StatusAccepted
	}

	writeJSON(w, status, resp)
}

// enqueue saves an upload for the next drain without contacting the pipeline.
func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request) {
	upload, ok := readUpload(w, r)
	if !ok {
		return
	}

	item, err := h.engine.EnqueueOfflineUpload(r.Context(), upload)
	if err != nil {
		slog.Error("enqueue failed", "file", upload.Name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{Queued: new(toItemResponse(item))})
}

// sniff detects the upload type from its content. Only images and PDFs are
// accepted by the scan pipeline.
func sniff(data []byte) (string, bool) {
	mt := mimetype.Detect(data)

	return mt.String(), strings.HasPrefix(mt.String(), "image/") || mt.Is("application/pdf")
}

type queueResponse struct {
	Online  bool           `json:"online"`
	Pending int            `json:"pending"`
	Items   []itemResponse `json:"items"`
}

func (h *Handler) listQueue(w http.ResponseWriter, r *http.Request) {
	items, err := h.engine.QueuedItems(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := queueResponse{
		Online:  h.engine.Online(),
		Pending: len(items),
		Items:   make([]itemResponse, len(items)),
	}

	for i, it := range items {
		resp.Items[i] = toItemResponse(it)
	}

	writeJSON(w, http.StatusOK, resp)
}

type drainResponse struct {
	Submitted []receiptResponse `json:"submitted"`
	Failed    int               `json:"failed"`
	Remaining int               `json:"remaining"`
	Skipped   bool              `json:"skipped,omitempty"`
}

func toDrainResponse(res queue.DrainResult) drainResponse {
	resp := drainResponse{
		Submitted: make([]receiptResponse, len(res.Submitted)),
		Failed:    res.Failed,
		Remaining: res.Remaining,
		Skipped:   res.Skipped,
	}

	for i, r := range res.Submitted {
		resp.Submitted[i] = toReceiptResponse(r)
	}

	return resp
}

func (h *Handler) drain(w http.ResponseWriter, r *http.Request) {
	res, err := h.engine.DrainQueue(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toDrainResponse(res))
}

type connectivityRequest struct {
	Online *bool `json:"online"`
}

type connectivityResponse struct {
	Online bool           `json:"online"`
	Drain  *drainResponse `json:"drain,omitempty"`
}

func (h *Handler) connectivity(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, connectivityResponse{Online: h.engine.Online()})
}

func (h *Handler) setConnectivity(w http.ResponseWriter, r *http.Request) {
	var req connectivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Online == nil {
		http.Error(w, "online is required", http.StatusBadRequest)
		return
	}

	res, err := h.engine.SetOnline(r.Context(), *req.Online)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := connectivityResponse{Online: h.engine.Online()}
	if res != nil {
		resp.Drain = new(toDrainResponse(*res))
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
