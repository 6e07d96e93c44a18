package receipts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/receipts/internal/confirm"
	"github.com/MrJamesThe3rd/receipts/internal/ledger"
	"github.com/MrJamesThe3rd/receipts/internal/matching"
	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

type receiptResponse struct {
	Key                    string              `json:"key"`
	ID                     string              `json:"id"`
	Source                 receipt.Source      `json:"source"`
	Merchant               string              `json:"merchant"`
	Amount                 *decimal.Decimal    `json:"amount,omitempty"`
	Date                   *time.Time          `json:"date,omitempty"`
	Status                 receipt.Status      `json:"status"`
	MatchConfidence        *float64            `json:"match_confidence,omitempty"`
	SuggestedLedgerEntryID *uuid.UUID          `json:"suggested_ledger_entry_id,omitempty"`
	Extraction             *extractionResponse `json:"extraction,omitempty"`
}

type extractionResponse struct {
	Overall  *float64                `json:"overall,omitempty"`
	Merchant receipt.ConfidenceLevel `json:"merchant"`
	Total    receipt.ConfidenceLevel `json:"total"`
	Date     receipt.ConfidenceLevel `json:"date"`
}

func toReceiptResponse(r receipt.UnifiedReceipt) receiptResponse {
	resp := receiptResponse{
		Key:                    r.Key().String(),
		ID:                     r.ID,
		Source:                 r.Source,
		Merchant:               r.Merchant,
		Amount:                 r.Amount,
		Date:                   r.Date,
		Status:                 r.Status,
		MatchConfidence:        r.MatchConfidence,
		SuggestedLedgerEntryID: r.SuggestedLedgerEntryID,
	}

	if x := r.Extraction; x != nil {
		resp.Extraction = &extractionResponse{
			Overall:  x.Overall,
			Merchant: x.Merchant,
			Total:    x.Total,
			Date:     x.Date,
		}
	}

	return resp
}

func toReceiptResponseList(rs []receipt.UnifiedReceipt) []receiptResponse {
	resp := make([]receiptResponse, len(rs))
	for i, r := range rs {
		resp[i] = toReceiptResponse(r)
	}

	return resp
}

type inboxResponse struct {
	Receipts []receiptResponse `json:"receipts"`
	Loading  bool              `json:"loading"`
	Errors   map[string]string `json:"errors,omitempty"`
}

func toInboxResponse(in *receipt.Inbox, rs []receipt.UnifiedReceipt) inboxResponse {
	resp := inboxResponse{
		Receipts: toReceiptResponseList(rs),
		Loading:  in.IsLoading(),
	}

	for _, src := range []receipt.Source{receipt.SourceDigital, receipt.SourceScanned} {
		if err := in.SourceErr(src); err != nil {
			if resp.Errors == nil {
				resp.Errors = make(map[string]string)
			}

			resp.Errors[string(src)] = err.Error()
		}
	}

	return resp
}

type entryResponse struct {
	ID             uuid.UUID       `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Type           ledger.Type     `json:"type"`
	Description    string          `json:"description"`
	RawDescription string          `json:"raw_description,omitempty"`
	Date           time.Time       `json:"date"`
	ReceiptRef     *string         `json:"receipt_ref,omitempty"`
}

func toEntryResponse(e ledger.Entry) entryResponse {
	return entryResponse{
		ID:             e.ID,
		Amount:         e.Amount,
		Type:           e.Type,
		Description:    e.Description,
		RawDescription: e.RawDescription,
		Date:           e.Date,
		ReceiptRef:     e.ReceiptRef,
	}
}

type breakdownResponse struct {
	Amount     float64         `json:"amount"`
	Date       float64         `json:"date"`
	Merchant   float64         `json:"merchant"`
	AmountDiff decimal.Decimal `json:"amount_diff"`
	DaysApart  int             `json:"days_apart"`
}

type suggestionResponse struct {
	LedgerEntryID uuid.UUID         `json:"ledger_entry_id"`
	Confidence    float64           `json:"confidence"`
	Tier          matching.Tier     `json:"tier"`
	Entry         entryResponse     `json:"entry"`
	Breakdown     breakdownResponse `json:"breakdown"`
}

func toSuggestionResponse(s matching.Suggestion) suggestionResponse {
	return suggestionResponse{
		LedgerEntryID: s.LedgerEntryID,
		Confidence:    s.Confidence,
		Tier:          s.Tier,
		Entry:         toEntryResponse(s.Entry),
		Breakdown: breakdownResponse{
			Amount:     s.Breakdown.Amount,
			Date:       s.Breakdown.Date,
			Merchant:   s.Breakdown.Merchant,
			AmountDiff: s.Breakdown.AmountDiff,
			DaysApart:  s.Breakdown.DaysApart,
		},
	}
}

func toSuggestionResponseList(ss []matching.Suggestion) []suggestionResponse {
	resp := make([]suggestionResponse, len(ss))
	for i, s := range ss {
		resp[i] = toSuggestionResponse(s)
	}

	return resp
}

type differenceResponse struct {
	Field        matching.Field `json:"field"`
	ReceiptValue string         `json:"receipt_value"`
	LedgerValue  string         `json:"ledger_value"`
}

type selectionResponse struct {
	State       confirm.State        `json:"state"`
	Receipt     *receiptResponse     `json:"receipt,omitempty"`
	Suggestion  *suggestionResponse  `json:"suggestion,omitempty"`
	Differences []differenceResponse `json:"differences,omitempty"`
}

func toSelectionResponse(state confirm.State, sel *confirm.SelectedMatch) selectionResponse {
	resp := selectionResponse{State: state}
	if sel == nil {
		return resp
	}

	r := toReceiptResponse(sel.Receipt)
	s := toSuggestionResponse(sel.Suggestion)
	resp.Receipt = &r
	resp.Suggestion = &s

	for _, d := range sel.Differences {
		resp.Differences = append(resp.Differences, differenceResponse{
			Field:        d.Field,
			ReceiptValue: d.ReceiptValue,
			LedgerValue:  d.LedgerValue,
		})
	}

	return resp
}

type resultResponse struct {
	Receipt receiptResponse  `json:"receipt"`
	Entry   entryResponse    `json:"entry"`
	Merged  []matching.Field `json:"merged"`
}

func toResultResponse(res *confirm.Result) resultResponse {
	merged := res.Merged
	if merged == nil {
		merged = []matching.Field{}
	}

	return resultResponse{
		Receipt: toReceiptResponse(res.Receipt),
		Entry:   toEntryResponse(res.Entry),
		Merged:  merged,
	}
}
