package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

// Client talks to the OCR scan pipeline: listing scans, uploading new images
// and recording matches.
type Client struct {
	baseURL  string
	apiToken string
	client   *http.Client
}

func NewClient(baseURL, apiToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListScannedReceipts(ctx context.Context) ([]receipt.ScannedReceipt, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/scans", nil)
	if err != nil {
		return nil, err
	}

	var out []receipt.ScannedReceipt
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}

	return out, nil
}

// Submit uploads a receipt image. The returned scan is usually still
// processing.
func (c *Client) Submit(ctx context.Context, file receipt.Upload) (*receipt.ScannedReceipt, error) {
	if err := file.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))

	contentType := file.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}

	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("creating form part: %w", err)
	}

	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("writing form part: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/scans", &buf)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out receipt.ScannedReceipt
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("submitting %s: %w", file.Name, err)
	}

	return &out, nil
}

type linkRequest struct {
	Status        receipt.Status `json:"status"`
	TransactionID string         `json:"transactionId"`
}

// MarkMatched records the ledger entry on the scan.
func (c *Client) MarkMatched(ctx context.Context, id string, entryID uuid.UUID) error {
	b, err := json.Marshal(linkRequest{Status: receipt.StatusMatched, TransactionID: entryID.String()})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, "/scans/"+url.PathEscape(id), bytes.NewReader(b))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("linking scan %s: %w", id, err)
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if c.apiToken != "" {
		req.Header.Set("Authorization", "Token "+c.apiToken)
	}

	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", receipt.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		detail := strings.TrimSpace(string(msg))

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: status %d: %s", receipt.ErrNotFound, resp.StatusCode, detail)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: status %d: %s", receipt.ErrSourceUnavailable, resp.StatusCode, detail)
		default:
			return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, detail)
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
