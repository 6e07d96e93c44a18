package digital

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/receipts/internal/receipt"
)

const tokenTTL = 5 * time.Minute

// Client talks to the remote digital receipt feed. Requests carry a short
// lived HS256 token identifying the user.
type Client struct {
	baseURL    string
	userID     string
	signingKey []byte
	client     *http.Client
	now        func() time.Time
}

func NewClient(baseURL, userID, signingKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		signingKey: []byte(signingKey),
		client:     &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (c *Client) ListDigitalReceipts(ctx context.Context) ([]receipt.DigitalReceipt, error) {
	var out []receipt.DigitalReceipt
	if err := c.do(ctx, http.MethodGet, "/receipts", nil, &out); err != nil {
		return nil, fmt.Errorf("listing digital receipts: %w", err)
	}

	return out, nil
}

type matchRequest struct {
	Status               receipt.Status `json:"status"`
	MatchedTransactionID string         `json:"matchedTransactionId"`
}

// MarkMatched records the ledger entry on the remote receipt.
func (c *Client) MarkMatched(ctx context.Context, id string, entryID uuid.UUID) error {
	body := matchRequest{Status: receipt.StatusMatched, MatchedTransactionID: entryID.String()}

	if err := c.do(ctx, http.MethodPatch, "/receipts/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("marking digital receipt %s matched: %w", id, err)
	}

	return nil
}

func (c *Client) token() (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   c.userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader

	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}

		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if len(c.signingKey) > 0 {
		tok, err := c.token()
		if err != nil {
			return err
		}

		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", receipt.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

func statusError(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}

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
