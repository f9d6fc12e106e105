// Package razorpay is a thin HTTP client for the Razorpay order,
// payment and transfer surfaces used by the escrow flow.
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/threadbazaar/threadbazaar-backend/pkg/config"
	"github.com/threadbazaar/threadbazaar-backend/pkg/logger"
)

var (
	errKeyRequired    = errors.New("razorpay key id and secret are required")
	errAmountPositive = errors.New("amount must be positive")
)

// Order is a Razorpay order created to collect a payment.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Transfer is a settlement of captured funds to a linked account.
type Transfer struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Recipient string `json:"recipient"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
}

// Gateway is the payment surface consumed by the payments service.
// Amounts are in the currency's smallest unit (paise for INR).
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	TransferToAccount(ctx context.Context, paymentID, accountID string, amount int64, currency string) (*Transfer, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// Client talks to the Razorpay REST API with basic auth.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

// NewClient validates the configured credentials and returns a client.
func NewClient(ctx context.Context, cfg config.PaymentsConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.RazorpayKeyID)
	keySecret := strings.TrimSpace(cfg.RazorpayKeySecret)
	if keyID == "" || keySecret == "" {
		return nil, errKeyRequired
	}

	baseURL := strings.TrimRight(cfg.RazorpayBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}

	if logg != nil {
		logg.Info(ctx, "razorpay client initialized")
	}

	return &Client{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CreateOrder registers a collectable order with the gateway.
func (c *Client) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	if amount <= 0 {
		return nil, errAmountPositive
	}

	payload := map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	var order Order
	if err := c.post(ctx, "/orders", payload, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// TransferToAccount routes captured funds from a payment to a linked account.
func (c *Client) TransferToAccount(ctx context.Context, paymentID, accountID string, amount int64, currency string) (*Transfer, error) {
	if amount <= 0 {
		return nil, errAmountPositive
	}
	if paymentID == "" || accountID == "" {
		return nil, errors.New("payment id and account id are required")
	}

	payload := map[string]any{
		"transfers": []map[string]any{
			{
				"account":  accountID,
				"amount":   amount,
				"currency": currency,
			},
		},
	}

	var result struct {
		Items []Transfer `json:"items"`
	}
	path := fmt.Sprintf("/payments/%s/transfers", paymentID)
	if err := c.post(ctx, path, payload, &result); err != nil {
		return nil, fmt.Errorf("transfer to account: %w", err)
	}
	if len(result.Items) == 0 {
		return nil, errors.New("gateway returned no transfer")
	}
	return &result.Items[0], nil
}

// VerifyPaymentSignature checks the checkout callback signature, an
// HMAC-SHA256 of "orderID|paymentID" keyed with the API secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID+"|"+paymentID, signature, c.keySecret)
}

// VerifySignature compares an HMAC-SHA256 hex digest in constant time.
func VerifySignature(payload, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := hex.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// APIError carries a non-2xx gateway response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay: status %d: %s", e.Status, e.Body)
}
