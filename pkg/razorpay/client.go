// Package razorpay adapts the Razorpay orders API to the checkout flow.
package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	rzp "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"github.com/angelmondragon/rxcart-backend/pkg/config"
)

// ErrNotConfigured is returned when key id or secret are missing.
var ErrNotConfigured = errors.New("razorpay is not configured")

// Intent is a remote order the browser checkout widget pays against.
type Intent struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	KeyID       string `json:"key_id"`
}

// orderAPI is the subset of the SDK order resource we use.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Client wraps the SDK client with typed results.
type Client struct {
	orders orderAPI
	keyID  string
	secret string
}

// New builds a client from config.
func New(cfg config.RazorpayConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	sdk := rzp.NewClient(cfg.KeyID, cfg.KeySecret)
	return &Client{orders: sdk.Order, keyID: cfg.KeyID, secret: cfg.KeySecret}, nil
}

// KeyID is the public key the checkout widget needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateIntent creates a remote order for amountMinor units of currency.
func (c *Client) CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (Intent, error) {
	if err := ctx.Err(); err != nil {
		return Intent{}, err
	}
	if amountMinor <= 0 {
		return Intent{}, fmt.Errorf("amount must be positive, got %d", amountMinor)
	}
	payload := map[string]interface{}{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		n := make(map[string]interface{}, len(notes))
		for k, v := range notes {
			n[k] = v
		}
		payload["notes"] = n
	}

	resp, err := c.orders.Create(payload, nil)
	if err != nil {
		return Intent{}, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := resp["id"].(string)
	if id == "" {
		return Intent{}, errors.New("razorpay create order: response missing id")
	}
	return Intent{
		ID:          id,
		AmountMinor: amountMinor,
		Currency:    currency,
		Receipt:     receipt,
		KeyID:       c.keyID,
	}, nil
}

// FetchNotes returns the notes attached to a remote order.
func (c *Client) FetchNotes(ctx context.Context, orderID string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, errors.New("order id is required")
	}
	resp, err := c.orders.Fetch(orderID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay fetch order: %w", err)
	}
	notes := map[string]string{}
	// the API returns an empty JSON array instead of an object when no notes were set
	raw, ok := resp["notes"].(map[string]interface{})
	if !ok {
		return notes, nil
	}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			notes[k] = val
		case nil:
		default:
			notes[k] = fmt.Sprint(val)
		}
	}
	return notes, nil
}

// VerifyPaymentSignature checks the checkout callback signature, an
// HMAC-SHA256 of "order_id|payment_id" keyed by the API secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.secret, orderID, paymentID, signature)
}

// VerifySignature is the keyed check behind VerifyPaymentSignature. Empty
// inputs never verify.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	return utils.VerifyPaymentSignature(map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}, signature, secret)
}

// Sign produces the signature Razorpay would send; used by tests and tooling.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
