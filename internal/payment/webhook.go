package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader carries "ts=<unix>;h1=<hex hmac>".
const SignatureHeader = "Paddle-Signature"

const (
	EventTransactionCompleted = "transaction.completed"
	EventSubscriptionCreated  = "subscription.created"
	EventSubscriptionUpdated  = "subscription.updated"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// CustomData is echoed back by Paddle on every transaction and subscription.
type CustomData struct {
	UserID string `json:"user_id"`
}

// Event is the webhook envelope. Data is decoded by type.
type Event struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type TransactionItem struct {
	Price struct {
		ID string `json:"id"`
	} `json:"price"`
	Quantity int `json:"quantity"`
}

type Transaction struct {
	ID             string            `json:"id"`
	Status         string            `json:"status"`
	CustomerID     string            `json:"customer_id"`
	SubscriptionID *string           `json:"subscription_id"`
	CustomData     *CustomData       `json:"custom_data"`
	Items          []TransactionItem `json:"items"`
}

type Subscription struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	CustomerID string      `json:"customer_id"`
	CustomData *CustomData `json:"custom_data"`
}

// ParseEvent decodes a webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if ev.EventType == "" {
		return nil, errors.New("decode webhook: missing event_type")
	}
	return &ev, nil
}

func (e *Event) Transaction() (*Transaction, error) {
	var t Transaction
	if err := json.Unmarshal(e.Data, &t); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return &t, nil
}

func (e *Event) Subscription() (*Subscription, error) {
	var s Subscription
	if err := json.Unmarshal(e.Data, &s); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	return &s, nil
}

// Verifier checks webhook signatures against the notification secret.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), tolerance: 5 * time.Minute, now: time.Now}
}

// Verify accepts the body when any h1 value in header is the HMAC-SHA256 of
// "<ts>:<body>" and ts is within the tolerance window.
func (v *Verifier) Verify(header string, body []byte) error {
	if len(v.secret) == 0 {
		return fmt.Errorf("%w: no webhook secret configured", ErrInvalidSignature)
	}

	var ts string
	var signatures []string
	for _, part := range strings.Split(header, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "h1":
			signatures = append(signatures, value)
		}
	}
	if ts == "" || len(signatures) == 0 {
		return fmt.Errorf("%w: malformed header", ErrInvalidSignature)
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	age := v.now().Sub(time.Unix(unix, 0))
	if age > v.tolerance || age < -v.tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	want := mac(v.secret, ts, body)
	for _, sig := range signatures {
		got, err := hex.DecodeString(sig)
		if err == nil && hmac.Equal(got, want) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign builds a signature header for body, as Paddle would.
func Sign(secret string, at time.Time, body []byte) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	return "ts=" + ts + ";h1=" + hex.EncodeToString(mac([]byte(secret), ts, body))
}

func mac(secret []byte, ts string, body []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(ts))
	h.Write([]byte(":"))
	h.Write(body)
	return h.Sum(nil)
}
