// Package payment talks to the Paddle Billing API: it opens hosted checkouts
// and authenticates the webhooks Paddle sends back.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/01moynul/vividen-storefront/internal/config"
)

const (
	SandboxURL    = "https://sandbox-api.paddle.com"
	ProductionURL = "https://api.paddle.com"
)

var (
	// ErrNotConfigured means no API key is set.
	ErrNotConfigured = errors.New("payment provider not configured")
	// ErrUnavailable means the circuit breaker is refusing calls.
	ErrUnavailable = errors.New("payment provider unavailable")
)

// ProviderError is a non-2xx answer from Paddle.
type ProviderError struct {
	Status int
	Code   string
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("paddle returned %d", e.Status)
	}
	return fmt.Sprintf("paddle returned %d: %s: %s", e.Status, e.Code, e.Detail)
}

// CheckoutItem is one line of a checkout, already resolved to a Paddle price.
type CheckoutItem struct {
	PriceID  string `json:"price_id"`
	Quantity int    `json:"quantity"`
}

type CheckoutRequest struct {
	UserID     string
	Items      []CheckoutItem
	DiscountID string
}

type Checkout struct {
	TransactionID string
	URL           string
}

type transactionRequest struct {
	Items      []CheckoutItem `json:"items"`
	DiscountID string         `json:"discount_id,omitempty"`
	CustomData CustomData     `json:"custom_data"`
}

type transactionResponse struct {
	Data struct {
		ID       string `json:"id"`
		Checkout *struct {
			URL string `json:"url"`
		} `json:"checkout"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Type   string `json:"type"`
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"error"`
}

// Client is a Paddle Billing client. Calls go through a circuit breaker that
// opens after repeated transport or 5xx failures.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	apiKey  string
}

// NewClient builds a client for the configured environment. baseURL, when
// not empty, overrides the environment's API host.
func NewClient(cfg config.PaddleConfig, baseURL string) *Client {
	if baseURL == "" {
		baseURL = SandboxURL
		if strings.EqualFold(cfg.Environment, "production") {
			baseURL = ProductionURL
		}
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "paddle",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Rejected requests are our fault, not an outage.
		IsSuccessful: func(err error) bool {
			var pe *ProviderError
			if errors.As(err, &pe) {
				return pe.Status < http.StatusInternalServerError
			}
			return err == nil
		},
	})

	return &Client{http: httpClient, breaker: breaker, apiKey: cfg.APIKey}
}

// CreateCheckout creates a transaction and returns its hosted checkout URL.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if len(req.Items) == 0 {
		return nil, errors.New("create checkout: no items")
	}

	body := transactionRequest{
		Items:      req.Items,
		DiscountID: req.DiscountID,
		CustomData: CustomData{UserID: req.UserID},
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		var result transactionResponse
		var apiErr errorResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&result).
			SetError(&apiErr).
			Post("/transactions")
		if err != nil {
			return nil, fmt.Errorf("paddle request: %w", err)
		}
		if resp.IsError() {
			return nil, &ProviderError{Status: resp.StatusCode(), Code: apiErr.Error.Code, Detail: apiErr.Error.Detail}
		}
		return &result, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	result := out.(*transactionResponse)
	if result.Data.Checkout == nil || result.Data.Checkout.URL == "" {
		return nil, fmt.Errorf("paddle transaction %s has no checkout url", result.Data.ID)
	}
	return &Checkout{TransactionID: result.Data.ID, URL: result.Data.Checkout.URL}, nil
}
