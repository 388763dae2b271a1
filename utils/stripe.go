package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const stripeBaseURL = "https://api.stripe.com"

// StripePaymentIntent is the subset of the PaymentIntent object we use.
type StripePaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StripeClient calls the Stripe REST API with a secret key. The zero HTTP
// client gets a sane timeout.
type StripeClient struct {
	SecretKey string
	BaseURL   string
	HTTP      *http.Client
}

func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{
		SecretKey: secretKey,
		BaseURL:   stripeBaseURL,
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

// CreatePaymentIntent creates a card PaymentIntent for the given amount in
// the smallest currency unit (cents for usd).
func (c *StripeClient) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string) (*StripePaymentIntent, error) {
	if c.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is not configured")
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Add("payment_method_types[]", "card")

	base := c.BaseURL
	if base == "" {
		base = stripeBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build stripe request: %w", err)
	}
	req.SetBasicAuth(c.SecretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr stripeErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe error (%s): %s", apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe returned status %d", resp.StatusCode)
	}

	var intent StripePaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}
	if intent.ClientSecret == "" {
		return nil, fmt.Errorf("stripe response missing client_secret")
	}
	return &intent, nil
}
