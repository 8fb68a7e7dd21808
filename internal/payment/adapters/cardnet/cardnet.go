package cardnet

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/foodcourtlabs/foodcourt/internal/payment/domain"
)

// Adapter integrates the card-network provider. Authorization only creates a
// payment intent; final settlement arrives asynchronously via webhook, so the
// immediate outcome is always pending.
type Adapter struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	client        *http.Client
}

func New(baseURL, apiKey, webhookSecret string) *Adapter {
	return &Adapter{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        strings.TrimSpace(apiKey),
		webhookSecret: strings.TrimSpace(webhookSecret),
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *Adapter) Method() paymentdomain.Method { return paymentdomain.MethodCardNetwork }

func (a *Adapter) Provider() string { return "cardnet" }

// Validate is a no-op: card entry happens on the provider's side, the intent
// creation call needs nothing beyond order and amount.
func (a *Adapter) Validate(ctx context.Context, details paymentdomain.PaymentDetails) error {
	return nil
}

func (a *Adapter) Authorize(ctx context.Context, req paymentdomain.AuthorizeRequest) (*paymentdomain.AuthorizeResult, error) {
	if a.apiKey == "" {
		return nil, errors.New("cardnet api key not configured")
	}

	data := url.Values{}
	data.Set("amount", strconv.FormatInt(req.Amount, 10))
	data.Set("currency", strings.ToLower(req.Currency))
	data.Set("metadata[order_id]", req.OrderID.String())

	endpoint := a.baseURL + "/v1/payment_intents"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cardnet api error: %d body: %s", resp.StatusCode, string(body))
	}

	var intent struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
		Status       string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, err
	}
	if intent.ID == "" {
		return nil, errors.New("cardnet api returned no intent id")
	}

	return &paymentdomain.AuthorizeResult{
		Outcome:          paymentdomain.OutcomePending,
		ProviderIntentID: intent.ID,
		ClientSecret:     intent.ClientSecret,
	}, nil
}

// Verify checks the HMAC-SHA256 signature header computed over
// "<timestamp>.<raw body>". The raw request bytes must be passed unmodified.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	sigHeader := strings.TrimSpace(headers.Get("Cardnet-Signature"))
	if sigHeader == "" || a.webhookSecret == "" {
		return paymentdomain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write([]byte(timestamp + "." + string(payload)))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}
	return paymentdomain.ErrInvalidSignature
}

type cardnetEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type cardnetIntent struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Created       int64  `json:"created"`
	FailureReason string `json:"failure_reason"`
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.ProviderEvent, error) {
	var event cardnetEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	var eventType string
	switch strings.TrimSpace(event.Type) {
	case "payment_intent.succeeded":
		eventType = paymentdomain.EventTypePaymentSucceeded
	case "payment_intent.payment_failed":
		eventType = paymentdomain.EventTypePaymentFailed
	case "payment_intent.canceled":
		eventType = paymentdomain.EventTypePaymentCanceled
	default:
		return nil, paymentdomain.ErrEventIgnored
	}

	var intent cardnetIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(intent.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	occurredAt := time.Unix(event.Created, 0).UTC()
	if intent.Created != 0 {
		occurredAt = time.Unix(intent.Created, 0).UTC()
	}

	return &paymentdomain.ProviderEvent{
		Provider:         "cardnet",
		ProviderEventID:  event.ID,
		ProviderIntentID: intent.ID,
		Type:             eventType,
		Amount:           intent.Amount,
		Currency:         strings.ToUpper(strings.TrimSpace(intent.Currency)),
		OccurredAt:       occurredAt,
		RawPayload:       payload,
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		switch strings.TrimSpace(keyValue[0]) {
		case "t":
			timestamp = strings.TrimSpace(keyValue[1])
		case "v1":
			signatures = append(signatures, strings.TrimSpace(keyValue[1]))
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}
