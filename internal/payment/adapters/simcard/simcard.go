package simcard

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	paymentdomain "github.com/foodcourtlabs/foodcourt/internal/payment/domain"
	"github.com/foodcourtlabs/foodcourt/pkg/validate"
)

// Test card numbers that always decline, regardless of the random draw.
var knownBadNumbers = map[string]string{
	"4000000000000002": "card declined",
	"4000000000009995": "insufficient funds",
	"4000000000000069": "card expired",
	"4000000000000127": "incorrect cvc",
}

// Adapter simulates a card processor for a provider with no sandbox. The
// random-outcome behavior is a placeholder; a real integration replaces this
// adapter without touching the orchestrator.
type Adapter struct {
	delay       time.Duration
	successRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func New(delay time.Duration, successRate float64) *Adapter {
	return &Adapter{
		delay:       delay,
		successRate: successRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *Adapter) Method() paymentdomain.Method { return paymentdomain.MethodSimulatedCard }

func (a *Adapter) Validate(ctx context.Context, details paymentdomain.PaymentDetails) error {
	errs := validate.FieldErrors{}

	number := strings.ReplaceAll(strings.TrimSpace(details.CardNumber), " ", "")
	if !validCardNumber(number) {
		errs.Add("card_number", "unrecognized card number")
	}
	if details.ExpMonth < 1 || details.ExpMonth > 12 {
		errs.Add("exp_month", "invalid expiry month")
	}
	if details.ExpYear < time.Now().UTC().Year() {
		errs.Add("exp_year", "card expiry year is in the past")
	}
	if !validate.Digits(details.CVC) || len(details.CVC) < 3 || len(details.CVC) > 4 {
		errs.Add("cvc", "invalid cvc")
	}
	return errs.OrNil()
}

func (a *Adapter) Authorize(ctx context.Context, req paymentdomain.AuthorizeRequest) (*paymentdomain.AuthorizeResult, error) {
	number := strings.ReplaceAll(strings.TrimSpace(req.Details.CardNumber), " ", "")

	// Deterministic test numbers decline immediately, before the delay and
	// the probabilistic branch.
	if reason, ok := knownBadNumbers[number]; ok {
		return &paymentdomain.AuthorizeResult{
			Outcome:       paymentdomain.OutcomeDeclined,
			FailureReason: reason,
		}, nil
	}

	if err := sleep(ctx, a.delay); err != nil {
		return nil, err
	}

	if a.draw() >= a.successRate {
		return &paymentdomain.AuthorizeResult{
			Outcome:       paymentdomain.OutcomeDeclined,
			FailureReason: "card declined",
		}, nil
	}

	return &paymentdomain.AuthorizeResult{
		Outcome:           paymentdomain.OutcomeApproved,
		AuthorizationCode: strings.ToUpper(uuid.NewString()[:8]),
		ProviderReference: "sim_" + uuid.NewString(),
	}, nil
}

func (a *Adapter) draw() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64()
}

// validCardNumber accepts Visa, Mastercard and Amex issuer prefixes.
func validCardNumber(number string) bool {
	if !validate.Digits(number) || len(number) < 13 || len(number) > 19 {
		return false
	}
	switch {
	case strings.HasPrefix(number, "4"):
		return true
	case number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return true
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return true
	}
	return false
}

// sleep blocks the current request only; other requests keep their own
// goroutines.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
