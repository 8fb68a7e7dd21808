package banktransfer

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	bankdomain "github.com/foodcourtlabs/foodcourt/internal/bank/domain"
	paymentdomain "github.com/foodcourtlabs/foodcourt/internal/payment/domain"
	"github.com/foodcourtlabs/foodcourt/pkg/validate"
)

const minReferenceLength = 6

// Adapter simulates the mobile bank-transfer rail. A successful attempt is
// never immediately final: it lands in pending_verification and waits for the
// manual bank-side confirmation step.
type Adapter struct {
	banks       bankdomain.Repository
	delay       time.Duration
	successRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func New(banks bankdomain.Repository, delay time.Duration, successRate float64) *Adapter {
	return &Adapter{
		banks:       banks,
		delay:       delay,
		successRate: successRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *Adapter) Method() paymentdomain.Method { return paymentdomain.MethodBankTransfer }

// Validate rejects malformed details immediately, before any simulated delay
// or random draw.
func (a *Adapter) Validate(ctx context.Context, details paymentdomain.PaymentDetails) error {
	errs := validate.FieldErrors{}
	if !validate.MobilePhone(details.Phone) {
		errs.Add("phone", "invalid mobile number")
	}
	if !validate.NationalID(details.NationalID) {
		errs.Add("national_id", "invalid national id")
	}
	if len(strings.TrimSpace(details.Reference)) < minReferenceLength {
		errs.Add("reference", "transaction reference must be at least 6 characters")
	}
	if strings.TrimSpace(details.BankName) == "" {
		errs.Add("bank_name", "bank name is required")
	} else {
		supported, err := a.banks.IsSupported(ctx, nil, details.BankName)
		if err != nil {
			return err
		}
		if !supported {
			errs.Add("bank_name", "unsupported bank")
		}
	}
	return errs.OrNil()
}

func (a *Adapter) Authorize(ctx context.Context, req paymentdomain.AuthorizeRequest) (*paymentdomain.AuthorizeResult, error) {
	if err := sleep(ctx, a.delay); err != nil {
		return nil, err
	}

	if a.draw() >= a.successRate {
		return &paymentdomain.AuthorizeResult{
			Outcome:       paymentdomain.OutcomeDeclined,
			FailureReason: "transfer could not be confirmed with the bank",
		}, nil
	}

	return &paymentdomain.AuthorizeResult{
		Outcome:           paymentdomain.OutcomePendingVerification,
		ProviderReference: "pm_" + uuid.NewString(),
	}, nil
}

func (a *Adapter) draw() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rng.Float64()
}

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
