package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// StripeClient places holds on ride contribution amounts when a rider
// expresses interest: the funds are held with capture_method=manual,
// captured if the poster accepts, and released if interest is withdrawn
// or the ride is cancelled.
type StripeClient struct {
	enabled bool
}

// NewStripeClient configures the stripe SDK. An empty key disables the
// client; Hold then reports no hold rather than failing interest flows.
func NewStripeClient(apiKey string) *StripeClient {
	stripe.Key = apiKey
	return &StripeClient{enabled: apiKey != ""}
}

func (s *StripeClient) Enabled() bool { return s != nil && s.enabled }

// Hold creates a manual-capture PaymentIntent for the contribution and
// returns its ID.
func (s *StripeClient) Hold(ctx context.Context, amountCents int64, rideID, userID string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	params.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	params.AddMetadata("ride_id", rideID)
	params.AddMetadata("user_id", userID)
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}
	return pi.ID, nil
}

// Capture finalizes a held contribution.
func (s *StripeClient) Capture(ctx context.Context, holdID string) error {
	if !s.Enabled() || holdID == "" {
		return nil
	}
	_, err := paymentintent.Capture(holdID, nil)
	return err
}

// Release cancels a held contribution.
func (s *StripeClient) Release(ctx context.Context, holdID string) error {
	if !s.Enabled() || holdID == "" {
		return nil
	}
	_, err := paymentintent.Cancel(holdID, nil)
	return err
}
