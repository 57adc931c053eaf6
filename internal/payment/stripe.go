package payment

import (
	"context"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// StripeProcessor implements Processor against the Stripe API.
type StripeProcessor struct {
	api *client.API
}

// NewStripeProcessor builds a processor from a Stripe secret key.
func NewStripeProcessor(secretKey string) *StripeProcessor {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProcessor{api: api}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, amountMinor int64, currency string, meta Metadata) (*Intent, error) {
	if amountMinor <= 0 {
		return nil, ErrInvalidAmount
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("camp_name", meta.CampName)
	params.AddMetadata("registrant_name", meta.RegistrantName)
	params.AddMetadata("registrant_email", meta.RegistrantEmail)
	params.AddMetadata("organizer_email", meta.OrganizerEmail)

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripe(pi), nil
}

func (p *StripeProcessor) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := p.api.PaymentIntents.Get(id, params)
	if err != nil {
		return nil, err
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
	}
}
