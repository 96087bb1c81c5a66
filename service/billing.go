package service

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/CaioZinDaLua/secure-contract-ai-review/config"
	"github.com/CaioZinDaLua/secure-contract-ai-review/model"
)

// BillingService wraps the payment provider: hosted checkout session
// creation and signature-verified webhook events that move users between
// plans.
type BillingService struct {
	sc     *client.API
	store  *Store
	config *config.StripeConfig
}

func NewBillingService(cfg *config.StripeConfig, store *Store) *BillingService {
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)

	return &BillingService{
		sc:     sc,
		store:  store,
		config: cfg,
	}
}

// CreateCheckout returns the redirect URL of a hosted payment page for
// the pro subscription, reusing the user's existing payment-provider
// customer when one is known.
func (s *BillingService) CreateCheckout(userID, email, plan string) (string, error) {
	if plan != model.PlanPro {
		return "", &ValidationError{Reason: "Plano inválido"}
	}

	customerID, err := s.ensureCustomer(userID, email)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.config.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Contrato Seguro PRO"),
						Description: stripe.String("Acesso completo ao chat com IA e funcionalidades avançadas"),
					},
					UnitAmount: stripe.Int64(s.config.ProPriceCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.config.SuccessURL),
		CancelURL:  stripe.String(s.config.CancelURL),
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("plan", model.PlanPro)

	session, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		return "", stripeError("create checkout session", err)
	}

	return session.URL, nil
}

func (s *BillingService) ensureCustomer(userID, email string) (string, error) {
	ent, err := s.store.GetEntitlement(userID)
	if err != nil {
		return "", err
	}
	if ent.StripeCustomerID != "" {
		return ent.StripeCustomerID, nil
	}

	listParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	listParams.Limit = stripe.Int64(1)

	var customerID string
	iter := s.sc.Customers.List(listParams)
	if iter.Next() {
		customerID = iter.Customer().ID
	} else if err := iter.Err(); err != nil {
		return "", stripeError("list customers", err)
	}

	if customerID == "" {
		params := &stripe.CustomerParams{Email: stripe.String(email)}
		params.AddMetadata("user_id", userID)

		customer, err := s.sc.Customers.New(params)
		if err != nil {
			return "", stripeError("create customer", err)
		}
		customerID = customer.ID
	}

	if err := s.store.SetStripeCustomer(userID, customerID); err != nil {
		return "", err
	}
	return customerID, nil
}

// HandleWebhook verifies the event signature and applies plan changes.
// A signature failure is rejected before any state change.
func (s *BillingService) HandleWebhook(payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return &UpstreamError{Op: "webhook signature verification", Detail: err.Error()}
	}

	slog.Info("stripe event received", "type", event.Type, "event_id", event.ID)

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return &ValidationError{Reason: "malformed checkout session payload"}
		}
		userID := session.Metadata["user_id"]
		if session.Mode != stripe.CheckoutSessionModeSubscription || userID == "" {
			return nil
		}
		if session.Customer != nil {
			if err := s.store.SetStripeCustomer(userID, session.Customer.ID); err != nil {
				return err
			}
		}
		return s.store.SetPlan(userID, model.PlanPro)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return &ValidationError{Reason: "malformed subscription payload"}
		}
		if sub.Customer == nil {
			return nil
		}
		return s.downgradeByCustomer(sub.Customer.ID)

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return &ValidationError{Reason: "malformed invoice payload"}
		}
		if invoice.Customer == nil {
			return nil
		}
		return s.downgradeByCustomer(invoice.Customer.ID)

	default:
		slog.Info("unhandled stripe event", "type", event.Type)
		return nil
	}
}

func (s *BillingService) downgradeByCustomer(customerID string) error {
	userID, err := s.store.UserIDByStripeCustomer(customerID)
	if errors.Is(err, ErrNotFound) {
		slog.Warn("stripe customer has no local user", "customer_id", customerID)
		return nil
	}
	if err != nil {
		return err
	}
	return s.store.SetPlan(userID, model.PlanFree)
}

func stripeError(op string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &UpstreamError{Op: op, Status: stripeErr.HTTPStatusCode, Detail: string(stripeErr.Code)}
	}
	return &UpstreamError{Op: op, Detail: err.Error()}
}
