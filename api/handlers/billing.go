package handlers

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/matricare/matricare-api/api"
	"github.com/matricare/matricare-api/config"
)

// Billing exported for testing purposes
type Billing struct{}

type checkoutSessionRequest struct {
	PriceID string `json:"priceId"`
	UserID  string `json:"userId"`
}

// CreateCheckoutSessionHandler creates a Stripe checkout session for a
// premium subscription and returns the redirect URL
func (b Billing) CreateCheckoutSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req checkoutSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.PriceID == "" {
		config.ErrorStatus("priceId is required", http.StatusBadRequest, w, errMissingRequired)
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = api.UserID(r)
	}

	baseURL := os.Getenv("BASE_URL")
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(req.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(baseURL + "/api/v1/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(baseURL + "/api/v1/cancel"),
		ClientReferenceID: stripe.String(userID),
	}

	s, err := session.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusInternalServerError, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"sessionId": s.ID,
		"url":       s.URL,
	})
}

// HandleSuccessRedirect is the landing page after a completed checkout
func (b Billing) HandleSuccessRedirect(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Payment successful! You can return to the app."))
}

// HandleCancelRedirect is the landing page after an abandoned checkout
func (b Billing) HandleCancelRedirect(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Payment cancelled. You can return to the app."))
}
