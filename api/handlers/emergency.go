package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/matricare/matricare-api/api"
	"github.com/matricare/matricare-api/config"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/models"
)

// Emergency exported for testing purposes
type Emergency struct {
	DB databases.EmergencyAlertDatabase
}

type emergencyAlertRequest struct {
	Message  string   `json:"message"`
	Contacts []string `json:"contacts"`
}

// sendEmail sends a single email through SendGrid
func sendEmail(toEmail, subject, plainText, htmlContent string) error {
	from := mail.NewEmail("MatriCare", "no-reply@matricare.health")
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)
	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send email", "error", err, "to", toEmail)
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", toEmail)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	return nil
}

// SendEmergencyAlertHandler persists the alert and emails every listed
// contact. Individual email failures are logged, not surfaced.
func (e Emergency) SendEmergencyAlertHandler(w http.ResponseWriter, r *http.Request) {
	var req emergencyAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Message == "" || len(req.Contacts) == 0 {
		config.ErrorStatus("message and contacts are required", http.StatusBadRequest, w, errMissingRequired)
		return
	}

	alert := models.EmergencyAlert{
		ID:        primitive.NewObjectID(),
		Message:   req.Message,
		Contacts:  req.Contacts,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := e.DB.InsertOne(ctx, alert); err != nil {
		config.ErrorStatus("failed to store emergency alert", http.StatusInternalServerError, w, err)
		return
	}

	subject := "Emergency Alert"
	body := fmt.Sprintf("Emergency alert: %s", req.Message)
	html := fmt.Sprintf("<p><strong>Emergency alert:</strong> %s</p>", req.Message)
	for _, contact := range req.Contacts {
		if err := sendEmail(contact, subject, body, html); err != nil {
			zap.S().Warnw("failed to alert contact", "contact", contact, "error", err)
		}
	}

	b, err := json.Marshal(alert)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
