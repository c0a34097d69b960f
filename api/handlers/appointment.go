package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matricare/matricare-api/api"
	"github.com/matricare/matricare-api/config"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/models"
)

// Appointment exported for testing purposes
type Appointment struct {
	DB databases.AppointmentDatabase
}

type bookAppointmentRequest struct {
	UserID   string    `json:"userId"`
	DoctorID string    `json:"doctorId"`
	Date     time.Time `json:"date"`
	Reason   string    `json:"reason"`
}

// BookAppointmentHandler creates a pending appointment
func (a Appointment) BookAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" || req.DoctorID == "" || req.Date.IsZero() || req.Reason == "" {
		config.ErrorStatus("userId, doctorId, date and reason are required", http.StatusBadRequest, w, errMissingRequired)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	appointment := models.Appointment{
		ID:        primitive.NewObjectID(),
		UserID:    req.UserID,
		DoctorID:  req.DoctorID,
		Date:      primitive.NewDateTimeFromTime(req.Date),
		Reason:    req.Reason,
		Status:    models.AppointmentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := a.DB.InsertOne(ctx, appointment); err != nil {
		config.ErrorStatus("failed to book appointment", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(appointment)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// AppointmentsByUserIDHandler returns a patient's appointments, soonest first
func (a Appointment) AppointmentsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	a.listAppointments(w, r, bson.M{"userId": userID})
}

// AppointmentsByDoctorIDHandler returns a doctor's appointments, soonest first
func (a Appointment) AppointmentsByDoctorIDHandler(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctor_id"]
	a.listAppointments(w, r, bson.M{"doctorId": doctorID})
}

// AppointmentsHandler returns every appointment, soonest first
func (a Appointment) AppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	a.listAppointments(w, r, bson.M{})
}

func (a Appointment) listAppointments(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sortOpt := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	dbResp, err := a.DB.Find(ctx, filter, sortOpt)
	if err != nil {
		config.ErrorStatus("failed to get appointments", http.StatusInternalServerError, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Appointment{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateAppointmentStatusHandler moves an appointment to confirmed or
// cancelled
func (a Appointment) UpdateAppointmentStatusHandler(w http.ResponseWriter, r *http.Request) {
	appointmentID := mux.Vars(r)["appointment_id"]

	var requestBody struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if requestBody.Status != models.AppointmentConfirmed && requestBody.Status != models.AppointmentCancelled {
		config.ErrorStatus("status must be confirmed or cancelled", http.StatusBadRequest, w, errMissingRequired)
		return
	}

	aID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		config.ErrorStatus("invalid appointment ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":    requestBody.Status,
		"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
	}}
	matched, err := a.DB.UpdateOne(ctx, bson.M{"_id": aID}, update)
	if err != nil {
		config.ErrorStatus("failed to update appointment", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("appointment not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	dbResp, err := a.DB.FindOne(ctx, bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get updated appointment", http.StatusInternalServerError, w, err)
		return
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteAppointmentHandler deletes an appointment by ID
func (a Appointment) DeleteAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	appointmentID := mux.Vars(r)["appointment_id"]

	aID, err := primitive.ObjectIDFromHex(appointmentID)
	if err != nil {
		config.ErrorStatus("invalid appointment ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := a.DB.DeleteOne(ctx, bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to delete appointment", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("appointment not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Appointment deleted successfully",
	})
}
