package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/matricare/matricare-api/api"
	"github.com/matricare/matricare-api/config"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/models"
)

// Patient exported for testing purposes
type Patient struct {
	DB databases.PatientDatabase
}

type patientRegisterRequest struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Spouse     string `json:"spouse"`
	ProfilePic string `json:"profilePic"`
}

// RegisterPatientHandler creates a patient account and returns it with a
// fresh token pair
func (p Patient) RegisterPatientHandler(w http.ResponseWriter, r *http.Request) {
	var req patientRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		config.ErrorStatus("name, email and password are required", http.StatusBadRequest, w, errMissingRequired)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := p.DB.FindOne(ctx, bson.M{"email": req.Email}); err == nil {
		config.ErrorStatus("email already registered", http.StatusConflict, w, errors.New("duplicate email"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	patient := models.Patient{
		ID:         primitive.NewObjectID(),
		Name:       req.Name,
		Age:        req.Age,
		Email:      req.Email,
		Password:   string(hashedPassword),
		Spouse:     req.Spouse,
		ProfilePic: req.ProfilePic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := p.DB.InsertOne(ctx, patient); err != nil {
		config.ErrorStatus("failed to create patient", http.StatusInternalServerError, w, err)
		return
	}

	p.writeAuthResponse(w, http.StatusCreated, patient)
}

// LoginPatientHandler verifies patient credentials and returns a token pair
func (p Patient) LoginPatientHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	patient, err := p.DB.FindOne(ctx, bson.M{"email": req.Email})
	if err != nil {
		config.ErrorStatus("invalid email or password", http.StatusUnauthorized, w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(patient.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("invalid email or password", http.StatusUnauthorized, w, err)
		return
	}

	p.writeAuthResponse(w, http.StatusOK, *patient)
}

func (p Patient) writeAuthResponse(w http.ResponseWriter, status int, patient models.Patient) {
	token, err := api.GenerateAccessToken(patient.ID.Hex())
	if err != nil {
		config.ErrorStatus("failed to generate token", http.StatusInternalServerError, w, err)
		return
	}
	refreshToken, err := api.GenerateRefreshToken(patient.ID.Hex())
	if err != nil {
		zap.S().Warnf("failed to generate refresh token: %v", err)
	}

	b, err := json.Marshal(models.AuthResponse{
		User:         patient,
		Token:        token,
		RefreshToken: refreshToken,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(status)
	w.Write(b)
}

// PatientByIDHandler returns a patient by ID
func (p Patient) PatientByIDHandler(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["patient_id"]

	pID, err := primitive.ObjectIDFromHex(patientID)
	if err != nil {
		config.ErrorStatus("invalid patient ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := p.DB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to get patient by ID", http.StatusNotFound, w, err)
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

// PatientsHandler returns all patients
func (p Patient) PatientsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := p.DB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get patients", http.StatusInternalServerError, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Patient{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdatePatientHandler updates the mutable profile fields of a patient
func (p Patient) UpdatePatientHandler(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["patient_id"]

	pID, err := primitive.ObjectIDFromHex(patientID)
	if err != nil {
		config.ErrorStatus("invalid patient ID", http.StatusBadRequest, w, err)
		return
	}

	var req patientRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Age != 0 {
		set["age"] = req.Age
	}
	if req.Spouse != "" {
		set["spouse"] = req.Spouse
	}
	if req.ProfilePic != "" {
		set["profilePic"] = req.ProfilePic
	}
	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
			return
		}
		set["password"] = string(hashedPassword)
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	matched, err := p.DB.UpdateOne(ctx, bson.M{"_id": pID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update patient", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	dbResp, err := p.DB.FindOne(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to get updated patient", http.StatusInternalServerError, w, err)
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

// DeletePatientHandler deletes a patient by ID
func (p Patient) DeletePatientHandler(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["patient_id"]

	pID, err := primitive.ObjectIDFromHex(patientID)
	if err != nil {
		config.ErrorStatus("invalid patient ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := p.DB.DeleteOne(ctx, bson.M{"_id": pID})
	if err != nil {
		config.ErrorStatus("failed to delete patient", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("patient not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Patient deleted successfully",
	})
}
