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

// Doctor exported for testing purposes
type Doctor struct {
	DB databases.DoctorDatabase
}

type doctorRegisterRequest struct {
	Name               string `json:"name"`
	Age                int    `json:"age"`
	Specialization     string `json:"specialization"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	DoctorValidationID string `json:"doctorValidationId"`
	LevelOfStudy       string `json:"levelOfStudy"`
	Workplace          string `json:"workplace"`
	ProfilePic         string `json:"profilePic"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterDoctorHandler creates a doctor account and returns it with a
// fresh token pair
func (d Doctor) RegisterDoctorHandler(w http.ResponseWriter, r *http.Request) {
	var req doctorRegisterRequest
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

	if _, err := d.DB.FindOne(ctx, bson.M{"email": req.Email}); err == nil {
		config.ErrorStatus("email already registered", http.StatusConflict, w, errors.New("duplicate email"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	doctor := models.Doctor{
		ID:                 primitive.NewObjectID(),
		Name:               req.Name,
		Age:                req.Age,
		Specialization:     req.Specialization,
		Email:              req.Email,
		Password:           string(hashedPassword),
		DoctorValidationID: req.DoctorValidationID,
		LevelOfStudy:       req.LevelOfStudy,
		Workplace:          req.Workplace,
		ProfilePic:         req.ProfilePic,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := d.DB.InsertOne(ctx, doctor); err != nil {
		config.ErrorStatus("failed to create doctor", http.StatusInternalServerError, w, err)
		return
	}

	d.writeAuthResponse(w, http.StatusCreated, doctor)
}

// LoginDoctorHandler verifies doctor credentials and returns a token pair
func (d Doctor) LoginDoctorHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctor, err := d.DB.FindOne(ctx, bson.M{"email": req.Email})
	if err != nil {
		config.ErrorStatus("invalid email or password", http.StatusUnauthorized, w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(doctor.Password), []byte(req.Password)); err != nil {
		config.ErrorStatus("invalid email or password", http.StatusUnauthorized, w, err)
		return
	}

	d.writeAuthResponse(w, http.StatusOK, *doctor)
}

func (d Doctor) writeAuthResponse(w http.ResponseWriter, status int, doctor models.Doctor) {
	token, err := api.GenerateAccessToken(doctor.ID.Hex())
	if err != nil {
		config.ErrorStatus("failed to generate token", http.StatusInternalServerError, w, err)
		return
	}
	refreshToken, err := api.GenerateRefreshToken(doctor.ID.Hex())
	if err != nil {
		zap.S().Warnf("failed to generate refresh token: %v", err)
	}

	b, err := json.Marshal(models.AuthResponse{
		User:         doctor,
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

// DoctorByIDHandler returns a doctor by ID
func (d Doctor) DoctorByIDHandler(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctor_id"]

	dID, err := primitive.ObjectIDFromHex(doctorID)
	if err != nil {
		config.ErrorStatus("invalid doctor ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := d.DB.FindOne(ctx, bson.M{"_id": dID})
	if err != nil {
		config.ErrorStatus("failed to get doctor by ID", http.StatusNotFound, w, err)
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

// DoctorsHandler returns all doctors
func (d Doctor) DoctorsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := d.DB.Find(ctx, bson.M{})
	if err != nil {
		config.ErrorStatus("failed to get doctors", http.StatusInternalServerError, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Doctor{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateDoctorHandler updates the mutable profile fields of a doctor
func (d Doctor) UpdateDoctorHandler(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctor_id"]

	dID, err := primitive.ObjectIDFromHex(doctorID)
	if err != nil {
		config.ErrorStatus("invalid doctor ID", http.StatusBadRequest, w, err)
		return
	}

	var req doctorRegisterRequest
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
	if req.Specialization != "" {
		set["specialization"] = req.Specialization
	}
	if req.LevelOfStudy != "" {
		set["levelOfStudy"] = req.LevelOfStudy
	}
	if req.Workplace != "" {
		set["workplace"] = req.Workplace
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

	matched, err := d.DB.UpdateOne(ctx, bson.M{"_id": dID}, bson.M{"$set": set})
	if err != nil {
		config.ErrorStatus("failed to update doctor", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("doctor not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	dbResp, err := d.DB.FindOne(ctx, bson.M{"_id": dID})
	if err != nil {
		config.ErrorStatus("failed to get updated doctor", http.StatusInternalServerError, w, err)
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

// DeleteDoctorHandler deletes a doctor by ID
func (d Doctor) DeleteDoctorHandler(w http.ResponseWriter, r *http.Request) {
	doctorID := mux.Vars(r)["doctor_id"]

	dID, err := primitive.ObjectIDFromHex(doctorID)
	if err != nil {
		config.ErrorStatus("invalid doctor ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := d.DB.DeleteOne(ctx, bson.M{"_id": dID})
	if err != nil {
		config.ErrorStatus("failed to delete doctor", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("doctor not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Doctor deleted successfully",
	})
}
