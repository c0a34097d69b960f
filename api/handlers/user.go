package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/matricare/matricare-api/api"
	"github.com/matricare/matricare-api/config"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/models"
)

// User exported for testing purposes
type User struct {
	DoctorDB  databases.DoctorDatabase
	PatientDB databases.PatientDatabase
}

// SearchUsersHandler searches doctors and patients by name or email and
// returns the merged directory, doctors first
func (u User) SearchUsersHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	filter := bson.M{}
	if query != "" {
		regex := primitive.Regex{Pattern: query, Options: "i"}
		filter = bson.M{"$or": []bson.M{
			{"name": regex},
			{"email": regex},
		}}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	doctors, err := u.DoctorDB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to search doctors", http.StatusInternalServerError, w, err)
		return
	}
	patients, err := u.PatientDB.Find(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to search patients", http.StatusInternalServerError, w, err)
		return
	}

	entries := make([]models.DirectoryEntry, 0, len(doctors)+len(patients))
	for _, d := range doctors {
		entries = append(entries, models.DirectoryEntry{
			ID:             d.ID.Hex(),
			Name:           d.Name,
			Email:          d.Email,
			ProfilePic:     d.ProfilePic,
			UserType:       "Doctor",
			Specialization: d.Specialization,
		})
	}
	for _, p := range patients {
		entries = append(entries, models.DirectoryEntry{
			ID:         p.ID.Hex(),
			Name:       p.Name,
			Email:      p.Email,
			ProfilePic: p.ProfilePic,
			UserType:   "Patient",
			Spouse:     p.Spouse,
		})
	}

	b, err := json.Marshal(entries)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UserByIDHandler resolves an id against doctors first, then patients
func (u User) UserByIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	uID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		config.ErrorStatus("invalid user ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if doctor, err := u.DoctorDB.FindOne(ctx, bson.M{"_id": uID}); err == nil {
		b, err := json.Marshal(models.DirectoryEntry{
			ID:             doctor.ID.Hex(),
			Name:           doctor.Name,
			Email:          doctor.Email,
			ProfilePic:     doctor.ProfilePic,
			UserType:       "Doctor",
			Specialization: doctor.Specialization,
		})
		if err != nil {
			config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(b)
		return
	}

	if patient, err := u.PatientDB.FindOne(ctx, bson.M{"_id": uID}); err == nil {
		b, err := json.Marshal(models.DirectoryEntry{
			ID:         patient.ID.Hex(),
			Name:       patient.Name,
			Email:      patient.Email,
			ProfilePic: patient.ProfilePic,
			UserType:   "Patient",
			Spouse:     patient.Spouse,
		})
		if err != nil {
			config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(b)
		return
	}

	config.ErrorStatus("user not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
}

// RefreshTokenHandler exchanges a valid refresh token for a new access token
func (u User) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.RefreshToken == "" {
		config.ErrorStatus("refreshToken is required", http.StatusBadRequest, w, errMissingRequired)
		return
	}

	id, err := api.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		config.ErrorStatus("invalid refresh token", http.StatusUnauthorized, w, err)
		return
	}

	token, err := api.GenerateAccessToken(id)
	if err != nil {
		config.ErrorStatus("failed to generate token", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
	})
}
