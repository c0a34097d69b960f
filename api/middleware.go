package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/basic"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/matricare/matricare-api/databases"
)

// MiddlewareDB is a struct that holds the participant databases used to
// validate credentials
type MiddlewareDB struct {
	Doctors  databases.DoctorDatabase
	Patients databases.PatientDatabase
}

var authenticator auth.Authenticator
var cache store.Cache

type contextKey string

// ContextKeyUserID carries the authenticated participant id through the request context
const ContextKeyUserID contextKey = "userID"

// Middleware adds bearer authentication around accessing the routes. JWT access
// tokens issued at login are accepted first; tokens issued by CreateToken are
// honored through the go-guardian cache as a fallback.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if id, err := parseAccessToken(r); err == nil {
			ctx := context.WithValue(r.Context(), ContextKeyUserID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		ctx := context.WithValue(r.Context(), ContextKeyUserID, user.ID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated participant id stored by Middleware, or ""
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(ContextKeyUserID).(string)
	return id
}

// CreateToken returns a cached bearer token for basic-auth credentials
func (m MiddlewareDB) CreateToken(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	email, password, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "basic auth failed", http.StatusUnauthorized)
		return
	}

	info, err := m.ValidateUser(r.Context(), r, email, password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token := uuid.New().String()
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, info, r)

	response := map[string]string{
		"token": token,
		"_id":   info.ID(),
	}

	responseBody, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}

	w.Write(responseBody)
}

// SetupGoGuardian sets up the go-guardian middleware
func (m MiddlewareDB) SetupGoGuardian() {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour*24*365*100) // 100 years ttl
	basicStrategy := basic.New(m.ValidateUser, cache)
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)

	authenticator.EnableStrategy(basic.StrategyKey, basicStrategy)
	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
}

// ValidateUser validates email/password against the doctor collection first,
// then the patient collection
func (m MiddlewareDB) ValidateUser(ctx context.Context, r *http.Request, email, password string) (auth.Info, error) {
	if doctor, err := m.Doctors.FindOne(ctx, bson.M{"email": email}); err == nil {
		if err := bcrypt.CompareHashAndPassword([]byte(doctor.Password), []byte(password)); err != nil {
			return nil, fmt.Errorf("failed to compare password")
		}
		return auth.NewDefaultUser(email, doctor.ID.Hex(), nil, nil), nil
	}

	patient, err := m.Patients.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("no matching email found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(patient.Password), []byte(password)); err != nil {
		return nil, fmt.Errorf("failed to compare password")
	}
	return auth.NewDefaultUser(email, patient.ID.Hex(), nil, nil), nil
}

// RevokeToken revokes a token
func RevokeToken(w http.ResponseWriter, r *http.Request) {
	reqToken := r.Header.Get("Authorization")
	splitToken := strings.Split(reqToken, "Bearer ")
	if len(splitToken) < 2 {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "missing bearer token"}`))
		return
	}
	reqToken = splitToken[1]

	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Revoke(tokenStrategy, reqToken, r)
	body := fmt.Sprintf(`{"revoked token": "%s"}`, reqToken)
	w.Write([]byte(body))
}
