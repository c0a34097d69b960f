package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/matricare/matricare-api/api/handlers"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/databases/mocks"
	"github.com/matricare/matricare-api/models"
)

func TestPatient_RegisterPatientHandlerDuplicateEmail(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/patient/register",
		strings.NewReader(`{"name": "Ama", "email": "ama@example.com", "password": "s3cret"}`))
	if err != nil {
		t.Fatal(err)
	}

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(nil)
	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &MockDatabaseHelper{}
	db.On("Collection", "patients").Return(conn)

	p := handlers.Patient{DB: databases.NewPatientDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(p.RegisterPatientHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	conn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestPatient_LoginPatientHandlerSuccess(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret")

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)

	req, err := http.NewRequest("POST", "/api/v1/patient/login",
		strings.NewReader(`{"email": "ama@example.com", "password": "s3cret"}`))
	if err != nil {
		t.Fatal(err)
	}

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Patient)
		(*arg).ID = primitive.NewObjectID()
		(*arg).Email = "ama@example.com"
		(*arg).Password = string(hash)
	})
	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &MockDatabaseHelper{}
	db.On("Collection", "patients").Return(conn)

	p := handlers.Patient{DB: databases.NewPatientDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(p.LoginPatientHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"token":`)
	assert.NotContains(t, rr.Body.String(), "s3cret")
}

func TestPatient_UpdatePatientHandlerNotFound(t *testing.T) {
	patientID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("PUT", "/api/v1/patient/"+patientID,
		strings.NewReader(`{"spouse": "Kwame"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"patient_id": patientID})
	req.Header.Set("Authorization", "Bearer abc123")

	conn := &mocks.CollectionHelper{}
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	db := &MockDatabaseHelper{}
	db.On("Collection", "patients").Return(conn)

	p := handlers.Patient{DB: databases.NewPatientDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(p.UpdatePatientHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"response": "patient not found, mongo: no documents in result"}`, rr.Body.String())
}
