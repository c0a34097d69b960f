package handlers_test

import (
	"errors"
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

func TestDoctor_RegisterDoctorHandlerMissingFields(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/doctor/register",
		strings.NewReader(`{"name": "Dr. Amara", "email": ""}`))
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{}
	d := handlers.Doctor{DB: databases.NewDoctorDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.RegisterDoctorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDoctor_RegisterDoctorHandlerSuccess(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret")

	req, err := http.NewRequest("POST", "/api/v1/doctor/register",
		strings.NewReader(`{"name": "Dr. Amara", "email": "amara@example.com", "password": "s3cret", "specialization": "Obstetrics"}`))
	if err != nil {
		t.Fatal(err)
	}

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	db := &MockDatabaseHelper{}
	db.On("Collection", "doctors").Return(conn)

	d := handlers.Doctor{DB: databases.NewDoctorDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.RegisterDoctorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"token":`)
	assert.Contains(t, rr.Body.String(), `"refreshToken":`)
	assert.Contains(t, rr.Body.String(), `"specialization":"Obstetrics"`)
	assert.NotContains(t, rr.Body.String(), "s3cret")
}

func TestDoctor_RegisterDoctorHandlerDuplicateEmail(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/doctor/register",
		strings.NewReader(`{"name": "Dr. Amara", "email": "amara@example.com", "password": "s3cret"}`))
	if err != nil {
		t.Fatal(err)
	}

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(nil)
	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &MockDatabaseHelper{}
	db.On("Collection", "doctors").Return(conn)

	d := handlers.Doctor{DB: databases.NewDoctorDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.RegisterDoctorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	conn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestDoctor_LoginDoctorHandlerWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.DefaultCost)

	req, err := http.NewRequest("POST", "/api/v1/doctor/login",
		strings.NewReader(`{"email": "amara@example.com", "password": "wrong-password"}`))
	if err != nil {
		t.Fatal(err)
	}

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Doctor)
		(*arg).Email = "amara@example.com"
		(*arg).Password = string(hash)
	})
	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &MockDatabaseHelper{}
	db.On("Collection", "doctors").Return(conn)

	d := handlers.Doctor{DB: databases.NewDoctorDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.LoginDoctorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDoctor_LoginDoctorHandlerSuccess(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("JWT_REFRESH_SECRET", "test-refresh-secret")

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)

	req, err := http.NewRequest("POST", "/api/v1/doctor/login",
		strings.NewReader(`{"email": "amara@example.com", "password": "s3cret"}`))
	if err != nil {
		t.Fatal(err)
	}

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Doctor)
		(*arg).ID = primitive.NewObjectID()
		(*arg).Email = "amara@example.com"
		(*arg).Password = string(hash)
	})
	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &MockDatabaseHelper{}
	db.On("Collection", "doctors").Return(conn)

	d := handlers.Doctor{DB: databases.NewDoctorDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.LoginDoctorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"token":`)
}

func TestDoctor_DoctorByIDHandlerInvalidID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/doctor/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"doctor_id": "1234"})
	req.Header.Set("Authorization", "Bearer abc123")

	db := &MockDatabaseHelper{}
	d := handlers.Doctor{DB: databases.NewDoctorDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DoctorByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDoctor_DoctorByIDHandlerNotFound(t *testing.T) {
	doctorID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("GET", "/api/v1/doctor/"+doctorID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"doctor_id": doctorID})
	req.Header.Set("Authorization", "Bearer abc123")

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	conn := &mocks.CollectionHelper{}
	conn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &MockDatabaseHelper{}
	db.On("Collection", "doctors").Return(conn)

	d := handlers.Doctor{DB: databases.NewDoctorDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DoctorByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDoctor_DeleteDoctorHandlerNotFound(t *testing.T) {
	doctorID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("DELETE", "/api/v1/doctor/"+doctorID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"doctor_id": doctorID})
	req.Header.Set("Authorization", "Bearer abc123")

	conn := &mocks.CollectionHelper{}
	conn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(0), nil)

	db := &MockDatabaseHelper{}
	db.On("Collection", "doctors").Return(conn)

	d := handlers.Doctor{DB: databases.NewDoctorDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(d.DeleteDoctorHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
