package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/matricare/matricare-api/api/handlers"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/databases/mocks"
)

func TestHealthData_TrackHealthDataHandlerMissingUserID(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/health-data",
		strings.NewReader(`{"bloodPressure": {"systolic": 120, "diastolic": 80}, "weight": 65.5}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	conn := &mocks.CollectionHelper{}
	db := &MockDatabaseHelper{}
	db.On("Collection", "healthdata").Return(conn)

	h := handlers.HealthData{DB: databases.NewHealthDataDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.TrackHealthDataHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	conn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestHealthData_TrackHealthDataHandlerSuccess(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/health-data",
		strings.NewReader(`{"userId": "`+testSenderID+`", "bloodPressure": {"systolic": 120, "diastolic": 80}, "weight": 65.5}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	conn := &mocks.CollectionHelper{}
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	db := &MockDatabaseHelper{}
	db.On("Collection", "healthdata").Return(conn)

	h := handlers.HealthData{DB: databases.NewHealthDataDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.TrackHealthDataHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"systolic":120`)
	assert.Contains(t, rr.Body.String(), `"weight":65.5`)
}

func TestHealthData_HealthDataByUserIDHandlerEmpty(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/health-data/user/"+testSenderID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"user_id": testSenderID})
	req.Header.Set("Authorization", "Bearer abc123")

	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil)
	conn := &mocks.CollectionHelper{}
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor)

	db := &MockDatabaseHelper{}
	db.On("Collection", "healthdata").Return(conn)

	h := handlers.HealthData{DB: databases.NewHealthDataDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HealthDataByUserIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestHealthData_HealthTipHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/health-tip", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	h := handlers.HealthData{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HealthTipHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["tip"])
}
