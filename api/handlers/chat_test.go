package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/matricare/matricare-api/api/handlers"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/databases/mocks"
	"github.com/matricare/matricare-api/models"
)

type MockDatabaseHelper struct {
	mock.Mock
}

// Client provides a mock function.
func (_m *MockDatabaseHelper) Client() databases.ClientHelper {
	ret := _m.Called()

	var r0 databases.ClientHelper
	if rf, ok := ret.Get(0).(func() databases.ClientHelper); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.ClientHelper)
		}
	}

	return r0
}

// Collection provides a mock function.
func (_m *MockDatabaseHelper) Collection(name string) databases.CollectionHelper {
	ret := _m.Called(name)

	var r0 databases.CollectionHelper
	if rf, ok := ret.Get(0).(func(string) databases.CollectionHelper); ok {
		r0 = rf(name)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.CollectionHelper)
		}
	}

	return r0
}

const (
	testSenderID   = "608cafd695eb9dc05379b7f3"
	testReceiverID = "608cafe595eb9dc05379b7f4"
)

// chatTestDB wires a MockDatabaseHelper with doctor, patient and chat
// collections for the send path
func chatTestDB(t *testing.T, senderIsDoctor, receiverResolvable bool) (*MockDatabaseHelper, *mocks.CollectionHelper) {
	t.Helper()

	db := &MockDatabaseHelper{}

	doctorSingle := &mocks.SingleResultHelper{}
	if senderIsDoctor {
		doctorSingle.On("Decode", mock.Anything).Return(nil)
	} else {
		doctorSingle.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	}
	doctorConn := &mocks.CollectionHelper{}
	doctorConn.On("FindOne", mock.Anything, mock.Anything).Return(doctorSingle)

	patientSingle := &mocks.SingleResultHelper{}
	if receiverResolvable {
		patientSingle.On("Decode", mock.Anything).Return(nil)
	} else {
		patientSingle.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	}
	patientConn := &mocks.CollectionHelper{}
	patientConn.On("FindOne", mock.Anything, mock.Anything).Return(patientSingle)

	chatConn := &mocks.CollectionHelper{}

	db.On("Collection", "doctors").Return(doctorConn)
	db.On("Collection", "patients").Return(patientConn)
	db.On("Collection", "chats").Return(chatConn)

	return db, chatConn
}

func newChatHandler(db databases.DatabaseHelper, hub *handlers.ChatHub) handlers.Chat {
	return handlers.Chat{
		DB:        databases.NewChatDatabase(db),
		DoctorDB:  databases.NewDoctorDatabase(db),
		PatientDB: databases.NewPatientDatabase(db),
		Hub:       hub,
	}
}

func TestChat_SendMessageHandlerMissingFields(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/chat/send",
		strings.NewReader(`{"senderId": "`+testSenderID+`", "receiverId": "`+testReceiverID+`", "message": ""}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db, chatConn := chatTestDB(t, true, true)
	c := newChatHandler(db, handlers.NewChatHub())

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SendMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "all fields are required, senderId, receiverId and message are required"}`, rr.Body.String())
	chatConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestChat_SendMessageHandlerUnknownParticipant(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/chat/send",
		strings.NewReader(`{"senderId": "`+testSenderID+`", "receiverId": "`+testReceiverID+`", "message": "hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db, chatConn := chatTestDB(t, false, false)
	c := newChatHandler(db, handlers.NewChatHub())

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SendMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, `{"response": "invalid senderId or receiverId, invalid senderId or receiverId"}`, rr.Body.String())
	chatConn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestChat_SendMessageHandlerPersistenceFailure(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/chat/send",
		strings.NewReader(`{"senderId": "`+testSenderID+`", "receiverId": "`+testReceiverID+`", "message": "hi"}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db, chatConn := chatTestDB(t, true, true)
	chatConn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("write failed"))

	hub := handlers.NewChatHub()
	watcher := &fakeConn{}
	watcherID := hub.Register(watcher)
	hub.JoinRoom(watcherID, handlers.RoomKey(testSenderID, testReceiverID))

	c := newChatHandler(db, hub)

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SendMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 0, watcher.frameCount())
}

func TestChat_SendMessageHandlerSuccessFansOutToRoom(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/chat/send",
		strings.NewReader(`{"senderId": "`+testSenderID+`", "receiverId": "`+testReceiverID+`", "message": "hello there"}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer abc123")

	db, chatConn := chatTestDB(t, true, true)
	chatConn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)

	hub := handlers.NewChatHub()
	member := &fakeConn{}
	memberID := hub.Register(member)
	hub.JoinRoom(memberID, handlers.RoomKey(testReceiverID, testSenderID))

	c := newChatHandler(db, hub)

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.SendMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"message":"hello there"`)
	assert.Contains(t, rr.Body.String(), `"senderRole":"doctor"`)

	assert.Equal(t, 1, member.frameCount())
	frame := member.frames[0].(map[string]interface{})
	assert.Equal(t, "receiveMessage", frame["event"])
	msg := frame["data"].(*models.ChatMessage)
	assert.Equal(t, "hello there", msg.Message)
	assert.Equal(t, testSenderID, msg.SenderID)
}

func TestChat_ConversationHandlerReturnsAscendingHistory(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/chat/"+testSenderID+"/"+testReceiverID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{
		"participantA": testSenderID,
		"participantB": testReceiverID,
	})
	req.Header.Set("Authorization", "Bearer abc123")

	first := models.ChatMessage{
		ID:        primitive.NewObjectID(),
		SenderID:  testSenderID,
		Message:   "first",
		CreatedAt: primitive.NewDateTimeFromTime(time.Now().Add(-time.Hour)),
	}
	second := models.ChatMessage{
		ID:        primitive.NewObjectID(),
		SenderID:  testReceiverID,
		Message:   "second",
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}

	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.ChatMessage)
		*arg = []models.ChatMessage{first, second}
	})
	chatConn := &mocks.CollectionHelper{}
	chatConn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor)

	db := &MockDatabaseHelper{}
	db.On("Collection", "chats").Return(chatConn)

	c := newChatHandler(db, nil)

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ConversationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Less(t, strings.Index(body, "first"), strings.Index(body, "second"))
}

func TestChat_ConversationHandlerEmptyConversation(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/chat/"+testSenderID+"/"+testReceiverID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{
		"participantA": testSenderID,
		"participantB": testReceiverID,
	})
	req.Header.Set("Authorization", "Bearer abc123")

	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil)
	chatConn := &mocks.CollectionHelper{}
	chatConn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor)

	db := &MockDatabaseHelper{}
	db.On("Collection", "chats").Return(chatConn)

	c := newChatHandler(db, nil)

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.ConversationHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestChat_DeleteMessageHandlerNotFound(t *testing.T) {
	messageID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("DELETE", "/api/v1/chat/"+messageID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"message_id": messageID})
	req.Header.Set("Authorization", "Bearer abc123")

	chatConn := &mocks.CollectionHelper{}
	chatConn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(0), nil)

	db := &MockDatabaseHelper{}
	db.On("Collection", "chats").Return(chatConn)

	c := newChatHandler(db, nil)

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DeleteMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"response": "message not found, mongo: no documents in result"}`, rr.Body.String())
}

func TestChat_DeleteMessageHandlerSuccess(t *testing.T) {
	messageID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("DELETE", "/api/v1/chat/"+messageID, nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"message_id": messageID})
	req.Header.Set("Authorization", "Bearer abc123")

	chatConn := &mocks.CollectionHelper{}
	chatConn.On("DeleteOne", mock.Anything, mock.Anything).Return(int64(1), nil)

	db := &MockDatabaseHelper{}
	db.On("Collection", "chats").Return(chatConn)

	c := newChatHandler(db, nil)

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.DeleteMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Message deleted successfully")
}

func TestChat_EditMessageHandlerEmptyMessage(t *testing.T) {
	messageID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("PUT", "/api/v1/chat/"+messageID,
		strings.NewReader(`{"message": ""}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"message_id": messageID})
	req.Header.Set("Authorization", "Bearer abc123")

	chatConn := &mocks.CollectionHelper{}
	db := &MockDatabaseHelper{}
	db.On("Collection", "chats").Return(chatConn)

	c := newChatHandler(db, nil)

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.EditMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	chatConn.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestChat_EditMessageHandlerNotFound(t *testing.T) {
	messageID := primitive.NewObjectID().Hex()
	req, err := http.NewRequest("PUT", "/api/v1/chat/"+messageID,
		strings.NewReader(`{"message": "updated"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"message_id": messageID})
	req.Header.Set("Authorization", "Bearer abc123")

	chatConn := &mocks.CollectionHelper{}
	chatConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)

	db := &MockDatabaseHelper{}
	db.On("Collection", "chats").Return(chatConn)

	c := newChatHandler(db, nil)

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.EditMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"response": "message not found, mongo: no documents in result"}`, rr.Body.String())
}

func TestChat_EditMessageHandlerSuccessUpdatesBodyOnly(t *testing.T) {
	messageID := primitive.NewObjectID()
	req, err := http.NewRequest("PUT", "/api/v1/chat/"+messageID.Hex(),
		strings.NewReader(`{"message": "updated text"}`))
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"message_id": messageID.Hex()})
	req.Header.Set("Authorization", "Bearer abc123")

	single := &mocks.SingleResultHelper{}
	single.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.ChatMessage)
		(*arg).ID = messageID
		(*arg).SenderID = testSenderID
		(*arg).ReceiverID = testReceiverID
		(*arg).Message = "updated text"
	})
	chatConn := &mocks.CollectionHelper{}
	chatConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	chatConn.On("FindOne", mock.Anything, mock.Anything).Return(single)

	db := &MockDatabaseHelper{}
	db.On("Collection", "chats").Return(chatConn)

	c := newChatHandler(db, nil)

	rr := httptest.NewRecorder()
	http.HandlerFunc(c.EditMessageHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"message":"updated text"`)
	assert.Contains(t, rr.Body.String(), `"senderId":"`+testSenderID+`"`)
}
