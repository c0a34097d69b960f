package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/matricare/matricare-api/api"
	"github.com/matricare/matricare-api/config"
	"github.com/matricare/matricare-api/databases"
	"github.com/matricare/matricare-api/models"
)

var (
	errMissingFields      = errors.New("senderId, receiverId and message are required")
	errUnknownParticipant = errors.New("invalid senderId or receiverId")
	errMissingRequired    = errors.New("missing required fields")
)

// Chat exported for testing purposes
type Chat struct {
	DB        databases.ChatDatabase
	DoctorDB  databases.DoctorDatabase
	PatientDB databases.PatientDatabase
	Hub       *ChatHub
}

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients connect from app origins
	},
}

// resolveRole looks the participant id up in the doctor collection first,
// then the patient collection
func (c Chat) resolveRole(ctx context.Context, id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", errUnknownParticipant
	}
	if _, err := c.DoctorDB.FindOne(ctx, bson.M{"_id": oid}); err == nil {
		return models.RoleDoctor, nil
	}
	if _, err := c.PatientDB.FindOne(ctx, bson.M{"_id": oid}); err == nil {
		return models.RolePatient, nil
	}
	return "", errUnknownParticipant
}

// persistMessage validates and stores an outbound message. Both the send
// path and the relay sendMessage event funnel through here so a logical
// send is persisted exactly once by whichever surface carried it. Invoking
// both surfaces for the same logical message would store it twice; the
// client contract is one surface per message.
func (c Chat) persistMessage(ctx context.Context, req models.SendMessageRequest) (*models.ChatMessage, error) {
	if req.SenderID == "" || req.ReceiverID == "" || req.Message == "" {
		return nil, errMissingFields
	}

	senderRole, err := c.resolveRole(ctx, req.SenderID)
	if err != nil {
		return nil, err
	}
	receiverRole, err := c.resolveRole(ctx, req.ReceiverID)
	if err != nil {
		return nil, err
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	msg := &models.ChatMessage{
		ID:           primitive.NewObjectID(),
		SenderID:     req.SenderID,
		ReceiverID:   req.ReceiverID,
		SenderRole:   senderRole,
		ReceiverRole: receiverRole,
		Message:      req.Message,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := c.DB.InsertOne(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// SendMessageHandler persists a new message and fans it out to the room
func (c Chat) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	msg, err := c.persistMessage(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, errMissingFields):
			config.ErrorStatus("all fields are required", http.StatusBadRequest, w, err)
		case errors.Is(err, errUnknownParticipant):
			config.ErrorStatus("invalid senderId or receiverId", http.StatusBadRequest, w, err)
		default:
			config.ErrorStatus("failed to send message", http.StatusInternalServerError, w, err)
		}
		return
	}

	if c.Hub != nil {
		c.Hub.Broadcast(RoomKey(msg.SenderID, msg.ReceiverID), "receiveMessage", msg)
	}

	b, err := json.Marshal(msg)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// ConversationHandler returns all messages between the two participants,
// oldest first
func (c Chat) ConversationHandler(w http.ResponseWriter, r *http.Request) {
	participantA := mux.Vars(r)["participantA"]
	participantB := mux.Vars(r)["participantB"]

	var opts []*options.FindOptions
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit64 := int64(limit)
		skip64 := int64(page * limit)
		opts = append(opts, &options.FindOptions{Limit: &limit64, Skip: &skip64})
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.FindConversation(ctx, participantA, participantB, opts...)
	if err != nil {
		config.ErrorStatus("failed to get conversation", http.StatusInternalServerError, w, err)
		return
	}
	// The frontend expects an array even when the conversation is empty
	if len(dbResp) == 0 {
		dbResp = []models.ChatMessage{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteMessageHandler deletes a message by ID
func (c Chat) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["message_id"]

	mID, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		config.ErrorStatus("invalid message ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	deleted, err := c.DB.DeleteOne(ctx, bson.M{"_id": mID})
	if err != nil {
		config.ErrorStatus("failed to delete message", http.StatusInternalServerError, w, err)
		return
	}
	if deleted == 0 {
		config.ErrorStatus("message not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Message deleted successfully",
	})
}

// EditMessageHandler overwrites the body of a message by ID. Sender,
// receiver and createdAt are untouched.
func (c Chat) EditMessageHandler(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["message_id"]

	var requestBody struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if requestBody.Message == "" {
		config.ErrorStatus("message content required", http.StatusBadRequest, w, errMissingFields)
		return
	}

	mID, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		config.ErrorStatus("invalid message ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{"_id": mID}
	update := bson.M{
		"$set": bson.M{
			"message":   requestBody.Message,
			"updatedAt": primitive.NewDateTimeFromTime(time.Now()),
		},
	}

	matched, err := c.DB.UpdateOne(ctx, filter, update)
	if err != nil {
		config.ErrorStatus("failed to update message", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("message not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	dbResp, err := c.DB.FindOne(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to get updated message", http.StatusInternalServerError, w, err)
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

type chatEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HandleChatWebSocket manages a relay connection: joinRoom adds membership,
// sendMessage persists then fans out, disconnect tears the membership down.
func (c Chat) HandleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnf("chat websocket upgrade error: %v", err)
		return
	}

	connID := c.Hub.Register(conn)
	zap.S().Debugw("chat client connected", "connId", connID)

	defer func() {
		c.Hub.Disconnect(connID)
		conn.Close()
		zap.S().Debugw("chat client disconnected", "connId", connID)
	}()

	for {
		var evt chatEvent
		if err := conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Warnf("chat websocket read error: %v", err)
			}
			return
		}
		c.handleChatEvent(connID, evt)
	}
}

func (c Chat) handleChatEvent(connID string, evt chatEvent) {
	switch evt.Event {
	case "joinRoom":
		var roomKey string
		if err := json.Unmarshal(evt.Data, &roomKey); err != nil || roomKey == "" {
			zap.S().Warnw("joinRoom event missing room key", "connId", connID)
			return
		}
		c.Hub.JoinRoom(connID, roomKey)

	case "sendMessage":
		var req models.SendMessageRequest
		if err := json.Unmarshal(evt.Data, &req); err != nil {
			zap.S().Warnw("sendMessage event with malformed payload", "connId", connID, "error", err)
			return
		}

		ctx, cancel := api.WithQueryTimeout(context.Background())
		msg, err := c.persistMessage(ctx, req)
		cancel()
		if err != nil {
			// Best-effort channel: the reliable acknowledgment travels over
			// the send path, so no error frame is emitted here.
			zap.S().Errorw("failed to persist relayed message",
				"connId", connID,
				"error", err)
			return
		}
		c.Hub.Broadcast(RoomKey(msg.SenderID, msg.ReceiverID), "receiveMessage", msg)

	default:
		zap.S().Debugw("ignoring unknown chat event", "event", evt.Event, "connId", connID)
	}
}
