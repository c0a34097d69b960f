package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
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

// Notification exported for testing purposes
type Notification struct {
	DB databases.NotificationDatabase
}

var notificationUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients connect from app origins
	},
}

// NotificationHub stores connected users (userId -> conn)
type NotificationHub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

var notificationHub = &NotificationHub{
	clients: make(map[string]*websocket.Conn),
}

// HandleNotificationsWebSocket keeps a per-user connection open for pushes
func HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := notificationUpgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnf("notification websocket upgrade error: %v", err)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		conn.Close()
		return
	}

	notificationHub.mutex.Lock()
	notificationHub.clients[userID] = conn
	notificationHub.mutex.Unlock()
	zap.S().Debugw("user connected to notifications", "userId", userID)

	defer func() {
		notificationHub.mutex.Lock()
		delete(notificationHub.clients, userID)
		notificationHub.mutex.Unlock()
		conn.Close()
		zap.S().Debugw("user disconnected from notifications", "userId", userID)
	}()

	// Keep connection alive; the server never expects inbound frames
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// PushNotificationToUser delivers a notification over the user's live
// connection if there is one. Delivery is best effort.
func PushNotificationToUser(userID string, notification interface{}) {
	notificationHub.mutex.Lock()
	conn, exists := notificationHub.clients[userID]
	notificationHub.mutex.Unlock()

	if !exists {
		return
	}
	err := conn.WriteJSON(map[string]interface{}{
		"event": "new_notification",
		"data":  notification,
	})
	if err != nil {
		zap.S().Warnw("dropping notification connection after failed write",
			"userId", userID,
			"error", err)
		notificationHub.mutex.Lock()
		delete(notificationHub.clients, userID)
		notificationHub.mutex.Unlock()
		conn.Close()
	}
}

type createNotificationRequest struct {
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// CreateNotificationHandler stores a notification and pushes it to the user
func (n Notification) CreateNotificationHandler(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if req.UserID == "" || req.Message == "" {
		config.ErrorStatus("userId and message are required", http.StatusBadRequest, w, errMissingRequired)
		return
	}

	notification := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    req.UserID,
		Type:      req.Type,
		Message:   req.Message,
		IsRead:    false,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := n.DB.InsertOne(ctx, notification); err != nil {
		config.ErrorStatus("failed to create notification", http.StatusInternalServerError, w, err)
		return
	}

	PushNotificationToUser(notification.UserID, notification)

	b, err := json.Marshal(notification)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// NotificationsByUserIDHandler returns a user's notifications, newest first
func (n Notification) NotificationsByUserIDHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	sortOpt := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	dbResp, err := n.DB.Find(ctx, bson.M{"userId": userID}, sortOpt)
	if err != nil {
		config.ErrorStatus("failed to get notifications", http.StatusInternalServerError, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Notification{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// MarkNotificationReadHandler flags a notification as read
func (n Notification) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	notificationID := mux.Vars(r)["notification_id"]

	nID, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		config.ErrorStatus("invalid notification ID", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	matched, err := n.DB.UpdateOne(ctx, bson.M{"_id": nID}, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		config.ErrorStatus("failed to update notification", http.StatusInternalServerError, w, err)
		return
	}
	if matched == 0 {
		config.ErrorStatus("notification not found", http.StatusNotFound, w, mongo.ErrNoDocuments)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Notification marked as read",
	})
}
