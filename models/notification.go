package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification holds the structure for the notifications collection in mongo
type Notification struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	UserID    string             `json:"userId" bson:"userId"`
	Type      string             `json:"type" bson:"type"` // "appointment", "chat", "reminder", ...
	Message   string             `json:"message" bson:"message"`
	IsRead    bool               `json:"isRead" bson:"isRead"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
