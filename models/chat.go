package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Participant roles used by the chat dynamic references
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// ChatMessage holds the structure for the chats collection in mongo
type ChatMessage struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id"`
	SenderID     string             `json:"senderId" bson:"senderId"`
	ReceiverID   string             `json:"receiverId" bson:"receiverId"`
	SenderRole   string             `json:"senderRole" bson:"senderRole"`     // "doctor" or "patient"
	ReceiverRole string             `json:"receiverRole" bson:"receiverRole"` // "doctor" or "patient"
	Message      string             `json:"message" bson:"message"`
	CreatedAt    primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt    primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}

// SendMessageRequest is the payload accepted by the send path and the
// relay sendMessage event
type SendMessageRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}
