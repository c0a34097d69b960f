package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// EmergencyAlert holds the structure for the emergencyalerts collection in mongo
type EmergencyAlert struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Message   string             `json:"message" bson:"message"`
	Contacts  []string           `json:"contacts" bson:"contacts"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
