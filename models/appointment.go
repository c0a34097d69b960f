package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Appointment statuses
const (
	AppointmentPending   = "pending"
	AppointmentConfirmed = "confirmed"
	AppointmentCancelled = "cancelled"
)

// Appointment holds the structure for the appointments collection in mongo
type Appointment struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	UserID    string             `json:"userId" bson:"userId"`
	DoctorID  string             `json:"doctorId" bson:"doctorId"`
	Date      primitive.DateTime `json:"date" bson:"date"`
	Reason    string             `json:"reason" bson:"reason"`
	Status    string             `json:"status" bson:"status"`
	Reminded  bool               `json:"reminded" bson:"reminded"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
