package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// BloodPressure is a systolic/diastolic reading
type BloodPressure struct {
	Systolic  int `json:"systolic" bson:"systolic"`
	Diastolic int `json:"diastolic" bson:"diastolic"`
}

// HealthData holds the structure for the healthdata collection in mongo
type HealthData struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id"`
	UserID        string             `json:"userId" bson:"userId"`
	BloodPressure BloodPressure      `json:"bloodPressure" bson:"bloodPressure"`
	Weight        float64            `json:"weight" bson:"weight"`
	CreatedAt     primitive.DateTime `json:"createdAt" bson:"createdAt"`
}
