package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Doctor holds the structure for the doctors collection in mongo
type Doctor struct {
	ID                 primitive.ObjectID `json:"_id" bson:"_id"`
	Name               string             `json:"name" bson:"name"`
	Age                int                `json:"age" bson:"age"`
	Specialization     string             `json:"specialization" bson:"specialization"`
	Email              string             `json:"email" bson:"email"`
	Password           string             `json:"-" bson:"password"`
	DoctorValidationID string             `json:"doctorValidationId" bson:"doctorValidationId"`
	LevelOfStudy       string             `json:"levelOfStudy" bson:"levelOfStudy"`
	Workplace          string             `json:"workplace" bson:"workplace"`
	ProfilePic         string             `json:"profilePic" bson:"profilePic"`
	CreatedAt          primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt          primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
