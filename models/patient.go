package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Patient holds the structure for the patients collection in mongo
type Patient struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	Name       string             `json:"name" bson:"name"`
	Age        int                `json:"age" bson:"age"`
	Email      string             `json:"email" bson:"email"`
	Password   string             `json:"-" bson:"password"`
	Spouse     string             `json:"spouse" bson:"spouse"`
	ProfilePic string             `json:"profilePic" bson:"profilePic"`
	CreatedAt  primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt  primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
