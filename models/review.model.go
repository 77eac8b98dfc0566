package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review represents a user's rating of a lab for one completed order
type Review struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	LabID       primitive.ObjectID `bson:"lab_id" json:"lab_id"`
	OrderID     primitive.ObjectID `bson:"order_id" json:"order_id"`
	Rating      int                `bson:"rating" json:"rating"` // 1..5
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
