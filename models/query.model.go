package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Support query lifecycle
const (
	QueryUnviewed  = "unviewed"
	QueryViewed    = "viewed"
	QueryResponded = "responded"
)

// Query is a support message submitted by any user to the platform
type Query struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	TicketRef string             `bson:"ticket_ref" json:"ticket_ref"`
	Name      string             `bson:"name" json:"name"`
	Subject   string             `bson:"subject" json:"subject"`
	Message   string             `bson:"message" json:"message"`
	Response  string             `bson:"response,omitempty" json:"response,omitempty"`
	Status    string             `bson:"status" json:"status"`
	Responder string             `bson:"responder,omitempty" json:"responder,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
