package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkout session payment statuses. Pending, paid and failed are reported
// back by the gateway webhook; used marks a session already converted into
// an order so it cannot pay for a second one.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
	PaymentUsed    = "used"
)

// CheckoutSession links a hosted payment session to a user's cart snapshot.
// OrderNo is the identifier shared with the gateway; order creation requires
// the session to be paid.
type CheckoutSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderNo   string             `bson:"order_no" json:"order_no"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Amount    float64            `bson:"amount" json:"amount"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
