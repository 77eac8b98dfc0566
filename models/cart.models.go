package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item types a cart line may reference
const (
	ItemTypeTest    = "test"
	ItemTypePackage = "package"
)

// ValidItemType reports whether t is a bookable catalog item type
func ValidItemType(t string) bool {
	return t == ItemTypeTest || t == ItemTypePackage
}

// CartItem represents one selected test or package in the cart
type CartItem struct {
	ItemID   primitive.ObjectID `bson:"item_id" json:"item_id"`
	Name     string             `bson:"name" json:"name"`
	Price    float64            `bson:"price" json:"price"`
	Type     string             `bson:"type" json:"type"` // "test" or "package"
	LabID    primitive.ObjectID `bson:"lab_id" json:"lab_id"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// Cart represents a user's pre-checkout selection
type Cart struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items  []CartItem         `bson:"items" json:"items"`
}

// Subtotal sums price × quantity across all items
func (c Cart) Subtotal() float64 {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Validate checks that every item carries a resolvable identity, type and lab.
// Order creation refuses carts that fail this.
func (c Cart) Validate() error {
	if len(c.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range c.Items {
		if item.ItemID.IsZero() {
			return ErrUnresolvedItem
		}
		if !ValidItemType(item.Type) {
			return ErrUnresolvedItem
		}
		if item.LabID.IsZero() {
			return ErrUnresolvedItem
		}
		if item.Quantity < 1 {
			return ErrUnresolvedItem
		}
	}
	return nil
}
