package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuses an OrderItem moves through. Pending is initial; Completed and
// Cancelled are terminal.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// Collection methods for booked samples
const (
	CollectionHome = "home"
	CollectionLab  = "lab"
)

// HomeDeliveryCharge is added to the order total when samples are collected
// at the patient's address.
const HomeDeliveryCharge = 50.0

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnresolvedItem    = errors.New("cart item missing a resolvable id, type or lab")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrLabNotInOrder     = errors.New("lab has no items in this order")
)

// ValidStatus reports whether s is one of the defined item statuses
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an item may move from one status to another.
// Terminal states absorb; a transition to the current status is not a transition.
func CanTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) || from == to {
		return false
	}
	switch from {
	case StatusPending:
		return to == StatusInProgress || to == StatusCompleted || to == StatusCancelled
	case StatusInProgress:
		return to == StatusCompleted || to == StatusCancelled
	}
	return false
}

// BookingDetails carries the patient contact captured at checkout
type BookingDetails struct {
	Name    string `bson:"name" json:"name"`
	Contact string `bson:"contact" json:"contact"`
}

// OrderItem is one test/package line within an order, scoped to one lab.
// Status is mutated independently per lab by that lab's admin.
type OrderItem struct {
	ItemID     primitive.ObjectID `bson:"item_id" json:"item_id"`
	Name       string             `bson:"name" json:"name"`
	Price      float64            `bson:"price" json:"price"`
	Type       string             `bson:"type" json:"type"`
	LabID      primitive.ObjectID `bson:"lab_id" json:"lab_id"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	Status     string             `bson:"status" json:"status"`
	ReportFile string             `bson:"report_file,omitempty" json:"report_file,omitempty"`
}

// Order represents a paid booking. Immutable after creation except for
// item-level status and report attachment.
type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderNo          string             `bson:"order_no" json:"order_no"`
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items            []OrderItem        `bson:"items" json:"items"`
	Booking          BookingDetails     `bson:"booking" json:"booking"`
	CollectionMethod string             `bson:"collection_method" json:"collection_method"`
	PaymentStatus    string             `bson:"payment_status" json:"payment_status"`
	Subtotal         float64            `bson:"subtotal" json:"subtotal"`
	DeliveryCharge   float64            `bson:"delivery_charge" json:"delivery_charge"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
}

// LabGroup is the per-lab view of an order: one status badge and subtotal
// per owning lab, computed from that lab's items only.
type LabGroup struct {
	LabID    primitive.ObjectID `json:"lab_id"`
	LabName  string             `json:"lab_name,omitempty"`
	Status   string             `json:"status"`
	Subtotal float64            `json:"subtotal"`
	Items    []OrderItem        `json:"items"`
}

// GroupStatus collapses a lab's item statuses into a single badge value.
// All-same wins; cancelled items are ignored when live items remain; any
// work started or partially finished shows In Progress.
func GroupStatus(items []OrderItem) string {
	if len(items) == 0 {
		return StatusPending
	}
	live := items[:0:0]
	for _, item := range items {
		if item.Status != StatusCancelled {
			live = append(live, item)
		}
	}
	if len(live) == 0 {
		return StatusCancelled
	}
	completed, started := 0, 0
	for _, item := range live {
		switch item.Status {
		case StatusCompleted:
			completed++
		case StatusInProgress:
			started++
		}
	}
	if completed == len(live) {
		return StatusCompleted
	}
	if completed > 0 || started > 0 {
		return StatusInProgress
	}
	return StatusPending
}

// LabGroups partitions the order's items by owning lab, preserving the order
// in which labs first appear. Each group carries its own status and subtotal.
func (o Order) LabGroups() []LabGroup {
	var groups []LabGroup
	index := make(map[primitive.ObjectID]int)
	for _, item := range o.Items {
		i, ok := index[item.LabID]
		if !ok {
			i = len(groups)
			index[item.LabID] = i
			groups = append(groups, LabGroup{LabID: item.LabID})
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].Subtotal += item.Price * float64(item.Quantity)
	}
	for i := range groups {
		groups[i].Status = GroupStatus(groups[i].Items)
	}
	return groups
}

// DeliveryChargeFor returns the charge applied for a collection method
func DeliveryChargeFor(method string) float64 {
	if method == CollectionHome {
		return HomeDeliveryCharge
	}
	return 0
}
