// controllers/order.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go-healthlab/middleware"
	"go-healthlab/models"
	"go-healthlab/utils"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders       *mongo.Collection
	Carts        *mongo.Collection
	Sessions     *mongo.Collection
	Users        *mongo.Collection
	Labs         *mongo.Collection
	EmailService *utils.EmailService
}

// NewOrderController creates a new OrderController
func NewOrderController(client *mongo.Client, emailService *utils.EmailService) *OrderController {
	db := client.Database(utils.DatabaseName)
	return &OrderController{
		Orders:       db.Collection("orders"),
		Carts:        db.Collection("carts"),
		Sessions:     db.Collection("checkout_sessions"),
		Users:        db.Collection("users"),
		Labs:         db.Collection("labs"),
		EmailService: emailService,
	}
}

// CreateOrderInput is the checkout-completion payload
type CreateOrderInput struct {
	SessionID        string                `json:"session_id"`
	Booking          models.BookingDetails `json:"booking"`
	CollectionMethod string                `json:"collection_method"`
}

var (
	errPaymentNotCompleted = errors.New("payment not completed")
	errAmountMismatch      = errors.New("order total does not match the amount paid")
)

// validateSessionForOrder is the gate a checkout session must pass before it
// can fund an order: it must be paid, and the amount charged must equal the
// total of the order being built (the cart may have changed since checkout).
func validateSessionForOrder(session models.CheckoutSession, total float64) error {
	if session.Status != models.PaymentPaid {
		return errPaymentNotCompleted
	}
	if math.Abs(session.Amount-total) > 0.009 {
		return errAmountMismatch
	}
	return nil
}

// Validate checks booking details and collection method
func (in CreateOrderInput) Validate() error {
	if in.SessionID == "" {
		return errors.New("session_id is required")
	}
	if in.Booking.Name == "" || in.Booking.Contact == "" {
		return errors.New("booking name and contact are required")
	}
	if in.CollectionMethod != models.CollectionHome && in.CollectionMethod != models.CollectionLab {
		return errors.New("collection_method must be \"home\" or \"lab\"")
	}
	return nil
}

// CreateOrder converts the caller's paid cart into a persisted order. The
// cart is the source of truth for items; each is carried over tagged with
// its owning lab and starts Pending. Clearing the cart is the last step; if
// it fails the freshly inserted order is deleted so no order can coexist
// with its stale cart.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := input.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, oc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// The session must belong to the caller and be paid
	var session models.CheckoutSession
	err = oc.Sessions.FindOne(ctx, bson.M{"order_no": input.SessionID, "user_id": user.ID}).Decode(&session)
	if err != nil {
		http.Error(w, "Checkout session not found", http.StatusNotFound)
		return
	}

	var cart models.Cart
	err = oc.Carts.FindOne(ctx, bson.M{"user_id": user.ID}).Decode(&cart)
	if err != nil {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}
	if err := cart.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	total := cart.Subtotal() + models.DeliveryChargeFor(input.CollectionMethod)
	if err := validateSessionForOrder(session, total); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Consume the session; filtering on the paid status makes the update
	// double as the replay guard, so the same session cannot fund two orders
	consumed, err := oc.Sessions.UpdateOne(ctx,
		bson.M{"_id": session.ID, "status": models.PaymentPaid},
		bson.M{"$set": bson.M{"status": models.PaymentUsed}},
	)
	if err != nil {
		http.Error(w, "Failed to update checkout session", http.StatusInternalServerError)
		return
	}
	if consumed.MatchedCount == 0 {
		http.Error(w, "Checkout session already used", http.StatusBadRequest)
		return
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		items = append(items, models.OrderItem{
			ItemID:   ci.ItemID,
			Name:     ci.Name,
			Price:    ci.Price,
			Type:     ci.Type,
			LabID:    ci.LabID,
			Quantity: ci.Quantity,
			Status:   models.StatusPending,
		})
	}

	order := models.Order{
		OrderNo:          session.OrderNo,
		UserID:           user.ID,
		Items:            items,
		Booking:          input.Booking,
		CollectionMethod: input.CollectionMethod,
		PaymentStatus:    models.PaymentPaid,
		Subtotal:         cart.Subtotal(),
		DeliveryCharge:   models.DeliveryChargeFor(input.CollectionMethod),
		CreatedAt:        time.Now(),
	}

	// Restores the consumed session to paid so a failed request can retry
	restoreSession := func() {
		_, err := oc.Sessions.UpdateOne(ctx,
			bson.M{"_id": session.ID},
			bson.M{"$set": bson.M{"status": models.PaymentPaid}},
		)
		if err != nil {
			log.Printf("Failed to restore checkout session %s: %v", session.OrderNo, err)
		}
	}

	orderResult, err := oc.Orders.InsertOne(ctx, order)
	if err != nil {
		restoreSession()
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	// Clear the cart; compensate by removing the order if this fails
	_, err = oc.Carts.DeleteOne(ctx, bson.M{"user_id": user.ID})
	if err != nil {
		if _, delErr := oc.Orders.DeleteOne(ctx, bson.M{"_id": orderResult.InsertedID}); delErr != nil {
			log.Printf("Compensation failed for order %s: %v", session.OrderNo, delErr)
		}
		restoreSession()
		http.Error(w, "Failed to clear cart", http.StatusInternalServerError)
		return
	}

	go func(email, name string) {
		err := oc.EmailService.SendBookingConfirmationEmail(email, name, order.OrderNo, order.Subtotal+order.DeliveryCharge)
		if err != nil {
			log.Printf("Failed to send email to %s: %v", email, err)
		}
	}(user.Email, user.Name)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"order_id": orderResult.InsertedID,
		"order_no": order.OrderNo,
		"total":    order.Subtotal + order.DeliveryCharge,
		"message":  "Order placed successfully. The partner lab(s) will contact you for sample collection.",
	})
}

// labNames resolves display names for the labs appearing in groups
func (oc *OrderController) labNames(ctx context.Context, groups []models.LabGroup) {
	for i, g := range groups {
		var lab models.Lab
		if err := oc.Labs.FindOne(ctx, bson.M{"_id": g.LabID}).Decode(&lab); err == nil {
			groups[i].LabName = lab.Name
		}
	}
}

// GetUserOrders retrieves the caller's orders, items grouped per owning lab
// so each lab shows its own status badge and subtotal
func (oc *OrderController) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, oc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	cursor, err := oc.Orders.Find(ctx, bson.M{"user_id": user.ID})
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	type orderView struct {
		models.Order
		LabGroups []models.LabGroup `json:"lab_groups"`
	}

	views := []orderView{}
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			http.Error(w, "Error decoding order", http.StatusInternalServerError)
			return
		}
		groups := order.LabGroups()
		oc.labNames(ctx, groups)
		views = append(views, orderView{Order: order, LabGroups: groups})
	}
	if err := cursor.Err(); err != nil {
		http.Error(w, "Cursor error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// requireLabAdmin extracts the caller's lab id from claims
func requireLabAdmin(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok || claims.Role != models.RoleLabAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return primitive.NilObjectID, false
	}
	labID, err := primitive.ObjectIDFromHex(claims.LabID)
	if err != nil {
		http.Error(w, "No lab associated with this account", http.StatusForbidden)
		return primitive.NilObjectID, false
	}
	return labID, true
}

// GetLabOrders retrieves orders containing the admin's lab items, projected
// down to that lab's lines only
func (oc *OrderController) GetLabOrders(w http.ResponseWriter, r *http.Request) {
	labID, ok := requireLabAdmin(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := oc.Orders.Find(ctx, bson.M{"items.lab_id": labID})
	if err != nil {
		http.Error(w, "Failed to retrieve orders", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	type labOrderView struct {
		OrderID          primitive.ObjectID    `json:"order_id"`
		OrderNo          string                `json:"order_no"`
		Booking          models.BookingDetails `json:"booking"`
		CollectionMethod string                `json:"collection_method"`
		Status           string                `json:"status"`
		Subtotal         float64               `json:"subtotal"`
		Items            []models.OrderItem    `json:"items"`
		CreatedAt        time.Time             `json:"created_at"`
	}

	views := []labOrderView{}
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			http.Error(w, "Error decoding order", http.StatusInternalServerError)
			return
		}
		for _, group := range order.LabGroups() {
			if group.LabID != labID {
				continue
			}
			views = append(views, labOrderView{
				OrderID:          order.ID,
				OrderNo:          order.OrderNo,
				Booking:          order.Booking,
				CollectionMethod: order.CollectionMethod,
				Status:           group.Status,
				Subtotal:         group.Subtotal,
				Items:            group.Items,
				CreatedAt:        order.CreatedAt,
			})
		}
	}
	if err := cursor.Err(); err != nil {
		http.Error(w, "Cursor error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(views)
}

// applyLabTransition moves every item owned by labID to the target status,
// validating each transition. Returns the updated items or an error.
func applyLabTransition(items []models.OrderItem, labID primitive.ObjectID, to string) ([]models.OrderItem, error) {
	if !models.ValidStatus(to) {
		return nil, models.ErrInvalidStatus
	}
	found := false
	updated := make([]models.OrderItem, len(items))
	copy(updated, items)
	for i, item := range updated {
		if item.LabID != labID {
			continue
		}
		found = true
		if !models.CanTransition(item.Status, to) {
			return nil, models.ErrInvalidTransition
		}
		updated[i].Status = to
	}
	if !found {
		return nil, models.ErrLabNotInOrder
	}
	return updated, nil
}

// UpdateItemStatus lets a lab admin advance the status of their lab's items
// within an order
func (oc *OrderController) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	labID, ok := requireLabAdmin(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	pathLabID, err := primitive.ObjectIDFromHex(vars["labId"])
	if err != nil {
		http.Error(w, "Invalid lab ID", http.StatusBadRequest)
		return
	}
	// A lab admin can only touch their own lab's items
	if pathLabID != labID {
		http.Error(w, "Forbidden: not your lab's order items", http.StatusForbidden)
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = oc.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	updated, err := applyLabTransition(order.Items, labID, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrLabNotInOrder):
			http.Error(w, "No items for this lab in the order", http.StatusNotFound)
		case errors.Is(err, models.ErrInvalidStatus):
			http.Error(w, "Invalid status", http.StatusBadRequest)
		default:
			http.Error(w, "Invalid status transition", http.StatusBadRequest)
		}
		return
	}

	// Last write wins on concurrent updates; the store is the only
	// serialization point.
	_, err = oc.Orders.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{"items": updated}})
	if err != nil {
		http.Error(w, "Failed to update order", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Status updated"})
}

// CancelLabItems lets the order's owner cancel a lab's items, permitted only
// while every one of that lab's items is still Pending
func (oc *OrderController) CancelLabItems(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	labID, err := primitive.ObjectIDFromHex(vars["labId"])
	if err != nil {
		http.Error(w, "Invalid lab ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, oc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var order models.Order
	err = oc.Orders.FindOne(ctx, bson.M{"_id": orderID, "user_id": user.ID}).Decode(&order)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	// User cancellation closes while the lab has not started work
	found := false
	for _, item := range order.Items {
		if item.LabID != labID {
			continue
		}
		found = true
		if item.Status != models.StatusPending {
			http.Error(w, "Cancellation is only allowed while the booking is pending", http.StatusBadRequest)
			return
		}
	}
	if !found {
		http.Error(w, "No items for this lab in the order", http.StatusNotFound)
		return
	}

	updated, err := applyLabTransition(order.Items, labID, models.StatusCancelled)
	if err != nil {
		http.Error(w, "Invalid status transition", http.StatusBadRequest)
		return
	}

	_, err = oc.Orders.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{"items": updated}})
	if err != nil {
		http.Error(w, "Failed to update order", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Booking cancelled"})
}

// UploadReport attaches a report file to a completed item of the admin's lab
func (oc *OrderController) UploadReport(w http.ResponseWriter, r *http.Request) {
	labID, ok := requireLabAdmin(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	pathLabID, err := primitive.ObjectIDFromHex(vars["labId"])
	if err != nil || pathLabID != labID {
		http.Error(w, "Forbidden: not your lab's order items", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var order models.Order
	err = oc.Orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	// Parse multipart form with a max memory of 10MB
	err = r.ParseMultipartForm(10 << 20)
	if err != nil {
		http.Error(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	itemIDHex := r.FormValue("item_id")
	itemID, err := primitive.ObjectIDFromHex(itemIDHex)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	itemIndex := -1
	for i, item := range order.Items {
		if item.ItemID == itemID && item.LabID == labID {
			itemIndex = i
			break
		}
	}
	if itemIndex == -1 {
		http.Error(w, "Item not found in order", http.StatusNotFound)
		return
	}
	if order.Items[itemIndex].Status != models.StatusCompleted {
		http.Error(w, "Report can only be attached to a completed test", http.StatusBadRequest)
		return
	}

	file, handler, err := r.FormFile("report")
	if err != nil {
		http.Error(w, "Failed to retrieve file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	uploadPath := filepath.Join("uploads", "reports", order.UserID.Hex())
	err = os.MkdirAll(uploadPath, os.ModePerm)
	if err != nil {
		http.Error(w, "Failed to create upload directory", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s", uuid.NewString(), handler.Filename)
	filePath := filepath.Join(uploadPath, filename)

	dst, err := os.Create(filePath)
	if err != nil {
		http.Error(w, "Failed to create file on server", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	if err != nil {
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	field := fmt.Sprintf("items.%d.report_file", itemIndex)
	_, err = oc.Orders.UpdateOne(ctx, bson.M{"_id": orderID}, bson.M{"$set": bson.M{field: filePath}})
	if err != nil {
		http.Error(w, "Failed to update order with report", http.StatusInternalServerError)
		return
	}

	// Notify the patient in the background
	go func(userID primitive.ObjectID, testName string) {
		gctx, gcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer gcancel()
		var user models.User
		if err := oc.Users.FindOne(gctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			return
		}
		if err := oc.EmailService.SendReportReadyEmail(user.Email, user.Name, testName); err != nil {
			log.Printf("Failed to send email to %s: %v", user.Email, err)
		}
	}(order.UserID, order.Items[itemIndex].Name)

	json.NewEncoder(w).Encode(map[string]string{"message": "Report uploaded", "report_file": filePath})
}

// DeleteOrder removes an order entirely (super admin only, guarded in routes)
func (oc *OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orderID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := oc.Orders.DeleteOne(ctx, bson.M{"_id": orderID})
	if err != nil {
		http.Error(w, "Failed to delete order", http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Order deleted"})
}
