package controllers

import (
	"context"
	"encoding/json"
	"go-healthlab/middleware"
	"go-healthlab/models"
	"go-healthlab/utils"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewController handles lab reviews, gated on order completion
type ReviewController struct {
	Reviews *mongo.Collection
	Orders  *mongo.Collection
	Users   *mongo.Collection
}

// NewReviewController creates a new ReviewController
func NewReviewController(client *mongo.Client) *ReviewController {
	db := client.Database(utils.DatabaseName)
	return &ReviewController{
		Reviews: db.Collection("reviews"),
		Orders:  db.Collection("orders"),
		Users:   db.Collection("users"),
	}
}

// CreateReview persists a review of a lab for one of the caller's orders.
// Allowed only once that lab's items in the order are all Completed.
func (rc *ReviewController) CreateReview(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		OrderID     string `json:"order_id"`
		LabID       string `json:"lab_id"`
		Rating      int    `json:"rating"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		http.Error(w, "Rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	orderID, err := primitive.ObjectIDFromHex(input.OrderID)
	if err != nil {
		http.Error(w, "Invalid order ID", http.StatusBadRequest)
		return
	}
	labID, err := primitive.ObjectIDFromHex(input.LabID)
	if err != nil {
		http.Error(w, "Invalid lab ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, rc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var order models.Order
	err = rc.Orders.FindOne(ctx, bson.M{"_id": orderID, "user_id": user.ID}).Decode(&order)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	// The review gate: the lab's portion of the order must be Completed
	completed := false
	for _, group := range order.LabGroups() {
		if group.LabID == labID {
			completed = group.Status == models.StatusCompleted
			break
		}
	}
	if !completed {
		http.Error(w, "Order not completed", http.StatusBadRequest)
		return
	}

	review := models.Review{
		UserID:      user.ID,
		LabID:       labID,
		OrderID:     orderID,
		Rating:      input.Rating,
		Description: input.Description,
		CreatedAt:   time.Now(),
	}

	result, err := rc.Reviews.InsertOne(ctx, review)
	if err != nil {
		http.Error(w, "Failed to create review", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"review_id": result.InsertedID})
}

// GetLabReviews lists a lab's reviews, newest first
func (rc *ReviewController) GetLabReviews(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	labID, err := primitive.ObjectIDFromHex(params["labId"])
	if err != nil {
		http.Error(w, "Invalid lab ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := rc.Reviews.Find(ctx, bson.M{"lab_id": labID}, opts)
	if err != nil {
		http.Error(w, "Failed to retrieve reviews", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		http.Error(w, "Error reading reviews", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reviews)
}
