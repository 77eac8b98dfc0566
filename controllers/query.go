package controllers

import (
	"context"
	"encoding/json"
	"go-healthlab/middleware"
	"go-healthlab/models"
	"go-healthlab/utils"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QueryController handles support queries submitted by users and answered
// by the super admin
type QueryController struct {
	Collection   *mongo.Collection
	Users        *mongo.Collection
	EmailService *utils.EmailService
}

// NewQueryController creates a new QueryController
func NewQueryController(client *mongo.Client, emailService *utils.EmailService) *QueryController {
	db := client.Database(utils.DatabaseName)
	return &QueryController{
		Collection:   db.Collection("queries"),
		Users:        db.Collection("users"),
		EmailService: emailService,
	}
}

// CreateQuery submits a new support query
func (qc *QueryController) CreateQuery(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		Name    string `json:"name"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if input.Name == "" || input.Subject == "" || input.Message == "" {
		http.Error(w, "Name, subject and message are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, qc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	query := models.Query{
		UserID:    user.ID,
		TicketRef: uuid.NewString(),
		Name:      input.Name,
		Subject:   input.Subject,
		Message:   input.Message,
		Status:    models.QueryUnviewed,
		CreatedAt: time.Now(),
	}

	result, err := qc.Collection.InsertOne(ctx, query)
	if err != nil {
		http.Error(w, "Failed to submit query", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"query_id":   result.InsertedID,
		"ticket_ref": query.TicketRef,
	})
}

// GetAllQueries lists every query (super admin only, guarded in routes)
func (qc *QueryController) GetAllQueries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := qc.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		http.Error(w, "Failed to retrieve queries", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	queries := []models.Query{}
	if err := cursor.All(ctx, &queries); err != nil {
		http.Error(w, "Error reading queries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(queries)
}

// MarkViewed transitions a query to viewed
func (qc *QueryController) MarkViewed(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid query ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := qc.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.QueryUnviewed},
		bson.M{"$set": bson.M{"status": models.QueryViewed}},
	)
	if err != nil {
		http.Error(w, "Failed to update query", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "Query not found or already viewed", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Query marked as viewed"})
}

// RespondToQuery records the responder's answer and emails the submitter
func (qc *QueryController) RespondToQuery(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid query ID", http.StatusBadRequest)
		return
	}

	var input struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Response == "" {
		http.Error(w, "Response is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var query models.Query
	err = qc.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&query)
	if err != nil {
		http.Error(w, "Query not found", http.StatusNotFound)
		return
	}

	_, err = qc.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"response":  input.Response,
		"status":    models.QueryResponded,
		"responder": claims.Email,
	}})
	if err != nil {
		http.Error(w, "Failed to update query", http.StatusInternalServerError)
		return
	}

	// Email the submitter in the background
	go func(userID primitive.ObjectID, subject, response string) {
		gctx, gcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer gcancel()
		var user models.User
		if err := qc.Users.FindOne(gctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			return
		}
		if err := qc.EmailService.SendQueryResponseEmail(user.Email, user.Name, subject, response); err != nil {
			log.Printf("Failed to send email to %s: %v", user.Email, err)
		}
	}(query.UserID, query.Subject, input.Response)

	json.NewEncoder(w).Encode(map[string]string{"message": "Response recorded"})
}

// DeleteQuery removes a query
func (qc *QueryController) DeleteQuery(w http.ResponseWriter, r *http.Request) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid query ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := qc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		http.Error(w, "Failed to delete query", http.StatusInternalServerError)
		return
	}
	if result.DeletedCount == 0 {
		http.Error(w, "Query not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"message": "Query deleted"})
}

// GetUserQueries lists queries submitted by one user; callers may only read
// their own unless they are the super admin
func (qc *QueryController) GetUserQueries(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	userID, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if claims.Role != models.RoleSuperAdmin {
		user, err := findUserByEmail(ctx, qc.Users, claims.Email)
		if err != nil || user.ID != userID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := qc.Collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		http.Error(w, "Failed to retrieve queries", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	queries := []models.Query{}
	if err := cursor.All(ctx, &queries); err != nil {
		http.Error(w, "Error reading queries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(queries)
}
