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
)

// CartController handles cart-related requests
type CartController struct {
	Collection *mongo.Collection
	Tests      *mongo.Collection
	Packages   *mongo.Collection
	Users      *mongo.Collection
}

// NewCartController creates a new CartController
func NewCartController(client *mongo.Client) *CartController {
	db := client.Database(utils.DatabaseName)
	return &CartController{
		Collection: db.Collection("carts"),
		Tests:      db.Collection("tests"),
		Packages:   db.Collection("packages"),
		Users:      db.Collection("users"),
	}
}

// AddToCart adds a test or package to the user's cart. The item's name,
// price and owning lab are resolved from the catalog, never trusted from
// the request body.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		ItemID   string `json:"item_id"`
		Type     string `json:"type"`
		Quantity int    `json:"quantity"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	if !models.ValidItemType(input.Type) {
		http.Error(w, "Invalid item type", http.StatusBadRequest)
		return
	}
	if input.Quantity < 1 {
		input.Quantity = 1
	}

	itemID, err := primitive.ObjectIDFromHex(input.ItemID)
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, cc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// Resolve the catalog entry
	item := models.CartItem{ItemID: itemID, Type: input.Type, Quantity: input.Quantity}
	switch input.Type {
	case models.ItemTypeTest:
		var test models.LabTest
		if err := cc.Tests.FindOne(ctx, bson.M{"_id": itemID}).Decode(&test); err != nil {
			http.Error(w, "Test not found", http.StatusNotFound)
			return
		}
		item.Name, item.Price, item.LabID = test.Name, test.Price, test.LabID
	case models.ItemTypePackage:
		var pkg models.HealthPackage
		if err := cc.Packages.FindOne(ctx, bson.M{"_id": itemID}).Decode(&pkg); err != nil {
			http.Error(w, "Package not found", http.StatusNotFound)
			return
		}
		item.Name, item.Price, item.LabID = pkg.Name, pkg.Price, pkg.LabID
	}

	// Check if cart exists
	var cart models.Cart
	err = cc.Collection.FindOne(ctx, bson.M{"user_id": user.ID}).Decode(&cart)
	if err != nil {
		// Create new cart
		cart = models.Cart{
			UserID: user.ID,
			Items:  []models.CartItem{item},
		}
		_, err := cc.Collection.InsertOne(ctx, cart)
		if err != nil {
			http.Error(w, "Error creating cart", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode("Item added to cart")
		return
	}

	// Update existing cart
	updated := false
	for i, existingItem := range cart.Items {
		if existingItem.ItemID == item.ItemID && existingItem.Type == item.Type {
			cart.Items[i].Quantity += item.Quantity
			updated = true
			break
		}
	}

	if !updated {
		cart.Items = append(cart.Items, item)
	}

	_, err = cc.Collection.UpdateOne(ctx, bson.M{"_id": cart.ID}, bson.M{"$set": bson.M{"items": cart.Items}})
	if err != nil {
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Item added to cart")
}

// RemoveFromCart removes a test or package from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params := mux.Vars(r)
	itemID, err := primitive.ObjectIDFromHex(params["item_id"])
	if err != nil {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, cc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// Find cart
	var cart models.Cart
	err = cc.Collection.FindOne(ctx, bson.M{"user_id": user.ID}).Decode(&cart)
	if err != nil {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}

	// Remove the item
	updatedItems := []models.CartItem{}
	for _, item := range cart.Items {
		if item.ItemID != itemID {
			updatedItems = append(updatedItems, item)
		}
	}

	_, err = cc.Collection.UpdateOne(ctx, bson.M{"_id": cart.ID}, bson.M{"$set": bson.M{"items": updatedItems}})
	if err != nil {
		http.Error(w, "Error updating cart", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Item removed from cart")
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, cc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	// Find cart; a user without one gets an empty cart back
	var cart models.Cart
	err = cc.Collection.FindOne(ctx, bson.M{"user_id": user.ID}).Decode(&cart)
	if err != nil {
		cart = models.Cart{UserID: user.ID, Items: []models.CartItem{}}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"cart":     cart,
		"subtotal": cart.Subtotal(),
	})
}

// ClearCart removes every item from the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, cc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	_, err = cc.Collection.DeleteOne(ctx, bson.M{"user_id": user.ID})
	if err != nil {
		http.Error(w, "Error clearing cart", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode("Cart cleared")
}
