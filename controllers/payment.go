package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"go-healthlab/middleware"
	"go-healthlab/models"
	"go-healthlab/utils"
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// PaymentController bridges the cart to the hosted checkout flow
type PaymentController struct {
	Sessions *mongo.Collection
	Carts    *mongo.Collection
	Users    *mongo.Collection
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(client *mongo.Client) *PaymentController {
	db := client.Database(utils.DatabaseName)
	return &PaymentController{
		Sessions: db.Collection("checkout_sessions"),
		Carts:    db.Collection("carts"),
		Users:    db.Collection("users"),
	}
}

// buildItemDetails converts cart lines into gateway item details. Each price
// is rounded once to whole currency units and the gross amount is summed from
// the rounded lines, so the two can never disagree.
func buildItemDetails(cart models.Cart, collectionMethod string) ([]midtrans.ItemDetails, int64) {
	details := make([]midtrans.ItemDetails, 0, len(cart.Items)+1)
	var gross int64
	for _, item := range cart.Items {
		price := int64(math.Round(item.Price))
		details = append(details, midtrans.ItemDetails{
			ID:    item.ItemID.Hex(),
			Name:  item.Name,
			Price: price,
			Qty:   int32(item.Quantity),
		})
		gross += price * int64(item.Quantity)
	}
	if charge := models.DeliveryChargeFor(collectionMethod); charge > 0 {
		price := int64(math.Round(charge))
		details = append(details, midtrans.ItemDetails{
			ID:    "DELIVERY",
			Name:  "Home collection charge",
			Price: price,
			Qty:   1,
		})
		gross += price
	}
	return details, gross
}

func snapClient() snap.Client {
	env := midtrans.Sandbox
	if os.Getenv("MIDTRANS_ENV") == "production" {
		env = midtrans.Production
	}
	var s snap.Client
	s.New(os.Getenv("MIDTRANS_SERVER_KEY"), env)
	return s
}

// CreateCheckoutSession opens a hosted payment session for the caller's cart
// and returns the token and redirect URL the client hands to the gateway.
func (pc *PaymentController) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(middleware.UserContextKey).(*utils.Claims)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		CollectionMethod string `json:"collection_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if input.CollectionMethod != models.CollectionHome && input.CollectionMethod != models.CollectionLab {
		http.Error(w, "Invalid collection method", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := findUserByEmail(ctx, pc.Users, claims.Email)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	var cart models.Cart
	err = pc.Carts.FindOne(ctx, bson.M{"user_id": user.ID}).Decode(&cart)
	if err != nil {
		http.Error(w, "Cart not found", http.StatusNotFound)
		return
	}
	if err := cart.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	amount := cart.Subtotal() + models.DeliveryChargeFor(input.CollectionMethod)
	orderNo := fmt.Sprintf("INV-%d", time.Now().UnixNano())

	details, gross := buildItemDetails(cart, input.CollectionMethod)

	s := snapClient()
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderNo,
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: user.Name,
			Email: user.Email,
			Phone: user.Phone,
		},
		Items: &details,
	}

	snapResp, snapErr := s.CreateTransaction(req)
	if snapErr != nil {
		log.Printf("Payment gateway error for %s: %v", orderNo, snapErr.GetMessage())
		http.Error(w, "Payment gateway error, please try again", http.StatusInternalServerError)
		return
	}

	session := models.CheckoutSession{
		OrderNo:   orderNo,
		UserID:    user.ID,
		Amount:    amount,
		Status:    models.PaymentPending,
		CreatedAt: time.Now(),
	}
	if _, err := pc.Sessions.InsertOne(ctx, session); err != nil {
		http.Error(w, "Error creating checkout session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"session_id":   orderNo,
		"amount":       amount,
		"token":        snapResp.Token,
		"redirect_url": snapResp.RedirectURL,
	})
}

// GatewayNotification is the webhook body sent by the payment gateway.
// Midtrans sends many more fields; only these drive the status mapping.
type GatewayNotification struct {
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
}

// MapTransactionStatus translates a gateway transaction status into the
// internal payment status of a checkout session.
func MapTransactionStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return models.PaymentPending
		}
		return models.PaymentPaid
	case "settlement":
		return models.PaymentPaid
	case "deny", "cancel", "expire":
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}

// HandleNotification processes the gateway's server-to-server status webhook.
// Idempotent: re-delivered notifications re-apply the same status.
func (pc *PaymentController) HandleNotification(w http.ResponseWriter, r *http.Request) {
	var notification GatewayNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	status := MapTransactionStatus(notification.TransactionStatus, notification.FraudStatus)
	log.Printf("Gateway notification - OrderNo: %s, TransactionStatus: %s, FraudStatus: %s, MappedStatus: %s",
		notification.OrderID, notification.TransactionStatus, notification.FraudStatus, status)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := pc.Sessions.UpdateOne(ctx,
		bson.M{"order_no": notification.OrderID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		log.Printf("Error updating checkout session %s: %v", notification.OrderID, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
