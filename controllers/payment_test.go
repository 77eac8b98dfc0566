package controllers

import (
	"go-healthlab/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMapTransactionStatus(t *testing.T) {
	cases := []struct {
		transactionStatus string
		fraudStatus       string
		want              string
	}{
		{"settlement", "", models.PaymentPaid},
		{"capture", "accept", models.PaymentPaid},
		{"capture", "challenge", models.PaymentPending},
		{"deny", "", models.PaymentFailed},
		{"cancel", "", models.PaymentFailed},
		{"expire", "", models.PaymentFailed},
		{"pending", "", models.PaymentPending},
		{"", "", models.PaymentPending},
		{"refund", "", models.PaymentPending},
	}
	for _, tc := range cases {
		got := MapTransactionStatus(tc.transactionStatus, tc.fraudStatus)
		assert.Equal(t, tc.want, got, "transaction_status=%q fraud_status=%q", tc.transactionStatus, tc.fraudStatus)
	}
}

func TestBuildItemDetailsGrossMatchesLines(t *testing.T) {
	cart := models.Cart{Items: []models.CartItem{
		{ItemID: primitive.NewObjectID(), Name: "CBC", Price: 299.99, Quantity: 2},
		{ItemID: primitive.NewObjectID(), Name: "Lipid Profile", Price: 450.50, Quantity: 1},
	}}

	details, gross := buildItemDetails(cart, models.CollectionHome)
	require.Len(t, details, 3) // two lines plus the home collection charge

	// Fractional prices are rounded once per line; the gross amount is the
	// sum of the rounded lines, never an independently truncated total
	var sum int64
	for _, d := range details {
		sum += d.Price * int64(d.Qty)
	}
	assert.Equal(t, sum, gross)
	assert.Equal(t, int64(300), details[0].Price)
	assert.Equal(t, int64(451), details[1].Price)
	assert.Equal(t, int64(models.HomeDeliveryCharge), details[2].Price)

	// Lab collection carries no charge line
	details, gross = buildItemDetails(cart, models.CollectionLab)
	require.Len(t, details, 2)
	assert.Equal(t, int64(300*2+451), gross)
}
