package controllers

import (
	"context"
	"encoding/json"
	"go-healthlab/models"
	"go-healthlab/utils"
	"math"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DashboardController serves read-only aggregations for lab admins and the
// super admin. Failures here are reported as 500 and never affect writes.
type DashboardController struct {
	Orders  *mongo.Collection
	Users   *mongo.Collection
	Labs    *mongo.Collection
	Queries *mongo.Collection
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(client *mongo.Client) *DashboardController {
	db := client.Database(utils.DatabaseName)
	return &DashboardController{
		Orders:  db.Collection("orders"),
		Users:   db.Collection("users"),
		Labs:    db.Collection("labs"),
		Queries: db.Collection("queries"),
	}
}

// CompletionRate is completed / total × 100 rounded to one decimal place.
// Zero total yields 0, never a division by zero.
func CompletionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*1000) / 10
}

type statusCount struct {
	Status string `bson:"_id" json:"status"`
	Count  int64  `bson:"count" json:"count"`
}

type monthCount struct {
	Month string `bson:"_id" json:"month"`
	Count int64  `bson:"count" json:"count"`
}

type usageCount struct {
	Name  string `bson:"_id" json:"name"`
	Count int64  `bson:"count" json:"count"`
}

// countsFromStatus folds a per-status aggregation into the totals used for
// the completion rate
func countsFromStatus(counts []statusCount) (completed, total int64) {
	for _, c := range counts {
		total += c.Count
		if c.Status == models.StatusCompleted {
			completed += c.Count
		}
	}
	return completed, total
}

func (dc *DashboardController) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cursor, err := dc.Orders.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// monthBucketStages groups by YYYY-MM of created_at over the trailing window
func monthBucketStages(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$created_at"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
}

// GetLabDashboard aggregates the requesting admin's lab: order counts by
// status, completion rate, completed revenue, monthly order counts and the
// most booked tests
func (dc *DashboardController) GetLabDashboard(w http.ResponseWriter, r *http.Request) {
	labID, ok := requireLabAdmin(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Per-status counts over this lab's items
	var byStatus []statusCount
	err := dc.aggregate(ctx, mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$match", Value: bson.M{"items.lab_id": labID}}},
		{{Key: "$group", Value: bson.M{"_id": "$items.status", "count": bson.M{"$sum": 1}}}},
	}, &byStatus)
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}
	completed, total := countsFromStatus(byStatus)

	// Revenue from completed items
	var revenueRows []struct {
		Revenue float64 `bson:"revenue"`
	}
	err = dc.aggregate(ctx, mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$match", Value: bson.M{"items.lab_id": labID, "items.status": models.StatusCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": bson.M{"$multiply": []interface{}{"$items.price", "$items.quantity"}}},
		}}},
	}, &revenueRows)
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}
	revenue := 0.0
	if len(revenueRows) > 0 {
		revenue = revenueRows[0].Revenue
	}

	// Orders per month, last six months, restricted to this lab
	since := time.Now().AddDate(0, -6, 0)
	monthly := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"items.lab_id": labID}}},
	}
	monthly = append(monthly, monthBucketStages(since)...)
	var byMonth []monthCount
	if err := dc.aggregate(ctx, monthly, &byMonth); err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}

	// Most booked tests/packages for this lab
	var usage []usageCount
	err = dc.aggregate(ctx, mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$match", Value: bson.M{"items.lab_id": labID}}},
		{{Key: "$group", Value: bson.M{"_id": "$items.name", "count": bson.M{"$sum": "$items.quantity"}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: 10}},
	}, &usage)
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"orders_by_status": byStatus,
		"total_orders":     total,
		"completion_rate":  CompletionRate(completed, total),
		"revenue":          revenue,
		"orders_by_month":  byMonth,
		"test_usage":       usage,
	})
}

type labVolume struct {
	LabID primitive.ObjectID `bson:"_id" json:"lab_id"`
	Name  string             `bson:"-" json:"name"`
	Count int64              `bson:"count" json:"count"`
}

// GetSuperAdminOverview aggregates platform-wide metrics
func (dc *DashboardController) GetSuperAdminOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	totalUsers, err := dc.Users.CountDocuments(ctx, bson.M{"role": models.RoleUser})
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}
	totalLabs, err := dc.Labs.CountDocuments(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}
	totalOrders, err := dc.Orders.CountDocuments(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}
	pendingQueries, err := dc.Queries.CountDocuments(ctx, bson.M{"status": models.QueryUnviewed})
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}

	// Item status counts over all orders
	var byStatus []statusCount
	err = dc.aggregate(ctx, mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{"_id": "$items.status", "count": bson.M{"$sum": 1}}}},
	}, &byStatus)
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}
	completed, totalItems := countsFromStatus(byStatus)

	// Platform revenue: paid order totals
	var revenueRows []struct {
		Revenue float64 `bson:"revenue"`
	}
	err = dc.aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"payment_status": models.PaymentPaid}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": bson.M{"$add": []interface{}{"$subtotal", "$delivery_charge"}}},
		}}},
	}, &revenueRows)
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}
	revenue := 0.0
	if len(revenueRows) > 0 {
		revenue = revenueRows[0].Revenue
	}

	// Top five labs by booked item volume
	var topLabs []labVolume
	err = dc.aggregate(ctx, mongo.Pipeline{
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{"_id": "$items.lab_id", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: 5}},
	}, &topLabs)
	if err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}
	for i, lv := range topLabs {
		var lab models.Lab
		if err := dc.Labs.FindOne(ctx, bson.M{"_id": lv.LabID}).Decode(&lab); err == nil {
			topLabs[i].Name = lab.Name
		}
	}

	var byMonth []monthCount
	if err := dc.aggregate(ctx, monthBucketStages(time.Now().AddDate(0, -6, 0)), &byMonth); err != nil {
		http.Error(w, "Dashboard unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total_users":      totalUsers,
		"total_labs":       totalLabs,
		"total_orders":     totalOrders,
		"pending_queries":  pendingQueries,
		"orders_by_status": byStatus,
		"completion_rate":  CompletionRate(completed, totalItems),
		"revenue":          revenue,
		"top_labs":         topLabs,
		"orders_by_month":  byMonth,
	})
}
