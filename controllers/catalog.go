package controllers

import (
	"context"
	"encoding/json"
	"go-healthlab/models"
	"go-healthlab/utils"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CatalogController handles tests, packages, labs and editorial content
type CatalogController struct {
	Tests          *mongo.Collection
	Packages       *mongo.Collection
	Labs           *mongo.Collection
	HealthConcerns *mongo.Collection
	Pages          *mongo.Collection
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(client *mongo.Client) *CatalogController {
	db := client.Database(utils.DatabaseName)
	return &CatalogController{
		Tests:          db.Collection("tests"),
		Packages:       db.Collection("packages"),
		Labs:           db.Collection("labs"),
		HealthConcerns: db.Collection("healthconcerns"),
		Pages:          db.Collection("pages"),
	}
}

func listAll[T any](w http.ResponseWriter, coll *mongo.Collection) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "Error fetching records", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var records []T
	if err := cursor.All(ctx, &records); err != nil {
		http.Error(w, "Error reading records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

func getByID[T any](w http.ResponseWriter, r *http.Request, coll *mongo.Collection, notFound string) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var record T
	err = coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if err != nil {
		http.Error(w, notFound, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

func createRecord[T any](w http.ResponseWriter, r *http.Request, coll *mongo.Collection) {
	var record T
	err := json.NewDecoder(r.Body).Decode(&record)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := coll.InsertOne(ctx, record)
	if err != nil {
		http.Error(w, "Error creating record", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func updateRecord[T any](w http.ResponseWriter, r *http.Request, coll *mongo.Collection) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	var record T
	err = json.NewDecoder(r.Body).Decode(&record)
	if err != nil {
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": record})
	if err != nil {
		http.Error(w, "Error updating record", http.StatusInternalServerError)
		return
	}
	if result.MatchedCount == 0 {
		http.Error(w, "Record not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(result)
}

func deleteRecord(w http.ResponseWriter, r *http.Request, coll *mongo.Collection) {
	params := mux.Vars(r)
	id, err := primitive.ObjectIDFromHex(params["id"])
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		http.Error(w, "Error deleting record", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(result)
}

// Tests

func (cc *CatalogController) GetTests(w http.ResponseWriter, r *http.Request) {
	listAll[models.LabTest](w, cc.Tests)
}

func (cc *CatalogController) GetTestByID(w http.ResponseWriter, r *http.Request) {
	getByID[models.LabTest](w, r, cc.Tests, "Test not found")
}

func (cc *CatalogController) CreateTest(w http.ResponseWriter, r *http.Request) {
	createRecord[models.LabTest](w, r, cc.Tests)
}

func (cc *CatalogController) UpdateTest(w http.ResponseWriter, r *http.Request) {
	updateRecord[models.LabTest](w, r, cc.Tests)
}

func (cc *CatalogController) DeleteTest(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, cc.Tests)
}

// Packages

func (cc *CatalogController) GetPackages(w http.ResponseWriter, r *http.Request) {
	listAll[models.HealthPackage](w, cc.Packages)
}

func (cc *CatalogController) GetPackageByID(w http.ResponseWriter, r *http.Request) {
	getByID[models.HealthPackage](w, r, cc.Packages, "Package not found")
}

func (cc *CatalogController) CreatePackage(w http.ResponseWriter, r *http.Request) {
	createRecord[models.HealthPackage](w, r, cc.Packages)
}

func (cc *CatalogController) UpdatePackage(w http.ResponseWriter, r *http.Request) {
	updateRecord[models.HealthPackage](w, r, cc.Packages)
}

func (cc *CatalogController) DeletePackage(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, cc.Packages)
}

// Labs

func (cc *CatalogController) GetLabs(w http.ResponseWriter, r *http.Request) {
	listAll[models.Lab](w, cc.Labs)
}

func (cc *CatalogController) GetLabByID(w http.ResponseWriter, r *http.Request) {
	getByID[models.Lab](w, r, cc.Labs, "Lab not found")
}

func (cc *CatalogController) CreateLab(w http.ResponseWriter, r *http.Request) {
	createRecord[models.Lab](w, r, cc.Labs)
}

func (cc *CatalogController) UpdateLab(w http.ResponseWriter, r *http.Request) {
	updateRecord[models.Lab](w, r, cc.Labs)
}

func (cc *CatalogController) DeleteLab(w http.ResponseWriter, r *http.Request) {
	deleteRecord(w, r, cc.Labs)
}

// Health concerns and static pages

func (cc *CatalogController) GetHealthConcerns(w http.ResponseWriter, r *http.Request) {
	listAll[models.HealthConcern](w, cc.HealthConcerns)
}

func (cc *CatalogController) CreateHealthConcern(w http.ResponseWriter, r *http.Request) {
	createRecord[models.HealthConcern](w, r, cc.HealthConcerns)
}

func (cc *CatalogController) GetPages(w http.ResponseWriter, r *http.Request) {
	listAll[models.StaticPage](w, cc.Pages)
}

func (cc *CatalogController) CreatePage(w http.ResponseWriter, r *http.Request) {
	createRecord[models.StaticPage](w, r, cc.Pages)
}
