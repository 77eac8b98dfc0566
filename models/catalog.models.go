package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lab represents a partner diagnostic laboratory offering tests and packages
type Lab struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Address     Address            `bson:"address" json:"address"`
	Email       string             `bson:"email" json:"email"`
}

// LabTest represents a single diagnostic test offered by a lab
type LabTest struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	LabID       primitive.ObjectID `bson:"lab_id" json:"lab_id"`
	SampleType  string             `bson:"sample_type" json:"sample_type"` // e.g. "blood", "urine"
	MostUsed    bool               `bson:"most_used" json:"most_used"`     // shown as a search shortcut
}

// HealthPackage bundles several tests from one lab at a single price
type HealthPackage struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Price       float64              `bson:"price" json:"price"`
	LabID       primitive.ObjectID   `bson:"lab_id" json:"lab_id"`
	TestIDs     []primitive.ObjectID `bson:"test_ids" json:"test_ids"`
}

// HealthConcern is a browsable topic (e.g. "Diabetes") linking to related tests
type HealthConcern struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
}

// StaticPage is editorial content (about, FAQ, policies) included in search
type StaticPage struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title string             `bson:"title" json:"title"`
	Slug  string             `bson:"slug" json:"slug"`
	Body  string             `bson:"body" json:"body"`
}
