package controllers

import (
	"context"
	"encoding/json"
	"go-healthlab/models"
	"go-healthlab/utils"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Result type discriminators; clients dispatch on these to route to the
// right detail page, and may add to cart only for test/package results.
const (
	ResultTest          = "test"
	ResultPackage       = "package"
	ResultLab           = "lab"
	ResultHealthConcern = "healthconcern"
	ResultMostUsed      = "mostused"
	ResultPage          = "page"
)

// SearchResult is the normalized projection every corpus maps into
type SearchResult struct {
	Type               string             `json:"type"`
	ID                 primitive.ObjectID `json:"id"`
	DisplayName        string             `json:"display_name"`
	DisplayDescription string             `json:"display_description"`
	Price              float64            `json:"price,omitempty"`
	LabID              primitive.ObjectID `json:"lab_id,omitempty"`
	LabName            string             `json:"lab_name,omitempty"`
}

// SearchController fans a free-text query out across all content types
type SearchController struct {
	Tests          *mongo.Collection
	Packages       *mongo.Collection
	Labs           *mongo.Collection
	HealthConcerns *mongo.Collection
	Pages          *mongo.Collection
}

// NewSearchController creates a new SearchController
func NewSearchController(client *mongo.Client) *SearchController {
	db := client.Database(utils.DatabaseName)
	return &SearchController{
		Tests:          db.Collection("tests"),
		Packages:       db.Collection("packages"),
		Labs:           db.Collection("labs"),
		HealthConcerns: db.Collection("healthconcerns"),
		Pages:          db.Collection("pages"),
	}
}

const perCorpusLimit = 20

// nameFilter builds a case-insensitive substring match on the given field
func nameFilter(field, query string) bson.M {
	return bson.M{field: primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}}
}

// RankResults orders results so exact-name prefix matches come first, then
// substring matches, stable within each band.
func RankResults(results []SearchResult, query string) []SearchResult {
	q := strings.ToLower(query)
	rank := func(r SearchResult) int {
		name := strings.ToLower(r.DisplayName)
		switch {
		case name == q:
			return 0
		case strings.HasPrefix(name, q):
			return 1
		case strings.Contains(name, q):
			return 2
		}
		return 3
	}
	sort.SliceStable(results, func(i, j int) bool {
		return rank(results[i]) < rank(results[j])
	})
	return results
}

// SearchAll handles GET /api/search/all?query=. Each corpus is queried in
// turn; a failing corpus is skipped rather than failing the whole search.
func (sc *SearchController) SearchAll(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		http.Error(w, "Query parameter is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetLimit(perCorpusLimit)
	results := []SearchResult{}

	cursor, err := sc.Tests.Find(ctx, nameFilter("name", query), opts)
	if err == nil {
		var tests []models.LabTest
		if err := cursor.All(ctx, &tests); err == nil {
			for _, t := range tests {
				results = append(results, SearchResult{
					Type:               ResultTest,
					ID:                 t.ID,
					DisplayName:        t.Name,
					DisplayDescription: t.Description,
					Price:              t.Price,
					LabID:              t.LabID,
				})
			}
		}
	}

	// Most-used shortcuts are their own corpus: the same test can appear
	// again as a shortcut entry
	mostUsedFilter := nameFilter("name", query)
	mostUsedFilter["most_used"] = true
	cursor, err = sc.Tests.Find(ctx, mostUsedFilter, opts)
	if err == nil {
		var tests []models.LabTest
		if err := cursor.All(ctx, &tests); err == nil {
			for _, t := range tests {
				results = append(results, SearchResult{
					Type:               ResultMostUsed,
					ID:                 t.ID,
					DisplayName:        t.Name,
					DisplayDescription: t.Description,
					Price:              t.Price,
					LabID:              t.LabID,
				})
			}
		}
	}

	cursor, err = sc.Packages.Find(ctx, nameFilter("name", query), opts)
	if err == nil {
		var packages []models.HealthPackage
		if err := cursor.All(ctx, &packages); err == nil {
			for _, p := range packages {
				results = append(results, SearchResult{
					Type:               ResultPackage,
					ID:                 p.ID,
					DisplayName:        p.Name,
					DisplayDescription: p.Description,
					Price:              p.Price,
					LabID:              p.LabID,
				})
			}
		}
	}

	cursor, err = sc.Labs.Find(ctx, nameFilter("name", query), opts)
	if err == nil {
		var labs []models.Lab
		if err := cursor.All(ctx, &labs); err == nil {
			for _, l := range labs {
				results = append(results, SearchResult{
					Type:               ResultLab,
					ID:                 l.ID,
					DisplayName:        l.Name,
					DisplayDescription: l.Description,
				})
			}
		}
	}

	cursor, err = sc.HealthConcerns.Find(ctx, nameFilter("name", query), opts)
	if err == nil {
		var concerns []models.HealthConcern
		if err := cursor.All(ctx, &concerns); err == nil {
			for _, c := range concerns {
				results = append(results, SearchResult{
					Type:               ResultHealthConcern,
					ID:                 c.ID,
					DisplayName:        c.Name,
					DisplayDescription: c.Description,
				})
			}
		}
	}

	cursor, err = sc.Pages.Find(ctx, nameFilter("title", query), opts)
	if err == nil {
		var pages []models.StaticPage
		if err := cursor.All(ctx, &pages); err == nil {
			for _, p := range pages {
				results = append(results, SearchResult{
					Type:               ResultPage,
					ID:                 p.ID,
					DisplayName:        p.Title,
					DisplayDescription: p.Slug,
				})
			}
		}
	}

	// Attach lab names for bookable results
	labNames := map[primitive.ObjectID]string{}
	for i, res := range results {
		if res.LabID.IsZero() {
			continue
		}
		name, ok := labNames[res.LabID]
		if !ok {
			var lab models.Lab
			if err := sc.Labs.FindOne(ctx, bson.M{"_id": res.LabID}).Decode(&lab); err == nil {
				name = lab.Name
			}
			labNames[res.LabID] = name
		}
		results[i].LabName = name
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RankResults(results, query))
}
