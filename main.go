// main.go
package main

import (
	"context"
	"fmt"
	"go-healthlab/controllers"
	"go-healthlab/routes"
	"go-healthlab/utils"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Initialize EmailService
	emailService := utils.NewEmailService()

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err = client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	// Initialize controllers
	c := routes.Controllers{
		User:      controllers.NewUserController(client, emailService),
		Catalog:   controllers.NewCatalogController(client),
		Cart:      controllers.NewCartController(client),
		Payment:   controllers.NewPaymentController(client),
		Order:     controllers.NewOrderController(client, emailService),
		Review:    controllers.NewReviewController(client),
		Search:    controllers.NewSearchController(client),
		Dashboard: controllers.NewDashboardController(client),
		Query:     controllers.NewQueryController(client, emailService),
	}

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, c)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
