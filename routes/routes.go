// routes/routes.go
package routes

import (
	"go-healthlab/controllers"
	"go-healthlab/middleware"
	"go-healthlab/models"

	"github.com/gorilla/mux"
)

// Controllers bundles every controller the router wires up
type Controllers struct {
	User      *controllers.UserController
	Catalog   *controllers.CatalogController
	Cart      *controllers.CartController
	Payment   *controllers.PaymentController
	Order     *controllers.OrderController
	Review    *controllers.ReviewController
	Search    *controllers.SearchController
	Dashboard *controllers.DashboardController
	Query     *controllers.QueryController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, c Controllers) {
	// Public routes
	router.HandleFunc("/register", c.User.Register).Methods("POST")
	router.HandleFunc("/login", c.User.Login).Methods("POST")
	router.HandleFunc("/verify", c.User.VerifyEmail).Methods("GET")

	// Catalog reads are public
	router.HandleFunc("/api/tests", c.Catalog.GetTests).Methods("GET")
	router.HandleFunc("/api/tests/{id}", c.Catalog.GetTestByID).Methods("GET")
	router.HandleFunc("/api/packages", c.Catalog.GetPackages).Methods("GET")
	router.HandleFunc("/api/packages/{id}", c.Catalog.GetPackageByID).Methods("GET")
	router.HandleFunc("/api/labs", c.Catalog.GetLabs).Methods("GET")
	router.HandleFunc("/api/labs/{id}", c.Catalog.GetLabByID).Methods("GET")
	router.HandleFunc("/api/healthconcerns", c.Catalog.GetHealthConcerns).Methods("GET")
	router.HandleFunc("/api/pages", c.Catalog.GetPages).Methods("GET")

	// Search and reviews reads are public
	router.HandleFunc("/api/search/all", c.Search.SearchAll).Methods("GET")
	router.HandleFunc("/reviews/lab/{labId}", c.Review.GetLabReviews).Methods("GET")

	// Payment gateway webhook is server-to-server; no bearer credential
	router.HandleFunc("/api/payment/notification", c.Payment.HandleNotification).Methods("POST")

	// Authenticated routes
	auth := router.PathPrefix("/").Subrouter()
	auth.Use(middleware.AuthMiddleware)
	auth.HandleFunc("/profile", c.User.GetProfile).Methods("GET")

	auth.HandleFunc("/api/cart", c.Cart.GetCart).Methods("GET")
	auth.HandleFunc("/api/cart/add", c.Cart.AddToCart).Methods("POST")
	auth.HandleFunc("/api/cart/remove/{item_id}", c.Cart.RemoveFromCart).Methods("DELETE")
	auth.HandleFunc("/api/cart/clear", c.Cart.ClearCart).Methods("DELETE")

	auth.HandleFunc("/api/payment/create-checkout-session", c.Payment.CreateCheckoutSession).Methods("POST")

	auth.HandleFunc("/api/orders/create", c.Order.CreateOrder).Methods("POST")
	auth.HandleFunc("/api/orders/user", c.Order.GetUserOrders).Methods("GET")
	auth.HandleFunc("/api/orders/{id}/cancel/{labId}", c.Order.CancelLabItems).Methods("PUT")

	auth.HandleFunc("/reviews", c.Review.CreateReview).Methods("POST")

	auth.HandleFunc("/api/query/create", c.Query.CreateQuery).Methods("POST")
	auth.HandleFunc("/api/query/user/{id}", c.Query.GetUserQueries).Methods("GET")

	// Lab admin routes
	labAdmin := auth.PathPrefix("/").Subrouter()
	labAdmin.Use(middleware.RequireRole(models.RoleLabAdmin))
	labAdmin.HandleFunc("/api/orders/lab", c.Order.GetLabOrders).Methods("GET")
	labAdmin.HandleFunc("/api/orders/{id}/status/{labId}", c.Order.UpdateItemStatus).Methods("PUT")
	labAdmin.HandleFunc("/api/orders/{id}/report/{labId}", c.Order.UploadReport).Methods("POST")
	labAdmin.HandleFunc("/api/labadmin/labdashboard", c.Dashboard.GetLabDashboard).Methods("GET")

	// Super admin routes
	superAdmin := auth.PathPrefix("/").Subrouter()
	superAdmin.Use(middleware.RequireRole(models.RoleSuperAdmin))
	superAdmin.HandleFunc("/api/superadmin/overview", c.Dashboard.GetSuperAdminOverview).Methods("GET")
	superAdmin.HandleFunc("/api/orders/{id}", c.Order.DeleteOrder).Methods("DELETE")
	superAdmin.HandleFunc("/api/query/all", c.Query.GetAllQueries).Methods("GET")
	superAdmin.HandleFunc("/api/query/view/{id}", c.Query.MarkViewed).Methods("PUT")
	superAdmin.HandleFunc("/api/query/respond/{id}", c.Query.RespondToQuery).Methods("PUT")
	superAdmin.HandleFunc("/api/query/delete/{id}", c.Query.DeleteQuery).Methods("DELETE")

	superAdmin.HandleFunc("/api/tests", c.Catalog.CreateTest).Methods("POST")
	superAdmin.HandleFunc("/api/tests/{id}", c.Catalog.UpdateTest).Methods("PUT")
	superAdmin.HandleFunc("/api/tests/{id}", c.Catalog.DeleteTest).Methods("DELETE")
	superAdmin.HandleFunc("/api/packages", c.Catalog.CreatePackage).Methods("POST")
	superAdmin.HandleFunc("/api/packages/{id}", c.Catalog.UpdatePackage).Methods("PUT")
	superAdmin.HandleFunc("/api/packages/{id}", c.Catalog.DeletePackage).Methods("DELETE")
	superAdmin.HandleFunc("/api/labs", c.Catalog.CreateLab).Methods("POST")
	superAdmin.HandleFunc("/api/labs/{id}", c.Catalog.UpdateLab).Methods("PUT")
	superAdmin.HandleFunc("/api/labs/{id}", c.Catalog.DeleteLab).Methods("DELETE")
	superAdmin.HandleFunc("/api/healthconcerns", c.Catalog.CreateHealthConcern).Methods("POST")
	superAdmin.HandleFunc("/api/pages", c.Catalog.CreatePage).Methods("POST")
}
