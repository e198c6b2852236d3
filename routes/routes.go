// routes/routes.go
package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"mystore/controllers"
	"mystore/middleware"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, productController *controllers.ProductController, cartController *controllers.CartController) {
	api := router.PathPrefix("/api").Subrouter()

	// User routes
	user := api.PathPrefix("/user").Subrouter()
	user.HandleFunc("/register", userController.Register).Methods("POST")
	user.HandleFunc("/login", userController.Login).Methods("POST")
	user.Handle("/logout", authenticated(userController.Logout)).Methods("POST")
	user.Handle("/profile", authenticated(userController.GetProfile)).Methods("GET")

	// Product routes. Literal paths are registered before the /{id} matcher.
	products := api.PathPrefix("/products").Subrouter()
	products.Handle("/create", authenticated(productController.CreateProduct)).Methods("POST")
	products.HandleFunc("/featured", productController.GetFeaturedProducts).Methods("GET")
	products.HandleFunc("/suggestion", productController.GetProductSuggestions).Methods("GET")
	products.Handle("/user", authenticated(productController.GetUserProducts)).Methods("GET")
	products.HandleFunc("/all", productController.GetAllProducts).Methods("GET")
	products.HandleFunc("/{id}", productController.GetProductByID).Methods("GET")
	products.Handle("/{id}", authenticated(productController.UpdateProduct)).Methods("PUT")
	products.Handle("/{id}", authenticated(productController.DeleteProduct)).Methods("DELETE")

	// Cart routes, all authenticated
	cart := api.PathPrefix("/cart").Subrouter()
	cart.Use(middleware.AuthMiddleware)
	cart.HandleFunc("", cartController.GetCart).Methods("GET")
	cart.HandleFunc("/count", cartController.GetCartCount).Methods("GET")
	cart.HandleFunc("/add", cartController.AddToCart).Methods("POST")
	cart.HandleFunc("/update", cartController.UpdateCartItem).Methods("PUT")
	cart.HandleFunc("/remove/{productId}", cartController.RemoveFromCart).Methods("DELETE")
	cart.HandleFunc("/clear", cartController.ClearCart).Methods("DELETE")
}

func authenticated(handler http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(handler)
}
