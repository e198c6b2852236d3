// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"mystore/controllers"
	"mystore/routes"
	"mystore/services"
	"mystore/store"
	"mystore/utils"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))

	// Connect to MongoDB
	client, err := store.ConnectDB(context.Background(), os.Getenv("MONGO_URI"))
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Fatal(err)
		}
	}()

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "mystore"
	}
	db := client.Database(dbName)

	// Stores
	productStore := store.NewProductStore(db)
	cartStore := store.NewCartStore(db)
	userStore := store.NewUserStore(db)

	// External collaborators
	uploader, err := utils.NewCloudinaryUploader()
	if err != nil {
		log.Fatal(err)
	}
	emailService := utils.NewEmailService()

	// Services
	catalogService := services.NewCatalogService(productStore, uploader)
	cartService := services.NewCartService(cartStore, productStore)

	// Controllers
	userController := controllers.NewUserController(userStore, emailService)
	productController := controllers.NewProductController(catalogService)
	cartController := controllers.NewCartController(cartService)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, productController, cartController)

	// CORS for the browser frontend; cookies require credentialed requests.
	origins := strings.Split(os.Getenv("CORS_ORIGINS"), ",")
	if len(origins) == 1 && origins[0] == "" {
		origins = []string{"http://localhost:5173"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	fmt.Printf("Server is running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, cors(router)))
}
