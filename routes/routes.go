package routes

import (
	"github.com/wanderlust-app/backend/controllers"
	"github.com/wanderlust-app/backend/geocode"
	"github.com/wanderlust-app/backend/middleware"
	"github.com/wanderlust-app/backend/store"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func Routes(router *mux.Router, users *store.UserStore, listings *store.ListingStore, coord *store.Coordinator, geocoder geocode.Geocoder, redisClient *redis.Client) {
	// Auth routes
	router.HandleFunc("/register", controllers.RegisterUser(users)).Methods("POST")
	router.HandleFunc("/login", controllers.LoginUser(users)).Methods("POST")

	// Public listing reads
	router.HandleFunc("/listings", controllers.ListListings(listings, redisClient)).Methods("GET")
	router.HandleFunc("/listings/search", controllers.SearchListings(listings, redisClient)).Methods("GET")
	router.HandleFunc("/listings/{id}", controllers.GetListing(listings)).Methods("GET")

	// Routes that require authentication
	authenticated := router.PathPrefix("/api").Subrouter()
	authenticated.Use(middleware.AuthMiddleware)

	// Listing writes
	authenticated.HandleFunc("/listings", controllers.CreateListing(listings, geocoder, redisClient)).Methods("POST")
	authenticated.HandleFunc("/listings/{id}", controllers.UpdateListing(listings, geocoder, redisClient)).Methods("PUT")
	authenticated.HandleFunc("/listings/{id}", controllers.DeleteListing(coord, redisClient)).Methods("DELETE")

	// Listing-scoped reviews
	authenticated.HandleFunc("/listings/{id}/reviews", controllers.CreateReview(coord, redisClient)).Methods("POST")
	authenticated.HandleFunc("/listings/{id}/reviews/{reviewId}", controllers.DeleteReview(coord, redisClient)).Methods("DELETE")
}
