package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/wanderlust-app/backend/config"
	"github.com/wanderlust-app/backend/geocode"
	"github.com/wanderlust-app/backend/routes"
	"github.com/wanderlust-app/backend/store"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}
}

func main() {
	loadEnv()

	client, err := config.ConnectDB()
	if err != nil {
		if client == nil {
			log.Fatalf("Failed to set up MongoDB client: %v", err)
		}
		// The server keeps running; store operations fail per-request
		// until the database becomes reachable.
		log.Printf("Starting without a working database: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatalf("Error closing MongoDB connection: %v", err)
		}
		log.Println("MongoDB connection closed")
	}()

	redisClient := config.InitRedis()

	db := config.Database(client)
	users := store.NewUserStore(db)
	listings := store.NewListingStore(db)
	reviews := store.NewReviewStore(db)
	coord := store.NewCoordinator(listings, reviews)
	geocoder := geocode.NewNominatimClient(os.Getenv("GEOCODER_URL"))

	router := mux.NewRouter()
	routes.Routes(router, users, listings, coord, geocoder, redisClient)

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := corsOptions.Handler(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Error during server shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
