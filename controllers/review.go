package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/wanderlust-app/backend/store"
	"github.com/wanderlust-app/backend/validation"
	"github.com/gorilla/mux"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func CreateReview(coord ListingCoordinator, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		listingID, err := primitive.ObjectIDFromHex(strings.TrimSpace(mux.Vars(r)["id"]))
		if err != nil {
			http.Error(w, "Invalid listing ID", http.StatusBadRequest)
			return
		}

		var payload validation.ReviewPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			log.Printf("Invalid request body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := validation.ValidateReview(payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		review, err := coord.CreateReview(r.Context(), listingID, userID, payload.Review.Rating, payload.Review.Comment)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, store.ErrInvalidID) {
			log.Printf("Malformed user ID in context: %q", userID)
			http.Error(w, "Invalid user identity", http.StatusUnauthorized)
			return
		}
		if err != nil {
			log.Printf("Failed to create review for listing %s: %v", listingID.Hex(), err)
			http.Error(w, "Failed to create review", http.StatusInternalServerError)
			return
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(review)
	}
}

func DeleteReview(coord ListingCoordinator, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		vars := mux.Vars(r)
		listingID, err := primitive.ObjectIDFromHex(strings.TrimSpace(vars["id"]))
		if err != nil {
			http.Error(w, "Invalid listing ID", http.StatusBadRequest)
			return
		}
		reviewID, err := primitive.ObjectIDFromHex(strings.TrimSpace(vars["reviewId"]))
		if err != nil {
			http.Error(w, "Invalid review ID", http.StatusBadRequest)
			return
		}

		err = coord.DeleteReview(r.Context(), listingID, reviewID, userID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Review not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, store.ErrForbidden) {
			log.Printf("User %s is not the author of review %s", userID, reviewID.Hex())
			http.Error(w, "You are not authorized to delete this review", http.StatusForbidden)
			return
		}
		if err != nil {
			log.Printf("Delete failed for review %s: %v", reviewID.Hex(), err)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Review deleted successfully"})
	}
}
