package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/wanderlust-app/backend/geocode"
	"github.com/wanderlust-app/backend/models"
	"github.com/wanderlust-app/backend/store"
	"github.com/wanderlust-app/backend/validation"
	"github.com/gorilla/mux"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const UserIDKey = ContextKey("userID")

// ListingStore is the listing persistence surface the handlers need.
// Satisfied by *store.ListingStore.
type ListingStore interface {
	List(ctx context.Context, category string) ([]models.Listing, error)
	SearchByCountry(ctx context.Context, query string) ([]models.Listing, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	GetDetail(ctx context.Context, id primitive.ObjectID) (*models.ListingDetail, error)
	Insert(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, id primitive.ObjectID, listing *models.Listing) error
}

// ListingCoordinator mediates the writes that touch both listings and
// reviews. Satisfied by *store.Coordinator.
type ListingCoordinator interface {
	CreateReview(ctx context.Context, listingID primitive.ObjectID, authorID string, rating int, comment string) (*models.Review, error)
	DeleteReview(ctx context.Context, listingID, reviewID primitive.ObjectID, requesterID string) error
	DeleteListing(ctx context.Context, id primitive.ObjectID, requesterID string) error
}

func ListListings(listings ListingStore, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := r.URL.Query().Get("category")

		cacheKey := listingCacheKey("index", r.URL.Query())
		if cached, ok := cacheGet(r.Context(), redisClient, cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}

		result, err := listings.List(r.Context(), category)
		if err != nil {
			log.Printf("Error fetching listings: %v", err)
			http.Error(w, "Error fetching listings", http.StatusInternalServerError)
			return
		}

		resultBytes, err := json.Marshal(result)
		if err != nil {
			log.Printf("Failed to serialize listings: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}

		cacheSet(r.Context(), redisClient, cacheKey, resultBytes)

		w.Header().Set("Content-Type", "application/json")
		w.Write(resultBytes)
	}
}

func SearchListings(listings ListingStore, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			http.Error(w, "Please enter a country name to search", http.StatusBadRequest)
			return
		}

		cacheKey := listingCacheKey("search", r.URL.Query())
		if cached, ok := cacheGet(r.Context(), redisClient, cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}

		result, err := listings.SearchByCountry(r.Context(), q)
		if err != nil {
			log.Printf("Error searching listings by country %q: %v", q, err)
			http.Error(w, "Error searching listings", http.StatusInternalServerError)
			return
		}

		resultBytes, err := json.Marshal(result)
		if err != nil {
			log.Printf("Failed to serialize listings: %v", err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}

		cacheSet(r.Context(), redisClient, cacheKey, resultBytes)

		w.Header().Set("Content-Type", "application/json")
		w.Write(resultBytes)
	}
}

func GetListing(listings ListingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(mux.Vars(r)["id"]))
		if err != nil {
			http.Error(w, "Invalid listing ID", http.StatusBadRequest)
			return
		}

		detail, err := listings.GetDetail(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Listing you requested does not exist", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Error fetching listing %s: %v", id.Hex(), err)
			http.Error(w, "Error fetching listing", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(detail)
	}
}

func CreateListing(listings ListingStore, geocoder geocode.Geocoder, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		var payload validation.ListingPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			log.Printf("Invalid request body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := validation.ValidateListing(payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		owner, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			log.Printf("Malformed user ID in context: %q", userID)
			http.Error(w, "Invalid user identity", http.StatusUnauthorized)
			return
		}

		// Geocode failures block creation: no document is persisted unless
		// the address resolves.
		point, err := geocoder.Geocode(r.Context(), payload.Location+", "+payload.Country)
		if errors.Is(err, geocode.ErrNoMatch) {
			http.Error(w, "Could not geocode the location", http.StatusUnprocessableEntity)
			return
		}
		if err != nil {
			log.Printf("Geocoding error: %v", err)
			http.Error(w, "Geocoding service failed. Try again later.", http.StatusBadGateway)
			return
		}

		listing := &models.Listing{
			Title:       payload.Title,
			Description: payload.Description,
			Image:       models.NormalizeImage(payload.Image),
			Price:       *payload.Price,
			Location:    payload.Location,
			Country:     payload.Country,
			Category:    payload.Category,
			Geometry: &models.Geometry{
				Type:        "Point",
				Coordinates: []float64{point.Longitude, point.Latitude},
			},
			Owner: owner,
		}

		if err := listings.Insert(r.Context(), listing); err != nil {
			if errors.Is(err, store.ErrInvalidCategory) {
				http.Error(w, "Unknown category", http.StatusBadRequest)
				return
			}
			log.Printf("Insert failed: %v", err)
			http.Error(w, "Failed to create listing", http.StatusInternalServerError)
			return
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(listing)
	}
}

func UpdateListing(listings ListingStore, geocoder geocode.Geocoder, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(mux.Vars(r)["id"]))
		if err != nil {
			http.Error(w, "Invalid listing ID", http.StatusBadRequest)
			return
		}

		var payload validation.ListingPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			log.Printf("Invalid request body: %v", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if err := validation.ValidateListing(payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		listing, err := listings.Get(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Printf("Error fetching listing %s: %v", id.Hex(), err)
			http.Error(w, "Error fetching listing", http.StatusInternalServerError)
			return
		}

		if err := store.RequireOwner(listing, userID); err != nil {
			log.Printf("User %s is not the owner of listing %s", userID, id.Hex())
			http.Error(w, "You are not authorized to manage this listing", http.StatusForbidden)
			return
		}

		listing.Title = payload.Title
		listing.Description = payload.Description
		listing.Price = *payload.Price
		listing.Location = payload.Location
		listing.Country = payload.Country
		listing.Category = payload.Category

		// A new image replaces the old one; otherwise the existing image is
		// kept as is.
		if payload.Image != nil && strings.TrimSpace(payload.Image.URL) != "" {
			listing.Image = models.NormalizeImage(payload.Image)
		}

		// Unlike create, a failed re-geocode does not abort the update: the
		// previous geometry is simply retained.
		point, err := geocoder.Geocode(r.Context(), payload.Location+", "+payload.Country)
		if err != nil {
			log.Printf("Geocoding error during update of %s, keeping previous geometry: %v", id.Hex(), err)
		} else {
			listing.Geometry = &models.Geometry{
				Type:        "Point",
				Coordinates: []float64{point.Longitude, point.Latitude},
			}
		}

		if err := listings.Update(r.Context(), id, listing); err != nil {
			if errors.Is(err, store.ErrInvalidCategory) {
				http.Error(w, "Unknown category", http.StatusBadRequest)
				return
			}
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "Listing not found", http.StatusNotFound)
				return
			}
			log.Printf("Update failed for listing %s: %v", id.Hex(), err)
			http.Error(w, "Update failed", http.StatusInternalServerError)
			return
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(listing)
	}
}

func DeleteListing(coord ListingCoordinator, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
			http.Error(w, "User ID missing in context", http.StatusUnauthorized)
			return
		}

		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(mux.Vars(r)["id"]))
		if err != nil {
			http.Error(w, "Invalid listing ID", http.StatusBadRequest)
			return
		}

		err = coord.DeleteListing(r.Context(), id, userID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "Listing not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, store.ErrForbidden) {
			log.Printf("User %s is not the owner of listing %s", userID, id.Hex())
			http.Error(w, "You are not authorized to manage this listing", http.StatusForbidden)
			return
		}
		if err != nil {
			log.Printf("Delete failed for listing %s: %v", id.Hex(), err)
			http.Error(w, "Delete failed", http.StatusInternalServerError)
			return
		}

		go func() {
			invalidateListingCache(redisClient)
		}()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Listing deleted successfully"})
	}
}

func listingCacheKey(scope string, queryParams url.Values) string {
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(scope)
	sb.WriteString(":")

	for _, key := range keys {
		values := queryParams[key]
		sort.Strings(values)
		for _, val := range values {
			sb.WriteString(key)
			sb.WriteString("=")
			sb.WriteString(val)
			sb.WriteString("&")
		}
	}
	rawKey := strings.TrimSuffix(sb.String(), "&")

	sum := sha256.Sum256([]byte(rawKey))
	return "listing:" + hex.EncodeToString(sum[:])
}

func cacheGet(ctx context.Context, redisClient *redis.Client, key string) ([]byte, bool) {
	if redisClient == nil {
		return nil, false
	}
	cached, err := redisClient.Get(ctx, key).Result()
	if err == nil {
		return []byte(cached), true
	}
	if err != redis.Nil {
		log.Printf("Redis GET error for key %s: %v", key, err)
	}
	return nil, false
}

func cacheSet(ctx context.Context, redisClient *redis.Client, key string, value []byte) {
	if redisClient == nil {
		return
	}
	if err := redisClient.Set(ctx, key, value, 10*time.Minute).Err(); err != nil {
		log.Printf("Failed to cache response for key %s: %v", key, err)
	}
}

func invalidateListingCache(redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	ctx := context.Background()
	const scanPattern = "listing:*"
	const scanCount = 100

	var keysToDelete []string
	var cursor uint64
	var err error

	for {
		var currentKeys []string
		currentKeys, cursor, err = redisClient.Scan(ctx, cursor, scanPattern, scanCount).Result()
		if err != nil {
			log.Printf("Error during Redis SCAN for pattern '%s': %v", scanPattern, err)
			return
		}
		keysToDelete = append(keysToDelete, currentKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keysToDelete) == 0 {
		return
	}

	pipe := redisClient.Pipeline()
	for _, key := range keysToDelete {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Error deleting %d listing cache keys: %v", len(keysToDelete), err)
	}
}
