package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/wanderlust-app/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ListingStore owns the listings collection. All reads are exported;
// deletion is deliberately unexported so that it can only happen through
// the Coordinator, which guarantees the review cascade.
type ListingStore struct {
	listings *mongo.Collection
	users    *mongo.Collection
	reviews  *mongo.Collection
}

func NewListingStore(db *mongo.Database) *ListingStore {
	return &ListingStore{
		listings: db.Collection("listings"),
		users:    db.Collection("users"),
		reviews:  db.Collection("reviews"),
	}
}

// List returns all listings, optionally restricted to one category.
// No pagination.
func (s *ListingStore) List(ctx context.Context, category string) ([]models.Listing, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := s.listings.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing find: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("listing decode: %w", err)
	}
	return listings, nil
}

// SearchByCountry does a case-insensitive substring match against the
// country field. The query string is quoted so user input cannot inject
// regex syntax.
func (s *ListingStore) SearchByCountry(ctx context.Context, query string) ([]models.Listing, error) {
	filter := bson.M{
		"country": bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}},
	}

	cursor, err := s.listings.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing search: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("listing decode: %w", err)
	}
	return listings, nil
}

// Get returns the bare listing document without any expansion.
func (s *ListingStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var listing models.Listing
	err := s.listings.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("listing get: %w", err)
	}
	return &listing, nil
}

// GetDetail returns the listing with its owner expanded and every review
// expanded with its author.
func (s *ListingStore) GetDetail(ctx context.Context, id primitive.ObjectID) (*models.ListingDetail, error) {
	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.ListingDetail{Listing: *listing, Reviews: []models.ReviewDetail{}}

	if err := s.users.FindOne(ctx, bson.M{"_id": listing.Owner}).Decode(&detail.Owner); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("listing owner lookup: %w", err)
	}

	if len(listing.Reviews) == 0 {
		return detail, nil
	}

	pipeline := mongo.Pipeline{
		{
			{Key: "$match", Value: bson.M{"_id": bson.M{"$in": listing.Reviews}}},
		},
		{
			{Key: "$sort", Value: bson.M{"createdAt": 1}},
		},
		{
			{Key: "$lookup", Value: bson.M{
				"from":         "users",
				"localField":   "author",
				"foreignField": "_id",
				"as":           "author",
			}},
		},
		{
			{Key: "$unwind", Value: bson.M{"path": "$author", "preserveNullAndEmptyArrays": true}},
		},
	}

	cursor, err := s.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("review aggregate: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &detail.Reviews); err != nil {
		return nil, fmt.Errorf("review decode: %w", err)
	}
	return detail, nil
}

// Insert persists a new listing. The image is normalized and the category
// checked against the closed set before anything is written.
func (s *ListingStore) Insert(ctx context.Context, listing *models.Listing) error {
	if !models.ValidCategory(listing.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, listing.Category)
	}

	listing.Image = models.NormalizeImage(&listing.Image)
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	if listing.Reviews == nil {
		listing.Reviews = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	if _, err := s.listings.InsertOne(ctx, listing); err != nil {
		return fmt.Errorf("listing insert: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an existing listing. Owner,
// review references and creation time are never touched by the $set, so
// payloads cannot rewrite them.
func (s *ListingStore) Update(ctx context.Context, id primitive.ObjectID, listing *models.Listing) error {
	if !models.ValidCategory(listing.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, listing.Category)
	}

	listing.Image = models.NormalizeImage(&listing.Image)

	update := bson.M{"$set": bson.M{
		"title":       listing.Title,
		"description": listing.Description,
		"image":       listing.Image,
		"price":       listing.Price,
		"location":    listing.Location,
		"country":     listing.Country,
		"category":    listing.Category,
		"geometry":    listing.Geometry,
		"updatedAt":   time.Now().UTC(),
	}}

	res, err := s.listings.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("listing update: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// remove deletes the listing and returns the deleted document so the
// Coordinator can cascade over its review references.
func (s *ListingStore) remove(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var listing models.Listing
	err := s.listings.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("listing delete: %w", err)
	}
	return &listing, nil
}

func (s *ListingStore) pushReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	res, err := s.listings.UpdateOne(ctx, bson.M{"_id": listingID}, bson.M{"$push": bson.M{"reviews": reviewID}})
	if err != nil {
		return fmt.Errorf("listing push review: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ListingStore) pullReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error {
	res, err := s.listings.UpdateOne(ctx, bson.M{"_id": listingID}, bson.M{"$pull": bson.M{"reviews": reviewID}})
	if err != nil {
		return fmt.Errorf("listing pull review: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
