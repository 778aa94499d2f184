package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/wanderlust-app/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ReviewStore owns the reviews collection. Writes are unexported because
// every review mutation also touches its parent listing's review set, and
// that pairing belongs to the Coordinator.
type ReviewStore struct {
	reviews *mongo.Collection
}

func NewReviewStore(db *mongo.Database) *ReviewStore {
	return &ReviewStore{reviews: db.Collection("reviews")}
}

func (s *ReviewStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := s.reviews.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("review get: %w", err)
	}
	return &review, nil
}

func (s *ReviewStore) insert(ctx context.Context, review *models.Review) error {
	if _, err := s.reviews.InsertOne(ctx, review); err != nil {
		return fmt.Errorf("review insert: %w", err)
	}
	return nil
}

func (s *ReviewStore) remove(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.reviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("review delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ReviewStore) removeMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.reviews.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("review cascade delete: %w", err)
	}
	return nil
}
