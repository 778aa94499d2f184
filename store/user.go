package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wanderlust-app/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserStore struct {
	users *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{users: db.Collection("users")}
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user find: %w", err)
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user find: %w", err)
	}
	return &user, nil
}

func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now().UTC()
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}
