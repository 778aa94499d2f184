package store

import (
	"context"
	"fmt"
	"time"

	"github.com/wanderlust-app/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listingHandle is the slice of ListingStore the Coordinator needs.
type listingHandle interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	remove(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	pushReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error
	pullReview(ctx context.Context, listingID, reviewID primitive.ObjectID) error
}

// reviewHandle is the slice of ReviewStore the Coordinator needs.
type reviewHandle interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	insert(ctx context.Context, review *models.Review) error
	remove(ctx context.Context, id primitive.ObjectID) error
	removeMany(ctx context.Context, ids []primitive.ObjectID) error
}

// Coordinator mediates every write that crosses the listing/review
// boundary: review creation, review deletion and listing deletion with
// its review cascade. Listing deletion is only reachable through here,
// so the cascade cannot be skipped by a direct store call.
type Coordinator struct {
	listings listingHandle
	reviews  reviewHandle
}

func NewCoordinator(listings *ListingStore, reviews *ReviewStore) *Coordinator {
	return &Coordinator{listings: listings, reviews: reviews}
}

// CreateReview validates that the listing exists, persists the review for
// authorID and appends its reference to the listing's review set.
func (c *Coordinator) CreateReview(ctx context.Context, listingID primitive.ObjectID, authorID string, rating int, comment string) (*models.Review, error) {
	author, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, fmt.Errorf("%w: author %q", ErrInvalidID, authorID)
	}

	if _, err := c.listings.Get(ctx, listingID); err != nil {
		return nil, err
	}

	review := &models.Review{
		ID:        primitive.NewObjectID(),
		Rating:    rating,
		Comment:   comment,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}

	if err := c.reviews.insert(ctx, review); err != nil {
		return nil, err
	}
	if err := c.listings.pushReview(ctx, listingID, review.ID); err != nil {
		return nil, err
	}
	return review, nil
}

// DeleteReview removes a review from the store and from its parent
// listing's review set. Only the review's author may delete it.
func (c *Coordinator) DeleteReview(ctx context.Context, listingID, reviewID primitive.ObjectID, requesterID string) error {
	review, err := c.reviews.Get(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := RequireReviewAuthor(review, requesterID); err != nil {
		return err
	}

	// Pull the reference first: observers must never see a listing
	// pointing at a review that no longer resolves.
	if err := c.listings.pullReview(ctx, listingID, reviewID); err != nil {
		return err
	}
	return c.reviews.remove(ctx, reviewID)
}

// DeleteListing removes a listing and cascades over its reviews. Only the
// owner may delete. The cascade is a two-step operation without a
// multi-document transaction; a crash between the steps can leave
// orphaned review documents behind.
func (c *Coordinator) DeleteListing(ctx context.Context, id primitive.ObjectID, requesterID string) error {
	listing, err := c.listings.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := RequireOwner(listing, requesterID); err != nil {
		return err
	}

	deleted, err := c.listings.remove(ctx, id)
	if err != nil {
		return err
	}
	return c.reviews.removeMany(ctx, deleted.Reviews)
}
