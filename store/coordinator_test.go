package store

import (
	"context"
	"testing"

	"github.com/wanderlust-app/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeListings struct {
	docs map[primitive.ObjectID]*models.Listing
}

func newFakeListings(listings ...*models.Listing) *fakeListings {
	f := &fakeListings{docs: map[primitive.ObjectID]*models.Listing{}}
	for _, l := range listings {
		f.docs[l.ID] = l
	}
	return f
}

func (f *fakeListings) Get(_ context.Context, id primitive.ObjectID) (*models.Listing, error) {
	l, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListings) remove(_ context.Context, id primitive.ObjectID) (*models.Listing, error) {
	l, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(f.docs, id)
	return l, nil
}

func (f *fakeListings) pushReview(_ context.Context, listingID, reviewID primitive.ObjectID) error {
	l, ok := f.docs[listingID]
	if !ok {
		return ErrNotFound
	}
	l.Reviews = append(l.Reviews, reviewID)
	return nil
}

func (f *fakeListings) pullReview(_ context.Context, listingID, reviewID primitive.ObjectID) error {
	l, ok := f.docs[listingID]
	if !ok {
		return ErrNotFound
	}
	out := l.Reviews[:0]
	for _, id := range l.Reviews {
		if id != reviewID {
			out = append(out, id)
		}
	}
	l.Reviews = out
	return nil
}

type fakeReviews struct {
	docs map[primitive.ObjectID]*models.Review
}

func newFakeReviews(reviews ...*models.Review) *fakeReviews {
	f := &fakeReviews{docs: map[primitive.ObjectID]*models.Review{}}
	for _, r := range reviews {
		f.docs[r.ID] = r
	}
	return f
}

func (f *fakeReviews) Get(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	r, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviews) insert(_ context.Context, review *models.Review) error {
	f.docs[review.ID] = review
	return nil
}

func (f *fakeReviews) remove(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.docs[id]; !ok {
		return ErrNotFound
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeReviews) removeMany(_ context.Context, ids []primitive.ObjectID) error {
	for _, id := range ids {
		delete(f.docs, id)
	}
	return nil
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()
	author := primitive.NewObjectID()
	listing := &models.Listing{ID: primitive.NewObjectID(), Owner: primitive.NewObjectID()}

	t.Run("review lands in both stores", func(t *testing.T) {
		listings := newFakeListings(listing)
		reviews := newFakeReviews()
		coord := &Coordinator{listings: listings, reviews: reviews}

		review, err := coord.CreateReview(ctx, listing.ID, author.Hex(), 4, "great stay")
		require.NoError(t, err)
		assert.Equal(t, author, review.Author)
		assert.Equal(t, 4, review.Rating)
		assert.False(t, review.CreatedAt.IsZero())

		stored, err := reviews.Get(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, "great stay", stored.Comment)

		parent, err := listings.Get(ctx, listing.ID)
		require.NoError(t, err)
		assert.Contains(t, parent.Reviews, review.ID)
	})

	t.Run("missing listing", func(t *testing.T) {
		reviews := newFakeReviews()
		coord := &Coordinator{listings: newFakeListings(), reviews: reviews}

		_, err := coord.CreateReview(ctx, primitive.NewObjectID(), author.Hex(), 4, "great stay")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, reviews.docs)
	})

	t.Run("malformed author id", func(t *testing.T) {
		coord := &Coordinator{listings: newFakeListings(listing), reviews: newFakeReviews()}

		_, err := coord.CreateReview(ctx, listing.ID, "not-a-hex-id", 4, "great stay")
		assert.ErrorIs(t, err, ErrInvalidID)
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	author := primitive.NewObjectID()

	setup := func() (*fakeListings, *fakeReviews, *models.Listing, *models.Review) {
		review := &models.Review{ID: primitive.NewObjectID(), Rating: 5, Comment: "lovely", Author: author}
		listing := &models.Listing{
			ID:      primitive.NewObjectID(),
			Owner:   primitive.NewObjectID(),
			Reviews: []primitive.ObjectID{review.ID},
		}
		return newFakeListings(listing), newFakeReviews(review), listing, review
	}

	t.Run("author deletes", func(t *testing.T) {
		listings, reviews, listing, review := setup()
		coord := &Coordinator{listings: listings, reviews: reviews}

		require.NoError(t, coord.DeleteReview(ctx, listing.ID, review.ID, author.Hex()))

		_, err := reviews.Get(ctx, review.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		parent, err := listings.Get(ctx, listing.ID)
		require.NoError(t, err)
		assert.NotContains(t, parent.Reviews, review.ID)
	})

	t.Run("non-author is forbidden and nothing changes", func(t *testing.T) {
		listings, reviews, listing, review := setup()
		coord := &Coordinator{listings: listings, reviews: reviews}

		err := coord.DeleteReview(ctx, listing.ID, review.ID, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = reviews.Get(ctx, review.ID)
		assert.NoError(t, err)

		parent, err := listings.Get(ctx, listing.ID)
		require.NoError(t, err)
		assert.Contains(t, parent.Reviews, review.ID)
	})

	t.Run("missing review", func(t *testing.T) {
		listings, reviews, listing, _ := setup()
		coord := &Coordinator{listings: listings, reviews: reviews}

		err := coord.DeleteReview(ctx, listing.ID, primitive.NewObjectID(), author.Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeleteListing(t *testing.T) {
	ctx := context.Background()
	owner := primitive.NewObjectID()

	setup := func(n int) (*fakeListings, *fakeReviews, *models.Listing) {
		listing := &models.Listing{ID: primitive.NewObjectID(), Owner: owner}
		reviews := newFakeReviews()
		for i := 0; i < n; i++ {
			review := &models.Review{ID: primitive.NewObjectID(), Rating: 5, Author: primitive.NewObjectID()}
			reviews.docs[review.ID] = review
			listing.Reviews = append(listing.Reviews, review.ID)
		}
		return newFakeListings(listing), reviews, listing
	}

	t.Run("cascade removes every referenced review", func(t *testing.T) {
		listings, reviews, listing := setup(3)
		coord := &Coordinator{listings: listings, reviews: reviews}

		require.NoError(t, coord.DeleteListing(ctx, listing.ID, owner.Hex()))

		_, err := listings.Get(ctx, listing.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Empty(t, reviews.docs)
	})

	t.Run("listing without reviews deletes cleanly", func(t *testing.T) {
		listings, _, listing := setup(0)
		coord := &Coordinator{listings: listings, reviews: newFakeReviews()}

		require.NoError(t, coord.DeleteListing(ctx, listing.ID, owner.Hex()))
	})

	t.Run("non-owner is forbidden and nothing is deleted", func(t *testing.T) {
		listings, reviews, listing := setup(2)
		coord := &Coordinator{listings: listings, reviews: reviews}

		err := coord.DeleteListing(ctx, listing.ID, primitive.NewObjectID().Hex())
		assert.ErrorIs(t, err, ErrForbidden)

		_, err = listings.Get(ctx, listing.ID)
		assert.NoError(t, err)
		assert.Len(t, reviews.docs, 2)
	})

	t.Run("missing listing", func(t *testing.T) {
		coord := &Coordinator{listings: newFakeListings(), reviews: newFakeReviews()}

		err := coord.DeleteListing(ctx, primitive.NewObjectID(), owner.Hex())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
