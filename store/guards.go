package store

import "github.com/wanderlust-app/backend/models"

// RequireOwner fails with ErrForbidden unless requesterID is the hex id of
// the listing's owner. A nil listing or blank requester is denied rather
// than treated as an internal fault.
func RequireOwner(listing *models.Listing, requesterID string) error {
	if listing == nil || requesterID == "" || listing.Owner.IsZero() {
		return ErrForbidden
	}
	if listing.Owner.Hex() != requesterID {
		return ErrForbidden
	}
	return nil
}

// RequireReviewAuthor is the same check for reviews.
func RequireReviewAuthor(review *models.Review, requesterID string) error {
	if review == nil || requesterID == "" || review.Author.IsZero() {
		return ErrForbidden
	}
	if review.Author.Hex() != requesterID {
		return ErrForbidden
	}
	return nil
}
