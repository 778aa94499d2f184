package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a rating+comment attached to exactly one listing. The parent
// listing holds the reference; the review document itself only records
// its author.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
