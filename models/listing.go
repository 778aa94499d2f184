package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is the stored descriptor of a listing photo.
type Image struct {
	URL      string `bson:"url" json:"url"`
	Filename string `bson:"filename" json:"filename"`
}

// DefaultImage is substituted whenever a listing is persisted without a usable image.
var DefaultImage = Image{
	URL:      "https://images.unsplash.com/photo-1507089947368-19c1da9775ae?auto=format&fit=crop&w=800&q=80",
	Filename: "default",
}

// Categories is the closed set of listing categories.
var Categories = []string{
	"mountains",
	"arctic",
	"farmhouse",
	"camping",
	"amazingpools",
	"castle",
	"iconiccities",
	"rooms",
	"trending",
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Geometry is a GeoJSON point. Coordinates are ordered [longitude, latitude].
type Geometry struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

type Listing struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title       string               `bson:"title" json:"title"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Image       Image                `bson:"image" json:"image"`
	Price       float64              `bson:"price" json:"price"`
	Location    string               `bson:"location" json:"location"`
	Country     string               `bson:"country" json:"country"`
	Category    string               `bson:"category" json:"category"`
	Geometry    *Geometry            `bson:"geometry,omitempty" json:"geometry,omitempty"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	Reviews     []primitive.ObjectID `bson:"reviews" json:"reviews"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeImage returns the image that should actually be stored for a
// listing. A nil descriptor or one with a blank URL falls back to
// DefaultImage, so a listing at rest never has an empty image.
func NormalizeImage(img *Image) Image {
	if img == nil || strings.TrimSpace(img.URL) == "" {
		return DefaultImage
	}
	out := *img
	if strings.TrimSpace(out.Filename) == "" {
		out.Filename = "default"
	}
	return out
}

// UserSummary is the slice of a user document exposed when a listing or
// review is returned with its owner/author expanded.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Username string             `bson:"username" json:"username"`
}

// ReviewDetail is a review with its author expanded.
type ReviewDetail struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	Author    UserSummary        `bson:"author" json:"author"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ListingDetail is the show-page shape: the listing plus its owner and
// reviews (each with author) expanded.
type ListingDetail struct {
	Listing Listing        `json:"listing"`
	Owner   UserSummary    `json:"owner"`
	Reviews []ReviewDetail `json:"reviews"`
}
