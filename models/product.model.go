package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories is the fixed set of valid product categories. Stored lowercase.
var Categories = []string{
	"electronics",
	"clothing",
	"books",
	"home",
	"sports",
	"accessories",
}

// IsValidCategory reports whether c is one of the allowed categories.
func IsValidCategory(c string) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 2000
	DefaultImageAlt      = "Product image"
)

// ProductImage is a single catalog image with its alt text.
type ProductImage struct {
	URL string `bson:"url" json:"url"`
	Alt string `bson:"alt" json:"alt"`
}

// Review is an embedded product review. There is no public write path for
// reviews yet; the ratings fields are still derived from them on save.
type Review struct {
	User      primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	Rating    float64            `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Product represents a catalog product
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Stock       int                `bson:"stock" json:"stock"`
	Images      []ProductImage     `bson:"images" json:"images"`
	IsFeatured  bool               `bson:"isFeatured" json:"isFeatured"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedBy   primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	Ratings     float64            `bson:"ratings" json:"ratings"`
	NumReviews  int                `bson:"numReviews" json:"numReviews"`
	Reviews     []Review           `bson:"reviews,omitempty" json:"reviews,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecalcRatings recomputes the derived ratings average and review count from
// the embedded reviews. The average is rounded to one decimal place.
func (p *Product) RecalcRatings() {
	if len(p.Reviews) == 0 {
		p.Ratings = 0
		p.NumReviews = 0
		return
	}
	sum := 0.0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Ratings = math.Round(sum/float64(len(p.Reviews))*10) / 10
	p.NumReviews = len(p.Reviews)
}
