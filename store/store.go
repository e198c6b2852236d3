package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mystore/models"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = errors.New("document not found")

// ProductFilter narrows a catalog listing. Zero values mean "no constraint";
// pointer fields distinguish "unset" from an explicit false/zero.
type ProductFilter struct {
	Category   string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	IsFeatured *bool
	InStock    *bool
	CreatedBy  *primitive.ObjectID
}

// FindPage controls sorting and pagination of a catalog listing.
type FindPage struct {
	SortBy   string
	SortDesc bool
	Skip     int64
	Limit    int64
}

// ProductStore persists catalog products.
type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Find(ctx context.Context, filter ProductFilter, page FindPage) ([]models.Product, int64, error)
	Suggest(ctx context.Context, query string, limit int64) ([]models.Product, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// CartStore persists one cart per user.
type CartStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Insert(ctx context.Context, cart *models.Cart) error
	Save(ctx context.Context, cart *models.Cart) error
}

// UserStore persists accounts.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
