package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"mystore/models"
)

type mongoCartStore struct {
	collection *mongo.Collection
}

// NewCartStore returns a CartStore backed by the "carts" collection.
func NewCartStore(db *mongo.Database) CartStore {
	return &mongoCartStore{collection: db.Collection("carts")}
}

func (s *mongoCartStore) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.collection.FindOne(ctx, bson.M{"user": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return &cart, nil
}

func (s *mongoCartStore) Insert(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	cart.CreatedAt = now
	cart.UpdatedAt = now
	cart.RecalcTotals()

	result, err := s.collection.InsertOne(ctx, cart)
	if err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	cart.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// Save persists the cart's items and recomputed totals. Totals are always
// recalculated here so a stale in-memory value never reaches the database.
func (s *mongoCartStore) Save(ctx context.Context, cart *models.Cart) error {
	cart.RecalcTotals()
	cart.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"items":      cart.Items,
		"totalItems": cart.TotalItems,
		"totalPrice": cart.TotalPrice,
		"updatedAt":  cart.UpdatedAt,
	}}

	_, err := s.collection.UpdateOne(ctx, bson.M{"_id": cart.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}
