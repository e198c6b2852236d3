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

type mongoUserStore struct {
	collection *mongo.Collection
}

// NewUserStore returns a UserStore backed by the "users" collection.
func NewUserStore(db *mongo.Database) UserStore {
	return &mongoUserStore{collection: db.Collection("users")}
}

func (s *mongoUserStore) Insert(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *mongoUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	return count > 0, nil
}
