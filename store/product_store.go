package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mystore/models"
)

type mongoProductStore struct {
	collection *mongo.Collection
}

// NewProductStore returns a ProductStore backed by the "products" collection.
func NewProductStore(db *mongo.Database) ProductStore {
	return &mongoProductStore{collection: db.Collection("products")}
}

func (s *mongoProductStore) Insert(ctx context.Context, product *models.Product) error {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	product.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *mongoProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (s *mongoProductStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := s.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

func (s *mongoProductStore) Find(ctx context.Context, filter ProductFilter, page FindPage) ([]models.Product, int64, error) {
	query := filter.toQuery()

	total, err := s.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	direction := 1
	if page.SortDesc {
		direction = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: page.SortBy, Value: direction}}).
		SetSkip(page.Skip).
		SetLimit(page.Limit)

	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to read products: %w", err)
	}
	return products, total, nil
}

func (s *mongoProductStore) Suggest(ctx context.Context, query string, limit int64) ([]models.Product, error) {
	pattern := containsPattern(query)
	filter := bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"category": pattern},
	}}

	opts := options.Find().
		SetLimit(limit).
		SetProjection(bson.M{"title": 1, "category": 1})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find suggestions: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to read suggestions: %w", err)
	}
	return products, nil
}

func (s *mongoProductStore) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Product, error) {
	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

func (s *mongoProductStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	return &product, nil
}

func (f ProductFilter) toQuery() bson.M {
	query := bson.M{}

	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		query["price"] = price
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if f.IsFeatured != nil {
		query["isFeatured"] = *f.IsFeatured
	}
	if f.InStock != nil {
		if *f.InStock {
			query["stock"] = bson.M{"$gt": 0}
		} else {
			query["stock"] = bson.M{"$lte": 0}
		}
	}
	if f.CreatedBy != nil {
		query["createdBy"] = *f.CreatedBy
	}
	return query
}

// containsPattern builds a case-insensitive substring match. The input is
// quoted so user-supplied text cannot smuggle regex metacharacters.
func containsPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
