package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mystore/models"
	"mystore/store"
)

// CartService orchestrates stock verification against the catalog and
// mutation of the per-user cart. Each mutation is a read-modify-write; the
// store's per-document semantics are the only concurrency control, so two
// simultaneous writes to the same cart race with last-write-wins.
type CartService struct {
	carts    store.CartStore
	products store.ProductStore
}

// NewCartService creates a new CartService
func NewCartService(carts store.CartStore, products store.ProductStore) *CartService {
	return &CartService{carts: carts, products: products}
}

// Get returns the caller's cart, creating an empty one on first access.
func (s *CartService) Get(ctx context.Context, userID primitive.ObjectID) (*models.PopulatedCart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		cart = models.NewCart(userID)
		if err := s.carts.Insert(ctx, cart); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// Add puts quantity units of a product into the cart, snapshotting the
// current catalog price. Adding a product already in the cart increments the
// existing line; the stock check covers only the requested increment, not
// the combined line quantity.
func (s *CartService) Add(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.PopulatedCart, error) {
	if quantity < 1 {
		return nil, &ValidationError{Message: "Quantity must be at least 1"}
	}

	product, err := s.products.FindByID(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, validationf("Only %d items available in stock", product.Stock)
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		cart = models.NewCart(userID)
		cart.AddItem(productID, quantity, product.Price)
		if err := s.carts.Insert(ctx, cart); err != nil {
			return nil, err
		}
		return s.populate(ctx, cart)
	}
	if err != nil {
		return nil, err
	}

	cart.AddItem(productID, quantity, product.Price)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// UpdateQuantity sets a line's quantity, re-checking stock for positive
// targets. A quantity of zero removes the line instead of persisting it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.PopulatedCart, error) {
	if quantity < 0 {
		return nil, &ValidationError{Message: "Quantity cannot be negative"}
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	if quantity > 0 {
		product, err := s.products.FindByID(ctx, productID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, err
		}
		if product.Stock < quantity {
			return nil, validationf("Only %d items available in stock", product.Stock)
		}
	}

	cart.UpdateQuantity(productID, quantity)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// Remove deletes the line for productID. Removing an absent item is not an
// error.
func (s *CartService) Remove(ctx context.Context, userID, productID primitive.ObjectID) (*models.PopulatedCart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	cart.RemoveItem(productID)
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// Clear empties the cart's items. The cart row itself survives.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.PopulatedCart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	cart.Clear()
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// Count returns the cart's total item count, or zero when no cart exists.
func (s *CartService) Count(ctx context.Context, userID primitive.ObjectID) (int, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return cart.TotalItems, nil
}

// populate resolves the cart's product references for display. A product
// that has since left the catalog resolves to null; the line is kept.
func (s *CartService) populate(ctx context.Context, cart *models.Cart) (*models.PopulatedCart, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return cart.Populate(byID), nil
}
