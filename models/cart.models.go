package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a single cart line: a product reference, the quantity, and the
// unit price snapshotted when the item was added.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Cart represents a user's shopping cart. There is at most one cart per user.
// totalItems and totalPrice are always recomputed from the items before the
// cart is persisted; they are never trusted independently.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     primitive.ObjectID `bson:"user" json:"user"`
	Items      []CartItem         `bson:"items" json:"items"`
	TotalItems int                `bson:"totalItems" json:"totalItems"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewCart returns an empty cart for the given user.
func NewCart(userID primitive.ObjectID) *Cart {
	return &Cart{
		UserID: userID,
		Items:  []CartItem{},
	}
}

// RecalcTotals recomputes totalItems and totalPrice from the items.
func (c *Cart) RecalcTotals() {
	totalItems := 0
	totalPrice := 0.0
	for _, item := range c.Items {
		totalItems += item.Quantity
		totalPrice += item.Price * float64(item.Quantity)
	}
	c.TotalItems = totalItems
	c.TotalPrice = totalPrice
}

// AddItem merges quantity into an existing line for the product, or appends a
// new line with the given unit price snapshot.
func (c *Cart) AddItem(productID primitive.ObjectID, quantity int, price float64) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.RecalcTotals()
			return
		}
	}
	c.Items = append(c.Items, CartItem{ProductID: productID, Quantity: quantity, Price: price})
	c.RecalcTotals()
}

// UpdateQuantity sets the quantity of the line for productID. A quantity of
// zero or less removes the line. A missing line is left untouched.
func (c *Cart) UpdateQuantity(productID primitive.ObjectID, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if quantity <= 0 {
				c.RemoveItem(productID)
				return
			}
			c.Items[i].Quantity = quantity
			c.RecalcTotals()
			return
		}
	}
}

// RemoveItem drops the line for productID. Removing an absent item is a no-op.
func (c *Cart) RemoveItem(productID primitive.ObjectID) {
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
	c.RecalcTotals()
}

// Clear empties the cart. The cart row itself survives.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.RecalcTotals()
}

// PopulatedCartItem is a cart line with the referenced product embedded for
// display. Product is nil when the catalog no longer has the product.
type PopulatedCartItem struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
	Price    float64  `json:"price"`
}

// PopulatedCart is the API view of a cart with product details resolved.
type PopulatedCart struct {
	ID         primitive.ObjectID  `json:"id,omitempty"`
	UserID     primitive.ObjectID  `json:"user"`
	Items      []PopulatedCartItem `json:"items"`
	TotalItems int                 `json:"totalItems"`
	TotalPrice float64             `json:"totalPrice"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// Populate resolves the cart's line items against the given products.
func (c *Cart) Populate(products map[primitive.ObjectID]*Product) *PopulatedCart {
	populated := &PopulatedCart{
		ID:         c.ID,
		UserID:     c.UserID,
		Items:      make([]PopulatedCartItem, 0, len(c.Items)),
		TotalItems: c.TotalItems,
		TotalPrice: c.TotalPrice,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	for _, item := range c.Items {
		populated.Items = append(populated.Items, PopulatedCartItem{
			Product:  products[item.ProductID],
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return populated
}
