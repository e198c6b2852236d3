package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mystore/services"
	"mystore/utils"
)

// CartController handles cart-related requests
type CartController struct {
	Cart *services.CartService
}

// NewCartController creates a new CartController
func NewCartController(cart *services.CartService) *CartController {
	return &CartController{Cart: cart}
}

// GetCart retrieves the user's cart, creating an empty one on first access
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Cart.Get(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch cart")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cart":    cart,
	})
}

// GetCartCount returns the cart's total item count
func (cc *CartController) GetCartCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := cc.Cart.Count(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch cart count")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   count,
	})
}

// AddToCart adds a product to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var input struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.ProductID == "" {
		utils.RespondError(w, http.StatusBadRequest, "Product ID is required")
		return
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Cart.Add(ctx, userID, productID, quantity)
	if err != nil {
		respondServiceError(w, err, "Failed to add item to cart")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Item added to cart",
		"cart":    cart,
	})
}

// UpdateCartItem sets the quantity of a cart line
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var input struct {
		ProductID string `json:"productId"`
		Quantity  *int   `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.ProductID == "" || input.Quantity == nil {
		utils.RespondError(w, http.StatusBadRequest, "Product ID and quantity are required")
		return
	}
	productID, err := primitive.ObjectIDFromHex(input.ProductID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Cart.UpdateQuantity(ctx, userID, productID, *input.Quantity)
	if err != nil {
		respondServiceError(w, err, "Failed to update cart")
		return
	}

	message := "Cart updated"
	if *input.Quantity == 0 {
		message = "Item removed from cart"
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": message,
		"cart":    cart,
	})
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	productID, err := primitive.ObjectIDFromHex(mux.Vars(r)["productId"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Cart.Remove(ctx, userID, productID)
	if err != nil {
		respondServiceError(w, err, "Failed to remove item from cart")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Item removed from cart",
		"cart":    cart,
	})
}

// ClearCart empties the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cart, err := cc.Cart.Clear(ctx, userID)
	if err != nil {
		respondServiceError(w, err, "Failed to clear cart")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Cart cleared",
		"cart":    cart,
	})
}
