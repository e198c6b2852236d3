package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mystore/models"
)

func TestGetCart_RequiresAuth(t *testing.T) {
	router := newTestRouter(&stubProductStore{}, &stubCartStore{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddToCart_HappyPath(t *testing.T) {
	ps := seedProducts(1)
	product := ps.products[0]
	router := newTestRouter(ps, &stubCartStore{})

	payload := `{"productId":"` + product.ID.Hex() + `","quantity":2}`
	req := httptest.NewRequest("POST", "/api/cart/add", strings.NewReader(payload))
	authHeader(t, req, primitive.NewObjectID())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Cart    struct {
			Items []struct {
				Product  *models.Product `json:"product"`
				Quantity int             `json:"quantity"`
				Price    float64         `json:"price"`
			} `json:"items"`
			TotalItems int     `json:"totalItems"`
			TotalPrice float64 `json:"totalPrice"`
		} `json:"cart"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Item added to cart", body.Message)
	require.Len(t, body.Cart.Items, 1)
	require.NotNil(t, body.Cart.Items[0].Product)
	assert.Equal(t, product.ID, body.Cart.Items[0].Product.ID)
	assert.Equal(t, 2, body.Cart.TotalItems)
	assert.InDelta(t, 20.0, body.Cart.TotalPrice, 0.0001)
}

func TestAddToCart_MissingProductID(t *testing.T) {
	router := newTestRouter(&stubProductStore{}, &stubCartStore{})

	req := httptest.NewRequest("POST", "/api/cart/add", strings.NewReader(`{"quantity":1}`))
	authHeader(t, req, primitive.NewObjectID())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Product ID is required", body["message"])
}

func TestAddToCart_InsufficientStock(t *testing.T) {
	ps := seedProducts(1)
	ps.products[0].Stock = 3
	router := newTestRouter(ps, &stubCartStore{})

	payload := `{"productId":"` + ps.products[0].ID.Hex() + `","quantity":4}`
	req := httptest.NewRequest("POST", "/api/cart/add", strings.NewReader(payload))
	authHeader(t, req, primitive.NewObjectID())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Only 3 items available in stock", body["message"])
}

func TestUpdateCartItem_NoCart(t *testing.T) {
	ps := seedProducts(1)
	router := newTestRouter(ps, &stubCartStore{})

	payload := `{"productId":"` + ps.products[0].ID.Hex() + `","quantity":1}`
	req := httptest.NewRequest("PUT", "/api/cart/update", strings.NewReader(payload))
	authHeader(t, req, primitive.NewObjectID())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Cart not found", body["message"])
}

func TestClearCart_CountStaysReachable(t *testing.T) {
	ps := seedProducts(1)
	cs := &stubCartStore{}
	router := newTestRouter(ps, cs)
	userID := primitive.NewObjectID()

	payload := `{"productId":"` + ps.products[0].ID.Hex() + `","quantity":2}`
	addReq := httptest.NewRequest("POST", "/api/cart/add", strings.NewReader(payload))
	authHeader(t, addReq, userID)
	router.ServeHTTP(httptest.NewRecorder(), addReq)
	require.NotNil(t, cs.cart)

	clearReq := httptest.NewRequest("DELETE", "/api/cart/clear", nil)
	authHeader(t, clearReq, userID)
	clearRec := httptest.NewRecorder()
	router.ServeHTTP(clearRec, clearReq)
	require.Equal(t, http.StatusOK, clearRec.Code)
	require.NotNil(t, cs.cart) // the row survives clearing

	countReq := httptest.NewRequest("GET", "/api/cart/count", nil)
	authHeader(t, countReq, userID)
	countRec := httptest.NewRecorder()
	router.ServeHTTP(countRec, countReq)
	require.Equal(t, http.StatusOK, countRec.Code)

	var body struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(countRec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 0, body.Count)
}
