package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mystore/middleware"
	"mystore/services"
	"mystore/utils"
)

const (
	maxFormMemory = 10 << 20 // multipart parse buffer
	maxImageSize  = 5 << 20  // per-file cap, matching the upload collaborator
)

// ProductController handles product-related requests
type ProductController struct {
	Catalog *services.CatalogService
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{Catalog: catalog}
}

// GetAllProducts retrieves a filtered, sorted, paginated product listing
func (pc *ProductController) GetAllProducts(w http.ResponseWriter, r *http.Request) {
	query := parseProductQuery(r)
	query.Category = r.URL.Query().Get("category")
	query.Search = r.URL.Query().Get("search")
	query.MinPrice = queryFloat(r, "minPrice")
	query.MaxPrice = queryFloat(r, "maxPrice")
	query.IsFeatured = queryBool(r, "isFeatured")
	query.InStock = queryBool(r, "inStock")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	listing, err := pc.Catalog.List(ctx, query)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch products")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Products fetched successfully",
		"data": map[string]interface{}{
			"products":   listing.Products,
			"pagination": listing.Pagination,
			"filters":    listing.Filters,
		},
	})
}

// GetFeaturedProducts retrieves in-stock featured products, newest first
func (pc *ProductController) GetFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	products, err := pc.Catalog.Featured(ctx, limit)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch featured products")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Featured products fetched successfully",
		"data":    map[string]interface{}{"products": products},
	})
}

// GetProductSuggestions returns search-box completions for a query
func (pc *ProductController) GetProductSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	suggestions, err := pc.Catalog.Suggestions(ctx, r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, err, "Failed to fetch search suggestions")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Search suggestions fetched successfully",
		"data":    suggestions,
	})
}

// GetUserProducts retrieves the authenticated user's products
func (pc *ProductController) GetUserProducts(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	listing, err := pc.Catalog.ListByUser(ctx, userID, parseProductQuery(r))
	if err != nil {
		respondServiceError(w, err, "Failed to fetch user's products")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User's products fetched successfully",
		"data": map[string]interface{}{
			"products":   listing.Products,
			"pagination": listing.Pagination,
		},
	})
}

// GetProductByID retrieves a single product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := pc.Catalog.GetByID(ctx, id)
	if err != nil {
		respondServiceError(w, err, "Failed to fetch product")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product fetched successfully",
		"product": product,
	})
}

// CreateProduct handles adding a new product with uploaded images
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	files, cleanup, err := collectImageFiles(w, r)
	if err != nil {
		return
	}
	defer cleanup()

	input := services.ProductInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Price:       r.FormValue("price"),
		Stock:       r.FormValue("stock"),
		IsFeatured:  formBool(r, "isFeatured"),
		IsActive:    formBool(r, "isActive"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	product, err := pc.Catalog.Create(ctx, userID, input, files)
	if err != nil {
		respondServiceError(w, err, "Failed to create product")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct merges the supplied fields into an existing product
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	files, cleanup, err := collectImageFiles(w, r)
	if err != nil {
		return
	}
	defer cleanup()

	var input services.UpdateProductInput
	input.Title = formString(r, "title")
	input.Description = formString(r, "description")
	input.Category = formString(r, "category")
	input.IsFeatured = formBool(r, "isFeatured")
	input.IsActive = formBool(r, "isActive")

	if raw := formString(r, "price"); raw != nil {
		price, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Price must be a number")
			return
		}
		input.Price = &price
	}
	if raw := formString(r, "stock"); raw != nil {
		stock, err := strconv.Atoi(strings.TrimSpace(*raw))
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "Stock must be a number")
			return
		}
		input.Stock = &stock
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	product, err := pc.Catalog.Update(ctx, id, input, files)
	if err != nil {
		respondServiceError(w, err, "Failed to update product")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct removes a product and returns the removed record
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	product, err := pc.Catalog.Delete(ctx, id)
	if err != nil {
		respondServiceError(w, err, "Failed to delete product")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Product deleted successfully",
		"product": product,
	})
}

// callerID extracts the authenticated user's id from the request context.
func callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "Could not parse user from context")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, "Invalid user ID in token")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// collectImageFiles parses the multipart form and opens the "images" files.
// Non-image uploads are skipped silently; oversized files are rejected. The
// returned cleanup closes every opened file and must always be called.
func collectImageFiles(w http.ResponseWriter, r *http.Request) ([]services.ImageFile, func(), error) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid form data")
		return nil, noop, err
	}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}

	var files []services.ImageFile
	var closers []func() error
	cleanup := func() {
		for _, close := range closers {
			close()
		}
	}

	for _, header := range r.MultipartForm.File["images"] {
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			continue
		}
		if header.Size > maxImageSize {
			cleanup()
			utils.RespondError(w, http.StatusBadRequest, "Image files cannot exceed 5MB")
			return nil, noop, errTooLarge
		}
		file, err := header.Open()
		if err != nil {
			cleanup()
			utils.RespondInternal(w, "Failed to read uploaded file", err)
			return nil, noop, err
		}
		closers = append(closers, file.Close)
		files = append(files, services.ImageFile{Reader: file, Filename: header.Filename})
	}
	return files, cleanup, nil
}

// parseProductQuery reads the shared pagination and sorting parameters.
func parseProductQuery(r *http.Request) services.ProductQuery {
	q := services.ProductQuery{
		Page:      1,
		Limit:     10,
		SortBy:    r.URL.Query().Get("sortBy"),
		SortOrder: r.URL.Query().Get("sortOrder"),
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		q.Limit = v
	}
	return q
}

func queryFloat(r *http.Request, key string) *float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryBool(r *http.Request, key string) *bool {
	if !r.URL.Query().Has(key) {
		return nil
	}
	v := r.URL.Query().Get(key) == "true"
	return &v
}

func formBool(r *http.Request, key string) *bool {
	raw := formString(r, key)
	if raw == nil {
		return nil
	}
	v := *raw == "true"
	return &v
}

// formString distinguishes an absent form field from an empty one.
func formString(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
