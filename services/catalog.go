package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mystore/models"
	"mystore/store"
	"mystore/utils"
)

const (
	defaultPageSize  = 10
	maxPageSize      = 50
	defaultSortField = "createdAt"
	featuredLimit    = 6
	suggestionProbe  = 10
)

var sortFields = map[string]bool{
	"title":     true,
	"price":     true,
	"createdAt": true,
	"ratings":   true,
	"stock":     true,
}

// ImageFile is an uploaded image pending delegation to the asset service.
type ImageFile struct {
	Reader   io.Reader
	Filename string
}

// ProductInput carries the raw create-form fields. Numeric fields arrive as
// strings from the multipart form and are coerced here.
type ProductInput struct {
	Title       string
	Description string
	Category    string
	Price       string
	Stock       string
	IsFeatured  *bool
	IsActive    *bool
}

// UpdateProductInput carries a partial update; nil fields are left untouched.
type UpdateProductInput struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Stock       *int
	IsFeatured  *bool
	IsActive    *bool
}

// ProductQuery is a listing request before normalization.
type ProductQuery struct {
	Page       int
	Limit      int
	Category   string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	IsFeatured *bool
	InStock    *bool
	SortBy     string
	SortOrder  string
}

// Pagination is the listing page metadata.
type Pagination struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalProducts int64 `json:"totalProducts"`
	PageSize      int   `json:"pageSize"`
	HasNextPage   bool  `json:"hasNextPage"`
	HasPrevPage   bool  `json:"hasPrevPage"`
	NextPage      *int  `json:"nextPage"`
	PrevPage      *int  `json:"prevPage"`
}

// PriceRange echoes the effective price filter.
type PriceRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// ListingFilters echoes the effective filters of a listing response.
type ListingFilters struct {
	Category   *string    `json:"category"`
	PriceRange PriceRange `json:"priceRange"`
	Search     *string    `json:"search"`
	IsFeatured *bool      `json:"isFeatured"`
	InStock    *bool      `json:"inStock"`
	SortBy     string     `json:"sortBy"`
	SortOrder  string     `json:"sortOrder"`
}

// ProductListing is one page of catalog results.
type ProductListing struct {
	Products   []models.Product
	Pagination Pagination
	Filters    ListingFilters
}

// Suggestions holds search-box completions.
type Suggestions struct {
	Titles     []string `json:"titles"`
	Categories []string `json:"categories"`
}

// CatalogService orchestrates product validation, image upload delegation,
// and catalog store operations.
type CatalogService struct {
	products store.ProductStore
	uploader utils.AssetUploader
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(products store.ProductStore, uploader utils.AssetUploader) *CatalogService {
	return &CatalogService{products: products, uploader: uploader}
}

// Create validates the form input, uploads any image files, and persists a
// new product owned by createdBy. Every missing or invalid field is reported
// in a single validation error, not just the first.
func (s *CatalogService) Create(ctx context.Context, createdBy primitive.ObjectID, in ProductInput, files []ImageFile) (*models.Product, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := strings.ToLower(strings.TrimSpace(in.Category))
	price, priceOK := parseNumber(in.Price)
	stock, stockOK := parseNumber(in.Stock)

	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if category == "" {
		missing = append(missing, "category")
	}
	if !priceOK {
		missing = append(missing, "price")
	}
	if !stockOK {
		missing = append(missing, "stock")
	}
	if len(missing) > 0 {
		return nil, validationf("Missing required fields: %s", strings.Join(missing, ", "))
	}

	var invalid []string
	if len(title) > models.MaxTitleLength {
		invalid = append(invalid, fmt.Sprintf("Product name cannot exceed %d characters", models.MaxTitleLength))
	}
	if len(description) > models.MaxDescriptionLength {
		invalid = append(invalid, fmt.Sprintf("Description cannot exceed %d characters", models.MaxDescriptionLength))
	}
	if !models.IsValidCategory(category) {
		invalid = append(invalid, fmt.Sprintf("%s is not a valid category", category))
	}
	if price < 0 {
		invalid = append(invalid, "Price cannot be negative")
	}
	if stock < 0 {
		invalid = append(invalid, "Stock cannot be negative")
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Message: strings.Join(invalid, "; ")}
	}

	images, err := s.uploadImages(ctx, files)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Title:       title,
		Description: description,
		Price:       price,
		Category:    category,
		Stock:       int(stock),
		Images:      images,
		IsFeatured:  in.IsFeatured != nil && *in.IsFeatured,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CreatedBy:   createdBy,
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// List returns one page of products with pagination metadata and an echo of
// the effective filters.
func (s *CatalogService) List(ctx context.Context, q ProductQuery) (*ProductListing, error) {
	filter := store.ProductFilter{
		Category:   strings.ToLower(q.Category),
		MinPrice:   q.MinPrice,
		MaxPrice:   q.MaxPrice,
		Search:     q.Search,
		IsFeatured: q.IsFeatured,
		InStock:    q.InStock,
	}
	return s.list(ctx, filter, q)
}

// ListByUser is List restricted to products created by userID.
func (s *CatalogService) ListByUser(ctx context.Context, userID primitive.ObjectID, q ProductQuery) (*ProductListing, error) {
	return s.list(ctx, store.ProductFilter{CreatedBy: &userID}, q)
}

func (s *CatalogService) list(ctx context.Context, filter store.ProductFilter, q ProductQuery) (*ProductListing, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.Limit
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	echoSortBy := q.SortBy
	if echoSortBy == "" {
		echoSortBy = defaultSortField
	}
	echoSortOrder := q.SortOrder
	if echoSortOrder == "" {
		echoSortOrder = "desc"
	}
	// Unrecognized sort fields fall back to createdAt descending.
	sortBy := echoSortBy
	sortDesc := echoSortOrder == "desc"
	if !sortFields[sortBy] {
		sortBy = defaultSortField
		sortDesc = true
	}

	findPage := store.FindPage{
		SortBy:   sortBy,
		SortDesc: sortDesc,
		Skip:     int64(page-1) * int64(pageSize),
		Limit:    int64(pageSize),
	}

	products, total, err := s.products.Find(ctx, filter, findPage)
	if err != nil {
		return nil, err
	}

	return &ProductListing{
		Products:   products,
		Pagination: newPagination(page, pageSize, total),
		Filters: ListingFilters{
			Category:   optionalString(q.Category),
			PriceRange: PriceRange{Min: q.MinPrice, Max: q.MaxPrice},
			Search:     optionalString(q.Search),
			IsFeatured: q.IsFeatured,
			InStock:    q.InStock,
			SortBy:     echoSortBy,
			SortOrder:  echoSortOrder,
		},
	}, nil
}

// Featured returns up to limit in-stock featured products, newest first.
func (s *CatalogService) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 1 {
		limit = featuredLimit
	}
	featured := true
	inStock := true
	filter := store.ProductFilter{IsFeatured: &featured, InStock: &inStock}
	page := store.FindPage{SortBy: defaultSortField, SortDesc: true, Limit: int64(limit)}

	products, _, err := s.products.Find(ctx, filter, page)
	return products, err
}

// Suggestions returns up to 5 unique title and 3 unique category completions
// for a query of at least 2 characters.
func (s *CatalogService) Suggestions(ctx context.Context, query string) (*Suggestions, error) {
	if len(query) < 2 {
		return nil, &ValidationError{Message: "Search query must be at least 2 characters long"}
	}

	matches, err := s.products.Suggest(ctx, query, suggestionProbe)
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, 5)
	categories := make([]string, 0, 3)
	seenTitles := map[string]bool{}
	seenCategories := map[string]bool{}
	for _, p := range matches {
		if len(titles) < 5 && !seenTitles[p.Title] {
			seenTitles[p.Title] = true
			titles = append(titles, p.Title)
		}
		if len(categories) < 3 && !seenCategories[p.Category] {
			seenCategories[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return &Suggestions{Titles: titles, Categories: categories}, nil
}

// GetByID looks up a single product.
func (s *CatalogService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

// Update merges the provided fields into an existing product. Newly supplied
// image files fully replace the stored images sequence.
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, in UpdateProductInput, files []ImageFile) (*models.Product, error) {
	fields := map[string]interface{}{}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, &ValidationError{Message: "Product name is required"}
		}
		if len(title) > models.MaxTitleLength {
			return nil, validationf("Product name cannot exceed %d characters", models.MaxTitleLength)
		}
		fields["title"] = title
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, &ValidationError{Message: "Product description is required"}
		}
		if len(description) > models.MaxDescriptionLength {
			return nil, validationf("Description cannot exceed %d characters", models.MaxDescriptionLength)
		}
		fields["description"] = description
	}
	if in.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*in.Category))
		if !models.IsValidCategory(category) {
			return nil, validationf("%s is not a valid category", category)
		}
		fields["category"] = category
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, &ValidationError{Message: "Price cannot be negative"}
		}
		fields["price"] = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, &ValidationError{Message: "Stock cannot be negative"}
		}
		fields["stock"] = *in.Stock
	}
	if in.IsFeatured != nil {
		fields["isFeatured"] = *in.IsFeatured
	}
	if in.IsActive != nil {
		fields["isActive"] = *in.IsActive
	}

	if len(files) > 0 {
		images, err := s.uploadImages(ctx, files)
		if err != nil {
			return nil, err
		}
		fields["images"] = images
	}

	product, err := s.products.UpdateFields(ctx, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

// Delete removes a product and returns the removed record.
func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.products.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return product, err
}

// uploadImages delegates each file to the asset service. Any failure aborts
// the whole operation; files already uploaded in this request are orphaned
// in the asset store.
func (s *CatalogService) uploadImages(ctx context.Context, files []ImageFile) ([]models.ProductImage, error) {
	images := []models.ProductImage{}
	for _, f := range files {
		url, err := s.uploader.Upload(ctx, f.Reader, f.Filename)
		if err != nil {
			return nil, err
		}
		alt := f.Filename
		if alt == "" {
			alt = models.DefaultImageAlt
		}
		images = append(images, models.ProductImage{URL: url, Alt: alt})
	}
	return images, nil
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	p := Pagination{
		CurrentPage:   page,
		TotalPages:    totalPages,
		TotalProducts: total,
		PageSize:      pageSize,
		HasNextPage:   page < totalPages,
		HasPrevPage:   page > 1,
	}
	if p.HasNextPage {
		next := page + 1
		p.NextPage = &next
	}
	if p.HasPrevPage {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
