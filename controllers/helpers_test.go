package controllers_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mystore/controllers"
	"mystore/models"
	"mystore/routes"
	"mystore/services"
	"mystore/store"
	"mystore/utils"
)

// --- Fakes shared by the handler tests ---

type stubProductStore struct {
	products []models.Product
}

func (s *stubProductStore) Insert(_ context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	s.products = append(s.products, *product)
	return nil
}

func (s *stubProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			product := s.products[i]
			return &product, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *stubProductStore) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, err := s.FindByID(context.Background(), id); err == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubProductStore) Find(_ context.Context, _ store.ProductFilter, page store.FindPage) ([]models.Product, int64, error) {
	total := int64(len(s.products))
	start := page.Skip
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return s.products[start:end], total, nil
}

func (s *stubProductStore) Suggest(_ context.Context, _ string, limit int64) ([]models.Product, error) {
	if int64(len(s.products)) < limit {
		limit = int64(len(s.products))
	}
	return s.products[:limit], nil
}

func (s *stubProductStore) UpdateFields(ctx context.Context, id primitive.ObjectID, _ map[string]interface{}) (*models.Product, error) {
	return s.FindByID(ctx, id)
}

func (s *stubProductStore) Delete(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			product := s.products[i]
			s.products = append(s.products[:i], s.products[i+1:]...)
			return &product, nil
		}
	}
	return nil, store.ErrNotFound
}

type stubCartStore struct {
	cart *models.Cart
}

func (s *stubCartStore) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	if s.cart == nil || s.cart.UserID != userID {
		return nil, store.ErrNotFound
	}
	return s.cart, nil
}

func (s *stubCartStore) Insert(_ context.Context, cart *models.Cart) error {
	cart.ID = primitive.NewObjectID()
	cart.RecalcTotals()
	s.cart = cart
	return nil
}

func (s *stubCartStore) Save(_ context.Context, cart *models.Cart) error {
	cart.RecalcTotals()
	s.cart = cart
	return nil
}

type stubUserStore struct {
	users []models.User
}

func (s *stubUserStore) Insert(_ context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	s.users = append(s.users, *user)
	return nil
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for i := range s.users {
		if s.users[i].Email == email {
			user := s.users[i]
			return &user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *stubUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	return err == nil, nil
}

type stubMailer struct{ sent []string }

func (m *stubMailer) SendWelcomeEmail(toEmail, _ string) error {
	m.sent = append(m.sent, toEmail)
	return nil
}

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, _ io.Reader, filename string) (string, error) {
	return "https://cdn.test/" + filename, nil
}

// newTestRouter wires the full route table over stub stores.
func newTestRouter(ps *stubProductStore, cs *stubCartStore) *mux.Router {
	catalog := services.NewCatalogService(ps, stubUploader{})
	cart := services.NewCartService(cs, ps)

	userController := controllers.NewUserController(&stubUserStore{}, &stubMailer{})
	productController := controllers.NewProductController(catalog)
	cartController := controllers.NewCartController(cart)

	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, productController, cartController)
	return router
}

// authHeader mints a token for the given user id.
func authHeader(t *testing.T, req *http.Request, userID primitive.ObjectID) {
	t.Helper()
	token, err := utils.GenerateJWT(userID.Hex(), "Test User", "test@example.com")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
}
