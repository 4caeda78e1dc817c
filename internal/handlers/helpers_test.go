package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_api/internal/cart"
	"github.com/Skotchmaster/shop_api/internal/catalog"
	"github.com/Skotchmaster/shop_api/internal/checkout"
	"github.com/Skotchmaster/shop_api/internal/handlers"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/order"
	"github.com/Skotchmaster/shop_api/internal/repo"
	"github.com/Skotchmaster/shop_api/internal/session"
	httpserver "github.com/Skotchmaster/shop_api/internal/transport/http"
)

type testEnv struct {
	T        *testing.T
	E        *echo.Echo
	DB       *gorm.DB
	Sessions *session.Registry
	Carts    *cart.Store
	Catalog  *catalog.Repo
	Creds    *repo.CredentialRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Admin{}, &models.Item{}, &models.Order{}))

	sessions := session.NewRegistry()
	carts := cart.NewStore()
	catalogRepo := catalog.NewRepo(db)
	ledger := order.NewRepo(db)
	creds := repo.NewCredentialRepo(db)

	engine := &checkout.Engine{
		Sessions: sessions,
		Carts:    carts,
		Catalog:  catalogRepo,
		Ledger:   ledger,
	}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		Sessions:         sessions,
		AuthHandler:      &handlers.AuthHandler{Creds: creds, Sessions: sessions},
		ShopHandler:      &handlers.ShopHandler{Catalog: catalogRepo},
		SearchHandler:    &handlers.SearchHandler{},
		CartHandler:      &handlers.CartHandler{Carts: carts, Catalog: catalogRepo, Engine: engine},
		OrderHandler:     &handlers.OrderHandler{Engine: engine, Ledger: ledger},
		InventoryHandler: &handlers.InventoryHandler{Catalog: catalogRepo, Ledger: ledger},
	})

	return &testEnv{T: t, E: e, DB: db, Sessions: sessions, Carts: carts, Catalog: catalogRepo, Creds: creds}
}

func (env *testEnv) request(method, path, token string, body any) *httptest.ResponseRecorder {
	env.T.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(env.T, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) decode(rec *httptest.ResponseRecorder, out any) {
	env.T.Helper()
	require.NoError(env.T, json.Unmarshal(rec.Body.Bytes(), out))
}

func (env *testEnv) loginUser(username string) string {
	env.T.Helper()

	rec := env.request(http.MethodPost, "/auth/user/signup", "", map[string]string{
		"username": username, "password": "password",
	})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.request(http.MethodPost, "/auth/user/login", "", map[string]string{
		"username": username, "password": "password",
	})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	env.decode(rec, &resp)
	require.NotEmpty(env.T, resp.AccessToken)
	return resp.AccessToken
}

func (env *testEnv) loginAdmin() string {
	env.T.Helper()

	require.NoError(env.T, env.Creds.EnsureDefaultAdmin(context.Background(), "shopkeeper", "adminpass"))

	rec := env.request(http.MethodPost, "/auth/admin/login", "", map[string]string{
		"username": "shopkeeper", "password": "adminpass",
	})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	env.decode(rec, &resp)
	return resp.AccessToken
}

func (env *testEnv) seedItem(name string, quantity uint, price float64) *models.Item {
	env.T.Helper()
	item := &models.Item{Name: name, Category: "Clothing", Quantity: quantity, Price: price}
	require.NoError(env.T, env.Catalog.CreateItem(context.Background(), item))
	return item
}
