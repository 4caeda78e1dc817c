package handlers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func (env *testEnv) uploadCSV(path, token, filename, content string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(env.T, err)
	_, err = fw.Write([]byte(content))
	require.NoError(env.T, err)
	require.NoError(env.T, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func TestInventoryCreateAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginAdmin()

	rec := env.request(http.MethodPost, "/inventory/new", token, map[string]any{
		"name": "Jacket", "brand": "Puma", "category": "Clothing",
		"quantity": 5, "price": 1200.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		ItemID uint `json:"item_id"`
	}
	env.decode(rec, &created)
	require.NotZero(t, created.ItemID)

	rec = env.request(http.MethodPost, "/inventory/new", token, map[string]any{
		"name": "Bad", "quantity": -1, "price": 10.0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(http.MethodPost, "/inventory/update", token, map[string]any{
		"item_id": created.ItemID, "price": 999.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	item, err := env.Catalog.GetItem(context.Background(), created.ItemID)
	require.NoError(t, err)
	require.Equal(t, 999.0, item.Price)
	require.Equal(t, "Puma", item.Brand)

	rec = env.request(http.MethodPost, "/inventory/update", token, map[string]any{
		"item_id": created.ItemID,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, "empty patch rejected")
}

func TestInventoryRestock(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginAdmin()
	item := env.seedItem("Jacket", 3, 100)

	rec := env.request(http.MethodPost, "/inventory/restock", token, map[string]any{
		"item_id": item.ID, "quantity": 7,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := env.Catalog.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, uint(10), got.Quantity)

	rec = env.request(http.MethodPost, "/inventory/restock", token, map[string]any{
		"item_id": item.ID, "quantity": 0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(http.MethodPost, "/inventory/restock", token, map[string]any{
		"item_id": 9999, "quantity": 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInventoryBulkCreateSkipsInvalidRows(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginAdmin()

	csvData := "name,brand,description,category,quantity,price\n" +
		"T-shirt,Nike,Basic tee,Clothing,10,700\n" +
		"Broken,,,,not-a-number,50\n" +
		"Negative,,,,-3,50\n" +
		"Shorts,Adidas,Running shorts,Clothing,4,900\n"

	rec := env.uploadCSV("/inventory/bulk_new", token, "items.csv", csvData)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "2 items added")

	rec = env.uploadCSV("/inventory/bulk_new", token, "items.txt", csvData)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInventoryBulkRestock(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginAdmin()
	item := env.seedItem("Jacket", 1, 100)

	csvData := "item_id,quantity\n" +
		"9999,5\n" + // unknown item, skipped
		"zero,0\n" + // malformed, skipped
		"1,4\n"

	rec := env.uploadCSV("/inventory/bulk_restock", token, "restock.csv", csvData)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "1 items restocked, 2 skipped")

	got, err := env.Catalog.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, uint(5), got.Quantity)
}

func TestInventoryOrdersAndRevenue(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.loginAdmin()
	userToken := env.loginUser("buyer")
	item := env.seedItem("Jacket", 5, 100)

	rec := env.request(http.MethodPost, "/orders/new", userToken, map[string]any{
		"item_id": item.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, "/inventory/orders", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Jacket")
	require.Contains(t, rec.Body.String(), "buyer")

	rec = env.request(http.MethodGet, "/inventory/revenue", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		TotalRevenue float64 `json:"total_revenue"`
	}
	env.decode(rec, &resp)
	require.Equal(t, 200.0, resp.TotalRevenue)
}
