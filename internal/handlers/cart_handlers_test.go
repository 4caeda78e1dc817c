package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_api/internal/cart"
)

func TestCartAddAndInfo(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginUser("buyer")
	item := env.seedItem("Jacket", 10, 500)

	rec := env.request(http.MethodPost, "/cart/add", token, map[string]any{
		"item_id": item.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodPost, "/cart/add", token, map[string]any{
		"item_id": item.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, "/cart/info", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []struct {
			ItemID   uint    `json:"item_id"`
			Quantity uint    `json:"quantity"`
			Subtotal float64 `json:"subtotal"`
		} `json:"items"`
		TotalPrice float64 `json:"total_price"`
	}
	env.decode(rec, &resp)
	require.Len(t, resp.Items, 1, "re-adding the same item merges the line")
	require.Equal(t, uint(5), resp.Items[0].Quantity)
	require.Equal(t, 2500.0, resp.TotalPrice)
}

func TestCartAddValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginUser("buyer")
	item := env.seedItem("Jacket", 10, 500)

	rec := env.request(http.MethodPost, "/cart/add", token, map[string]any{
		"item_id": item.ID, "quantity": 0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(http.MethodPost, "/cart/add", token, map[string]any{
		"item_id": item.ID, "quantity": uint64(1)<<63 + 5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, env.Carts.Get(token))

	rec = env.request(http.MethodPost, "/cart/add", "", map[string]any{
		"item_id": item.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartRemove(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginUser("buyer")
	item := env.seedItem("Jacket", 10, 500)

	require.NoError(t, env.Carts.AddItem(token, item.ID, 2))

	rec := env.request(http.MethodPost, "/cart/remove", token, map[string]any{"item_id": item.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, env.Carts.Get(token))

	// Removing again is still a 200, not an error.
	rec = env.request(http.MethodPost, "/cart/remove", token, map[string]any{"item_id": item.ID})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginUser("buyer")
	jacket := env.seedItem("Jacket", 3, 100)
	shorts := env.seedItem("Shorts", 1, 50)

	require.NoError(t, env.Carts.AddItem(token, jacket.ID, 3))
	require.NoError(t, env.Carts.AddItem(token, shorts.ID, 5)) // over stock, will be skipped

	rec := env.request(http.MethodPost, "/cart/checkout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OrderIDs []uint `json:"order_ids"`
		Skipped  int    `json:"skipped"`
	}
	env.decode(rec, &resp)
	require.Len(t, resp.OrderIDs, 1)
	require.Equal(t, 1, resp.Skipped)

	got, err := env.Catalog.GetItem(context.Background(), jacket.ID)
	require.NoError(t, err)
	require.Equal(t, uint(0), got.Quantity)

	got, err = env.Catalog.GetItem(context.Background(), shorts.ID)
	require.NoError(t, err)
	require.Equal(t, uint(1), got.Quantity, "skipped line's stock unchanged")

	require.Empty(t, env.Carts.Get(token))

	rec = env.request(http.MethodGet, "/orders/past", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders struct {
		Orders []struct {
			ItemName   string  `json:"item_name"`
			TotalPrice float64 `json:"total_price"`
		} `json:"orders"`
	}
	env.decode(rec, &orders)
	require.Len(t, orders.Orders, 1)
	require.Equal(t, "Jacket", orders.Orders[0].ItemName)
	require.Equal(t, 300.0, orders.Orders[0].TotalPrice)
}

func TestCheckoutEmptyCartOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginUser("buyer")

	rec := env.request(http.MethodPost, "/cart/checkout", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDirectOrder(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginUser("buyer")
	item := env.seedItem("Jacket", 3, 100)

	rec := env.request(http.MethodPost, "/orders/new", token, map[string]any{
		"item_id": item.ID, "quantity": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OrderID uint `json:"order_id"`
	}
	env.decode(rec, &resp)
	require.NotZero(t, resp.OrderID)

	// Stock is gone now, the next attempt conflicts.
	rec = env.request(http.MethodPost, "/orders/new", token, map[string]any{
		"item_id": item.ID, "quantity": 1,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = env.request(http.MethodPost, "/orders/new", token, map[string]any{
		"item_id": item.ID, "quantity": 0,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.request(http.MethodPost, "/orders/new", token, map[string]any{
		"item_id": 9999, "quantity": 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDirectOrderRejectsOversizedQuantity(t *testing.T) {
	env := newTestEnv(t)
	token := env.loginUser("buyer")
	item := env.seedItem("Jacket", 3, 100)

	rec := env.request(http.MethodPost, "/orders/new", token, map[string]any{
		"item_id": item.ID, "quantity": uint64(1)<<63 + 5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	got, err := env.Catalog.GetItem(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, uint(3), got.Quantity, "stock untouched by the rejected order")
}

func TestCartsAreIsolatedPerSession(t *testing.T) {
	env := newTestEnv(t)
	alice := env.loginUser("alice")
	bob := env.loginUser("bob")
	item := env.seedItem("Jacket", 10, 100)

	require.NoError(t, env.Carts.AddItem(alice, item.ID, 1))

	rec := env.request(http.MethodGet, "/cart/info", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []cart.Entry `json:"items"`
	}
	env.decode(rec, &resp)
	require.Empty(t, resp.Items)
}
