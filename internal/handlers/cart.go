package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/cart"
	"github.com/Skotchmaster/shop_api/internal/catalog"
	"github.com/Skotchmaster/shop_api/internal/checkout"
	"github.com/Skotchmaster/shop_api/internal/logging"
	authmw "github.com/Skotchmaster/shop_api/internal/middleware/auth"
	"github.com/Skotchmaster/shop_api/internal/mykafka"
)

type CartHandler struct {
	Carts    *cart.Store
	Catalog  *catalog.Repo
	Engine   *checkout.Engine
	Producer *mykafka.Producer
}

type cartItemRequest struct {
	ItemID   uint `json:"item_id" form:"item_id"`
	Quantity uint `json:"quantity" form:"quantity"`
}

func (h *CartHandler) AddItem(c echo.Context) error {
	sess, ok := authmw.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ItemID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	if err := h.Carts.AddItem(sess.Token, req.ItemID, req.Quantity); err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(sess.IdentityID), map[string]any{
		"type":     "cart_item_added",
		"user_id":  sess.IdentityID,
		"item_id":  req.ItemID,
		"quantity": req.Quantity,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"msg": fmt.Sprintf("Added %d units of item %d to cart", req.Quantity, req.ItemID),
	})
}

// Info renders the cart with live catalog prices. Lines whose item has
// vanished are shown with what is left; pricing is display-only here, the
// checkout engine re-reads prices when orders are placed.
func (h *CartHandler) Info(c echo.Context) error {
	ctx := c.Request().Context()
	sess, ok := authmw.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	type cartLine struct {
		ItemID   uint    `json:"item_id"`
		Name     string  `json:"name"`
		Quantity uint    `json:"quantity"`
		Price    float64 `json:"price"`
		Subtotal float64 `json:"subtotal"`
	}

	entries := h.Carts.Get(sess.Token)
	lines := make([]cartLine, 0, len(entries))
	var total float64
	for _, e := range entries {
		item, err := h.Catalog.GetItem(ctx, e.ItemID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			logging.FromContext(ctx).Error("cart_info_failed", "item_id", e.ItemID, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		subtotal := item.Price * float64(e.Quantity)
		lines = append(lines, cartLine{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: e.Quantity,
			Price:    item.Price,
			Subtotal: subtotal,
		})
		total += subtotal
	}

	return c.JSON(http.StatusOK, echo.Map{"items": lines, "total_price": total})
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	sess, ok := authmw.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	h.Carts.RemoveItem(sess.Token, req.ItemID)

	publish(c, h.Producer, "cart_events", fmt.Sprint(sess.IdentityID), map[string]any{
		"type":    "cart_item_removed",
		"user_id": sess.IdentityID,
		"item_id": req.ItemID,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"msg": fmt.Sprintf("Item %d removed from cart", req.ItemID),
	})
}

func (h *CartHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	sess, ok := authmw.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	res, err := h.Engine.Checkout(ctx, sess.Token)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(sess.IdentityID), map[string]any{
		"type":      "checkout_completed",
		"user_id":   sess.IdentityID,
		"order_ids": res.OrderIDs,
		"skipped":   res.Skipped,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"msg":       "Checkout complete, orders placed",
		"order_ids": res.OrderIDs,
		"skipped":   res.Skipped,
	})
}
