package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/checkout"
	"github.com/Skotchmaster/shop_api/internal/logging"
	authmw "github.com/Skotchmaster/shop_api/internal/middleware/auth"
	"github.com/Skotchmaster/shop_api/internal/mykafka"
	"github.com/Skotchmaster/shop_api/internal/order"
)

type OrderHandler struct {
	Engine   *checkout.Engine
	Ledger   *order.Repo
	Producer *mykafka.Producer
}

func (h *OrderHandler) Past(c echo.Context) error {
	ctx := c.Request().Context()
	sess, ok := authmw.CurrentSession(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	rows, err := h.Ledger.ForUser(ctx, sess.IdentityID)
	if err != nil {
		logging.FromContext(ctx).Error("orders_past_failed", "user_id", sess.IdentityID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch orders")
	}

	return c.JSON(http.StatusOK, echo.Map{"orders": rows})
}

// New places a direct order for one item, bypassing the cart.
func (h *OrderHandler) New(c echo.Context) error {
	ctx := c.Request().Context()
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

	orderID, err := h.Engine.PlaceOrder(ctx, sess.Token, req.ItemID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(sess.IdentityID), map[string]any{
		"type":     "order_created",
		"user_id":  sess.IdentityID,
		"order_id": orderID,
		"item_id":  req.ItemID,
		"quantity": req.Quantity,
	})

	return c.JSON(http.StatusOK, echo.Map{"order_id": orderID})
}
