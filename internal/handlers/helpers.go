package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/cart"
	"github.com/Skotchmaster/shop_api/internal/catalog"
	"github.com/Skotchmaster/shop_api/internal/checkout"
	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/mykafka"
)

// publish ships a domain event best-effort: a dead broker degrades the event
// stream, never the request.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_failed", "topic", topic, "error", err)
	}
}

// httpError translates domain sentinels into transport errors without leaking
// storage internals.
func httpError(err error) *echo.HTTPError {
	var stockErr *catalog.StockError
	var failedErr *checkout.FailedError

	switch {
	case errors.Is(err, checkout.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	case errors.Is(err, checkout.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidQuantity):
		return echo.NewHTTPError(http.StatusBadRequest, "quantity out of range")
	case errors.Is(err, catalog.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "item not found")
	case errors.As(err, &stockErr):
		return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf(
			"not enough stock for item %d: requested %d, available %d",
			stockErr.ItemID, stockErr.Requested, stockErr.Available))
	case errors.Is(err, checkout.ErrEmptyCart):
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	case errors.As(err, &failedErr):
		return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf(
			"checkout failed: %d line(s) skipped", failedErr.Skipped))
	case errors.Is(err, checkout.ErrPersistence):
		return echo.NewHTTPError(http.StatusBadGateway, "order could not be recorded")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
