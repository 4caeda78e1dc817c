package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/catalog"
	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/util"
)

type ShopHandler struct {
	Catalog *catalog.Repo
}

// ListItems serves the public catalog with the original filter set: category,
// price range "min-max", keyword search, pagination and name/price sorting.
func (h *ShopHandler) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	f := catalog.Filter{
		Category:  c.QueryParam("category"),
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
	}

	if priceRange := c.QueryParam("price"); priceRange != "" {
		minStr, maxStr, ok := strings.Cut(priceRange, "-")
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "price range format should be min-max")
		}
		minPrice, errMin := strconv.ParseFloat(minStr, 64)
		maxPrice, errMax := strconv.ParseFloat(maxStr, 64)
		if errMin != nil || errMax != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "price range format should be min-max")
		}
		f.MinPrice = &minPrice
		f.MaxPrice = &maxPrice
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	f.Limit, f.Offset = util.ClampPage(limit, offset)

	items, err := h.Catalog.ListItems(ctx, f)
	if err != nil {
		logging.FromContext(ctx).Error("shop_list_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch items")
	}

	return c.JSON(http.StatusOK, items)
}

// GetItem hides out-of-stock items from the public detail view, matching the
// listing.
func (h *ShopHandler) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := h.Catalog.GetItem(ctx, uint(id))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found or out of stock")
		}
		logging.FromContext(ctx).Error("shop_item_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch item")
	}
	if item.Quantity == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "item not found or out of stock")
	}

	return c.JSON(http.StatusOK, item)
}

func (h *ShopHandler) Categories(c echo.Context) error {
	ctx := c.Request().Context()

	categories, err := h.Catalog.Categories(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("shop_categories_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch categories")
	}

	return c.JSON(http.StatusOK, echo.Map{"categories": categories})
}
