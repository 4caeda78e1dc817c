package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/search"
)

type SearchHandler struct {
	Service *search.Service
}

// Search serves fuzzy catalog search from Elasticsearch. When ES isn't
// configured the endpoint reports 503 and clients should use /shop/list's
// search filter instead.
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	if h.Service == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}

	items, err := h.Service.Query(ctx, q, (page-1)*size, size)
	if err != nil {
		logging.FromContext(ctx).Error("search_failed", "query", q, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items, "page": page, "size": size})
}
