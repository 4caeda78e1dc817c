package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/catalog"
	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/mykafka"
	"github.com/Skotchmaster/shop_api/internal/order"
	"github.com/Skotchmaster/shop_api/internal/search"
)

type InventoryHandler struct {
	Catalog  *catalog.Repo
	Ledger   *order.Repo
	Search   *search.Service
	Producer *mykafka.Producer
}

func (h *InventoryHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	// Admin view includes zero-stock rows, unlike the public listing.
	var items []models.Item
	if err := h.Catalog.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		logging.FromContext(ctx).Error("inventory_list_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list items")
	}

	return c.JSON(http.StatusOK, items)
}

type createItemRequest struct {
	Name        string  `json:"name" form:"name"`
	Brand       string  `json:"brand" form:"brand"`
	Description string  `json:"description" form:"description"`
	Category    string  `json:"category" form:"category"`
	Quantity    int     `json:"quantity" form:"quantity"`
	Price       float64 `json:"price" form:"price"`
}

func (h *InventoryHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory_create")

	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity cannot be negative")
	}
	if req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
	}

	item := models.Item{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Category:    req.Category,
		Quantity:    uint(req.Quantity),
		Price:       req.Price,
	}
	if err := h.Catalog.CreateItem(ctx, &item); err != nil {
		l.Error("create_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create item")
	}

	h.Search.IndexItem(ctx, &item)
	publish(c, h.Producer, "product_events", fmt.Sprint(item.ID), map[string]any{
		"type":    "item_created",
		"item_id": item.ID,
		"name":    item.Name,
	})

	l.Info("create_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, echo.Map{"msg": "Item created successfully", "item_id": item.ID})
}

// csvRows reads the uploaded CSV and returns its header-keyed rows. Format
// errors on individual lines are left to the caller's skip policy.
func csvRows(c echo.Context) ([]map[string]string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, errors.New("add the CSV file with the item data")
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".csv") {
		return nil, errors.New("file must be CSV")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, errors.New("empty CSV file")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			continue
		}
		row := make(map[string]string, len(header))
		for i, v := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(v)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// BulkCreate loads items from a CSV with columns
// name,brand,description,category,quantity,price. Invalid rows are skipped,
// the rest proceed.
func (h *InventoryHandler) BulkCreate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory_bulk_create")

	rows, err := csvRows(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created := 0
	for _, row := range rows {
		name := row["name"]
		quantity, qErr := strconv.Atoi(row["quantity"])
		price, pErr := strconv.ParseFloat(row["price"], 64)
		if name == "" || qErr != nil || pErr != nil || quantity < 0 || price < 0 {
			continue
		}

		item := models.Item{
			Name:        name,
			Brand:       row["brand"],
			Description: row["description"],
			Category:    row["category"],
			Quantity:    uint(quantity),
			Price:       price,
		}
		if err := h.Catalog.CreateItem(ctx, &item); err != nil {
			l.Warn("bulk_create_row_failed", "name", name, "error", err)
			continue
		}
		h.Search.IndexItem(ctx, &item)
		created++
	}

	l.Info("bulk_create_done", "created", created, "rows", len(rows))
	return c.JSON(http.StatusOK, echo.Map{
		"msg": fmt.Sprintf("Bulk create complete. %d items added.", created),
	})
}

type updateItemRequest struct {
	ItemID      uint     `json:"item_id" form:"item_id"`
	Name        *string  `json:"name" form:"name"`
	Brand       *string  `json:"brand" form:"brand"`
	Description *string  `json:"description" form:"description"`
	Category    *string  `json:"category" form:"category"`
	Quantity    *int     `json:"quantity" form:"quantity"`
	Price       *float64 `json:"price" form:"price"`
}

func (h *InventoryHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ItemID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity cannot be negative")
	}
	if req.Price != nil && *req.Price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
	}

	patch := catalog.Patch{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
	}
	if req.Quantity != nil {
		q := uint(*req.Quantity)
		patch.Quantity = &q
	}
	if patch.Empty() {
		return echo.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	item, err := h.Catalog.UpdateItem(ctx, req.ItemID, patch)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		logging.FromContext(ctx).Error("inventory_update_failed", "item_id", req.ItemID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to update item")
	}

	h.Search.IndexItem(ctx, item)
	publish(c, h.Producer, "product_events", fmt.Sprint(item.ID), map[string]any{
		"type":    "item_updated",
		"item_id": item.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"msg": "Item updated successfully"})
}

type restockRequest struct {
	ItemID   uint `json:"item_id" form:"item_id"`
	Quantity int  `json:"quantity" form:"quantity"`
}

func (h *InventoryHandler) Restock(c echo.Context) error {
	ctx := c.Request().Context()

	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be positive")
	}

	if err := h.Catalog.Restock(ctx, req.ItemID, uint(req.Quantity)); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		logging.FromContext(ctx).Error("inventory_restock_failed", "item_id", req.ItemID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to restock item")
	}

	if item, err := h.Catalog.GetItem(ctx, req.ItemID); err == nil {
		h.Search.IndexItem(ctx, item)
	}
	publish(c, h.Producer, "product_events", fmt.Sprint(req.ItemID), map[string]any{
		"type":     "item_restocked",
		"item_id":  req.ItemID,
		"quantity": req.Quantity,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"msg": fmt.Sprintf("Restocked %d units of item %d", req.Quantity, req.ItemID),
	})
}

// BulkRestock loads item_id,quantity rows from a CSV, skipping invalid ones
// and reporting both counts.
func (h *InventoryHandler) BulkRestock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory_bulk_restock")

	rows, err := csvRows(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	restocked, skipped := 0, 0
	for _, row := range rows {
		itemID, idErr := strconv.Atoi(row["item_id"])
		quantity, qErr := strconv.Atoi(row["quantity"])
		if idErr != nil || qErr != nil || itemID <= 0 || quantity <= 0 {
			skipped++
			continue
		}

		if err := h.Catalog.Restock(ctx, uint(itemID), uint(quantity)); err != nil {
			skipped++
			if !errors.Is(err, catalog.ErrNotFound) {
				l.Warn("bulk_restock_row_failed", "item_id", itemID, "error", err)
			}
			continue
		}
		restocked++
	}

	l.Info("bulk_restock_done", "restocked", restocked, "skipped", skipped)
	return c.JSON(http.StatusOK, echo.Map{
		"msg": fmt.Sprintf("Bulk restock complete. %d items restocked, %d skipped.", restocked, skipped),
	})
}

func (h *InventoryHandler) Orders(c echo.Context) error {
	ctx := c.Request().Context()

	rows, err := h.Ledger.All(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("inventory_orders_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to fetch orders")
	}

	return c.JSON(http.StatusOK, rows)
}

func (h *InventoryHandler) Revenue(c echo.Context) error {
	ctx := c.Request().Context()

	revenue, err := h.Ledger.Revenue(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("inventory_revenue_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to calculate revenue")
	}

	return c.JSON(http.StatusOK, echo.Map{"total_revenue": revenue})
}
