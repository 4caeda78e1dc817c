package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/shop_api/internal/cart"
	"github.com/Skotchmaster/shop_api/internal/logging"
	"github.com/Skotchmaster/shop_api/internal/models"
	"github.com/Skotchmaster/shop_api/internal/session"
)

var (
	ErrUnauthorized    = errors.New("checkout: invalid or expired token")
	ErrInvalidQuantity = errors.New("checkout: quantity out of range")
	ErrEmptyCart       = errors.New("checkout: cart is empty")
	ErrPersistence     = errors.New("checkout: order write failed")
)

// FailedError reports a checkout where every cart line was skipped.
type FailedError struct {
	Skipped int
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("checkout: no orders placed, %d line(s) skipped", e.Skipped)
}

// CatalogStore is the slice of the catalog the engine needs. AdjustQuantity
// must be atomic and refuse to drive stock negative; that single guarantee is
// what keeps concurrent purchases from overselling.
type CatalogStore interface {
	GetItem(ctx context.Context, id uint) (*models.Item, error)
	AdjustQuantity(ctx context.Context, id uint, delta int) error
}

// OrderLedger persists order rows.
type OrderLedger interface {
	Record(ctx context.Context, userID, itemID, quantity uint, totalPrice float64) (uint, error)
}

// Result is the outcome of a cart checkout. Lines are best-effort: a line
// that fails is counted in Skipped and the rest proceed.
type Result struct {
	OrderIDs []uint `json:"order_ids"`
	Skipped  int    `json:"skipped"`
}

// Engine turns cart contents or a direct purchase into persisted orders
// while decrementing stock. It holds no state of its own; every invocation
// orchestrates the registry, the cart store and the two repos.
type Engine struct {
	Sessions *session.Registry
	Carts    *cart.Store
	Catalog  CatalogStore
	Ledger   OrderLedger

	// RestoreFailedLines re-adds skipped checkout lines to a fresh cart
	// instead of discarding them with the snapshot.
	RestoreFailedLines bool
}

// PlaceOrder purchases quantity units of one item directly, without touching
// the cart.
func (e *Engine) PlaceOrder(ctx context.Context, token string, itemID, quantity uint) (uint, error) {
	sess, ok := e.Sessions.Resolve(token)
	if !ok {
		return 0, ErrUnauthorized
	}
	return e.purchase(ctx, sess.IdentityID, itemID, quantity)
}

// Checkout snapshots the cart, attempts each line independently and reports
// the order ids that were created. The snapshot empties the cart up front so
// items added mid-checkout land in a fresh cart rather than being half
// bought.
func (e *Engine) Checkout(ctx context.Context, token string) (Result, error) {
	sess, ok := e.Sessions.Resolve(token)
	if !ok {
		return Result{}, ErrUnauthorized
	}

	entries := e.Carts.SnapshotAndClear(token)
	if len(entries) == 0 {
		return Result{}, ErrEmptyCart
	}

	l := logging.FromContext(ctx).With("op", "checkout", "user_id", sess.IdentityID)

	res := Result{OrderIDs: make([]uint, 0, len(entries))}
	for _, entry := range entries {
		orderID, err := e.purchase(ctx, sess.IdentityID, entry.ItemID, entry.Quantity)
		if err != nil {
			res.Skipped++
			l.Warn("checkout_line_skipped",
				"item_id", entry.ItemID, "quantity", entry.Quantity, "error", err)
			if e.RestoreFailedLines {
				if addErr := e.Carts.AddItem(token, entry.ItemID, entry.Quantity); addErr != nil {
					l.Error("checkout_line_restore_failed", "item_id", entry.ItemID, "error", addErr)
				}
			}
			continue
		}
		res.OrderIDs = append(res.OrderIDs, orderID)
	}

	if len(res.OrderIDs) == 0 {
		return res, &FailedError{Skipped: res.Skipped}
	}
	return res, nil
}

// purchase is the atomic-purchase primitive shared by both entry points:
// validate the quantity, conditional decrement, then the order row, with a
// compensating increment if the row cannot be written. Quantities above
// cart.MaxLineQuantity are rejected before the negation below so the delta
// never wraps into an increment. Total price uses the price read before the
// decrement; a concurrent admin price change inside that window is accepted.
func (e *Engine) purchase(ctx context.Context, userID, itemID, quantity uint) (uint, error) {
	if quantity == 0 || quantity > cart.MaxLineQuantity {
		return 0, ErrInvalidQuantity
	}

	item, err := e.Catalog.GetItem(ctx, itemID)
	if err != nil {
		return 0, err
	}

	if err := e.Catalog.AdjustQuantity(ctx, itemID, -int(quantity)); err != nil {
		return 0, err
	}

	totalPrice := item.Price * float64(quantity)
	orderID, err := e.Ledger.Record(ctx, userID, itemID, quantity, totalPrice)
	if err != nil {
		l := logging.FromContext(ctx)
		l.Error("order_write_failed", "user_id", userID, "item_id", itemID, "error", err)
		if compErr := e.Catalog.AdjustQuantity(ctx, itemID, int(quantity)); compErr != nil {
			// Stock and ledger now disagree; nothing automatic can fix it.
			l.Error("stock_compensation_failed",
				"item_id", itemID, "quantity", quantity, "error", compErr)
		}
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return orderID, nil
}
