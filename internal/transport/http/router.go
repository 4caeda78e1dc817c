package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_api/internal/handlers"
	authmw "github.com/Skotchmaster/shop_api/internal/middleware/auth"
	"github.com/Skotchmaster/shop_api/internal/session"
)

type Deps struct {
	Sessions         *session.Registry
	AuthHandler      *handlers.AuthHandler
	ShopHandler      *handlers.ShopHandler
	SearchHandler    *handlers.SearchHandler
	CartHandler      *handlers.CartHandler
	OrderHandler     *handlers.OrderHandler
	InventoryHandler *handlers.InventoryHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	auth := e.Group("/auth")
	auth.POST("/user/signup", d.AuthHandler.Signup)
	auth.POST("/user/login", d.AuthHandler.Login)
	auth.POST("/admin/login", d.AuthHandler.AdminLogin)
	auth.POST("/logout", d.AuthHandler.Logout)

	shop := e.Group("/shop")
	shop.GET("/list", d.ShopHandler.ListItems)
	shop.GET("/item/:id", d.ShopHandler.GetItem)
	shop.GET("/categories", d.ShopHandler.Categories)
	shop.GET("/search", d.SearchHandler.Search)

	cart := e.Group("/cart", authmw.RequireLogin(d.Sessions))
	cart.POST("/add", d.CartHandler.AddItem)
	cart.GET("/info", d.CartHandler.Info)
	cart.POST("/remove", d.CartHandler.RemoveItem)
	cart.POST("/checkout", d.CartHandler.Checkout)

	orders := e.Group("/orders", authmw.RequireLogin(d.Sessions))
	orders.GET("/past", d.OrderHandler.Past)
	orders.POST("/new", d.OrderHandler.New)

	inventory := e.Group("/inventory", authmw.AdminOnly(d.Sessions))
	inventory.GET("/list", d.InventoryHandler.List)
	inventory.POST("/new", d.InventoryHandler.Create)
	inventory.POST("/bulk_new", d.InventoryHandler.BulkCreate)
	inventory.POST("/update", d.InventoryHandler.Update)
	inventory.POST("/restock", d.InventoryHandler.Restock)
	inventory.POST("/bulk_restock", d.InventoryHandler.BulkRestock)
	inventory.GET("/orders", d.InventoryHandler.Orders)
	inventory.GET("/revenue", d.InventoryHandler.Revenue)
}
