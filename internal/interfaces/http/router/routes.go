package router

import (
	"github.com/gin-gonic/gin"
	"github.com/seafresh/backend/internal/interfaces/http/handler"
	"github.com/seafresh/backend/internal/interfaces/http/middleware"
)

// Handlers groups the HTTP handlers mounted under the versioned API
type Handlers struct {
	System        *handler.SystemHandler
	Auth          *handler.AuthHandler
	Users         *handler.UserHandler
	Products      *handler.ProductHandler
	Uploads       *handler.UploadHandler
	Orders        *handler.OrderHandler
	Payments      *handler.PaymentHandler
	Coupons       *handler.CouponHandler
	Spin          *handler.SpinHandler
	Notifications *handler.NotificationHandler
	Contact       *handler.ContactHandler
	Dashboard     *handler.DashboardHandler
}

// Guards holds the session middleware and the per-route rate limiters.
// A nil limiter is skipped.
type Guards struct {
	Sessions     *middleware.SessionAuthenticator
	AuthLimit    gin.HandlerFunc
	ContactLimit gin.HandlerFunc
	SpinLimit    gin.HandlerFunc
}

// StoreRoutes builds the route groups of the storefront and admin API
func StoreRoutes(h Handlers, g Guards) []RouteRegistrar {
	optional := g.Sessions.OptionalSession()
	required := g.Sessions.SessionAuth()

	auth := NewDomainGroup("auth", "/auth").Use(optional)
	auth.POST("/register", g.AuthLimit, h.Auth.Register).
		POST("/login", g.AuthLimit, h.Auth.Login).
		POST("/logout", h.Auth.Logout).
		GET("/google", h.Auth.GoogleStart).
		GET("/google/callback", h.Auth.GoogleCallback)
	auth.Group("account", "").Use(required).
		GET("/me", h.Auth.Me).
		PUT("/password", h.Auth.ChangePassword).
		PUT("/profile", h.Auth.UpdateProfile)

	products := NewDomainGroup("products", "/products").Use(optional).
		GET("", h.Products.List).
		GET("/categories", h.Products.Categories).
		GET("/:id", h.Products.Get)

	orders := NewDomainGroup("orders", "/orders").Use(required).
		POST("/quote", h.Orders.Quote).
		POST("", h.Orders.Place).
		GET("", h.Orders.ListMine).
		GET("/:id", h.Orders.Get).
		POST("/:id/cancel", h.Orders.Cancel).
		GET("/:id/invoice", h.Orders.Invoice)

	payments := NewDomainGroup("payments", "/payments").
		GET("/config", h.Payments.Config).
		POST("/webhook", h.Payments.Webhook)
	payments.Group("checkout", "").Use(required).
		POST("/orders/:id", h.Payments.CreateOrder).
		POST("/verify", h.Payments.Verify)

	coupons := NewDomainGroup("coupons", "/coupons").Use(required).
		POST("/validate", h.Coupons.Validate).
		GET("/mine", h.Coupons.Mine)

	spin := NewDomainGroup("spin", "/spin").Use(required).
		GET("", h.Spin.Status).
		POST("", g.SpinLimit, h.Spin.Spin)

	notifications := NewDomainGroup("notifications", "/notifications").Use(required).
		GET("", h.Notifications.List).
		GET("/unread-count", h.Notifications.UnreadCount).
		GET("/ws", h.Notifications.Stream).
		PATCH("/read-all", h.Notifications.MarkAllRead).
		PATCH("/:id/read", h.Notifications.MarkRead).
		DELETE("/:id", h.Notifications.Delete)

	contact := NewDomainGroup("contact", "/contact").Use(optional).
		POST("", g.ContactLimit, h.Contact.Submit)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	admin := NewDomainGroup("admin", "/admin").Use(required, middleware.RequireAdmin())
	admin.GET("/dashboard", h.Dashboard.Get)
	admin.Group("products", "/products").
		GET("", h.Products.AdminList).
		POST("", h.Products.Create).
		PUT("/:id", h.Products.Update).
		PATCH("/:id/stock", h.Products.UpdateStock).
		PATCH("/:id/availability", h.Products.UpdateAvailability).
		DELETE("/:id", h.Products.Delete)
	admin.Group("uploads", "/uploads").
		POST("", h.Uploads.Upload).
		POST("/presign", h.Uploads.Presign).
		DELETE("/*key", h.Uploads.Delete)
	admin.Group("orders", "/orders").
		GET("", h.Orders.List).
		PATCH("/:id/status", h.Orders.UpdateStatus).
		POST("/:id/refund", h.Orders.Refund)
	admin.Group("users", "/users").
		GET("", h.Users.List).
		GET("/:id", h.Users.Get).
		PUT("/:id/role", h.Users.SetRole).
		POST("/:id/block", h.Users.Block).
		POST("/:id/unblock", h.Users.Unblock)
	admin.Group("coupons", "/coupons").
		GET("", h.Coupons.List).
		GET("/:id", h.Coupons.Get).
		POST("", h.Coupons.Create).
		PUT("/:id", h.Coupons.Update).
		DELETE("/:id", h.Coupons.Delete)
	admin.Group("notifications", "/notifications").
		POST("/broadcast", h.Notifications.Broadcast)
	admin.Group("contact", "/contact").
		GET("", h.Contact.List).
		GET("/:id", h.Contact.Get).
		PATCH("/:id/read", h.Contact.MarkRead).
		POST("/:id/reply", h.Contact.Reply).
		DELETE("/:id", h.Contact.Delete)

	return []RouteRegistrar{auth, products, orders, payments, coupons, spin, notifications, contact, system, admin}
}

// RegisterLocalUploads serves objects kept by the in-memory storage at /uploads
func RegisterLocalUploads(engine *gin.Engine, uploads *handler.UploadHandler) {
	engine.GET("/uploads/*key", uploads.ServeLocal)
	engine.PUT("/uploads/*key", uploads.PutLocal)
}
