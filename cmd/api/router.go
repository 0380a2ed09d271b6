package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-backend/internal/shared/middleware"
	"storefront-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(),
		middleware.CORS(c.Config.App.AllowedOrigins),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cartMiddlewareConfig := middleware.DefaultCartMiddlewareConfig(c.CartService)
	if c.Config.App.Environment == "development" {
		cartMiddlewareConfig.CookieSecure = false
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupUserRoutes(v1, c)
		setupCategoryRoutes(v1, c)
		setupProductRoutes(v1, c)
		setupReviewRoutes(v1, c)
		setupCartRoutes(v1, c, cartMiddlewareConfig)
		setupCouponRoutes(v1, c)
		setupOrderRoutes(v1, c, cartMiddlewareConfig)
		setupUploadRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.Refresh)
	}
}

func setupUserRoutes(v1 *gin.RouterGroup, c *container.Container) {
	users := v1.Group("/users", middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		users.GET("/me", c.UserHandler.GetProfile)
		users.PATCH("/me", c.UserHandler.UpdateProfile)
		users.POST("/me/password", c.UserHandler.ChangePassword)
		users.GET("/me/reviews", c.ReviewHandler.ListMine)
		users.GET("/me/orders", c.OrderHandler.ListMine)
		users.GET("/me/orders/:id", c.OrderHandler.GetMine)
	}
}

func setupCategoryRoutes(v1 *gin.RouterGroup, c *container.Container) {
	categories := v1.Group("/categories")
	{
		categories.GET("", c.CategoryHandler.GetAll)
		categories.GET("/tree", c.CategoryHandler.GetTree)
		categories.GET("/:id", c.CategoryHandler.GetByID)
		categories.GET("/:id/breadcrumb", c.CategoryHandler.GetBreadcrumb)
		categories.GET("/slug/:slug", c.CategoryHandler.GetBySlug)
	}
}

func setupProductRoutes(v1 *gin.RouterGroup, c *container.Container) {
	products := v1.Group("/products")
	{
		products.GET("", c.ProductHandler.List)
		products.GET("/:id", c.ProductHandler.GetByID)
		products.GET("/slug/:slug", c.ProductHandler.GetBySlug)
		products.GET("/:id/reviews", c.ReviewHandler.ListForProduct)
		products.GET("/:id/rating", c.ReviewHandler.Summary)
	}
}

func setupReviewRoutes(v1 *gin.RouterGroup, c *container.Container) {
	reviews := v1.Group("/reviews", middleware.AuthMiddleware(c.Config.JWT.Secret))
	{
		reviews.POST("", c.ReviewHandler.Create)
		reviews.PATCH("/:id", c.ReviewHandler.Update)
		reviews.DELETE("/:id", c.ReviewHandler.Delete)
	}
}

// Cart routes run behind OptionalAuthMiddleware plus CartMiddleware so both
// guests and authenticated users resolve to a cart.
func setupCartRoutes(v1 *gin.RouterGroup, c *container.Container, cartConfig middleware.CartMiddlewareConfig) {
	cart := v1.Group("/cart",
		middleware.OptionalAuthMiddleware(c.Config.JWT.Secret),
		middleware.CartMiddleware(cartConfig),
	)
	{
		cart.GET("", c.CartHandler.GetCart)
		cart.POST("/items", c.CartHandler.AddItem)
		cart.POST("/items/batch", c.CartHandler.AddItems)
		cart.PATCH("/items/:product_id", c.CartHandler.UpdateQuantity)
		cart.DELETE("/items/:product_id", c.CartHandler.RemoveItem)
		cart.DELETE("/items", c.CartHandler.ClearCart)
		cart.POST("/coupon", c.CartHandler.ApplyCoupon)
		cart.DELETE("/coupon", c.CartHandler.RemoveCoupon)
	}

	v1.POST("/cart/migrate",
		middleware.AuthMiddleware(c.Config.JWT.Secret),
		c.CartHandler.MigrateCart,
	)
}

func setupCouponRoutes(v1 *gin.RouterGroup, c *container.Container) {
	coupons := v1.Group("/coupons", middleware.OptionalAuthMiddleware(c.Config.JWT.Secret))
	{
		coupons.GET("/:code/check", c.CouponHandler.Check)
	}
}

func setupOrderRoutes(v1 *gin.RouterGroup, c *container.Container, cartConfig middleware.CartMiddlewareConfig) {
	v1.POST("/checkout",
		middleware.OptionalAuthMiddleware(c.Config.JWT.Secret),
		middleware.CartMiddleware(cartConfig),
		c.OrderHandler.Checkout,
	)
	v1.GET("/orders/track/:number", c.OrderHandler.TrackByNumber)
}

func setupUploadRoutes(v1 *gin.RouterGroup, c *container.Container) {
	uploads := v1.Group("/uploads",
		middleware.AuthMiddleware(c.Config.JWT.Secret),
		middleware.AdminMiddleware(),
	)
	{
		uploads.POST("", c.UploadHandler.Upload)
		uploads.DELETE("", c.UploadHandler.Delete)
	}
}

func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin",
		middleware.AuthMiddleware(c.Config.JWT.Secret),
		middleware.AdminMiddleware(),
	)
	{
		categories := admin.Group("/categories")
		{
			categories.POST("", c.CategoryHandler.Create)
			categories.PATCH("/:id", c.CategoryHandler.Update)
			categories.DELETE("/:id", c.CategoryHandler.Delete)
		}

		products := admin.Group("/products")
		{
			products.POST("", c.ProductHandler.Create)
			products.PATCH("/:id", c.ProductHandler.Update)
			products.DELETE("/:id", c.ProductHandler.Delete)
			products.POST("/:id/image", c.ProductHandler.UploadImage)
			products.GET("/export", c.ProductHandler.Export)
		}

		orders := admin.Group("/orders")
		{
			orders.GET("", c.OrderHandler.List)
			orders.GET("/:id", c.OrderHandler.GetByID)
			orders.PATCH("/:id/status", c.OrderHandler.UpdateStatus)
		}

		carts := admin.Group("/carts")
		{
			carts.GET("", c.CartHandler.ListCarts)
			carts.GET("/:id", c.CartHandler.GetCartByID)
			carts.DELETE("/:id", c.CartHandler.DeleteCart)
		}

		coupons := admin.Group("/coupons")
		{
			coupons.POST("", c.CouponHandler.Create)
			coupons.GET("", c.CouponHandler.List)
			coupons.GET("/:id", c.CouponHandler.GetByID)
			coupons.PATCH("/:id", c.CouponHandler.Update)
			coupons.DELETE("/:id", c.CouponHandler.Delete)
			coupons.GET("/:id/redemptions", c.CouponHandler.ListRedemptions)
		}

		reviews := admin.Group("/reviews")
		{
			reviews.GET("/pending", c.ReviewHandler.ListPending)
			reviews.PATCH("/:id/moderate", c.ReviewHandler.Moderate)
		}

		users := admin.Group("/users")
		{
			users.GET("", c.UserHandler.ListUsers)
			users.PATCH("/:id", c.UserHandler.AdminUpdateUser)
		}
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "cache": "ok"}

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			checks["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"status":  http.StatusText(status),
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
