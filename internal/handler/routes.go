package handler

import (
	"storefront-service/internal/middleware"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
)

// Routes registers every storefront endpoint on e
func (h *Handler) Routes(e *echo.Echo, metrics *prometheus.Metrics) {
	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	requireAuth := middleware.AuthMiddleware(h.identity)

	auth := e.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/token", h.Login)
	auth.POST("/login", h.Login)
	auth.POST("/token/refresh", h.RefreshToken)
	auth.POST("/logout", h.Logout, requireAuth)
	auth.GET("/profile", h.Profile, requireAuth)
	auth.PATCH("/profile", h.UpdateProfile, requireAuth)
	auth.DELETE("/profile", h.DeleteAccount, requireAuth)
	auth.POST("/change-password", h.ChangePassword, requireAuth)

	api := e.Group("/api")
	api.GET("/overview", h.Overview)

	api.GET("/categories", h.ListCategories)
	api.GET("/categories/tree", h.CategoryTree)
	api.GET("/categories/:slug", h.GetCategory)
	api.GET("/categories/:slug/children", h.CategoryChildren)
	api.GET("/categories/:slug/products", h.CategoryProducts)

	api.GET("/brands", h.ListBrands)
	api.GET("/brands/:slug", h.GetBrand)
	api.GET("/brands/:slug/products", h.BrandProducts)

	api.GET("/products", h.ListProducts)
	api.GET("/products/:slug", h.GetProduct)

	api.GET("/variants", h.ListVariants)
	api.GET("/variants/:sku", h.GetVariant)

	api.GET("/attributes", h.ListAttributes)
	api.GET("/attributes/:slug", h.GetAttribute)

	orders := api.Group("/orders", requireAuth)
	orders.POST("", h.CreateOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)

	admin := api.Group("/admin", requireAuth, middleware.StaffOnly)
	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id", h.UpdateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)
	admin.PUT("/categories/:id/attributes", h.SetCategoryAttributes)

	admin.POST("/brands", h.CreateBrand)
	admin.PUT("/brands/:id", h.UpdateBrand)
	admin.DELETE("/brands/:id", h.DeleteBrand)

	admin.POST("/attributes", h.CreateAttribute)
	admin.PUT("/attributes/:id", h.UpdateAttribute)
	admin.DELETE("/attributes/:id", h.DeleteAttribute)

	admin.GET("/products/:id", h.AdminGetProduct)
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)

	admin.POST("/products/:id/variants", h.CreateVariant)
	admin.PUT("/variants/:id", h.UpdateVariant)
	admin.DELETE("/variants/:id", h.DeleteVariant)

	admin.GET("/products/:id/images", h.ListImages)
	admin.POST("/products/:id/images", h.AddImage)
	admin.DELETE("/images/:id", h.DeleteImage)
	admin.POST("/images/:id/main", h.SetMainImage)
}
