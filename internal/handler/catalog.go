package handler

import (
	"net/http"

	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListCategories handles retrieving every category
func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.catalog.ListCategories(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to list categories")
	}
	return h.render(c, http.StatusOK, categories)
}

// CategoryTree handles retrieving the categories nested under their parents
func (h *Handler) CategoryTree(c echo.Context) error {
	tree, err := h.catalog.CategoryTree(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to build category tree")
	}
	return h.render(c, http.StatusOK, tree)
}

func (h *Handler) GetCategory(c echo.Context) error {
	category, err := h.catalog.CategoryBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, "Category not found")
	}
	return h.render(c, http.StatusOK, category)
}

func (h *Handler) CategoryChildren(c echo.Context) error {
	children, err := h.catalog.CategoryChildren(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, "Failed to list subcategories")
	}
	return h.render(c, http.StatusOK, children)
}

func (h *Handler) CategoryProducts(c echo.Context) error {
	products, err := h.catalog.CategoryProducts(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, "Failed to list category products")
	}
	return h.render(c, http.StatusOK, products)
}

func (h *Handler) ListBrands(c echo.Context) error {
	brands, err := h.catalog.ListBrands(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to list brands")
	}
	return h.render(c, http.StatusOK, brands)
}

func (h *Handler) GetBrand(c echo.Context) error {
	brand, err := h.catalog.BrandBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, "Brand not found")
	}
	return h.render(c, http.StatusOK, brand)
}

func (h *Handler) BrandProducts(c echo.Context) error {
	products, err := h.catalog.BrandProducts(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, "Failed to list brand products")
	}
	return h.render(c, http.StatusOK, products)
}

// ListProducts handles retrieving visible products, optionally filtered by category and brand slug
func (h *Handler) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	category, brand := c.QueryParam("category"), c.QueryParam("brand")
	if category != "" || brand != "" {
		log.Debug("Filtering products", zap.String("category", category), zap.String("brand", brand))
	}

	products, err := h.catalog.ListProducts(c.Request().Context(), category, brand)
	if err != nil {
		return h.fail(c, err, "Failed to list products")
	}
	return h.render(c, http.StatusOK, products)
}

func (h *Handler) GetProduct(c echo.Context) error {
	product, err := h.catalog.ProductBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, "Product not found")
	}
	return h.render(c, http.StatusOK, product)
}

func (h *Handler) ListVariants(c echo.Context) error {
	variants, err := h.catalog.ListVariants(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to list variants")
	}
	return h.render(c, http.StatusOK, variants)
}

func (h *Handler) GetVariant(c echo.Context) error {
	variant, err := h.catalog.VariantBySKU(c.Request().Context(), c.Param("sku"))
	if err != nil {
		return h.fail(c, err, "Variant not found")
	}
	return h.render(c, http.StatusOK, variant)
}

func (h *Handler) ListAttributes(c echo.Context) error {
	attributes, err := h.catalog.ListAttributes(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to list attributes")
	}
	return h.render(c, http.StatusOK, attributes)
}

func (h *Handler) GetAttribute(c echo.Context) error {
	attribute, err := h.catalog.AttributeBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.fail(c, err, "Attribute not found")
	}
	return h.render(c, http.StatusOK, attribute)
}

// Overview handles the storefront landing payload: brands, categories and products per category
func (h *Handler) Overview(c echo.Context) error {
	overview, err := h.overview.Overview(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "Failed to build overview")
	}
	return h.render(c, http.StatusOK, overview)
}
