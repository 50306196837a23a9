package handler

import (
	"net/http"

	"storefront-service/internal/service"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryAttributesRequest lists the attribute ids a category declares
type CategoryAttributesRequest struct {
	Attributes []uint `json:"attributes"`
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var req service.CategoryInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	category, err := h.catalog.CreateCategory(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "Failed to create category")
	}
	logger.FromContext(c).Info("Category created", zap.Uint("category_id", category.ID), zap.String("slug", category.Slug))
	return h.render(c, http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid category id")
	}
	var req service.CategoryInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	category, err := h.catalog.UpdateCategory(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(c, err, "Failed to update category")
	}
	return h.render(c, http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid category id")
	}
	if err := h.catalog.DeleteCategory(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "Failed to delete category")
	}
	logger.FromContext(c).Info("Category deleted", zap.Uint("category_id", id))
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SetCategoryAttributes(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid category id")
	}
	var req CategoryAttributesRequest
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	category, err := h.catalog.SetCategoryAttributes(c.Request().Context(), id, req.Attributes)
	if err != nil {
		return h.fail(c, err, "Failed to set category attributes")
	}
	return h.render(c, http.StatusOK, category)
}

func (h *Handler) CreateBrand(c echo.Context) error {
	var req service.BrandInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	brand, err := h.catalog.CreateBrand(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "Failed to create brand")
	}
	return h.render(c, http.StatusCreated, brand)
}

func (h *Handler) UpdateBrand(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid brand id")
	}
	var req service.BrandInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	brand, err := h.catalog.UpdateBrand(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(c, err, "Failed to update brand")
	}
	return h.render(c, http.StatusOK, brand)
}

func (h *Handler) DeleteBrand(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid brand id")
	}
	if err := h.catalog.DeleteBrand(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "Failed to delete brand")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateAttribute(c echo.Context) error {
	var req service.AttributeInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	attribute, err := h.catalog.CreateAttribute(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "Failed to create attribute")
	}
	return h.render(c, http.StatusCreated, attribute)
}

func (h *Handler) UpdateAttribute(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid attribute id")
	}
	var req service.AttributeInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	attribute, err := h.catalog.UpdateAttribute(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(c, err, "Failed to update attribute")
	}
	return h.render(c, http.StatusOK, attribute)
}

func (h *Handler) DeleteAttribute(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid attribute id")
	}
	if err := h.catalog.DeleteAttribute(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "Failed to delete attribute")
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminGetProduct returns a product including inactive variants
func (h *Handler) AdminGetProduct(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid product id")
	}
	product, err := h.catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "Product not found")
	}
	return h.render(c, http.StatusOK, product)
}

func (h *Handler) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	var req service.ProductInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	log.Info("Product creation request",
		zap.String("name", req.Name),
		zap.String("slug", req.Slug),
		zap.Uint("category_id", req.Category))

	product, err := h.catalog.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "Failed to create product")
	}
	log.Info("Product created successfully", zap.Uint("product_id", product.ID))
	return h.render(c, http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid product id")
	}
	var req service.ProductInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	product, err := h.catalog.UpdateProduct(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(c, err, "Failed to update product")
	}
	return h.render(c, http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid product id")
	}
	if err := h.catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "Failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateVariant(c echo.Context) error {
	productID, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid product id")
	}
	var req service.VariantInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	variant, err := h.catalog.CreateVariant(c.Request().Context(), productID, req)
	if err != nil {
		return h.fail(c, err, "Failed to create variant")
	}
	return h.render(c, http.StatusCreated, variant)
}

func (h *Handler) UpdateVariant(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid variant id")
	}
	var req service.VariantInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	variant, err := h.catalog.UpdateVariant(c.Request().Context(), id, req)
	if err != nil {
		return h.fail(c, err, "Failed to update variant")
	}
	return h.render(c, http.StatusOK, variant)
}

func (h *Handler) DeleteVariant(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid variant id")
	}
	if err := h.catalog.DeleteVariant(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "Failed to delete variant")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListImages(c echo.Context) error {
	productID, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid product id")
	}
	images, err := h.catalog.ListImages(c.Request().Context(), productID)
	if err != nil {
		return h.fail(c, err, "Failed to list images")
	}
	return h.render(c, http.StatusOK, images)
}

func (h *Handler) AddImage(c echo.Context) error {
	productID, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid product id")
	}
	var req service.ImageInput
	if err := h.bind(c, &req); err != nil {
		return h.fail(c, err, "Invalid request data")
	}
	image, err := h.catalog.AddImage(c.Request().Context(), productID, req)
	if err != nil {
		return h.fail(c, err, "Failed to add image")
	}
	return h.render(c, http.StatusCreated, image)
}

func (h *Handler) DeleteImage(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid image id")
	}
	if err := h.catalog.DeleteImage(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "Failed to delete image")
	}
	return c.NoContent(http.StatusNoContent)
}

// SetMainImage makes the image its product's only main image
func (h *Handler) SetMainImage(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return h.fail(c, err, "Invalid image id")
	}
	image, err := h.catalog.SetMainImage(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err, "Failed to set main image")
	}
	return h.render(c, http.StatusOK, image)
}
