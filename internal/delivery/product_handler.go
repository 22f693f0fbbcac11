package delivery

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/domain"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/store"
)

type ProductHandler struct {
	catalog *store.Catalog
	log     *logrus.Logger
}

func NewProductHandler(catalog *store.Catalog, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter, admin gin.HandlerFunc) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/search", h.SearchProducts)
		products.GET("/:id", h.GetProductByID)
		products.POST("", admin, h.CreateProduct)
		products.PATCH("/:id", admin, h.UpdateProduct)
		products.DELETE("/:id", admin, h.DeleteProduct)
		products.DELETE("", admin, h.ResetProducts)
	}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	products := h.catalog.List()
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) SearchProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		Category: c.Query("category"),
	}
	if v := c.Query("priceMin"); v != "" {
		min, err := strconv.ParseFloat(v, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid priceMin value")
			return
		}
		filter.PriceMin = &min
	}
	if v := c.Query("priceMax"); v != "" {
		max, err := strconv.ParseFloat(v, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid priceMax value")
			return
		}
		filter.PriceMax = &max
	}
	if v := c.Query("isAvailable"); v != "" {
		avail, err := strconv.ParseBool(v)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid isAvailable value")
			return
		}
		filter.IsAvailable = &avail
	}

	products := h.catalog.Search(c.Query("q"), filter)
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	product, err := h.catalog.GetByID(c.Param("id"))
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var draft domain.ProductDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.log.Warnf("Handler: Failed to bind product draft: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.catalog.Add(c.Request.Context(), draft)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusCreated, "Product created successfully", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var draft domain.ProductDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.log.Warnf("Handler: Failed to bind product draft for update: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id := c.Param("id")
	if err := h.catalog.Update(c.Request.Context(), id, draft); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	product, err := h.catalog.GetByID(id)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.Remove(c.Request.Context(), c.Param("id")); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) ResetProducts(c *gin.Context) {
	if err := h.catalog.ResetAll(c.Request.Context()); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Catalog cleared successfully", nil)
}
