package delivery

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/domain"
	"github.com/Mohamed-Fawzy15/Procrew-E-commerce-app/internal/store"
)

type OrderHandler struct {
	orders  *store.Orders
	catalog *store.Catalog
	log     *logrus.Logger
}

func NewOrderHandler(orders *store.Orders, catalog *store.Catalog, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		catalog: catalog,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter, auth, admin gin.HandlerFunc) {
	cart := router.Group("/cart", auth)
	{
		cart.GET("", h.GetCart)
		cart.POST("", h.AddToCart)
		cart.PATCH("/:productId", h.UpdateCartQuantity)
		cart.DELETE("/:productId", h.RemoveFromCart)
		cart.DELETE("", h.ResetCart)
	}
	orders := router.Group("/orders")
	{
		orders.POST("", auth, h.PlaceOrder)
		orders.GET("", auth, h.ListOrders)
		orders.PATCH("/:id", admin, h.UpdateOrderStatus)
		orders.DELETE("", admin, h.ResetOrders)
	}
}

func (h *OrderHandler) GetCart(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", h.orders.Cart())
}

func (h *OrderHandler) AddToCart(c *gin.Context) {
	var requestBody struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Handler: Failed to bind add-to-cart body: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if requestBody.Quantity == 0 {
		requestBody.Quantity = 1
	}

	product, err := h.catalog.GetByID(requestBody.ProductID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	if err := h.orders.AddToCart(c.Request.Context(), product, requestBody.Quantity); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product added to cart", h.orders.Cart())
}

func (h *OrderHandler) UpdateCartQuantity(c *gin.Context) {
	var requestBody struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Handler: Failed to bind cart quantity body: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if err := h.orders.UpdateQuantity(c.Request.Context(), c.Param("productId"), requestBody.Quantity); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart updated successfully", h.orders.Cart())
}

func (h *OrderHandler) RemoveFromCart(c *gin.Context) {
	if err := h.orders.RemoveFromCart(c.Request.Context(), c.Param("productId")); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product removed from cart", h.orders.Cart())
}

func (h *OrderHandler) ResetCart(c *gin.Context) {
	if err := h.orders.ResetCart(c.Request.Context()); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart cleared successfully", nil)
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	user, _ := CurrentUser(c)

	order, err := h.orders.PlaceOrder(c.Request.Context(), user)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}

	h.log.Infof("Handler: Order %s placed by %s", order.ID, order.UserID)
	SuccessResponse(c, http.StatusCreated, "Order placed successfully", order)
}

// ListOrders returns every order for admins, filtered by the optional
// status, userId, and date (YYYY-MM-DD) query parameters. Regular
// users only see their own orders.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	user, _ := CurrentUser(c)

	filter := domain.OrderFilter{}
	if user.Role == domain.RoleAdmin {
		filter.Status = domain.OrderStatus(c.Query("status"))
		if filter.Status != "" && !domain.IsValidStatus(filter.Status) {
			ErrorResponse(c, http.StatusBadRequest, "Invalid status value: "+string(filter.Status))
			return
		}
		filter.UserID = c.Query("userId")
		if v := c.Query("date"); v != "" {
			day, err := time.Parse("2006-01-02", v)
			if err != nil {
				ErrorResponse(c, http.StatusBadRequest, "Invalid date value, expected YYYY-MM-DD")
				return
			}
			filter.Date = &day
		}
	} else {
		// Substring matching is an admin search convenience; a user's
		// own view matches their email exactly.
		own := make([]domain.Order, 0)
		for _, order := range h.orders.ListOrders() {
			if strings.EqualFold(order.UserID, user.Email) {
				own = append(own, order)
			}
		}
		SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", own)
		return
	}

	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", h.orders.FilterOrders(filter))
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	var requestBody struct {
		Status *domain.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Handler: Failed to bind order status body: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if requestBody.Status == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: 'status' field is required")
		return
	}

	if err := h.orders.UpdateOrderStatus(c.Request.Context(), c.Param("id"), *requestBody.Status); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Order status updated successfully", nil)
}

func (h *OrderHandler) ResetOrders(c *gin.Context) {
	if err := h.orders.ResetOrders(c.Request.Context()); err != nil {
		ErrorResponse(c, mapErrorToStatus(err), err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders cleared successfully", nil)
}
