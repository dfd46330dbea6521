package handlers

import (
	"net/http"
	"strings"
	"time"

	"syntra-pos/internal/services/pos"
	"syntra-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

type POSHTTPHandler struct {
	orders   *pos.OrderService
	payments *pos.PaymentService
}

func NewPOSHTTPHandler(orders *pos.OrderService, payments *pos.PaymentService) *POSHTTPHandler {
	return &POSHTTPHandler{
		orders:   orders,
		payments: payments,
	}
}

// Query structs
type ListOrdersQuery struct {
	Date   string  `form:"date,omitempty"`
	Branch *string `form:"branch,omitempty"`
	Voided *bool   `form:"voided,omitempty"`
}

type ListPaymentsQuery struct {
	OrderID *int64  `form:"order_id,omitempty"`
	Date    string  `form:"date,omitempty"`
	Method  *string `form:"method,omitempty"`
}

func parseDateQuery(c *gin.Context, value string) (*time.Time, bool) {
	if strings.TrimSpace(value) == "" {
		return nil, true
	}
	day, err := utils.ParseDate(value)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid date, expected YYYY-MM-DD"))
		return nil, false
	}
	return &day, true
}

// --- Order Handlers ---

func (h *POSHTTPHandler) CreateOrder(c *gin.Context) {
	var req pos.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.Create(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Order created successfully", order))
}

func (h *POSHTTPHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order retrieved successfully", order))
}

// UpdateOrder keeps the stored lines when the body has no "lines" key and
// replaces them when it does, even with an empty array.
func (h *POSHTTPHandler) UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req pos.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := h.orders.Update(ctx, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Order updated successfully", order))
}

func (h *POSHTTPHandler) VoidOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	voided, err := h.orders.Void(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !voided {
		c.JSON(http.StatusNotFound, errorResponse("Order not found"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Order voided successfully", gin.H{"id": id, "voided": true}))
}

func (h *POSHTTPHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	deleted, err := h.orders.Delete(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, errorResponse("Order not found"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Order deleted successfully", gin.H{"id": id}))
}

func (h *POSHTTPHandler) ListOrders(c *gin.Context) {
	var query ListOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	date, ok := parseDateQuery(c, query.Date)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	orders, err := h.orders.List(ctx, pos.OrderFilter{
		Date:   date,
		Branch: query.Branch,
		Voided: query.Voided,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Orders retrieved successfully", orders, gin.H{
		"count": len(orders),
	}))
}

// --- Payment Handlers ---

func (h *POSHTTPHandler) CreatePayment(c *gin.Context) {
	var req pos.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	payment, err := h.payments.Create(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Payment created successfully", payment))
}

func (h *POSHTTPHandler) GetPayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	payment, err := h.payments.Get(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Payment retrieved successfully", payment))
}

func (h *POSHTTPHandler) UpdatePayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req pos.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	payment, err := h.payments.Update(ctx, id, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Payment updated successfully", payment))
}

func (h *POSHTTPHandler) DeletePayment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	deleted, err := h.payments.Delete(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, errorResponse("Payment not found"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Payment deleted successfully", gin.H{"id": id}))
}

func (h *POSHTTPHandler) ListPayments(c *gin.Context) {
	var query ListPaymentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	date, ok := parseDateQuery(c, query.Date)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	payments, err := h.payments.List(ctx, pos.PaymentFilter{
		OrderID: query.OrderID,
		Date:    date,
		Method:  query.Method,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Payments retrieved successfully", payments, gin.H{
		"count": len(payments),
	}))
}

func (h *POSHTTPHandler) Register(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.POST("/:id/void", h.VoidOrder)
	}

	payments := rg.Group("/payments")
	{
		payments.POST("", h.CreatePayment)
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.PUT("/:id", h.UpdatePayment)
		payments.DELETE("/:id", h.DeletePayment)
	}
}
