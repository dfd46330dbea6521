package handlers

import (
	"net/http"

	"syntra-pos/internal/services/catalog"
	"syntra-pos/internal/utils"

	"github.com/gin-gonic/gin"
)

type CatalogHTTPHandler struct {
	products *catalog.ProductService
	prices   *catalog.PriceCatalog
	clock    utils.Clock
}

func NewCatalogHTTPHandler(products *catalog.ProductService, prices *catalog.PriceCatalog, clock utils.Clock) *CatalogHTTPHandler {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	return &CatalogHTTPHandler{
		products: products,
		prices:   prices,
		clock:    clock,
	}
}

type ListProductsQuery struct {
	Active *bool `form:"active,omitempty"`
}

type EffectivePriceQuery struct {
	Date string `form:"date,omitempty"`
}

type ClosePriceRequest struct {
	ValidTo string `json:"valid_to" binding:"required"`
}

// --- Product Handlers ---

func (h *CatalogHTTPHandler) CreateProduct(c *gin.Context) {
	var req catalog.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.products.CreateProduct(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Product created successfully", product))
}

func (h *CatalogHTTPHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.products.GetProduct(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Product retrieved successfully", product))
}

func (h *CatalogHTTPHandler) ListProducts(c *gin.Context) {
	var query ListProductsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.products.ListProducts(ctx, query.Active)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Products retrieved successfully", products, gin.H{
		"count": len(products),
	}))
}

// --- Product Type Handlers ---

func (h *CatalogHTTPHandler) CreateProductType(c *gin.Context) {
	var req catalog.ProductTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	productType, err := h.products.CreateProductType(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Product type created successfully", productType))
}

func (h *CatalogHTTPHandler) ListProductTypes(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	types, err := h.products.ListProductTypes(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Product types retrieved successfully", types, gin.H{
		"count": len(types),
	}))
}

// --- Price Handlers ---

func (h *CatalogHTTPHandler) ListPrices(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	prices, err := h.prices.FindAll(ctx, productID)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]catalog.PriceDTO, 0, len(prices))
	for _, p := range prices {
		out = append(out, catalog.ToPriceDTO(p))
	}
	c.JSON(http.StatusOK, successWithMetaResponse("Prices retrieved successfully", out, gin.H{
		"count": len(out),
	}))
}

func (h *CatalogHTTPHandler) CreatePrice(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req catalog.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	price, err := h.prices.CreatePrice(ctx, productID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Price created successfully", catalog.ToPriceDTO(*price)))
}

// EffectivePrice resolves the price in force on ?date=YYYY-MM-DD, today when omitted.
func (h *CatalogHTTPHandler) EffectivePrice(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var query EffectivePriceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	asOf := h.clock.Now()
	if query.Date != "" {
		day, err := utils.ParseDate(query.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid date, expected YYYY-MM-DD"))
			return
		}
		asOf = day
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	price, err := h.prices.ResolveEffectivePrice(ctx, productID, asOf)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Effective price resolved", catalog.ToPriceDTO(*price)))
}

func (h *CatalogHTTPHandler) ClosePrice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ClosePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}
	validTo, err := utils.ParseDate(req.ValidTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid valid_to, expected YYYY-MM-DD"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	price, err := h.prices.ClosePrice(ctx, id, validTo)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Price closed successfully", catalog.ToPriceDTO(*price)))
}

func (h *CatalogHTTPHandler) DeletePrice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	deleted, err := h.prices.DeletePrice(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, errorResponse("Price not found"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Price deleted successfully", gin.H{"id": id}))
}

func (h *CatalogHTTPHandler) Register(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.GET("/:id/prices", h.ListPrices)
		products.POST("/:id/prices", h.CreatePrice)
		products.GET("/:id/prices/effective", h.EffectivePrice)
	}

	prices := rg.Group("/prices")
	{
		prices.POST("/:id/close", h.ClosePrice)
		prices.DELETE("/:id", h.DeletePrice)
	}

	productTypes := rg.Group("/product-types")
	{
		productTypes.POST("", h.CreateProductType)
		productTypes.GET("", h.ListProductTypes)
	}
}
