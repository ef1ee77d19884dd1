package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"agriconnect/models"
	"agriconnect/service"
	"agriconnect/statemachine"

	"github.com/gin-gonic/gin"
)

const homeProductCount = 6

// Index shows the newest in-stock products
func (h *Handler) Index(c *gin.Context) {
	products, err := h.Catalog.List(c.Request.Context(), service.ProductFilter{Limit: homeProductCount})
	if err != nil {
		_ = c.Error(err)
		products = nil
	}
	render(c, "index.html", gin.H{"Title": "Home", "Products": products})
}

// ListProducts filters the catalog by category and search term
func (h *Handler) ListProducts(c *gin.Context) {
	filter := service.ProductFilter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := c.Query("category"); raw != "" {
		category, ok := models.ParseCategory(raw)
		if !ok {
			flashRedirect(c, "Unknown category", "/products")
			return
		}
		filter.Category = category
	}

	ctx := c.Request.Context()
	products, err := h.Catalog.List(ctx, filter)
	if err != nil {
		pageError(c, err, "/")
		return
	}
	categories, err := h.Catalog.Categories(ctx)
	if err != nil {
		pageError(c, err, "/")
		return
	}

	render(c, "product_list.html", gin.H{
		"Title":           "Products",
		"Products":        products,
		"Categories":      categories,
		"CurrentCategory": string(filter.Category),
		"SearchTerm":      filter.Search,
	})
}

// ProductDetail shows one product with its reviews
func (h *Handler) ProductDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		flashRedirect(c, "Product not found", "/products")
		return
	}

	detail, err := h.Catalog.Get(c.Request.Context(), uint(id))
	if errors.Is(err, service.ErrNotFound) {
		flashRedirect(c, "Product not found", "/products")
		return
	}
	if err != nil {
		pageError(c, err, "/products")
		return
	}

	render(c, "product_detail.html", gin.H{
		"Title":         detail.Product.Name,
		"Product":       detail.Product,
		"Reviews":       detail.Reviews,
		"AverageRating": detail.AverageRating,
	})
}

// OrderLifecycle returns the order state machine for API clients
func (h *Handler) OrderLifecycle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"initial_state":   models.StatusPending,
		"terminal_states": statemachine.TerminalStatuses(),
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "AgriConnect Marketplace",
	})
}
