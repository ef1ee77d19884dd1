package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"agriconnect/middleware"
	"agriconnect/models"
	"agriconnect/service"
	"agriconnect/uploads"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// FarmerDashboard lists the farmer's products and the orders they received
func (h *Handler) FarmerDashboard(c *gin.Context) {
	me := currentUser(c)
	ctx := c.Request.Context()

	products, err := h.Catalog.FarmerProducts(ctx, me.UserID)
	if err != nil {
		pageError(c, err, "/")
		return
	}
	orders, err := h.Orders.ForFarmer(ctx, me.UserID)
	if err != nil {
		pageError(c, err, "/")
		return
	}

	render(c, "farmer_dashboard.html", gin.H{
		"Title":    "Farmer dashboard",
		"Products": products,
		"Orders":   orders,
		"Summary":  service.Summarize(orders),
	})
}

func (h *Handler) AddProductForm(c *gin.Context) {
	render(c, "add_product.html", gin.H{"Title": "Add product", "Categories": models.Categories})
}

type AddProductRequest struct {
	Name          string `form:"name" binding:"required"`
	Category      string `form:"category" binding:"required"`
	Price         string `form:"price" binding:"required"`
	Unit          string `form:"unit" binding:"required"`
	StockQuantity string `form:"stock_quantity" binding:"required"`
	Description   string `form:"description"`
}

// AddProduct stores an optional image and creates the product
func (h *Handler) AddProduct(c *gin.Context) {
	var req AddProductRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			flashRedirect(c, "Upload is too large", "/add_product")
			return
		}
		flashRedirect(c, "Please fill in all required fields", "/add_product")
		return
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		flashRedirect(c, "Price must be a number", "/add_product")
		return
	}
	stock, err := strconv.Atoi(strings.TrimSpace(req.StockQuantity))
	if err != nil {
		flashRedirect(c, "Stock quantity must be a whole number", "/add_product")
		return
	}

	var img *service.Upload
	if fh, err := c.FormFile("image"); err == nil && fh.Filename != "" {
		f, err := fh.Open()
		if err != nil {
			pageError(c, err, "/add_product")
			return
		}
		defer f.Close()
		img = &service.Upload{Filename: fh.Filename, Body: f}
	}

	res, err := h.Catalog.AddProduct(c.Request.Context(), service.NewProduct{
		FarmerID:      currentUser(c).UserID,
		Name:          req.Name,
		Category:      models.Category(req.Category),
		Price:         price,
		Unit:          req.Unit,
		StockQuantity: stock,
		Description:   req.Description,
	}, img)
	if errors.Is(err, service.ErrValidation) {
		flashRedirect(c, validationMessage(err), "/add_product")
		return
	}
	if err != nil {
		pageError(c, err, "/add_product")
		return
	}

	switch {
	case errors.Is(res.ImageErr, uploads.ErrNotImage):
		middleware.AddFlash(c, "Product added, but the image was skipped: only PNG, JPEG, GIF and WebP are accepted")
	case res.ImageErr != nil:
		_ = c.Error(res.ImageErr)
		middleware.AddFlash(c, "Product added, but the image could not be saved")
	default:
		middleware.AddFlash(c, "Product added successfully!")
	}
	c.Redirect(http.StatusFound, "/farmer/dashboard")
}

type UpdateOrderStatusRequest struct {
	OrderID uint   `form:"order_id" json:"order_id" binding:"required"`
	Status  string `form:"status" json:"status" binding:"required"`
}

// UpdateOrderStatus applies a farmer's status transition
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order_id and status are required"})
		return
	}
	status, ok := models.ParseOrderStatus(req.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unknown status " + strconv.Quote(req.Status)})
		return
	}

	if _, err := h.Orders.UpdateStatus(c.Request.Context(), currentUser(c).UserID, req.OrderID, status); err != nil {
		jsonFail(c, err)
		return
	}
	jsonOK(c, "Order status updated!")
}

func validationMessage(err error) string {
	_, msg := classify(err)
	if msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
