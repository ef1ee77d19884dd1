package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BuyerDashboard lists the buyer's orders and which can still be reviewed
func (h *Handler) BuyerDashboard(c *gin.Context) {
	orders, err := h.Orders.ForBuyer(c.Request.Context(), currentUser(c).UserID)
	if err != nil {
		pageError(c, err, "/")
		return
	}
	render(c, "buyer_dashboard.html", gin.H{"Title": "Buyer dashboard", "Orders": orders})
}

type PlaceOrderRequest struct {
	ProductID uint `form:"product_id" json:"product_id" binding:"required"`
	Quantity  int  `form:"quantity" json:"quantity" binding:"required"`
}

// PlaceOrder buys a quantity of one product
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "product_id and a positive quantity are required"})
		return
	}

	if _, err := h.Orders.Place(c.Request.Context(), currentUser(c).UserID, req.ProductID, req.Quantity); err != nil {
		jsonFail(c, err)
		return
	}
	jsonOK(c, "Order placed successfully!")
}

type SubmitReviewRequest struct {
	OrderID uint   `form:"order_id" json:"order_id" binding:"required"`
	Rating  int    `form:"rating" json:"rating" binding:"required"`
	Comment string `form:"comment" json:"comment"`
}

// SubmitReview records a review for a completed order
func (h *Handler) SubmitReview(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "order_id and rating are required"})
		return
	}

	if _, err := h.Reviews.Submit(c.Request.Context(), currentUser(c).UserID, req.OrderID, req.Rating, req.Comment); err != nil {
		jsonFail(c, err)
		return
	}
	jsonOK(c, "Review submitted successfully!")
}
