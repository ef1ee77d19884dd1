package handlers

import (
	"net/http"
	"strconv"

	"agriconnect/middleware"
	"agriconnect/service"

	"github.com/gin-gonic/gin"
)

// OrderHistory returns the status changes of an order to its buyer or farmer
func (h *Handler) OrderHistory(c *gin.Context) {
	me, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Please login"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		jsonFail(c, service.ErrNotFound)
		return
	}

	history, err := h.Orders.History(c.Request.Context(), me.UserID, uint(id))
	if err != nil {
		jsonFail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": history})
}
