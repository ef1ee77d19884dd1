package handlers

import (
	"errors"
	"net/http"
	"strings"

	"agriconnect/logging"
	"agriconnect/middleware"
	"agriconnect/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves every page and JSON endpoint of the marketplace
type Handler struct {
	Users   *service.UserService
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Reviews *service.ReviewService
	Auth    *middleware.Auth
}

func New(db *gorm.DB, images service.ImageStore, auth *middleware.Auth) *Handler {
	return &Handler{
		Users:   service.NewUserService(db),
		Catalog: service.NewCatalogService(db, images),
		Orders:  service.NewOrderService(db),
		Reviews: service.NewReviewService(db),
		Auth:    auth,
	}
}

// render adds the caller and pending flash messages to data and renders a page
func render(c *gin.Context, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if id, ok := middleware.CurrentIdentity(c); ok {
		data["Me"] = &id
	}
	data["Flashes"] = middleware.Flashes(c)
	c.HTML(http.StatusOK, name, data)
}

// flashRedirect is how page handlers report failures
func flashRedirect(c *gin.Context, msg, location string) {
	middleware.AddFlash(c, msg)
	c.Redirect(http.StatusFound, location)
}

// pageError logs an unexpected failure and sends the user somewhere safe
func pageError(c *gin.Context, err error, location string) {
	logging.FromContext(c.Request.Context()).Error("page failed", "error", err)
	_ = c.Error(err)
	flashRedirect(c, "Something went wrong, please try again", location)
}

func jsonOK(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

func jsonFail(c *gin.Context, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed", "error", err)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"success": false, "message": msg})
}

// classify maps service errors to a status code and a user-facing message
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": ")
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, service.ErrOutOfStock):
		return http.StatusConflict, "Insufficient stock"
	case errors.Is(err, service.ErrDuplicateReview):
		return http.StatusConflict, "You have already reviewed this order"
	case errors.Is(err, service.ErrNotEligible):
		return http.StatusUnprocessableEntity, "Order not found or not eligible for review"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "Something went wrong, please try again"
	}
}
