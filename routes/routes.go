package routes

import (
	"fmt"
	"log/slog"

	"agriconnect/handlers"
	"agriconnect/middleware"
	"agriconnect/models"
	"agriconnect/templates"

	"github.com/gin-gonic/gin"
)

type Options struct {
	SessionSecret  []byte
	SecureCookies  bool
	UploadDir      string
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// NewRouter builds the engine with its middleware, templates and routes
func NewRouter(h *handlers.Handler, opts Options) (*gin.Engine, error) {
	tmpl, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = 8 << 20
	r.Use(
		gin.Recovery(),
		middleware.RequestLogger(opts.Logger),
		middleware.Sessions(opts.SessionSecret, opts.SecureCookies),
		h.Auth.LoadIdentity(),
	)

	SetupRoutes(r, h, opts)
	return r, nil
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	// ── Public routes ──────────────────────────────────────────────
	r.GET("/", h.Index)
	r.GET("/health", h.Health)
	r.GET("/api/order-lifecycle", h.OrderLifecycle)
	r.Static("/static/images", opts.UploadDir)

	r.GET("/register/:type", h.RegisterForm)
	r.POST("/register", h.Register)
	r.GET("/login", h.LoginForm)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	r.GET("/products", h.ListProducts)
	r.GET("/product/:id", h.ProductDetail)
	r.GET("/order/:id/history", h.OrderHistory)

	// ── Farmer pages ───────────────────────────────────────────────
	farmerPages := r.Group("/", middleware.RequirePage(models.UserFarmer))
	{
		farmerPages.GET("/farmer/dashboard", h.FarmerDashboard)
		farmerPages.GET("/add_product", h.AddProductForm)
		farmerPages.POST("/add_product", middleware.MaxBodyBytes(opts.MaxUploadBytes), h.AddProduct)
	}

	// ── Buyer pages ────────────────────────────────────────────────
	buyerPages := r.Group("/", middleware.RequirePage(models.UserBuyer))
	{
		buyerPages.GET("/buyer/dashboard", h.BuyerDashboard)
	}

	// ── JSON actions ───────────────────────────────────────────────
	buyer := r.Group("/", middleware.RequireJSON(models.UserBuyer, "Please login as buyer"))
	{
		buyer.POST("/place_order", h.PlaceOrder)
		buyer.POST("/submit_review", h.SubmitReview)
	}
	farmer := r.Group("/", middleware.RequireJSON(models.UserFarmer, "Unauthorized"))
	{
		farmer.POST("/update_order_status", h.UpdateOrderStatus)
	}
}
