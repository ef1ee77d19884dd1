package handlers

import (
	"errors"
	"net/http"

	"agriconnect/middleware"
	"agriconnect/models"
	"agriconnect/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type RegisterRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
	UserType string `form:"user_type" json:"user_type" binding:"required"`
	FullName string `form:"full_name" json:"full_name" binding:"required"`
	Phone    string `form:"phone" json:"phone"`
	Address  string `form:"address" json:"address"`
}

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RegisterForm shows the sign-up page for farmers or buyers
func (h *Handler) RegisterForm(c *gin.Context) {
	userType, ok := models.ParseUserType(c.Param("type"))
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, "register.html", gin.H{"Title": "Register", "UserType": userType})
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	bindErr := c.ShouldBind(&req)

	userType, ok := models.ParseUserType(req.UserType)
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	back := "/register/" + string(userType)
	if bindErr != nil {
		flashRedirect(c, registerBindMessage(bindErr), back)
		return
	}

	_, err := h.Users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		UserType: userType,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	switch {
	case errors.Is(err, service.ErrValidation):
		flashRedirect(c, "Please fill in all required fields", back)
	case errors.Is(err, service.ErrDuplicateEntity):
		flashRedirect(c, "Username or email already exists", back)
	case err != nil:
		pageError(c, err, back)
	default:
		flashRedirect(c, "Registration successful! Please login.", "/login")
	}
}

// registerBindMessage tells a malformed email apart from missing fields
func registerBindMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Field() == "Email" && fe.Tag() == "email" {
				return "Please enter a valid email address"
			}
		}
	}
	return "Please fill in all required fields"
}

func (h *Handler) LoginForm(c *gin.Context) {
	render(c, "login.html", gin.H{"Title": "Login"})
}

// Login authenticates a user and sets the identity cookie
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		flashRedirect(c, "Invalid username or password", "/login")
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, service.ErrUnauthorized) {
		flashRedirect(c, "Invalid username or password", "/login")
		return
	}
	if err != nil {
		pageError(c, err, "/login")
		return
	}

	if err := h.Auth.SignIn(c, user); err != nil {
		pageError(c, err, "/login")
		return
	}
	c.Redirect(http.StatusFound, dashboardFor(user.UserType))
}

func (h *Handler) Logout(c *gin.Context) {
	h.Auth.SignOut(c)
	c.Redirect(http.StatusFound, "/")
}

func dashboardFor(t models.UserType) string {
	if t == models.UserFarmer {
		return "/farmer/dashboard"
	}
	return "/buyer/dashboard"
}

// currentUser is a convenience for gated handlers
func currentUser(c *gin.Context) middleware.Identity {
	return middleware.MustIdentity(c)
}
