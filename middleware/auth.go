package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"agriconnect/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// IdentityCookie holds the signed identity token
	IdentityCookie = "agri_identity"
	identityKey    = "identity"
)

// Identity is the caller as established for a single request
type Identity struct {
	UserID   uint
	Username string
	UserType models.UserType
}

type Claims struct {
	UserID   uint            `json:"user_id"`
	Username string          `json:"username"`
	UserType models.UserType `json:"user_type"`
	jwt.RegisteredClaims
}

// Auth issues and verifies identity tokens
type Auth struct {
	Secret []byte
	TTL    time.Duration
	// Secure marks the cookie HTTPS-only
	Secure bool
}

func NewAuth(secret []byte) *Auth {
	return &Auth{Secret: secret, TTL: 24 * time.Hour}
}

// GenerateToken creates a signed JWT for a given user
func (a *Auth) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		UserType: user.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.Secret)
}

// ParseToken validates a token and returns the identity it carries
func (a *Auth) ParseToken(tokenStr string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid || claims.UserID == 0 {
		return Identity{}, errors.New("invalid token")
	}
	if _, ok := models.ParseUserType(string(claims.UserType)); !ok {
		return Identity{}, errors.New("invalid user type in token")
	}
	return Identity{UserID: claims.UserID, Username: claims.Username, UserType: claims.UserType}, nil
}

// SignIn writes the identity cookie for user
func (a *Auth) SignIn(c *gin.Context, user *models.User) error {
	token, err := a.GenerateToken(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(IdentityCookie, token, int(a.TTL.Seconds()), "/", "", a.Secure, true)
	return nil
}

// SignOut expires the identity cookie
func (a *Auth) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(IdentityCookie, "", -1, "/", "", a.Secure, true)
}

// LoadIdentity reads the identity cookie, or a Bearer token, into the request context.
// Requests without a valid token continue anonymously.
func (a *Auth) LoadIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(IdentityCookie)
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenStr != "" {
			if id, err := a.ParseToken(tokenStr); err == nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the caller, if signed in
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// MustIdentity returns the caller on routes already gated by a Require* middleware
func MustIdentity(c *gin.Context) Identity {
	id, _ := CurrentIdentity(c)
	return id
}

// RequirePage redirects to the login page unless the caller has the given user type
func RequirePage(userType models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := CurrentIdentity(c); ok && id.UserType == userType {
			c.Next()
			return
		}
		AddFlash(c, "Please login as "+string(userType))
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// RequireJSON answers {success:false} unless the caller has the given user type
func RequireJSON(userType models.UserType, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := CurrentIdentity(c); ok && id.UserType == userType {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
	}
}
