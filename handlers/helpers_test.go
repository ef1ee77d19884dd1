package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"agriconnect/config"
	"agriconnect/handlers"
	"agriconnect/logging"
	"agriconnect/middleware"
	"agriconnect/models"
	"agriconnect/routes"
	"agriconnect/uploads"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	DB        *gorm.DB
	H         *handlers.Handler
	Router    *gin.Engine
	UploadDir string
}

type jsonResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	db, err := config.InitDB(context.Background(), &config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseURL: filepath.Join(dir, "market.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	uploadDir := filepath.Join(dir, "images")
	h := handlers.New(db, uploads.NewLocalStore(uploadDir), middleware.NewAuth([]byte("test-jwt-secret")))
	h.Users.Cost = bcrypt.MinCost

	r, err := routes.NewRouter(h, routes.Options{
		SessionSecret:  []byte("test-session-secret"),
		UploadDir:      uploadDir,
		MaxUploadBytes: 1 << 20,
		Logger:         logging.NewWithWriter(io.Discard, "error"),
	})
	require.NoError(t, err)

	return &testEnv{DB: db, H: h, Router: r, UploadDir: uploadDir}
}

func (env *testEnv) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return env.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func newFormRequest(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func (env *testEnv) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return env.do(newFormRequest(path, form), cookies...)
}

func (env *testEnv) postMultipart(t *testing.T, path string, fields map[string]string, fileName string, file []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return env.do(req, cookies...)
}

// follow replays a redirect with the session cookie so flashes render
func (env *testEnv) follow(t *testing.T, rec *httptest.ResponseRecorder, cookies ...*http.Cookie) string {
	t.Helper()
	require.Equal(t, http.StatusFound, rec.Code)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name != middleware.IdentityCookie {
			cookies = append(cookies, ck)
		}
	}
	next := env.get(rec.Header().Get("Location"), cookies...)
	if next.Code == http.StatusFound {
		return env.follow(t, next, cookies...)
	}
	require.Equal(t, http.StatusOK, next.Code)
	return next.Body.String()
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) jsonResult {
	t.Helper()
	var res jsonResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func (env *testEnv) createUser(t *testing.T, name string, userType models.UserType) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: string(hash),
		UserType:     userType,
		FullName:     strings.ToUpper(name[:1]) + name[1:] + " Smith",
		Phone:        "555-0199",
		Address:      "River Road",
	}
	require.NoError(t, env.DB.Create(&u).Error)
	return u
}

func (env *testEnv) createProduct(t *testing.T, farmer models.User, name string, category models.Category, stock int) models.Product {
	t.Helper()
	p := models.Product{
		FarmerID:      farmer.ID,
		Name:          name,
		Category:      category,
		Price:         decimal.RequireFromString("2.00"),
		Unit:          "kg",
		StockQuantity: stock,
		Description:   "Grown at " + farmer.Address,
	}
	require.NoError(t, env.DB.Create(&p).Error)
	return p
}

func (env *testEnv) signIn(t *testing.T, user models.User) *http.Cookie {
	t.Helper()
	token, err := env.H.Auth.GenerateToken(&user)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.IdentityCookie, Value: token}
}
