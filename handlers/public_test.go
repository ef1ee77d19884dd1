package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"agriconnect/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.createUser(t, "asha", models.UserFarmer)
	env.createProduct(t, farmer, "Heirloom Tomatoes", models.CategoryVegetables, 5)
	env.createProduct(t, farmer, "Gala Apples", models.CategoryFruits, 3)
	env.createProduct(t, farmer, "Sold Out Carrots", models.CategoryVegetables, 0)

	rec := env.get("/products")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Heirloom Tomatoes")
	assert.Contains(t, body, "Gala Apples")
	assert.NotContains(t, body, "Sold Out Carrots")

	rec = env.get("/products?category=fruits")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Gala Apples")
	assert.NotContains(t, rec.Body.String(), "Heirloom Tomatoes")

	rec = env.get("/products?search=TOMATO")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Heirloom Tomatoes")
	assert.NotContains(t, rec.Body.String(), "Gala Apples")

	rec = env.get("/products?category=plastics")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/products", rec.Header().Get("Location"))
	assert.Contains(t, env.follow(t, rec), "Unknown category")
}

func TestIndexShowsNewestProducts(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.createUser(t, "asha", models.UserFarmer)
	for i := 1; i <= 7; i++ {
		env.createProduct(t, farmer, "Batch "+strconv.Itoa(i), models.CategoryGrains, 10)
	}

	rec := env.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Batch 7")
	assert.Contains(t, body, "Batch 2")
	assert.NotContains(t, body, "Batch 1<")
}

func TestProductDetail(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.createUser(t, "asha", models.UserFarmer)
	buyer := env.createUser(t, "ravi", models.UserBuyer)
	p := env.createProduct(t, farmer, "Tomatoes", models.CategoryVegetables, 5)

	order, err := env.H.Orders.Place(testContext(t), buyer.ID, p.ID, 1)
	require.NoError(t, err)
	_, err = env.H.Orders.UpdateStatus(testContext(t), farmer.ID, order.ID, models.StatusCompleted)
	require.NoError(t, err)
	_, err = env.H.Reviews.Submit(testContext(t), buyer.ID, order.ID, 4, "Sweet and juicy")
	require.NoError(t, err)

	rec := env.get("/product/"+strconv.FormatUint(uint64(p.ID), 10), env.signIn(t, buyer))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Tomatoes")
	assert.Contains(t, body, "Sweet and juicy")
	assert.Contains(t, body, "4.0 / 5")
	assert.Contains(t, body, `action="/place_order"`)

	for _, path := range []string{"/product/9999", "/product/abc"} {
		rec := env.get(path)
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/products", rec.Header().Get("Location"), path)
		assert.Contains(t, env.follow(t, rec), "Product not found", path)
	}
}

func TestAddProduct(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.createUser(t, "asha", models.UserFarmer)
	asFarmer := env.signIn(t, farmer)

	fields := func(name string) map[string]string {
		return map[string]string{
			"name":           name,
			"category":       "vegetables",
			"price":          "3.50",
			"unit":           "kg",
			"stock_quantity": "12",
			"description":    "Picked this morning",
		}
	}

	rec := env.get("/add_product", asFarmer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Add a product")

	t.Run("with image", func(t *testing.T) {
		rec := env.postMultipart(t, "/add_product", fields("Cherry Tomatoes"), "My Tomatoes.png", pngBytes, asFarmer)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/farmer/dashboard", rec.Header().Get("Location"))
		assert.Contains(t, env.follow(t, rec, asFarmer), "Product added successfully!")

		var p models.Product
		require.NoError(t, env.DB.First(&p, "name = ?", "Cherry Tomatoes").Error)
		assert.Equal(t, 12, p.StockQuantity)
		require.NotNil(t, p.ImageFilename)
		assert.FileExists(t, filepath.Join(env.UploadDir, *p.ImageFilename))

		img := env.get("/static/images/" + *p.ImageFilename)
		assert.Equal(t, http.StatusOK, img.Code)
	})

	t.Run("non-image upload is skipped", func(t *testing.T) {
		rec := env.postMultipart(t, "/add_product", fields("Kale"), "kale.png", []byte("definitely not a picture"), asFarmer)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Contains(t, env.follow(t, rec, asFarmer), "the image was skipped")

		var p models.Product
		require.NoError(t, env.DB.First(&p, "name = ?", "Kale").Error)
		assert.Nil(t, p.ImageFilename)
	})

	t.Run("without image", func(t *testing.T) {
		rec := env.postMultipart(t, "/add_product", fields("Spinach"), "", nil, asFarmer)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/farmer/dashboard", rec.Header().Get("Location"))

		var p models.Product
		require.NoError(t, env.DB.First(&p, "name = ?", "Spinach").Error)
		assert.Nil(t, p.ImageFilename)
	})

	invalid := []struct {
		name  string
		field string
		value string
		msg   string
	}{
		{"missing name", "name", "", "Please fill in all required fields"},
		{"bad price", "price", "cheap", "Price must be a number"},
		{"bad stock", "stock_quantity", "lots", "Stock quantity must be a whole number"},
		{"unknown category", "category", "plastics", ""},
		{"negative price", "price", "-1", ""},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			f := fields("Invalid " + tt.name)
			f[tt.field] = tt.value
			rec := env.postMultipart(t, "/add_product", f, "", nil, asFarmer)
			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/add_product", rec.Header().Get("Location"))
			if tt.msg != "" {
				assert.Contains(t, env.follow(t, rec, asFarmer), tt.msg)
			}
		})
	}

	var count int64
	require.NoError(t, env.DB.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	entries, err := os.ReadDir(env.UploadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAddProductBodyLimit(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.createUser(t, "asha", models.UserFarmer)

	big := make([]byte, 2<<20)
	copy(big, pngBytes)
	rec := env.postMultipart(t, "/add_product", map[string]string{
		"name": "Huge", "category": "other", "price": "1", "unit": "each", "stock_quantity": "1",
	}, "huge.png", big, env.signIn(t, farmer))

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/add_product", rec.Header().Get("Location"))

	var count int64
	require.NoError(t, env.DB.Model(&models.Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFarmerDashboard(t *testing.T) {
	env := newTestEnv(t)
	farmer := env.createUser(t, "asha", models.UserFarmer)
	buyer := env.createUser(t, "ravi", models.UserBuyer)
	p := env.createProduct(t, farmer, "Tomatoes", models.CategoryVegetables, 5)
	_, err := env.H.Orders.Place(testContext(t), buyer.ID, p.ID, 2)
	require.NoError(t, err)

	rec := env.get("/farmer/dashboard", env.signIn(t, farmer))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Tomatoes")
	assert.Contains(t, body, buyer.FullName)
	assert.Contains(t, body, buyer.Phone)
}

func TestHealthAndLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = env.get("/api/order-lifecycle")
	require.Equal(t, http.StatusOK, rec.Code)

	var lifecycle struct {
		InitialState   string   `json:"initial_state"`
		TerminalStates []string `json:"terminal_states"`
		StateMachine   []any    `json:"state_machine"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lifecycle))
	assert.Equal(t, "pending", lifecycle.InitialState)
	assert.ElementsMatch(t, []string{"completed", "cancelled"}, lifecycle.TerminalStates)
	assert.Len(t, lifecycle.StateMachine, 2)
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = env.do(req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
