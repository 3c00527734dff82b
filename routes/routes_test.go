package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"couponHub/backend/config"
	"couponHub/backend/controllers"
	"couponHub/backend/middleware"
	"couponHub/backend/services"
	"couponHub/backend/utils"
	"couponHub/backend/validators"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validators.Register()
	utils.InitJWT("routes-test-secret", time.Hour)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := services.NewUserService(db)
	_, err = users.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)

	blacklist := middleware.NewTokenBlacklist(rdb)
	h := controllers.New(db, controllers.Services{
		Categories: services.NewCategoryService(db),
		Platforms:  services.NewPlatformService(db),
		Coupons:    services.NewCouponService(db),
		Clicks:     services.NewClickService(db, services.WithDeduper(services.NewRedisDeduper(rdb, time.Minute))),
		Admin:      services.NewAdminService(db, sqlx.NewDb(sqlDB, "sqlite3"), rdb, time.Minute),
		Users:      users,
	}, blacklist)

	r := gin.New()
	r.Use(middleware.RequestID())
	SetupRoutes(r, h, Options{Blacklist: blacklist, Redis: rdb, LoginPerMinute: 5})
	return &testServer{router: r, db: db, redis: mr}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "198.51.100.7:40000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createdID(t *testing.T, w *httptest.ResponseRecorder) uint {
	t.Helper()
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	return uint(data["ID"].(float64))
}

// seedViaAPI creates one category, one platform and one coupon through the admin endpoints.
func (s *testServer) seedViaAPI(t *testing.T, token string) (catID, platformID, couponID uint) {
	t.Helper()
	catID = createdID(t, s.do(http.MethodPost, "/api/admin/categories", token, gin.H{"name": "Fashion"}))
	platformID = createdID(t, s.do(http.MethodPost, "/api/admin/platforms", token, gin.H{
		"name": "Style Hub", "website_url": "https://stylehub.example.com",
	}))
	couponID = createdID(t, s.do(http.MethodPost, "/api/admin/coupons", token, gin.H{
		"title":          "20% off shoes",
		"code":           "SHOES20",
		"discount_type":  "percentage",
		"discount_value": 20,
		"affiliate_url":  "https://stylehub.example.com/shoes?aff=hub",
		"category_id":    catID,
		"platform_id":    platformID,
	}))
	return catID, platformID, couponID
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": adminEmail, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := s.login(t)
	w = s.do(http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, adminEmail, profile["email"])
	assert.NotContains(t, profile, "Password")
}

func TestLoginRateLimited(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": adminEmail, "password": "wrong"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := s.do(http.MethodPost, "/auth/login", "", gin.H{"email": adminEmail, "password": adminPassword})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/admin/categories", "", gin.H{"name": "Toys"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userToken, err := utils.GenerateToken(99, false)
	require.NoError(t, err)
	w = s.do(http.MethodPost, "/api/admin/categories", userToken, gin.H{"name": "Toys"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodGet, "/api/admin/dashboard", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCatalogueLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	catID, platformID, couponID := s.seedViaAPI(t, token)

	w := s.do(http.MethodPost, "/api/admin/categories", token, gin.H{"name": "fashion"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/admin/categories", token, gin.H{"name": "Shoes", "slug": "Bad Slug"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/categories/fashion", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, catID, decode(t, w)["data"].(map[string]interface{})["ID"])

	w = s.do(http.MethodGet, fmt.Sprintf("/api/platforms/%d", platformID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "style-hub", decode(t, w)["data"].(map[string]interface{})["slug"])

	w = s.do(http.MethodGet, "/api/platforms/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/admin/coupons", token, gin.H{
		"title": "Too generous", "discount_type": "percentage", "discount_value": 150,
		"affiliate_url": "https://stylehub.example.com", "category_id": catID, "platform_id": platformID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/admin/coupons/%d", couponID), token, gin.H{
		"title": "25% off shoes", "discount_type": "percentage", "discount_value": "25",
		"affiliate_url": "https://stylehub.example.com/shoes?aff=hub", "category_id": catID, "platform_id": platformID,
		"is_featured": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/coupons?featured=true&sort=popular&active=true", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)
	assert.EqualValues(t, 1, list["total"])
	assert.EqualValues(t, 1, list["totalPages"])
	assert.EqualValues(t, 10, list["limit"])
	first := list["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "25% off shoes", first["title"])
	assert.Equal(t, "Style Hub", first["platform"].(map[string]interface{})["name"])

	w = s.do(http.MethodGet, "/api/coupons?sort=random", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/admin/categories/%d", catID), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/admin/coupons/%d", couponID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, fmt.Sprintf("/api/coupons/%d", couponID), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/admin/categories/%d", catID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/api/admin/categories/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClickFlowAndDashboard(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)
	_, _, couponID := s.seedViaAPI(t, token)

	w := s.do(http.MethodGet, fmt.Sprintf("/go/%d", couponID), "", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://stylehub.example.com/shoes?aff=hub", w.Header().Get("Location"))

	// same visitor inside the dedupe window
	w = s.do(http.MethodPost, fmt.Sprintf("/api/coupons/%d/click", couponID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode(t, w)
	assert.Equal(t, false, out["counted"])
	assert.Equal(t, "https://stylehub.example.com/shoes?aff=hub", out["redirect_url"])

	w = s.do(http.MethodGet, "/go/424242", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/admin/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_clicks"])
	assert.EqualValues(t, 1, stats["total_coupons"])

	w = s.do(http.MethodGet, "/api/admin/clicks?coupon_id="+fmt.Sprint(couponID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["total"])

	w = s.do(http.MethodGet, "/api/admin/clicks/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "198.51.100.7")

	w = s.do(http.MethodGet, "/api/admin/clicks?from=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/admin/clicks/archive", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	w := s.do(http.MethodPut, "/api/profile", token, gin.H{"username": "boss"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "boss", decode(t, w)["username"])

	w = s.do(http.MethodPut, "/api/profile", token, gin.H{"new_password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/profile", token, gin.H{"current_password": "nope", "new_password": "long-enough-pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
