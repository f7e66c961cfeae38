package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/streamer_booking/internal/controller/handlers"
	"github.com/Freeeeeet/streamer_booking/internal/model"
	"github.com/Freeeeeet/streamer_booking/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// emptyVouchers хранилище без ваучеров
type emptyVouchers struct {
	service.VoucherStore
}

func (emptyVouchers) GetByCode(context.Context, string) (*model.Voucher, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, []byte) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	secret := []byte("router-secret")

	vouchers := service.NewVoucherService(emptyVouchers{}, logger)
	health := []handlers.HealthCheck{{Name: "postgres", Check: func(context.Context) error { return nil }}}
	h := handlers.NewHandlers(nil, nil, vouchers, nil, nil, nil, health, logger)

	r := NewRouter(RouterConfig{
		JWTSecret:      secret,
		AllowedOrigins: []string{"https://app.example.com"},
	}, h, nil, logger)

	return r, secret
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	r, secret := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/bookings"},
		{http.MethodPost, "/payments/create"},
		{http.MethodPost, "/payments/callback"},
		{http.MethodGet, "/notifications"},
		{http.MethodPost, "/conversations"},
		{http.MethodPost, "/providers/me/telegram-link"},
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}

	// Без бота маршрут Telegram не регистрируется
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("{}")))
	assert.Equal(t, http.StatusNotFound, w.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/vouchers/validate", strings.NewReader(`{"code":"promo20","amount":100000}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var validation model.VoucherValidation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &validation))
	assert.False(t, validation.Valid)
	assert.Equal(t, model.VoucherReasonNotFound, validation.Reason)
	assert.Equal(t, int64(100000), validation.FinalPrice)

	req = httptest.NewRequest(http.MethodPost, "/vouchers/validate", strings.NewReader(`{"amount":100000}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterCORS(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/bookings", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
