package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"ether-wallet.backend/internal/interfaces/http/handlers"
)

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	registerAPIV1Routes(r, routeDeps{
		authHandler:    &handlers.AuthHandler{},
		walletHandler:  &handlers.WalletHandler{},
		authMiddleware: func(c *gin.Context) { c.Next() },
	})

	expects := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/auth/register"},
		{"POST", "/api/v1/auth/login"},
		{"POST", "/api/v1/auth/logout"},
		{"GET", "/api/v1/auth/me"},
		{"POST", "/api/v1/auth/password-reset/request"},
		{"POST", "/api/v1/auth/password-reset/confirm"},
		{"GET", "/api/v1/wallet"},
		{"POST", "/api/v1/wallet/generate"},
		{"POST", "/api/v1/wallet/send"},
		{"GET", "/api/v1/wallet/status"},
		{"POST", "/api/v1/wallet/reset-status"},
		{"POST", "/api/v1/wallet/refresh-balance"},
		{"GET", "/api/v1/wallet/transactions"},
	}

	routes := r.Routes()
	for _, exp := range expects {
		found := false
		for _, route := range routes {
			if route.Method == exp.method && route.Path == exp.path {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("route %s %s not registered", exp.method, exp.path)
		}
	}
}

func TestRegisterAPIV1Routes_RouteResponds(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerHealthRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:    &handlers.AuthHandler{},
		walletHandler:  &handlers.WalletHandler{},
		authMiddleware: func(c *gin.Context) { c.Next() },
	})

	// Smoke: unrelated helper route still works after route registration.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
