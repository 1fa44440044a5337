package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"numbersapi/internal/services"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"code rejected", &services.CodeRejectedError{Reason: services.ReasonExpired}, http.StatusBadRequest, `{"error":"expired"}`},
		{"weak password", services.ErrWeakPassword, http.StatusBadRequest, `{"error":"password must be at least 6 characters"}`},
		{"user exists", fmt.Errorf("create: %w", services.ErrUserExists), http.StatusConflict, `{"error":"Email already registered"}`},
		{"serial conflict", fmt.Errorf("%w (serial 3)", services.ErrSerialConflict), http.StatusConflict, `{"error":"Duplicate serial. Try again."}`},
		{"not found", services.ErrUserNotFound, http.StatusNotFound, `{"error":"User not found"}`},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, `{"error":"Invalid email or password"}`},
		{"issue in progress", services.ErrIssueInProgress, http.StatusTooManyRequests, ""},
		{"delivery failed", fmt.Errorf("%w: smtp", services.ErrDeliveryFailed), http.StatusInternalServerError, `{"error":"Code was created but could not be delivered, request a new one"}`},
		{"unknown", errors.New("db gone"), http.StatusInternalServerError, `{"error":"fallback"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, "[test]", tt.err, "fallback")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
