package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"casitas/internal/middleware"
	"casitas/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestResponderError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		err    error
		status int
		codigo string
	}{
		{"not found", service.NotFound("multa %s no encontrada", "x"), http.StatusNotFound, "not_found"},
		{"validation", service.Validation("monto negativo"), http.StatusUnprocessableEntity, "validation"},
		{"conflict", service.Conflict("ya revertido"), http.StatusConflict, "conflict"},
		{"transient", service.Transient(context.DeadlineExceeded), http.StatusServiceUnavailable, "transient"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.ErrorHandler())
			r.GET("/", func(c *gin.Context) { responderError(c, tc.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tc.status, w.Code)
			assert.NotContains(t, w.Body.String(), "boom")
			assert.Contains(t, w.Body.String(), `"codigo":"`+tc.codigo+`"`)
		})
	}
}

func TestResponderError_TransientPideReintento(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { responderError(c, service.Transient(context.DeadlineExceeded)) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
