package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rodrigo-Salva/court-reservation-api/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	gin.SetMode(gin.TestMode)

	code := m.Run()
	os.Exit(code)
}

func okRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestMetricsMiddleware(t *testing.T) {
	router := okRouter(MetricsMiddleware())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestLoggingMiddleware(t *testing.T) {
	router := okRouter(RequestLoggingMiddleware())

	req := httptest.NewRequest("GET", "/test?status=CONFIRMED", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware_WithinBurst(t *testing.T) {
	router := okRouter(RateLimitMiddleware(2, 5))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_BurstExhausted(t *testing.T) {
	router := okRouter(RateLimitMiddleware(1, 2))

	var last int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		last = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestCorsMiddleware(t *testing.T) {
	router := okRouter(corsMiddleware())

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCorsMiddleware_OPTIONS(t *testing.T) {
	router := okRouter(corsMiddleware())

	req := httptest.NewRequest("OPTIONS", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestValidateStruct(t *testing.T) {
	type purchaseForm struct {
		Email string `validate:"required,email"`
		Hours int    `validate:"gte=1"`
	}

	t.Run("valid input has no errors", func(t *testing.T) {
		errs := ValidateStruct(purchaseForm{Email: "ana@example.com", Hours: 10})
		assert.Empty(t, errs)
	})

	t.Run("reports each failing field", func(t *testing.T) {
		errs := ValidateStruct(purchaseForm{Email: "not-an-email", Hours: 0})
		require.Len(t, errs, 2)

		assert.Equal(t, "Email", errs[0].Field)
		assert.Equal(t, "Email must be a valid email address", errs[0].Message)
		assert.Equal(t, "Hours must be greater than or equal to 1", errs[1].Message)
	})

	t.Run("required tag", func(t *testing.T) {
		errs := ValidateStruct(purchaseForm{Hours: 1})
		require.Len(t, errs, 1)
		assert.Equal(t, "required", errs[0].Tag)
		assert.Equal(t, "Email is required", errs[0].Message)
	})
}

func TestRespondWithValidationErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondWithValidationErrors(c, []ValidationError{
		{Field: "Hours", Tag: "gte", Message: "Hours must be greater than or equal to 1"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
	assert.Contains(t, w.Body.String(), "Hours")
}
