package middleware

import (
	"errors"
	"net/http"
	"testing"

	"donation-api/internal/apperror"
	"donation-api/internal/logger"
	"donation-api/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupBody struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

func errorRouter(showDetail bool) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(logger.Nop()), ErrorHandler(logger.Nop(), showDetail))
	r.GET("/conflict", func(c *gin.Context) {
		_ = c.Error(apperror.Conflict("KTP number already registered"))
	})
	r.GET("/internal", func(c *gin.Context) {
		_ = c.Error(apperror.Internal("Internal server error", errors.New("connection refused")))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})
	r.POST("/bind", func(c *gin.Context) {
		var body signupBody
		if err := c.ShouldBindJSON(&body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestErrorHandler(t *testing.T) {
	require.NoError(t, validation.Register())
	prod := errorRouter(false)
	dev := errorRouter(true)

	w, env := perform(prod, http.MethodGet, "/conflict", "", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "KTP number already registered", env.Message)
	assert.False(t, env.Success)

	w, env = perform(prod, http.MethodGet, "/internal", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, env.Error)

	_, env = perform(dev, http.MethodGet, "/internal", "", "")
	assert.Equal(t, "connection refused", env.Error)

	w, env = perform(prod, http.MethodGet, "/plain", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", env.Message)
	assert.Empty(t, env.Error)

	w, env = perform(prod, http.MethodGet, "/panic", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", env.Message)

	w, env = perform(prod, http.MethodPost, "/bind", "", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation Error", env.Message)
	assert.Len(t, env.Errors, 2)

	w, env = perform(prod, http.MethodPost, "/bind", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
