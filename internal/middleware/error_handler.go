package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"donation-api/internal/apperror"
	"donation-api/internal/logger"
	"donation-api/internal/validation"
	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrorHandler renders the last error pushed with c.Error as the response envelope.
// Internal detail is only exposed when showDetail is true.
func ErrorHandler(log logger.ILogger, showDetail bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, body := render(err, showDetail)
		if status >= http.StatusInternalServerError {
			log.Error("http", "request failed", map[string]interface{}{
				"method": c.Request.Method,
				"path":   c.FullPath(),
				"error":  err,
			})
		}
		c.AbortWithStatusJSON(status, body)
	}
}

func render(err error, showDetail bool) (int, response.Response) {
	var (
		verrs   validator.ValidationErrors
		syntax  *json.SyntaxError
		typeErr *json.UnmarshalTypeError
	)
	if appErr, ok := apperror.As(err); ok {
		if len(appErr.Errors) > 0 {
			return appErr.StatusCode, response.ValidationError(appErr.Message, appErr.Errors)
		}
		detail := ""
		if showDetail && appErr.Err != nil {
			detail = appErr.Err.Error()
		}
		return appErr.StatusCode, response.Error(appErr.Message, detail)
	}
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, response.ValidationError("Validation Error", validation.Messages(err))
	case errors.As(err, &syntax), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF),
		errors.Is(err, http.ErrNotMultipart), errors.Is(err, multipart.ErrMessageTooLarge):
		return http.StatusBadRequest, response.Error("Invalid request payload", detailOf(err, showDetail))
	}
	return http.StatusInternalServerError, response.Error("Internal server error", detailOf(err, showDetail))
}

func detailOf(err error, showDetail bool) string {
	if showDetail {
		return err.Error()
	}
	return ""
}

// Recovery turns panics into the 500 envelope.
func Recovery(log logger.ILogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("http", "panic recovered", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"panic": recovered,
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error("Internal server error", ""))
	})
}
