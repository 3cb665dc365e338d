package handler

import (
	"net/http"

	"donation-api/internal/apperror"
	"donation-api/internal/middleware"
	"donation-api/pkg/pagination"
	"donation-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// uuidParam parses a path parameter, recording a 400 on the context when it is malformed.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(apperror.BadRequest("Invalid " + name + " format"))
		return uuid.Nil, false
	}
	return id, true
}

// currentUserID is only called behind RequireUser, which guarantees a user principal.
func currentUserID(c *gin.Context) uuid.UUID {
	return middleware.CurrentUser(c).ID
}

func currentAdminID(c *gin.Context) uuid.UUID {
	return middleware.CurrentAdmin(c).ID
}

func paginated(c *gin.Context, message string, items interface{}, total int64, p pagination.Params) {
	c.JSON(http.StatusOK, response.Success(message, response.NewPaginated(items, total, p)))
}
