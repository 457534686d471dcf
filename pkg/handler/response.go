package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"thunderbet_pix_back/models"
	"thunderbet_pix_back/pkg/middleware"
)

type Error struct {
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, statusCode int, message string) {
	logrus.Error(message)
	c.AbortWithStatusJSON(statusCode, Error{Message: message})
}

func wrapOkJSON(c *gin.Context, response map[string]interface{}) {
	c.JSON(http.StatusOK, response)
}

// currentUser resolves the user placed in the context by the auth
// middleware. It writes the error response itself on failure.
func (h *Handler) currentUser(c *gin.Context) (models.User, bool) {
	userID := c.GetInt64(middleware.UserIDKey)
	if userID == 0 {
		newErrorResponse(c, http.StatusUnauthorized, "not authenticated")
		return models.User{}, false
	}
	user, err := h.service.Authorization.GetUserByID(userID)
	if err != nil {
		newErrorResponse(c, http.StatusUnauthorized, "unknown user")
		return models.User{}, false
	}
	return user, true
}
