package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"thunderbet_pix_back/models"
)

func (h *Handler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Authorization.Login(input)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "cannot login user")
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"user": user,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	userIDStr := c.Query("user_id")
	if userIDStr == "" {
		newErrorResponse(c, http.StatusBadRequest, "user_id is required")
		return
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "user_id is required")
		return
	}
	user, err := h.service.Authorization.GetUserByID(userID)
	if err != nil {
		newErrorResponse(c, http.StatusUnauthorized, "something went wrong")
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"user": user,
	})
}
