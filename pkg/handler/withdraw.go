package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"thunderbet_pix_back/models"
	"thunderbet_pix_back/pkg/repository"
	"thunderbet_pix_back/pkg/service"
)

// Withdraw queues a PIX withdrawal to the given key.
func (h *Handler) Withdraw(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var input models.WithdrawInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.Billing.Withdraw(user, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawBelowMinimum),
			errors.Is(err, repository.ErrInsufficientBalance):
			newErrorResponse(c, http.StatusBadRequest, err.Error())
		default:
			newErrorResponse(c, http.StatusInternalServerError, "cannot create withdrawal")
		}
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"withdrawal_id": id,
		"status":        "pending",
	})
}

func (h *Handler) Withdrawals(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	withdrawals, err := h.service.Billing.Withdrawals(user.ID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "cannot fetch withdrawals")
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"withdrawals": withdrawals,
	})
}

func (h *Handler) GetBalance(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	balance, err := h.service.Billing.GetBalance(user.ID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "cannot fetch balance")
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"balance": balance,
	})
}
