package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"thunderbet_pix_back/internal/deposit"
	"thunderbet_pix_back/models"
	"thunderbet_pix_back/pkg/service"
)

// StartDeposit begins a PIX deposit attempt for the authenticated user.
func (h *Handler) StartDeposit(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	var input models.DepositInput
	if err := c.BindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	attempt, err := h.service.Billing.StartDeposit(c.Request.Context(), user, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, deposit.ErrAmountBelowMinimum):
			newErrorResponse(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, deposit.ErrGatewayUnavailable):
			newErrorResponse(c, http.StatusBadGateway, err.Error())
		default:
			newErrorResponse(c, http.StatusInternalServerError, "cannot start deposit")
		}
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"charge_id":   attempt.ChargeID,
		"status":      attempt.Status,
		"pix_code":    attempt.PixCode,
		"qr_code_url": attempt.QRCodeURL,
		"amount":      attempt.RequestedAmount,
	})
}

// DepositStatus reports the current state of the user's deposit. Without a
// charge_id query parameter it refers to the live attempt; with one it can
// also reconcile an attempt from a previous session.
func (h *Handler) DepositStatus(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	status, err := h.service.Billing.DepositStatus(c.Request.Context(), user.ID, c.Query("charge_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoActiveDeposit), errors.Is(err, service.ErrDepositNotFound):
			newErrorResponse(c, http.StatusNotFound, err.Error())
		default:
			newErrorResponse(c, http.StatusBadGateway, "cannot fetch deposit status")
		}
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"deposit": status,
	})
}

// GetPixCode returns the copy-paste payment string for the live attempt.
func (h *Handler) GetPixCode(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	code, err := h.service.Billing.PixCode(user.ID)
	if err != nil {
		newErrorResponse(c, http.StatusConflict, err.Error())
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"pix_code": code,
	})
}

// CancelDeposit stops monitoring the live attempt, e.g. when the deposit
// modal is dismissed.
func (h *Handler) CancelDeposit(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.service.Billing.CancelMonitoring(user.ID)
	wrapOkJSON(c, map[string]interface{}{
		"cancelled": true,
	})
}

func (h *Handler) Deposits(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	deposits, err := h.service.Billing.Deposits(user.ID)
	if err != nil {
		newErrorResponse(c, http.StatusInternalServerError, "cannot fetch deposits")
		return
	}

	wrapOkJSON(c, map[string]interface{}{
		"deposits": deposits,
	})
}
