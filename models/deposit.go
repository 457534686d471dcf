package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Deposit struct {
	ID           int64           `json:"id" db:"id"`
	UserID       int64           `json:"user_id" db:"user_id"`
	ChargeID     string          `json:"charge_id" db:"charge_id"` // id assigned by the PIX gateway
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	PixCode      string          `json:"pix_code" db:"pix_code"`
	QRCodeURL    string          `json:"qr_code_url" db:"qr_code_url"`
	Status       string          `json:"status" db:"status"`
	ErrorMessage *string         `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	ResolvedAt   *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
}

type DepositInput struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type DepositStatusResponse struct {
	Status       string          `json:"status"`
	PixCode      string          `json:"pix_code,omitempty"`
	QRCodeURL    string          `json:"qr_code_url,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	ErrorMessage string          `json:"error_message,omitempty"`
}
