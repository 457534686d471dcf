package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Withdrawal struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	PixKey    string          `json:"pix_key" db:"pix_key"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Status    string          `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type WithdrawInput struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	PixKey string          `json:"pix_key" binding:"required"`
}
