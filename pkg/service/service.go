package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"thunderbet_pix_back/internal/deposit"
	"thunderbet_pix_back/models"
	"thunderbet_pix_back/pkg/repository"
)

type Authorization interface {
	Login(input models.LoginInput) (models.User, error)
	GetUserByID(id int64) (models.User, error)
}

type Billing interface {
	StartDeposit(ctx context.Context, user models.User, amount decimal.Decimal) (deposit.Attempt, error)
	DepositStatus(ctx context.Context, userID int64, chargeID string) (models.DepositStatusResponse, error)
	CancelMonitoring(userID int64)
	PixCode(userID int64) (string, error)
	Deposits(userID int64) ([]models.Deposit, error)
	Withdraw(user models.User, input models.WithdrawInput) (int64, error)
	Withdrawals(userID int64) ([]models.Withdrawal, error)
	GetBalance(userID int64) (models.Balance, error)
}

type Config struct {
	Deposit         deposit.Config
	WithdrawMinimum decimal.Decimal
	StatusCacheTTL  time.Duration
}

type Service struct {
	Authorization
	Billing
}

func NewService(repos *repository.Repository, gateway deposit.Gateway, cfg Config) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Authorization),
		Billing:       NewBillingService(repos.Billing, gateway, cfg),
	}
}
